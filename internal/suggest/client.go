package suggest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/JonMunkholm/schemaform/internal/core"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Request is the body posted to the suggestion service.
type Request struct {
	FieldName string `json:"fieldName"`
	DataType  string `json:"dataType"`
}

// Response is the body the suggestion service answers with.
type Response struct {
	SuggestedRules []string `json:"suggestedRules"`
}

// Client calls a remote suggestion service.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a client for the service at url. A zero timeout leaves
// the deadline to the caller's context.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Suggest implements core.Suggester.
func (c *Client) Suggest(ctx context.Context, label string, kind core.FieldKind) ([]string, error) {
	body, err := json.Marshal(Request{FieldName: label, DataType: string(kind)})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call suggestion service: %w", err)
	}
	defer resp.Body.Close()

	slog.Debug("suggestion service responded",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggestion service returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.SuggestedRules, nil
}
