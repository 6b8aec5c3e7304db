package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/JonMunkholm/schemaform/internal/core"
)

// schemaDocument is the JSON Schema a PUT /api/schema body must satisfy.
// The type enum is filled in from the kind registry.
const schemaDocument = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name", "label", "type", "validations"],
    "properties": {
      "id":          {"type": "string", "minLength": 1},
      "name":        {"type": "string", "minLength": 1},
      "label":       {"type": "string", "minLength": 1},
      "type":        {"type": "string"},
      "validations": {"type": "array", "items": {"type": "string"}},
      "options":     {"type": ["array", "null"], "items": {"type": "string"}}
    },
    "additionalProperties": false
  }
}`

var (
	payloadSchemaOnce sync.Once
	payloadSchema     *jsonschema.Resolved
	payloadSchemaErr  error
)

// resolvedPayloadSchema compiles schemaDocument once.
func resolvedPayloadSchema() (*jsonschema.Resolved, error) {
	payloadSchemaOnce.Do(func() {
		var schema jsonschema.Schema
		if err := json.Unmarshal([]byte(schemaDocument), &schema); err != nil {
			payloadSchemaErr = fmt.Errorf("unmarshal payload schema: %w", err)
			return
		}

		kinds := core.Kinds()
		enum := make([]any, len(kinds))
		for i, k := range kinds {
			enum[i] = string(k.Kind)
		}
		schema.Items.Properties["type"].Enum = enum

		payloadSchema, payloadSchemaErr = schema.Resolve(&jsonschema.ResolveOptions{})
		if payloadSchemaErr != nil {
			payloadSchemaErr = fmt.Errorf("resolve payload schema: %w", payloadSchemaErr)
		}
	})
	return payloadSchema, payloadSchemaErr
}

// decodeSchemaPayload checks a JSON field list against schemaDocument and
// decodes it. Any structural problem is reported as ErrInvalidSchema.
func decodeSchemaPayload(raw []byte) (core.Schema, error) {
	resolved, err := resolvedPayloadSchema()
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidSchema, err)
	}
	if err := resolved.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidSchema, err)
	}

	var schema core.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidSchema, err)
	}
	return schema, nil
}

// readBody reads at most maxFormBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, err
	}
	return body, nil
}

// recordPayload converts a JSON object of field values to the raw strings
// the form validator expects. Numbers keep their shortest form.
func recordPayload(raw []byte) (map[string]string, error) {
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrAddData, err)
	}

	out := make(map[string]string, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			return nil, fmt.Errorf("%w: field %q must be a scalar", core.ErrAddData, k)
		}
	}
	return out, nil
}
