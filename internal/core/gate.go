package core

// gate.go prevents duplicate submissions.
//
// Each triggering control (schema save, record submit, rule suggestion for a
// field) may have only one request in flight per client. A second request for
// the same key fails immediately with ErrBusy instead of queueing.
//
// The gate also supports graceful shutdown via WaitForDrain, which blocks
// until every in-flight request has released its key.

import (
	"context"
	"sync"
	"time"
)

// Control names used as gate key prefixes.
const (
	ControlSchemaSave   = "schema.save"
	ControlRecordSubmit = "record.submit"
	ControlSuggest      = "suggest"
)

// BusyGate tracks in-flight requests by key.
type BusyGate struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewBusyGate creates an empty gate.
func NewBusyGate() *BusyGate {
	return &BusyGate{inflight: make(map[string]struct{})}
}

// TryAcquire marks key busy. Returns false if it already is.
// The caller MUST call Release(key) after a successful acquire (use defer).
func (g *BusyGate) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[key]; busy {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

// Release clears key.
func (g *BusyGate) Release(key string) {
	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
}

// Busy reports whether key is currently held.
func (g *BusyGate) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inflight[key]
	return busy
}

// ActiveCount returns the number of in-flight requests.
func (g *BusyGate) ActiveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}

// WaitForDrain blocks until nothing is in flight or ctx is done.
func (g *BusyGate) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if g.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// gateKey scopes a control to the requesting client.
func gateKey(ctx context.Context, control string) string {
	client := GetClientFromContext(ctx)
	if client == "" {
		return control
	}
	return control + "@" + client
}
