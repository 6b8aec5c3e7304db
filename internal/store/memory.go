// Package store provides the in-memory core.Store.
//
// State lives for the life of the process. Every read returns a deep copy and
// every write stores one, so callers can never mutate a snapshot in place.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/JonMunkholm/schemaform/internal/core"
)

// MemoryStore implements core.Store backed by process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	schema  core.Schema
	records []core.DataRecord
}

// Compile-time checks.
var (
	_ core.Store    = (*MemoryStore)(nil)
	_ core.Resetter = (*MemoryStore)(nil)
)

// New returns an empty store.
func New() *MemoryStore {
	return &MemoryStore{
		schema:  core.Schema{},
		records: []core.DataRecord{},
	}
}

// Init replaces all state with the given schema and records. It is the
// explicit initialization hook used by seeding and tests.
func (s *MemoryStore) Init(ctx context.Context, schema core.Schema, records []core.DataRecord) error {
	if err := core.ValidateSchema(schema); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.schema = schema.Normalize()
	s.records = cloneRecords(records)
	slog.Debug("memory store initialized", "fields", len(s.schema), "records", len(s.records))
	return nil
}

// Reset clears the schema and every record.
func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schema = core.Schema{}
	s.records = []core.DataRecord{}
	return nil
}

// GetSchema returns a copy of the current schema.
func (s *MemoryStore) GetSchema(ctx context.Context) (core.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema.Clone(), nil
}

// GetData returns a copy of every record in insertion order.
func (s *MemoryStore) GetData(ctx context.Context) ([]core.DataRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records), nil
}

// UpdateSchema replaces the schema wholesale. Existing records are kept
// untouched, including keys the new schema no longer names.
func (s *MemoryStore) UpdateSchema(ctx context.Context, schema core.Schema) error {
	if err := core.ValidateSchema(schema); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.schema = schema.Normalize()
	return nil
}

// AddData appends a copy of record.
func (s *MemoryStore) AddData(ctx context.Context, record core.DataRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record.Clone())
	return nil
}

func cloneRecords(records []core.DataRecord) []core.DataRecord {
	out := make([]core.DataRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
