// Package postgres implements core.Store backed by PostgreSQL.
//
// The schema is a single JSONB row replaced by upsert. Records are appended
// to a JSONB table and read back in insertion order.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/schemaform/internal/core"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PoolConfig tunes the connection pool opened by Open.
type PoolConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

// Open creates a connection pool and verifies it with a ping.
func Open(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Store implements core.Store against a DBTX.
type Store struct {
	db    DBTX
	newID func() uuid.UUID
}

// Compile-time checks.
var (
	_ core.Store    = (*Store)(nil)
	_ core.Resetter = (*Store)(nil)
)

// New wraps db. The tables must already exist; see Migrate.
func New(db DBTX) *Store {
	return &Store{db: db, newID: uuid.New}
}

// Reset removes the schema and every record.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, resetSQL); err != nil {
		return fmt.Errorf("reset tables: %w", err)
	}
	return nil
}

// GetSchema returns the stored schema, or an empty one if none was saved.
func (s *Store) GetSchema(ctx context.Context) (core.Schema, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, selectSchemaSQL, schemaRowID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Schema{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select schema: %w", err)
	}

	var schema core.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if schema == nil {
		schema = core.Schema{}
	}
	return schema, nil
}

// GetData returns every record ordered by insertion.
func (s *Store) GetData(ctx context.Context) ([]core.DataRecord, error) {
	rows, err := s.db.Query(ctx, selectRecordsSQL)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	records := []core.DataRecord{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec := core.DataRecord{}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// UpdateSchema replaces the stored schema after checking its shape.
func (s *Store) UpdateSchema(ctx context.Context, schema core.Schema) error {
	if err := core.ValidateSchema(schema); err != nil {
		return err
	}

	raw, err := json.Marshal(schema.Normalize())
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	if _, err := s.db.Exec(ctx, upsertSchemaSQL, schemaRowID, raw); err != nil {
		return fmt.Errorf("upsert schema: %w", err)
	}
	return nil
}

// AddData appends one record.
func (s *Store) AddData(ctx context.Context, record core.DataRecord) error {
	if record == nil {
		record = core.DataRecord{}
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := s.db.Exec(ctx, insertRecordSQL, s.newID(), raw); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}
