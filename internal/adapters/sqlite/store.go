// Package sqlite implements ports.StructureStore on a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"modernc.org/sqlite"

	"structura/internal/application"
	"structura/internal/ports"
)

const defaultBatchSize = 500

// Store implements ports.StructureStore using SQLite.
type Store struct {
	db        *sql.DB
	batchSize int
	log       *slog.Logger
}

// Ensure Store implements StructureStore
var _ ports.StructureStore = (*Store)(nil)

// Options tune a Store. The zero value selects the defaults.
type Options struct {
	// BatchSize caps the number of natural keys or ids bound into a
	// single query; stores impose a ceiling on bind parameters.
	BatchSize int
	Logger    *slog.Logger
}

// Open opens (creating if necessary) the catalog database at path.
func Open(path string, opts Options) (*Store, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas + schema in a single batch (reduces round-trips).
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	return &Store{db: db, batchSize: opts.BatchSize, log: opts.Logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
	PRAGMA foreign_keys = ON;
	PRAGMA synchronous = NORMAL;
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS element_type (
		id              TEXT PRIMARY KEY,
		external_id     TEXT NOT NULL,
		stakeholder_key TEXT NOT NULL,
		name            TEXT NOT NULL UNIQUE,
		description     TEXT,
		UNIQUE (stakeholder_key, external_id)
	);
	CREATE TABLE IF NOT EXISTS thing_node (
		id                       TEXT PRIMARY KEY,
		external_id              TEXT NOT NULL,
		stakeholder_key          TEXT NOT NULL,
		name                     TEXT NOT NULL UNIQUE,
		description              TEXT,
		parent_node_id           TEXT REFERENCES thing_node(id) DEFERRABLE INITIALLY DEFERRED,
		parent_external_node_id  TEXT,
		element_type_id          TEXT NOT NULL REFERENCES element_type(id),
		element_type_external_id TEXT NOT NULL,
		meta_data                TEXT,
		UNIQUE (stakeholder_key, external_id)
	);
	CREATE TABLE IF NOT EXISTS source (
		id                      TEXT PRIMARY KEY,
		external_id             TEXT NOT NULL,
		stakeholder_key         TEXT NOT NULL,
		name                    TEXT NOT NULL UNIQUE,
		type                    TEXT NOT NULL,
		visible                 INTEGER NOT NULL DEFAULT 1,
		display_path            TEXT NOT NULL,
		adapter_key             TEXT NOT NULL,
		source_id               TEXT NOT NULL,
		ref_key                 TEXT,
		ref_id                  TEXT NOT NULL,
		meta_data               TEXT,
		preset_filters          TEXT NOT NULL,
		passthrough_filters     TEXT,
		thing_node_external_ids TEXT,
		UNIQUE (stakeholder_key, external_id)
	);
	CREATE TABLE IF NOT EXISTS sink (
		id                      TEXT PRIMARY KEY,
		external_id             TEXT NOT NULL,
		stakeholder_key         TEXT NOT NULL,
		name                    TEXT NOT NULL UNIQUE,
		type                    TEXT NOT NULL,
		visible                 INTEGER NOT NULL DEFAULT 1,
		display_path            TEXT NOT NULL,
		adapter_key             TEXT NOT NULL,
		sink_id                 TEXT NOT NULL,
		ref_key                 TEXT,
		ref_id                  TEXT NOT NULL,
		meta_data               TEXT,
		preset_filters          TEXT NOT NULL,
		passthrough_filters     TEXT,
		thing_node_external_ids TEXT,
		UNIQUE (stakeholder_key, external_id)
	);
	CREATE TABLE IF NOT EXISTS thingnode_source_association (
		thing_node_id TEXT NOT NULL REFERENCES thing_node(id),
		source_id     TEXT NOT NULL REFERENCES source(id),
		PRIMARY KEY (thing_node_id, source_id)
	);
	CREATE TABLE IF NOT EXISTS thingnode_sink_association (
		thing_node_id TEXT NOT NULL REFERENCES thing_node(id),
		sink_id       TEXT NOT NULL REFERENCES sink(id),
		PRIMARY KEY (thing_node_id, sink_id)
	);
	CREATE INDEX IF NOT EXISTS idx_thing_node_parent ON thing_node(parent_node_id);
	CREATE INDEX IF NOT EXISTS idx_source_assoc_node ON thingnode_source_association(thing_node_id);
	CREATE INDEX IF NOT EXISTS idx_sink_assoc_node ON thingnode_sink_association(thing_node_id);
`

// querier is satisfied by both *sql.DB and *sql.Tx so the resolver and
// the read queries can run inside or outside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// classify maps a low-level store failure onto the error taxonomy:
// constraint violations become ConflictError, driver-level availability
// failures become ConnectionError, everything else UpdateError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &application.ConnectionError{Op: op, Err: err}
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case 19: // SQLITE_CONSTRAINT
			return &application.ConflictError{Op: op, Err: err}
		case 5, 6, 10, 14: // SQLITE_BUSY, SQLITE_LOCKED, SQLITE_IOERR, SQLITE_CANTOPEN
			return &application.ConnectionError{Op: op, Err: err}
		}
	}
	return &application.UpdateError{Op: op, Err: err}
}

// nullString returns nil for empty strings (for nullable columns).
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullStringPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// marshalJSON serializes a value for a nullable JSON text column.
func marshalJSON(v any, isNil bool) (any, error) {
	if isNil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// unmarshalJSON restores a value from a nullable JSON text column.
func unmarshalJSON(raw sql.NullString, target any) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw.String), target)
}
