package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/noc-desk/internal/model"
)

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Several poll goroutines write marks concurrently.
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// upsertMarkSQL touches exactly one (bucket, item) row.
const upsertMarkSQL = `
	INSERT INTO marks (bucket, item_id, at_ms) VALUES (?, ?, ?)
	ON CONFLICT(bucket, item_id) DO UPDATE SET at_ms = excluded.at_ms`

// LoadMarks returns every mark in bucket.
func (s *SQLiteStore) LoadMarks(
	ctx context.Context,
	bucket string,
) (map[string]int64, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT item_id, at_ms FROM marks WHERE bucket = ?", bucket,
	)
	if err != nil {
		return nil, fmt.Errorf("querying marks %s: %w", bucket, err)
	}
	defer rows.Close()

	marks := make(map[string]int64)
	for rows.Next() {
		var (
			id string
			at int64
		)
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("scanning mark row: %w", err)
		}
		marks[id] = at
	}

	return marks, rows.Err()
}

// UpsertMark sets one mark.
func (s *SQLiteStore) UpsertMark(
	ctx context.Context,
	bucket, itemID string,
	atMs int64,
) error {
	if _, err := s.db.ExecContext(ctx, upsertMarkSQL, bucket, itemID, atMs); err != nil {
		return fmt.Errorf("upserting mark %s/%s: %w", bucket, itemID, err)
	}
	return nil
}

// UpsertMarks sets several marks inside one transaction.
func (s *SQLiteStore) UpsertMarks(
	ctx context.Context,
	bucket string,
	marks map[string]int64,
) error {
	if len(marks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, upsertMarkSQL)
	if err != nil {
		return fmt.Errorf("preparing mark upsert: %w", err)
	}
	defer stmt.Close()

	for id, at := range marks {
		if _, err := stmt.ExecContext(ctx, bucket, id, at); err != nil {
			return fmt.Errorf("upserting mark %s/%s: %w", bucket, id, err)
		}
	}

	return tx.Commit()
}

// ResetMarks empties a bucket.
func (s *SQLiteStore) ResetMarks(ctx context.Context, bucket string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM marks WHERE bucket = ?", bucket); err != nil {
		return fmt.Errorf("resetting marks %s: %w", bucket, err)
	}
	return nil
}

// ReplaceTickets swaps the cached snapshot for kind in one transaction.
func (s *SQLiteStore) ReplaceTickets(
	ctx context.Context,
	kind model.TicketKind,
	tickets []model.Ticket,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tickets WHERE kind = ?", string(kind)); err != nil {
		return fmt.Errorf("clearing %s tickets: %w", kind, err)
	}

	const query = `
		INSERT OR REPLACE INTO tickets (
			id, kind, status, assigned_to, date, data, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing ticket insert: %w", err)
	}
	defer stmt.Close()

	fetchedAt := time.Now().UTC()
	for _, t := range tickets {
		t.Kind = kind
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshaling ticket %s: %w", t.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			t.ID, string(kind), t.Status, t.AssignedTo,
			t.Date.UTC(), string(data), fetchedAt,
		)
		if err != nil {
			return fmt.Errorf("caching ticket %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// GetTickets returns the cached snapshot for kind, newest first.
func (s *SQLiteStore) GetTickets(
	ctx context.Context,
	kind model.TicketKind,
) ([]model.Ticket, error) {
	var blobs []string
	err := s.db.SelectContext(ctx, &blobs,
		"SELECT data FROM tickets WHERE kind = ? ORDER BY date DESC", string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("querying %s tickets: %w", kind, err)
	}

	tickets := make([]model.Ticket, 0, len(blobs))
	for _, b := range blobs {
		var t model.Ticket
		if err := json.Unmarshal([]byte(b), &t); err != nil {
			return nil, fmt.Errorf("unmarshaling cached ticket: %w", err)
		}
		tickets = append(tickets, t)
	}

	return tickets, nil
}

var _ Store = (*SQLiteStore)(nil)
