package tablestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite stores every table as one row of a single SQLite table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file and ensures the schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS coa_tables (
			id TEXT PRIMARY KEY,
			columns TEXT NOT NULL,
			body TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Read loads a table.
func (s *SQLite) Read(ctx context.Context, id string) (*Table, error) {
	var columns, body string
	err := s.db.QueryRowContext(ctx, `SELECT columns, body FROM coa_tables WHERE id = ?`, id).Scan(&columns, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", id, err)
	}

	header, err := decodeRecords(columns)
	if err != nil {
		return nil, fmt.Errorf("decode columns of %s: %w", id, err)
	}
	rows, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("decode rows of %s: %w", id, err)
	}

	t := &Table{Rows: rows}
	if len(header) > 0 {
		t.Columns = header[0]
	}
	return t, nil
}

// Write replaces a table.
func (s *SQLite) Write(ctx context.Context, id string, t *Table) error {
	columns, err := encodeRecords([][]string{t.Columns})
	if err != nil {
		return fmt.Errorf("encode columns of %s: %w", id, err)
	}
	body, err := encodeRecords(t.Rows)
	if err != nil {
		return fmt.Errorf("encode rows of %s: %w", id, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO coa_tables (id, columns, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET columns = excluded.columns, body = excluded.body, updated_at = excluded.updated_at`,
		id, columns, body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write table %s: %w", id, err)
	}
	return nil
}

// List returns the stored table ids, sorted.
func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM coa_tables ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan table id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Checkpoint folds the write-ahead log back into the database file so the
// file alone holds every table.
func (s *SQLite) Checkpoint(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}
