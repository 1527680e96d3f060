// Package tablestore reads and writes whole tables by id.
//
// Tables are overwritten as a unit; there is no row-level update. Two
// backends exist: a directory of CSV files inside the project, and a single
// SQLite database file.
package tablestore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned when a table id has never been written.
var ErrNotFound = errors.New("table not found")

// Backend names accepted by Open.
const (
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
)

// Table is a header plus string rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Store reads and writes whole tables.
type Store interface {
	Read(ctx context.Context, id string) (*Table, error)
	Write(ctx context.Context, id string, t *Table) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Open returns the store for a backend. path is the project root for "dir"
// and the database file for "sqlite".
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendDir, "":
		return NewDir(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// WriteCSV writes a table with its header.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadCSV reads a table whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading table CSV: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

func encodeRecords(records [][]string) (string, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(records); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func decodeRecords(s string) ([][]string, error) {
	cr := csv.NewReader(strings.NewReader(s))
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}
