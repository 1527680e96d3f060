package tablestore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *Table {
	return &Table{
		Columns: []string{"CODE_FIN_STAT", "NAME_FIN_STAT", "FULL"},
		Rows: [][]string{
			{"A", "Aktiva", "A"},
			{"A1", `Name with "quotes", commas`, "A | A1"},
			{"A2", "multi\nline", "A | A2"},
		},
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := OpenSQLite(filepath.Join(dir, "coa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		BackendDir:    NewDir(filepath.Join(dir, "project")),
		BackendSQLite: sqlite,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write(ctx, "dc_coa", testTable()))

			got, err := s.Read(ctx, "dc_coa")
			require.NoError(t, err)
			assert.Equal(t, testTable().Columns, got.Columns)
			assert.Equal(t, testTable().Rows, got.Rows)
			assert.Equal(t, 3, got.Len())
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write(ctx, "t", testTable()))
			require.NoError(t, s.Write(ctx, "t", &Table{Columns: []string{"X"}, Rows: [][]string{{"1"}}}))

			got, err := s.Read(ctx, "t")
			require.NoError(t, err)
			assert.Equal(t, []string{"X"}, got.Columns)
			assert.Equal(t, [][]string{{"1"}}, got.Rows)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Read(ctx, "missing")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ids, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, ids)

			require.NoError(t, s.Write(ctx, "b", testTable()))
			require.NoError(t, s.Write(ctx, "a", testTable()))

			ids, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, ids)
		})
	}
}

func TestStore_EmptyTable(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write(ctx, "empty", &Table{Columns: []string{"CODE_FIN_STAT"}}))

			got, err := s.Read(ctx, "empty")
			require.NoError(t, err)
			assert.Equal(t, []string{"CODE_FIN_STAT"}, got.Columns)
			assert.Equal(t, 0, got.Len())
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("dir", dir)
	require.NoError(t, err)
	assert.IsType(t, &Dir{}, s)

	s, err = Open("SQLite", filepath.Join(dir, "coa.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open("bigquery", dir)
	assert.Error(t, err)
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testTable()))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, testTable(), got)
}

func TestSQLite_Checkpoint(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "coa.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(ctx, "dc_coa", testTable()))
	require.NoError(t, s.Checkpoint(ctx))

	info, err := os.Stat(path + "-wal")
	if err == nil {
		assert.Zero(t, info.Size())
	}
}
