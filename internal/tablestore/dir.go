package tablestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const tablesDir = "tables"

// Dir stores each table as <root>/tables/<id>.csv.
type Dir struct {
	root string
}

// NewDir creates a directory store rooted at a project directory.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

func (d *Dir) path(id string) string {
	return filepath.Join(d.root, tablesDir, id+".csv")
}

// Read loads a table.
func (d *Dir) Read(_ context.Context, id string) (*Table, error) {
	f, err := os.Open(d.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("table %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening table %s: %w", id, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", id, err)
	}
	return t, nil
}

// Write replaces a table. The file is written next to the target and renamed into place.
func (d *Dir) Write(_ context.Context, id string, t *Table) error {
	dir := filepath.Join(d.root, tablesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating tables dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", id, err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, t); err != nil {
		tmp.Close()
		return fmt.Errorf("writing table %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing table %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), d.path(id)); err != nil {
		return fmt.Errorf("replacing table %s: %w", id, err)
	}
	return nil
}

// List returns the stored table ids, sorted.
func (d *Dir) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(d.root, tablesDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tables dir: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op.
func (d *Dir) Close() error { return nil }
