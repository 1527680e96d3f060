package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/coa/internal/tablestore"
)

// maxSheetName is the longest worksheet name Excel accepts.
const maxSheetName = 31

// Sheet is a named table written to one worksheet.
type Sheet struct {
	Name  string
	Table *tablestore.Table
}

// WriteXLSX writes each sheet to its own worksheet, header in row 1.
func WriteXLSX(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return errors.New("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		name := s.Name
		if len(name) > maxSheetName {
			name = name[:maxSheetName]
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("naming sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}

		if err := writeSheet(f, name, s.Table); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *tablestore.Table) error {
	rows := append([][]string{t.Columns}, t.Rows...)
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("row %d: %w", r+1, err)
		}
	}
	return nil
}

// ReadXLSX reads the first worksheet of a workbook as a table.
func ReadXLSX(r io.Reader) (*tablestore.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &tablestore.Table{}, nil
	}
	return &tablestore.Table{Columns: rows[0], Rows: rows[1:]}, nil
}
