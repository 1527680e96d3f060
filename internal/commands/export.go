package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/coa/internal/dataset"
	"github.com/cleared-dev/coa/internal/tablestore"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

func newExportCommand() *cobra.Command {
	var format string
	var outPath string
	var tables []string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored tables to CSV files or one XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, p.Close()) }()
			ctx := cmd.Context()

			format = strings.ToLower(format)
			if format != formatCSV && format != formatXLSX {
				return fmt.Errorf("unknown format %q (want csv or xlsx)", format)
			}
			if outPath == "" {
				outPath = filepath.Join(p.root, "exports")
				if format == formatXLSX {
					outPath = filepath.Join(outPath, "coa.xlsx")
				}
			}

			sheets, err := p.collect(ctx, tables)
			if err != nil {
				return err
			}
			if len(sheets) == 0 {
				return errors.New("no tables to export")
			}

			if format == formatXLSX {
				err = exportXLSX(outPath, sheets)
			} else {
				err = exportCSV(outPath, sheets)
			}
			if err != nil {
				return err
			}

			p.log.Info("exported", "format", format, "tables", len(sheets), "path", outPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tables to %s\n", len(sheets), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatXLSX, "csv (one file per table) or xlsx (one sheet per table)")
	cmd.Flags().StringVar(&outPath, "out", "", "output directory for csv, file for xlsx (default exports/)")
	cmd.Flags().StringSliceVar(&tables, "table", nil, "table ids to export (default all)")
	return cmd
}

// collect reads the named tables, or every stored table when ids is empty.
func (p *project) collect(ctx context.Context, ids []string) ([]dataset.Sheet, error) {
	if len(ids) == 0 {
		var err error
		ids, err = p.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing tables: %w", err)
		}
	}

	sheets := make([]dataset.Sheet, 0, len(ids))
	for _, id := range ids {
		t, err := p.store.Read(ctx, id)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, dataset.Sheet{Name: id, Table: t})
	}
	return sheets, nil
}

func exportXLSX(path string, sheets []dataset.Sheet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := dataset.WriteXLSX(f, sheets); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportCSV(dir string, sheets []dataset.Sheet) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	for _, s := range sheets {
		path := filepath.Join(dir, s.Name+".csv")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := tablestore.WriteCSV(f, s.Table); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
