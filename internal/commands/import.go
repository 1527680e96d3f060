package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/coa/internal/accounts"
	"github.com/cleared-dev/coa/internal/dataset"
	"github.com/cleared-dev/coa/internal/importer"
	"github.com/cleared-dev/coa/internal/model"
	"github.com/cleared-dev/coa/internal/subunits"
	"github.com/cleared-dev/coa/internal/tablestore"
)

func newImportCommand() *cobra.Command {
	var subunitFile string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Load the COA input table from a CSV or XLSX file",
		Long: "Load the COA input table from a CSV or XLSX file. Without a file, " +
			"every importable file in import/ is loaded and moved to import/processed/.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, p.Close()) }()

			if subunitFile != "" {
				if err := importSubunits(cmd, p, subunitFile); err != nil {
					return err
				}
				if len(args) == 0 {
					return nil
				}
			}
			if len(args) == 1 {
				return importFiles(cmd, p, []string{args[0]}, false)
			}

			files, err := importer.Scan(p.root, importer.DefaultRegistry())
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no files to import")
				return nil
			}
			paths := make([]string, len(files))
			for i, f := range files {
				paths[i] = f.Path
			}
			return importFiles(cmd, p, paths, true)
		},
	}

	cmd.Flags().StringVar(&subunitFile, "subunits", "", "also load the business subunit table from this CSV or XLSX file")
	return cmd
}

// importFiles parses every file and replaces the input table with their
// concatenated rows.
func importFiles(cmd *cobra.Command, p *project, paths []string, fromImportDir bool) error {
	ctx := cmd.Context()
	reg := importer.DefaultRegistry()

	var all []model.Account
	for _, path := range paths {
		accts, err := reg.ParseFile(path)
		if err != nil {
			return err
		}
		p.log.Info("parsed", "file", filepath.Base(path), "rows", len(accts))
		all = append(all, accts...)
	}

	findings := accounts.Validate(all, p.cfg.Transform.RootMarkers)
	for _, f := range findings {
		p.log.Warn("validation finding", "rule", f.Rule, "code", f.Code, "description", f.Description)
	}

	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = filepath.Base(path)
	}
	details := strings.Join(names, ", ")
	if err := p.writeTable(ctx, "import", p.cfg.Tables.Input, dataset.AccountsTable(all), details); err != nil {
		return err
	}

	if fromImportDir {
		for _, name := range names {
			if err := importer.MarkProcessed(p.root, name); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows into %s (%d validation findings)\n", len(all), p.cfg.Tables.Input, len(findings))

	_, err := p.commit(ctx, false, fmt.Sprintf("import: %s (%d rows)", details, len(all)))
	return err
}

func importSubunits(cmd *cobra.Command, p *project, path string) error {
	t, err := readTableFile(path)
	if err != nil {
		return err
	}
	subs, err := subunits.FromTable(t)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := p.writeTable(cmd.Context(), "import", p.cfg.Tables.BusinessSubunit, subunits.ToTable(subs), filepath.Base(path)); err != nil {
		return err
	}
	p.subunits.Refresh()

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d business subunits into %s\n", len(subs), p.cfg.Tables.BusinessSubunit)

	_, err = p.commit(cmd.Context(), false, fmt.Sprintf("import: %s (%d subunits)", p.cfg.Tables.BusinessSubunit, len(subs)))
	return err
}

// readTableFile reads a CSV or XLSX file as a table.
func readTableFile(path string) (*tablestore.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return tablestore.ReadCSV(f)
	case ".xlsx":
		return dataset.ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported file type %s", filepath.Ext(path))
	}
}
