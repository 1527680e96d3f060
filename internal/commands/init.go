package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/coa/internal/accounts"
	"github.com/cleared-dev/coa/internal/config"
	"github.com/cleared-dev/coa/internal/dataset"
	"github.com/cleared-dev/coa/internal/gitops"
	"github.com/cleared-dev/coa/internal/model"
	"github.com/cleared-dev/coa/internal/subunits"
	"github.com/cleared-dev/coa/internal/tablestore"
)

func newInitCommand() *cobra.Command {
	var name string
	var backend string
	var subunit string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new COA project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, backend, subunit, !noGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&backend, "backend", tablestore.BackendDir, "table store backend (dir or sqlite)")
	cmd.Flags().StringVar(&subunit, "subunit", "KBC", "business subunit of the starter chart")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not initialize a git repository")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name, backend, subunit string, withGit bool) (err error) {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	// Create directory structure.
	dirs := []string{
		"logs",
		"exports",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write coa.yaml.
	cfg := config.Default(name)
	cfg.Store.Backend = backend
	cfg.Transform.BusinessSubunit = subunit
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	p, err := openProjectAt(cmd, dir)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, p.Close()) }()
	ctx := cmd.Context()

	// Write the starter chart and its business subunit.
	chart := accounts.DefaultChart(subunit)
	if err := p.writeTable(ctx, "init", cfg.Tables.Input, dataset.AccountsTable(chart), "starter chart"); err != nil {
		return err
	}
	subs := subunits.ToTable([]model.BusinessSubunit{{ID: subunit, Name: name}})
	if err := p.writeTable(ctx, "init", cfg.Tables.BusinessSubunit, subs, "starter subunit"); err != nil {
		return err
	}

	// Write .gitignore.
	gitignore := ".env\nexports/\n*.db-wal\n*.db-shm\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	// Write import/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	out := cmd.OutOrStdout()
	if !withGit {
		fmt.Fprintf(out, "Initialized COA project at %s\n", dir)
		return nil
	}

	// Initialize git and create initial commit.
	if err := gitops.Init(dir, cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	hash, err := p.commit(ctx, true, "init: Initialize "+name)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized COA project at %s (%s)\n", dir, hash)
	return nil
}
