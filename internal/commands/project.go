package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/coa/internal/config"
	"github.com/cleared-dev/coa/internal/dataset"
	"github.com/cleared-dev/coa/internal/gitops"
	"github.com/cleared-dev/coa/internal/logging"
	"github.com/cleared-dev/coa/internal/model"
	"github.com/cleared-dev/coa/internal/runlog"
	"github.com/cleared-dev/coa/internal/subunits"
	"github.com/cleared-dev/coa/internal/tablestore"
	"github.com/cleared-dev/coa/internal/transform"
)

// project is an opened COA project: its config, table store and the run
// every command invocation records under.
type project struct {
	root     string
	cfg      *config.Config
	store    tablestore.Store
	subunits *subunits.Cache
	log      *slog.Logger
	runID    string
	entries  []runlog.Entry
}

func repoRoot(cmd *cobra.Command) (string, error) {
	repo, err := cmd.Flags().GetString("repo")
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(repo)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

func openProject(cmd *cobra.Command) (*project, error) {
	root, err := repoRoot(cmd)
	if err != nil {
		return nil, err
	}
	return openProjectAt(cmd, root)
}

func openProjectAt(cmd *cobra.Command, root string) (*project, error) {
	cfg, err := config.LoadProject(root)
	if err != nil {
		return nil, fmt.Errorf("loading project at %s: %w", root, err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	store, err := tablestore.Open(cfg.Store.Backend, cfg.StorePath(root))
	if err != nil {
		return nil, fmt.Errorf("opening table store: %w", err)
	}

	p := &project{
		root:  root,
		cfg:   cfg,
		store: store,
		runID: runlog.NewRunID(),
	}
	p.subunits = subunits.NewCache(subunits.StoreSource{Store: store, Table: cfg.Tables.BusinessSubunit}, cfg.Cache.TTL)
	p.log = logging.WithRun(p.runID).With("command", cmd.Name())
	return p, nil
}

// Close flushes the run log and closes the store.
func (p *project) Close() error {
	var errs []error
	if len(p.entries) > 0 {
		if err := runlog.Append(p.root, p.entries); err != nil {
			errs = append(errs, fmt.Errorf("writing run log: %w", err))
		}
		p.entries = nil
	}
	if err := p.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing table store: %w", err))
	}
	return errors.Join(errs...)
}

func options(cfg *config.Config) transform.Options {
	return transform.Options{
		MaxDepth:    cfg.Transform.MaxDepth,
		RootMarkers: cfg.Transform.RootMarkers,
	}
}

// readInput loads the stored COA input. An absent table is ErrNoInput.
func (p *project) readInput(ctx context.Context) ([]model.Account, error) {
	t, err := p.store.Read(ctx, p.cfg.Tables.Input)
	if errors.Is(err, tablestore.ErrNotFound) {
		return nil, fmt.Errorf("table %s: %w", p.cfg.Tables.Input, transform.ErrNoInput)
	}
	if err != nil {
		return nil, err
	}
	accts, err := dataset.AccountsFromTable(t)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", p.cfg.Tables.Input, err)
	}
	return accts, nil
}

// readEnriched loads the stored enriched COA. An absent table is ErrNoOutput.
func (p *project) readEnriched(ctx context.Context) ([]model.EnrichedNode, error) {
	t, err := p.store.Read(ctx, p.cfg.Tables.Enriched)
	if errors.Is(err, tablestore.ErrNotFound) {
		return nil, fmt.Errorf("table %s: %w", p.cfg.Tables.Enriched, transform.ErrNoOutput)
	}
	if err != nil {
		return nil, err
	}
	nodes, err := dataset.NodesFromTable(t)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", p.cfg.Tables.Enriched, err)
	}
	return nodes, nil
}

// loadSubunits reads the business subunit table through the cache. An
// absent table is ErrNoSubunits.
func (p *project) loadSubunits(ctx context.Context) ([]model.BusinessSubunit, error) {
	subs, err := p.subunits.Subunits(ctx)
	if errors.Is(err, tablestore.ErrNotFound) {
		return nil, fmt.Errorf("table %s: %w", p.cfg.Tables.BusinessSubunit, transform.ErrNoSubunits)
	}
	return subs, err
}

// writeTable stores a dataset and records it in the run log.
func (p *project) writeTable(ctx context.Context, action, id string, t *tablestore.Table, details string) error {
	if err := p.store.Write(ctx, id, t); err != nil {
		return fmt.Errorf("writing %s: %w", id, err)
	}
	p.log.Info("table written", "table", id, "rows", t.Len())
	p.entries = append(p.entries, runlog.Entry{
		Timestamp: time.Now().UTC(),
		RunID:     p.runID,
		Action:    action,
		Table:     id,
		Rows:      t.Len(),
		Details:   details,
	})
	return nil
}

// checkpointer is a store that can flush pending writes into its file.
type checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// commit records the project state in git when asked to or when
// git.auto_commit is on. It is a no-op outside a git repository or when
// nothing changed.
func (p *project) commit(ctx context.Context, force bool, message string) (string, error) {
	if !force && !p.cfg.Git.AutoCommit {
		return "", nil
	}
	if !gitops.IsRepo(p.root) {
		p.log.Warn("not a git repository, skipping commit", "dir", p.root)
		return "", nil
	}

	if cp, ok := p.store.(checkpointer); ok {
		if err := cp.Checkpoint(ctx); err != nil {
			return "", err
		}
	}

	// The run log goes into the same commit.
	if len(p.entries) > 0 {
		if err := runlog.Append(p.root, p.entries); err != nil {
			return "", fmt.Errorf("writing run log: %w", err)
		}
		p.entries = nil
	}

	changed, err := gitops.HasChanges(p.root)
	if err != nil {
		return "", err
	}
	if !changed {
		p.log.Info("nothing to commit")
		return "", nil
	}

	hash, err := gitops.Commit(p.root, message, gitops.Author{Name: p.cfg.Git.AuthorName, Email: p.cfg.Git.AuthorEmail})
	if err != nil {
		return "", err
	}
	p.log.Info("committed", "hash", hash)
	p.entries = append(p.entries, runlog.Entry{
		Timestamp:  time.Now().UTC(),
		RunID:      p.runID,
		Action:     "commit",
		Details:    message,
		CommitHash: hash,
	})
	return hash, nil
}
