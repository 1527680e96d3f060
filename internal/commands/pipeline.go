package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/coa/internal/dataset"
	"github.com/cleared-dev/coa/internal/model"
	"github.com/cleared-dev/coa/internal/transform"
)

// maxRankedSiblings is the largest sibling group whose two-digit ranks
// strip cleanly from level names.
const maxRankedSiblings = 99

func newTransformCommand() *cobra.Command {
	var commit bool

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Build the enriched COA from the input table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, p.Close()) }()
			ctx := cmd.Context()

			input, err := p.readInput(ctx)
			if err != nil {
				return err
			}
			res, err := p.transform(ctx, input)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), p.cfg.Tables.Enriched, transform.Summarize(res))

			_, err = p.commit(ctx, commit, fmt.Sprintf("transform: %s (%d rows)", p.cfg.Tables.Enriched, len(res.Nodes)))
			return err
		},
	}

	cmd.Flags().BoolVar(&commit, "commit", false, "commit the outputs to git")
	return cmd
}

func newSubunitCommand() *cobra.Command {
	var subunitID string

	cmd := &cobra.Command{
		Use:   "subunit",
		Short: "Build the enriched COA of one business subunit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, p.Close()) }()
			ctx := cmd.Context()

			nodes, err := p.readEnriched(ctx)
			if err != nil {
				return err
			}
			id := p.subunitID(subunitID)
			n, err := p.subunitCOA(ctx, nodes, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows\n", p.cfg.SubunitCOATable(id), n)

			_, err = p.commit(ctx, false, fmt.Sprintf("subunit: %s (%d rows)", p.cfg.SubunitCOATable(id), n))
			return err
		},
	}

	cmd.Flags().StringVar(&subunitID, "id", "", "business subunit (default transform.business_subunit)")
	return cmd
}

func newMappingCommand() *cobra.Command {
	var subunitID string

	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Build the central mapping of one business subunit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, p.Close()) }()
			ctx := cmd.Context()

			input, err := p.readInput(ctx)
			if err != nil {
				return err
			}
			id := p.subunitID(subunitID)
			n, err := p.centralMapping(ctx, input, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows\n", p.cfg.MappingTable(id), n)

			_, err = p.commit(ctx, false, fmt.Sprintf("mapping: %s (%d rows)", p.cfg.MappingTable(id), n))
			return err
		},
	}

	cmd.Flags().StringVar(&subunitID, "id", "", "business subunit (default transform.business_subunit)")
	return cmd
}

func newCheckCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "List input rows missing from the enriched COA",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, p.Close()) }()
			ctx := cmd.Context()

			input, err := p.readInput(ctx)
			if err != nil {
				return err
			}
			nodes, err := p.readEnriched(ctx)
			if err != nil {
				return err
			}
			missing, err := p.check(ctx, input, nodes)
			if err != nil {
				return err
			}

			printMissing(cmd.OutOrStdout(), missing)
			if _, err := p.commit(ctx, false, fmt.Sprintf("check: %s (%d missing)", p.cfg.Tables.Missing, len(missing))); err != nil {
				return err
			}
			if strict && len(missing) > 0 {
				return fmt.Errorf("%d input rows missing from %s", len(missing), p.cfg.Tables.Enriched)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any input row is missing")
	return cmd
}

func newRunCommand() *cobra.Command {
	var subunitID string
	var commit bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run transform, subunit, mapping and check in one pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, p.Close()) }()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			input, err := p.readInput(ctx)
			if err != nil {
				return err
			}
			res, err := p.transform(ctx, input)
			if err != nil {
				return err
			}
			printSummary(out, p.cfg.Tables.Enriched, transform.Summarize(res))

			id := p.subunitID(subunitID)
			n, err := p.subunitCOA(ctx, res.Nodes, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d rows\n", p.cfg.SubunitCOATable(id), n)

			n, err = p.centralMapping(ctx, res.Input, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d rows\n", p.cfg.MappingTable(id), n)

			missing, err := p.check(ctx, res.Input, res.Nodes)
			if err != nil {
				return err
			}
			printMissing(out, missing)

			_, err = p.commit(ctx, commit, fmt.Sprintf("run: %s for %s (%d rows, %d missing)", p.cfg.Tables.Enriched, id, len(res.Nodes), len(missing)))
			return err
		},
	}

	cmd.Flags().StringVar(&subunitID, "id", "", "business subunit (default transform.business_subunit)")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the outputs to git")
	return cmd
}

func (p *project) subunitID(flag string) string {
	if flag != "" {
		return flag
	}
	return p.cfg.Transform.BusinessSubunit
}

func (p *project) transform(ctx context.Context, input []model.Account) (*transform.Result, error) {
	res := transform.Transform(input, options(p.cfg))
	s := transform.Summarize(res)

	p.log.Info("transform done",
		"rows", s.InputRows,
		"placed", s.Placed,
		"dropped", s.Dropped,
		"max_level", s.MaxLevel,
	)
	if s.Dropped > s.Unordered {
		p.log.Warn("rows not reachable from a root marker", "count", s.Dropped-s.Unordered)
	}
	if s.LargestSiblingGroup > maxRankedSiblings {
		p.log.Warn("sibling group exceeds two-digit ranks, ordered names may be truncated",
			"size", s.LargestSiblingGroup)
	}

	details := fmt.Sprintf("%d of %d input rows placed", s.Placed, s.InputRows)
	if err := p.writeTable(ctx, "transform", p.cfg.Tables.Enriched, dataset.EnrichedTable(res.Nodes), details); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *project) subunitCOA(ctx context.Context, nodes []model.EnrichedNode, id string) (int, error) {
	subs, err := p.loadSubunits(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := transform.SubunitCOA(nodes, id, subs)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		p.log.Warn("business subunit not in reference table", "subunit", id)
	}
	if err := p.writeTable(ctx, "subunit", p.cfg.SubunitCOATable(id), dataset.SubunitTable(rows), id); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (p *project) centralMapping(ctx context.Context, input []model.Account, id string) (int, error) {
	subs, err := p.loadSubunits(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := transform.CentralMapping(input, id, subs)
	if err != nil {
		return 0, err
	}
	if err := p.writeTable(ctx, "mapping", p.cfg.MappingTable(id), dataset.MappingTable(rows), id); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (p *project) check(ctx context.Context, input []model.Account, nodes []model.EnrichedNode) ([]model.Account, error) {
	missing, err := transform.Missing(input, nodes)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		p.log.Warn("input rows missing from enriched COA", "count", len(missing))
	}
	details := fmt.Sprintf("%d missing", len(missing))
	if err := p.writeTable(ctx, "check", p.cfg.Tables.Missing, dataset.MissingTable(missing), details); err != nil {
		return nil, err
	}
	return missing, nil
}

func printSummary(w io.Writer, table string, s transform.Summary) {
	fmt.Fprintf(w, "%s: %d rows (%d BS, %d PL), %d leaves, max level %d\n",
		table, s.Placed, s.BalanceSheet, s.ProfitLoss, s.Leaves, s.MaxLevel)
	if s.Dropped > 0 {
		fmt.Fprintf(w, "dropped %d of %d input rows (%d without order)\n", s.Dropped, s.InputRows, s.Unordered)
	}
}

func printMissing(w io.Writer, missing []model.Account) {
	if len(missing) == 0 {
		fmt.Fprintln(w, "all input rows present")
		return
	}
	fmt.Fprintf(w, "%d input rows missing:\n", len(missing))
	for _, a := range missing {
		fmt.Fprintf(w, "  %s\t%s\t(parent %s)\n", a.Code, a.Name, a.ParentCode)
	}
}
