package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/coa/internal/accounts"
	"github.com/cleared-dev/coa/internal/id"
	"github.com/cleared-dev/coa/internal/model"
	"github.com/cleared-dev/coa/internal/runlog"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the input table against the chart rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, p.Close()) }()

			input, err := p.readInput(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			findings := accounts.Validate(input, p.cfg.Transform.RootMarkers)
			if len(findings) == 0 {
				fmt.Fprintf(out, "%s: %d rows, no findings\n", p.cfg.Tables.Input, len(input))
				return nil
			}
			for _, f := range findings {
				fmt.Fprintln(out, f.Error())
			}
			return fmt.Errorf("%d validation findings in %s", len(findings), p.cfg.Tables.Input)
		},
	}
}

func newTreeCommand() *cobra.Command {
	var statement string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the enriched COA as an indented tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, p.Close()) }()

			nodes, err := p.readEnriched(cmd.Context())
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), nodes, model.StatementType(strings.ToUpper(statement)))
			return nil
		},
	}

	cmd.Flags().StringVar(&statement, "statement", "", "only this statement type (BS or PL)")
	return cmd
}

// printTree writes nodes depth-first, children in stored order. With a
// statement filter, a node whose parent reports on the other statement is
// printed as a root.
func printTree(w io.Writer, nodes []model.EnrichedNode, statement model.StatementType) {
	shown := func(n model.EnrichedNode) bool {
		return statement == "" || n.Statement == statement
	}
	children := make(map[int][]int)
	var roots []int
	for i, n := range nodes {
		if !shown(n) {
			continue
		}
		if n.Parent < 0 || !shown(nodes[n.Parent]) {
			roots = append(roots, i)
		} else {
			children[n.Parent] = append(children[n.Parent], i)
		}
	}

	var walk func(i int)
	walk = func(i int) {
		n := nodes[i]
		leaf := ""
		if n.IsLeaf {
			leaf = " *"
		}
		fmt.Fprintf(w, "%s%s  %s%s\n", n.Indent, n.Code, id.RankedName(n.SiblingRank, n.Name), leaf)
		for _, c := range children[i] {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
}

func newAccountsCommand() *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Look up and edit accounts in the input table",
	}
	accountsCmd.AddCommand(
		newAccountsSearchCommand(),
		newAccountsShowCommand(),
		newAccountsNextOrderCommand(),
		newAccountsAddCommand(),
		newAccountsUpdateCommand(),
		newAccountsDeleteCommand(),
	)
	return accountsCmd
}

// openService loads the input table into a lookup service.
func openService(cmd *cobra.Command) (svc *accounts.Service, err error) {
	p, err := openProject(cmd)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, p.Close()) }()

	input, err := p.readInput(cmd.Context())
	if err != nil {
		return nil, err
	}
	return accounts.NewService(input), nil
}

func newAccountsSearchCommand() *cobra.Command {
	var f struct {
		subunit, typ, statement string
	}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Find accounts by code or name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd)
			if err != nil {
				return err
			}
			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			found := svc.Search(query, accounts.Filter{
				Subunit:   f.subunit,
				Type:      model.AccountType(strings.ToUpper(f.typ)),
				Statement: model.StatementType(strings.ToUpper(f.statement)),
			})
			printAccounts(cmd.OutOrStdout(), found)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.subunit, "subunit", "", "only this business subunit")
	cmd.Flags().StringVar(&f.typ, "type", "", "only this account type (A, P, R, C)")
	cmd.Flags().StringVar(&f.statement, "statement", "", "only this statement type (BS, PL)")
	return cmd
}

func newAccountsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Print an account and its descendants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd)
			if err != nil {
				return err
			}
			t, ok := svc.Subtree(args[0])
			if !ok {
				return fmt.Errorf("account %s not found", args[0])
			}
			printSubtree(cmd.OutOrStdout(), t, 0)
			return nil
		},
	}
}

func newAccountsNextOrderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "next-order <parent>",
		Short: "Suggest the order for a new child of parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), svc.NextOrderForParent(args[0]).String())
			return nil
		},
	}
}

func printAccounts(w io.Writer, accts []model.Account) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tORDER\tNAME\tPARENT\tTYPE\tSTATEMENT\tSUBUNIT")
	for _, a := range accts {
		order := ""
		if a.Order.Valid {
			order = a.Order.Decimal.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", a.Code, order, a.Name, a.ParentCode, a.Type, a.Statement, a.BusinessSubunit)
	}
	tw.Flush()
}

func printSubtree(w io.Writer, t accounts.Tree, depth int) {
	fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat("  ", depth), t.Account.Code, t.Account.Name)
	for _, c := range t.Children {
		printSubtree(w, c, depth+1)
	}
}

func newLogCommand() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print the run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := repoRoot(cmd)
			if err != nil {
				return err
			}
			entries, err := runlog.Read(root)
			if err != nil {
				return err
			}
			if runID != "" {
				entries = runlog.ForRun(entries, runID)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tRUN\tACTION\tTABLE\tROWS\tDETAILS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					e.Timestamp.Format("2006-01-02 15:04:05"), e.RunID[:8], e.Action, e.Table, e.Rows, e.Details)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "only entries of this run id")
	return cmd
}
