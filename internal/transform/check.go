package transform

import (
	"github.com/cleared-dev/coa/internal/model"
)

// Missing returns the input accounts whose code never appears in the
// enriched output, in input order.
func Missing(input []model.Account, nodes []model.EnrichedNode) ([]model.Account, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	if nodes == nil {
		return nil, ErrNoOutput
	}

	present := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		present[n.Code] = struct{}{}
	}

	missing := []model.Account{}
	for _, a := range input {
		if _, ok := present[a.Code]; !ok {
			missing = append(missing, a)
		}
	}
	return missing, nil
}

// Summary describes one pipeline run.
type Summary struct {
	InputRows           int
	Unordered           int
	Placed              int
	Dropped             int
	MaxLevel            int
	Leaves              int
	BalanceSheet        int
	ProfitLoss          int
	LargestSiblingGroup int
}

// Summarize counts what a run produced and what it dropped.
func Summarize(r *Result) Summary {
	s := Summary{
		InputRows:           len(r.Input),
		Placed:              len(r.Nodes),
		LargestSiblingGroup: largestSiblingGroup(r.Input),
	}
	for _, a := range r.Input {
		if !a.HasOrder() {
			s.Unordered++
		}
	}
	s.Dropped = s.InputRows - s.Placed
	for _, n := range r.Nodes {
		if n.Level > s.MaxLevel {
			s.MaxLevel = n.Level
		}
		if n.IsLeaf {
			s.Leaves++
		}
		switch n.Statement {
		case model.StatementBalanceSheet:
			s.BalanceSheet++
		case model.StatementProfitLoss:
			s.ProfitLoss++
		}
	}
	return s
}
