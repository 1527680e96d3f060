package transform

import (
	"errors"
	"slices"

	"github.com/cleared-dev/coa/internal/model"
)

var (
	// ErrNoInput is returned when a stage needs the raw COA and none was given.
	ErrNoInput = errors.New("COA input has not been provided")
	// ErrNoOutput is returned when a stage needs the enriched COA before it was produced.
	ErrNoOutput = errors.New("enriched COA has not been produced, run the transformation first")
	// ErrNoSubunits is returned when the business subunit table has not been loaded.
	ErrNoSubunits = errors.New("business subunits have not been loaded")
)

// Result is one pipeline run: the input snapshot and the enriched nodes.
type Result struct {
	Input []model.Account
	Nodes []model.EnrichedNode
}

// Transform runs rank, hierarchy, flatten and leaf classification over a
// copy of accounts. The same input always yields the same result.
func Transform(accounts []model.Account, opts Options) *Result {
	input := slices.Clone(accounts)
	if input == nil {
		input = []model.Account{}
	}

	nodes := BuildHierarchy(Rank(input), opts)
	Flatten(nodes)
	ClassifyLeaves(nodes)

	return &Result{Input: input, Nodes: nodes}
}
