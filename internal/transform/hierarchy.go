package transform

import (
	"slices"

	"github.com/cleared-dev/coa/internal/id"
	"github.com/cleared-dev/coa/internal/model"
)

// DefaultMaxDepth is the deepest level the builder expands to.
const DefaultMaxDepth = 10

const indentUnit = "--- "

// Options controls hierarchy expansion.
type Options struct {
	MaxDepth    int
	RootMarkers []string
}

// DefaultOptions returns the reference expansion settings.
func DefaultOptions() Options {
	return Options{
		MaxDepth:    DefaultMaxDepth,
		RootMarkers: slices.Clone(model.RootMarkers),
	}
}

// BuildHierarchy places ranked accounts breadth-first from the root markers
// down to opts.MaxDepth. Accounts whose parent is never placed (dangling
// reference, cycle, or beyond the depth bound) are left out. Each account is
// placed at most once.
//
// Parent lookup is by code alone: a child is attached to any placed node
// whose code equals its parent code, whatever the statement type.
func BuildHierarchy(ranked []Ranked, opts Options) []model.EnrichedNode {
	children := make(map[string][]int)
	for i, r := range ranked {
		children[r.ParentCode] = append(children[r.ParentCode], i)
	}

	nodes := make([]model.EnrichedNode, 0, len(ranked))
	placed := make([]bool, len(ranked))

	var frontier []int
	for i, r := range ranked {
		if !slices.Contains(opts.RootMarkers, r.ParentCode) {
			continue
		}
		placed[i] = true
		frontier = append(frontier, len(nodes))
		nodes = append(nodes, model.EnrichedNode{
			Account:      r.Account,
			Level:        0,
			SiblingRank:  r.Rank,
			FullCodePath: r.Code,
			FullNamePath: id.RankedName(r.Rank, r.Name),
			Parent:       -1,
		})
	}

	for level := 1; level <= opts.MaxDepth && len(frontier) > 0; level++ {
		var next []int
		for _, p := range frontier {
			parent := nodes[p]
			for _, c := range children[parent.Code] {
				if placed[c] {
					continue
				}
				placed[c] = true
				r := ranked[c]
				next = append(next, len(nodes))
				nodes = append(nodes, model.EnrichedNode{
					Account:      r.Account,
					Level:        parent.Level + 1,
					SiblingRank:  r.Rank,
					Indent:       parent.Indent + indentUnit,
					FullCodePath: id.JoinPath(parent.FullCodePath, r.Code),
					FullNamePath: id.JoinPath(parent.FullNamePath, id.RankedName(r.Rank, r.Name)),
					Parent:       p,
				})
			}
		}
		frontier = next
	}
	return nodes
}
