package transform

import (
	"sort"

	"github.com/cleared-dev/coa/internal/model"
)

// ClassifyLeaves marks every node whose code is nobody's parent code as a
// leaf, then orders nodes by statement type and order ascending. Ties fall
// back to the full code path so the output is reproducible. Parent indices
// are rewritten to follow the new order.
func ClassifyLeaves(nodes []model.EnrichedNode) {
	parents := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		parents[n.ParentCode] = struct{}{}
	}
	for i := range nodes {
		_, isParent := parents[nodes[i].Code]
		nodes[i].IsLeaf = !isParent
	}

	sortNodes(nodes)
}

func sortNodes(nodes []model.EnrichedNode) {
	pos := make([]int, len(nodes))
	for i := range pos {
		pos[i] = i
	}
	sort.SliceStable(pos, func(i, j int) bool {
		a, b := nodes[pos[i]], nodes[pos[j]]
		if a.Statement != b.Statement {
			return a.Statement < b.Statement
		}
		if c := a.Order.Decimal.Cmp(b.Order.Decimal); c != 0 {
			return c < 0
		}
		return a.FullCodePath < b.FullCodePath
	})

	moved := make([]int, len(nodes))
	for to, from := range pos {
		moved[from] = to
	}
	sorted := make([]model.EnrichedNode, len(nodes))
	for to, from := range pos {
		n := nodes[from]
		if n.Parent >= 0 {
			n.Parent = moved[n.Parent]
		}
		sorted[to] = n
	}
	copy(nodes, sorted)
}
