package transform

import (
	"github.com/cleared-dev/coa/internal/id"
	"github.com/cleared-dev/coa/internal/model"
)

// Flatten fills the L1..L10 level columns, the indented name and the parent
// name of every node in place. Levels below a node's own depth repeat the
// node's deepest path segment.
func Flatten(nodes []model.EnrichedNode) {
	for i := range nodes {
		n := &nodes[i]
		for l := range model.MaxLevels {
			n.LevelCode[l] = id.Segment(n.FullCodePath, l, n.Level)
			n.LevelName[l] = id.Segment(n.FullNamePath, l, n.Level)
			n.LevelNameNoRank[l] = id.StripRank(n.LevelName[l])
		}
		n.NameIndent = n.Indent + n.Name
		if n.Parent >= 0 {
			n.NameParent = nodes[n.Parent].Name
		}
	}
}
