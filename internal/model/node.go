package model

// MaxLevels is the number of flattened level columns on every enriched node.
const MaxLevels = 10

// EnrichedNode is an account placed in the hierarchy with its derived columns.
type EnrichedNode struct {
	Account

	Level        int
	SiblingRank  string
	Indent       string
	NameIndent   string
	NameParent   string
	FullCodePath string
	FullNamePath string
	IsLeaf       bool

	LevelCode       [MaxLevels]string
	LevelName       [MaxLevels]string
	LevelNameNoRank [MaxLevels]string

	// Parent is the index of the parent node in the same result, -1 for roots.
	Parent int
}

// BusinessSubunit is a partition of the COA. Only the id is used.
type BusinessSubunit struct {
	ID   string
	Name string
}

// SubunitAccount is an enriched node materialized for one business subunit.
type SubunitAccount struct {
	SubunitID string
	EnrichedNode
}

// CentralMapping maps a subunit-local code onto the central chart of accounts.
type CentralMapping struct {
	SubunitID   string
	SourceCode  string
	CentralCode string
	ValidFrom   string
	ValidTo     string
	Description string
}
