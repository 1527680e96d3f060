// Package dataset converts pipeline outputs to and from column-named tables.
package dataset

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cleared-dev/coa/internal/accounts"
	"github.com/cleared-dev/coa/internal/id"
	"github.com/cleared-dev/coa/internal/model"
	"github.com/cleared-dev/coa/internal/tablestore"
)

// Column names of the enriched COA beyond the input columns.
const (
	ColLevel      = "NUM_FIN_STAT_LEVEL"
	ColRank       = "CODE_FIN_STAT_RANK"
	ColNameIndent = "NAME_FIN_STAT_INDENT"
	ColNameParent = "NAME_FIN_STAT_PARENT"
	ColIsLeaf     = "NFLAG_IS_LEAF"
	ColCodeFull   = "CODE_FIN_STAT_FULL"
	ColNameFull   = "NAME_FIN_STAT_FULL"

	ColSubunitFK   = "FK_BUSINESS_SUBUNIT"
	ColSourceCode  = "SOURCE_CODE_FIN_STAT"
	ColValidFrom   = "DATEID_VALID_FROM"
	ColValidTo     = "DATEID_VALID_TO"
	ColDescription = "DESC_FININ"
)

func levelCodeCol(l int) string   { return fmt.Sprintf("CODE_FIN_STAT_L%d", l+1) }
func levelNameCol(l int) string   { return fmt.Sprintf("NAME_FIN_STAT_L%d", l+1) }
func levelNoRankCol(l int) string { return fmt.Sprintf("NAME_FIN_STAT_L%d_ORDERED_NAME", l+1) }

// EnrichedColumns is the column order of the enriched COA.
func EnrichedColumns() []string {
	cols := []string{
		ColLevel, accounts.ColOrder, ColRank, accounts.ColCode, accounts.ColName,
		ColNameIndent, accounts.ColParent, ColNameParent, accounts.ColNameEnglish,
		accounts.ColType, accounts.ColStatement, ColIsLeaf, ColCodeFull, ColNameFull,
	}
	for l := range model.MaxLevels {
		cols = append(cols, levelCodeCol(l))
	}
	for l := range model.MaxLevels {
		cols = append(cols, levelNameCol(l))
	}
	for l := range model.MaxLevels {
		cols = append(cols, levelNoRankCol(l))
	}
	return cols
}

// MappingColumns is the column order of the central mapping.
var MappingColumns = []string{ColSubunitFK, ColSourceCode, accounts.ColCentralCode, ColValidFrom, ColValidTo, ColDescription}

// MissingColumns is the column order of the consistency report.
var MissingColumns = []string{
	accounts.ColOrder, accounts.ColCode, accounts.ColName, accounts.ColParent,
	accounts.ColType, accounts.ColStatement, accounts.ColNameEnglish,
}

func formatOrder(a model.Account) string {
	if !a.Order.Valid {
		return ""
	}
	return a.Order.Decimal.String()
}

func formatLeaf(leaf bool) string {
	if leaf {
		return "1"
	}
	return "0"
}

func enrichedRow(n model.EnrichedNode) []string {
	row := []string{
		strconv.Itoa(n.Level), formatOrder(n.Account), n.SiblingRank, n.Code, n.Name,
		n.NameIndent, n.ParentCode, n.NameParent, n.NameEnglish,
		string(n.Type), string(n.Statement), formatLeaf(n.IsLeaf), n.FullCodePath, n.FullNamePath,
	}
	row = append(row, n.LevelCode[:]...)
	row = append(row, n.LevelName[:]...)
	row = append(row, n.LevelNameNoRank[:]...)
	return row
}

// AccountsTable renders the raw COA input.
func AccountsTable(accts []model.Account) *tablestore.Table {
	t := &tablestore.Table{Columns: slices.Clone(accounts.Header)}
	for _, a := range accts {
		t.Rows = append(t.Rows, accounts.MarshalAccount(a))
	}
	return t
}

// AccountsFromTable decodes a stored COA input table.
func AccountsFromTable(t *tablestore.Table) ([]model.Account, error) {
	return accounts.FromRecords(t.Columns, t.Rows)
}

// EnrichedTable renders the enriched COA.
func EnrichedTable(nodes []model.EnrichedNode) *tablestore.Table {
	t := &tablestore.Table{Columns: EnrichedColumns()}
	for _, n := range nodes {
		t.Rows = append(t.Rows, enrichedRow(n))
	}
	return t
}

// SubunitTable renders the enriched COA of one business subunit.
func SubunitTable(rows []model.SubunitAccount) *tablestore.Table {
	t := &tablestore.Table{Columns: append([]string{accounts.ColSubunit}, EnrichedColumns()...)}
	for _, r := range rows {
		t.Rows = append(t.Rows, append([]string{r.SubunitID}, enrichedRow(r.EnrichedNode)...))
	}
	return t
}

// MappingTable renders the central mapping.
func MappingTable(rows []model.CentralMapping) *tablestore.Table {
	t := &tablestore.Table{Columns: slices.Clone(MappingColumns)}
	for _, m := range rows {
		t.Rows = append(t.Rows, []string{m.SubunitID, m.SourceCode, m.CentralCode, m.ValidFrom, m.ValidTo, m.Description})
	}
	return t
}

// MissingTable renders the consistency report.
func MissingTable(accts []model.Account) *tablestore.Table {
	t := &tablestore.Table{Columns: slices.Clone(MissingColumns)}
	for _, a := range accts {
		t.Rows = append(t.Rows, []string{
			formatOrder(a), a.Code, a.Name, a.ParentCode, string(a.Type), string(a.Statement), a.NameEnglish,
		})
	}
	return t
}

// NodesFromTable decodes a stored enriched COA. Parent indices are rebuilt
// from the full code paths.
func NodesFromTable(t *tablestore.Table) ([]model.EnrichedNode, error) {
	col := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		col[strings.ToUpper(strings.TrimSpace(c))] = i
	}
	for _, required := range []string{accounts.ColCode, ColLevel, ColCodeFull} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("enriched table has no %s column", required)
		}
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	nodes := make([]model.EnrichedNode, 0, len(t.Rows))
	byPath := make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		level, err := strconv.Atoi(get(row, ColLevel))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing %s %q: %w", i+2, ColLevel, get(row, ColLevel), err)
		}
		n := model.EnrichedNode{
			Account: model.Account{
				BusinessSubunit: get(row, accounts.ColSubunit),
				Order:           accounts.ParseOrder(get(row, accounts.ColOrder)),
				Code:            get(row, accounts.ColCode),
				Name:            get(row, accounts.ColName),
				ParentCode:      get(row, accounts.ColParent),
				Type:            model.AccountType(get(row, accounts.ColType)),
				Statement:       model.StatementType(get(row, accounts.ColStatement)),
				NameEnglish:     get(row, accounts.ColNameEnglish),
				CentralCode:     get(row, accounts.ColCentralCode),
			},
			Level:        level,
			SiblingRank:  get(row, ColRank),
			Indent:       strings.Repeat("--- ", level),
			NameIndent:   get(row, ColNameIndent),
			NameParent:   get(row, ColNameParent),
			FullCodePath: get(row, ColCodeFull),
			FullNamePath: get(row, ColNameFull),
			IsLeaf:       get(row, ColIsLeaf) == "1",
			Parent:       -1,
		}
		for l := range model.MaxLevels {
			n.LevelCode[l] = get(row, levelCodeCol(l))
			n.LevelName[l] = get(row, levelNameCol(l))
			n.LevelNameNoRank[l] = get(row, levelNoRankCol(l))
		}
		if _, dup := byPath[n.FullCodePath]; !dup {
			byPath[n.FullCodePath] = i
		}
		nodes = append(nodes, n)
	}

	for i := range nodes {
		segs := id.SplitPath(nodes[i].FullCodePath)
		if len(segs) < 2 {
			continue
		}
		if p, ok := byPath[strings.Join(segs[:len(segs)-1], id.PathSeparator)]; ok {
			nodes[i].Parent = p
		}
	}
	return nodes, nil
}
