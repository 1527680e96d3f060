package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/coa/internal/model"
)

var testSubunits = []model.BusinessSubunit{
	{ID: "KBC", Name: "Main"},
	{ID: "XYZ", Name: "Other"},
}

func TestSubunitCOA(t *testing.T) {
	res := Transform(sampleChart(), DefaultOptions())

	rows, err := SubunitCOA(res.Nodes, "KBC", testSubunits)
	require.NoError(t, err)
	require.Len(t, rows, len(res.Nodes))
	for i, row := range rows {
		assert.Equal(t, "KBC", row.SubunitID)
		assert.Equal(t, res.Nodes[i], row.EnrichedNode)
	}
}

func TestSubunitCOA_Cardinality(t *testing.T) {
	res := Transform(sampleChart(), DefaultOptions())

	tests := []struct {
		name     string
		subunits []model.BusinessSubunit
		want     int
	}{
		{"no match", []model.BusinessSubunit{{ID: "XYZ"}}, 0},
		{"empty table", []model.BusinessSubunit{}, 0},
		{"one match", testSubunits, len(res.Nodes)},
		{"duplicate match", []model.BusinessSubunit{{ID: "KBC"}, {ID: "KBC"}}, 2 * len(res.Nodes)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := SubunitCOA(res.Nodes, "KBC", tt.subunits)
			require.NoError(t, err)
			assert.Len(t, rows, tt.want)
		})
	}
}

func TestSubunitCOA_Preconditions(t *testing.T) {
	_, err := SubunitCOA(nil, "KBC", testSubunits)
	assert.ErrorIs(t, err, ErrNoOutput)

	res := Transform(sampleChart(), DefaultOptions())
	_, err = SubunitCOA(res.Nodes, "KBC", nil)
	assert.ErrorIs(t, err, ErrNoSubunits)
}

func TestCentralMapping(t *testing.T) {
	input := sampleChart()
	rows, err := CentralMapping(input, "KBC", testSubunits)
	require.NoError(t, err)
	require.Len(t, rows, len(input), "raw input rows are mapped, unordered ones included")

	for i, row := range rows {
		assert.Equal(t, "KBC", row.SubunitID)
		assert.Equal(t, input[i].Code, row.SourceCode)
		assert.Equal(t, input[i].CentralCode, row.CentralCode)
		assert.Equal(t, "20000101", row.ValidFrom)
		assert.Equal(t, "30000101", row.ValidTo)
		assert.Equal(t, input[i].Name, row.Description)
	}
}

func TestCentralMapping_TruncatesDescription(t *testing.T) {
	long := strings.Repeat("é", 2000)
	rows, err := CentralMapping([]model.Account{{Code: "A", Name: long}}, "KBC", testSubunits)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, MaxDescriptionLen, len([]rune(rows[0].Description)))
}

func TestCentralMapping_Preconditions(t *testing.T) {
	_, err := CentralMapping(nil, "KBC", testSubunits)
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = CentralMapping(sampleChart(), "KBC", nil)
	assert.ErrorIs(t, err, ErrNoSubunits)

	rows, err := CentralMapping(sampleChart(), "NONE", testSubunits)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMissing(t *testing.T) {
	res := Transform(sampleChart(), DefaultOptions())
	missing, err := Missing(res.Input, res.Nodes)
	require.NoError(t, err)

	var got []string
	for _, a := range missing {
		got = append(got, a.Code)
	}
	assert.Equal(t, []string{"X", "O"}, got, "unordered row and orphan are reported")
}

func TestMissing_CleanInput(t *testing.T) {
	input := []model.Account{
		acct("A1", "Top", "BS", "100", model.AccountTypeAsset, model.StatementBalanceSheet),
		acct("A2", "Child", "A1", "100", model.AccountTypeAsset, model.StatementBalanceSheet),
		acct("R1", "Revenue", "PL", "200", model.AccountTypeRevenue, model.StatementProfitLoss),
	}
	res := Transform(input, DefaultOptions())
	missing, err := Missing(res.Input, res.Nodes)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestMissing_Preconditions(t *testing.T) {
	_, err := Missing(nil, []model.EnrichedNode{})
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = Missing(sampleChart(), nil)
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestSummarize(t *testing.T) {
	s := Summarize(Transform(sampleChart(), DefaultOptions()))
	assert.Equal(t, Summary{
		InputRows:           9,
		Unordered:           1,
		Placed:              7,
		Dropped:             2,
		MaxLevel:            2,
		Leaves:              4,
		BalanceSheet:        5,
		ProfitLoss:          2,
		LargestSiblingGroup: 2,
	}, s)
}
