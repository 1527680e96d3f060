package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/coa/internal/dataset"
	"github.com/cleared-dev/coa/internal/importer"
)

func TestValidate_StarterChart(t *testing.T) {
	dir := newProject(t)
	out, err := runCoa(t, "validate", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "coa_input: 13 rows, no findings")
}

func TestValidate_Findings(t *testing.T) {
	dir := importedProject(t)
	out, err := runCoa(t, "validate", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "rule 4 [C9]")
	assert.Contains(t, out, "1 validation findings")
}

func TestTree(t *testing.T) {
	dir := importedProject(t)
	_, err := runCoa(t, "transform", "--repo", dir)
	require.NoError(t, err)

	out, err := runCoa(t, "tree", "--repo", dir)
	require.NoError(t, err, out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "A  01-Aktiva", lines[0])
	assert.Equal(t, "--- A2  01-Stálá aktiva *", lines[1])
	assert.Equal(t, "--- A1  02-Oběžná aktiva", lines[2])
	assert.Equal(t, "--- --- A11  01-Peníze *", lines[3])

	out, err = runCoa(t, "tree", "--statement", "pl", "--repo", dir)
	require.NoError(t, err, out)
	assert.NotContains(t, out, "Aktiva")
	assert.Contains(t, out, "C1  01-Materiál *")
}

func TestTree_BeforeTransform(t *testing.T) {
	dir := newProject(t)
	out, err := runCoa(t, "tree", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "run the transformation first")
}

func TestAccounts_Search(t *testing.T) {
	dir := newProject(t)
	out, err := runCoa(t, "accounts", "search", "assets", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "A1 ")
	assert.Contains(t, out, "A2 ")
	assert.NotContains(t, out, "Revenue")

	out, err = runCoa(t, "accounts", "search", "--statement", "pl", "--type", "c", "--repo", dir)
	require.NoError(t, err, out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4, "header plus C, C1, C2")
}

func TestAccounts_Show(t *testing.T) {
	dir := newProject(t)
	out, err := runCoa(t, "accounts", "show", "A", "--repo", dir)
	require.NoError(t, err, out)
	assert.Equal(t, "A  Assets\n  A1  Current assets\n    A11  Cash\n    A12  Receivables\n  A2  Fixed assets\n", out)

	_, err = runCoa(t, "accounts", "show", "ZZ", "--repo", dir)
	assert.Error(t, err)
}

func TestAccounts_NextOrder(t *testing.T) {
	dir := newProject(t)
	out, err := runCoa(t, "accounts", "next-order", "A1", "--repo", dir)
	require.NoError(t, err, out)
	assert.Equal(t, "1220\n", out)

	out, err = runCoa(t, "accounts", "next-order", "A11", "--repo", dir)
	require.NoError(t, err, out)
	assert.Equal(t, "1000\n", out)
}

func TestExport_XLSX(t *testing.T) {
	dir := importedProject(t)
	_, err := runCoa(t, "run", "--repo", dir)
	require.NoError(t, err)

	out, err := runCoa(t, "export", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Exported 6 tables")

	// The workbook's first sheet is the first stored table in id order.
	f, err := os.Open(filepath.Join(dir, "exports", "coa.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	tbl, err := dataset.ReadXLSX(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"PK_BUSINESS_SUBUNIT", "NAME_BUSINESS_SUBUNIT"}, tbl.Columns)
}

func TestExport_CSV(t *testing.T) {
	dir := importedProject(t)
	_, err := runCoa(t, "transform", "--repo", dir)
	require.NoError(t, err)

	outDir := filepath.Join(t.TempDir(), "out")
	out, err := runCoa(t, "export", "--format", "csv", "--out", outDir, "--table", "dc_coa,coa_input", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Exported 2 tables")

	accts, err := importer.DefaultRegistry().ParseFile(filepath.Join(outDir, "coa_input.csv"))
	require.NoError(t, err)
	assert.Len(t, accts, 13)
	_, err = os.Stat(filepath.Join(outDir, "dc_coa.csv"))
	assert.NoError(t, err)
}

func TestExport_UnknownFormat(t *testing.T) {
	dir := newProject(t)
	out, err := runCoa(t, "export", "--format", "parquet", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "unknown format")
}

func TestLog(t *testing.T) {
	dir := importedProject(t)
	_, err := runCoa(t, "run", "--repo", dir)
	require.NoError(t, err)

	out, err := runCoa(t, "log", "--repo", dir)
	require.NoError(t, err, out)
	for _, action := range []string{"init", "import", "transform", "subunit", "mapping", "check"} {
		assert.Contains(t, out, action)
	}
}
