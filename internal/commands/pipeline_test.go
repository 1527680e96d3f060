package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/coa/internal/config"
	"github.com/cleared-dev/coa/internal/dataset"
	"github.com/cleared-dev/coa/internal/runlog"
	"github.com/cleared-dev/coa/internal/tablestore"
)

// importedProject is a project holding testdata/coa_input.csv and
// testdata/business_subunits.csv.
func importedProject(t *testing.T, extra ...string) string {
	t.Helper()
	dir := newProject(t, extra...)
	out, err := runCoa(t, "import", testdata(t, "coa_input.csv"),
		"--subunits", testdata(t, "business_subunits.csv"), "--repo", dir)
	require.NoError(t, err, out)
	return dir
}

func readTable(t *testing.T, dir, id string) *tablestore.Table {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, "tables", id+".csv"))
	require.NoError(t, err)
	defer f.Close()
	tbl, err := tablestore.ReadCSV(f)
	require.NoError(t, err)
	return tbl
}

func TestImport_File(t *testing.T) {
	dir := newProject(t)
	out, err := runCoa(t, "import", testdata(t, "coa_input.csv"), "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 13 rows into coa_input (1 validation findings)")

	assert.Equal(t, 13, readTable(t, dir, "coa_input").Len())
}

func TestImport_Subunits(t *testing.T) {
	dir := newProject(t)
	out, err := runCoa(t, "import", "--subunits", testdata(t, "business_subunits.csv"), "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 2 business subunits")

	// Input table untouched.
	assert.Equal(t, 13, readTable(t, dir, "coa_input").Len())
	assert.Equal(t, 2, readTable(t, dir, "business_subunits").Len())
}

func TestImport_ScanDir(t *testing.T) {
	dir := newProject(t)
	data, err := os.ReadFile(testdata(t, "coa_input.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "group.csv"), data, 0o644))

	out, err := runCoa(t, "import", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 13 rows")

	_, err = os.Stat(filepath.Join(dir, "import", "group.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "group.csv"))
	assert.NoError(t, err)
}

func TestImport_EmptyDir(t *testing.T) {
	dir := newProject(t)
	out, err := runCoa(t, "import", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "no files to import")
}

func TestImport_UnsupportedFile(t *testing.T) {
	dir := newProject(t)
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	out, err := runCoa(t, "import", path, "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "no parser")
}

func TestTransform(t *testing.T) {
	dir := importedProject(t)
	out, err := runCoa(t, "transform", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "dc_coa: 11 rows (7 BS, 4 PL), 6 leaves, max level 2")
	assert.Contains(t, out, "dropped 2 of 13 input rows (1 without order)")

	tbl := readTable(t, dir, "dc_coa")
	assert.Equal(t, dataset.EnrichedColumns(), tbl.Columns)
	nodes, err := dataset.NodesFromTable(tbl)
	require.NoError(t, err)
	require.Len(t, nodes, 11)
	assert.Equal(t, "A", nodes[0].Code)
	assert.Equal(t, "01-Aktiva", nodes[0].LevelName[0])
}

func TestTransform_StarterChart(t *testing.T) {
	dir := newProject(t)
	out, err := runCoa(t, "transform", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "dc_coa: 13 rows")
	assert.NotContains(t, out, "dropped")
}

func TestTransform_NoInput(t *testing.T) {
	dir := newProject(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "tables", "coa_input.csv")))

	out, err := runCoa(t, "transform", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "COA input has not been provided")
}

func TestTransform_LogFormatFromDotEnv(t *testing.T) {
	dir := importedProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("COA_LOG_LEVEL=debug\nCOA_LOG_FORMAT=json\n"), 0o644))

	out, err := runCoa(t, "transform", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, `"msg":"transform done"`)
}

func TestTransform_Commit(t *testing.T) {
	dir := t.TempDir()
	out, err := runCoa(t, "init", dir, "--name", "Test Group")
	require.NoError(t, err, out)
	out, err = runCoa(t, "import", testdata(t, "coa_input.csv"), "--repo", dir)
	require.NoError(t, err, out)

	out, err = runCoa(t, "transform", "--commit", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, gitLog(t, dir, "%s"), "transform: dc_coa (11 rows)")

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, "commit", last.Action)
	assert.NotEmpty(t, last.CommitHash)
}

func TestTransform_RunLogWriteFailure(t *testing.T) {
	dir := importedProject(t)
	logPath := filepath.Join(dir, "logs", "run-log.csv")
	require.NoError(t, os.RemoveAll(logPath))
	require.NoError(t, os.Mkdir(logPath, 0o755))

	out, err := runCoa(t, "transform", "--repo", dir)
	require.Error(t, err, out)
	assert.Contains(t, out, "writing run log")
	assert.Equal(t, 11, readTable(t, dir, "dc_coa").Len())
}

func enableAutoCommit(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.Git.AutoCommit = true
	require.NoError(t, config.Save(path, cfg))
}

func TestAutoCommit(t *testing.T) {
	dir := t.TempDir()
	out, err := runCoa(t, "init", dir, "--name", "Test Group")
	require.NoError(t, err, out)

	enableAutoCommit(t, dir)

	out, err = runCoa(t, "import", testdata(t, "coa_input.csv"), "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, gitLog(t, dir, "%s"), "import: coa_input.csv (13 rows)")

	out, err = runCoa(t, "transform", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, gitLog(t, dir, "%s"), "transform: dc_coa (11 rows)")
}

func TestSubunit_BeforeTransform(t *testing.T) {
	dir := importedProject(t)
	out, err := runCoa(t, "subunit", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "enriched COA has not been produced")
}

func TestSubunit(t *testing.T) {
	dir := importedProject(t)
	_, err := runCoa(t, "transform", "--repo", dir)
	require.NoError(t, err)

	out, err := runCoa(t, "subunit", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "dc_kbc_coa: 11 rows")

	out, err = runCoa(t, "subunit", "--id", "XYZ", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "dc_xyz_coa: 11 rows")

	out, err = runCoa(t, "subunit", "--id", "NOPE", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "dc_nope_coa: 0 rows")
}

func TestSubunit_NoSubunitTable(t *testing.T) {
	dir := importedProject(t)
	_, err := runCoa(t, "transform", "--repo", dir)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "tables", "business_subunits.csv")))

	out, err := runCoa(t, "subunit", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "business subunits have not been loaded")
}

func TestMapping(t *testing.T) {
	dir := importedProject(t)
	out, err := runCoa(t, "mapping", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "dc_kbc_2finin_coa: 13 rows")

	tbl := readTable(t, dir, "dc_kbc_2finin_coa")
	assert.Equal(t, dataset.MappingColumns, tbl.Columns)
	assert.Equal(t, []string{"KBC", "A", "FA", "20000101", "30000101", "Aktiva"}, tbl.Rows[0])
}

func TestCheck(t *testing.T) {
	dir := importedProject(t)
	_, err := runCoa(t, "transform", "--repo", dir)
	require.NoError(t, err)

	out, err := runCoa(t, "check", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 input rows missing")
	assert.Contains(t, out, "C9")

	missing := readTable(t, dir, "dc_coa_missing")
	assert.Equal(t, 2, missing.Len())

	_, err = runCoa(t, "check", "--strict", "--repo", dir)
	assert.Error(t, err)
}

func TestCheck_StarterChartComplete(t *testing.T) {
	dir := newProject(t)
	_, err := runCoa(t, "transform", "--repo", dir)
	require.NoError(t, err)

	out, err := runCoa(t, "check", "--strict", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "all input rows present")
	assert.Equal(t, 0, readTable(t, dir, "dc_coa_missing").Len())
}

func TestRun(t *testing.T) {
	dir := importedProject(t)
	out, err := runCoa(t, "run", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "dc_coa: 11 rows")
	assert.Contains(t, out, "dc_kbc_coa: 11 rows")
	assert.Contains(t, out, "dc_kbc_2finin_coa: 13 rows")
	assert.Contains(t, out, "2 input rows missing")

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	run := runlog.ForRun(entries, last.RunID)
	require.Len(t, run, 4)
	assert.Equal(t, []string{"transform", "subunit", "mapping", "check"},
		[]string{run[0].Action, run[1].Action, run[2].Action, run[3].Action})
}

func TestRun_SQLite(t *testing.T) {
	dir := importedProject(t, "--backend", "sqlite")
	out, err := runCoa(t, "run", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "dc_kbc_coa: 11 rows")

	out, err = runCoa(t, "tree", "--statement", "PL", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "R1")
}
