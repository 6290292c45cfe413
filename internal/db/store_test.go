package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := Open(filepath.Join(t.TempDir(), "doctag.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func sampleFiles() []FileRecord {
	return []FileRecord{
		{
			Path:        "maths.swift",
			SymbolsPath: "tables/maths.yaml",
			Functions: []FunctionRecord{
				{Name: "mul", Summary: "Multiply", State: "error"},
				{Name: "add", Summary: "Adds", State: "ok"},
			},
			Diagnostics: []DiagnosticRecord{
				{Function: "mul", Severity: "error", Code: "ParamTypeMismatch", Message: "bad type", Offset: 90, Line: 9, Col: 7},
				{Function: "mul", Severity: "warning", Code: "MissingSummary", Message: "no summary", Offset: 80, Line: 8, Col: 3},
				{Severity: "error", Code: "UnbalancedTag", Message: "stray", Offset: 5, Line: 1, Col: 6},
			},
		},
		{
			Path:      "geometry.swift",
			Functions: []FunctionRecord{{Name: "area", State: "undocumented"}},
		},
	}
}

func TestOpen_AppliesMigrations(t *testing.T) {
	s := openStore(t)
	var version int
	require.NoError(t, s.QueryRow(`SELECT version FROM schema_version`).Scan(&version))
	assert.Equal(t, len(All), version)
}

func TestLatestRun_NoRuns(t *testing.T) {
	s := openStore(t)
	_, err := LatestRun(s)
	require.ErrorIs(t, err, ErrNoRuns)
}

func TestSaveRun_LatestRunIsNewest(t *testing.T) {
	s := openStore(t)
	first, err := SaveRun(s, sampleFiles())
	require.NoError(t, err)
	second, err := SaveRun(s, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEmpty(t, first.StartedAt)

	latest, err := LatestRun(s)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestSaveRun_ReusesFiles(t *testing.T) {
	s := openStore(t)
	_, err := SaveRun(s, sampleFiles())
	require.NoError(t, err)
	_, err = SaveRun(s, sampleFiles())
	require.NoError(t, err)

	var count int
	require.NoError(t, s.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestListFunctions(t *testing.T) {
	s := openStore(t)
	run, err := SaveRun(s, sampleFiles())
	require.NoError(t, err)

	fns, err := ListFunctions(s, run.ID)
	require.NoError(t, err)
	require.Len(t, fns, 3)
	assert.Equal(t, "geometry.swift", fns[0].File)
	assert.Equal(t, "area", fns[0].Name)
	assert.Equal(t, "add", fns[1].Name)
	assert.Equal(t, 0, fns[1].Diagnostics)
	assert.Equal(t, "mul", fns[2].Name)
	assert.Equal(t, 2, fns[2].Diagnostics)
	assert.Equal(t, "error", fns[2].State)
}

func TestFindFunction(t *testing.T) {
	s := openStore(t)
	run, err := SaveRun(s, sampleFiles())
	require.NoError(t, err)

	fn, err := FindFunction(s, run.ID, "add")
	require.NoError(t, err)
	assert.Equal(t, "maths.swift", fn.File)
	assert.Equal(t, "Adds", fn.Summary)
	assert.Equal(t, "tables/maths.yaml", fn.SymbolsPath)

	_, err = FindFunction(s, run.ID, "div")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListDiagnostics_OrderedByOffset(t *testing.T) {
	s := openStore(t)
	run, err := SaveRun(s, sampleFiles())
	require.NoError(t, err)

	ds, err := ListDiagnostics(s, run.ID)
	require.NoError(t, err)
	require.Len(t, ds, 3)
	assert.Equal(t, "UnbalancedTag", ds[0].Code)
	assert.Equal(t, "", ds[0].Function)
	assert.Equal(t, "MissingSummary", ds[1].Code)
	assert.Equal(t, DiagnosticRecord{
		File: "maths.swift", Function: "mul", Severity: "error", Code: "ParamTypeMismatch",
		Message: "bad type", Offset: 90, Line: 9, Col: 7,
	}, ds[2])
}

func TestCountDiagnostics(t *testing.T) {
	s := openStore(t)
	run, err := SaveRun(s, sampleFiles())
	require.NoError(t, err)

	bySeverity, err := CountDiagnostics(s, run.ID, "severity")
	require.NoError(t, err)
	assert.Equal(t, []Count{{Key: "error", Count: 2}, {Key: "warning", Count: 1}}, bySeverity)

	byCode, err := CountDiagnostics(s, run.ID, "code")
	require.NoError(t, err)
	assert.Len(t, byCode, 3)

	_, err = CountDiagnostics(s, run.ID, "message; DROP TABLE runs")
	require.Error(t, err)
}
