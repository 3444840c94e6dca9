package output

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteWriterPersistsRunAndCheckpoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	w, err := NewSQLiteWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteReport(sampleReport()))
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var target string
	var exitCode int
	var success bool
	row := db.QueryRow("SELECT target, exit_code, success FROM runs WHERE run_id = ?",
		"11111111-2222-3333-4444-555555555555")
	require.NoError(t, row.Scan(&target, &exitCode, &success))
	assert.Equal(t, "/bin/echo", target)
	assert.Zero(t, exitCode)
	assert.True(t, success)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM checkpoints").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSQLiteWriterAccumulatesAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	for _, id := range []string{"run-a", "run-b"} {
		w, err := NewSQLiteWriter(path)
		require.NoError(t, err)
		rep := sampleReport()
		rep.RunID = id
		require.NoError(t, w.WriteReport(rep))
		require.NoError(t, w.Close())
	}

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
	assert.Equal(t, 2, count)
}
