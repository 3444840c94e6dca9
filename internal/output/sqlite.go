package output

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteWriter persists runs into a local database so results accumulate
// across invocations. One row per run plus one row per checkpoint.
type SQLiteWriter struct {
	db *sql.DB
}

// compile-time interface check
var _ Writer = (*SQLiteWriter)(nil)

// NewSQLiteWriter opens (or creates) the database at outputPath.
func NewSQLiteWriter(outputPath string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, err
	}

	w := &SQLiteWriter{db: db}
	if err := w.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLiteWriter) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		hostname TEXT NOT NULL,
		target TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		exit_meaning TEXT,
		success BOOLEAN NOT NULL,
		execution_time REAL NOT NULL,
		peak_kb INTEGER NOT NULL,
		stdout_bytes INTEGER NOT NULL,
		stderr_bytes INTEGER NOT NULL,
		security_score INTEGER,
		report TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS checkpoints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		seq INTEGER NOT NULL,
		checkpoint_id TEXT NOT NULL,
		category TEXT NOT NULL,
		context TEXT,
		time_offset REAL NOT NULL,
		trigger_fired BOOLEAN NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_checkpoints_run ON checkpoints(run_id);
	CREATE INDEX IF NOT EXISTS idx_checkpoints_category ON checkpoints(category);
	`
	_, err := w.db.Exec(schema)
	return err
}

// WriteReport inserts the run and its checkpoints in one transaction.
func (w *SQLiteWriter) WriteReport(r *Report) error {
	reportJSON, err := json.Marshal(r)
	if err != nil {
		return err
	}

	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var secScore any
	if r.Deep != nil && r.Deep.Security != nil {
		secScore = r.Deep.Security.OverallSecurityScore
	}
	_, err = tx.Exec(`INSERT INTO runs
		(run_id, timestamp, hostname, target, exit_code, exit_meaning, success,
		 execution_time, peak_kb, stdout_bytes, stderr_bytes, security_score, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Timestamp.Format(time.RFC3339Nano), r.Host.Hostname,
		r.TargetPath, r.Execution.ExitCode, r.Execution.ExitMeaning,
		r.Execution.Success, r.Execution.ExecutionTime, r.Memory.PeakKB,
		r.IO.StdoutBytes, r.IO.StderrBytes, secScore, string(reportJSON))
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO checkpoints
		(run_id, seq, checkpoint_id, category, context, time_offset, trigger_fired)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, cp := range r.Checkpoints {
		if _, err := stmt.Exec(r.RunID, i, cp.ID, cp.Category, cp.Context,
			cp.OffsetSecs, cp.TriggerFired); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
