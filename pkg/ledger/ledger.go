// Package ledger keeps a SQLite history of cleaning runs: when each ran, how
// many rows went in and out, which sources it read and the checksum of what
// it wrote.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
)

// Run is a row of the runs table.
type Run struct {
	RunID        string
	StartedAt    int64
	FinishedAt   *int64
	Status       string
	Error        *string
	RowsIn       int
	RowsDropped  int
	RowsOut      int
	OutputPath   string
	OutputSHA256 *string
}

// SourceRow is a row of the run_sources table.
type SourceRow struct {
	Source string
	Kind   string
	Rows   int
	Note   string
}

// Result is what a successful run reports back.
type Result struct {
	RowsIn       int
	RowsDropped  int
	RowsOut      int
	OutputSHA256 string
	Sources      []SourceRow
}

// Ledger manages the runs database.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the ledger at path and ensures its tables exist.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	ddl := []string{`CREATE TABLE IF NOT EXISTS runs (
		run_id        TEXT PRIMARY KEY,
		started_at    INTEGER NOT NULL,
		finished_at   INTEGER,
		status        TEXT NOT NULL,
		error         TEXT,
		rows_in       INTEGER NOT NULL DEFAULT 0,
		rows_dropped  INTEGER NOT NULL DEFAULT 0,
		rows_out      INTEGER NOT NULL DEFAULT 0,
		output_path   TEXT NOT NULL,
		output_sha256 TEXT
	)`, `CREATE TABLE IF NOT EXISTS run_sources (
		run_id    TEXT NOT NULL REFERENCES runs(run_id),
		seq       INTEGER NOT NULL,
		source    TEXT NOT NULL,
		kind      TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		note      TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, seq)
	)`}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create ledger tables: %w", err)
		}
	}

	return &Ledger{db: db, now: time.Now}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Begin records a new running run and returns its id.
func (l *Ledger) Begin(outputPath string) (string, error) {
	id := uuid.NewString()
	_, err := l.db.Exec(
		`INSERT INTO runs (run_id, started_at, status, output_path) VALUES (?, ?, ?, ?)`,
		id, l.now().Unix(), StatusRunning, outputPath,
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// Finish marks a run successful and stores its counts and sources.
func (l *Ledger) Finish(runID string, res Result) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	defer tx.Rollback()

	r, err := tx.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, rows_in = ?, rows_dropped = ?, rows_out = ?, output_sha256 = ?
		WHERE run_id = ?`,
		l.now().Unix(), StatusOK, res.RowsIn, res.RowsDropped, res.RowsOut, res.OutputSHA256, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found in ledger", runID)
	}

	for i, s := range res.Sources {
		if _, err := tx.Exec(
			`INSERT INTO run_sources (run_id, seq, source, kind, row_count, note) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, i, s.Source, s.Kind, s.Rows, s.Note,
		); err != nil {
			return fmt.Errorf("record source %s: %w", s.Source, err)
		}
	}
	return tx.Commit()
}

// Fail marks a run failed with the given error.
func (l *Ledger) Fail(runID string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := l.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, error = ? WHERE run_id = ?`,
		l.now().Unix(), StatusFailed, msg, runID,
	)
	if err != nil {
		return fmt.Errorf("fail run %s: %w", runID, err)
	}
	return nil
}

// ListRuns returns the most recent runs first, at most limit (0 = all).
func (l *Ledger) ListRuns(limit int) ([]Run, error) {
	q := `SELECT run_id, started_at, finished_at, status, error, rows_in, rows_dropped, rows_out,
		output_path, output_sha256
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Error,
			&r.RowsIn, &r.RowsDropped, &r.RowsOut, &r.OutputPath, &r.OutputSHA256); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Sources returns the sources recorded for a run, in ingestion order.
func (l *Ledger) Sources(runID string) ([]SourceRow, error) {
	rows, err := l.db.Query(
		`SELECT source, kind, row_count, note FROM run_sources WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list sources of %s: %w", runID, err)
	}
	defer rows.Close()

	var out []SourceRow
	for rows.Next() {
		var s SourceRow
		if err := rows.Scan(&s.Source, &s.Kind, &s.Rows, &s.Note); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
