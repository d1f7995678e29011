package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func tempLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

// fixedClock returns a clock advancing one second per call.
func fixedClock(start int64) func() time.Time {
	n := start
	return func() time.Time {
		n++
		return time.Unix(n, 0)
	}
}

func TestOpen_CreatesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}
	runs, err := l.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns on empty db: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected 0 runs, got %d", len(runs))
	}

	// Reopening an existing ledger keeps working.
	l2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	l2.Close()
}

func TestBeginFinish(t *testing.T) {
	l := tempLedger(t)
	l.now = fixedClock(1000)

	id, err := l.Begin("/out/wuyu_lexeme.csv")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	runs, _ := l.ListRuns(0)
	if len(runs) != 1 || runs[0].Status != StatusRunning || runs[0].FinishedAt != nil {
		t.Fatalf("after Begin: %+v", runs)
	}

	res := Result{
		RowsIn:       6,
		RowsDropped:  1,
		RowsOut:      5,
		OutputSHA256: "abc123",
		Sources: []SourceRow{
			{Source: "a", Kind: "points", Rows: 4},
			{Source: "b", Kind: "points", Rows: 2, Note: "skipped"},
		},
	}
	if err := l.Finish(id, res); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	runs, _ = l.ListRuns(0)
	r := runs[0]
	if r.RunID != id || r.Status != StatusOK || r.StartedAt != 1001 {
		t.Errorf("run = %+v", r)
	}
	if r.FinishedAt == nil || *r.FinishedAt != 1002 {
		t.Errorf("finished_at = %v, want 1002", r.FinishedAt)
	}
	if r.RowsIn != 6 || r.RowsDropped != 1 || r.RowsOut != 5 {
		t.Errorf("counts = %d/%d/%d", r.RowsIn, r.RowsDropped, r.RowsOut)
	}
	if r.OutputPath != "/out/wuyu_lexeme.csv" || r.OutputSHA256 == nil || *r.OutputSHA256 != "abc123" {
		t.Errorf("output = %q %v", r.OutputPath, r.OutputSHA256)
	}

	srcs, err := l.Sources(id)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if diff := cmp.Diff(res.Sources, srcs); diff != "" {
		t.Errorf("sources (-want +got):\n%s", diff)
	}
}

func TestFinish_UnknownRun(t *testing.T) {
	l := tempLedger(t)
	if err := l.Finish("nope", Result{}); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestFail(t *testing.T) {
	l := tempLedger(t)

	id, _ := l.Begin("out.csv")
	if err := l.Fail(id, errors.New("reference missing")); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	runs, _ := l.ListRuns(0)
	r := runs[0]
	if r.Status != StatusFailed || r.Error == nil || *r.Error != "reference missing" {
		t.Errorf("run = %+v", r)
	}
	if r.OutputSHA256 != nil {
		t.Errorf("failed run should have no checksum, got %q", *r.OutputSHA256)
	}
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	l := tempLedger(t)
	l.now = fixedClock(0)

	var ids []string
	for range 3 {
		id, err := l.Begin("out.csv")
		if err != nil {
			t.Fatalf("Begin: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := l.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	var got []string
	for _, r := range runs {
		got = append(got, r.RunID)
	}
	if diff := cmp.Diff([]string{ids[2], ids[1]}, got); diff != "" {
		t.Errorf("runs (-want +got):\n%s", diff)
	}
}
