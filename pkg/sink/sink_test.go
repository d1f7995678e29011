package sink

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.csv")

	tb := table.New("point_id", "char", "feature_change")
	tb.Append(table.Row{table.Str("A"), table.Str("东"), table.Null()})

	sum, err := WriteCSV(path, tb)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := "point_id,char,feature_change\nA,东,\n"; string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
	h := sha256.Sum256(data)
	if sum != hex.EncodeToString(h[:]) {
		t.Errorf("checksum %s does not match file content", sum)
	}
}

func TestWriteCSV_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	os.WriteFile(path, []byte("stale content that is much longer than the new table\n"), 0o644)

	tb := table.New("a")
	if _, err := WriteCSV(path, tb); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "a\n" {
		t.Errorf("content = %q, want header only", data)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wuyu_lexeme.csv")
	path := ManifestPath(out)
	if path != out+".manifest.yaml" {
		t.Fatalf("ManifestPath = %q", path)
	}

	m := &Manifest{
		Output:    out,
		SHA256:    "deadbeef",
		Rows:      5,
		Columns:   []string{"point_id", "char"},
		Reference: "data_dict/rhyme_slot_mapping.csv",
		Sources: []ManifestSource{
			{Name: "a", Kind: "points", Rows: 4},
			{Name: "c", Kind: "points", Rows: 1, Skipped: "c: missing base columns: 汉字"},
		},
		Dropped:   1,
		Unmatched: 1,
	}
	if err := WriteManifest(path, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	got, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("manifest (-want +got):\n%s", diff)
	}
}

func TestLoadManifest_Missing(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error")
	}
}
