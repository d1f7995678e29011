package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad_OverridesAndRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexeme.yaml")
	os.WriteFile(path, []byte(`data_dir: raw
reference: dict/map.csv
output: /abs/out.csv
ledger: runs.db
workers: 2
skip_invalid_sources: true
columns:
  rhyme: 韵
  onset: 声组
  char: 字
  reading: 读音
  reading_alternates:
    - subbranch: 太湖片
      column: 苏州读音
    - subbranch: 瓯江片
      column: 温州读音
legacy_point:
  point_id: SZ
  point_name: 苏州
`), 0o644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataDir != filepath.Join(dir, "raw") {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Reference != filepath.Join(dir, "dict", "map.csv") {
		t.Errorf("Reference = %q", cfg.Reference)
	}
	if cfg.Output != "/abs/out.csv" {
		t.Errorf("Output = %q, want absolute path untouched", cfg.Output)
	}
	if cfg.Ledger != filepath.Join(dir, "runs.db") {
		t.Errorf("Ledger = %q", cfg.Ledger)
	}
	if cfg.Workers != 2 || !cfg.SkipInvalidSources {
		t.Errorf("Workers = %d, SkipInvalidSources = %v", cfg.Workers, cfg.SkipInvalidSources)
	}
	if cfg.Columns.Char != "字" {
		t.Errorf("Char = %q, want 字", cfg.Columns.Char)
	}
	want := []string{"读音", "苏州读音", "温州读音"}
	if diff := cmp.Diff(want, cfg.Columns.ReadingCandidates()); diff != "" {
		t.Errorf("reading candidates (-want +got):\n%s", diff)
	}
	if cfg.LegacyPoint.PointID != "SZ" || cfg.LegacyPoint.PointName != "苏州" {
		t.Errorf("LegacyPoint = %+v", cfg.LegacyPoint)
	}
	// Fields untouched by the file keep their default.
	if cfg.PointsDir != "points" || cfg.VowelInventory != DefaultVowelInventory {
		t.Errorf("defaults lost: PointsDir=%q VowelInventory=%q", cfg.PointsDir, cfg.VowelInventory)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("workers: [oops\n"), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no reference", func(c *Config) { c.Reference = "" }, "reference is required"},
		{"no output", func(c *Config) { c.Output = "" }, "output is required"},
		{"no reading", func(c *Config) { c.Columns.Reading = "" }, "columns"},
		{"empty alternate", func(c *Config) {
			c.Columns.ReadingAlternates = append(c.Columns.ReadingAlternates, AltColumn{Subbranch: "x"})
		}, "reading_alternates[1]"},
		{"empty inventory", func(c *Config) { c.VowelInventory = "" }, "vowel_inventory"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"legacy without id", func(c *Config) { c.LegacyPoint = &PointDefault{PointName: "x"} }, "legacy_point.point_id"},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want mention of %q", tt.name, err, tt.want)
		}
	}
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data"
	if got := cfg.PointsPath(); got != filepath.Join("/data", "points") {
		t.Errorf("PointsPath = %q", got)
	}
	if got := cfg.LegacyPath(); got != filepath.Join("/data", "wuyu_raw.csv") {
		t.Errorf("LegacyPath = %q", got)
	}
}
