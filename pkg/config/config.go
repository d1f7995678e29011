// Package config holds the yaml configuration of a cleaning run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
	"gopkg.in/yaml.v3"
)

// DefaultVowelInventory is the coarse vowel symbol set used to pick a vowel
// out of a transcription.
const DefaultVowelInventory = "aeiouAEIOUɤɔøœəɯɐʌyɨ"

// Config is the full configuration surface of the pipeline.
type Config struct {
	DataDir            string        `yaml:"data_dir"`
	PointsDir          string        `yaml:"points_dir"`
	LegacyFile         string        `yaml:"legacy_file"`
	Reference          string        `yaml:"reference"`
	Output             string        `yaml:"output"`
	Manifest           bool          `yaml:"manifest"`
	Ledger             string        `yaml:"ledger"`
	Encoding           string        `yaml:"encoding"`
	Delimiter          string        `yaml:"delimiter"`
	Workers            int           `yaml:"workers"`
	SkipInvalidSources bool          `yaml:"skip_invalid_sources"`
	VowelInventory     string        `yaml:"vowel_inventory"`
	Columns            Columns       `yaml:"columns"`
	LegacyPoint        *PointDefault `yaml:"legacy_point"`
}

// Columns names the source columns of the raw survey tables.
type Columns struct {
	Rhyme             string      `yaml:"rhyme"`
	Onset             string      `yaml:"onset"`
	Char              string      `yaml:"char"`
	Reading           string      `yaml:"reading"`
	ReadingAlternates []AltColumn `yaml:"reading_alternates"`
}

// AltColumn is a reading column name used by the sources of one subbranch.
// It is only read for rows of that subbranch, or rows carrying none; an
// empty Subbranch applies to every row.
type AltColumn struct {
	Subbranch string `yaml:"subbranch"`
	Column    string `yaml:"column"`
}

// ReadingCandidates returns the reading column names in resolution order:
// the primary name first, then the alternates as declared.
func (c Columns) ReadingCandidates() []string {
	names := []string{c.Reading}
	for _, a := range c.ReadingAlternates {
		names = append(names, a.Column)
	}
	return names
}

// PointDefault is the constant point identity injected into a legacy source
// that carries no point columns. Coordinates stay null.
type PointDefault struct {
	PointID   string `yaml:"point_id"`
	PointName string `yaml:"point_name"`
	Subbranch string `yaml:"subbranch"`
}

// Default returns the configuration matching the historical data_raw /
// data_dict / data_clean layout.
func Default() *Config {
	return &Config{
		DataDir:        "data_raw",
		PointsDir:      "points",
		LegacyFile:     "wuyu_raw.csv",
		Reference:      filepath.Join("data_dict", "rhyme_slot_mapping.csv"),
		Output:         filepath.Join("data_clean", "wuyu_lexeme.csv"),
		Manifest:       true,
		Encoding:       "utf-8",
		Delimiter:      ",",
		Workers:        4,
		VowelInventory: DefaultVowelInventory,
		Columns: Columns{
			Rhyme:   "韵",
			Onset:   "声组",
			Char:    "汉字",
			Reading: "读音",
			ReadingAlternates: []AltColumn{
				{Subbranch: "瓯江片", Column: "温州读音"},
			},
		},
		LegacyPoint: &PointDefault{
			PointID:   "WZ",
			PointName: "温州",
			Subbranch: "瓯江片",
		},
	}
}

// Format returns the delimited-text format shared by all input files.
func (c *Config) Format() table.Format {
	return table.Format{Delimiter: c.Delimiter, Encoding: c.Encoding}
}

// PointsPath is the directory of one-file-per-point tables.
func (c *Config) PointsPath() string { return filepath.Join(c.DataDir, c.PointsDir) }

// LegacyPath is the single legacy input table.
func (c *Config) LegacyPath() string { return filepath.Join(c.DataDir, c.LegacyFile) }

// Validate checks that every required setting is filled.
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.Reference == "" {
		errs = append(errs, errors.New("reference is required"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if c.Columns.Rhyme == "" || c.Columns.Onset == "" || c.Columns.Char == "" || c.Columns.Reading == "" {
		errs = append(errs, errors.New("columns: rhyme, onset, char and reading are required"))
	}
	for i, a := range c.Columns.ReadingAlternates {
		if a.Column == "" {
			errs = append(errs, fmt.Errorf("columns.reading_alternates[%d]: column is required", i))
		}
	}
	if c.VowelInventory == "" {
		errs = append(errs, errors.New("vowel_inventory must not be empty"))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if p := c.LegacyPoint; p != nil && p.PointID == "" {
		errs = append(errs, errors.New("legacy_point.point_id is required when legacy_point is set"))
	}
	return errors.Join(errs...)
}

// Load reads a yaml file over the defaults. A missing file yields the
// defaults; relative paths in the file resolve against its directory.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&cfg.DataDir, &cfg.Reference, &cfg.Output, &cfg.Ledger} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
