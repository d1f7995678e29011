// Package importer discovers and loads the raw per-point survey tables into
// one record set with a consistent column vocabulary.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hazyhaar/wuyu-lexeme/pkg/config"
	"github.com/hazyhaar/wuyu-lexeme/pkg/lexeme"
)

// Kind tells how a source encodes point identity.
type Kind string

const (
	// KindPoints is a per-point file carrying point columns inline.
	KindPoints Kind = "points"
	// KindLegacy is the single legacy file, possibly without point columns.
	KindLegacy Kind = "legacy"
)

// Source is one raw table together with how to adapt it: its kind and, for
// legacy sources, the point identity to inject when none is inline.
type Source struct {
	Name     string
	Path     string
	Kind     Kind
	Defaults *config.PointDefault
}

// Layout locates the raw inputs on disk.
type Layout struct {
	PointsDir   string
	LegacyFile  string
	LegacyPoint *config.PointDefault
}

// LayoutFromConfig returns the layout described by cfg.
func LayoutFromConfig(cfg *config.Config) Layout {
	return Layout{
		PointsDir:   cfg.PointsPath(),
		LegacyFile:  cfg.LegacyPath(),
		LegacyPoint: cfg.LegacyPoint,
	}
}

// Discover lists the sources to ingest. Every *.csv file of the points
// directory is a source, in lexicographic file-name order. When the
// directory is absent or holds no such file, the legacy file is the only
// source. Neither present yields a *lexeme.MissingInputError.
func Discover(l Layout) ([]Source, error) {
	files, err := pointFiles(l.PointsDir)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		sources := make([]Source, len(files))
		for i, f := range files {
			sources[i] = Source{
				Name: strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)),
				Path: f,
				Kind: KindPoints,
			}
		}
		return sources, nil
	}

	info, err := os.Stat(l.LegacyFile)
	if err != nil || info.IsDir() {
		return nil, &lexeme.MissingInputError{Paths: []string{
			filepath.Join(l.PointsDir, "*.csv"),
			l.LegacyFile,
		}}
	}
	return []Source{{
		Name:     strings.TrimSuffix(filepath.Base(l.LegacyFile), filepath.Ext(l.LegacyFile)),
		Path:     l.LegacyFile,
		Kind:     KindLegacy,
		Defaults: l.LegacyPoint,
	}}, nil
}

func pointFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read points dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
