package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/wuyu-lexeme/pkg/config"
	"github.com/hazyhaar/wuyu-lexeme/pkg/lexeme"
	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
	"golang.org/x/sync/errgroup"
)

// Options tune Load.
type Options struct {
	Format  table.Format
	Columns config.Columns
	// Workers bounds the number of files read concurrently; <= 0 means 1.
	Workers int
	// SkipInvalid drops a source failing schema checks instead of aborting.
	SkipInvalid bool
	Logger      *slog.Logger
}

// SourceStat records what one source contributed.
type SourceStat struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Kind     Kind   `yaml:"kind"`
	Rows     int    `yaml:"rows"`
	Injected bool   `yaml:"injected_point,omitempty"`
	Skipped  string `yaml:"skipped,omitempty"`
}

// Load reads every source, checks its columns and concatenates the results
// in source order. Files are read in parallel; ordering does not depend on
// completion order.
func Load(ctx context.Context, sources []Source, opts Options) (*table.Table, []SourceStat, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	tables := make([]*table.Table, len(sources))
	stats := make([]SourceStat, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, stat, err := loadSource(src, opts)
			stats[i] = stat
			if err != nil {
				var se *lexeme.SchemaError
				if opts.SkipInvalid && errors.As(err, &se) {
					errs[i] = err
					return nil
				}
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var kept []*table.Table
	for i, t := range tables {
		if errs[i] != nil {
			stats[i].Skipped = errs[i].Error()
			logger.Warn("source skipped", "source", sources[i].Name, "error", errs[i])
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return nil, stats, &lexeme.SchemaError{Msg: "no usable source left after schema checks"}
	}

	all := table.Concat(kept...)
	logger.Info("sources loaded", "sources", len(kept), "rows", all.Len())
	return all, stats, nil
}

// loadSource reads one file and adapts it to the multi-point model.
func loadSource(src Source, opts Options) (*table.Table, SourceStat, error) {
	stat := SourceStat{Name: src.Name, Path: src.Path, Kind: src.Kind}

	t, err := table.ReadFile(src.Path, opts.Format)
	if err != nil {
		return nil, stat, fmt.Errorf("load source %s: %w", src.Name, err)
	}
	stat.Rows = t.Len()

	if err := CheckBaseColumns(src.Name, t, opts.Columns); err != nil {
		return nil, stat, err
	}

	injected, err := ensurePointColumns(src, t)
	if err != nil {
		return nil, stat, err
	}
	stat.Injected = injected
	return t, stat, nil
}

// CheckBaseColumns verifies that t carries the rhyme, onset-group and
// character columns and at least one recognized reading column.
func CheckBaseColumns(source string, t *table.Table, cols config.Columns) error {
	missing := t.Missing(cols.Rhyme, cols.Onset, cols.Char)
	hasReading := false
	for _, name := range cols.ReadingCandidates() {
		if t.Has(name) {
			hasReading = true
			break
		}
	}
	if !hasReading {
		missing = append(missing, cols.Reading)
	}
	if len(missing) > 0 {
		return &lexeme.SchemaError{Source: source, Missing: missing, Msg: "missing base columns"}
	}
	return nil
}

// ensurePointColumns requires inline point identity, except for a legacy
// source with none of the point columns: it receives the configured
// constants and null coordinates.
func ensurePointColumns(src Source, t *table.Table) (bool, error) {
	missing := t.Missing(lexeme.PointColumns...)
	if len(missing) == 0 {
		return false, nil
	}
	if src.Kind != KindLegacy || len(missing) != len(lexeme.PointColumns) || src.Defaults == nil {
		return false, &lexeme.SchemaError{Source: src.Name, Missing: missing, Msg: "missing point columns"}
	}

	InjectPoint(t, *src.Defaults)
	return true, nil
}

// InjectPoint stamps a constant point identity on every row of t.
func InjectPoint(t *table.Table, p config.PointDefault) {
	t.Set(lexeme.ColPointID, constant(p.PointID))
	t.Set(lexeme.ColPointName, constant(p.PointName))
	t.Set(lexeme.ColSubbranch, constant(p.Subbranch))
	t.Set(lexeme.ColLat, func(table.Row) table.Cell { return table.Null() })
	t.Set(lexeme.ColLon, func(table.Row) table.Cell { return table.Null() })
}

func constant(s string) func(table.Row) table.Cell {
	c := table.Null()
	if s != "" {
		c = table.Str(s)
	}
	return func(table.Row) table.Cell { return c }
}
