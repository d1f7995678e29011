// Package pipeline turns raw dialect survey rows into the clean lexeme table.
//
// Stages, each usable on its own:
//
//	Filter -> Reconcile -> Join -> ExtractFeatures -> Annotate -> Assemble
//
// Transform chains them over in-memory tables; Pipeline.Run adds reference
// loading, source discovery and ingestion before, and the output sink after.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/wuyu-lexeme/pkg/config"
	"github.com/hazyhaar/wuyu-lexeme/pkg/importer"
	"github.com/hazyhaar/wuyu-lexeme/pkg/ledger"
	"github.com/hazyhaar/wuyu-lexeme/pkg/reference"
	"github.com/hazyhaar/wuyu-lexeme/pkg/sink"
	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of Transform.
type Result struct {
	Table     *table.Table
	Filter    FilterStats
	Reconcile ReconcileStats
	Join      JoinStats
}

// Transform applies every pure stage to raw rows already ingested.
func Transform(raw *table.Table, m *reference.Mapping, cols config.Columns, x *VowelExtractor) (*Result, error) {
	filtered, fstats := Filter(raw, cols)

	reconciled, rstats, err := Reconcile(filtered, cols)
	if err != nil {
		return nil, err
	}

	joined, jstats := Join(reconciled, m, cols)
	featured := ExtractFeatures(joined, x)
	annotated := Annotate(featured)

	return &Result{
		Table:     Assemble(annotated, cols),
		Filter:    fstats,
		Reconcile: rstats,
		Join:      jstats,
	}, nil
}

// Report summarizes a run.
type Report struct {
	RunID        string
	Sources      []importer.SourceStat
	Filter       FilterStats
	Reconcile    ReconcileStats
	Join         JoinStats
	Columns      []string
	RowsOut      int
	OutputPath   string
	OutputSHA256 string
}

// Pipeline runs one cleaning pass from configuration.
type Pipeline struct {
	Config *config.Config
	Logger *slog.Logger
	// Ledger, when set, records the run.
	Ledger *ledger.Ledger
}

// New returns a Pipeline for cfg. A nil logger uses slog.Default().
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Config: cfg, Logger: logger}
}

// Run loads the reference and the raw sources, transforms them and writes
// the output. Any error aborts the run before the output is opened, except
// write errors, which may leave a partial file.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	report := &Report{OutputPath: cfg.Output}
	if p.Ledger != nil {
		id, err := p.Ledger.Begin(cfg.Output)
		if err != nil {
			return nil, err
		}
		report.RunID = id
	}

	err := p.run(ctx, report)
	if p.Ledger != nil {
		if err != nil {
			if lerr := p.Ledger.Fail(report.RunID, err); lerr != nil {
				p.Logger.Error("ledger update failed", "run", report.RunID, "error", lerr)
			}
		} else if lerr := p.Ledger.Finish(report.RunID, ledgerResult(report)); lerr != nil {
			p.Logger.Error("ledger update failed", "run", report.RunID, "error", lerr)
		}
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, report *Report) error {
	cfg := p.Config
	logger := p.Logger

	x, err := NewVowelExtractor(cfg.VowelInventory)
	if err != nil {
		return err
	}

	var (
		mapping *reference.Mapping
		raw     *table.Table
		stats   []importer.SourceStat
		refErr  error
		ingErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mapping, refErr = reference.Load(cfg.Reference, cfg.Format())
		return refErr
	})
	g.Go(func() error {
		sources, err := importer.Discover(importer.LayoutFromConfig(cfg))
		if err != nil {
			ingErr = err
			return err
		}
		raw, stats, ingErr = importer.Load(gctx, sources, importer.Options{
			Format:      cfg.Format(),
			Columns:     cfg.Columns,
			Workers:     cfg.Workers,
			SkipInvalid: cfg.SkipInvalidSources,
			Logger:      logger,
		})
		return ingErr
	})
	// Both goroutines record their own error; a reference error takes
	// precedence over ingestion errors.
	_ = g.Wait()
	if refErr != nil {
		return refErr
	}
	if ingErr != nil {
		return ingErr
	}
	report.Sources = stats

	logger.Info("reference loaded", "path", cfg.Reference, "rows", mapping.Len(), "rhymes", len(mapping.Keys()))
	if dups := mapping.Duplicates(); len(dups) > 0 {
		logger.Warn("duplicate rhyme labels in reference, joined rows will fan out", "rhymes", dups)
	}

	res, err := Transform(raw, mapping, cfg.Columns, x)
	if err != nil {
		return err
	}
	report.Filter = res.Filter
	report.Reconcile = res.Reconcile
	report.Join = res.Join
	report.Columns = res.Table.Columns
	report.RowsOut = res.Table.Len()

	if res.Filter.Dropped > 0 {
		logger.Warn("rows dropped by validation",
			"before", res.Filter.Before,
			"after", res.Filter.After,
			"header_echoes", res.Filter.HeaderEchoes,
		)
	}
	if res.Reconcile.SubbranchMismatch > 0 {
		logger.Warn("alternate reading column ignored for rows of another subbranch",
			"rows", res.Reconcile.SubbranchMismatch)
	}
	if res.Reconcile.Missing > 0 {
		logger.Warn("rows without reading", "rows", res.Reconcile.Missing)
	}
	if res.Join.Unmatched > 0 {
		logger.Warn("rhymes without reference entry", "rows", res.Join.Unmatched)
	}

	sum, err := sink.WriteCSV(cfg.Output, res.Table)
	if err != nil {
		return err
	}
	report.OutputSHA256 = sum

	if cfg.Manifest {
		if err := sink.WriteManifest(sink.ManifestPath(cfg.Output), manifest(cfg, report)); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}

	logger.Info("lexeme table written", "path", cfg.Output, "rows", report.RowsOut, "sha256", sum)
	return nil
}

func manifest(cfg *config.Config, r *Report) *sink.Manifest {
	m := &sink.Manifest{
		Output:    cfg.Output,
		SHA256:    r.OutputSHA256,
		Rows:      r.RowsOut,
		Columns:   r.Columns,
		Reference: cfg.Reference,
		Dropped:   r.Filter.Dropped,
		Unmatched: r.Join.Unmatched,
	}
	for _, s := range r.Sources {
		m.Sources = append(m.Sources, sink.ManifestSource{
			Name:    s.Name,
			Kind:    string(s.Kind),
			Rows:    s.Rows,
			Skipped: s.Skipped,
		})
	}
	return m
}

func ledgerResult(r *Report) ledger.Result {
	res := ledger.Result{
		RowsIn:       r.Filter.Before,
		RowsDropped:  r.Filter.Dropped,
		RowsOut:      r.RowsOut,
		OutputSHA256: r.OutputSHA256,
	}
	for _, s := range r.Sources {
		res.Sources = append(res.Sources, ledger.SourceRow{
			Source: s.Name,
			Kind:   string(s.Kind),
			Rows:   s.Rows,
			Note:   s.Skipped,
		})
	}
	return res
}
