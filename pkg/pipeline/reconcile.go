package pipeline

import (
	"github.com/hazyhaar/wuyu-lexeme/pkg/config"
	"github.com/hazyhaar/wuyu-lexeme/pkg/lexeme"
	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
)

// ReconcileStats counts where each row's reading came from.
type ReconcileStats struct {
	Primary   int `yaml:"primary"`
	Alternate int `yaml:"alternate"`
	Missing   int `yaml:"missing"`
	// SubbranchMismatch counts rows left without a reading although an
	// alternate column tagged for another subbranch held one.
	SubbranchMismatch int `yaml:"subbranch_mismatch"`
}

type readingColumn struct {
	name      string
	idx       int
	subbranch string
}

// readingColumns lists the reading candidates present in t, primary first.
func readingColumns(t *table.Table, cols config.Columns) []readingColumn {
	var out []readingColumn
	if i := t.Index(cols.Reading); cols.Reading != "" && i >= 0 {
		out = append(out, readingColumn{name: cols.Reading, idx: i})
	}
	for _, a := range cols.ReadingAlternates {
		if i := t.Index(a.Column); a.Column != "" && i >= 0 {
			out = append(out, readingColumn{name: a.Column, idx: i, subbranch: a.Subbranch})
		}
	}
	return out
}

// Reconcile renames the source character column to char and fills phonetic
// row by row from the first reading candidate holding a value. Merged
// sources may each use a different reading column, so the choice is never
// made for the whole table. An alternate tagged with a subbranch is only
// read for rows of that subbranch, or rows without one. Reading candidate
// columns are dropped from the result; t is left untouched.
func Reconcile(t *table.Table, cols config.Columns) (*table.Table, ReconcileStats, error) {
	var stats ReconcileStats
	cands := readingColumns(t, cols)
	if len(cands) == 0 {
		return nil, stats, &lexeme.SchemaError{Msg: "no recognized reading column", Missing: cols.ReadingCandidates()}
	}

	out := t.Clone()
	si := out.Index(lexeme.ColSubbranch)
	out.Set(lexeme.ColPhonetic, func(row table.Row) table.Cell {
		var sub table.Cell
		if si >= 0 {
			sub = row[si]
		}
		mismatch := false
		for i, c := range cands {
			v := row[c.idx]
			if !v.Present() {
				continue
			}
			if c.subbranch != "" && sub.Present() && sub.Value != c.subbranch {
				mismatch = true
				continue
			}
			if i == 0 && c.name == cols.Reading {
				stats.Primary++
			} else {
				stats.Alternate++
			}
			return v
		}
		stats.Missing++
		if mismatch {
			stats.SubbranchMismatch++
		}
		return table.Null()
	})

	var drop []string
	for _, c := range cands {
		if c.name != lexeme.ColPhonetic {
			drop = append(drop, c.name)
		}
	}
	out = out.Drop(drop...)
	out.Rename(cols.Char, lexeme.ColChar)
	return out, stats, nil
}
