package pipeline

import (
	"github.com/hazyhaar/wuyu-lexeme/pkg/config"
	"github.com/hazyhaar/wuyu-lexeme/pkg/lexeme"
	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
)

// Assemble produces the clean lexeme table. rhyme_modern receives the raw
// rhyme label verbatim, replacing the canonical label attached by Join, and
// onset_class the raw onset-group label. The result is projected onto
// lexeme.Columns; columns t lacks are omitted, rows keep their order.
func Assemble(t *table.Table, cols config.Columns) *table.Table {
	out := t.Clone()
	if ri := out.Index(cols.Rhyme); ri >= 0 {
		out.Set(lexeme.ColRhymeModern, func(row table.Row) table.Cell { return row[ri] })
	}
	if oi := out.Index(cols.Onset); oi >= 0 {
		out.Set(lexeme.ColOnsetClass, func(row table.Row) table.Cell { return row[oi] })
	}
	return out.Select(lexeme.Columns...)
}
