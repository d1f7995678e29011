package pipeline

import (
	"github.com/hazyhaar/wuyu-lexeme/pkg/config"
	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
)

// FilterStats counts what Filter discarded.
type FilterStats struct {
	Before       int `yaml:"before"`
	After        int `yaml:"after"`
	Dropped      int `yaml:"dropped"`
	HeaderEchoes int `yaml:"header_echoes"`
}

// Filter keeps the rows whose rhyme and onset-group labels are both present
// and whose rhyme label is not the rhyme header token itself (a header row
// re-read as data). Dropped rows are not errors; they are only counted.
func Filter(t *table.Table, cols config.Columns) (*table.Table, FilterStats) {
	stats := FilterStats{Before: t.Len()}
	ri, oi := t.Index(cols.Rhyme), t.Index(cols.Onset)

	out := t.Filter(func(row table.Row) bool {
		if ri < 0 || oi < 0 {
			return false
		}
		rhyme, onset := row[ri], row[oi]
		if !rhyme.Present() || !onset.Present() {
			return false
		}
		if rhyme.Value == cols.Rhyme {
			stats.HeaderEchoes++
			return false
		}
		return true
	})

	stats.After = out.Len()
	stats.Dropped = stats.Before - stats.After
	return out, stats
}
