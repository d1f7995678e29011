package pipeline

import (
	"github.com/hazyhaar/wuyu-lexeme/pkg/config"
	"github.com/hazyhaar/wuyu-lexeme/pkg/lexeme"
	"github.com/hazyhaar/wuyu-lexeme/pkg/reference"
	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
)

// JoinStats describes a slot join.
type JoinStats struct {
	Rows      int `yaml:"rows"`
	Matched   int `yaml:"matched"`
	Unmatched int `yaml:"unmatched"`
	// FanOut is the number of extra rows produced by duplicate reference keys.
	FanOut int `yaml:"fan_out"`
}

// slotColumns are attached by Join, in this order.
var slotColumns = []string{
	lexeme.ColRhymeModern,
	lexeme.ColChainSlot,
	lexeme.ColSlotTypeInitial,
	lexeme.ColIsFree,
}

// Join left-joins t against m on the raw rhyme label. Every input row
// survives: unmatched rows get null slot attributes, and a label listed n
// times in the reference yields n rows in place.
func Join(t *table.Table, m *reference.Mapping, cols config.Columns) (*table.Table, JoinStats) {
	var stats JoinStats

	base := t.Clone()
	for _, c := range slotColumns {
		base.Set(c, func(table.Row) table.Cell { return table.Null() })
	}
	pos := make([]int, len(slotColumns))
	for i, c := range slotColumns {
		pos[i] = base.Index(c)
	}
	ri := base.Index(cols.Rhyme)

	out := table.New(base.Columns...)
	for _, row := range base.Rows {
		var slots []reference.Slot
		if ri >= 0 && row[ri].Valid {
			slots = m.Lookup(row[ri].Value)
		}
		if len(slots) == 0 {
			stats.Unmatched++
			out.Rows = append(out.Rows, row)
			continue
		}

		stats.Matched++
		stats.FanOut += len(slots) - 1
		for _, s := range slots {
			nr := append(table.Row(nil), row...)
			nr[pos[0]] = s.RhymeModern
			nr[pos[1]] = s.ChainSlot
			nr[pos[2]] = s.SlotTypeInitial
			nr[pos[3]] = s.IsFree
			out.Rows = append(out.Rows, nr)
		}
	}
	stats.Rows = out.Len()
	return out, stats
}
