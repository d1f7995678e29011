package pipeline

import (
	"github.com/hazyhaar/wuyu-lexeme/pkg/lexeme"
	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
)

// Layer annotation constants.
const (
	ReadingLayerMain = "main"
	FlagSet          = "1"
	ZeroTypeNone     = "none"
)

// Annotate stamps the reading-layer and validity metadata on a copy of t.
// feature_change stays null until change detection rules exist.
func Annotate(t *table.Table) *table.Table {
	out := t.Clone()
	out.Set(lexeme.ColReadingLayer, constant(table.Str(ReadingLayerMain)))
	out.Set(lexeme.ColMainlayerFlag, constant(table.Str(FlagSet)))
	out.Set(lexeme.ColComboValidity, constant(table.Str(FlagSet)))
	out.Set(lexeme.ColZeroType, constant(table.Str(ZeroTypeNone)))
	out.Set(lexeme.ColFeatureChange, constant(table.Null()))
	return out
}

func constant(c table.Cell) func(table.Row) table.Cell {
	return func(table.Row) table.Cell { return c }
}
