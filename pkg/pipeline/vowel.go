package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hazyhaar/wuyu-lexeme/pkg/lexeme"
	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
)

// VowelExtractor picks the vowel symbol out of a phonetic transcription.
type VowelExtractor struct {
	inventory string
	re        *regexp.Regexp
}

// NewVowelExtractor compiles a matcher for maximal runs of the runes of
// inventory. Every rune is literal: "a-z" is three symbols, not a range.
func NewVowelExtractor(inventory string) (*VowelExtractor, error) {
	if inventory == "" {
		return nil, fmt.Errorf("empty vowel inventory")
	}
	var class strings.Builder
	class.WriteByte('[')
	for _, r := range inventory {
		fmt.Fprintf(&class, `\x{%x}`, r)
	}
	class.WriteString("]+")

	re, err := regexp.Compile(class.String())
	if err != nil {
		return nil, fmt.Errorf("vowel inventory %q: %w", inventory, err)
	}
	return &VowelExtractor{inventory: inventory, re: re}, nil
}

// Extract returns the first maximal run of inventory symbols in s.
func (x *VowelExtractor) Extract(s string) (string, bool) {
	loc := x.re.FindStringIndex(s)
	if loc == nil {
		return "", false
	}
	return s[loc[0]:loc[1]], true
}

// Vowel returns the vowel symbol cell for a phonetic cell. Null in, or no
// match, gives null.
func (x *VowelExtractor) Vowel(phonetic table.Cell) table.Cell {
	if !phonetic.Valid {
		return table.Null()
	}
	v, ok := x.Extract(phonetic.Value)
	if !ok {
		return table.Null()
	}
	return table.Str(v)
}

// ExtractFeatures adds vowel_symbol and vowel_class to a copy of t. The class
// is the symbol itself until a finer classification exists.
func ExtractFeatures(t *table.Table, x *VowelExtractor) *table.Table {
	out := t.Clone()
	pi := out.Index(lexeme.ColPhonetic)
	out.Set(lexeme.ColVowelSymbol, func(row table.Row) table.Cell {
		if pi < 0 {
			return table.Null()
		}
		return x.Vowel(row[pi])
	})
	vi := out.Index(lexeme.ColVowelSymbol)
	out.Set(lexeme.ColVowelClass, func(row table.Row) table.Cell {
		return row[vi]
	})
	return out
}
