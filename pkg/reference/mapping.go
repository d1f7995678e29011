// Package reference loads the rhyme -> chain-slot mapping table. The table is
// maintained outside this module and is read as a trusted, read-only dataset.
package reference

import (
	"errors"
	"io/fs"
	"sort"

	"github.com/hazyhaar/wuyu-lexeme/pkg/lexeme"
	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
)

// Reference table column names.
const (
	ColRhyme           = "rhyme"
	ColRhymeModern     = "rhyme_modern"
	ColChainSlot       = "chain_slot"
	ColSlotTypeInitial = "slot_type_initial"
	ColIsFree          = "is_free"
)

// RequiredColumns must be present in every reference table. rhyme_modern is
// optional: it is read when present.
var RequiredColumns = []string{ColRhyme, ColChainSlot, ColSlotTypeInitial, ColIsFree}

// Slot is the mapped attributes of one rhyme label.
type Slot struct {
	Rhyme           string
	RhymeModern     table.Cell
	ChainSlot       table.Cell
	SlotTypeInitial table.Cell
	IsFree          table.Cell
}

// Mapping is the in-memory reference keyed by rhyme label. A label listed
// more than once keeps every entry, in file order.
type Mapping struct {
	Path    string
	entries map[string][]Slot
	keys    []string
	rows    int
}

// NewMapping builds a mapping from slots, keeping their order.
func NewMapping(slots ...Slot) *Mapping {
	m := &Mapping{entries: make(map[string][]Slot)}
	for _, s := range slots {
		m.add(s)
	}
	return m
}

func (m *Mapping) add(s Slot) {
	if _, ok := m.entries[s.Rhyme]; !ok {
		m.keys = append(m.keys, s.Rhyme)
	}
	m.entries[s.Rhyme] = append(m.entries[s.Rhyme], s)
	m.rows++
}

// Lookup returns every entry for rhyme, or nil.
func (m *Mapping) Lookup(rhyme string) []Slot {
	return m.entries[rhyme]
}

// Len returns the number of reference rows.
func (m *Mapping) Len() int { return m.rows }

// Keys returns the distinct rhyme labels in first-seen order.
func (m *Mapping) Keys() []string { return append([]string(nil), m.keys...) }

// Duplicates returns the rhyme labels listed more than once, sorted.
func (m *Mapping) Duplicates() []string {
	var dups []string
	for k, v := range m.entries {
		if len(v) > 1 {
			dups = append(dups, k)
		}
	}
	sort.Strings(dups)
	return dups
}

// Load reads the reference table at path. Any failure is reported as a
// *lexeme.ConfigurationError.
func Load(path string, f table.Format) (*Mapping, error) {
	t, err := table.ReadFile(path, f)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &lexeme.ConfigurationError{Path: path, Err: fs.ErrNotExist}
		}
		return nil, &lexeme.ConfigurationError{Path: path, Err: err}
	}
	return FromTable(path, t)
}

// FromTable builds a mapping from an already parsed reference table.
func FromTable(path string, t *table.Table) (*Mapping, error) {
	if missing := t.Missing(RequiredColumns...); len(missing) > 0 {
		return nil, &lexeme.ConfigurationError{Path: path, Missing: missing}
	}

	m := NewMapping()
	m.Path = path
	for _, row := range t.Rows {
		key := t.Get(row, ColRhyme)
		// A null key can never equal a present rhyme label.
		if !key.Valid {
			m.rows++
			continue
		}
		m.add(Slot{
			Rhyme:           key.Value,
			RhymeModern:     t.Get(row, ColRhymeModern),
			ChainSlot:       t.Get(row, ColChainSlot),
			SlotTypeInitial: t.Get(row, ColSlotTypeInitial),
			IsFree:          t.Get(row, ColIsFree),
		})
	}
	return m, nil
}
