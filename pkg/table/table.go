// Package table is a small column-ordered table of nullable strings, enough
// to carry field-survey spreadsheets through the cleaning stages.
package table

// Cell is one nullable field. The zero value is null.
type Cell struct {
	Value string
	Valid bool
}

// Str returns a non-null cell.
func Str(s string) Cell { return Cell{Value: s, Valid: true} }

// Null returns a null cell.
func Null() Cell { return Cell{} }

// Present reports whether the cell is non-null and non-empty.
func (c Cell) Present() bool { return c.Valid && c.Value != "" }

// Row is aligned with Table.Columns.
type Row []Cell

// Table holds rows under an ordered column list.
type Table struct {
	Columns []string
	Rows    []Row
	index   map[string]int
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		// First occurrence wins, like a header lookup.
		if _, ok := t.index[c]; !ok {
			t.index[c] = i
		}
	}
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	if t.index == nil {
		t.reindex()
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the column exists.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Missing returns the names absent from t, in the order given.
func (t *Table) Missing(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// Len returns the row count.
func (t *Table) Len() int { return len(t.Rows) }

// Append adds a row, padding or truncating it to the column count.
func (t *Table) Append(row Row) {
	if len(row) != len(t.Columns) {
		fixed := make(Row, len(t.Columns))
		copy(fixed, row)
		row = fixed
	}
	t.Rows = append(t.Rows, row)
}

// Get returns the cell of row under column name; null if the column is absent.
func (t *Table) Get(row Row, name string) Cell {
	i := t.Index(name)
	if i < 0 || i >= len(row) {
		return Cell{}
	}
	return row[i]
}

// Rename changes a column name in place. It is a no-op if old is absent.
func (t *Table) Rename(old, name string) {
	i := t.Index(old)
	if i < 0 {
		return
	}
	t.Columns[i] = name
	t.reindex()
}

// Set assigns a column from fn, appending the column when it does not exist.
func (t *Table) Set(name string, fn func(Row) Cell) {
	i := t.Index(name)
	if i < 0 {
		t.Columns = append(t.Columns, name)
		t.reindex()
		i = len(t.Columns) - 1
		for r := range t.Rows {
			t.Rows[r] = append(t.Rows[r], Cell{})
		}
	}
	for r, row := range t.Rows {
		t.Rows[r][i] = fn(row)
	}
}

// Filter returns a new table holding copies of the rows for which keep
// returns true, in their original order.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.Columns...)
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, append(Row(nil), row...))
		}
	}
	return out
}

// Select projects t onto columns, silently omitting names t does not have.
func (t *Table) Select(columns ...string) *Table {
	var kept []string
	var idx []int
	for _, c := range columns {
		if i := t.Index(c); i >= 0 {
			kept = append(kept, c)
			idx = append(idx, i)
		}
	}
	out := New(kept...)
	out.Rows = make([]Row, len(t.Rows))
	for r, row := range t.Rows {
		nr := make(Row, len(idx))
		for j, i := range idx {
			if i < len(row) {
				nr[j] = row[i]
			}
		}
		out.Rows[r] = nr
	}
	return out
}

// Drop returns a copy of t without the named columns.
func (t *Table) Drop(columns ...string) *Table {
	gone := make(map[string]bool, len(columns))
	for _, c := range columns {
		gone[c] = true
	}
	var kept []string
	for _, c := range t.Columns {
		if !gone[c] {
			kept = append(kept, c)
		}
	}
	return t.Select(kept...)
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append(Row(nil), row...)
	}
	return out
}

// Concat stacks tables in order. The result carries the union of columns in
// first-seen order; cells of columns a table lacks are null.
func Concat(tables ...*Table) *Table {
	var cols []string
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}

	out := New(cols...)
	for _, t := range tables {
		pos := make([]int, len(cols))
		for j, c := range cols {
			pos[j] = t.Index(c)
		}
		for _, row := range t.Rows {
			nr := make(Row, len(cols))
			for j, i := range pos {
				if i >= 0 && i < len(row) {
					nr[j] = row[i]
				}
			}
			out.Rows = append(out.Rows, nr)
		}
	}
	return out
}
