// Package table implements a small in-memory columnar table with the
// relational operations the transformation pipeline needs: projection,
// filtering, sorting, left/inner joins and group-by with named
// reductions. Cells are dynamically typed; a nil cell is a null.
package table

import (
	"fmt"
	"sort"
)

// Row holds one record's cells keyed by column name. A missing key and
// a nil value are both treated as null.
type Row map[string]any

// Table is an ordered set of columns plus a list of rows.
type Table struct {
	cols []string
	rows []Row
}

// New creates an empty table with the given column order.
func New(cols ...string) *Table {
	return &Table{cols: append([]string{}, cols...)}
}

// Columns returns the column names in output order.
func (t *Table) Columns() []string {
	return t.cols
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Append adds a row to the table.
func (t *Table) Append(r Row) {
	t.rows = append(t.rows, r)
}

// Row returns the i-th row.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Value returns the cell at row i, column col; nil when absent.
func (t *Table) Value(i int, col string) any {
	return t.rows[i][col]
}

// Column returns all values of one column, nulls included.
func (t *Table) Column(col string) []any {
	vals := make([]any, len(t.rows))
	for i, r := range t.rows {
		vals[i] = r[col]
	}
	return vals
}

// HasColumn reports whether the table declares the column.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.cols {
		if c == col {
			return true
		}
	}
	return false
}

// Require errors on the first listed column the table does not declare.
// Used to surface missing join/group keys as fatal conditions.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return fmt.Errorf("required column %q is missing", c)
		}
	}
	return nil
}

// AddColumn declares a new column at the end of the column order.
func (t *Table) AddColumn(col string) {
	if !t.HasColumn(col) {
		t.cols = append(t.cols, col)
	}
}

// Clone returns a deep copy; mutating the copy never touches the
// original rows.
func (t *Table) Clone() *Table {
	out := New(t.cols...)
	out.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.rows[i] = cp
	}
	return out
}

// Select returns a new table with only the given columns.
func (t *Table) Select(cols ...string) *Table {
	out := New(cols...)
	for _, r := range t.rows {
		nr := make(Row, len(cols))
		for _, c := range cols {
			nr[c] = r[c]
		}
		out.Append(nr)
	}
	return out
}

// Filter returns a new table holding the rows keep reports true for.
// Row maps are shared with the receiver; callers must not mutate them.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.cols...)
	for _, r := range t.rows {
		if keep(r) {
			out.Append(r)
		}
	}
	return out
}

// Rename returns a copy of the table with one column renamed. The
// explicit from/to pair keeps renames tied to a name, never a position.
func (t *Table) Rename(from, to string) *Table {
	out := New()
	for _, c := range t.cols {
		if c == from {
			out.cols = append(out.cols, to)
		} else {
			out.cols = append(out.cols, c)
		}
	}
	for _, r := range t.rows {
		nr := make(Row, len(r))
		for k, v := range r {
			if k == from {
				nr[to] = v
			} else {
				nr[k] = v
			}
		}
		out.Append(nr)
	}
	return out
}

// SortBy stably sorts the rows by one column. Nulls order first
// ascending, last descending.
func (t *Table) SortBy(col string, desc bool) *Table {
	out := New(t.cols...)
	out.rows = append([]Row{}, t.rows...)
	sort.SliceStable(out.rows, func(i, j int) bool {
		c := Compare(out.rows[i][col], out.rows[j][col])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}
