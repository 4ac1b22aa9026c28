package table

// How selects the join flavor.
type How int

const (
	// Left keeps every row of the receiver; unmatched rows get null
	// cells for the attached columns.
	Left How = iota
	// Inner keeps only rows with at least one match.
	Inner
)

// Join attaches the listed right-hand columns to the receiver by
// equality on the key column. A right side with several matches
// multiplies the row, like a SQL join. Rows whose key is null never
// match.
func (t *Table) Join(right *Table, on string, how How, cols ...string) *Table {
	idx := make(map[string][]Row, right.Len())
	for _, r := range right.rows {
		if IsNull(r[on]) {
			continue
		}
		k := String(r[on])
		idx[k] = append(idx[k], r)
	}

	outCols := append([]string{}, t.cols...)
	for _, c := range cols {
		outCols = append(outCols, c)
	}
	out := New(outCols...)

	for _, lr := range t.rows {
		var matches []Row
		if !IsNull(lr[on]) {
			matches = idx[String(lr[on])]
		}

		if len(matches) == 0 {
			if how == Inner {
				continue
			}
			nr := make(Row, len(lr)+len(cols))
			for k, v := range lr {
				nr[k] = v
			}
			for _, c := range cols {
				nr[c] = nil
			}
			out.Append(nr)
			continue
		}

		for _, rr := range matches {
			nr := make(Row, len(lr)+len(cols))
			for k, v := range lr {
				nr[k] = v
			}
			for _, c := range cols {
				nr[c] = rr[c]
			}
			out.Append(nr)
		}
	}

	return out
}
