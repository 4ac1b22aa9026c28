package table

import (
	"fmt"
	"sort"
	"strings"
)

// AggFunc reduces one column's values within a group to a single cell.
type AggFunc func(vals []any) any

// Agg is a named reduction: read Col, reduce with Fn, emit as As.
// Output names are explicit so a reordered aggregation can never
// silently misalign columns.
type Agg struct {
	Col string
	As  string
	Fn  AggFunc
}

// GroupBy groups rows by the key columns and applies each reduction,
// producing one row per group. Rows with a null key are dropped. Output
// rows are ordered ascending by key, so single-key date groupings come
// out calendar-sorted.
func (t *Table) GroupBy(keys []string, aggs []Agg) (*Table, error) {
	if err := t.Require(keys...); err != nil {
		return nil, fmt.Errorf("group by: %w", err)
	}

	type group struct {
		keyVals []any
		rows    []Row
	}

	index := make(map[string]*group)
	order := make([]*group, 0)

	for _, r := range t.rows {
		skip := false
		keyVals := make([]any, len(keys))
		parts := make([]string, len(keys))
		for i, k := range keys {
			if IsNull(r[k]) {
				skip = true
				break
			}
			keyVals[i] = r[k]
			parts[i] = String(r[k])
		}
		if skip {
			continue
		}

		id := strings.Join(parts, "\x1f")
		g, ok := index[id]
		if !ok {
			g = &group{keyVals: keyVals}
			index[id] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, r)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i].keyVals, order[j].keyVals
		for k := range a {
			if c := Compare(a[k], b[k]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	outCols := append([]string{}, keys...)
	for _, a := range aggs {
		outCols = append(outCols, a.As)
	}
	out := New(outCols...)

	for _, g := range order {
		nr := make(Row, len(outCols))
		for i, k := range keys {
			nr[k] = g.keyVals[i]
		}
		for _, a := range aggs {
			vals := make([]any, len(g.rows))
			for i, r := range g.rows {
				vals[i] = r[a.Col]
			}
			nr[a.As] = a.Fn(vals)
		}
		out.Append(nr)
	}

	return out, nil
}

// Sum adds every numeric value; nulls and non-numerics are skipped. An
// all-null group sums to 0.
func Sum(vals []any) any {
	total := 0.0
	for _, v := range vals {
		if f, ok := Float(v); ok {
			total += f
		}
	}
	return total
}

// Count counts non-null values.
func Count(vals []any) any {
	n := 0
	for _, v := range vals {
		if !IsNull(v) {
			n++
		}
	}
	return n
}

// Mean averages the numeric values, skipping nulls. Booleans count as
// 1 and 0, which makes Mean over a boolean column a rate. Null when no
// value resolves.
func Mean(vals []any) any {
	total, n := 0.0, 0
	for _, v := range vals {
		if f, ok := Float(v); ok {
			total += f
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return total / float64(n)
}

// NUnique counts distinct non-null values by their string form.
func NUnique(vals []any) any {
	seen := make(map[string]struct{})
	for _, v := range vals {
		if !IsNull(v) {
			seen[String(v)] = struct{}{}
		}
	}
	return len(seen)
}

// CountEq builds a reduction counting values equal to target.
func CountEq(target string) AggFunc {
	return func(vals []any) any {
		n := 0
		for _, v := range vals {
			if !IsNull(v) && String(v) == target {
				n++
			}
		}
		return n
	}
}

// RollingMean computes a trailing moving average over window rows with
// a minimum window of one: row i averages rows [max(0,i-window+1), i].
// Nulls inside a window are skipped; a window with no numeric value
// yields null.
func RollingMean(vals []any, window int) []any {
	out := make([]any, len(vals))
	for i := range vals {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		total, n := 0.0, 0
		for j := lo; j <= i; j++ {
			if f, ok := Float(vals[j]); ok {
				total += f
				n++
			}
		}
		if n == 0 {
			out[i] = nil
		} else {
			out[i] = total / float64(n)
		}
	}
	return out
}
