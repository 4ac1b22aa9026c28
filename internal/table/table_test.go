package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByReductions(t *testing.T) {
	tbl := New("key", "amount", "item")
	tbl.Append(Row{"key": "a", "amount": "10.5", "item": "x"})
	tbl.Append(Row{"key": "a", "amount": "2.5", "item": "x"})
	tbl.Append(Row{"key": "a", "amount": nil, "item": "y"})
	tbl.Append(Row{"key": "b", "amount": "1", "item": "z"})

	out, err := tbl.GroupBy([]string{"key"}, []Agg{
		{Col: "amount", As: "total", Fn: Sum},
		{Col: "amount", As: "n", Fn: Count},
		{Col: "amount", As: "avg", Fn: Mean},
		{Col: "item", As: "distinct_items", Fn: NUnique},
		{Col: "item", As: "x_rows", Fn: CountEq("x")},
	})
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())

	a := out.Row(0)
	assert.Equal(t, "a", a["key"])
	assert.Equal(t, 13.0, a["total"])
	assert.Equal(t, 2, a["n"])
	assert.Equal(t, 6.5, a["avg"])
	assert.Equal(t, 2, a["distinct_items"])
	assert.Equal(t, 2, a["x_rows"])

	b := out.Row(1)
	assert.Equal(t, "b", b["key"])
	assert.Equal(t, 1.0, b["total"])
}

func TestGroupBySortsByKeyAscending(t *testing.T) {
	tbl := New("day", "v")
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	tbl.Append(Row{"day": d2, "v": "1"})
	tbl.Append(Row{"day": d1, "v": "2"})
	tbl.Append(Row{"day": d2, "v": "3"})

	out, err := tbl.GroupBy([]string{"day"}, []Agg{{Col: "v", As: "n", Fn: Count}})
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, d1, out.Value(0, "day"))
	assert.Equal(t, d2, out.Value(1, "day"))
}

func TestGroupByDropsNullKeys(t *testing.T) {
	tbl := New("key", "v")
	tbl.Append(Row{"key": nil, "v": "1"})
	tbl.Append(Row{"key": "a", "v": "2"})

	out, err := tbl.GroupBy([]string{"key"}, []Agg{{Col: "v", As: "n", Fn: Count}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestGroupByMissingKeyIsFatal(t *testing.T) {
	tbl := New("v")
	_, err := tbl.GroupBy([]string{"nope"}, nil)
	assert.Error(t, err)
}

func TestLeftJoinKeepsUnmatchedRows(t *testing.T) {
	left := New("id", "v")
	left.Append(Row{"id": "1", "v": "a"})
	left.Append(Row{"id": "2", "v": "b"})

	right := New("id", "extra")
	right.Append(Row{"id": "1", "extra": "yes"})

	out := left.Join(right, "id", Left, "extra")
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "yes", out.Value(0, "extra"))
	assert.Nil(t, out.Value(1, "extra"))
}

func TestInnerJoinDropsUnmatchedRows(t *testing.T) {
	left := New("id")
	left.Append(Row{"id": "1"})
	left.Append(Row{"id": "2"})

	right := New("id", "extra")
	right.Append(Row{"id": "2", "extra": "ok"})

	out := left.Join(right, "id", Inner, "extra")
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "2", out.Value(0, "id"))
}

func TestJoinMultipliesOnManyMatches(t *testing.T) {
	left := New("id", "v")
	left.Append(Row{"id": "1", "v": "a"})

	right := New("id", "score")
	right.Append(Row{"id": "1", "score": "5"})
	right.Append(Row{"id": "1", "score": "3"})

	out := left.Join(right, "id", Left, "score")
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "5", out.Value(0, "score"))
	assert.Equal(t, "3", out.Value(1, "score"))
}

func TestJoinNullKeysNeverMatch(t *testing.T) {
	left := New("id")
	left.Append(Row{"id": nil})

	right := New("id", "extra")
	right.Append(Row{"id": nil, "extra": "boom"})

	out := left.Join(right, "id", Left, "extra")
	require.Equal(t, 1, out.Len())
	assert.Nil(t, out.Value(0, "extra"))
}

func TestSortByDescendingStable(t *testing.T) {
	tbl := New("rev", "tag")
	tbl.Append(Row{"rev": 10.0, "tag": "low"})
	tbl.Append(Row{"rev": 30.0, "tag": "high"})
	tbl.Append(Row{"rev": 30.0, "tag": "high2"})

	out := tbl.SortBy("rev", true)
	assert.Equal(t, "high", out.Value(0, "tag"))
	assert.Equal(t, "high2", out.Value(1, "tag"))
	assert.Equal(t, "low", out.Value(2, "tag"))
}

func TestRenameMovesValues(t *testing.T) {
	tbl := New("old", "keep")
	tbl.Append(Row{"old": "v", "keep": "k"})

	out := tbl.Rename("old", "new")
	assert.Equal(t, []string{"new", "keep"}, out.Columns())
	assert.Equal(t, "v", out.Value(0, "new"))
	assert.Nil(t, out.Value(0, "old"))
}

func TestRollingMeanPartialWindows(t *testing.T) {
	vals := []any{1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 7.0, 8.0}
	out := RollingMean(vals, 7)

	assert.Equal(t, 1.0, out[0])
	assert.Equal(t, 1.5, out[1])
	assert.Equal(t, 4.0, out[6])               // mean(1..7)
	assert.Equal(t, 5.0, out[7])               // mean(2..8), window slides
	assert.Len(t, out, len(vals))
}

func TestRollingMeanAllNullWindow(t *testing.T) {
	out := RollingMean([]any{nil, nil}, 7)
	assert.Nil(t, out[0])
	assert.Nil(t, out[1])
}

func TestMeanOverBooleansIsARate(t *testing.T) {
	assert.Equal(t, 0.5, Mean([]any{true, false, nil}))
	assert.Nil(t, Mean([]any{nil, nil}))
}

func TestCloneIsDeep(t *testing.T) {
	tbl := New("a")
	tbl.Append(Row{"a": "1"})

	cp := tbl.Clone()
	cp.Row(0)["a"] = "changed"
	assert.Equal(t, "1", tbl.Value(0, "a"))
}

func TestCompareOrdersNullsFirst(t *testing.T) {
	assert.Equal(t, -1, Compare(nil, "a"))
	assert.Equal(t, 1, Compare("a", nil))
	assert.Equal(t, 0, Compare(nil, nil))
	assert.Equal(t, -1, Compare(1.0, 2.0))
	assert.Equal(t, -1, Compare("abc", "abd"))
}
