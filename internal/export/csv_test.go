package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-etl/internal/table"
)

func sampleTable() *table.Table {
	t := table.New("date", "orders", "revenue", "is_late")
	t.Append(table.Row{
		"date":    time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		"orders":  2,
		"revenue": 55.5,
		"is_late": true,
	})
	t.Append(table.Row{
		"date":    time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		"orders":  1,
		"revenue": 34.0,
		"is_late": nil,
	})
	return t
}

func TestWriteTable(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, w.WriteTable("daily_metrics", sampleTable()))

	raw, err := os.ReadFile(filepath.Join(dir, "daily_metrics.csv"))
	require.NoError(t, err)

	// BOM first, then header and rows in column order; nulls empty.
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3])
	assert.Equal(t,
		"date,orders,revenue,is_late\n"+
			"2024-01-10,2,55.5,true\n"+
			"2024-01-11,1,34,\n",
		string(raw[3:]))
}

func TestWriteAllWritesEveryTable(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	err := w.WriteAll(map[string]*table.Table{
		"daily_metrics": sampleTable(),
		"state_metrics": sampleTable(),
	})
	require.NoError(t, err)

	for _, name := range []string{"daily_metrics.csv", "state_metrics.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", FormatCell(nil))
	assert.Equal(t, "25.5", FormatCell(25.5))
	assert.Equal(t, "3", FormatCell(3))
	assert.Equal(t, "false", FormatCell(false))
	assert.Equal(t, "2024-01-10", FormatCell(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-10 10:30:00", FormatCell(time.Date(2024, 1, 10, 10, 30, 0, 0, time.UTC)))
}
