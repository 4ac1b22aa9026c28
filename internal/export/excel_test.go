package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"commerce-etl/internal/table"
)

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	err := WriteWorkbook(path, map[string]*table.Table{
		"daily_metrics":    sampleTable(),
		"category_summary": sampleTable(),
	})
	require.NoError(t, err)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	// Sheets come out in name order.
	assert.Equal(t, []string{"category_summary", "daily_metrics"}, wb.GetSheetList())

	header, err := wb.GetCellValue("daily_metrics", "A1")
	require.NoError(t, err)
	assert.Equal(t, "date", header)

	date, err := wb.GetCellValue("daily_metrics", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", date)

	orders, err := wb.GetCellValue("daily_metrics", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", orders)
}
