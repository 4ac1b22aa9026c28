package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-etl/internal/table"
)

func TestDaysBetweenFloors(t *testing.T) {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, daysBetween(base, base))
	assert.Equal(t, 0, daysBetween(base, base.Add(23*time.Hour)))
	assert.Equal(t, 1, daysBetween(base, base.Add(24*time.Hour)))
	// Early deliveries floor toward minus infinity: -1.5 days is -2.
	assert.Equal(t, -2, daysBetween(base, base.Add(-36*time.Hour)))
}

func TestDeriveOrderMetricsRequiresPurchaseTimestamp(t *testing.T) {
	orders := table.New("order_id")
	orders.Append(table.Row{"order_id": "o1"})

	_, err := deriveOrderMetrics(orders)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order_purchase_timestamp")
}

func TestDayOfWeekMondayIsZero(t *testing.T) {
	orders := table.New("order_id", colPurchaseTS)
	// 2024-01-08 is a Monday.
	orders.Append(table.Row{
		"order_id":    "o1",
		colPurchaseTS: time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC),
	})

	out, err := deriveOrderMetrics(orders)
	require.NoError(t, err)

	r := out.Row(0)
	assert.Equal(t, 0, r["order_day_of_week"])
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), r["order_date"])
	assert.Nil(t, r["delivery_delay_days"])
	assert.Nil(t, r["is_late"])
}
