package transform

import (
	"fmt"
	"math"
	"time"

	"commerce-etl/internal/table"
)

// Column names the order-metric step adds to the orders table.
const (
	colDeliveryDays     = "delivery_days"
	colEstDeliveryDays  = "estimated_delivery_days"
	colDeliveryDelay    = "delivery_delay_days"
	colIsLate           = "is_late"
	colOrderYear        = "order_year"
	colOrderMonth       = "order_month"
	colOrderQuarter     = "order_quarter"
	colOrderDayOfWeek   = "order_day_of_week"
	colOrderHour        = "order_hour"
	colOrderDate        = "order_date"
	colPurchaseTS       = "order_purchase_timestamp"
	colDeliveredTS      = "order_delivered_customer_date"
	colEstimatedTS      = "order_estimated_delivery_date"
	colOrderStatus      = "order_status"
)

// deriveOrderMetrics augments a date-coerced orders table with delivery
// and calendar metrics. The purchase timestamp is the daily grouping
// key, so its absence is fatal; the delivery and estimate columns are
// optional and propagate nulls.
//
// Conventions, fixed here: day differences are floored whole days;
// is_late is null (not false) while an order is undelivered;
// order_day_of_week uses Monday=0 .. Sunday=6.
func deriveOrderMetrics(orders *table.Table) (*table.Table, error) {
	if err := orders.Require(colPurchaseTS); err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}

	out := orders.Clone()
	for _, c := range []string{
		colDeliveryDays, colEstDeliveryDays, colDeliveryDelay, colIsLate,
		colOrderYear, colOrderMonth, colOrderQuarter, colOrderDayOfWeek,
		colOrderHour, colOrderDate,
	} {
		out.AddColumn(c)
	}

	for i := 0; i < out.Len(); i++ {
		r := out.Row(i)

		purchase, hasPurchase := table.Time(r[colPurchaseTS])
		delivered, hasDelivered := table.Time(r[colDeliveredTS])
		estimated, hasEstimated := table.Time(r[colEstimatedTS])

		r[colDeliveryDays] = nil
		r[colEstDeliveryDays] = nil
		r[colDeliveryDelay] = nil
		r[colIsLate] = nil

		if hasPurchase && hasDelivered {
			r[colDeliveryDays] = daysBetween(purchase, delivered)
		}
		if hasPurchase && hasEstimated {
			r[colEstDeliveryDays] = daysBetween(purchase, estimated)
		}
		if hasDelivered && hasEstimated {
			delay := daysBetween(estimated, delivered)
			r[colDeliveryDelay] = delay
			r[colIsLate] = delay > 0
		}

		if hasPurchase {
			r[colOrderYear] = purchase.Year()
			r[colOrderMonth] = int(purchase.Month())
			r[colOrderQuarter] = (int(purchase.Month())-1)/3 + 1
			r[colOrderDayOfWeek] = (int(purchase.Weekday()) + 6) % 7
			r[colOrderHour] = purchase.Hour()
			r[colOrderDate] = time.Date(
				purchase.Year(), purchase.Month(), purchase.Day(),
				0, 0, 0, 0, purchase.Location())
		} else {
			r[colOrderYear] = nil
			r[colOrderMonth] = nil
			r[colOrderQuarter] = nil
			r[colOrderDayOfWeek] = nil
			r[colOrderHour] = nil
			r[colOrderDate] = nil
		}
	}

	return out, nil
}

// daysBetween returns b-a in whole days, floored toward minus infinity.
func daysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}
