package transform

import (
	"fmt"

	"commerce-etl/internal/dataset"
	"commerce-etl/internal/table"
)

// orderSummary collapses order_items to one row per order. Status
// agnostic: canceled orders are aggregated like any other.
func orderSummary(items *table.Table) (*table.Table, error) {
	if err := items.Require("order_id"); err != nil {
		return nil, fmt.Errorf("order_items: %w", err)
	}

	out, err := items.GroupBy([]string{"order_id"}, []table.Agg{
		{Col: "price", As: "total_price", Fn: table.Sum},
		{Col: "freight_value", As: "total_freight", Fn: table.Sum},
		{Col: "order_item_id", As: "total_items", Fn: table.Count},
		{Col: "product_id", As: "unique_products", Fn: table.NUnique},
		{Col: "seller_id", As: "unique_sellers", Fn: table.NUnique},
	})
	if err != nil {
		return nil, err
	}

	out.AddColumn("total_order_value")
	for i := 0; i < out.Len(); i++ {
		r := out.Row(i)
		price, _ := table.Float(r["total_price"])
		freight, _ := table.Float(r["total_freight"])
		r["total_order_value"] = price + freight
	}
	return out, nil
}

// factOrders denormalizes the augmented orders into the order-level
// fact table: item totals, customer location and mean review score.
// Every order keeps exactly one row; unmatched joins leave nulls.
func factOrders(orders, summary, customers, reviews *table.Table) (*table.Table, error) {
	if err := orders.Require("order_id", "customer_id"); err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	if err := customers.Require("customer_id"); err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}
	if err := reviews.Require("order_id"); err != nil {
		return nil, fmt.Errorf("reviews: %w", err)
	}

	fact := orders.Join(summary, "order_id", table.Left,
		"total_price", "total_freight", "total_items",
		"unique_products", "unique_sellers", "total_order_value")

	fact = fact.Join(customers, "customer_id", table.Left,
		"customer_state", "customer_city")

	reviewsAgg, err := reviews.GroupBy([]string{"order_id"}, []table.Agg{
		{Col: "review_score", As: "review_score", Fn: table.Mean},
	})
	if err != nil {
		return nil, fmt.Errorf("reviews: %w", err)
	}

	return fact.Join(reviewsAgg, "order_id", table.Left, "review_score"), nil
}

// productPerf is the item-level intermediate joining category and order
// status onto order_items. Consumed by the product and category
// summaries, never published itself.
func productPerf(items, products, orders *table.Table) (*table.Table, error) {
	if err := items.Require("order_id", "product_id"); err != nil {
		return nil, fmt.Errorf("order_items: %w", err)
	}
	if err := products.Require("product_id"); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}

	perf := items.Join(products, "product_id", table.Left,
		"product_category_name", "base_price")
	perf = perf.Join(orders, "order_id", table.Left,
		colPurchaseTS, colOrderStatus)
	return perf, nil
}

// productSummary aggregates product_perf per product and category.
func productSummary(perf *table.Table) (*table.Table, error) {
	out, err := perf.GroupBy(
		[]string{"product_id", "product_category_name"},
		[]table.Agg{
			{Col: "order_id", As: "total_orders", Fn: table.Count},
			{Col: "price", As: "total_revenue", Fn: table.Sum},
			{Col: colOrderStatus, As: "delivered_orders", Fn: table.CountEq(dataset.StatusDelivered)},
		})
	if err != nil {
		return nil, err
	}
	return out.Rename("product_category_name", "category"), nil
}

// sellerSummary aggregates performance per seller, joined with seller
// location. The review join runs before grouping, so an order with
// several reviews contributes one item row per review, matching the
// upstream definition of avg_rating.
func sellerSummary(items, orders, reviews, sellers *table.Table) (*table.Table, error) {
	if err := items.Require("order_id", "seller_id"); err != nil {
		return nil, fmt.Errorf("order_items: %w", err)
	}
	if err := sellers.Require("seller_id"); err != nil {
		return nil, fmt.Errorf("sellers: %w", err)
	}

	s := items.Join(orders, "order_id", table.Inner, colOrderStatus)
	s = s.Join(reviews, "order_id", table.Left, "review_score")

	out, err := s.GroupBy([]string{"seller_id"}, []table.Agg{
		{Col: "order_id", As: "total_orders", Fn: table.NUnique},
		{Col: "price", As: "total_revenue", Fn: table.Sum},
		{Col: "review_score", As: "avg_rating", Fn: table.Mean},
		{Col: colOrderStatus, As: "canceled_orders", Fn: table.CountEq(dataset.StatusCanceled)},
	})
	if err != nil {
		return nil, err
	}

	return out.Join(sellers, "seller_id", table.Left,
		"seller_state", "seller_city"), nil
}

// dailyMetrics aggregates non-canceled fact rows per purchase date and
// appends 7-row trailing rolling means for revenue and order count.
// The table is explicitly re-sorted by date before the rolling pass.
func dailyMetrics(fact *table.Table) (*table.Table, error) {
	active := fact.Filter(notCanceled)

	out, err := active.GroupBy([]string{colOrderDate}, []table.Agg{
		{Col: "order_id", As: "orders", Fn: table.Count},
		{Col: "total_order_value", As: "revenue", Fn: table.Sum},
		{Col: "total_items", As: "items_sold", Fn: table.Sum},
		{Col: "customer_id", As: "unique_customers", Fn: table.NUnique},
		{Col: "review_score", As: "avg_rating", Fn: table.Mean},
		{Col: colIsLate, As: "late_delivery_rate", Fn: table.Mean},
	})
	if err != nil {
		return nil, err
	}

	out = out.Rename(colOrderDate, "date").SortBy("date", false)

	out.AddColumn("revenue_7d_avg")
	out.AddColumn("orders_7d_avg")
	revenue := table.RollingMean(out.Column("revenue"), 7)
	orders := table.RollingMean(out.Column("orders"), 7)
	for i := 0; i < out.Len(); i++ {
		r := out.Row(i)
		r["revenue_7d_avg"] = revenue[i]
		r["orders_7d_avg"] = orders[i]
	}
	return out, nil
}

// categorySummary aggregates non-canceled item rows per product
// category, revenue-descending.
func categorySummary(perf *table.Table) (*table.Table, error) {
	active := perf.Filter(notCanceled)

	out, err := active.GroupBy([]string{"product_category_name"}, []table.Agg{
		{Col: "order_id", As: "total_orders", Fn: table.Count},
		{Col: "price", As: "total_revenue", Fn: table.Sum},
		{Col: "product_id", As: "unique_products", Fn: table.NUnique},
	})
	if err != nil {
		return nil, err
	}

	out = out.Rename("product_category_name", "category")
	out.AddColumn("avg_order_value")
	for i := 0; i < out.Len(); i++ {
		r := out.Row(i)
		revenue, _ := table.Float(r["total_revenue"])
		orders, ok := table.Float(r["total_orders"])
		if !ok || orders == 0 {
			r["avg_order_value"] = nil
			continue
		}
		r["avg_order_value"] = revenue / orders
	}

	return out.SortBy("total_revenue", true), nil
}

// stateMetrics aggregates non-canceled fact rows per customer state.
func stateMetrics(fact *table.Table) (*table.Table, error) {
	if err := fact.Require("customer_state"); err != nil {
		return nil, fmt.Errorf("fact_orders: %w", err)
	}
	active := fact.Filter(notCanceled)

	out, err := active.GroupBy([]string{"customer_state"}, []table.Agg{
		{Col: "order_id", As: "total_orders", Fn: table.Count},
		{Col: "total_order_value", As: "total_revenue", Fn: table.Sum},
		{Col: "customer_id", As: "unique_customers", Fn: table.NUnique},
		{Col: "review_score", As: "avg_rating", Fn: table.Mean},
		{Col: colDeliveryDays, As: "avg_delivery_days", Fn: table.Mean},
	})
	if err != nil {
		return nil, err
	}
	return out.Rename("customer_state", "state"), nil
}

// notCanceled keeps rows whose status differs from canceled; a null
// status passes, like the upstream inequality filter.
func notCanceled(r table.Row) bool {
	return table.String(r[colOrderStatus]) != dataset.StatusCanceled
}
