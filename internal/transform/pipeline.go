// Package transform implements the batch transformation pipeline: date
// coercion, order-level metric derivation, and the derived fact and
// summary tables consumed by reporting.
package transform

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"commerce-etl/internal/dataset"
	"commerce-etl/internal/table"
	"commerce-etl/internal/util"
)

// Derived table names, the keys downstream sinks publish under.
const (
	NameOrders          = "orders"
	NameOrderSummary    = "order_summary"
	NameFactOrders      = "fact_orders"
	NameProductSummary  = "product_summary"
	NameSellerSummary   = "seller_summary"
	NameDailyMetrics    = "daily_metrics"
	NameCategorySummary = "category_summary"
	NameStateMetrics    = "state_metrics"
)

// DerivedNames lists every table a run produces, in publish order.
var DerivedNames = []string{
	NameOrders,
	NameOrderSummary,
	NameFactOrders,
	NameProductSummary,
	NameSellerSummary,
	NameDailyMetrics,
	NameCategorySummary,
	NameStateMetrics,
}

// Result holds everything one pipeline run derives. The input bundle is
// never mutated; Orders is the date-coerced, metric-augmented copy that
// replaces the raw orders table downstream.
type Result struct {
	Orders          *table.Table
	OrderSummary    *table.Table
	FactOrders      *table.Table
	ProductSummary  *table.Table
	SellerSummary   *table.Table
	DailyMetrics    *table.Table
	CategorySummary *table.Table
	StateMetrics    *table.Table
}

// Tables returns the derived tables keyed by publish name.
func (r *Result) Tables() map[string]*table.Table {
	return map[string]*table.Table{
		NameOrders:          r.Orders,
		NameOrderSummary:    r.OrderSummary,
		NameFactOrders:      r.FactOrders,
		NameProductSummary:  r.ProductSummary,
		NameSellerSummary:   r.SellerSummary,
		NameDailyMetrics:    r.DailyMetrics,
		NameCategorySummary: r.CategorySummary,
		NameStateMetrics:    r.StateMetrics,
	}
}

// Run executes the full pipeline over the raw tables. Steps run in
// dependency order: dates, order metrics and the order summary feed the
// fact table and the item-level intermediate; the five terminal
// summaries only read those, so they run concurrently. On any fatal
// condition (missing table, missing key column) no result is returned.
func Run(ctx context.Context, b *dataset.Bundle) (*Result, error) {
	ctx, span := util.StartSpan(ctx, "transform.Run")
	defer span.End()

	logger := util.Named("transform")
	start := time.Now()

	if err := b.Validate(); err != nil {
		util.RunsFailedTotal.WithLabelValues("validate").Inc()
		return nil, err
	}

	coerced, err := coerceDates(b)
	if err != nil {
		util.RunsFailedTotal.WithLabelValues("dates").Inc()
		return nil, err
	}
	items := coerced[dataset.TableOrderItems]
	reviews := coerced[dataset.TableReviews]

	customers, err := b.Get(dataset.TableCustomers)
	if err != nil {
		return nil, err
	}
	products, err := b.Get(dataset.TableProducts)
	if err != nil {
		return nil, err
	}
	sellers, err := b.Get(dataset.TableSellers)
	if err != nil {
		return nil, err
	}

	orders, err := deriveOrderMetrics(coerced[dataset.TableOrders])
	if err != nil {
		util.RunsFailedTotal.WithLabelValues("order_metrics").Inc()
		return nil, fmt.Errorf("derive order metrics: %w", err)
	}

	summary, err := orderSummary(items)
	if err != nil {
		util.RunsFailedTotal.WithLabelValues(NameOrderSummary).Inc()
		return nil, fmt.Errorf("build %s: %w", NameOrderSummary, err)
	}

	fact, err := factOrders(orders, summary, customers, reviews)
	if err != nil {
		util.RunsFailedTotal.WithLabelValues(NameFactOrders).Inc()
		return nil, fmt.Errorf("build %s: %w", NameFactOrders, err)
	}

	perf, err := productPerf(items, products, orders)
	if err != nil {
		util.RunsFailedTotal.WithLabelValues("product_perf").Inc()
		return nil, fmt.Errorf("build product perf: %w", err)
	}

	res := &Result{
		Orders:       orders,
		OrderSummary: summary,
		FactOrders:   fact,
	}

	// The terminal summaries read orders, fact and perf but never write
	// shared state; each lands in its own result field.
	var g errgroup.Group
	g.Go(func() error {
		t, err := productSummary(perf)
		if err != nil {
			return fmt.Errorf("build %s: %w", NameProductSummary, err)
		}
		res.ProductSummary = t
		return nil
	})
	g.Go(func() error {
		t, err := sellerSummary(items, orders, reviews, sellers)
		if err != nil {
			return fmt.Errorf("build %s: %w", NameSellerSummary, err)
		}
		res.SellerSummary = t
		return nil
	})
	g.Go(func() error {
		t, err := dailyMetrics(fact)
		if err != nil {
			return fmt.Errorf("build %s: %w", NameDailyMetrics, err)
		}
		res.DailyMetrics = t
		return nil
	})
	g.Go(func() error {
		t, err := categorySummary(perf)
		if err != nil {
			return fmt.Errorf("build %s: %w", NameCategorySummary, err)
		}
		res.CategorySummary = t
		return nil
	})
	g.Go(func() error {
		t, err := stateMetrics(fact)
		if err != nil {
			return fmt.Errorf("build %s: %w", NameStateMetrics, err)
		}
		res.StateMetrics = t
		return nil
	})
	if err := g.Wait(); err != nil {
		util.RunsFailedTotal.WithLabelValues("summaries").Inc()
		return nil, err
	}

	for name, t := range res.Tables() {
		util.RowsDerivedTotal.WithLabelValues(name).Add(float64(t.Len()))
	}
	util.StageDuration.WithLabelValues("transform").Observe(time.Since(start).Seconds())

	logger.Info("pipeline completed",
		zap.Int("orders", orders.Len()),
		zap.Int("fact_rows", fact.Len()),
		zap.Int("daily_rows", res.DailyMetrics.Len()),
		zap.Duration("elapsed", time.Since(start)))

	return res, nil
}
