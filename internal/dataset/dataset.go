// Package dataset names the raw e-commerce tables and their schema, and
// bundles them for the transformation pipeline.
package dataset

import (
	"fmt"
	"sort"

	"commerce-etl/internal/table"
)

// Raw table names, exact keys the pipeline requires.
const (
	TableOrders     = "orders"
	TableOrderItems = "order_items"
	TableCustomers  = "customers"
	TableProducts   = "products"
	TableSellers    = "sellers"
	TableReviews    = "reviews"
)

// RequiredTables lists every raw table a pipeline run needs.
var RequiredTables = []string{
	TableOrders,
	TableOrderItems,
	TableCustomers,
	TableProducts,
	TableSellers,
	TableReviews,
}

// Order statuses that carry semantics downstream.
const (
	StatusDelivered = "delivered"
	StatusCanceled  = "canceled"
)

// DateColumns maps each table to its date-like columns. Columns absent
// from an input table are skipped during coercion.
var DateColumns = map[string][]string{
	TableOrders: {
		"order_purchase_timestamp",
		"order_approved_at",
		"order_delivered_carrier_date",
		"order_delivered_customer_date",
		"order_estimated_delivery_date",
	},
	TableOrderItems: {"shipping_limit_date"},
	TableReviews:    {"review_creation_date", "review_answer_timestamp"},
}

// Bundle is a named collection of raw tables. The pipeline treats a
// bundle as read-only input.
type Bundle struct {
	tables map[string]*table.Table
}

// NewBundle creates an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{tables: make(map[string]*table.Table)}
}

// Put registers a table under a name, replacing any previous one.
func (b *Bundle) Put(name string, t *table.Table) {
	b.tables[name] = t
}

// Get returns a required table; a missing table is a fatal condition
// for the run and is surfaced as an error.
func (b *Bundle) Get(name string) (*table.Table, error) {
	t, ok := b.tables[name]
	if !ok {
		return nil, fmt.Errorf("required table %q is missing", name)
	}
	return t, nil
}

// Names returns the registered table names, sorted.
func (b *Bundle) Names() []string {
	names := make([]string, 0, len(b.tables))
	for n := range b.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate errors on the first required raw table the bundle lacks.
func (b *Bundle) Validate() error {
	for _, name := range RequiredTables {
		if _, ok := b.tables[name]; !ok {
			return fmt.Errorf("required table %q is missing", name)
		}
	}
	return nil
}
