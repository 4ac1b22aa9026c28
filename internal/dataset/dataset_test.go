package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-etl/internal/table"
)

func TestBundleGetMissingTable(t *testing.T) {
	b := NewBundle()
	_, err := b.Get(TableReviews)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reviews")
}

func TestBundleValidate(t *testing.T) {
	b := NewBundle()
	for _, name := range RequiredTables {
		b.Put(name, table.New())
	}
	assert.NoError(t, b.Validate())

	incomplete := NewBundle()
	incomplete.Put(TableOrders, table.New())
	assert.Error(t, incomplete.Validate())
}

func TestNamesSorted(t *testing.T) {
	b := NewBundle()
	b.Put(TableSellers, table.New())
	b.Put(TableCustomers, table.New())
	assert.Equal(t, []string{TableCustomers, TableSellers}, b.Names())
}
