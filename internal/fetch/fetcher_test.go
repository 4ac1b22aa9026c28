package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadCSVNullsEmptyCells(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.csv")
	writeFile(t, path, "order_id,order_status,order_approved_at\no1,delivered,\no2,,2024-01-02 10:00:00\n")

	tbl, err := ReadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"order_id", "order_status", "order_approved_at"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "delivered", tbl.Value(0, "order_status"))
	assert.Nil(t, tbl.Value(0, "order_approved_at"))
	assert.Nil(t, tbl.Value(1, "order_status"))
}

func TestFetchLoadsFromCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "orders.csv"), "order_id\no1\no2\n")
	writeFile(t, filepath.Join(dir, "customers.csv"), "customer_id\nc1\n")

	// No hub URL: a download attempt would fail loudly.
	f := New(dir, "http://127.0.0.1:0/never")
	bundle, err := f.Fetch(context.Background())
	require.NoError(t, err)

	orders, err := bundle.Get("orders")
	require.NoError(t, err)
	assert.Equal(t, 2, orders.Len())

	customers, err := bundle.Get("customers")
	require.NoError(t, err)
	assert.Equal(t, 1, customers.Len())
}

func TestFetchDownloadsWhenCacheEmpty(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.Create("dataset/orders.csv")
	require.NoError(t, err)
	_, err = entry.Write([]byte("order_id\no1\n"))
	require.NoError(t, err)
	readme, err := zw.Create("dataset/README.md")
	require.NoError(t, err)
	_, err = readme.Write([]byte("not a table"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(dir, srv.URL)

	bundle, err := f.Fetch(context.Background())
	require.NoError(t, err)
	orders, err := bundle.Get("orders")
	require.NoError(t, err)
	assert.Equal(t, 1, orders.Len())
	assert.Equal(t, 1, hits)

	// Archive paths flatten into the cache; non-CSV entries are skipped.
	_, err = os.Stat(filepath.Join(dir, "orders.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "README.md"))
	assert.True(t, os.IsNotExist(err))

	// Second fetch is served from the cache.
	_, err = f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestFetchFailsOnHubError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(t.TempDir(), srv.URL)
	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
