// Package export writes derived tables to files: one CSV per table and
// an optional single Excel workbook for ad-hoc review.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"commerce-etl/internal/table"
	"commerce-etl/internal/util"
)

// CSVWriter exports tables as UTF-8 CSV files under one directory.
type CSVWriter struct {
	dir    string
	logger *zap.Logger
}

// NewCSVWriter creates a CSV writer rooted at dir.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir, logger: util.Named("export")}
}

// WriteAll writes every table as <name>.csv, in name order.
func (w *CSVWriter) WriteAll(tables map[string]*table.Table) error {
	names := make([]string, 0, len(tables))
	for n := range tables {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := w.WriteTable(name, tables[name]); err != nil {
			return err
		}
		util.TablesPublishedTotal.WithLabelValues("csv").Inc()
	}
	return nil
}

// WriteTable writes one table. The leading BOM keeps Excel from
// misreading UTF-8 city and category names.
func (w *CSVWriter) WriteTable(name string, t *table.Table) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(w.dir, name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	cols := t.Columns()
	if err := writer.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(cols))
	for i := 0; i < t.Len(); i++ {
		for j, c := range cols {
			record[j] = FormatCell(t.Value(i, c))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.logger.Info("table exported",
		zap.String("file", path),
		zap.Int("rows", t.Len()))
	return writer.Error()
}

// FormatCell renders one cell for file output. Nulls are empty,
// midnight timestamps collapse to a plain date.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
