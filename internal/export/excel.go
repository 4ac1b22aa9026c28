package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"commerce-etl/internal/table"
	"commerce-etl/internal/util"
)

// WriteWorkbook writes every table into one xlsx workbook, one sheet
// per table, sheets in name order.
func WriteWorkbook(path string, tables map[string]*table.Table) error {
	names := make([]string, 0, len(tables))
	for n := range tables {
		names = append(names, n)
	}
	sort.Strings(names)

	wb := excelize.NewFile()
	defer wb.Close()

	for i, name := range names {
		// Sheet names cap at 31 characters in the xlsx format.
		sheet := name
		if len(sheet) > 31 {
			sheet = sheet[:31]
		}

		if i == 0 {
			if err := wb.SetSheetName(wb.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := wb.NewSheet(sheet); err != nil {
				return fmt.Errorf("add sheet %s: %w", sheet, err)
			}
		}

		if err := writeSheet(wb, sheet, tables[name]); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	util.Named("export").Info("workbook exported",
		zap.String("file", path),
		zap.Int("sheets", len(names)))
	return nil
}

func writeSheet(wb *excelize.File, sheet string, t *table.Table) error {
	cols := t.Columns()

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := 0; i < t.Len(); i++ {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = sheetCell(t.Value(i, c))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// sheetCell keeps numerics and bools native so spreadsheet formulas
// work; dates go in as formatted text.
func sheetCell(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return FormatCell(x)
	default:
		return v
	}
}
