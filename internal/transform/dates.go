package transform

import (
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"commerce-etl/internal/dataset"
	"commerce-etl/internal/table"
	"commerce-etl/internal/util"
)

// coerceDates returns date-normalized copies of the tables listed in
// dataset.DateColumns. Cells that fail to parse become null; columns a
// table does not carry are skipped. The input bundle is not touched.
func coerceDates(b *dataset.Bundle) (map[string]*table.Table, error) {
	logger := util.Named("transform")

	out := make(map[string]*table.Table, len(dataset.DateColumns))
	for name, cols := range dataset.DateColumns {
		src, err := b.Get(name)
		if err != nil {
			return nil, err
		}

		t := src.Clone()
		for _, col := range cols {
			if !t.HasColumn(col) {
				continue
			}
			failures := 0
			for i := 0; i < t.Len(); i++ {
				r := t.Row(i)
				v := r[col]
				if table.IsNull(v) {
					r[col] = nil
					continue
				}
				if _, ok := v.(time.Time); ok {
					continue
				}
				ts, err := cast.ToTimeE(v)
				if err != nil {
					r[col] = nil
					failures++
					util.DateParseFailures.WithLabelValues(name, col).Inc()
					continue
				}
				r[col] = ts
			}
			if failures > 0 {
				logger.Warn("unparseable dates nulled",
					zap.String("table", name),
					zap.String("column", col),
					zap.Int("cells", failures))
			}
		}
		out[name] = t
	}

	return out, nil
}
