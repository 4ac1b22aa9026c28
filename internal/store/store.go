// Package store publishes derived tables into a Postgres warehouse for
// downstream dashboards. Each publish fully replaces the target table;
// the pipeline has no incremental semantics.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"commerce-etl/internal/table"
	"commerce-etl/internal/util"
)

// insertBatch bounds the number of rows per INSERT statement.
const insertBatch = 500

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new warehouse store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Publish replaces every derived table, in name order.
func (s *Store) Publish(ctx context.Context, tables map[string]*table.Table) error {
	names := make([]string, 0, len(tables))
	for n := range tables {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.ReplaceTable(ctx, name, tables[name]); err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}
		util.TablesPublishedTotal.WithLabelValues("postgres").Inc()
	}
	return nil
}

// ReplaceTable drops, recreates and loads one derived table inside a
// single transaction, so readers never observe a half-written table.
func (s *Store) ReplaceTable(ctx context.Context, name string, t *table.Table) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ident := pq.QuoteIdentifier(name)

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}

	cols := t.Columns()
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = pq.QuoteIdentifier(c) + " " + columnType(t, c)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", ident, strings.Join(quoted, ", "))

	for lo := 0; lo < t.Len(); lo += insertBatch {
		hi := lo + insertBatch
		if hi > t.Len() {
			hi = t.Len()
		}

		var (
			groups []string
			args   []any
		)
		n := 1
		for i := lo; i < hi; i++ {
			ph := make([]string, len(cols))
			for j, c := range cols {
				ph[j] = fmt.Sprintf("$%d", n)
				args = append(args, t.Value(i, c))
				n++
			}
			groups = append(groups, "("+strings.Join(ph, ", ")+")")
		}

		if _, err := tx.ExecContext(ctx, prefix+strings.Join(groups, ", "), args...); err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
	}

	return tx.Commit()
}

// columnType infers a Postgres type from the first non-null cell;
// all-null columns fall back to TEXT.
func columnType(t *table.Table, col string) string {
	for i := 0; i < t.Len(); i++ {
		switch t.Value(i, col).(type) {
		case nil:
			continue
		case time.Time:
			return "TIMESTAMP"
		case bool:
			return "BOOLEAN"
		case float32, float64:
			return "DOUBLE PRECISION"
		case int, int32, int64:
			return "BIGINT"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}
