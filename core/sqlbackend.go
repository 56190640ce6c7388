package core

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/shoothzj/table-facade/dialect"
	"github.com/shoothzj/table-facade/pool"
)

// SQLBackend executes statements through a database/sql pool.
type SQLBackend struct {
	pool    pool.Pool
	dialect dialect.Dialect
}

// NewSQLBackend creates a backend over p that generates statements for d.
func NewSQLBackend(p pool.Pool, d dialect.Dialect) *SQLBackend {
	return &SQLBackend{pool: p, dialect: d}
}

func (b *SQLBackend) Dialect() dialect.Dialect {
	return b.dialect
}

func (b *SQLBackend) Exec(ctx context.Context, stmt *Statement) (int64, error) {
	res, err := b.pool.ExecContext(ctx, stmt.SQL, stmt.Args()...)
	if err != nil {
		return 0, fmt.Errorf("exec %s: %w", stmt.Op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("exec %s: rows affected: %w", stmt.Op, err)
	}
	return n, nil
}

func (b *SQLBackend) Query(ctx context.Context, stmt *Statement) (Rows, error) {
	rows, err := b.pool.QueryContext(ctx, stmt.SQL, stmt.Args()...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", stmt.Table, err)
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("query %s: columns: %w", stmt.Table, err)
	}
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &sqlRows{
		rows:    rows,
		columns: columns,
		index:   index,
		values:  make([]any, len(columns)),
	}, nil
}

func (b *SQLBackend) Close() error {
	return b.pool.Close()
}

type sqlRows struct {
	rows    *sql.Rows
	columns []string
	index   map[string]int
	values  []any
	err     error
}

func (r *sqlRows) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}
	dests := make([]any, len(r.values))
	for i := range r.values {
		r.values[i] = nil
		dests[i] = &r.values[i]
	}
	if err := r.rows.Scan(dests...); err != nil {
		r.err = err
		return false
	}
	return true
}

func (r *sqlRows) Get(column string, typ reflect.Type) (any, error) {
	i, ok := r.index[column]
	if !ok {
		// drivers may fold the case of unquoted result names
		for j, c := range r.columns {
			if strings.EqualFold(c, column) {
				i, ok = j, true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("column %q not in result", column)
	}
	return Coerce(r.values[i], typ)
}

func (r *sqlRows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *sqlRows) Close() error {
	return r.rows.Close()
}
