package core

import (
	"context"
	"reflect"

	"github.com/shoothzj/table-facade/dialect"
)

// Row is one backend record with typed column access.
type Row interface {
	// Get returns the value of column converted to typ.
	Get(column string, typ reflect.Type) (any, error)
}

// Rows is a forward-only cursor over a result. Get reads the current row.
type Rows interface {
	Row
	Next() bool
	Err() error
	Close() error
}

// Backend executes statements. It is implemented over database/sql by SQLBackend
// and by the document-store backends.
type Backend interface {
	Dialect() dialect.Dialect
	// Exec runs an insert, delete or raw statement and returns the affected count.
	Exec(ctx context.Context, stmt *Statement) (int64, error)
	// Query runs a select statement. The caller closes the returned Rows.
	Query(ctx context.Context, stmt *Statement) (Rows, error)
	Close() error
}
