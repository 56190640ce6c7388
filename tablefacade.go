// Package tablefacade is a small table-level persistence facade.
//
// A domain type declares its table through model.Define and model.Field;
// the facade then inserts instances, reads every row back as fresh instances
// and deletes every row, either blocking or asynchronously:
//
//	db, err := tablefacade.Open("sqlite3", "app.db", nil)
//	w, err := tablefacade.Insert(ctx, db, &Widget{Payload: []byte("Sample Data")})
//	all, err := tablefacade.FindAll[Widget](ctx, db)
//	n, err := tablefacade.DeleteAll[Widget](ctx, db)
package tablefacade

import (
	"context"

	"github.com/shoothzj/table-facade/core"
	"github.com/shoothzj/table-facade/model"
)

// Re-export core types and functions
type (
	DB                = core.DB
	Options           = core.Options
	Backend           = core.Backend
	Statement         = core.Statement
	Middleware        = core.Middleware
	RowMappingError   = core.RowMappingError
	Table[T any]      = core.Table[T]
	AsyncTable[T any] = core.AsyncTable[T]
	Definition        = model.Definition
	Tabler            = model.Tabler
)

var (
	Open = core.Open
	New  = core.New
)

// Errors
var (
	ErrInvalidIdentifier     = core.ErrInvalidIdentifier
	ErrMissingTable          = core.ErrMissingTable
	ErrMissingAccessor       = core.ErrMissingAccessor
	ErrNoConstructor         = core.ErrNoConstructor
	ErrTypeMismatch          = core.ErrTypeMismatch
	ErrDuplicateColumn       = core.ErrDuplicateColumn
	ErrNotStruct             = core.ErrNotStruct
	ErrAlreadyRegistered     = core.ErrAlreadyRegistered
	ErrRowMapping            = core.ErrRowMapping
	ErrUnsupportedConversion = core.ErrUnsupportedConversion
	ErrUnknownDialect        = core.ErrUnknownDialect
	ErrNilValue              = core.ErrNilValue
	ErrClosed                = core.ErrClosed
	ErrUnsupportedStatement  = core.ErrUnsupportedStatement
)

// Of returns the blocking facade for T.
func Of[T any](db *DB) *Table[T] {
	return core.Of[T](db)
}

// AsyncOf returns the asynchronous facade for T.
func AsyncOf[T any](db *DB) *AsyncTable[T] {
	return core.AsyncOf[T](db)
}

// Insert writes obj as a new row of T's table.
func Insert[T any](ctx context.Context, db *DB, obj *T) (*T, error) {
	return core.Insert(ctx, db, obj)
}

// FindAll reads every row of T's table.
func FindAll[T any](ctx context.Context, db *DB) ([]*T, error) {
	return core.FindAll[T](ctx, db)
}

// DeleteAll deletes every row of T's table and returns the count.
func DeleteAll[T any](ctx context.Context, db *DB) (int64, error) {
	return core.DeleteAll[T](ctx, db)
}
