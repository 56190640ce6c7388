package core

import (
	"context"
	"fmt"
	"reflect"

	"github.com/shoothzj/table-facade/model"
)

// Table is the blocking CRUD facade for domain type T.
type Table[T any] struct {
	db *DB
}

// Of returns the table facade for T on db.
func Of[T any](db *DB) *Table[T] {
	return &Table[T]{db: db}
}

// Metadata resolves T through the DB's registry.
func (t *Table[T]) Metadata() (*model.Metadata, error) {
	return t.db.registry.Resolve(reflect.TypeFor[T]())
}

// Insert writes obj as a new row and returns obj unchanged.
// Backend-generated keys are not copied back onto obj; query again to read them.
func (t *Table[T]) Insert(ctx context.Context, obj *T) (*T, error) {
	if obj == nil {
		return nil, fmt.Errorf("insert %s: %w", reflect.TypeFor[T](), ErrNilValue)
	}
	m, err := t.Metadata()
	if err != nil {
		return nil, err
	}
	if err := t.db.insert(ctx, m, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// FindAll reads every row of the table in the backend's natural order.
func (t *Table[T]) FindAll(ctx context.Context) ([]*T, error) {
	m, err := t.Metadata()
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0)
	err = t.db.findAll(ctx, m, func(obj any) bool {
		out = append(out, obj.(*T))
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAll removes every row of the table and returns the number removed.
func (t *Table[T]) DeleteAll(ctx context.Context) (int64, error) {
	m, err := t.Metadata()
	if err != nil {
		return 0, err
	}
	return t.db.deleteAll(ctx, m)
}

// Async returns the asynchronous facade for the same table.
func (t *Table[T]) Async() *AsyncTable[T] {
	return &AsyncTable[T]{table: t}
}

// Insert inserts obj into T's table on db.
func Insert[T any](ctx context.Context, db *DB, obj *T) (*T, error) {
	return Of[T](db).Insert(ctx, obj)
}

// FindAll reads all rows of T's table on db.
func FindAll[T any](ctx context.Context, db *DB) ([]*T, error) {
	return Of[T](db).FindAll(ctx)
}

// DeleteAll deletes all rows of T's table on db.
func DeleteAll[T any](ctx context.Context, db *DB) (int64, error) {
	return Of[T](db).DeleteAll(ctx)
}
