package core

import (
	"context"

	"github.com/shoothzj/table-facade/async"
)

// AsyncTable is the non-blocking CRUD facade for domain type T.
// Every operation runs in its own goroutine, bounded by Options.MaxInFlight,
// and its context is canceled through the returned handle.
type AsyncTable[T any] struct {
	table *Table[T]
}

// AsyncOf returns the asynchronous facade for T on db.
func AsyncOf[T any](db *DB) *AsyncTable[T] {
	return Of[T](db).Async()
}

// Insert writes obj as a new row. The future yields obj unchanged.
func (a *AsyncTable[T]) Insert(ctx context.Context, obj *T) *async.Future[*T] {
	db := a.table.db
	return async.Go(ctx, func(ctx context.Context) (*T, error) {
		if err := db.acquire(ctx); err != nil {
			return nil, err
		}
		defer db.release()
		return a.table.Insert(ctx, obj)
	})
}

// FindAll streams every row of the table. Closing the stream cancels the query
// and releases the backend cursor.
func (a *AsyncTable[T]) FindAll(ctx context.Context) *async.Stream[*T] {
	db := a.table.db
	return async.NewStream(ctx, func(ctx context.Context, emit func(*T) bool) error {
		if err := db.acquire(ctx); err != nil {
			return err
		}
		defer db.release()
		m, err := a.table.Metadata()
		if err != nil {
			return err
		}
		return db.findAll(ctx, m, func(obj any) bool {
			return emit(obj.(*T))
		})
	})
}

// DeleteAll removes every row of the table. The future yields the number removed.
func (a *AsyncTable[T]) DeleteAll(ctx context.Context) *async.Future[int64] {
	db := a.table.db
	return async.Go(ctx, func(ctx context.Context) (int64, error) {
		if err := db.acquire(ctx); err != nil {
			return 0, err
		}
		defer db.release()
		return a.table.DeleteAll(ctx)
	})
}
