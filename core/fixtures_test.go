package core

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/shoothzj/table-facade/dialect"
	"github.com/shoothzj/table-facade/model"
)

type widget struct {
	ID             *int64
	BlobBytesField []byte
}

func (widget) TableDefinition() model.Definition {
	return model.Define("test_entity",
		model.Field("id", func(w *widget) *int64 { return w.ID }, func(w *widget, v *int64) { w.ID = v }),
		model.Field("blob_bytes_field", func(w *widget) []byte { return w.BlobBytesField }, func(w *widget, v []byte) { w.BlobBytesField = v }),
	)
}

type user struct {
	ID        int64
	Name      string
	Age       int
	Active    bool
	CreatedAt time.Time

	inserted bool
	found    bool
}

func (user) TableDefinition() model.Definition {
	return model.Define("users",
		model.Field("id", func(u *user) int64 { return u.ID }, func(u *user, v int64) { u.ID = v }),
		model.Field("name", func(u *user) string { return u.Name }, func(u *user, v string) { u.Name = v }),
		model.Field("age", func(u *user) int { return u.Age }, func(u *user, v int) { u.Age = v }),
		model.Field("active", func(u *user) bool { return u.Active }, func(u *user, v bool) { u.Active = v }),
		model.Field("created_at", func(u *user) time.Time { return u.CreatedAt }, func(u *user, v time.Time) { u.CreatedAt = v }),
	)
}

func (u *user) BeforeInsert() error {
	if u.Name == "" {
		return errors.New("name is required")
	}
	u.inserted = true
	return nil
}

func (u *user) AfterFind() error {
	u.found = true
	return nil
}

type badTable struct {
	Name string
}

func (badTable) TableDefinition() model.Definition {
	return model.Define("users; DROP TABLE users",
		model.Field("name", func(b *badTable) string { return b.Name }, func(b *badTable, v string) { b.Name = v }),
	)
}

type badColumn struct {
	Name string
}

func (badColumn) TableDefinition() model.Definition {
	return model.Define("bad_column",
		model.Field("na`me", func(b *badColumn) string { return b.Name }, func(b *badColumn, v string) { b.Name = v }),
	)
}

type untabled struct {
	Name string
}

// fakeBackend records statements and serves select results from memory.
type fakeBackend struct {
	mu       sync.Mutex
	stmts    []*Statement
	rows     []map[string]any
	affected int64
	err      error
	closed   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{}
}

func (b *fakeBackend) Dialect() dialect.Dialect {
	d, _ := dialect.Get("mysql")
	return d
}

func (b *fakeBackend) record(stmt *Statement) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stmts = append(b.stmts, stmt)
}

func (b *fakeBackend) statements() []*Statement {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Statement(nil), b.stmts...)
}

func (b *fakeBackend) Exec(ctx context.Context, stmt *Statement) (int64, error) {
	b.record(stmt)
	if b.err != nil {
		return 0, b.err
	}
	return b.affected, nil
}

func (b *fakeBackend) Query(ctx context.Context, stmt *Statement) (Rows, error) {
	b.record(stmt)
	if b.err != nil {
		return nil, b.err
	}
	return &fakeRows{rows: b.rows, pos: -1}, nil
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

type fakeRows struct {
	rows   []map[string]any
	pos    int
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.pos+1 >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Get(column string, typ reflect.Type) (any, error) {
	v, ok := r.rows[r.pos][column]
	if !ok {
		return nil, fmt.Errorf("column %q not in result", column)
	}
	return Coerce(v, typ)
}

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

// blockingBackend holds every Exec until its context ends.
type blockingBackend struct {
	*fakeBackend
	started chan struct{}
}

func newBlockingBackend() *blockingBackend {
	return &blockingBackend{fakeBackend: newFakeBackend(), started: make(chan struct{}, 1)}
}

func (b *blockingBackend) Exec(ctx context.Context, stmt *Statement) (int64, error) {
	b.record(stmt)
	b.started <- struct{}{}
	<-ctx.Done()
	return 0, fmt.Errorf("exec %s: %w", stmt.Op, ctx.Err())
}
