package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shoothzj/table-facade/logger"
	"github.com/shoothzj/table-facade/model"
)

func newFakeDB(t *testing.T) (*DB, *fakeBackend) {
	t.Helper()
	b := newFakeBackend()
	db := New(b, &Options{Logger: logger.Nop(), Registry: model.NewRegistry()})
	t.Cleanup(func() { db.Close() })
	return db, b
}

type recorder struct {
	name   string
	mu     *sync.Mutex
	events *[]string
	inited bool
	down   bool
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Init(db *DB) error {
	r.inited = true
	return nil
}

func (r *recorder) Shutdown() error {
	r.mu.Lock()
	*r.events = append(*r.events, "shutdown "+r.name)
	r.mu.Unlock()
	r.down = true
	return nil
}

func (r *recorder) Process(ctx context.Context, stmt *Statement, next ExecFunc) (*Result, error) {
	r.mu.Lock()
	*r.events = append(*r.events, r.name+" "+stmt.Op.String())
	r.mu.Unlock()
	return next(ctx, stmt)
}

type failingInit struct{ recorder }

func (f *failingInit) Init(db *DB) error { return errors.New("no") }

func TestMiddlewareChain(t *testing.T) {
	db, _ := newFakeDB(t)
	var mu sync.Mutex
	var events []string
	a := &recorder{name: "a", mu: &mu, events: &events}
	b := &recorder{name: "b", mu: &mu, events: &events}
	if err := db.Use(a, b); err != nil {
		t.Fatalf("Use failed: %v", err)
	}
	if !a.inited || !b.inited {
		t.Fatal("Use should init middlewares")
	}

	ctx := context.Background()
	if _, err := Of[user](db).DeleteAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	want := []string{"a DELETE", "b DELETE", "shutdown b", "shutdown a"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("Expected events %v, got %v", want, events)
	}
	if _, err := Of[user](db).DeleteAll(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}

	err := db.Use(&failingInit{recorder{name: "bad", mu: &mu, events: &events}})
	if err == nil || !strings.Contains(err.Error(), "init bad") {
		t.Errorf("Expected init error, got %v", err)
	}
}

func TestInsertRunsHookAndBindsValues(t *testing.T) {
	db, b := newFakeDB(t)
	ctx := context.Background()

	u := &user{ID: 3, Name: "Carol", Age: 41}
	got, err := Insert(ctx, db, u)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if got != u || !u.inserted {
		t.Error("Insert should return the same instance after BeforeInsert")
	}

	stmts := b.statements()
	if len(stmts) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(stmts))
	}
	want := "INSERT INTO `users` (`id`, `name`, `age`, `active`, `created_at`) VALUES (?, ?, ?, ?, ?)"
	if stmts[0].SQL != want {
		t.Errorf("Expected %q, got %q", want, stmts[0].SQL)
	}
	if args := stmts[0].Args(); args[1] != "Carol" || args[2] != 41 {
		t.Errorf("Unexpected args: %v", args)
	}

	if _, err := Insert(ctx, db, &user{}); err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("BeforeInsert error should abort insert, got %v", err)
	}
	if _, err := Insert[user](ctx, db, nil); !errors.Is(err, ErrNilValue) {
		t.Errorf("Expected ErrNilValue, got %v", err)
	}
	if len(b.statements()) != 1 {
		t.Error("Rejected inserts must not reach the backend")
	}
}

func TestRejectedBeforeBackend(t *testing.T) {
	db, b := newFakeDB(t)
	ctx := context.Background()

	if _, err := FindAll[untabled](ctx, db); !errors.Is(err, ErrMissingTable) {
		t.Errorf("Expected ErrMissingTable, got %v", err)
	}
	if _, err := FindAll[badTable](ctx, db); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("Expected ErrInvalidIdentifier, got %v", err)
	}
	if _, err := Insert(ctx, db, &badColumn{Name: "x"}); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("Expected ErrInvalidIdentifier, got %v", err)
	}
	if _, err := DeleteAll[badTable](ctx, db); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("Expected ErrInvalidIdentifier, got %v", err)
	}
	if n := len(b.statements()); n != 0 {
		t.Errorf("Expected no statements to reach the backend, got %d", n)
	}
}

func TestFindAllMapsRows(t *testing.T) {
	db, b := newFakeDB(t)
	b.rows = []map[string]any{
		{"id": int64(1), "name": "Alice", "age": int64(30), "active": int64(1), "created_at": nil},
		{"id": int64(2), "name": "Bob", "age": int64(25), "active": int64(0), "created_at": nil},
	}

	users, err := Of[user](db).FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}
	if users[0].Name != "Alice" || users[1].Name != "Bob" || !users[0].Active || users[1].Active {
		t.Errorf("Unexpected users: %+v %+v", users[0], users[1])
	}
	if !users[0].found || !users[1].found {
		t.Error("AfterFind should run for every row")
	}
}

func TestFindAllEmptyIsNotNil(t *testing.T) {
	db, _ := newFakeDB(t)
	users, err := Of[user](db).FindAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", users)
	}
}

func TestBackendErrorPropagates(t *testing.T) {
	db, b := newFakeDB(t)
	b.err = errors.New("connection reset")
	_, err := Of[user](db).DeleteAll(context.Background())
	if err == nil || err.Error() != "connection reset" {
		t.Errorf("Expected backend error, got %v", err)
	}
}

func TestDeleteAllCount(t *testing.T) {
	db, b := newFakeDB(t)
	b.affected = 5
	n, err := DeleteAll[user](context.Background(), db)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("Expected 5, got %d", n)
	}
}
