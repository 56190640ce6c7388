package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shoothzj/table-facade/logger"
	"github.com/shoothzj/table-facade/model"
)

const createTestEntity = "CREATE TABLE test_entity (id INTEGER PRIMARY KEY AUTOINCREMENT, blob_bytes_field BLOB)"

func openSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite3", ":memory:", &Options{
		MaxOpenConns: 1,
		Logger:       logger.Nop(),
		Registry:     model.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(context.Background(), createTestEntity); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return db
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open("oracle", "dsn", nil)
	if !errors.Is(err, ErrUnknownDialect) {
		t.Errorf("Expected ErrUnknownDialect, got %v", err)
	}
}

func TestSampleDataScenario(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	widgets := Of[widget](db)

	w := &widget{BlobBytesField: []byte("Sample Data")}
	got, err := widgets.Insert(ctx, w)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if got != w || w.ID != nil {
		t.Error("Insert should return the caller's instance unchanged")
	}

	all, err := widgets.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected 1 widget, got %d", len(all))
	}
	if string(all[0].BlobBytesField) != "Sample Data" {
		t.Errorf("Expected Sample Data, got %q", all[0].BlobBytesField)
	}
	if all[0].ID == nil || *all[0].ID != 1 {
		t.Errorf("Expected generated id 1, got %v", all[0].ID)
	}

	n, err := widgets.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 deleted, got %d", n)
	}

	all, err = widgets.FindAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("Expected no widgets after DeleteAll, got %d", len(all))
	}
}

func TestSampleDataScenarioAsync(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	widgets := AsyncOf[widget](db)

	w := &widget{BlobBytesField: []byte("Sample Data")}
	got, err := widgets.Insert(ctx, w).Await(ctx)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if got != w {
		t.Error("Insert future should yield the caller's instance")
	}

	all, err := widgets.FindAll(ctx).Collect()
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 1 || string(all[0].BlobBytesField) != "Sample Data" {
		t.Fatalf("Unexpected widgets: %v", all)
	}

	n, err := widgets.DeleteAll(ctx).Get()
	if err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 deleted, got %d", n)
	}

	all, err = widgets.FindAll(ctx).Collect()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("Expected empty stream, got %d", len(all))
	}
}

func TestAsyncStreamEarlyClose(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		if _, err := Insert(ctx, db, &widget{BlobBytesField: []byte(fmt.Sprintf("w%d", i))}); err != nil {
			t.Fatal(err)
		}
	}

	s := AsyncOf[widget](db).FindAll(ctx)
	taken := 0
	for w, err := range s.All() {
		if err != nil {
			t.Fatal(err)
		}
		if w.ID == nil {
			t.Fatal("Expected id")
		}
		taken++
		if taken == 3 {
			break
		}
	}
	if err := s.Err(); err != nil {
		t.Errorf("Closed stream should not report cancellation, got %v", err)
	}

	// The single connection must be back in the pool.
	done := make(chan error, 1)
	go func() {
		_, err := DeleteAll[widget](ctx, db)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("connection was not released after closing the stream")
	}
}

func TestAsyncCanceledBeforeStart(t *testing.T) {
	db := openSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AsyncOf[widget](db).Insert(ctx, &widget{}).Get()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	all, err := FindAll[widget](context.Background(), db)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("Canceled insert should not write, got %d rows", len(all))
	}
}

func TestMaxInFlight(t *testing.T) {
	b := newFakeBackend()
	db := New(b, &Options{MaxInFlight: 1, Logger: logger.Nop(), Registry: model.NewRegistry()})
	defer db.Close()

	ctx := context.Background()
	if err := db.acquire(ctx); err != nil {
		t.Fatal(err)
	}
	f := AsyncOf[user](db).DeleteAll(ctx)

	select {
	case <-f.Done():
		t.Fatal("operation should wait for a free slot")
	case <-time.After(50 * time.Millisecond):
	}

	db.release()
	if _, err := f.Get(); err != nil {
		t.Fatal(err)
	}
}

// payloadOnly binds the payload column only; the id stays backend-generated and unread.
type payloadOnly struct {
	ID      int64
	Payload []byte
}

func (payloadOnly) TableDefinition() model.Definition {
	return model.Define("test_entity",
		model.Field("blob_bytes_field", func(p *payloadOnly) []byte { return p.Payload }, func(p *payloadOnly, v []byte) { p.Payload = v }),
	)
}

func TestUnboundFieldsAreNotPersisted(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	if _, err := Insert(ctx, db, &payloadOnly{ID: 99, Payload: []byte("Sample Data")}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	all, err := FindAll[payloadOnly](ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || string(all[0].Payload) != "Sample Data" {
		t.Fatalf("Unexpected rows: %v", all)
	}
	if all[0].ID != 0 {
		t.Errorf("Unbound field should stay zero, got %d", all[0].ID)
	}

	// the row got a generated key, not the unbound field's value
	ids, err := FindAll[widget](ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0].ID == nil || *ids[0].ID != 1 {
		t.Errorf("Expected generated id 1, got %+v", ids)
	}
}

// rawPayload reads the blob column into a named byte slice.
type rawPayload struct {
	Payload json.RawMessage
}

func (rawPayload) TableDefinition() model.Definition {
	return model.Define("test_entity",
		model.Field("blob_bytes_field", func(p *rawPayload) json.RawMessage { return p.Payload }, func(p *rawPayload, v json.RawMessage) { p.Payload = v }),
	)
}

func TestNamedByteSliceColumn(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	want := json.RawMessage(`{"name":"Sample Data"}`)
	if _, err := Insert(ctx, db, &rawPayload{Payload: want}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	all, err := FindAll[rawPayload](ctx, db)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 1 || !bytes.Equal(all[0].Payload, want) {
		t.Errorf("Expected %s, got %v", want, all)
	}
}

func TestAsyncCancelWhileRunning(t *testing.T) {
	b := newBlockingBackend()
	db := New(b, &Options{Logger: logger.Nop(), Registry: model.NewRegistry()})
	defer db.Close()
	ctx := context.Background()

	wait := func(t *testing.T) {
		t.Helper()
		select {
		case <-b.started:
		case <-time.After(5 * time.Second):
			t.Fatal("backend call did not start")
		}
	}

	t.Run("Insert", func(t *testing.T) {
		f := AsyncOf[widget](db).Insert(ctx, &widget{BlobBytesField: []byte("x")})
		wait(t)
		f.Cancel()
		if _, err := f.Get(); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})

	t.Run("DeleteAll", func(t *testing.T) {
		f := AsyncOf[widget](db).DeleteAll(ctx)
		wait(t)
		f.Cancel()
		n, err := f.Get()
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if n != 0 {
			t.Errorf("Expected no rows removed, got %d", n)
		}
	})

	if got := len(b.statements()); got != 2 {
		t.Errorf("Expected 2 statements to reach the backend, got %d", got)
	}
}
