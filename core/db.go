package core

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/shoothzj/table-facade/dialect"
	"github.com/shoothzj/table-facade/logger"
	"github.com/shoothzj/table-facade/model"
	"github.com/shoothzj/table-facade/pool"
)

// DefaultMaxInFlight bounds concurrently running asynchronous operations per DB.
const DefaultMaxInFlight = 64

// Options defines the configuration of a DB.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MaxInFlight     int64           // Concurrent async operations, DefaultMaxInFlight when zero
	Logger          logger.Logger   // logger.NewStdLogger() when nil
	Registry        *model.Registry // model.DefaultRegistry when nil
}

// DB is the main entry point.
// It owns a backend and runs the table operations against it.
type DB struct {
	backend     Backend
	builder     *Builder
	mapper      Mapper
	registry    *model.Registry
	logger      logger.Logger
	sem         *semaphore.Weighted
	mu          sync.RWMutex
	middlewares []Middleware
	closed      atomic.Bool
}

// Open opens a database/sql backend with the given driver and DSN.
// The driver must have a registered dialect.
func Open(driver, dsn string, opts *Options) (*DB, error) {
	d, ok := dialect.Get(driver)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownDialect, driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	p := pool.NewStdPool(sqlDB)
	if opts != nil {
		pool.Options{
			MaxOpenConns:    opts.MaxOpenConns,
			MaxIdleConns:    opts.MaxIdleConns,
			ConnMaxLifetime: opts.ConnMaxLifetime,
		}.Apply(p)
	}

	if err := p.PingContext(context.Background()); err != nil {
		p.Close()
		return nil, err
	}

	return New(NewSQLBackend(p, d), opts), nil
}

// New creates a DB over an existing backend.
func New(b Backend, opts *Options) *DB {
	if opts == nil {
		opts = &Options{}
	}
	db := &DB{
		backend:  b,
		builder:  NewBuilder(b.Dialect()),
		registry: opts.Registry,
		logger:   opts.Logger,
	}
	if db.registry == nil {
		db.registry = model.DefaultRegistry
	}
	if db.logger == nil {
		db.logger = logger.NewStdLogger()
	}
	n := opts.MaxInFlight
	if n <= 0 {
		n = DefaultMaxInFlight
	}
	db.sem = semaphore.NewWeighted(n)
	return db
}

// Close shuts down the middlewares and closes the backend.
func (db *DB) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	db.mu.RLock()
	mws := db.middlewares
	db.mu.RUnlock()
	for i := len(mws) - 1; i >= 0; i-- {
		if err := mws[i].Shutdown(); err != nil {
			db.logger.Warn("shutdown %s: %v", mws[i].Name(), err)
		}
	}
	return db.backend.Close()
}

// SetLogger sets a custom logger for the DB. Call it before issuing operations.
func (db *DB) SetLogger(l logger.Logger) {
	db.logger = l
}

// Logger returns the DB's logger.
func (db *DB) Logger() logger.Logger {
	return db.logger
}

// Dialect returns the backend's dialect.
func (db *DB) Dialect() dialect.Dialect {
	return db.backend.Dialect()
}

// Registry returns the metadata registry used by the DB.
func (db *DB) Registry() *model.Registry {
	return db.registry
}

// Use initializes and appends middlewares. They run in the order added.
func (db *DB) Use(mws ...Middleware) error {
	for _, mw := range mws {
		if err := mw.Init(db); err != nil {
			return fmt.Errorf("init %s: %w", mw.Name(), err)
		}
		db.mu.Lock()
		db.middlewares = append(db.middlewares, mw)
		db.mu.Unlock()
	}
	return nil
}

// Exec runs a raw statement, typically DDL or fixtures, and returns the affected count.
func (db *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := db.execute(ctx, db.builder.BuildRaw(query, args...))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

func (db *DB) execute(ctx context.Context, stmt *Statement) (*Result, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	db.mu.RLock()
	mws := db.middlewares
	db.mu.RUnlock()

	next := db.run
	for i := len(mws) - 1; i >= 0; i-- {
		mw, n := mws[i], next
		next = func(ctx context.Context, stmt *Statement) (*Result, error) {
			return mw.Process(ctx, stmt, n)
		}
	}
	return next(ctx, stmt)
}

// run is the end of the middleware chain.
func (db *DB) run(ctx context.Context, stmt *Statement) (*Result, error) {
	res := &Result{}
	start := time.Now()
	var err error
	if stmt.Op == OpSelect {
		res.Rows, err = db.backend.Query(ctx, stmt)
	} else {
		res.RowsAffected, err = db.backend.Exec(ctx, stmt)
	}
	db.logger.SQL(stmt.SQL, time.Since(start), stmt.Args()...)
	if err != nil {
		res.Error = err
		db.logger.Error("%s %s failed: %v", stmt.Op, stmt.Table, err)
		return res, err
	}
	return res, nil
}

func (db *DB) insert(ctx context.Context, m *model.Metadata, obj any) error {
	if h, ok := obj.(BeforeInserter); ok {
		if err := h.BeforeInsert(); err != nil {
			return err
		}
	}
	stmt, err := db.builder.BuildInsert(m, obj)
	if err != nil {
		return err
	}
	_, err = db.execute(ctx, stmt)
	return err
}

// findAll maps every row of m's table and hands it to yield until yield returns false.
// Rows are closed before it returns.
func (db *DB) findAll(ctx context.Context, m *model.Metadata, yield func(any) bool) error {
	stmt, err := db.builder.BuildSelectAll(m)
	if err != nil {
		return err
	}
	res, err := db.execute(ctx, stmt)
	if err != nil {
		return err
	}
	rows := res.Rows
	defer rows.Close()

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		obj, err := db.mapper.Map(rows, m)
		if err != nil {
			return err
		}
		if h, ok := obj.(AfterFinder); ok {
			if err := h.AfterFind(); err != nil {
				return err
			}
		}
		if !yield(obj) {
			return nil
		}
	}
	return rows.Err()
}

func (db *DB) deleteAll(ctx context.Context, m *model.Metadata) (int64, error) {
	stmt, err := db.builder.BuildDeleteAll(m)
	if err != nil {
		return 0, err
	}
	res, err := db.execute(ctx, stmt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

func (db *DB) acquire(ctx context.Context) error {
	return db.sem.Acquire(ctx, 1)
}

func (db *DB) release() {
	db.sem.Release(1)
}
