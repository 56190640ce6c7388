package core

import (
	"context"
)

// Component is the base interface for all components/middleware.
type Component interface {
	Name() string
	Init(db *DB) error
	Shutdown() error
}

// Result represents the result of a statement execution.
type Result struct {
	RowsAffected int64
	Rows         Rows // Set for select statements
	Error        error
}

// ExecFunc is the function type for the next step in the middleware chain.
type ExecFunc func(ctx context.Context, stmt *Statement) (*Result, error)

// Middleware is the interface for statement interceptors.
type Middleware interface {
	Component
	Process(ctx context.Context, stmt *Statement, next ExecFunc) (*Result, error)
}
