package middleware

import (
	"context"
	"time"

	"github.com/shoothzj/table-facade/core"
	"github.com/shoothzj/table-facade/logger"
)

// SlowLogMiddleware logs statements that take longer than the specified threshold.
type SlowLogMiddleware struct {
	Threshold time.Duration
	logger    logger.Logger
}

// NewSlowLog creates a new SlowLogMiddleware.
// Statements taking longer than threshold are logged at warn level.
func NewSlowLog(threshold time.Duration) *SlowLogMiddleware {
	return &SlowLogMiddleware{Threshold: threshold}
}

// SetLogger sets the destination logger. Without one, the DB's logger is used.
func (m *SlowLogMiddleware) SetLogger(l logger.Logger) {
	m.logger = l
}

func (m *SlowLogMiddleware) Name() string {
	return "SlowLog"
}

func (m *SlowLogMiddleware) Init(db *core.DB) error {
	// keep a logger set through SetLogger
	if m.logger != nil {
		return nil
	}
	m.logger = db.Logger().WithFields(map[string]any{"component": "slowlog"})
	return nil
}

func (m *SlowLogMiddleware) Shutdown() error {
	return nil
}

func (m *SlowLogMiddleware) Process(ctx context.Context, stmt *core.Statement, next core.ExecFunc) (*core.Result, error) {
	start := time.Now()
	res, err := next(ctx, stmt)
	duration := time.Since(start)

	if duration > m.Threshold {
		var rows int64
		if res != nil {
			rows = res.RowsAffected
		}
		m.logger.Warn("[SLOW SQL] duration=%v | op=%s | table=%s | sql=%s | args=%v | rows=%d | err=%v",
			duration, stmt.Op, stmt.Table, stmt.SQL, stmt.Args(), rows, err)
	}

	return res, err
}
