package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shoothzj/table-facade/core"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreakerMiddleware rejects statements after Threshold consecutive
// backend failures until ResetTimeout has passed. One statement is then let
// through; its outcome closes or reopens the circuit, and a canceled one leaves it half-open.
type CircuitBreakerMiddleware struct {
	Threshold    int
	ResetTimeout time.Duration

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probing     bool
	now         func() time.Time
}

func NewCircuitBreaker(threshold int, resetTimeout time.Duration) *CircuitBreakerMiddleware {
	return &CircuitBreakerMiddleware{
		Threshold:    threshold,
		ResetTimeout: resetTimeout,
		state:        StateClosed,
		now:          time.Now,
	}
}

func (m *CircuitBreakerMiddleware) Name() string {
	return "CircuitBreaker"
}

func (m *CircuitBreakerMiddleware) Init(db *core.DB) error {
	return nil
}

func (m *CircuitBreakerMiddleware) Shutdown() error {
	return nil
}

// State returns the current breaker state.
func (m *CircuitBreakerMiddleware) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *CircuitBreakerMiddleware) Process(ctx context.Context, stmt *core.Statement, next core.ExecFunc) (*core.Result, error) {
	if err := m.allow(); err != nil {
		return &core.Result{Error: err}, err
	}

	res, err := next(ctx, stmt)

	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case errors.Is(err, context.Canceled):
		m.recordCanceled()
	case err != nil:
		m.recordFailure()
	default:
		m.recordSuccess()
	}
	return res, err
}

func (m *CircuitBreakerMiddleware) allow() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateOpen:
		if m.now().Sub(m.lastFailure) <= m.ResetTimeout {
			return ErrCircuitOpen
		}
		m.state = StateHalfOpen
		m.probing = true
	case StateHalfOpen:
		if m.probing {
			return ErrCircuitOpen
		}
		m.probing = true
	}
	return nil
}

func (m *CircuitBreakerMiddleware) recordFailure() {
	m.failures++
	m.lastFailure = m.now()

	switch m.state {
	case StateClosed:
		if m.failures >= m.Threshold {
			m.state = StateOpen
		}
	case StateHalfOpen:
		m.state = StateOpen
		m.probing = false
	}
}

func (m *CircuitBreakerMiddleware) recordSuccess() {
	if m.state == StateHalfOpen {
		m.state = StateClosed
		m.probing = false
	}
	m.failures = 0
}

// recordCanceled frees the half-open slot without judging the backend.
func (m *CircuitBreakerMiddleware) recordCanceled() {
	if m.state == StateHalfOpen {
		m.probing = false
	}
}
