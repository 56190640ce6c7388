package middleware

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shoothzj/table-facade/core"
)

const tracerName = "github.com/shoothzj/table-facade"

type requestIDKey struct{}

// WithRequestID returns a context carrying a request id that the tracing
// middleware attaches to every statement span.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored by WithRequestID.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// TracingMiddleware wraps every statement in an OpenTelemetry client span.
// Each span carries a generated statement id, the dialect, the operation,
// the table and the SQL text. Parameter values are never recorded.
type TracingMiddleware struct {
	provider trace.TracerProvider
	tracer   trace.Tracer
	system   string
}

// NewTracing creates a tracing middleware using the global tracer provider.
func NewTracing() *TracingMiddleware {
	return &TracingMiddleware{}
}

// WithTracerProvider sets the provider spans are created from.
func (m *TracingMiddleware) WithTracerProvider(tp trace.TracerProvider) *TracingMiddleware {
	m.provider = tp
	return m
}

func (m *TracingMiddleware) Name() string {
	return "Tracing"
}

func (m *TracingMiddleware) Init(db *core.DB) error {
	if m.provider == nil {
		m.provider = otel.GetTracerProvider()
	}
	m.tracer = m.provider.Tracer(tracerName)
	m.system = db.Dialect().Name()
	return nil
}

func (m *TracingMiddleware) Shutdown() error {
	return nil
}

func (m *TracingMiddleware) Process(ctx context.Context, stmt *core.Statement, next core.ExecFunc) (*core.Result, error) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", m.system),
		attribute.String("db.operation", stmt.Op.String()),
		attribute.String("db.statement", stmt.SQL),
		attribute.String("tablefacade.statement_id", uuid.NewString()),
	}
	if stmt.Table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", stmt.Table))
	}
	if id, ok := RequestID(ctx); ok {
		attrs = append(attrs, attribute.String("request_id", id))
	}

	ctx, span := m.tracer.Start(ctx, spanName(stmt),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	res, err := next(ctx, stmt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	if stmt.Op != core.OpSelect && res != nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", res.RowsAffected))
	}
	return res, nil
}

func spanName(stmt *core.Statement) string {
	op := strings.ToLower(stmt.Op.String())
	if stmt.Table == "" {
		return "tablefacade." + op
	}
	return "tablefacade." + op + " " + stmt.Table
}
