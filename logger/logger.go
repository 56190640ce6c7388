package logger

import (
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel defines the severity of the log
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// LogFormat defines the output format of the log
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Logger is the interface for logging statements and internal messages
type Logger interface {
	SetLevel(level LogLevel)
	SetFormat(format LogFormat)
	SetOutput(w io.Writer)
	WithFields(fields map[string]any) Logger
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SQL(sql string, duration time.Duration, args ...any)
}

// zapLogger is the default implementation of Logger
type zapLogger struct {
	mu     sync.RWMutex
	level  zap.AtomicLevel
	format LogFormat
	writer io.Writer
	fields map[string]any
	sugar  *zap.SugaredLogger
}

// NewStdLogger creates a logger writing text to standard output at info level
func NewStdLogger() Logger {
	l := &zapLogger{
		level:  zap.NewAtomicLevelAt(zapLevel(LogLevelInfo)),
		format: LogFormatText,
		writer: os.Stdout,
		fields: make(map[string]any),
	}
	l.rebuild()
	return l
}

// NewZapLogger adapts an existing zap logger. Entries must pass both z's own level
// and the one set through SetLevel. SetFormat and SetOutput replace z's core.
func NewZapLogger(z *zap.Logger) Logger {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	z = z.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return levelCore{Core: c, level: level}
	}))
	return &zapLogger{
		level:  level,
		format: LogFormatText,
		writer: os.Stdout,
		fields: make(map[string]any),
		sugar:  z.Named("tablefacade").Sugar(),
	}
}

// levelCore gates a foreign core with the adapter's atomic level.
type levelCore struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (c levelCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl) && c.Core.Enabled(lvl)
}

func (c levelCore) With(fields []zapcore.Field) zapcore.Core {
	return levelCore{Core: c.Core.With(fields), level: c.level}
}

func (c levelCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.level.Enabled(ent.Level) {
		return ce
	}
	return c.Core.Check(ent, ce)
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return NewZapLogger(zap.NewNop())
}

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	default:
		// above fatal: nothing is enabled
		return zapcore.FatalLevel + 1
	}
}

func (l *zapLogger) rebuild() {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if l.format == LogFormatJSON {
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(l.writer), l.level)
	l.sugar = zap.New(core).Named("tablefacade").Sugar().With(fieldArgs(l.fields)...)
}

func (l *zapLogger) SetLevel(level LogLevel) {
	l.level.SetLevel(zapLevel(level))
}

func (l *zapLogger) SetFormat(format LogFormat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
	l.rebuild()
}

func (l *zapLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
	l.rebuild()
}

func (l *zapLogger) WithFields(fields map[string]any) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &zapLogger{
		level:  l.level,
		format: l.format,
		writer: l.writer,
		fields: merged,
		sugar:  l.sugar.With(fieldArgs(fields)...),
	}
}

func (l *zapLogger) logger() *zap.SugaredLogger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sugar
}

func (l *zapLogger) Info(format string, args ...any) {
	l.logger().Infof(format, args...)
}

func (l *zapLogger) Warn(format string, args ...any) {
	l.logger().Warnf(format, args...)
}

func (l *zapLogger) Error(format string, args ...any) {
	l.logger().Errorf(format, args...)
}

func (l *zapLogger) SQL(sql string, duration time.Duration, args ...any) {
	l.logger().Infow("sql", "sql", sql, "duration", duration, "args", args)
}

// fieldArgs flattens fields into sorted key/value pairs for zap.
func fieldArgs(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return kv
}
