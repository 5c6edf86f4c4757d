// Package logger is a zap sugared logger carried through context.Context.
package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "ledgerbook/internal/core/context"
)

// Logger wraps zap.SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// Config holds logger configuration.
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json or console
	Development bool
	OutputPaths []string
}

// New builds a logger. An unparsable level falls back to info.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if cfg.Format != "" {
		zc.Encoding = cfg.Format
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{z.Sugar()}, nil
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

var (
	fallbackOnce sync.Once
	fallback     *Logger
)

// fallbackLogger serves calls whose context carries no logger, such as
// library use of the engine without a configured logger.
func fallbackLogger() *Logger {
	fallbackOnce.Do(func() {
		zc := zap.NewProductionConfig()
		zc.OutputPaths = []string{"stderr"}
		z, err := zc.Build(zap.AddCallerSkip(1))
		if err != nil {
			fallback = Nop()
			return
		}
		fallback = &Logger{z.Sugar()}
	})
	return fallback
}

type ctxKey struct{}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// WithFields returns a context whose logger adds keysAndValues to every line.
func WithFields(ctx context.Context, keysAndValues ...any) context.Context {
	return WithLogger(ctx, &Logger{stored(ctx).SugaredLogger.With(keysAndValues...)})
}

func stored(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return fallbackLogger()
}

// from returns the context logger tagged with the request trace and caller.
func from(ctx context.Context) *zap.SugaredLogger {
	s := stored(ctx).SugaredLogger
	if t, ok := appctx.TraceFrom(ctx); ok {
		s = s.With("trace_id", t.TraceID, "request_id", t.RequestID)
	}
	if u := appctx.UserFrom(ctx); u != nil {
		s = s.With("user_id", u.UserID)
	}
	return s
}

func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	from(ctx).Debugw(msg, keysAndValues...)
}

func Info(ctx context.Context, msg string, keysAndValues ...any) {
	from(ctx).Infow(msg, keysAndValues...)
}

func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	from(ctx).Warnw(msg, keysAndValues...)
}

func Error(ctx context.Context, msg string, keysAndValues ...any) {
	from(ctx).Errorw(msg, keysAndValues...)
}
