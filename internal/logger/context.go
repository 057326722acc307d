package logger

import (
	"context"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// FromContextOr extracts a logger from the context, falling back to l.
func FromContextOr(ctx context.Context, l *zap.Logger) *zap.Logger {
	if cl, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return cl
	}
	return l
}

// StartRun tags the context logger with a fresh run id so that every line
// of one workflow run can be correlated.
func StartRun(ctx context.Context) (context.Context, string) {
	id := xid.New().String()
	return ContextWithLogger(ctx, FromContext(ctx).With(zap.String("run_id", id))), id
}
