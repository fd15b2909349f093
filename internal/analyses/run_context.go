package analyses

import (
	"context"
	"time"
)

// runTimeout bounds a background enhanced run on top of the configured delay.
const runTimeout = time.Minute

type requestIDKey struct{}

// WithRequestID tags ctx so analysis logs join up with the request log line.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// detachRun returns a context for a run that outlives the request that started it.
// Only the request ID carries over.
func detachRun(ctx context.Context, delay time.Duration) (context.Context, context.CancelFunc) {
	base := WithRequestID(context.Background(), requestIDFromContext(ctx))
	if delay < 0 {
		delay = 0
	}
	return context.WithTimeout(base, delay+runTimeout)
}
