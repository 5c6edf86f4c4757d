// Package context carries request-scoped values used for log enrichment.
// Business operations receive the caller identity explicitly, never from here.
package context

import "context"

// Trace correlates log lines of one HTTP request.
type Trace struct {
	TraceID   string
	RequestID string
}

// UserContext is the authenticated caller as seen by the transport layer.
type UserContext struct {
	UserID     string
	Email      string
	Privileged bool
}

type (
	traceKey struct{}
	userKey  struct{}
)

func WithTrace(ctx context.Context, t Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// TraceFrom reports the request trace, if the call came through HTTP.
func TraceFrom(ctx context.Context) (Trace, bool) {
	t, ok := ctx.Value(traceKey{}).(Trace)
	return t, ok
}

func WithUser(ctx context.Context, u *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the authenticated caller or nil.
func UserFrom(ctx context.Context) *UserContext {
	u, _ := ctx.Value(userKey{}).(*UserContext)
	return u
}
