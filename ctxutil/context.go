// Package ctxutil provides helpers for propagating request-scoped
// identifiers (trace, module, session) through context.Context.
package ctxutil

import (
	"context"

	"github.com/modguard/modguard/utils/nanoid"
)

type ctxKey string

const (
	traceIDKey   ctxKey = "trace_id"
	moduleIDKey  ctxKey = "module_id"
	sessionIDKey ctxKey = "session_id"
)

// WithTraceID returns a context carrying the given trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID extracts the trace ID from the context, empty if absent.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// EnsureTraceID returns a context that carries a trace ID, generating
// one when the context has none.
func EnsureTraceID(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, nanoid.Lower(12))
}

// WithModuleID returns a context carrying the calling module's ID.
func WithModuleID(ctx context.Context, moduleID string) context.Context {
	return context.WithValue(ctx, moduleIDKey, moduleID)
}

// GetModuleID extracts the module ID from the context, empty if absent.
func GetModuleID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(moduleIDKey).(string); ok {
		return v
	}
	return ""
}

// WithSessionID returns a context carrying the security session ID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetSessionID extracts the session ID from the context, empty if absent.
func GetSessionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}
