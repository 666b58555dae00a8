// Package logging defines the structured logger the server components share.
// The HTTP request logger and the app lifecycle messages both write through
// the Logger interface, so the backend stays swappable; the default
// implementation wraps slog.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key–value pairs:
//
//	log.Info(ctx, "request", "method", m, "path", p, "status", code)
type Logger interface {
	// Info records normal operation, such as served requests and startup steps.
	Info(ctx context.Context, msg string, args ...any)

	// Warn records unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always carries the given key–value
	// pairs, used to tag each component ("module", "http_server").
	With(args ...any) Logger
}
