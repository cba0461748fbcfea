// Package logging is the structured logger shared by the gophersocial
// server components. Records carry key/value attributes and the request
// context, and every component tags its records with a "module" attribute
// so that the output of the session service, the HTTP server and the mail
// notifier can be told apart.
package logging

import "context"

// ModuleKey is the attribute naming the component that emitted a record.
const ModuleKey = "module"

// Logger is a context-aware, structured logger. Arguments after msg are
// key/value pairs:
//
//	logger.Info(ctx, "user registered", "user_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	// Error is for failures an operator has to look at. Expected business
	// outcomes (wrong password, reused token) are not errors.
	Error(ctx context.Context, msg string, args ...any)
	// With returns a child logger that always includes args.
	With(args ...any) Logger
}

// ForModule returns a child of l tagged with the component name.
func ForModule(l Logger, name string) Logger {
	return l.With(ModuleKey, name)
}
