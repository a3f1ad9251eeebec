// Package logging is the logger services, push workers and the client share.
package logging

import "context"

// Logger writes leveled records with attributes given as alternating
// name and value arguments:
//
//	log.Info(ctx, "push sent", "user_id", id, "platform", platform)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds attributes to every record the returned logger writes.
	With(args ...any) Logger
}
