package ports

import "context"

// Logger defines a standard interface for logging messages and errors.
// The engine only logs at Debug level (reporting signals is the host's
// concern); adapters and tooling use the full surface. Both the leveled std
// logger and the zap adapter implement it.
type Logger interface {
	// Debug logs a message at Debug level.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs a message at Info level.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs a message at Warning level.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs an error message at Error level.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
