package commands

import (
	"context"
	"strings"
	"time"

	"lectern/internal/logging"
)

// DefaultCommandTimeout is the handler timeout applied when none is set.
const DefaultCommandTimeout = 30 * time.Second

const commandModuleRoot = "lectern.commands"

// EnsureContext returns a non-nil context, falling back to
// context.Background when nil.
func EnsureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithCommandTimeout applies the provided timeout unless it is zero or
// negative.
func WithCommandTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureLogger returns a usable logger, defaulting to a no-op logger when nil.
func EnsureLogger(logger logging.Logger) logging.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

// CommandLogger returns a module-scoped logger for command handlers with the
// structured fields shared by every command log entry.
func CommandLogger(provider logging.Provider, module string) logging.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
