// Package tasks implements the gateway's scheduled maintenance tasks and
// their registry.
package tasks

import (
	"log/slog"

	"github.com/platepal/platepal/internal/database"
	"github.com/platepal/platepal/internal/ratelimit"
)

// TaskDeps contains the dependencies available to scheduled tasks.
// Limiter is nil when the gateway runs with a Redis limiter, which
// expires its own windows.
type TaskDeps struct {
	Logger  *slog.Logger
	Store   database.Store
	Limiter *ratelimit.MemoryLimiter
}
