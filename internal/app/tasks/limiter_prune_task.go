package tasks

import (
	"context"
	"time"
)

// newLimiterPruneTask creates the scheduled task that drops expired
// windows from the in-memory rate limiter so idle client entries do not
// accumulate.
func newLimiterPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "limiter_prune")

	return func(ctx context.Context) error {
		startTime := time.Now()

		pruned := deps.Limiter.Prune()

		log.InfoContext(ctx, "Limiter prune task completed",
			"pruned", pruned,
			"duration", time.Since(startTime))
		return nil
	}
}
