package tasks

import (
	"context"
	"fmt"
	"time"
)

// newDBMaintenanceTask creates the task that compacts the search index and
// vacuums the database file. Cheap on an append-only archive, but the index
// merge keeps full-text queries fast as the archive grows.
func newDBMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "db_maintenance")

	return func(ctx context.Context) error {
		startTime := time.Now()

		if err := deps.Store.RunMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "Database maintenance failed",
				"error", err, "duration", time.Since(startTime))
			return fmt.Errorf("database maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Database maintenance completed",
			"duration", time.Since(startTime))
		return nil
	}
}
