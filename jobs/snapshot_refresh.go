package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/opicamp/opicamp/internal/jobs"
	"github.com/opicamp/opicamp/internal/menu/snapshot"
)

// SnapshotRefreshJob regenerates the role menu snapshots so the static
// files track the permission table between deploys.
type SnapshotRefreshJob struct {
	generator *snapshot.Generator
	logger    *slog.Logger
	metrics   *jobmetrics.Metrics
}

// NewSnapshotRefreshJob constructs the job.
func NewSnapshotRefreshJob(generator *snapshot.Generator, logger *slog.Logger, metrics *jobmetrics.Metrics) *SnapshotRefreshJob {
	return &SnapshotRefreshJob{generator: generator, logger: logger, metrics: metrics}
}

// Handle processes TaskSnapshotRefresh tasks.
func (j *SnapshotRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("snapshot_refresh")
	result, err := j.generator.Generate(ctx)
	if err != nil {
		if j.logger != nil {
			j.logger.Error("snapshot refresh", slog.Any("error", err))
		}
		return tracker.End(err)
	}
	if j.logger != nil {
		j.logger.Info("snapshot refresh done", slog.Int("files", len(result.Files)))
	}
	return tracker.End(nil)
}
