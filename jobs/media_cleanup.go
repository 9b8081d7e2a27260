package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/opicamp/opicamp/internal/jobs"
	"github.com/opicamp/opicamp/internal/media"
)

// MediaCleanupJob removes recordings older than the configured retention.
type MediaCleanupJob struct {
	store     *media.Store
	retention time.Duration
	logger    *slog.Logger
	metrics   *jobmetrics.Metrics
}

// NewMediaCleanupJob constructs the job. retention is the fallback when the
// task payload does not carry one.
func NewMediaCleanupJob(store *media.Store, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *MediaCleanupJob {
	return &MediaCleanupJob{store: store, retention: retention, logger: logger, metrics: metrics}
}

// Handle processes TaskMediaCleanup tasks.
func (j *MediaCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("media_cleanup")
	retention := j.retention
	if len(t.Payload()) > 0 {
		var payload MediaCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return tracker.End(asynq.SkipRetry)
		}
		if payload.Retention > 0 {
			retention = payload.Retention
		}
	}

	cutoff := time.Now().Add(-retention)
	removed, err := j.store.RemoveOlderThan(ctx, cutoff)
	if err != nil {
		if j.logger != nil {
			j.logger.Error("media cleanup", slog.Any("error", err))
		}
		return tracker.End(err)
	}
	if j.logger != nil {
		j.logger.Info("media cleanup done", slog.Int("removed", removed), slog.Time("cutoff", cutoff))
	}
	return tracker.End(nil)
}
