// Package jobs wires the background task queue.
package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMediaCleanup sweeps practice recordings past their retention.
	TaskMediaCleanup = "media:cleanup"
	// TaskSnapshotRefresh regenerates the role menu snapshot files.
	TaskSnapshotRefresh = "menu:snapshot-refresh"
)

// MediaCleanupPayload parametrizes a retention sweep.
type MediaCleanupPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewMediaCleanupTask constructs an Asynq task for a retention sweep.
func NewMediaCleanupTask(payload MediaCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMediaCleanup, data), nil
}

// NewSnapshotRefreshTask constructs an Asynq task for snapshot regeneration.
func NewSnapshotRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskSnapshotRefresh, nil)
}

// Client submits jobs to the queue.
type Client struct {
	client    *asynq.Client
	retention time.Duration
}

// NewClient constructs an Asynq client. retention is the default recording
// lifetime applied by enqueued cleanup sweeps.
func NewClient(redisOpts asynq.RedisClientOpt, retention time.Duration) *Client {
	return &Client{client: asynq.NewClient(redisOpts), retention: retention}
}

// EnqueueMediaCleanup enqueues a retention sweep and returns the task id.
func (c *Client) EnqueueMediaCleanup(ctx context.Context) (string, error) {
	task, err := NewMediaCleanupTask(MediaCleanupPayload{Retention: c.retention})
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
