// Package jobs carries the background task definitions and the Asynq worker
// that consumes accepted purchase submissions.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/retailops/formdesk/internal/form"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSubmitPurchase is the task type for an accepted purchase.
	TaskTypeSubmitPurchase = "purchase:submit"
	// TaskTypeRefDataRefresh is the task type for the scheduled
	// reference-data cache warmup.
	TaskTypeRefDataRefresh = "refdata:refresh"
)

// SubmitPurchasePayload wraps an accepted submission with queue metadata.
type SubmitPurchasePayload struct {
	Submission  form.PurchaseSubmission `json:"submission"`
	SubmittedAt time.Time               `json:"submittedAt"`
}

// NewSubmitPurchaseTask constructs an Asynq task.
func NewSubmitPurchaseTask(payload SubmitPurchasePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSubmitPurchase, data), nil
}

// SubmitPurchaseJob hands accepted submissions to the downstream register.
// Recording business records is out of scope here; the handler logs the
// accepted submission and acknowledges it.
type SubmitPurchaseJob struct {
	logger *slog.Logger
}

// NewSubmitPurchaseJob constructs the job handler.
func NewSubmitPurchaseJob(logger *slog.Logger) *SubmitPurchaseJob {
	return &SubmitPurchaseJob{logger: logger}
}

// Handle processes TaskTypeSubmitPurchase tasks. A payload that cannot be
// decoded is dropped rather than retried.
func (j *SubmitPurchaseJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SubmitPurchasePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger.Error("decode submit payload", slog.Any("error", err))
		return asynq.SkipRetry
	}

	j.logger.Info("purchase accepted",
		slog.String("date", payload.Submission.Date),
		slog.Any("suppliers", payload.Submission.SupplierIDs),
		slog.Int("items", len(payload.Submission.Items)),
		slog.Float64("total", payload.Submission.TotalAmount),
		slog.Time("submittedAt", payload.SubmittedAt))
	return nil
}

// NewRefDataRefreshTask constructs the warmup task. It carries no payload.
func NewRefDataRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskTypeRefDataRefresh, nil)
}

// Refresher rewrites a reference-data cache from its source.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefDataRefreshJob keeps the reference-data cache warm so form sessions
// open against fresh snapshots.
type RefDataRefreshJob struct {
	refresher Refresher
	logger    *slog.Logger
}

// NewRefDataRefreshJob constructs the warmup job handler.
func NewRefDataRefreshJob(refresher Refresher, logger *slog.Logger) *RefDataRefreshJob {
	return &RefDataRefreshJob{refresher: refresher, logger: logger}
}

// Handle processes TaskTypeRefDataRefresh tasks.
func (j *RefDataRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if err := j.refresher.Refresh(ctx); err != nil {
		j.logger.Error("refdata refresh", slog.Any("error", err))
		return err
	}
	j.logger.Info("refdata cache refreshed")
	return nil
}
