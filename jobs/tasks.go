package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-hrms/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuthRecordLogin stamps the last-login time of a user.
	TaskAuthRecordLogin = "auth:record_login"
)

// RecordLoginPayload identifies the login being recorded.
type RecordLoginPayload struct {
	UserID int64     `json:"user_id"`
	At     time.Time `json:"at"`
}

// NewRecordLoginTask constructs an Asynq task.
func NewRecordLoginTask(payload RecordLoginPayload) (*asynq.Task, error) {
	if payload.UserID <= 0 {
		return nil, errors.New("jobs: record login requires a user id")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuthRecordLogin, data, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// LoginStore persists last-login timestamps.
type LoginStore interface {
	RecordLogin(ctx context.Context, userID int64, at time.Time) error
}

// RecordLoginJob processes TaskAuthRecordLogin tasks.
type RecordLoginJob struct {
	store   LoginStore
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewRecordLoginJob constructs the job handler. metrics may be nil.
func NewRecordLoginJob(store LoginStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *RecordLoginJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordLoginJob{store: store, logger: logger, metrics: metrics}
}

// Handle implements asynq.HandlerFunc.
func (j *RecordLoginJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload RecordLoginPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%w: decode payload: %v", asynq.SkipRetry, err)
	}
	if payload.UserID <= 0 {
		return fmt.Errorf("%w: missing user id", asynq.SkipRetry)
	}
	at := payload.At
	if at.IsZero() {
		at = time.Now()
	}
	tracker := j.metrics.Track(TaskAuthRecordLogin)
	if err := tracker.End(j.store.RecordLogin(ctx, payload.UserID, at)); err != nil {
		return err
	}
	j.logger.Debug("recorded login", slog.Int64("user_id", payload.UserID))
	return nil
}
