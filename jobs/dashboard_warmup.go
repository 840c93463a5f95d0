package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/fruitexport/portal/internal/jobs"
)

// ChartWarmer is the dashboard surface the warmup job needs.
type ChartWarmer interface {
	Warm(ctx context.Context) error
	Invalidate(ctx context.Context) error
}

// DashboardWarmupJob fills the chart cache ahead of page loads.
type DashboardWarmupJob struct {
	Charts  ChartWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(charts ChartWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Charts: charts, Logger: logger, Metrics: metrics}
}

// Handle processes TaskDashboardWarmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Charts == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("dashboard warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	tracker := j.Metrics.Track(TaskDashboardWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	if payload.Invalidate {
		if err := j.Charts.Invalidate(ctx); err != nil {
			logger.Error("invalidate chart cache", slog.Any("error", err))
			return fmt.Errorf("dashboard warmup: invalidate: %w", err)
		}
	}
	if err := j.Charts.Warm(ctx); err != nil {
		logger.Error("warm chart cache", slog.Any("error", err))
		return fmt.Errorf("dashboard warmup: %w", err)
	}
	logger.Info("chart cache warmed")
	return nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
