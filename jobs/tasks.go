package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup rebuilds the cached dashboard chart series.
	TaskDashboardWarmup = "dashboard:charts:warmup"
	// WarmupCronSpec schedules the warmup at the top of every hour.
	WarmupCronSpec = "0 * * * *"
)

// DashboardWarmupPayload describes why a warmup was requested.
type DashboardWarmupPayload struct {
	Reason     string `json:"reason"`
	Invalidate bool   `json:"invalidate"`
}

// NewDashboardWarmupTask constructs an Asynq task for the warmup job.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	if payload.Reason == "" {
		payload.Reason = "manual"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data, asynq.Queue(QueueDefault), asynq.Unique(time.Minute)), nil
}
