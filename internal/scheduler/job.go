package scheduler

import (
	"context"
	"time"
)

// Job is a unit of scheduled work.
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression
	// Examples: "0 0 18 * * 1-5" (weekdays at 6 PM)
	//           "@daily", "@hourly"
	Schedule() string
}

// FuncJob adapts a plain function into a Job.
type FuncJob struct {
	name     string
	schedule string
	fn       func(ctx context.Context) error
}

// NewFuncJob wraps fn as a job.
func NewFuncJob(name, schedule string, fn func(ctx context.Context) error) *FuncJob {
	return &FuncJob{name: name, schedule: schedule, fn: fn}
}

func (j *FuncJob) Name() string                  { return j.name }
func (j *FuncJob) Schedule() string              { return j.schedule }
func (j *FuncJob) Run(ctx context.Context) error { return j.fn(ctx) }

// JobResult records one execution.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory stores recent executions of one job, capped at 100.
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, dropping the oldest past the cap.
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > 100 {
		h.Results = h.Results[len(h.Results)-100:]
	}
}

// Latest returns the most recent result, or nil when the job never ran.
func (h *JobHistory) Latest() *JobResult {
	if len(h.Results) == 0 {
		return nil
	}
	return &h.Results[len(h.Results)-1]
}

// SuccessRate returns the fraction of successful runs (0.0 - 1.0).
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}

	success := 0
	for _, result := range h.Results {
		if result.Success {
			success++
		}
	}
	return float64(success) / float64(len(h.Results))
}
