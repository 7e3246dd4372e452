package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/quantfolio/pkg/logger"
)

func TestAddJobAndList(t *testing.T) {
	s := New(logger.NewNop())

	job := NewFuncJob("price-refresh", "0 30 18 * * 1-5", func(ctx context.Context) error { return nil })
	require.NoError(t, s.AddJob(job))

	assert.Contains(t, s.Jobs(), "price-refresh")

	history, err := s.History("price-refresh")
	require.NoError(t, err)
	assert.Nil(t, history.Latest())
}

func TestAddJobInvalidSchedule(t *testing.T) {
	s := New(logger.NewNop())
	err := s.AddJob(NewFuncJob("broken", "not a cron expr", func(ctx context.Context) error { return nil }))
	require.Error(t, err)
}

func TestRunJobUnknown(t *testing.T) {
	s := New(logger.NewNop())
	require.Error(t, s.RunJob("nope"))
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := New(logger.NewNop())

	done := make(chan struct{})
	job := NewFuncJob("once", "@daily", func(ctx context.Context) error {
		defer close(done)
		return nil
	})
	require.NoError(t, s.AddJob(job))
	require.NoError(t, s.RunJob("once"))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}

	// history write happens after the job body returns
	deadline := time.Now().Add(5 * time.Second)
	for {
		history, err := s.History("once")
		require.NoError(t, err)
		if latest := history.Latest(); latest != nil {
			assert.True(t, latest.Success)
			assert.Equal(t, "once", latest.JobName)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no job result recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestJobHistoryCapAndSuccessRate(t *testing.T) {
	var h JobHistory
	assert.Zero(t, h.SuccessRate())

	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, 100)
	assert.InDelta(t, 0.5, h.SuccessRate(), 0.01)
}

func TestFuncJobPassesError(t *testing.T) {
	want := errors.New("boom")
	job := NewFuncJob("failing", "@hourly", func(ctx context.Context) error { return want })
	assert.Equal(t, "failing", job.Name())
	assert.Equal(t, "@hourly", job.Schedule())
	assert.ErrorIs(t, job.Run(context.Background()), want)
}
