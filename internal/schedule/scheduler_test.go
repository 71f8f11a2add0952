package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs  atomic.Int32
	err   error
	block chan struct{}
}

func (j *countingJob) Name() string {
	return "counting"
}

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.block != nil {
		<-j.block
	}
	return j.err
}

func TestCronSchedulerAddJob(t *testing.T) {
	s := NewCronScheduler()
	job := &countingJob{}
	require.NoError(t, s.AddJob(job, "*/10 * * * *"))
	require.Error(t, s.AddJob(job, "*/5 * * * *"))
	require.Equal(t, 1, s.Jobs())

	require.Error(t, NewCronScheduler().AddJob(job, "every ten minutes"))

	s.Start(context.Background())
	s.Stop()
}

func TestCronSchedulerWrapSkipsOverlappingRuns(t *testing.T) {
	s := NewCronScheduler()
	job := &countingJob{block: make(chan struct{}), err: errors.New("boom")}
	run := s.wrap(job, "* * * * *")

	done := make(chan struct{})
	go func() {
		defer close(done)
		run()
	}()
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, time.Millisecond)

	run()
	require.Equal(t, int32(1), job.runs.Load())

	close(job.block)
	<-done
	job.block = nil
	run()
	require.Equal(t, int32(2), job.runs.Load())
}
