package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Job is a scheduled task. Stop returns a context that is done once the run
// in progress, if any, has returned.
type Job interface {
	Start() error
	Stop() context.Context
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	jobs    []Job
	started []Job
}

func NewJobManager(jobs ...Job) (*JobManager, error) {
	for i, j := range jobs {
		if j == nil {
			return nil, fmt.Errorf("job %d is nil", i)
		}
	}
	return &JobManager{jobs: jobs}, nil
}

// StartAll starts the jobs in order. When one fails the ones already started
// are stopped again.
func (jm *JobManager) StartAll() error {
	for _, j := range jm.jobs {
		if err := j.Start(); err != nil {
			_ = jm.StopAll(context.Background())
			return fmt.Errorf("failed to start %T: %w", j, err)
		}
		jm.started = append(jm.started, j)
	}
	return nil
}

// StopAll stops every started job and waits for running sweeps until ctx is
// done.
func (jm *JobManager) StopAll(ctx context.Context) error {
	running := make([]context.Context, 0, len(jm.started))
	for _, j := range jm.started {
		running = append(running, j.Stop())
	}
	jm.started = nil

	for _, done := range running {
		select {
		case <-done.Done():
		case <-ctx.Done():
			return fmt.Errorf("jobs still running: %w", ctx.Err())
		}
	}
	return nil
}

// newCron builds a seconds-resolution scheduler that skips a tick while the
// previous run of the same job is still going.
func newCron() *cron.Cron {
	return cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
}
