package jobq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrJobQueueFull = errors.New("job queue full")

// NamedJob is a unit of background work triggered over the control API,
// e.g. an on-demand report run.
type NamedJob struct {
	Name string
	Run  func(ctx context.Context)
}

// JobQueue serializes background jobs on a single runner goroutine so that
// on-demand runs never overlap scheduled ones.
type JobQueue struct {
	l    *slog.Logger
	jobs chan NamedJob
}

func NewJobQueue(bufferSize int) *JobQueue {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &JobQueue{
		l:    slog.With("component", "job-queue"),
		jobs: make(chan NamedJob, bufferSize),
	}
}

func (q *JobQueue) log() *slog.Logger {
	if q.l != nil {
		return q.l
	}
	return slog.With("component", "job-queue")
}

func (q *JobQueue) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-q.jobs:
				q.log().Info("run job", slog.String("job-name", job.Name))
				job.Run(ctx)
				q.log().Info("fin job", slog.String("job-name", job.Name))
			}
		}
	}()
}

// Submit enqueues a job without blocking; a full queue is reported to the
// caller so the API can answer 409.
func (q *JobQueue) Submit(name string, jobFunc func(ctx context.Context)) error {
	job := NamedJob{Name: name, Run: jobFunc}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrJobQueueFull, name)
	}
}
