package reportmode

import (
	"log/slog"
	"time"

	"github.com/hashmap-kz/slackrep/internal/version"
	"github.com/hashmap-kz/slackrep/internal/wrk"
)

type Service interface {
	Status() *SlackrepStatus
}

type reportModeSvc struct {
	l         *slog.Logger
	mode      string
	startedAt time.Time
	workers   []*wrk.WorkerController
	pipeline  *PipelineService
}

var _ Service = &reportModeSvc{}

type ServiceOpts struct {
	Mode     string
	Workers  []*wrk.WorkerController
	Pipeline *PipelineService
}

func NewService(opts *ServiceOpts) Service {
	return &reportModeSvc{
		l:         slog.With("component", "daemon-service"),
		mode:      opts.Mode,
		startedAt: time.Now(),
		workers:   opts.Workers,
		pipeline:  opts.Pipeline,
	}
}

func (s *reportModeSvc) Status() *SlackrepStatus {
	workers := make(map[string]string, len(s.workers))
	for _, w := range s.workers {
		workers[w.Name()] = w.Status()
	}

	scheduler := ""
	if s.pipeline != nil && len(s.workers) > 0 {
		scheduler = "paused"
		if s.pipeline.IsRunning() {
			scheduler = "running"
		}
	}

	return &SlackrepStatus{
		Mode:      s.mode,
		Version:   version.Version,
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		Scheduler: scheduler,
		Workers:   workers,
	}
}
