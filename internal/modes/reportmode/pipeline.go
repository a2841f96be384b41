package reportmode

import (
	"context"
	"log/slog"
	"sync"

	"github.com/grafana/dskit/services"

	"github.com/hashmap-kz/slackrep/internal/wrk"
)

type pipelineCmd int

const (
	pipelineCmdStart pipelineCmd = iota + 1
	pipelineCmdStop
)

// PipelineService controls the scheduler workers (report, backup and
// retention supervisors). They share the daemon root context; Pause stops
// every worker, Resume starts them again.
type PipelineService struct {
	*services.BasicService
	log     *slog.Logger
	workers []*wrk.WorkerController
	ctrlCh  chan pipelineCmd
	mu      sync.Mutex
	running bool
}

func NewPipelineService(workers []*wrk.WorkerController) *PipelineService {
	s := &PipelineService{
		log:     slog.With("component", "scheduler-pipeline"),
		workers: workers,
		ctrlCh:  make(chan pipelineCmd),
	}

	s.BasicService = services.NewBasicService(nil, s.run, nil).
		WithName("scheduler-pipeline")

	return s
}

func (s *PipelineService) run(ctx context.Context) error {
	s.log.Info("scheduler pipeline control loop started")

	startAll := func() {
		for _, w := range s.workers {
			w.Start()
		}
		s.mu.Lock()
		s.running = true
		s.mu.Unlock()
	}

	stopAll := func() {
		for _, w := range s.workers {
			w.Stop()
		}
		for _, w := range s.workers {
			w.Wait()
		}
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}

	startAll()
	defer stopAll()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler pipeline context canceled, stopping workers")
			return nil

		case cmd := <-s.ctrlCh:
			switch cmd {
			case pipelineCmdStart:
				s.log.Info("starting scheduler workers")
				startAll()
			case pipelineCmdStop:
				s.log.Info("stopping scheduler workers")
				stopAll()
			}
		}
	}
}

// Public API used by HTTP / CLI:

func (s *PipelineService) Pause() {
	select {
	case s.ctrlCh <- pipelineCmdStop:
	default:
		s.log.Warn("Pause: ctrlCh full, dropping request")
	}
}

func (s *PipelineService) Resume() {
	select {
	case s.ctrlCh <- pipelineCmdStart:
	default:
		s.log.Warn("Resume: ctrlCh full, dropping request")
	}
}

func (s *PipelineService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
