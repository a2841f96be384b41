package wrk

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

type WorkerFunc func(ctx context.Context) error

// WorkerController runs one supervisor loop under a child context so the
// control API can stop and restart it without touching the daemon root.
type WorkerController struct {
	mu        sync.Mutex
	log       *slog.Logger
	name      string
	parentCtx context.Context

	runFn   WorkerFunc
	running bool

	cancel context.CancelFunc // cancels the current run
	wg     sync.WaitGroup
}

func NewWorkerController(parentCtx context.Context, name string, runFn WorkerFunc) *WorkerController {
	return &WorkerController{
		log:       slog.With(slog.String("component", "worker-controller"), slog.String("worker", name)),
		name:      name,
		parentCtx: parentCtx,
		runFn:     runFn,
	}
}

func (c *WorkerController) Name() string { return c.name }

func (c *WorkerController) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		c.log.Info("worker already running")
		return
	}
	if c.parentCtx.Err() != nil {
		c.log.Warn("cannot start worker: parent context canceled")
		return
	}

	childCtx, cancel := context.WithCancel(c.parentCtx)
	c.cancel = cancel
	c.running = true

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		c.log.Info("worker starting")
		err := c.runFn(childCtx)

		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()

		if err != nil && !errors.Is(err, context.Canceled) {
			c.log.Error("worker stopped with error", slog.Any("err", err))
		} else {
			c.log.Info("worker stopped")
		}
	}()
}

func (c *WorkerController) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	running := c.running
	c.mu.Unlock()

	if !running {
		c.log.Info("worker already stopped")
		return
	}
	if cancel != nil {
		c.log.Info("stopping worker")
		cancel()
	}
}

// Wait blocks until the current run completes.
func (c *WorkerController) Wait() {
	c.wg.Wait()
}

func (c *WorkerController) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return "running"
	}
	if c.parentCtx.Err() != nil {
		return "stopped(parent-canceled)"
	}
	return "stopped"
}
