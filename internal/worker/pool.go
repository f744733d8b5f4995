package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/domain/job"
	"homehub/assistant-api/internal/domain/turn"
	"homehub/assistant-api/internal/webhook"
)

// Pool manages multiple background workers.
type Pool struct {
	workers      []*Worker
	queue        job.Queue
	turns        turn.Service
	sessions     conversation.Service
	notifier     webhook.Notifier
	workerCount  int
	taskTimeout  time.Duration
	pollInterval time.Duration
	log          zerolog.Logger
	wg           sync.WaitGroup
	stopChan     chan struct{}
}

// Config contains worker pool configuration.
type Config struct {
	WorkerCount  int
	TaskTimeout  time.Duration
	PollInterval time.Duration
}

// NewPool creates a new worker pool.
func NewPool(
	queue job.Queue,
	turns turn.Service,
	sessions conversation.Service,
	notifier webhook.Notifier,
	cfg Config,
	log zerolog.Logger,
) *Pool {
	return &Pool{
		queue:        queue,
		turns:        turns,
		sessions:     sessions,
		notifier:     notifier,
		workerCount:  cfg.WorkerCount,
		taskTimeout:  cfg.TaskTimeout,
		pollInterval: cfg.PollInterval,
		log:          log.With().Str("component", "worker-pool").Logger(),
		stopChan:     make(chan struct{}),
	}
}

// Start initializes and starts all workers.
func (p *Pool) Start(ctx context.Context) error {
	p.log.Info().Int("worker_count", p.workerCount).Msg("starting worker pool")

	p.workers = make([]*Worker, p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		worker := NewWorker(
			i+1,
			p.queue,
			p.turns,
			p.sessions,
			p.notifier,
			p.taskTimeout,
			p.pollInterval,
			p.log,
		)
		p.workers[i] = worker

		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Start(ctx)
		}(worker)
	}

	p.log.Info().Msg("worker pool started")

	return nil
}

// Stop gracefully shuts down all workers.
func (p *Pool) Stop() {
	p.log.Info().Msg("stopping worker pool")

	for _, worker := range p.workers {
		worker.Stop()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info().Msg("all workers stopped gracefully")
	case <-time.After(30 * time.Second):
		p.log.Warn().Msg("worker pool shutdown timed out")
	}
}

// QueueDepth reports the number of jobs waiting to run.
func (p *Pool) QueueDepth(ctx context.Context) (int64, error) {
	return p.queue.Depth(ctx)
}
