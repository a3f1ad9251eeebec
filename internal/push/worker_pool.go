package push

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/logging"
)

const jobTimeout = 15 * time.Second

// WorkerPool is an in-process Queue backed by a buffered channel.
type WorkerPool struct {
	jobs    chan Job
	handle  Handler
	workers int
	log     logging.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewWorkerPool(workers, size int, handle Handler, log logging.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		jobs:    make(chan Job, size),
		handle:  handle,
		workers: workers,
		log:     log.With("component", "push_queue"),
	}
}

// Start launches the workers. They run until Stop drains the queue.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
	p.log.Info(ctx, "push workers started", "workers", p.workers, "capacity", cap(p.jobs))
}

func (p *WorkerPool) run(ctx context.Context) {
	defer p.wg.Done()
	for job := range p.jobs {
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), jobTimeout)
		p.handle(jobCtx, job)
		cancel()
	}
}

// Enqueue never blocks; a full queue drops the job.
func (p *WorkerPool) Enqueue(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrQueueClosed
	}

	select {
	case p.jobs <- job:
		return nil
	default:
		p.log.Warn(ctx, "push queue full, dropping job", "notification_id", job.NotificationID)
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for queued jobs to finish.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}
