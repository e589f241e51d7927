package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/campusrooms/roomwatch/internal/model"
)

// ErrPoolStopped is returned by Submit after the pool has shut down.
var ErrPoolStopped = errors.New("worker pool is not accepting jobs")

// ExecutorFunc is a function that evaluates one monitoring request
type ExecutorFunc func(ctx context.Context, requestID, correlationID string) (*model.CheckResult, error)

// WorkerPool manages a pool of worker goroutines for concurrent job execution
type WorkerPool struct {
	workers    int
	jobs       chan Job
	executorFn ExecutorFunc
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.Mutex
	closed     bool
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workers int, jobQueueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		workers: workers,
		jobs:    make(chan Job, jobQueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetExecutor sets the executor function that will process jobs
func (wp *WorkerPool) SetExecutor(fn ExecutorFunc) {
	wp.executorFn = fn
}

// Start starts the worker pool
func (wp *WorkerPool) Start() {
	slog.Info("Starting worker pool", "workers", wp.workers)

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop stops the worker pool gracefully. Submit calls racing the shutdown
// get ErrPoolStopped instead of a send on the closed channel.
func (wp *WorkerPool) Stop() {
	slog.Info("Stopping worker pool")

	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.jobs)
	wp.mu.Unlock()

	// Wait for all workers to finish
	wp.wg.Wait()

	// Cancel context
	wp.cancel()

	slog.Info("Worker pool stopped")
}

// Submit submits a job to the worker pool
func (wp *WorkerPool) Submit(job Job) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.closed {
		return ErrPoolStopped
	}

	select {
	case wp.jobs <- job:
		slog.Debug("Job submitted to worker pool",
			"request_id", job.RequestID,
			"correlation_id", job.CorrelationID,
		)
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// worker is the worker goroutine that processes jobs
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	slog.Debug("Worker started", "worker_id", id)

	for job := range wp.jobs {
		slog.Debug("Worker processing job",
			"worker_id", id,
			"request_id", job.RequestID,
			"correlation_id", job.CorrelationID,
		)

		// Evaluate the monitoring request
		check, err := wp.executorFn(job.Context, job.RequestID, job.CorrelationID)

		if job.Reply == nil {
			continue
		}

		select {
		case job.Reply <- Result{RequestID: job.RequestID, Check: check, Error: err}:
			slog.Debug("Job result sent",
				"worker_id", id,
				"correlation_id", job.CorrelationID,
			)
		case <-wp.ctx.Done():
			return
		}
	}

	slog.Debug("Worker stopped", "worker_id", id)
}

// GetJobQueueLength returns the current number of jobs in the queue
func (wp *WorkerPool) GetJobQueueLength() int {
	return len(wp.jobs)
}
