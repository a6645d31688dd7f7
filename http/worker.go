package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Job is one unit of work. It reports its own failures; the pool has no
// result channel.
type Job func()

// WorkerPool runs jobs on a fixed number of long-lived workers that take
// them from one shared FIFO queue. A nil Job on the queue is the sentinel
// telling a single worker to exit.
type WorkerPool struct {
	jobs   chan Job
	size   int
	logger *slog.Logger

	mu       sync.RWMutex
	closed   bool
	workers  sync.WaitGroup
	shutdown sync.Once
}

// NewWorkerPool starts size workers. queueSize bounds the number of jobs
// waiting for a worker; Submit blocks while the queue is full.
func NewWorkerPool(size, queueSize int, logger *slog.Logger) (*WorkerPool, error) {
	if size < 1 {
		return nil, fmt.Errorf("http: worker pool size must be at least 1, got %d", size)
	}
	if queueSize < 0 {
		return nil, fmt.Errorf("http: negative worker pool queue size %d", queueSize)
	}
	if logger == nil {
		logger = slog.Default()
	}

	wp := &WorkerPool{
		// Room for the sentinels on top of the queued jobs.
		jobs:   make(chan Job, queueSize+size),
		size:   size,
		logger: logger,
	}

	wp.workers.Add(size)
	for id := range size {
		go wp.work(id)
	}

	return wp, nil
}

func (wp *WorkerPool) Size() int {
	return wp.size
}

// Submit enqueues job. It fails with ErrPoolClosed once Shutdown has begun.
func (wp *WorkerPool) Submit(job Job) error {
	if job == nil {
		return errors.New("http: nil job")
	}

	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}

	wp.jobs <- job
	poolJobs.Add(context.Background(), 1, metric.WithAttributes(attribute.String("state", "submitted")))
	return nil
}

// Shutdown stops accepting jobs, lets the workers drain everything already
// queued and blocks until all of them have exited. In-flight jobs are not
// interrupted.
func (wp *WorkerPool) Shutdown() {
	wp.shutdown.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		wp.mu.Unlock()

		for range wp.size {
			wp.jobs <- nil
		}
	})

	wp.workers.Wait()
}

func (wp *WorkerPool) work(id int) {
	defer wp.workers.Done()

	for {
		job := <-wp.jobs
		if job == nil {
			return
		}

		wp.run(id, job)
	}
}

func (wp *WorkerPool) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("worker recovered from panicking job", "worker", id, "panic", r)
			poolJobs.Add(context.Background(), 1, metric.WithAttributes(attribute.String("state", "panicked")))
		}
	}()

	job()
	poolJobs.Add(context.Background(), 1, metric.WithAttributes(attribute.String("state", "completed")))
}
