package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/night-owl-018/seapay-certifier/internal/core"
)

// Job is one queued batch request.
type Job struct {
	RunLabel string
}

// BatchQueue runs batches on a single background worker so submitters return
// immediately and poll the processor's progress record. One worker keeps
// document processing strictly sequential.
type BatchQueue struct {
	proc    *core.Processor
	logger  *slog.Logger
	timeout time.Duration

	ch   chan Job
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	senders sync.WaitGroup
}

type Option func(*BatchQueue)

func WithQueueSize(n int) Option {
	return func(q *BatchQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithBatchTimeout(d time.Duration) Option {
	return func(q *BatchQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewBatchQueue(proc *core.Processor, logger *slog.Logger, opts ...Option) *BatchQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &BatchQueue{
		proc:    proc,
		logger:  logger,
		timeout: 30 * time.Minute,
		ch:      make(chan Job, 8),
		quit:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *BatchQueue) start() {
	q.once.Do(func() {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.logger.Info("batch worker started")

			for job := range q.ch {
				ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
				err := q.proc.ProcessBatch(ctx)
				cancel()

				if err != nil {
					q.logger.Error("batch failed", "label", job.RunLabel, "error", err)
				} else {
					q.logger.Info("batch complete", "label", job.RunLabel)
				}
			}

			q.logger.Info("batch worker stopped")
		}()
	})
}

func (q *BatchQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "label", job.RunLabel)
		return nil
	}
	select {
	case q.ch <- job:
		q.mu.Unlock()
		q.logger.Info("batch queued", "label", job.RunLabel)
		return nil
	default:
	}
	// full queue: block outside the mutex so Shutdown is never stalled
	// behind a waiting submitter
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	q.logger.Warn("queue full, applying backpressure", "label", job.RunLabel)
	select {
	case q.ch <- job:
		q.logger.Info("batch queued", "label", job.RunLabel)
		return nil
	case <-q.quit:
		q.logger.Warn("cannot enqueue: queue is shutting down", "label", job.RunLabel)
		return nil
	case <-ctx.Done():
		q.logger.Warn("enqueue abandoned", "label", job.RunLabel, "error", ctx.Err())
		return ctx.Err()
	}
}

func (q *BatchQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.quit)
	q.mu.Unlock()

	// blocked submitters bail on quit; the channel closes only once none
	// are mid-send
	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
