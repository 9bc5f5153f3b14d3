package notifier

import (
	"context"
	"errors"
	"time"
)

// ErrQueueFull is returned when an enqueue would block.
var ErrQueueFull = errors.New("notification queue full")

// Queue is the delivery substrate between the request path and the workers.
// Enqueue never blocks the caller; Dequeue blocks until a job is available
// or the context is done.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	EnqueueAfter(ctx context.Context, job Job, delay time.Duration) error
	Dequeue(ctx context.Context) (Job, error)
}

// MemoryQueue is a channel-backed queue for single-process deployments and
// tests. Delayed jobs are re-queued by a timer.
type MemoryQueue struct {
	jobs chan Job
}

// NewMemoryQueue builds a queue with the given capacity.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{jobs: make(chan Job, size)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) EnqueueAfter(ctx context.Context, job Job, delay time.Duration) error {
	if delay <= 0 {
		return q.Enqueue(ctx, job)
	}
	time.AfterFunc(delay, func() {
		select {
		case q.jobs <- job:
		default:
			// queue full at fire time; the job is dropped, consistent
			// with the fire-and-forget delivery contract
		}
	})
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Job, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Len reports the number of queued jobs (excluding pending delayed jobs).
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}
