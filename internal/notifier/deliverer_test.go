package notifier

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/observability"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	to   []string
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to string, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	m.to = append(m.to, to)
	return nil
}

func deliveryJob() Job {
	return Job{
		ID:        "job-1",
		Kind:      KindTicketCreated,
		Recipient: Recipient{ID: "user-1", Name: "Ada", Email: "ada@example.com"},
		Ticket: TicketSnapshot{
			ID:       "41",
			Title:    "Printer on fire",
			Priority: domain.TicketPriorityHigh,
			Status:   domain.TicketStatusOpen,
		},
	}
}

func TestProcessDeliversAndCountsSuccess(t *testing.T) {
	queue := NewMemoryQueue(8)
	mailer := &recordingMailer{}
	metrics := observability.NewMetrics()
	deliverer := NewDeliverer(DelivererOptions{
		Queue:   queue,
		Mailer:  mailer,
		Logger:  zap.NewNop(),
		Metrics: metrics,
	})

	deliverer.Process(context.Background(), deliveryJob())

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@example.com", mailer.to[0])
	assert.Equal(t, "New Support Ticket Created: #41", mailer.sent[0].Subject)
}

func TestProcessFallsBackOnRenderFailure(t *testing.T) {
	queue := NewMemoryQueue(8)
	mailer := &recordingMailer{}
	deliverer := NewDeliverer(DelivererOptions{
		Queue:   queue,
		Mailer:  mailer,
		Logger:  zap.NewNop(),
		Metrics: observability.NewMetrics(),
	})

	job := deliveryJob()
	job.Ticket = TicketSnapshot{} // snapshot lost, primary rendering fails

	deliverer.Process(context.Background(), job)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "New Support Ticket Created", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Lines, "Please log in to view the details.")
}

func TestProcessRetriesThenFailsTerminally(t *testing.T) {
	queue := NewMemoryQueue(8)
	mailer := &recordingMailer{err: errors.New("smtp down")}
	metrics := observability.NewMetrics()

	var failed []Job
	deliverer := NewDeliverer(DelivererOptions{
		Queue:   queue,
		Mailer:  mailer,
		Tries:   3,
		Backoff: 0, // immediate requeue in tests
		Logger:  zap.NewNop(),
		Metrics: metrics,
		OnFailure: func(job Job, _ error) {
			failed = append(failed, job)
		},
	})

	ctx := context.Background()
	deliverer.Process(ctx, deliveryJob())

	// two retries pass through the queue before the budget is spent
	for i := 0; i < 2; i++ {
		dequeueCtx, cancel := context.WithTimeout(ctx, time.Second)
		job, err := queue.Dequeue(dequeueCtx)
		cancel()
		require.NoError(t, err)
		assert.Equal(t, i+1, job.Attempts)
		deliverer.Process(ctx, job)
	}

	require.Len(t, failed, 1)
	assert.Equal(t, 3, failed[0].Attempts)
	assert.Equal(t, int64(1), metrics.NotificationFailures(string(KindTicketCreated)))

	// nothing left queued
	dequeueCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err := queue.Dequeue(dequeueCtx)
	assert.Error(t, err)
}

type brokenQueue struct {
	calls atomic.Int64
}

func (q *brokenQueue) Enqueue(context.Context, Job) error { return nil }

func (q *brokenQueue) EnqueueAfter(context.Context, Job, time.Duration) error { return nil }

func (q *brokenQueue) Dequeue(context.Context) (Job, error) {
	q.calls.Add(1)
	return Job{}, errors.New("connection refused")
}

func TestRunBacksOffAfterDequeueError(t *testing.T) {
	queue := &brokenQueue{}
	deliverer := NewDeliverer(DelivererOptions{
		Queue:   queue,
		Mailer:  &recordingMailer{},
		Logger:  zap.NewNop(),
		Metrics: observability.NewMetrics(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		deliverer.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliverer did not stop after cancel")
	}

	// one failed dequeue puts the loop to sleep well past the deadline
	assert.LessOrEqual(t, queue.calls.Load(), int64(2))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	queue := NewMemoryQueue(8)
	deliverer := NewDeliverer(DelivererOptions{
		Queue:   queue,
		Mailer:  &recordingMailer{},
		Logger:  zap.NewNop(),
		Metrics: observability.NewMetrics(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		deliverer.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliverer did not stop after cancel")
	}
}
