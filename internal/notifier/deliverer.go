package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/observability"
)

// FailureHandler is invoked once per job after its retry budget is
// exhausted. It takes no corrective action.
type FailureHandler func(job Job, err error)

// Deliverer consumes jobs from the queue and attempts delivery with a
// bounded retry policy. Every failure is contained here: nothing delivery
// does can reach the request that enqueued the job.
type Deliverer struct {
	queue     Queue
	mailer    Mailer
	templates Templates
	tries     int
	backoff   time.Duration
	logger    *zap.Logger
	metrics   *observability.Metrics
	onFailure FailureHandler
}

// DelivererOptions bundles construction parameters.
type DelivererOptions struct {
	Queue     Queue
	Mailer    Mailer
	Templates Templates
	Tries     int
	Backoff   time.Duration
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	OnFailure FailureHandler
}

// NewDeliverer constructs a deliverer.
func NewDeliverer(opts DelivererOptions) *Deliverer {
	tries := opts.Tries
	if tries <= 0 {
		tries = 3
	}
	return &Deliverer{
		queue:     opts.Queue,
		mailer:    opts.Mailer,
		templates: opts.Templates,
		tries:     tries,
		backoff:   opts.Backoff,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		onFailure: opts.OnFailure,
	}
}

// dequeueErrorBackoff is how long Run waits after a failed dequeue before
// trying again, so a broken queue connection does not spin the loop.
const dequeueErrorBackoff = time.Second

// Run consumes the queue until the context is cancelled.
func (d *Deliverer) Run(ctx context.Context) {
	for {
		job, err := d.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.Error("dequeue notification", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(dequeueErrorBackoff):
			}
			continue
		}
		d.Process(ctx, job)
	}
}

// Process attempts one delivery of a job. A rendering failure downgrades to
// the fallback message rather than dropping the job; a send failure either
// schedules a retry or, once the budget is spent, invokes the terminal
// failure handler.
func (d *Deliverer) Process(ctx context.Context, job Job) {
	msg, err := d.templates.Build(job)
	if err != nil {
		d.logger.Error("failed to render notification, using fallback",
			zap.String("kind", string(job.Kind)),
			zap.String("recipient_id", job.Recipient.ID),
			zap.String("ticket_id", job.Ticket.ID),
			zap.String("comment_id", job.Comment.ID),
			zap.Error(err))
		msg = Fallback(job.Kind)
	}

	if err := d.mailer.Send(ctx, job.Recipient.Email, msg); err != nil {
		job.Attempts++
		if job.Attempts < d.tries {
			d.metrics.RecordNotificationRetry(string(job.Kind))
			d.logger.Warn("notification send failed, scheduling retry",
				zap.String("kind", string(job.Kind)),
				zap.String("recipient_id", job.Recipient.ID),
				zap.String("ticket_id", job.Ticket.ID),
				zap.Int("attempt", job.Attempts),
				zap.Error(err))
			if qErr := d.queue.EnqueueAfter(ctx, job, d.backoff); qErr != nil {
				d.terminalFailure(job, qErr)
			}
			return
		}
		d.terminalFailure(job, err)
		return
	}

	d.metrics.RecordNotificationSent(string(job.Kind))
	d.logger.Debug("notification delivered",
		zap.String("kind", string(job.Kind)),
		zap.String("recipient_id", job.Recipient.ID),
		zap.String("ticket_id", job.Ticket.ID))
}

func (d *Deliverer) terminalFailure(job Job, err error) {
	d.metrics.RecordNotificationFailure(string(job.Kind))
	d.logger.Error("notification failed to send",
		zap.String("kind", string(job.Kind)),
		zap.String("recipient_id", job.Recipient.ID),
		zap.String("ticket_id", job.Ticket.ID),
		zap.String("comment_id", job.Comment.ID),
		zap.Int("attempts", job.Attempts),
		zap.Error(err))
	if d.onFailure != nil {
		d.onFailure(job, err)
	}
}
