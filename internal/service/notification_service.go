package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/config"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/events"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/notifier"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/repository"
)

// NotificationService reacts to domain events by resolving the audience
// and enqueueing one delivery job per recipient. It runs on the far side
// of the commit: events are published after the primary mutation has
// persisted, and nothing here can fail that mutation retroactively.
type NotificationService struct {
	dispatcher events.Dispatcher
	queue      notifier.Queue
	recipients *RecipientResolver
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NotificationDependencies bundles construction parameters.
type NotificationDependencies struct {
	Dispatcher  events.Dispatcher
	Queue       notifier.Queue
	Recipients  *RecipientResolver
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		queue:      deps.Queue,
		recipients: deps.Recipients,
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketCommented, n.handleTicketCommented)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	if !n.cfg.Enabled {
		return nil
	}
	ticket, err := n.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		return err
	}
	audience, err := n.recipients.ForTicketCreated(ctx, ticket)
	if err != nil {
		return err
	}
	for i := range audience {
		n.enqueue(ctx, notifier.Job{
			Kind:      notifier.KindTicketCreated,
			Recipient: recipient(audience[i]),
			Ticket:    ticketSnapshot(ticket),
		})
	}
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	if !n.cfg.Enabled {
		return nil
	}
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	ticket, err := n.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		return err
	}
	audience, err := n.recipients.ForStatusChanged(ctx, ticket)
	if err != nil {
		return err
	}
	for i := range audience {
		n.enqueue(ctx, notifier.Job{
			Kind:      notifier.KindTicketStatusChanged,
			Recipient: recipient(audience[i]),
			Ticket:    ticketSnapshot(ticket),
			OldStatus: payload.OldStatus,
		})
	}
	return nil
}

func (n *NotificationService) handleTicketCommented(ctx context.Context, event events.Event) error {
	if !n.cfg.Enabled {
		return nil
	}
	payload, ok := event.Payload.(events.TicketCommentedPayload)
	if !ok {
		return nil
	}
	ticket, err := n.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		return err
	}
	comment, err := n.comments.GetByID(ctx, payload.CommentID)
	if err != nil {
		return err
	}
	author, err := n.users.GetByID(ctx, payload.AuthorID)
	if err != nil {
		return err
	}
	audience, err := n.recipients.ForNewComment(ctx, ticket, payload.AuthorID)
	if err != nil {
		return err
	}
	for i := range audience {
		n.enqueue(ctx, notifier.Job{
			Kind:      notifier.KindNewTicketComment,
			Recipient: recipient(audience[i]),
			Ticket:    ticketSnapshot(ticket),
			Comment: notifier.CommentSnapshot{
				ID:         comment.ID,
				AuthorName: author.Name,
				Content:    comment.Content,
			},
		})
	}
	return nil
}

// enqueue hands a job to the queue. Enqueue failures are logged and
// swallowed: one unreachable recipient never blocks the rest of the
// audience or the request that triggered the event.
func (n *NotificationService) enqueue(ctx context.Context, job notifier.Job) {
	job.ID = uuid.NewString()
	job.EnqueuedAt = time.Now()
	if err := n.queue.Enqueue(ctx, job); err != nil {
		n.logger.Error("failed to enqueue notification",
			zap.String("kind", string(job.Kind)),
			zap.String("recipient_id", job.Recipient.ID),
			zap.String("ticket_id", job.Ticket.ID),
			zap.Error(err))
	}
}

func recipient(user domain.User) notifier.Recipient {
	return notifier.Recipient{ID: user.ID, Name: user.Name, Email: user.Email}
}

func ticketSnapshot(ticket *domain.Ticket) notifier.TicketSnapshot {
	return notifier.TicketSnapshot{
		ID:       ticket.ID,
		Title:    ticket.Title,
		Priority: ticket.Priority,
		Status:   ticket.Status,
	}
}
