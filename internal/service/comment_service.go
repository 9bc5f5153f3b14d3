package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/events"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/repository"
	apperrors "github.com/siyabongaprospersithole/support-ticket-system/pkg/util"
)

const commentPreviewLength = 120

// CommentService handles ticket comments.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	users      repository.UserRepository
	activity   *ActivityService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CommentDependencies bundles collaborators for comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	Activity    *ActivityService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		activity:   deps.Activity,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Add appends a comment to a ticket. Comments are immutable once written.
func (s *CommentService) Add(ctx context.Context, actorID, ticketID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	author, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: author.ID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	// The comment gets its own generic creation entry; the commented entry
	// belongs to the owning ticket.
	s.activity.RecordCreated(ctx, domain.SubjectComment, comment.ID, &actorID)
	s.activity.RecordCommented(ctx, ticket.ID, comment.ID, author.Name, &actorID)
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketCommented,
			TicketID:  ticket.ID,
			ActorID:   &actorID,
			Timestamp: time.Now(),
			Payload: events.TicketCommentedPayload{
				CommentID:   comment.ID,
				AuthorID:    author.ID,
				BodyPreview: previewOf(content),
			},
		})
	}
	return comment, nil
}

// ListForTicket returns a ticket and its comments, newest first. The
// ticket comes back alongside the comments so callers can apply access
// checks without a second lookup.
func (s *CommentService) ListForTicket(ctx context.Context, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, comments, nil
}

func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= commentPreviewLength {
		return content
	}
	return string(runes[:commentPreviewLength]) + "..."
}
