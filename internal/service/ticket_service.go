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

// TicketService coordinates ticket workflows. Every mutation follows the
// same explicit sequence: persist, then ledger, then publish. The persist
// step is the transaction boundary; events (and therefore notifications)
// are only ever published for mutations that have durably committed.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	activity   *ActivityService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	Activity    *ActivityService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	OwnerID     *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// BulkUpdateInput describes a bulk status/priority change.
type BulkUpdateInput struct {
	IDs      []string
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		activity:   deps.Activity,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create opens a ticket for the acting user.
func (s *TicketService) Create(ctx context.Context, actorID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		OwnerID:     actorID,
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.activity.RecordCreated(ctx, domain.SubjectTicket, ticket.ID, &actorID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  &actorID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// Get returns a ticket with its comments, newest comment first.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, comments, nil
}

// List returns a page of tickets matching the filter with the total count.
func (s *TicketService) List(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, int, error) {
	repoFilter := repository.TicketFilter{
		OwnerID:     filter.OwnerID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tickets.CountWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// UpdateStatus changes ticket status. Setting the status it already holds
// is a no-op: no ledger entry, no notification.
func (s *TicketService) UpdateStatus(ctx context.Context, actorID, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == newStatus {
		return ticket, nil
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.recordStatusActivities(ctx, ticket.ID, oldStatus, newStatus, actorID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  &actorID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// UpdatePriority changes ticket priority. No-op when unchanged. Priority
// changes are recorded in the ledger but carry no email template.
func (s *TicketService) UpdatePriority(ctx context.Context, actorID, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !domain.ValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Priority == newPriority {
		return ticket, nil
	}

	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.recordPriorityActivities(ctx, ticket.ID, oldPriority, newPriority, actorID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		ActorID:  &actorID,
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return ticket, nil
}

// BulkUpdate applies status and/or priority to a set of tickets. Each
// ticket is mutated independently; a failure on one does not abort the
// rest. Returns the number of tickets updated.
func (s *TicketService) BulkUpdate(ctx context.Context, actorID string, input BulkUpdateInput) (int, error) {
	if len(input.IDs) == 0 {
		return 0, apperrors.NewValidationError("ids required", nil)
	}
	if input.Status == nil && input.Priority == nil {
		return 0, apperrors.NewValidationError("status or priority required", nil)
	}
	if input.Status != nil && !domain.ValidStatus(*input.Status) {
		return 0, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
	}
	if input.Priority != nil && !domain.ValidPriority(*input.Priority) {
		return 0, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
	}

	updated := 0
	for _, id := range input.IDs {
		ticket, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			s.logger.Warn("bulk update: ticket not loaded", zap.String("ticket_id", id), zap.Error(err))
			continue
		}

		oldStatus := ticket.Status
		oldPriority := ticket.Priority
		if input.Status != nil {
			ticket.Status = *input.Status
		}
		if input.Priority != nil {
			ticket.Priority = *input.Priority
		}
		if ticket.Status == oldStatus && ticket.Priority == oldPriority {
			continue
		}
		if err := s.tickets.Update(ctx, ticket); err != nil {
			s.logger.Warn("bulk update: ticket not updated", zap.String("ticket_id", id), zap.Error(err))
			continue
		}
		updated++

		if ticket.Status != oldStatus {
			s.recordStatusActivities(ctx, ticket.ID, oldStatus, ticket.Status, actorID)
			s.publishEvent(ctx, events.Event{
				Type:     events.EventTicketStatusChanged,
				TicketID: ticket.ID,
				ActorID:  &actorID,
				Payload: events.TicketStatusChangedPayload{
					OldStatus: oldStatus,
					NewStatus: ticket.Status,
				},
			})
		}
		if ticket.Priority != oldPriority {
			s.recordPriorityActivities(ctx, ticket.ID, oldPriority, ticket.Priority, actorID)
			s.publishEvent(ctx, events.Event{
				Type:     events.EventTicketPriorityChanged,
				TicketID: ticket.ID,
				ActorID:  &actorID,
				Payload: events.TicketPriorityChangedPayload{
					OldPriority: oldPriority,
					NewPriority: ticket.Priority,
				},
			})
		}
	}
	return updated, nil
}

// BulkDelete removes a set of tickets. The ledger keeps a deleted entry
// for each; existing activity records for the ticket are retained.
func (s *TicketService) BulkDelete(ctx context.Context, actorID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, apperrors.NewValidationError("ids required", nil)
	}
	deleted := 0
	for _, id := range ids {
		if err := s.tickets.Delete(ctx, id); err != nil {
			s.logger.Warn("bulk delete: ticket not deleted", zap.String("ticket_id", id), zap.Error(err))
			continue
		}
		deleted++
		s.activity.RecordDeleted(ctx, domain.SubjectTicket, id, &actorID)
	}
	return deleted, nil
}

func (s *TicketService) recordStatusActivities(ctx context.Context, ticketID string, old, new domain.TicketStatus, actorID string) {
	s.activity.RecordUpdated(ctx, domain.SubjectTicket, ticketID, map[string]domain.FieldChange{
		"status": {Old: string(old), New: string(new)},
	}, &actorID)
	s.activity.RecordStatusChanged(ctx, ticketID, old, new, &actorID)
}

func (s *TicketService) recordPriorityActivities(ctx context.Context, ticketID string, old, new domain.TicketPriority, actorID string) {
	s.activity.RecordUpdated(ctx, domain.SubjectTicket, ticketID, map[string]domain.FieldChange{
		"priority": {Old: string(old), New: string(new)},
	}, &actorID)
	s.activity.RecordPriorityChanged(ctx, ticketID, old, new, &actorID)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
