package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/repository"
)

// ActivityService owns the append-only ledger: derivation of entries from
// lifecycle events on the write path, feed queries and ticket resolution on
// the read path.
//
// Ledger writes are fire-and-forget relative to the primary mutation: a
// failed write is logged with full context and never aborts or rolls back
// the mutation that triggered it.
type ActivityService struct {
	activities repository.ActivityRepository
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	logger     *zap.Logger
}

// NewActivityService constructs the service.
func NewActivityService(activities repository.ActivityRepository, tickets repository.TicketRepository, comments repository.CommentRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		activities: activities,
		tickets:    tickets,
		comments:   comments,
		logger:     logger,
	}
}

// RecordCreated emits the generic creation entry for a subject.
func (s *ActivityService) RecordCreated(ctx context.Context, subjectType domain.SubjectType, subjectID string, causerID *string) {
	s.record(ctx, subjectType, subjectID, domain.ActivityCreated,
		"Created new "+entityName(subjectType), nil, causerID)
}

// RecordUpdated emits the generic update entry when the changed-field set
// is non-empty. Bookkeeping fields must already be excluded by the caller.
func (s *ActivityService) RecordUpdated(ctx context.Context, subjectType domain.SubjectType, subjectID string, changes map[string]domain.FieldChange, causerID *string) {
	if len(changes) == 0 {
		return
	}
	s.record(ctx, subjectType, subjectID, domain.ActivityUpdated,
		"Updated "+entityName(subjectType),
		domain.UpdateProperties{Changes: changes}, causerID)
}

// RecordDeleted emits the generic deletion entry for a subject.
func (s *ActivityService) RecordDeleted(ctx context.Context, subjectType domain.SubjectType, subjectID string, causerID *string) {
	s.record(ctx, subjectType, subjectID, domain.ActivityDeleted,
		"Deleted "+entityName(subjectType), nil, causerID)
}

// RecordStatusChanged emits the ticket-specific status transition entry.
func (s *ActivityService) RecordStatusChanged(ctx context.Context, ticketID string, old, new domain.TicketStatus, causerID *string) {
	s.record(ctx, domain.SubjectTicket, ticketID, domain.ActivityStatusChanged,
		"Status changed from "+domain.Capitalize(string(old))+" to "+domain.Capitalize(string(new)),
		domain.StatusChangeProperties{Old: old, New: new}, causerID)
}

// RecordPriorityChanged emits the ticket-specific priority transition entry.
func (s *ActivityService) RecordPriorityChanged(ctx context.Context, ticketID string, old, new domain.TicketPriority, causerID *string) {
	s.record(ctx, domain.SubjectTicket, ticketID, domain.ActivityPriorityChanged,
		"Priority changed from "+domain.Capitalize(string(old))+" to "+domain.Capitalize(string(new)),
		domain.PriorityChangeProperties{Old: old, New: new}, causerID)
}

// RecordCommented emits the commented entry on the owning ticket. The
// ticket, not the comment, is the canonical subject; the comment is linked
// through the comment_id property so the ticket's feed stays centered on
// the ticket.
func (s *ActivityService) RecordCommented(ctx context.Context, ticketID, commentID, authorName string, causerID *string) {
	s.record(ctx, domain.SubjectTicket, ticketID, domain.ActivityCommented,
		"New comment added by "+authorName,
		domain.CommentProperties{CommentID: commentID}, causerID)
}

func (s *ActivityService) record(ctx context.Context, subjectType domain.SubjectType, subjectID string, kind domain.ActivityType, description string, props domain.Properties, causerID *string) {
	activity := &domain.Activity{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Type:        kind,
		Description: description,
		Properties:  props,
		CauserID:    causerID,
	}
	if causerID != nil {
		causerType := domain.SubjectUser
		activity.CauserType = &causerType
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		s.logger.Error("ledger write failed",
			zap.String("subject_type", string(subjectType)),
			zap.String("subject_id", subjectID),
			zap.String("activity_type", string(kind)),
			zap.Error(err))
	}
}

// List returns a page of the activity feed, newest first, with the total
// match count.
func (s *ActivityService) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, int, error) {
	items, err := s.activities.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.activities.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ForSubject returns all entries describing one subject, newest first.
func (s *ActivityService) ForSubject(ctx context.Context, subjectType domain.SubjectType, subjectID string) ([]domain.Activity, error) {
	return s.activities.ListBySubject(ctx, subjectType, subjectID)
}

// ResolveTicket finds the ticket an entry belongs to: directly when the
// subject is a ticket, transitively when the subject is a comment, or via
// the comment_id property for commented entries. Returns nil (not an
// error) when the chain is broken, e.g. the comment has been removed.
func (s *ActivityService) ResolveTicket(ctx context.Context, activity domain.Activity) (*domain.Ticket, error) {
	switch activity.SubjectType {
	case domain.SubjectTicket:
		return s.fetchTicket(ctx, activity.SubjectID)
	case domain.SubjectComment:
		comment, err := s.fetchComment(ctx, activity.SubjectID)
		if err != nil || comment == nil {
			return nil, err
		}
		return s.fetchTicket(ctx, comment.TicketID)
	}
	if props, ok := activity.Properties.(domain.CommentProperties); ok && activity.Type == domain.ActivityCommented {
		comment, err := s.fetchComment(ctx, props.CommentID)
		if err != nil || comment == nil {
			return nil, err
		}
		return s.fetchTicket(ctx, comment.TicketID)
	}
	return nil, nil
}

// FormattedDetails renders the display payload for an entry. Pure for
// transition and update entries; commented entries resolve the comment
// content and yield nil when the comment no longer exists.
func (s *ActivityService) FormattedDetails(ctx context.Context, activity domain.Activity) (any, error) {
	switch props := activity.Properties.(type) {
	case domain.StatusChangeProperties:
		return props.Details(), nil
	case domain.PriorityChangeProperties:
		return props.Details(), nil
	case domain.UpdateProperties:
		return map[string]any{"changes": props.Details()}, nil
	case domain.CommentProperties:
		comment, err := s.fetchComment(ctx, props.CommentID)
		if err != nil || comment == nil {
			return nil, err
		}
		return map[string]string{"content": comment.Content}, nil
	}
	if activity.Type == domain.ActivityCommented && activity.SubjectType == domain.SubjectComment {
		// compatibility read path for entries recorded against the comment
		comment, err := s.fetchComment(ctx, activity.SubjectID)
		if err != nil || comment == nil {
			return nil, err
		}
		return map[string]string{"content": comment.Content}, nil
	}
	return nil, nil
}

func (s *ActivityService) fetchTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ActivityService) fetchComment(ctx context.Context, id string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func entityName(subjectType domain.SubjectType) string {
	return domain.Capitalize(string(subjectType))
}
