package service

import (
	"context"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/repository"
)

// RecipientResolver computes the de-duplicated audience for notification
// events. De-duplication is by user ID; a user who commented five times is
// still one recipient.
type RecipientResolver struct {
	users    repository.UserRepository
	comments repository.CommentRepository
}

// NewRecipientResolver constructs the resolver.
func NewRecipientResolver(users repository.UserRepository, comments repository.CommentRepository) *RecipientResolver {
	return &RecipientResolver{users: users, comments: comments}
}

// ForTicketCreated returns every admin-classified user plus the ticket
// owner. The owner always gets a copy of their own creation, even when the
// owner is also admin-classified (once, not twice).
func (r *RecipientResolver) ForTicketCreated(ctx context.Context, ticket *domain.Ticket) ([]domain.User, error) {
	admins, err := r.users.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	owner, err := r.users.GetByID(ctx, ticket.OwnerID)
	if err != nil {
		return nil, err
	}

	set := newRecipientSet()
	for i := range admins {
		set.add(admins[i])
	}
	set.add(*owner)
	return set.users, nil
}

// ForStatusChanged returns the ticket owner plus every distinct user who
// has commented on the ticket. The acting user is not excluded here: an
// owner closing their own ticket still receives the confirmation.
func (r *RecipientResolver) ForStatusChanged(ctx context.Context, ticket *domain.Ticket) ([]domain.User, error) {
	owner, err := r.users.GetByID(ctx, ticket.OwnerID)
	if err != nil {
		return nil, err
	}
	commenters, err := r.comments.ListCommenters(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	set := newRecipientSet()
	set.add(*owner)
	for i := range commenters {
		set.add(commenters[i])
	}
	return set.users, nil
}

// ForNewComment returns the ticket owner plus every distinct prior
// commenter, excluding the comment's author.
func (r *RecipientResolver) ForNewComment(ctx context.Context, ticket *domain.Ticket, authorID string) ([]domain.User, error) {
	owner, err := r.users.GetByID(ctx, ticket.OwnerID)
	if err != nil {
		return nil, err
	}
	commenters, err := r.comments.ListCommenters(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	set := newRecipientSet()
	if owner.ID != authorID {
		set.add(*owner)
	}
	for i := range commenters {
		if commenters[i].ID == authorID {
			continue
		}
		set.add(commenters[i])
	}
	return set.users, nil
}

type recipientSet struct {
	seen  map[string]struct{}
	users []domain.User
}

func newRecipientSet() *recipientSet {
	return &recipientSet{seen: make(map[string]struct{})}
}

func (s *recipientSet) add(user domain.User) {
	if _, ok := s.seen[user.ID]; ok {
		return
	}
	s.seen[user.ID] = struct{}{}
	s.users = append(s.users, user)
}
