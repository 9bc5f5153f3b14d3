package handlers

import (
	"github.com/siyabongaprospersithole/support-ticket-system/internal/auth"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
)

// canViewTicket reports whether the principal may read a ticket and the
// records hanging off it. Admins see everything, other users only their
// own tickets. The same rule gates the ticket detail, its comments and
// its activity trail.
func canViewTicket(principal *auth.Principal, ticket *domain.Ticket) bool {
	if principal == nil || principal.User == nil || ticket == nil {
		return false
	}
	return principal.IsAdmin() || ticket.OwnerID == principal.User.ID
}
