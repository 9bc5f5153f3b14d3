package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/auth"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
)

func TestCanViewTicket(t *testing.T) {
	ticket := &domain.Ticket{ID: "ticket-1", OwnerID: "user-1"}
	owner := &auth.Principal{User: &domain.User{ID: "user-1", Email: "ada@example.com"}}
	admin := &auth.Principal{User: &domain.User{ID: "user-9", Email: "root@admin.example.com"}}
	stranger := &auth.Principal{User: &domain.User{ID: "user-2", Email: "bob@example.com"}}

	assert.True(t, canViewTicket(owner, ticket))
	assert.True(t, canViewTicket(admin, ticket))
	assert.False(t, canViewTicket(stranger, ticket))
	assert.False(t, canViewTicket(nil, ticket))
	assert.False(t, canViewTicket(&auth.Principal{}, ticket))
	assert.False(t, canViewTicket(owner, nil))
}
