package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/repository"
)

type activityServiceFixture struct {
	users      *fakeUserRepo
	tickets    *fakeTicketRepo
	comments   *fakeCommentRepo
	activities *fakeActivityRepo
	service    *ActivityService
}

func newActivityServiceFixture(t *testing.T) *activityServiceFixture {
	t.Helper()
	users := newFakeUserRepo()
	tickets := newFakeTicketRepo()
	comments := newFakeCommentRepo(users)
	activities := newFakeActivityRepo()
	return &activityServiceFixture{
		users:      users,
		tickets:    tickets,
		comments:   comments,
		activities: activities,
		service:    NewActivityService(activities, tickets, comments, zap.NewNop()),
	}
}

func TestRecordUpdatedSkipsEmptyChangeSet(t *testing.T) {
	f := newActivityServiceFixture(t)

	f.service.RecordUpdated(context.Background(), domain.SubjectTicket, "t1", nil, nil)
	f.service.RecordUpdated(context.Background(), domain.SubjectTicket, "t1", map[string]domain.FieldChange{}, nil)
	assert.Empty(t, f.activities.all())

	f.service.RecordUpdated(context.Background(), domain.SubjectTicket, "t1", map[string]domain.FieldChange{
		"status": {Old: "open", New: "closed"},
	}, nil)
	require.Len(t, f.activities.all(), 1)
	assert.Equal(t, "Updated Ticket", f.activities.all()[0].Description)
}

func TestRecordSetsCauserType(t *testing.T) {
	f := newActivityServiceFixture(t)
	causer := "user-1"

	f.service.RecordCreated(context.Background(), domain.SubjectTicket, "t1", &causer)
	f.service.RecordCreated(context.Background(), domain.SubjectTicket, "t2", nil)

	all := f.activities.all()
	require.Len(t, all, 2)
	require.NotNil(t, all[0].CauserType)
	assert.Equal(t, domain.SubjectUser, *all[0].CauserType)
	assert.Nil(t, all[1].CauserID)
	assert.Nil(t, all[1].CauserType)
}

func TestResolveTicketForCommentedEntry(t *testing.T) {
	f := newActivityServiceFixture(t)
	ticket := &domain.Ticket{OwnerID: "user-1", Title: "t", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityMedium}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	comment := &domain.Comment{TicketID: ticket.ID, AuthorID: "user-1", Content: "hello"}
	require.NoError(t, f.comments.Create(context.Background(), comment))

	f.service.RecordCommented(context.Background(), ticket.ID, comment.ID, "Ada", nil)
	entries := f.activities.byType(domain.ActivityCommented)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.SubjectTicket, entries[0].SubjectType)

	resolved, err := f.service.ResolveTicket(context.Background(), entries[0])
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, ticket.ID, resolved.ID)
}

func TestResolveTicketSurvivesDeletedSubject(t *testing.T) {
	f := newActivityServiceFixture(t)
	ticket := &domain.Ticket{OwnerID: "user-1", Title: "t", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityMedium}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))

	f.service.RecordDeleted(context.Background(), domain.SubjectTicket, ticket.ID, nil)
	require.NoError(t, f.tickets.Delete(context.Background(), ticket.ID))

	entries := f.activities.byType(domain.ActivityDeleted)
	require.Len(t, entries, 1)

	resolved, err := f.service.ResolveTicket(context.Background(), entries[0])
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestFormattedDetailsStatusChange(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.service.RecordStatusChanged(context.Background(), "t1", domain.TicketStatusOpen, domain.TicketStatusClosed, nil)

	entries := f.activities.byType(domain.ActivityStatusChanged)
	require.Len(t, entries, 1)

	details, err := f.service.FormattedDetails(context.Background(), entries[0])
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"old_status": "Open", "new_status": "Closed"}, details)
}

func TestFormattedDetailsCommentedResolvesContent(t *testing.T) {
	f := newActivityServiceFixture(t)
	ticket := &domain.Ticket{OwnerID: "user-1", Title: "t", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityMedium}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	comment := &domain.Comment{TicketID: ticket.ID, AuthorID: "user-1", Content: "the content"}
	require.NoError(t, f.comments.Create(context.Background(), comment))

	f.service.RecordCommented(context.Background(), ticket.ID, comment.ID, "Ada", nil)
	entries := f.activities.byType(domain.ActivityCommented)
	require.Len(t, entries, 1)

	details, err := f.service.FormattedDetails(context.Background(), entries[0])
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"content": "the content"}, details)
}

func TestFormattedDetailsCommentedLegacySubject(t *testing.T) {
	f := newActivityServiceFixture(t)
	comment := &domain.Comment{TicketID: "t1", AuthorID: "user-1", Content: "legacy"}
	require.NoError(t, f.comments.Create(context.Background(), comment))

	// entries recorded against the comment itself are still readable
	legacy := domain.Activity{
		SubjectType: domain.SubjectComment,
		SubjectID:   comment.ID,
		Type:        domain.ActivityCommented,
	}
	details, err := f.service.FormattedDetails(context.Background(), legacy)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"content": "legacy"}, details)
}

func TestListFiltersByType(t *testing.T) {
	f := newActivityServiceFixture(t)
	f.service.RecordCreated(context.Background(), domain.SubjectTicket, "t1", nil)
	f.service.RecordStatusChanged(context.Background(), "t1", domain.TicketStatusOpen, domain.TicketStatusClosed, nil)

	kind := domain.ActivityStatusChanged
	items, total, err := f.service.List(context.Background(), repository.ActivityFilter{Type: &kind, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, domain.ActivityStatusChanged, items[0].Type)
}
