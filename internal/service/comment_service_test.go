package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
)

func TestAddCommentRecordsActivityOnTicket(t *testing.T) {
	f := newTicketServiceFixture(t)
	author := f.seedUser(t, "Bob", "bob@example.com")
	owner := f.seedUser(t, "Ada", "ada@example.com")

	commentService := NewCommentService(CommentDependencies{
		CommentRepo: f.comments,
		TicketRepo:  f.tickets,
		UserRepo:    f.users,
		Activity:    NewActivityService(f.activities, f.tickets, f.comments, zapNop()),
		Dispatcher:  f.dispatcher,
		Logger:      zapNop(),
	})

	ticket, err := f.service.Create(context.Background(), owner.ID, TicketCreateInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	comment, err := commentService.Add(context.Background(), author.ID, ticket.ID, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", comment.Content)

	entries := f.activities.byType(domain.ActivityCommented)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.SubjectTicket, entries[0].SubjectType)
	assert.Equal(t, ticket.ID, entries[0].SubjectID)
	assert.Equal(t, "New comment added by Bob", entries[0].Description)
	props, ok := entries[0].Properties.(domain.CommentProperties)
	require.True(t, ok)
	assert.Equal(t, comment.ID, props.CommentID)
}

func TestAddCommentRecordsCommentCreationEntry(t *testing.T) {
	f := newTicketServiceFixture(t)
	author := f.seedUser(t, "Bob", "bob@example.com")
	owner := f.seedUser(t, "Ada", "ada@example.com")

	commentService := NewCommentService(CommentDependencies{
		CommentRepo: f.comments,
		TicketRepo:  f.tickets,
		UserRepo:    f.users,
		Activity:    NewActivityService(f.activities, f.tickets, f.comments, zapNop()),
		Dispatcher:  f.dispatcher,
		Logger:      zapNop(),
	})

	ticket, err := f.service.Create(context.Background(), owner.ID, TicketCreateInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	comment, err := commentService.Add(context.Background(), author.ID, ticket.ID, "hello")
	require.NoError(t, err)

	var commentCreated []domain.Activity
	for _, entry := range f.activities.byType(domain.ActivityCreated) {
		if entry.SubjectType == domain.SubjectComment {
			commentCreated = append(commentCreated, entry)
		}
	}
	require.Len(t, commentCreated, 1)
	assert.Equal(t, comment.ID, commentCreated[0].SubjectID)
	assert.Equal(t, "Created new Comment", commentCreated[0].Description)
	require.NotNil(t, commentCreated[0].CauserID)
	assert.Equal(t, author.ID, *commentCreated[0].CauserID)
}

func TestAddCommentRejectsBlankContent(t *testing.T) {
	f := newTicketServiceFixture(t)
	owner := f.seedUser(t, "Ada", "ada@example.com")
	commentService := NewCommentService(CommentDependencies{
		CommentRepo: f.comments,
		TicketRepo:  f.tickets,
		UserRepo:    f.users,
		Activity:    NewActivityService(f.activities, f.tickets, f.comments, zapNop()),
		Dispatcher:  f.dispatcher,
		Logger:      zapNop(),
	})

	ticket, err := f.service.Create(context.Background(), owner.ID, TicketCreateInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = commentService.Add(context.Background(), owner.ID, ticket.ID, "   ")
	assert.Error(t, err)
}

func TestListForTicketReturnsTicketForAccessChecks(t *testing.T) {
	f := newTicketServiceFixture(t)
	owner := f.seedUser(t, "Ada", "ada@example.com")
	commentService := NewCommentService(CommentDependencies{
		CommentRepo: f.comments,
		TicketRepo:  f.tickets,
		UserRepo:    f.users,
		Activity:    NewActivityService(f.activities, f.tickets, f.comments, zapNop()),
		Dispatcher:  f.dispatcher,
		Logger:      zapNop(),
	})

	ticket, err := f.service.Create(context.Background(), owner.ID, TicketCreateInput{Title: "t", Description: "d"})
	require.NoError(t, err)
	_, err = commentService.Add(context.Background(), owner.ID, ticket.ID, "hello")
	require.NoError(t, err)

	got, comments, err := commentService.ListForTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ticket.OwnerID, got.OwnerID)
	require.Len(t, comments, 1)

	_, _, err = commentService.ListForTicket(context.Background(), "missing")
	assert.Error(t, err)
}

func TestPreviewOfTruncatesLongContent(t *testing.T) {
	short := "short comment"
	assert.Equal(t, short, previewOf(short))

	long := strings.Repeat("x", commentPreviewLength+10)
	preview := previewOf(long)
	assert.Len(t, preview, commentPreviewLength+3)
	assert.True(t, strings.HasSuffix(preview, "..."))
}
