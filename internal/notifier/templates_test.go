package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
)

func sampleJob(kind Kind) Job {
	return Job{
		Kind:      kind,
		Recipient: Recipient{ID: "user-1", Name: "Ada", Email: "ada@example.com"},
		Ticket: TicketSnapshot{
			ID:       "41",
			Title:    "Printer on fire",
			Priority: domain.TicketPriorityHigh,
			Status:   domain.TicketStatusOpen,
		},
	}
}

func TestBuildTicketCreated(t *testing.T) {
	templates := Templates{BaseURL: "https://support.example.com/"}

	msg, err := templates.Build(sampleJob(KindTicketCreated))
	require.NoError(t, err)

	assert.Equal(t, "New Support Ticket Created: #41", msg.Subject)
	assert.Equal(t, "Hello Ada!", msg.Greeting)
	assert.Contains(t, msg.Lines, "Priority: High")
	assert.Contains(t, msg.Lines, "Thank you for using our support system!")
	assert.Equal(t, "https://support.example.com/tickets/41", msg.ActionURL)
}

func TestBuildStatusChanged(t *testing.T) {
	templates := Templates{BaseURL: "https://support.example.com"}
	job := sampleJob(KindTicketStatusChanged)
	job.OldStatus = domain.TicketStatusOpen
	job.Ticket.Status = domain.TicketStatusClosed

	msg, err := templates.Build(job)
	require.NoError(t, err)

	assert.Equal(t, "Ticket #41 Status Changed", msg.Subject)
	assert.Contains(t, msg.Lines, "Status changed from Open to Closed")
}

func TestBuildNewComment(t *testing.T) {
	templates := Templates{BaseURL: "https://support.example.com"}
	job := sampleJob(KindNewTicketComment)
	job.Comment = CommentSnapshot{ID: "c1", AuthorName: "Bob", Content: "On my way"}

	msg, err := templates.Build(job)
	require.NoError(t, err)

	assert.Equal(t, "New comment on Ticket #41", msg.Subject)
	assert.Contains(t, msg.Lines, "Comment by: Bob")
	assert.Contains(t, msg.Lines, "On my way")
}

func TestBuildFailsWithoutContext(t *testing.T) {
	templates := Templates{}

	_, err := templates.Build(Job{Kind: KindTicketCreated})
	assert.Error(t, err)

	job := sampleJob(KindTicketStatusChanged)
	_, err = templates.Build(job) // OldStatus missing
	assert.Error(t, err)

	_, err = templates.Build(sampleJob(KindNewTicketComment)) // comment missing
	assert.Error(t, err)

	_, err = templates.Build(Job{Kind: Kind("unknown")})
	assert.Error(t, err)
}

func TestFallbackAlwaysRenders(t *testing.T) {
	for _, kind := range []Kind{KindTicketCreated, KindTicketStatusChanged, KindNewTicketComment} {
		msg := Fallback(kind)
		assert.NotEmpty(t, msg.Subject)
		assert.Contains(t, msg.Lines, "Please log in to view the details.")
	}
}

func TestMessageBody(t *testing.T) {
	msg := Message{
		Subject:    "s",
		Greeting:   "Hello Ada!",
		Lines:      []string{"one", "two"},
		ActionText: "View Ticket",
		ActionURL:  "https://support.example.com/tickets/41",
	}
	body := msg.Body()
	assert.Contains(t, body, "Hello Ada!\n\n")
	assert.Contains(t, body, "one\ntwo\n")
	assert.Contains(t, body, "View Ticket: https://support.example.com/tickets/41")
}
