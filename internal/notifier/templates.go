package notifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
)

const closingLine = "Thank you for using our support system!"

// Templates renders notification messages from job snapshots.
type Templates struct {
	BaseURL string
}

// Build renders the message for a job. A nil error means the primary
// rendering succeeded; callers must fall back to Fallback on error rather
// than dropping the notification.
func (t Templates) Build(job Job) (Message, error) {
	switch job.Kind {
	case KindTicketCreated:
		return t.ticketCreated(job)
	case KindTicketStatusChanged:
		return t.ticketStatusChanged(job)
	case KindNewTicketComment:
		return t.newTicketComment(job)
	default:
		return Message{}, fmt.Errorf("unknown notification kind %q", job.Kind)
	}
}

func (t Templates) ticketCreated(job Job) (Message, error) {
	if job.Ticket.ID == "" || job.Ticket.Title == "" {
		return Message{}, errors.New("ticket context missing")
	}
	return Message{
		Subject:  "New Support Ticket Created: #" + job.Ticket.ID,
		Greeting: greeting(job.Recipient),
		Lines: []string{
			"A new support ticket has been created.",
			fmt.Sprintf("Ticket #%s: %s", job.Ticket.ID, job.Ticket.Title),
			"Priority: " + domain.Capitalize(string(job.Ticket.Priority)),
			closingLine,
		},
		ActionText: "View Ticket",
		ActionURL:  t.ticketURL(job.Ticket.ID),
	}, nil
}

func (t Templates) ticketStatusChanged(job Job) (Message, error) {
	if job.Ticket.ID == "" || job.OldStatus == "" || job.Ticket.Status == "" {
		return Message{}, errors.New("status context missing")
	}
	oldText := domain.Capitalize(string(job.OldStatus))
	newText := domain.Capitalize(string(job.Ticket.Status))
	return Message{
		Subject:  fmt.Sprintf("Ticket #%s Status Changed", job.Ticket.ID),
		Greeting: greeting(job.Recipient),
		Lines: []string{
			"The status of your ticket has been updated.",
			fmt.Sprintf("Ticket #%s: %s", job.Ticket.ID, job.Ticket.Title),
			fmt.Sprintf("Status changed from %s to %s", oldText, newText),
			closingLine,
		},
		ActionText: "View Ticket",
		ActionURL:  t.ticketURL(job.Ticket.ID),
	}, nil
}

func (t Templates) newTicketComment(job Job) (Message, error) {
	if job.Ticket.ID == "" || job.Comment.ID == "" {
		return Message{}, errors.New("comment context missing")
	}
	return Message{
		Subject:  fmt.Sprintf("New comment on Ticket #%s", job.Ticket.ID),
		Greeting: greeting(job.Recipient),
		Lines: []string{
			"A new comment has been added to ticket: " + job.Ticket.Title,
			"Comment by: " + job.Comment.AuthorName,
			job.Comment.Content,
			closingLine,
		},
		ActionText: "View Ticket",
		ActionURL:  t.ticketURL(job.Ticket.ID),
	}, nil
}

// Fallback returns the degraded but always-renderable message for a kind.
// Used when primary rendering fails so that some notification content is
// still attempted.
func Fallback(kind Kind) Message {
	switch kind {
	case KindTicketCreated:
		return Message{
			Subject: "New Support Ticket Created",
			Lines: []string{
				"A new support ticket has been created in the system.",
				"Please log in to view the details.",
			},
		}
	case KindTicketStatusChanged:
		return Message{
			Subject: "Ticket Status Update",
			Lines: []string{
				"A ticket status has been updated in the system.",
				"Please log in to view the details.",
			},
		}
	default:
		return Message{
			Subject: "New Comment Added",
			Lines: []string{
				"A new comment has been added to your ticket.",
				"Please log in to view the details.",
			},
		}
	}
}

func (t Templates) ticketURL(id string) string {
	return strings.TrimRight(t.BaseURL, "/") + "/tickets/" + id
}

func greeting(r Recipient) string {
	if r.Name == "" {
		return "Hello!"
	}
	return "Hello " + r.Name + "!"
}
