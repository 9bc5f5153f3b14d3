package notifier

import (
	"time"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
)

// Kind identifies a notification template.
type Kind string

const (
	KindTicketCreated       Kind = "ticket_created"
	KindTicketStatusChanged Kind = "ticket_status_changed"
	KindNewTicketComment    Kind = "new_ticket_comment"
)

// Recipient is the resolved delivery target.
type Recipient struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TicketSnapshot captures ticket state at enqueue time so delivery does not
// depend on the ticket still existing.
type TicketSnapshot struct {
	ID       string                `json:"id"`
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Status   domain.TicketStatus   `json:"status"`
}

// CommentSnapshot captures comment state at enqueue time.
type CommentSnapshot struct {
	ID         string `json:"id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
}

// Job is one pending delivery to one recipient. Jobs are transient: they
// live in the queue until delivered or until the retry budget is exhausted.
type Job struct {
	ID         string              `json:"id"`
	Kind       Kind                `json:"kind"`
	Recipient  Recipient           `json:"recipient"`
	Ticket     TicketSnapshot      `json:"ticket"`
	OldStatus  domain.TicketStatus `json:"old_status,omitempty"`
	Comment    CommentSnapshot     `json:"comment,omitempty"`
	Attempts   int                 `json:"attempts"`
	EnqueuedAt time.Time           `json:"enqueued_at"`
}
