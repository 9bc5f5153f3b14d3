package domain

import "time"

// Comment captures a reply in a ticket thread. Comments are immutable
// after creation; there are no edit or delete flows.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}
