package dto

import (
	"time"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
)

// ActivityFeedItem is one rendered entry of the activity feed.
type ActivityFeedItem struct {
	ID          string              `json:"id"`
	Type        domain.ActivityType `json:"type"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Color       string              `json:"color"`
	SubjectType domain.SubjectType  `json:"subject_type"`
	SubjectID   string              `json:"subject_id"`
	Details     any                 `json:"details,omitempty"`
	Causer      *UserResponse       `json:"causer,omitempty"`
	Ticket      *TicketRef          `json:"ticket,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// TicketRef is a compact link to a ticket from a feed entry.
type TicketRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ActivityFeedResponse pages the feed.
type ActivityFeedResponse struct {
	Items []ActivityFeedItem `json:"items"`
	Total int                `json:"total"`
}
