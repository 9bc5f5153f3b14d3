package dto

import (
	"time"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// BulkUpdateRequest applies status and/or priority to many tickets.
type BulkUpdateRequest struct {
	IDs      []string               `json:"ids"`
	Status   *domain.TicketStatus   `json:"status,omitempty"`
	Priority *domain.TicketPriority `json:"priority,omitempty"`
}

// BulkDeleteRequest payload.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// TicketSummary response.
type TicketSummary struct {
	ID        string                `json:"id"`
	OwnerID   string                `json:"owner_id"`
	Title     string                `json:"title"`
	Status    domain.TicketStatus   `json:"status"`
	Priority  domain.TicketPriority `json:"priority"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID          string                `json:"id"`
	OwnerID     string                `json:"owner_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Comments    []CommentResponse     `json:"comments"`
}
