package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityCritical TicketPriority = "critical"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityLow      TicketPriority = "low"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidStatus reports whether the value is a known ticket status.
func ValidStatus(s TicketStatus) bool {
	return s == TicketStatusOpen || s == TicketStatusClosed
}

// ValidPriority reports whether the value is a known ticket priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityCritical, TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow:
		return true
	}
	return false
}

// StatusLabels maps raw status values to display labels.
func StatusLabels() map[TicketStatus]string {
	return map[TicketStatus]string{
		TicketStatusOpen:   "Open",
		TicketStatusClosed: "Closed",
	}
}

// PriorityLabels maps raw priority values to display labels.
func PriorityLabels() map[TicketPriority]string {
	return map[TicketPriority]string{
		TicketPriorityLow:      "Low",
		TicketPriorityMedium:   "Medium",
		TicketPriorityHigh:     "High",
		TicketPriorityCritical: "Critical",
	}
}
