package domain

import (
	"strings"
	"time"
)

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the domain model for people who open and work tickets.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AdminEmailPattern is the substring that classifies an account as an
// administrator. Admins receive a copy of every ticket-created notification.
const AdminEmailPattern = "@admin"

// IsAdmin reports whether the user is admin-classified.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Email), AdminEmailPattern)
}
