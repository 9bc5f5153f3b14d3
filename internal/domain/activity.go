package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SubjectType identifies the kind of entity an activity describes.
type SubjectType string

const (
	SubjectTicket  SubjectType = "ticket"
	SubjectComment SubjectType = "comment"
	SubjectUser    SubjectType = "user"
)

// ActivityType is the closed set of ledger entry kinds.
type ActivityType string

const (
	ActivityCreated         ActivityType = "created"
	ActivityUpdated         ActivityType = "updated"
	ActivityDeleted         ActivityType = "deleted"
	ActivityCommented       ActivityType = "commented"
	ActivityStatusChanged   ActivityType = "status_changed"
	ActivityPriorityChanged ActivityType = "priority_changed"
	ActivityAssigned        ActivityType = "assigned"
)

// Activity is an append-only ledger entry. Records are never mutated after
// creation; corrections are new records. The subject may be deleted while
// the record persists.
type Activity struct {
	ID          string
	SubjectType SubjectType
	SubjectID   string
	Type        ActivityType
	Description string
	Properties  Properties
	CauserID    *string
	CauserType  *SubjectType
	CreatedAt   time.Time
}

// Icon returns the feed icon for the activity type.
func (t ActivityType) Icon() string {
	switch t {
	case ActivityCreated:
		return "plus-circle"
	case ActivityUpdated:
		return "pencil"
	case ActivityDeleted:
		return "trash"
	case ActivityCommented:
		return "comment"
	case ActivityStatusChanged:
		return "refresh"
	case ActivityPriorityChanged:
		return "flag"
	case ActivityAssigned:
		return "user-plus"
	default:
		return "circle"
	}
}

// Color returns the feed color for the activity type.
func (t ActivityType) Color() string {
	switch t {
	case ActivityCreated:
		return "green"
	case ActivityUpdated:
		return "blue"
	case ActivityDeleted:
		return "red"
	case ActivityCommented:
		return "purple"
	case ActivityStatusChanged:
		return "orange"
	case ActivityPriorityChanged:
		return "yellow"
	case ActivityAssigned:
		return "indigo"
	default:
		return "gray"
	}
}

// Properties is the payload attached to a ledger entry. The concrete
// variant is determined by the activity type.
type Properties interface {
	activityProperties()
}

// FieldChange is an old/new pair for a single changed field.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// UpdateProperties carries the changed-field set of a generic update.
type UpdateProperties struct {
	Changes map[string]FieldChange `json:"changes"`
}

// StatusChangeProperties carries a ticket status transition.
type StatusChangeProperties struct {
	Old TicketStatus `json:"old"`
	New TicketStatus `json:"new"`
}

// PriorityChangeProperties carries a ticket priority transition.
type PriorityChangeProperties struct {
	Old TicketPriority `json:"old"`
	New TicketPriority `json:"new"`
}

// CommentProperties links a commented entry on a ticket to the comment row.
type CommentProperties struct {
	CommentID string `json:"comment_id"`
}

func (UpdateProperties) activityProperties()         {}
func (StatusChangeProperties) activityProperties()   {}
func (PriorityChangeProperties) activityProperties() {}
func (CommentProperties) activityProperties()        {}

// EncodeProperties serializes a payload for the JSONB column. Nil payloads
// (created/deleted entries) encode as NULL.
func EncodeProperties(p Properties) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// DecodeProperties deserializes the JSONB column into the variant matching
// the activity type. Unknown or empty payloads decode to nil.
func DecodeProperties(t ActivityType, raw []byte) (Properties, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch t {
	case ActivityUpdated:
		var p UpdateProperties
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode updated properties: %w", err)
		}
		return p, nil
	case ActivityStatusChanged:
		var p StatusChangeProperties
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode status_changed properties: %w", err)
		}
		return p, nil
	case ActivityPriorityChanged:
		var p PriorityChangeProperties
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode priority_changed properties: %w", err)
		}
		return p, nil
	case ActivityCommented:
		var p CommentProperties
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode commented properties: %w", err)
		}
		return p, nil
	default:
		return nil, nil
	}
}

// Details renders the status transition with display-cased values.
func (p StatusChangeProperties) Details() map[string]string {
	return map[string]string{
		"old_status": Capitalize(string(p.Old)),
		"new_status": Capitalize(string(p.New)),
	}
}

// Details renders the priority transition with display-cased values.
func (p PriorityChangeProperties) Details() map[string]string {
	return map[string]string{
		"old_priority": Capitalize(string(p.Old)),
		"new_priority": Capitalize(string(p.New)),
	}
}

// ChangeDetail is a display-ready rendering of one changed field.
type ChangeDetail struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// Details re-labels the changes map with display-friendly field names.
func (p UpdateProperties) Details() map[string]ChangeDetail {
	out := make(map[string]ChangeDetail, len(p.Changes))
	for field, change := range p.Changes {
		out[field] = ChangeDetail{
			Field: FieldLabel(field),
			Old:   change.Old,
			New:   change.New,
		}
	}
	return out
}

// FieldLabel turns a column name into a human-readable label.
func FieldLabel(field string) string {
	return Capitalize(strings.ReplaceAll(field, "_", " "))
}

// Capitalize upper-cases the first letter of a value.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
