package entity

import "time"

// Event rows are owned by the event directory; this subsystem only reads
// organizer and collaborator state to derive chat access.

const (
	EventRoleOwner        = "owner"
	EventRoleCollaborator = "collaborator"
	EventRoleAttendee     = "attendee"
	EventRoleNone         = "none"
)

const OrderStatusCompleted = "completed"

type Event struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	OrganizerID string    `gorm:"index;not null" json:"organizer_id"`
	ChatEnabled bool      `gorm:"not null;default:true" json:"chat_enabled"`
	StartsAt    time.Time `json:"starts_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type EventCollaborator struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	EventID string `gorm:"uniqueIndex:idx_event_collab;not null" json:"event_id"`
	UserID  string `gorm:"uniqueIndex:idx_event_collab;not null" json:"user_id"`
}

// Order is the registration ledger's view of a ticket purchase. Only
// status=completed grants attendee access.
type Order struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"index;not null" json:"event_id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Status    string    `gorm:"not null" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
