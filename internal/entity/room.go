package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoomTypeGeneral       = "general"
	RoomTypeAnnouncements = "announcements"
	RoomTypeQnA           = "qna"
	RoomTypeNetworking    = "networking"
	RoomTypeCustom        = "custom"
)

const (
	ParticipantRoleAdmin     = "admin"
	ParticipantRoleModerator = "moderator"
	ParticipantRoleMember    = "member"
)

type RoomSettings struct {
	AllowFileUploads bool `gorm:"default:true" json:"allow_file_uploads"`
	RetentionDays    int  `gorm:"default:0" json:"retention_days"`
	RequireApproval  bool `gorm:"default:false" json:"require_approval"`
}

type ChatRoom struct {
	ID          uuid.UUID `gorm:"primaryKey" json:"id"`
	EventID     string    `gorm:"index;not null" json:"event_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	RoomType    string    `gorm:"not null;default:'general'" json:"room_type"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	IsPrivate   bool      `gorm:"not null;default:false" json:"is_private"`

	Settings RoomSettings `gorm:"embedded;embeddedPrefix:settings_" json:"settings"`

	// Hex of the most recent message (including system messages) in the
	// message store; denormalized so room lists never hit the store.
	LastMessageID string    `json:"last_message_id"`
	LastActivity  time.Time `json:"last_activity"`

	CreatedBy string    `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type RoomParticipant struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	RoomID     string    `gorm:"uniqueIndex:idx_room_user;not null" json:"room_id"`
	UserID     string    `gorm:"uniqueIndex:idx_room_user;not null" json:"user_id"`
	Role       string    `gorm:"not null;default:'member'" json:"role"`
	JoinedAt   time.Time `gorm:"autoCreateTime" json:"joined_at"`
	LastReadAt time.Time `json:"last_read_at"`
	IsMuted    bool      `gorm:"not null;default:false" json:"is_muted"`
	IsBanned   bool      `gorm:"not null;default:false" json:"is_banned"`
}

// CanModerate reports whether this participant may act on other users'
// messages (soft or permanent delete, mute, ban).
func (p *RoomParticipant) CanModerate() bool {
	return p.Role == ParticipantRoleAdmin || p.Role == ParticipantRoleModerator
}

// CanSend is the single send gate: a live participant record that is
// neither banned nor muted.
func (p *RoomParticipant) CanSend() bool {
	return p != nil && !p.IsBanned && !p.IsMuted
}
