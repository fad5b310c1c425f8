package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// DeletedMessagePlaceholder is what readers see instead of the content of
// a soft-deleted message. The row itself stays so replies and reactions
// keep resolving.
const DeletedMessagePlaceholder = "This message was deleted"

const MaxMessageContentLength = 1000

type Attachment struct {
	Type string `bson:"type" json:"type"`
	URL  string `bson:"url" json:"url"`
	Name string `bson:"name,omitempty" json:"name,omitempty"`
}

type Reaction struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	Emoji     string    `bson:"emoji" json:"emoji"`
	ReactedAt time.Time `bson:"reacted_at" json:"reacted_at"`
}

type Message struct {
	ID     bson.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomID string        `bson:"room_id" json:"room_id"`

	// Nil for system messages.
	SenderID *string `bson:"sender_id" json:"sender_id"`

	Content     string       `bson:"content" json:"content"`
	MessageType string       `bson:"message_type" json:"message_type"`
	Attachments []Attachment `bson:"attachments" json:"attachments"`

	IsEdited bool       `bson:"is_edited" json:"is_edited"`
	EditedAt *time.Time `bson:"edited_at,omitempty" json:"edited_at,omitempty"`

	IsDeleted bool       `bson:"is_deleted" json:"is_deleted"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`

	// At most one active entry per user; a new reaction replaces the old one.
	Reactions []Reaction `bson:"reactions" json:"reactions"`

	ReplyTo  *bson.ObjectID `bson:"reply_to,omitempty" json:"reply_to,omitempty"`
	Mentions []string       `bson:"mentions,omitempty" json:"mentions,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Sender normalizes sender identity extraction: every membership or
// ownership check goes through this accessor instead of inspecting the
// pointer shape. Returns "" for system messages.
func (m *Message) Sender() string {
	if m.SenderID == nil {
		return ""
	}
	return *m.SenderID
}

// IsSystem reports whether the message was produced by the platform
// rather than a participant.
func (m *Message) IsSystem() bool {
	return m.SenderID == nil
}

// Redact rewrites a soft-deleted message for read-time rendering. The
// identity, reply chain and reactions survive; content and attachments
// do not.
func (m *Message) Redact() {
	if !m.IsDeleted {
		return
	}
	m.Content = DeletedMessagePlaceholder
	m.Attachments = []Attachment{}
}
