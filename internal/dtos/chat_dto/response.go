package chat_dto

import (
	"time"

	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
)

type RoomResponse struct {
	RoomID        string                `json:"room_id"`
	EventID       string                `json:"event_id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	RoomType      string                `json:"room_type"`
	IsActive      bool                  `json:"is_active"`
	IsPrivate     bool                  `json:"is_private"`
	Settings      entity.RoomSettings   `json:"settings"`
	LastMessageID string                `json:"last_message_id,omitempty"`
	LastActivity  time.Time             `json:"last_activity"`
	CreatedBy     string                `json:"created_by"`
	Participants  []ParticipantResponse `json:"participants,omitempty"`
}

type ParticipantResponse struct {
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	JoinedAt   time.Time `json:"joined_at"`
	LastReadAt time.Time `json:"last_read_at"`
	IsMuted    bool      `json:"is_muted"`
	IsBanned   bool      `json:"is_banned"`
}

type JoinRoomResponse struct {
	Room      RoomResponse `json:"room"`
	EventRole string       `json:"event_role"`
}

type MessageResponse struct {
	MessageID   string              `json:"message_id"`
	RoomID      string              `json:"room_id"`
	SenderID    *string             `json:"sender_id"`
	Content     string              `json:"content"`
	MessageType string              `json:"message_type"`
	Attachments []entity.Attachment `json:"attachments"`
	IsEdited    bool                `json:"is_edited"`
	EditedAt    *time.Time          `json:"edited_at,omitempty"`
	IsDeleted   bool                `json:"is_deleted"`
	Reactions   []entity.Reaction   `json:"reactions"`
	ReplyTo     *string             `json:"reply_to,omitempty"`
	Mentions    []string            `json:"mentions,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type GetMessagesResponse struct {
	Messages   []MessageResponse `json:"messages"`
	NextCursor *string           `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

type UnreadCount struct {
	RoomID string `json:"room_id"`
	Count  int64  `json:"count"`
}

type UnreadCountsResponse struct {
	Counts []UnreadCount `json:"counts"`
	Total  int64         `json:"total"`
}

func NewRoomResponse(room *entity.ChatRoom) RoomResponse {
	return RoomResponse{
		RoomID:        room.ID.String(),
		EventID:       room.EventID,
		Name:          room.Name,
		Description:   room.Description,
		RoomType:      room.RoomType,
		IsActive:      room.IsActive,
		IsPrivate:     room.IsPrivate,
		Settings:      room.Settings,
		LastMessageID: room.LastMessageID,
		LastActivity:  room.LastActivity,
		CreatedBy:     room.CreatedBy,
	}
}

// NewMessageResponse renders a message for clients, applying soft-delete
// redaction at read time.
func NewMessageResponse(msg *entity.Message) MessageResponse {
	msg.Redact()

	var replyTo *string
	if msg.ReplyTo != nil {
		hex := msg.ReplyTo.Hex()
		replyTo = &hex
	}

	attachments := msg.Attachments
	if attachments == nil {
		attachments = []entity.Attachment{}
	}
	reactions := msg.Reactions
	if reactions == nil {
		reactions = []entity.Reaction{}
	}

	return MessageResponse{
		MessageID:   msg.ID.Hex(),
		RoomID:      msg.RoomID,
		SenderID:    msg.SenderID,
		Content:     msg.Content,
		MessageType: msg.MessageType,
		Attachments: attachments,
		IsEdited:    msg.IsEdited,
		EditedAt:    msg.EditedAt,
		IsDeleted:   msg.IsDeleted,
		Reactions:   reactions,
		ReplyTo:     replyTo,
		Mentions:    msg.Mentions,
		CreatedAt:   msg.CreatedAt,
	}
}
