package chat_dto

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type CreateRoomRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
	RoomType    string `json:"room_type" validate:"omitempty,oneof=general announcements qna networking custom"`
	IsPrivate   bool   `json:"is_private"`
}

type JoinRoomRequest struct {
	// Accepted for roster display; unauthenticated participation is still
	// rejected at action time.
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=50"`
}

type SendMessageRequest struct {
	Content     string   `json:"content" validate:"required"`
	MessageType string   `json:"message_type" validate:"omitempty,oneof=text image file"`
	ReplyTo     *string  `json:"reply_to,omitempty" validate:"omitempty,objectID"`
	Mentions    []string `json:"mentions,omitempty" validate:"omitempty,dive,required"`
}

type EditMessageRequest struct {
	NewContent string `json:"new_content" validate:"required"`
}

type DeleteMessageRequest struct {
	Permanent bool `json:"permanent,omitempty"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,max=16"`
}

type GetMessagesRequest struct {
	Limit  int     `json:"limit" validate:"omitempty,min=1,max=100"`
	Before *string `json:"before,omitempty"` // RFC3339 timestamp cursor
	After  *string `json:"after,omitempty"`
	Page   int     `json:"page" validate:"omitempty,min=1"`
}

type AnnounceRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

type ModerateParticipantRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Muted  *bool  `json:"muted,omitempty"`
	Banned *bool  `json:"banned,omitempty"`
}

func ObjectIDValidator(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}
