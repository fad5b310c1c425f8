package chat_service

import (
	"context"

	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
)

// ChatServiceContract is the message pipeline: send, edit, delete and
// react, with per-action authorization. Broadcast happens at the caller
// (socket dispatcher or queue worker), never here.
type ChatServiceContract interface {
	SendMessage(ctx context.Context, roomID, senderID string, req chat_dto.SendMessageRequest) (*chat_dto.MessageResponse, *app_error.AppError)
	// SendSystemMessage persists a sender-less message, bypassing
	// participant checks. Server-initiated notices only.
	SendSystemMessage(ctx context.Context, roomID, content string) (*chat_dto.MessageResponse, *app_error.AppError)
	EditMessage(ctx context.Context, messageID, userID, newContent string) (*chat_dto.MessageResponse, *app_error.AppError)
	DeleteMessage(ctx context.Context, messageID, userID string, permanent bool) (*chat_dto.MessageResponse, *app_error.AppError)
	AddReaction(ctx context.Context, messageID, userID, emoji string) (roomID string, appErr *app_error.AppError)
	RemoveReaction(ctx context.Context, messageID, userID, emoji string) (roomID string, appErr *app_error.AppError)
	GetMessages(ctx context.Context, roomID string, req chat_dto.GetMessagesRequest) (*chat_dto.GetMessagesResponse, *app_error.AppError)
}
