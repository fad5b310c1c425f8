package chat_service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
	message_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/message"
	room_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/room"
)

type ChatService struct {
	RoomRepo    room_repo.RoomRepoContract
	MessageRepo message_repo.MessageRepoContract
}

func NewChatService(roomRepo room_repo.RoomRepoContract, messageRepo message_repo.MessageRepoContract) ChatServiceContract {
	return &ChatService{
		RoomRepo:    roomRepo,
		MessageRepo: messageRepo,
	}
}

func validateContent(content string) (string, *app_error.AppError) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", app_error.InvalidInput("message content cannot be empty", "content")
	}
	if utf8.RuneCountInString(trimmed) > entity.MaxMessageContentLength {
		return "", app_error.InvalidInput("message content exceeds 1000 characters", "content")
	}
	return trimmed, nil
}

func (s *ChatService) SendMessage(ctx context.Context, roomID, senderID string, req chat_dto.SendMessageRequest) (*chat_dto.MessageResponse, *app_error.AppError) {
	if senderID == "" {
		return nil, app_error.Unauthenticated("sign in to send messages")
	}

	content, appErr := validateContent(req.Content)
	if appErr != nil {
		return nil, appErr
	}

	room, appErr := s.RoomRepo.FindRoomByID(ctx, roomID)
	if appErr != nil {
		return nil, appErr
	}
	if !room.IsActive {
		return nil, app_error.Forbidden("room is closed")
	}

	participant, appErr := s.RoomRepo.FindParticipant(ctx, room.ID.String(), senderID)
	if appErr != nil {
		return nil, appErr
	}
	if !participant.CanSend() {
		if participant == nil {
			return nil, app_error.Forbidden("join the room before sending messages")
		}
		if participant.IsBanned {
			return nil, app_error.Forbidden("you are banned from this room")
		}
		return nil, app_error.Forbidden("you are muted in this room")
	}

	var replyTo *bson.ObjectID
	if req.ReplyTo != nil {
		parent, appErr := s.MessageRepo.FindByID(ctx, *req.ReplyTo)
		if appErr != nil {
			return nil, appErr
		}
		if parent.RoomID != room.ID.String() {
			return nil, app_error.InvalidInput("replied message belongs to a different room", "reply_to")
		}
		replyTo = &parent.ID
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = entity.MessageTypeText
	}

	msg := &entity.Message{
		RoomID:      room.ID.String(),
		SenderID:    &senderID,
		Content:     content,
		MessageType: messageType,
		Attachments: []entity.Attachment{},
		Reactions:   []entity.Reaction{},
		ReplyTo:     replyTo,
		Mentions:    req.Mentions,
		CreatedAt:   time.Now(),
	}

	msgID, appErr := s.MessageRepo.Insert(ctx, msg)
	if appErr != nil {
		return nil, appErr
	}

	if appErr := s.RoomRepo.UpdateRoomLastMessage(ctx, room.ID.String(), msgID.Hex(), msg.CreatedAt); appErr != nil {
		// The message is already persisted; the denormalized pointer is
		// best-effort and self-heals on the next send.
		log.Error().Str("roomID", roomID).Str("messageID", msgID.Hex()).Msg("failed to update room last message")
	}

	resp := chat_dto.NewMessageResponse(msg)
	return &resp, nil
}

func (s *ChatService) SendSystemMessage(ctx context.Context, roomID, content string) (*chat_dto.MessageResponse, *app_error.AppError) {
	content, appErr := validateContent(content)
	if appErr != nil {
		return nil, appErr
	}

	room, appErr := s.RoomRepo.FindRoomByID(ctx, roomID)
	if appErr != nil {
		return nil, appErr
	}

	msg := &entity.Message{
		RoomID:      room.ID.String(),
		SenderID:    nil,
		Content:     content,
		MessageType: entity.MessageTypeSystem,
		Attachments: []entity.Attachment{},
		Reactions:   []entity.Reaction{},
		CreatedAt:   time.Now(),
	}

	msgID, appErr := s.MessageRepo.Insert(ctx, msg)
	if appErr != nil {
		return nil, appErr
	}

	// System messages count as room activity too.
	if appErr := s.RoomRepo.UpdateRoomLastMessage(ctx, room.ID.String(), msgID.Hex(), msg.CreatedAt); appErr != nil {
		log.Error().Str("roomID", roomID).Str("messageID", msgID.Hex()).Msg("failed to update room last message")
	}

	resp := chat_dto.NewMessageResponse(msg)
	return &resp, nil
}

func (s *ChatService) EditMessage(ctx context.Context, messageID, userID, newContent string) (*chat_dto.MessageResponse, *app_error.AppError) {
	if userID == "" {
		return nil, app_error.Unauthenticated("sign in to edit messages")
	}

	content, appErr := validateContent(newContent)
	if appErr != nil {
		return nil, appErr
	}

	msg, appErr := s.MessageRepo.FindByID(ctx, messageID)
	if appErr != nil {
		return nil, appErr
	}
	if msg.Sender() != userID {
		return nil, app_error.Forbidden("only the original sender can edit a message")
	}
	if msg.IsDeleted {
		return nil, app_error.Forbidden("cannot edit a deleted message")
	}

	editedAt := time.Now()
	if appErr := s.MessageRepo.UpdateContent(ctx, msg.ID, content, editedAt); appErr != nil {
		return nil, appErr
	}

	msg.Content = content
	msg.IsEdited = true
	msg.EditedAt = &editedAt

	resp := chat_dto.NewMessageResponse(msg)
	return &resp, nil
}

func (s *ChatService) DeleteMessage(ctx context.Context, messageID, userID string, permanent bool) (*chat_dto.MessageResponse, *app_error.AppError) {
	if userID == "" {
		return nil, app_error.Unauthenticated("sign in to delete messages")
	}

	msg, appErr := s.MessageRepo.FindByID(ctx, messageID)
	if appErr != nil {
		return nil, appErr
	}

	if msg.Sender() != userID {
		participant, appErr := s.RoomRepo.FindParticipant(ctx, msg.RoomID, userID)
		if appErr != nil {
			return nil, appErr
		}
		if participant == nil || !participant.CanModerate() {
			return nil, app_error.Forbidden("only the sender or a room moderator can delete this message")
		}
	}

	if permanent {
		if appErr := s.MessageRepo.DeletePermanent(ctx, msg.ID); appErr != nil {
			return nil, appErr
		}
		log.Info().Str("messageID", messageID).Str("by", userID).Msg("message permanently removed")
	} else {
		deletedAt := time.Now()
		if appErr := s.MessageRepo.SoftDelete(ctx, msg.ID, deletedAt); appErr != nil {
			return nil, appErr
		}
		msg.IsDeleted = true
		msg.DeletedAt = &deletedAt
	}

	resp := chat_dto.NewMessageResponse(msg)
	return &resp, nil
}

func (s *ChatService) AddReaction(ctx context.Context, messageID, userID, emoji string) (string, *app_error.AppError) {
	if userID == "" {
		return "", app_error.Unauthenticated("sign in to react to messages")
	}
	if strings.TrimSpace(emoji) == "" {
		return "", app_error.InvalidInput("emoji is required", "emoji")
	}

	msg, appErr := s.MessageRepo.FindByID(ctx, messageID)
	if appErr != nil {
		return "", appErr
	}

	participant, appErr := s.RoomRepo.FindParticipant(ctx, msg.RoomID, userID)
	if appErr != nil {
		return "", appErr
	}
	if participant == nil || participant.IsBanned {
		return "", app_error.Forbidden("you cannot react in this room")
	}

	reaction := entity.Reaction{
		UserID:    userID,
		Emoji:     emoji,
		ReactedAt: time.Now(),
	}
	if appErr := s.MessageRepo.ReplaceReaction(ctx, msg.ID, reaction); appErr != nil {
		return "", appErr
	}

	return msg.RoomID, nil
}

func (s *ChatService) RemoveReaction(ctx context.Context, messageID, userID, emoji string) (string, *app_error.AppError) {
	if userID == "" {
		return "", app_error.Unauthenticated("sign in to react to messages")
	}

	msg, appErr := s.MessageRepo.FindByID(ctx, messageID)
	if appErr != nil {
		return "", appErr
	}

	participant, appErr := s.RoomRepo.FindParticipant(ctx, msg.RoomID, userID)
	if appErr != nil {
		return "", appErr
	}
	if participant == nil || participant.IsBanned {
		return "", app_error.Forbidden("you cannot react in this room")
	}

	if appErr := s.MessageRepo.PullReaction(ctx, msg.ID, userID, emoji); appErr != nil {
		return "", appErr
	}

	return msg.RoomID, nil
}

func (s *ChatService) GetMessages(ctx context.Context, roomID string, req chat_dto.GetMessagesRequest) (*chat_dto.GetMessagesResponse, *app_error.AppError) {
	room, appErr := s.RoomRepo.FindRoomByID(ctx, roomID)
	if appErr != nil {
		return nil, appErr
	}

	filter := message_repo.ListFilter{
		Limit: req.Limit,
		Page:  req.Page,
	}
	if req.Before != nil {
		t, err := time.Parse(time.RFC3339Nano, *req.Before)
		if err != nil {
			return nil, app_error.InvalidInput("invalid before cursor", "before")
		}
		filter.Before = &t
	}
	if req.After != nil {
		t, err := time.Parse(time.RFC3339Nano, *req.After)
		if err != nil {
			return nil, app_error.InvalidInput("invalid after cursor", "after")
		}
		filter.After = &t
	}

	messages, appErr := s.MessageRepo.List(ctx, room.ID.String(), filter)
	if appErr != nil {
		return nil, appErr
	}

	resp := make([]chat_dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, chat_dto.NewMessageResponse(msg))
	}

	var nextCursor *string
	if len(messages) > 0 {
		oldest := messages[0].CreatedAt.Format(time.RFC3339Nano)
		nextCursor = &oldest
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	return &chat_dto.GetMessagesResponse{
		Messages:   resp,
		NextCursor: nextCursor,
		HasMore:    len(messages) == limit,
	}, nil
}
