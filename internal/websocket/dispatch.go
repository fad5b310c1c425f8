package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
	chat_service "github.com/akashyap25/eazy-event-server-sub000/internal/use-case/chat-case"
	presence_service "github.com/akashyap25/eazy-event-server-sub000/internal/use-case/presence-case"
	room_service "github.com/akashyap25/eazy-event-server-sub000/internal/use-case/room-case"
)

// handleTimeout bounds persistence work per frame. It is detached from
// the connection context on purpose: a disconnect mid-write must not
// abort a message that was already accepted.
const handleTimeout = 10 * time.Second

// Dispatcher routes inbound websocket frames to the chat services and
// fans results out through the hub. Failures go back to the originating
// connection only, as an error frame; other subscribers never see them.
type Dispatcher struct {
	Hub      *Hub
	Rooms    room_service.RoomServiceContract
	Chat     chat_service.ChatServiceContract
	Presence presence_service.PresenceServiceContract
	Validate *validator.Validate
}

func NewDispatcher(hub *Hub, rooms room_service.RoomServiceContract, chat chat_service.ChatServiceContract, presence presence_service.PresenceServiceContract, validate *validator.Validate) *Dispatcher {
	return &Dispatcher{
		Hub:      hub,
		Rooms:    rooms,
		Chat:     chat,
		Presence: presence,
		Validate: validate,
	}
}

func (d *Dispatcher) Dispatch(client *Client, raw []byte) {
	var incoming chat_dto.WSIncomingMessage
	if err := json.Unmarshal(raw, &incoming); err != nil {
		client.SendError("malformed frame")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	var appErr *app_error.AppError
	switch incoming.Type {
	case chat_dto.WSJoinEventRooms:
		appErr = d.handleJoinEventRooms(ctx, client, incoming.Data)
	case chat_dto.WSJoinRoom:
		appErr = d.handleJoinRoom(ctx, client, incoming.Data)
	case chat_dto.WSLeaveRoom:
		appErr = d.handleLeaveRoom(ctx, client, incoming.Data)
	case chat_dto.WSSendMessage:
		appErr = d.handleSendMessage(ctx, client, incoming.Data)
	case chat_dto.WSEditMessage:
		appErr = d.handleEditMessage(ctx, client, incoming.Data)
	case chat_dto.WSDeleteMessage:
		appErr = d.handleDeleteMessage(ctx, client, incoming.Data)
	case chat_dto.WSAddReaction:
		appErr = d.handleAddReaction(ctx, client, incoming.Data)
	case chat_dto.WSRemoveReaction:
		appErr = d.handleRemoveReaction(ctx, client, incoming.Data)
	case chat_dto.WSTypingStart:
		appErr = d.handleTyping(client, incoming.Data, chat_dto.WSUserTyping)
	case chat_dto.WSTypingStop:
		appErr = d.handleTyping(client, incoming.Data, chat_dto.WSUserStoppedTyping)
	case chat_dto.WSMarkAsRead:
		appErr = d.handleMarkAsRead(ctx, client, incoming.Data)
	case chat_dto.WSGetUnreadCounts:
		appErr = d.handleGetUnreadCounts(ctx, client)
	default:
		appErr = app_error.InvalidInput("unknown event type", "type")
	}

	if appErr != nil {
		log.Debug().
			Str("clientID", client.ID).
			Str("userID", client.UserID).
			Str("event", incoming.Type).
			Int("code", appErr.Code).
			Str("reason", appErr.Message).
			Msg("ws: frame rejected")
		client.SendError(appErr.Message)
	}
}

func decode[T any](d *Dispatcher, data json.RawMessage) (*T, *app_error.AppError) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, app_error.InvalidInput("malformed payload", "data")
	}
	if err := d.Validate.Struct(&payload); err != nil {
		return nil, app_error.InvalidInput(err.Error(), "data")
	}
	return &payload, nil
}

func (d *Dispatcher) handleJoinEventRooms(ctx context.Context, client *Client, data json.RawMessage) *app_error.AppError {
	payload, appErr := decode[chat_dto.WSJoinEventRoomsPayload](d, data)
	if appErr != nil {
		return appErr
	}
	if !client.IsAuthenticated {
		return app_error.Unauthenticated("sign in to join event rooms")
	}

	role, appErr := d.Rooms.ComputeEventRole(ctx, payload.EventID, client.UserID)
	if appErr != nil {
		return appErr
	}
	client.SetEventRole(payload.EventID, role)

	rooms, appErr := d.Rooms.ListEventRooms(ctx, payload.EventID, client.UserID)
	if appErr != nil {
		return appErr
	}

	for _, room := range rooms {
		resp, appErr := d.Rooms.JoinRoom(ctx, room.RoomID, client.UserID)
		if appErr != nil {
			// Private or otherwise gated rooms are skipped silently;
			// bulk join is best-effort per room.
			continue
		}
		client.MarkJoined(room.RoomID, payload.EventID)
		d.Hub.Register(room.RoomID, client)
		client.SendMessage(NewOutgoingMessage(chat_dto.WSRoomJoined, room.RoomID, map[string]any{
			"room":       resp.Room,
			"event_role": resp.EventRole,
		}))
	}
	return nil
}

func (d *Dispatcher) handleJoinRoom(ctx context.Context, client *Client, data json.RawMessage) *app_error.AppError {
	payload, appErr := decode[chat_dto.WSJoinRoomPayload](d, data)
	if appErr != nil {
		return appErr
	}

	resp, appErr := d.Rooms.JoinRoom(ctx, payload.RoomID, client.UserID)
	if appErr != nil {
		return appErr
	}

	if payload.DisplayName != "" {
		client.DisplayName = payload.DisplayName
	}
	client.SetEventRole(resp.Room.EventID, resp.EventRole)
	client.MarkJoined(payload.RoomID, resp.Room.EventID)
	d.Hub.Register(payload.RoomID, client)

	client.SendMessage(NewOutgoingMessage(chat_dto.WSRoomJoined, payload.RoomID, map[string]any{
		"room":       resp.Room,
		"event_role": resp.EventRole,
	}))

	msg := NewOutgoingMessage(chat_dto.WSRoomJoined, payload.RoomID, map[string]any{
		"user_id":      client.UserID,
		"username":     client.Username,
		"display_name": client.DisplayName,
	})
	msg.SenderID = client.UserID
	d.Hub.BroadcastToRoomExcept(payload.RoomID, msg, client)
	return nil
}

func (d *Dispatcher) handleLeaveRoom(_ context.Context, client *Client, data json.RawMessage) *app_error.AppError {
	payload, appErr := decode[chat_dto.WSLeaveRoomPayload](d, data)
	if appErr != nil {
		return appErr
	}

	// Leaving is a live-subscription operation; persisted membership and
	// read markers survive for the next session.
	d.Hub.Unregister(payload.RoomID, client)
	client.ForgetRoom(payload.RoomID)

	client.SendMessage(NewOutgoingMessage(chat_dto.WSRoomLeft, payload.RoomID, nil))

	msg := NewOutgoingMessage(chat_dto.WSRoomLeft, payload.RoomID, map[string]any{
		"user_id": client.UserID,
	})
	msg.SenderID = client.UserID
	d.Hub.BroadcastToRoomExcept(payload.RoomID, msg, client)
	return nil
}

func (d *Dispatcher) handleSendMessage(ctx context.Context, client *Client, data json.RawMessage) *app_error.AppError {
	payload, appErr := decode[chat_dto.WSSendMessagePayload](d, data)
	if appErr != nil {
		return appErr
	}
	if !client.IsAuthenticated {
		return app_error.Unauthenticated("sign in to send messages")
	}
	if !client.HasJoined(payload.RoomID) {
		return app_error.Forbidden("join the room on this connection before sending messages")
	}

	resp, appErr := d.Chat.SendMessage(ctx, payload.RoomID, client.UserID, payload.SendMessageRequest)
	if appErr != nil {
		return appErr
	}

	msg := NewOutgoingMessage(chat_dto.WSNewMessage, payload.RoomID, map[string]any{
		"message": resp,
	})
	msg.SenderID = client.UserID
	d.Hub.BroadcastToRoom(payload.RoomID, msg)
	return nil
}

func (d *Dispatcher) handleEditMessage(ctx context.Context, client *Client, data json.RawMessage) *app_error.AppError {
	payload, appErr := decode[chat_dto.WSEditMessagePayload](d, data)
	if appErr != nil {
		return appErr
	}

	resp, appErr := d.Chat.EditMessage(ctx, payload.MessageID, client.UserID, payload.NewContent)
	if appErr != nil {
		return appErr
	}

	msg := NewOutgoingMessage(chat_dto.WSMessageEdited, resp.RoomID, map[string]any{
		"message": resp,
	})
	msg.SenderID = client.UserID
	d.Hub.BroadcastToRoom(resp.RoomID, msg)
	return nil
}

func (d *Dispatcher) handleDeleteMessage(ctx context.Context, client *Client, data json.RawMessage) *app_error.AppError {
	payload, appErr := decode[chat_dto.WSDeleteMessagePayload](d, data)
	if appErr != nil {
		return appErr
	}

	resp, appErr := d.Chat.DeleteMessage(ctx, payload.MessageID, client.UserID, payload.Permanent)
	if appErr != nil {
		return appErr
	}

	if payload.Permanent {
		// Permanent removals announce only the id, and only to the room
		// the message lived in.
		msg := NewOutgoingMessage(chat_dto.WSMessageDeleted, resp.RoomID, map[string]any{
			"message_id": payload.MessageID,
		})
		msg.SenderID = client.UserID
		d.Hub.BroadcastToRoom(resp.RoomID, msg)
		return nil
	}

	msg := NewOutgoingMessage(chat_dto.WSMessageUpdated, resp.RoomID, map[string]any{
		"message": resp,
	})
	msg.SenderID = client.UserID
	d.Hub.BroadcastToRoom(resp.RoomID, msg)
	return nil
}

func (d *Dispatcher) handleAddReaction(ctx context.Context, client *Client, data json.RawMessage) *app_error.AppError {
	payload, appErr := decode[chat_dto.WSReactionPayload](d, data)
	if appErr != nil {
		return appErr
	}

	roomID, appErr := d.Chat.AddReaction(ctx, payload.MessageID, client.UserID, payload.Emoji)
	if appErr != nil {
		return appErr
	}

	msg := NewOutgoingMessage(chat_dto.WSReactionAdded, roomID, map[string]any{
		"message_id": payload.MessageID,
		"user_id":    client.UserID,
		"emoji":      payload.Emoji,
	})
	msg.SenderID = client.UserID
	d.Hub.BroadcastToRoom(roomID, msg)
	return nil
}

func (d *Dispatcher) handleRemoveReaction(ctx context.Context, client *Client, data json.RawMessage) *app_error.AppError {
	payload, appErr := decode[chat_dto.WSReactionPayload](d, data)
	if appErr != nil {
		return appErr
	}

	roomID, appErr := d.Chat.RemoveReaction(ctx, payload.MessageID, client.UserID, payload.Emoji)
	if appErr != nil {
		return appErr
	}

	msg := NewOutgoingMessage(chat_dto.WSReactionRemoved, roomID, map[string]any{
		"message_id": payload.MessageID,
		"user_id":    client.UserID,
		"emoji":      payload.Emoji,
	})
	msg.SenderID = client.UserID
	d.Hub.BroadcastToRoom(roomID, msg)
	return nil
}

// handleTyping is pure broadcast: nothing is persisted and the sender is
// excluded from the fan-out.
func (d *Dispatcher) handleTyping(client *Client, data json.RawMessage, outType string) *app_error.AppError {
	payload, appErr := decode[chat_dto.WSTypingPayload](d, data)
	if appErr != nil {
		return appErr
	}
	if !client.IsAuthenticated {
		return app_error.Unauthenticated("sign in to send typing signals")
	}
	if !client.HasJoined(payload.RoomID) {
		return app_error.Forbidden("join the room on this connection first")
	}

	msg := NewOutgoingMessage(outType, payload.RoomID, map[string]any{
		"user_id":  client.UserID,
		"username": client.Username,
	})
	msg.SenderID = client.UserID
	d.Hub.BroadcastToRoomExcept(payload.RoomID, msg, client)
	return nil
}

func (d *Dispatcher) handleMarkAsRead(ctx context.Context, client *Client, data json.RawMessage) *app_error.AppError {
	payload, appErr := decode[chat_dto.WSMarkAsReadPayload](d, data)
	if appErr != nil {
		return appErr
	}

	readAt, appErr := d.Presence.MarkAsRead(ctx, payload.RoomID, client.UserID)
	if appErr != nil {
		return appErr
	}

	msg := NewOutgoingMessage(chat_dto.WSUserRead, payload.RoomID, map[string]any{
		"user_id":      client.UserID,
		"last_read_at": readAt,
	})
	msg.SenderID = client.UserID
	d.Hub.BroadcastToRoomExcept(payload.RoomID, msg, client)
	return nil
}

func (d *Dispatcher) handleGetUnreadCounts(ctx context.Context, client *Client) *app_error.AppError {
	resp, appErr := d.Presence.UnreadCounts(ctx, client.UserID)
	if appErr != nil {
		return appErr
	}

	client.SendMessage(NewOutgoingMessage(chat_dto.WSUnreadCounts, "", map[string]any{
		"counts": resp.Counts,
		"total":  resp.Total,
	}))
	return nil
}
