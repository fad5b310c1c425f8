package worker_handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	room_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/room"
	chat_service "github.com/akashyap25/eazy-event-server-sub000/internal/use-case/chat-case"
	"github.com/akashyap25/eazy-event-server-sub000/internal/utils/types"
	"github.com/akashyap25/eazy-event-server-sub000/internal/websocket"
)

// WorkerHandler executes queued broadcast jobs against the live hub.
// Delivery is best-effort: subscribers who are offline simply miss the
// frame and catch up through history and unread counts.
type WorkerHandler struct {
	Hub      *websocket.Hub
	RoomRepo room_repo.RoomRepoContract
	Chat     chat_service.ChatServiceContract
}

func NewWorkerHandler(hub *websocket.Hub, roomRepo room_repo.RoomRepoContract, chat chat_service.ChatServiceContract) *WorkerHandler {
	return &WorkerHandler{
		Hub:      hub,
		RoomRepo: roomRepo,
		Chat:     chat,
	}
}

// HandleBroadcastRoomEvent relays a frame that an HTTP handler already
// rendered. The write it describes is committed; this only fans it out.
func (h *WorkerHandler) HandleBroadcastRoomEvent(payload json.RawMessage) error {
	var p types.RoomEventBroadcastPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("broadcast_room_event: %w", err)
	}

	msg := websocket.NewOutgoingMessage(p.EventType, p.RoomID, p.Data)
	msg.SenderID = p.SenderID
	h.Hub.BroadcastToRoom(p.RoomID, msg)
	return nil
}

// HandleNotifyRoomCreated tells everyone connected to an event's other
// rooms that a new room opened.
func (h *WorkerHandler) HandleNotifyRoomCreated(ctx context.Context, payload json.RawMessage) error {
	var p types.RoomCreatedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("notify_room_created: %w", err)
	}

	rooms, appErr := h.RoomRepo.FindActiveRoomsByEvent(ctx, p.EventID)
	if appErr != nil {
		return fmt.Errorf("notify_room_created: %s", appErr.Message)
	}

	roomIDs := make([]string, 0, len(rooms))
	for _, room := range rooms {
		if room.ID.String() == p.RoomID {
			continue
		}
		roomIDs = append(roomIDs, room.ID.String())
	}

	h.Hub.BroadcastToRooms(roomIDs, websocket.NewOutgoingMessage(chat_dto.WSNewChatRoom, "", map[string]any{
		"room": p.Room,
	}))
	return nil
}

// HandleEventAnnouncement persists a system message into every active
// room of the event and broadcasts each one.
func (h *WorkerHandler) HandleEventAnnouncement(ctx context.Context, payload json.RawMessage) error {
	var p types.AnnouncementPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("event_announcement: %w", err)
	}

	rooms, appErr := h.RoomRepo.FindActiveRoomsByEvent(ctx, p.EventID)
	if appErr != nil {
		return fmt.Errorf("event_announcement: %s", appErr.Message)
	}

	for _, room := range rooms {
		roomID := room.ID.String()
		resp, appErr := h.Chat.SendSystemMessage(ctx, roomID, p.Content)
		if appErr != nil {
			// Partial fan-out is acceptable; the retry re-runs all rooms,
			// so a duplicate in already-covered rooms beats a lost
			// announcement.
			log.Error().Str("roomID", roomID).Str("reason", appErr.Message).Msg("announcement skipped a room")
			continue
		}

		msg := websocket.NewOutgoingMessage(chat_dto.WSNewMessage, roomID, map[string]any{
			"message": resp,
		})
		h.Hub.BroadcastToRoom(roomID, msg)
	}
	return nil
}
