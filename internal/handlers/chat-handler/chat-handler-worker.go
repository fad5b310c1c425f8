package chat_handler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akashyap25/eazy-event-server-sub000/internal/queue"
	"github.com/akashyap25/eazy-event-server-sub000/internal/utils/types"
)

// broadcastRoomEvent hands the fan-out to the worker pool. The HTTP
// response has already been written by the time this runs; a queue
// failure costs the live broadcast, never the persisted write.
func (h *ChatHandler) broadcastRoomEvent(eventType, roomID, senderID string, data map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	job := queue.NewJob(types.JobBroadcastRoomEvent, types.RoomEventBroadcastPayload{
		RoomID:    roomID,
		SenderID:  senderID,
		EventType: eventType,
		Data:      data,
	})
	if err := h.Producer.Enqueue(ctx, job); err != nil {
		log.Error().Err(err).Str("roomID", roomID).Str("event", eventType).Msg("failed to queue room broadcast")
	}
}
