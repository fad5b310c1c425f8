package types

// Job types consumed by the worker pool. The stateless HTTP surface
// enqueues these after a successful write so its callers get the same
// fan-out as socket callers.
const (
	JobBroadcastRoomEvent = "broadcast_room_event"
	JobNotifyRoomCreated  = "notify_room_created"
	JobEventAnnouncement  = "event_announcement"
)

// RoomEventBroadcastPayload carries one already-rendered room-scoped
// frame: the event type and data mirror the socket surface's outbound
// vocabulary.
type RoomEventBroadcastPayload struct {
	RoomID    string         `json:"room_id"`
	SenderID  string         `json:"sender_id,omitempty"`
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
}

// RoomCreatedPayload announces a new room to everyone connected to the
// event's existing rooms.
type RoomCreatedPayload struct {
	EventID string         `json:"event_id"`
	RoomID  string         `json:"room_id"`
	Room    map[string]any `json:"room"`
}

// AnnouncementPayload fans a system message out into every active room
// of an event.
type AnnouncementPayload struct {
	EventID  string `json:"event_id"`
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
}
