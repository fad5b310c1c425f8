package chat_dto

import "encoding/json"

// Inbound websocket frames are an envelope of event type plus a
// type-specific payload.
type WSIncomingMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound event types (client -> server).
const (
	WSJoinEventRooms  = "join_event_rooms"
	WSJoinRoom        = "join_room"
	WSLeaveRoom       = "leave_room"
	WSSendMessage     = "send_message"
	WSEditMessage     = "edit_message"
	WSDeleteMessage   = "delete_message"
	WSAddReaction     = "add_reaction"
	WSRemoveReaction  = "remove_reaction"
	WSTypingStart     = "typing_start"
	WSTypingStop      = "typing_stop"
	WSMarkAsRead      = "mark_as_read"
	WSGetUnreadCounts = "get_unread_counts"
)

// Outbound event types (server -> client).
const (
	WSRoomJoined        = "room_joined"
	WSRoomLeft          = "room_left"
	WSNewMessage        = "new_message"
	WSMessageEdited     = "message_edited"
	WSMessageDeleted    = "message_deleted"
	WSMessageUpdated    = "message_updated"
	WSReactionAdded     = "reaction_added"
	WSReactionRemoved   = "reaction_removed"
	WSUserTyping        = "user_typing"
	WSUserStoppedTyping = "user_stopped_typing"
	WSUserRead          = "user_read"
	WSUnreadCounts      = "unread_counts"
	WSNewChatRoom       = "new_chat_room"
	WSError             = "error"
)

type WSJoinEventRoomsPayload struct {
	EventID string `json:"event_id" validate:"required"`
}

type WSJoinRoomPayload struct {
	RoomID      string `json:"room_id" validate:"required,uuid"`
	DisplayName string `json:"display_name,omitempty"`
}

type WSLeaveRoomPayload struct {
	RoomID string `json:"room_id" validate:"required,uuid"`
}

type WSSendMessagePayload struct {
	RoomID string `json:"room_id" validate:"required,uuid"`
	SendMessageRequest
}

type WSEditMessagePayload struct {
	MessageID  string `json:"message_id" validate:"required,objectID"`
	NewContent string `json:"new_content" validate:"required"`
}

type WSDeleteMessagePayload struct {
	MessageID string `json:"message_id" validate:"required,objectID"`
	Permanent bool   `json:"permanent,omitempty"`
}

type WSReactionPayload struct {
	MessageID string `json:"message_id" validate:"required,objectID"`
	Emoji     string `json:"emoji" validate:"required,max=16"`
}

type WSTypingPayload struct {
	RoomID string `json:"room_id" validate:"required,uuid"`
}

type WSMarkAsReadPayload struct {
	RoomID string `json:"room_id" validate:"required,uuid"`
}
