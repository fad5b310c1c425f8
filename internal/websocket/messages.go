package websocket

import "time"

// OutgoingMessage is the wire envelope for every server -> client frame.
type OutgoingMessage struct {
	Type      string         `json:"type"`
	RoomID    string         `json:"room_id,omitempty"`
	SenderID  string         `json:"sender_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

func NewOutgoingMessage(msgType, roomID string, data map[string]any) OutgoingMessage {
	return OutgoingMessage{
		Type:      msgType,
		RoomID:    roomID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

func NewSystemMessage(roomID, content string, data map[string]any) OutgoingMessage {
	if data == nil {
		data = map[string]any{}
	}
	data["content"] = content
	return OutgoingMessage{
		Type:      "system",
		RoomID:    roomID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

func NewErrorMessage(message string) OutgoingMessage {
	return OutgoingMessage{
		Type: "error",
		Data: map[string]any{
			"message": message,
		},
		Timestamp: time.Now().Unix(),
	}
}
