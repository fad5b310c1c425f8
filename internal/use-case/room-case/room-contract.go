package room_service

import (
	"context"

	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
)

// RoomServiceContract is the room directory and membership authority:
// it resolves rooms for an event, derives the caller's event role, and
// gates joining. Live subscription management stays with the hub.
type RoomServiceContract interface {
	ComputeEventRole(ctx context.Context, eventID, userID string) (string, *app_error.AppError)
	ListEventRooms(ctx context.Context, eventID, userID string) ([]chat_dto.RoomResponse, *app_error.AppError)
	GetRoom(ctx context.Context, roomID string) (*chat_dto.RoomResponse, *app_error.AppError)
	JoinRoom(ctx context.Context, roomID, userID string) (*chat_dto.JoinRoomResponse, *app_error.AppError)
	CreateRoom(ctx context.Context, eventID, creatorID string, req chat_dto.CreateRoomRequest) (*chat_dto.RoomResponse, *app_error.AppError)
	ModerateParticipant(ctx context.Context, roomID, actorID string, req chat_dto.ModerateParticipantRequest) *app_error.AppError
}
