package room_repo

import (
	"context"
	"time"

	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
)

type RoomRepoContract interface {
	CreateRoom(ctx context.Context, room *entity.ChatRoom, creator *entity.RoomParticipant) *app_error.AppError
	FindRoomByID(ctx context.Context, roomID string) (*entity.ChatRoom, *app_error.AppError)
	FindActiveRoomsByEvent(ctx context.Context, eventID string) ([]*entity.ChatRoom, *app_error.AppError)
	FindRoomsForParticipant(ctx context.Context, eventID, userID string) ([]*entity.ChatRoom, *app_error.AppError)
	DeactivateRoom(ctx context.Context, roomID string) *app_error.AppError

	// AddParticipant is idempotent: re-join of an existing (room, user)
	// pair is a no-op backed by the unique index.
	AddParticipant(ctx context.Context, p *entity.RoomParticipant) *app_error.AppError
	// FindParticipant returns (nil, nil) when no record exists.
	FindParticipant(ctx context.Context, roomID, userID string) (*entity.RoomParticipant, *app_error.AppError)
	ListParticipants(ctx context.Context, roomID string) ([]*entity.RoomParticipant, *app_error.AppError)
	ListParticipations(ctx context.Context, userID string) ([]*entity.RoomParticipant, *app_error.AppError)
	MarkRead(ctx context.Context, roomID, userID string, at time.Time) *app_error.AppError
	SetParticipantModeration(ctx context.Context, roomID, userID string, muted, banned *bool) *app_error.AppError

	UpdateRoomLastMessage(ctx context.Context, roomID, messageID string, at time.Time) *app_error.AppError
}
