package presence_service

import (
	"context"
	"time"

	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
)

// PresenceServiceContract owns persisted read markers and on-demand
// unread counts. Typing indicators never reach this layer; they are
// pure broadcast.
type PresenceServiceContract interface {
	MarkAsRead(ctx context.Context, roomID, userID string) (time.Time, *app_error.AppError)
	UnreadCounts(ctx context.Context, userID string) (*chat_dto.UnreadCountsResponse, *app_error.AppError)
}
