package event_repo

import (
	"context"

	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
)

// EventRepoContract is the read-only boundary to the event directory and
// order ledger. Nothing here mutates event state.
type EventRepoContract interface {
	FindEventByID(ctx context.Context, eventID string) (*entity.Event, *app_error.AppError)
	IsCollaborator(ctx context.Context, eventID, userID string) (bool, *app_error.AppError)
	HasCompletedOrder(ctx context.Context, eventID, userID string) (bool, *app_error.AppError)
}
