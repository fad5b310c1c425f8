package user_repo

import (
	"context"

	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
)

// UserRepoContract is the identity directory boundary: resolve ids to
// user records. Credential management lives outside this subsystem.
type UserRepoContract interface {
	FindUserByID(ctx context.Context, userID string) (*entity.User, *app_error.AppError)
}
