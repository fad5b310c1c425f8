package message_repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
)

type ListFilter struct {
	Limit  int
	Before *time.Time
	After  *time.Time
	Page   int
}

type MessageRepoContract interface {
	Insert(ctx context.Context, msg *entity.Message) (bson.ObjectID, *app_error.AppError)
	FindByID(ctx context.Context, messageID string) (*entity.Message, *app_error.AppError)
	List(ctx context.Context, roomID string, filter ListFilter) ([]*entity.Message, *app_error.AppError)

	UpdateContent(ctx context.Context, id bson.ObjectID, content string, editedAt time.Time) *app_error.AppError
	SoftDelete(ctx context.Context, id bson.ObjectID, deletedAt time.Time) *app_error.AppError
	DeletePermanent(ctx context.Context, id bson.ObjectID) *app_error.AppError

	// ReplaceReaction atomically removes any prior reaction by the same
	// user and appends the new one; concurrent calls settle on exactly
	// one entry, whichever applied last.
	ReplaceReaction(ctx context.Context, id bson.ObjectID, reaction entity.Reaction) *app_error.AppError
	PullReaction(ctx context.Context, id bson.ObjectID, userID, emoji string) *app_error.AppError

	CountUnread(ctx context.Context, roomID, userID string, since time.Time) (int64, *app_error.AppError)
}
