package message_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
)

type MessageRepo struct {
	Collection *mongo.Collection
}

func NewMessageRepo(collection *mongo.Collection) MessageRepoContract {
	return &MessageRepo{Collection: collection}
}

func (r *MessageRepo) Insert(ctx context.Context, msg *entity.Message) (bson.ObjectID, *app_error.AppError) {
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	if _, err := r.Collection.InsertOne(ctx, msg); err != nil {
		return bson.NilObjectID, app_error.Internal(fmt.Sprintf("failed to create message: %v", err), "mongo")
	}
	return msg.ID, nil
}

func (r *MessageRepo) FindByID(ctx context.Context, messageID string) (*entity.Message, *app_error.AppError) {
	objID, err := bson.ObjectIDFromHex(messageID)
	if err != nil {
		return nil, app_error.InvalidInput(fmt.Sprintf("invalid message ID: %v", err), "message-id")
	}

	var message entity.Message
	if err := r.Collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&message); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NotFound("message not found", "message-id")
		}
		return nil, app_error.Internal(fmt.Sprintf("failed to fetch message: %v", err), "mongo")
	}

	return &message, nil
}

func (r *MessageRepo) List(ctx context.Context, roomID string, filter ListFilter) ([]*entity.Message, *app_error.AppError) {
	query := bson.M{"room_id": roomID}

	created := bson.M{}
	if filter.Before != nil {
		created["$lt"] = *filter.Before
	}
	if filter.After != nil {
		created["$gt"] = *filter.After
	}
	if len(created) > 0 {
		query["created_at"] = created
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	if filter.Page > 1 {
		opts = opts.SetSkip(int64((filter.Page - 1) * limit))
	}

	cur, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, app_error.Internal(fmt.Sprintf("failed to fetch messages: %v", err), "mongo")
	}
	defer cur.Close(ctx)

	var messages []*entity.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, app_error.Internal(fmt.Sprintf("failed to decode messages: %v", err), "mongo")
	}

	// Reverse into ascending order (oldest to newest).
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *MessageRepo) UpdateContent(ctx context.Context, id bson.ObjectID, content string, editedAt time.Time) *app_error.AppError {
	update := bson.M{
		"$set": bson.M{
			"content":   content,
			"is_edited": true,
			"edited_at": editedAt,
		},
	}

	result, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id, "is_deleted": false}, update)
	if err != nil {
		return app_error.Internal("failed to update message", "mongo")
	}
	if result.MatchedCount == 0 {
		return app_error.NotFound("message not found or has been deleted", "message-id")
	}

	return nil
}

func (r *MessageRepo) SoftDelete(ctx context.Context, id bson.ObjectID, deletedAt time.Time) *app_error.AppError {
	update := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"deleted_at": deletedAt,
		},
	}

	result, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return app_error.Internal("failed to delete message", "mongo")
	}
	if result.MatchedCount == 0 {
		return app_error.NotFound("message not found", "message-id")
	}

	return nil
}

func (r *MessageRepo) DeletePermanent(ctx context.Context, id bson.ObjectID) *app_error.AppError {
	result, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return app_error.Internal("failed to remove message", "mongo")
	}
	if result.DeletedCount == 0 {
		return app_error.NotFound("message not found", "message-id")
	}

	return nil
}

// ReplaceReaction filters out the user's prior entry and appends the new
// one in a single pipeline update, so there is never a window with two
// reactions from the same user.
func (r *MessageRepo) ReplaceReaction(ctx context.Context, id bson.ObjectID, reaction entity.Reaction) *app_error.AppError {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"reactions": bson.M{
				"$concatArrays": bson.A{
					bson.M{"$filter": bson.M{
						"input": bson.M{"$ifNull": bson.A{"$reactions", bson.A{}}},
						"as":    "r",
						"cond":  bson.M{"$ne": bson.A{"$$r.user_id", reaction.UserID}},
					}},
					bson.A{bson.M{
						"user_id":    reaction.UserID,
						"emoji":      reaction.Emoji,
						"reacted_at": reaction.ReactedAt,
					}},
				},
			},
		}}},
	}

	result, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, pipeline)
	if err != nil {
		return app_error.Internal("failed to add reaction", "mongo")
	}
	if result.MatchedCount == 0 {
		return app_error.NotFound("message not found", "message-id")
	}

	return nil
}

func (r *MessageRepo) PullReaction(ctx context.Context, id bson.ObjectID, userID, emoji string) *app_error.AppError {
	update := bson.M{
		"$pull": bson.M{
			"reactions": bson.M{"user_id": userID, "emoji": emoji},
		},
	}

	result, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return app_error.Internal("failed to remove reaction", "mongo")
	}
	if result.MatchedCount == 0 {
		return app_error.NotFound("message not found", "message-id")
	}

	return nil
}

func (r *MessageRepo) CountUnread(ctx context.Context, roomID, userID string, since time.Time) (int64, *app_error.AppError) {
	filter := bson.M{
		"room_id":    roomID,
		"created_at": bson.M{"$gt": since},
		"sender_id":  bson.M{"$ne": userID},
		"is_deleted": false,
	}

	count, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, app_error.Internal("failed to count unread messages", "mongo")
	}

	return count, nil
}
