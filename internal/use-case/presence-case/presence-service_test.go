package presence_service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
	message_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/message"
)

type fakeRoomRepo struct {
	participants map[string]*entity.RoomParticipant
}

func pkey(roomID, userID string) string { return roomID + "|" + userID }

func (f *fakeRoomRepo) CreateRoom(_ context.Context, _ *entity.ChatRoom, _ *entity.RoomParticipant) *app_error.AppError {
	return nil
}

func (f *fakeRoomRepo) FindRoomByID(_ context.Context, _ string) (*entity.ChatRoom, *app_error.AppError) {
	return nil, app_error.NotFound("room not found", "room-id")
}

func (f *fakeRoomRepo) FindActiveRoomsByEvent(_ context.Context, _ string) ([]*entity.ChatRoom, *app_error.AppError) {
	return nil, nil
}

func (f *fakeRoomRepo) FindRoomsForParticipant(_ context.Context, _, _ string) ([]*entity.ChatRoom, *app_error.AppError) {
	return nil, nil
}

func (f *fakeRoomRepo) DeactivateRoom(_ context.Context, _ string) *app_error.AppError { return nil }

func (f *fakeRoomRepo) AddParticipant(_ context.Context, p *entity.RoomParticipant) *app_error.AppError {
	f.participants[pkey(p.RoomID, p.UserID)] = p
	return nil
}

func (f *fakeRoomRepo) FindParticipant(_ context.Context, roomID, userID string) (*entity.RoomParticipant, *app_error.AppError) {
	return f.participants[pkey(roomID, userID)], nil
}

func (f *fakeRoomRepo) ListParticipants(_ context.Context, _ string) ([]*entity.RoomParticipant, *app_error.AppError) {
	return nil, nil
}

func (f *fakeRoomRepo) ListParticipations(_ context.Context, userID string) ([]*entity.RoomParticipant, *app_error.AppError) {
	var out []*entity.RoomParticipant
	for _, p := range f.participants {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) MarkRead(_ context.Context, roomID, userID string, at time.Time) *app_error.AppError {
	p, ok := f.participants[pkey(roomID, userID)]
	if !ok {
		return app_error.NotFound("participant not found", "participant")
	}
	p.LastReadAt = at
	return nil
}

func (f *fakeRoomRepo) SetParticipantModeration(_ context.Context, _, _ string, _, _ *bool) *app_error.AppError {
	return nil
}

func (f *fakeRoomRepo) UpdateRoomLastMessage(_ context.Context, _, _ string, _ time.Time) *app_error.AppError {
	return nil
}

type fakeMessageRepo struct {
	messages []*entity.Message
}

func (f *fakeMessageRepo) Insert(_ context.Context, msg *entity.Message) (bson.ObjectID, *app_error.AppError) {
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	f.messages = append(f.messages, msg)
	return msg.ID, nil
}

func (f *fakeMessageRepo) FindByID(_ context.Context, _ string) (*entity.Message, *app_error.AppError) {
	return nil, app_error.NotFound("message not found", "message-id")
}

func (f *fakeMessageRepo) List(_ context.Context, _ string, _ message_repo.ListFilter) ([]*entity.Message, *app_error.AppError) {
	return nil, nil
}

func (f *fakeMessageRepo) UpdateContent(_ context.Context, _ bson.ObjectID, _ string, _ time.Time) *app_error.AppError {
	return nil
}

func (f *fakeMessageRepo) SoftDelete(_ context.Context, _ bson.ObjectID, _ time.Time) *app_error.AppError {
	return nil
}

func (f *fakeMessageRepo) DeletePermanent(_ context.Context, _ bson.ObjectID) *app_error.AppError {
	return nil
}

func (f *fakeMessageRepo) ReplaceReaction(_ context.Context, _ bson.ObjectID, _ entity.Reaction) *app_error.AppError {
	return nil
}

func (f *fakeMessageRepo) PullReaction(_ context.Context, _ bson.ObjectID, _, _ string) *app_error.AppError {
	return nil
}

func (f *fakeMessageRepo) CountUnread(_ context.Context, roomID, userID string, since time.Time) (int64, *app_error.AppError) {
	var count int64
	for _, msg := range f.messages {
		if msg.RoomID != roomID || msg.IsDeleted || !msg.CreatedAt.After(since) {
			continue
		}
		if msg.Sender() == userID {
			continue
		}
		count++
	}
	return count, nil
}

func seedMessage(repo *fakeMessageRepo, roomID, sender string, at time.Time) {
	var senderID *string
	if sender != "" {
		senderID = &sender
	}
	repo.Insert(context.Background(), &entity.Message{
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   "m",
		CreatedAt: at,
	})
}

func TestMarkAsRead(t *testing.T) {
	roomRepo := &fakeRoomRepo{participants: map[string]*entity.RoomParticipant{}}
	roomRepo.AddParticipant(context.Background(), &entity.RoomParticipant{
		RoomID: "room-1", UserID: "alice", JoinedAt: time.Now(),
	})
	svc := NewPresenceService(roomRepo, &fakeMessageRepo{})

	before := time.Now()
	at, appErr := svc.MarkAsRead(context.Background(), "room-1", "alice")
	require.Nil(t, appErr)
	assert.False(t, at.Before(before))
	assert.WithinDuration(t, at, roomRepo.participants[pkey("room-1", "alice")].LastReadAt, 0)
}

func TestMarkAsRead_AnonymousRejected(t *testing.T) {
	svc := NewPresenceService(&fakeRoomRepo{participants: map[string]*entity.RoomParticipant{}}, &fakeMessageRepo{})

	_, appErr := svc.MarkAsRead(context.Background(), "room-1", "")
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Code)
}

func TestMarkAsRead_NotAParticipant(t *testing.T) {
	svc := NewPresenceService(&fakeRoomRepo{participants: map[string]*entity.RoomParticipant{}}, &fakeMessageRepo{})

	_, appErr := svc.MarkAsRead(context.Background(), "room-1", "stranger")
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestUnreadCounts(t *testing.T) {
	ctx := context.Background()
	roomRepo := &fakeRoomRepo{participants: map[string]*entity.RoomParticipant{}}
	messageRepo := &fakeMessageRepo{}

	readAt := time.Now().Add(-time.Hour)
	roomRepo.AddParticipant(ctx, &entity.RoomParticipant{
		RoomID: "room-1", UserID: "alice",
		JoinedAt: readAt.Add(-time.Hour), LastReadAt: readAt,
	})
	roomRepo.AddParticipant(ctx, &entity.RoomParticipant{
		RoomID: "room-2", UserID: "alice",
		JoinedAt: readAt.Add(-time.Hour), LastReadAt: readAt,
	})
	roomRepo.AddParticipant(ctx, &entity.RoomParticipant{
		RoomID: "room-1", UserID: "bob",
		JoinedAt: readAt, LastReadAt: readAt,
	})

	// room-1: two unread from bob, one already-read, one of alice's own.
	seedMessage(messageRepo, "room-1", "bob", readAt.Add(-time.Minute))
	seedMessage(messageRepo, "room-1", "bob", readAt.Add(time.Minute))
	seedMessage(messageRepo, "room-1", "bob", readAt.Add(2*time.Minute))
	seedMessage(messageRepo, "room-1", "alice", readAt.Add(3*time.Minute))
	// room-2: one unread system message.
	seedMessage(messageRepo, "room-2", "", readAt.Add(time.Minute))

	svc := NewPresenceService(roomRepo, messageRepo)
	resp, appErr := svc.UnreadCounts(ctx, "alice")
	require.Nil(t, appErr)
	require.Len(t, resp.Counts, 2)

	byRoom := map[string]int64{}
	for _, c := range resp.Counts {
		byRoom[c.RoomID] = c.Count
	}
	assert.Equal(t, int64(2), byRoom["room-1"], "own messages never count as unread")
	assert.Equal(t, int64(1), byRoom["room-2"])
	assert.Equal(t, int64(3), resp.Total)
}

func TestUnreadCounts_ZeroReadMarkerFallsBackToJoin(t *testing.T) {
	ctx := context.Background()
	roomRepo := &fakeRoomRepo{participants: map[string]*entity.RoomParticipant{}}
	messageRepo := &fakeMessageRepo{}

	joined := time.Now().Add(-time.Hour)
	roomRepo.AddParticipant(ctx, &entity.RoomParticipant{
		RoomID: "room-1", UserID: "alice", JoinedAt: joined,
	})

	// History before the join never counts against a fresh member.
	seedMessage(messageRepo, "room-1", "bob", joined.Add(-time.Minute))
	seedMessage(messageRepo, "room-1", "bob", joined.Add(time.Minute))

	svc := NewPresenceService(roomRepo, messageRepo)
	resp, appErr := svc.UnreadCounts(ctx, "alice")
	require.Nil(t, appErr)
	require.Len(t, resp.Counts, 1)
	assert.Equal(t, int64(1), resp.Counts[0].Count)
}

func TestUnreadCounts_AnonymousRejected(t *testing.T) {
	svc := NewPresenceService(&fakeRoomRepo{participants: map[string]*entity.RoomParticipant{}}, &fakeMessageRepo{})

	_, appErr := svc.UnreadCounts(context.Background(), "")
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Code)
}
