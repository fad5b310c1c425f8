package room_repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database keeps every connection of this test on
	// the same store while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "in-memory sqlite should open")

	require.NoError(t, db.AutoMigrate(&entity.ChatRoom{}, &entity.RoomParticipant{}, &entity.Event{}, &entity.EventCollaborator{}, &entity.Order{}, &entity.User{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedRoom(t *testing.T, repo RoomRepoContract, eventID, creatorID string) *entity.ChatRoom {
	t.Helper()

	now := time.Now()
	room := &entity.ChatRoom{
		ID:           uuid.New(),
		EventID:      eventID,
		Name:         "General",
		RoomType:     entity.RoomTypeGeneral,
		IsActive:     true,
		LastActivity: now,
		CreatedBy:    creatorID,
	}
	creator := &entity.RoomParticipant{
		UserID:     creatorID,
		Role:       entity.ParticipantRoleAdmin,
		JoinedAt:   now,
		LastReadAt: now,
	}
	require.Nil(t, repo.CreateRoom(context.Background(), room, creator))
	return room
}

func TestCreateRoom_CreatorBecomesAdmin(t *testing.T) {
	repo := NewRoomRepo(testDB(t))
	ctx := context.Background()

	room := seedRoom(t, repo, "event-1", "organizer")

	participant, appErr := repo.FindParticipant(ctx, room.ID.String(), "organizer")
	require.Nil(t, appErr)
	require.NotNil(t, participant, "creator should be seeded as a participant")
	assert.Equal(t, entity.ParticipantRoleAdmin, participant.Role)
	assert.True(t, participant.CanModerate())
}

func TestAddParticipant_JoinTwiceKeepsOneRow(t *testing.T) {
	db := testDB(t)
	repo := NewRoomRepo(db)
	ctx := context.Background()

	room := seedRoom(t, repo, "event-1", "organizer")

	now := time.Now()
	for i := 0; i < 2; i++ {
		appErr := repo.AddParticipant(ctx, &entity.RoomParticipant{
			RoomID:     room.ID.String(),
			UserID:     "attendee-1",
			Role:       entity.ParticipantRoleMember,
			JoinedAt:   now,
			LastReadAt: now,
		})
		require.Nil(t, appErr, "repeated join must be a no-op, not an error")
	}

	var count int64
	require.NoError(t, db.Model(&entity.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", room.ID.String(), "attendee-1").
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "the unique (room, user) index must keep a single row")
}

func TestAddParticipant_ConflictPreservesOriginalRole(t *testing.T) {
	repo := NewRoomRepo(testDB(t))
	ctx := context.Background()

	room := seedRoom(t, repo, "event-1", "organizer")
	now := time.Now()

	require.Nil(t, repo.AddParticipant(ctx, &entity.RoomParticipant{
		RoomID: room.ID.String(), UserID: "mod-1",
		Role: entity.ParticipantRoleModerator, JoinedAt: now, LastReadAt: now,
	}))

	// A later member-level join must not demote the moderator.
	require.Nil(t, repo.AddParticipant(ctx, &entity.RoomParticipant{
		RoomID: room.ID.String(), UserID: "mod-1",
		Role: entity.ParticipantRoleMember, JoinedAt: now, LastReadAt: now,
	}))

	p, appErr := repo.FindParticipant(ctx, room.ID.String(), "mod-1")
	require.Nil(t, appErr)
	require.NotNil(t, p)
	assert.Equal(t, entity.ParticipantRoleModerator, p.Role)
}

func TestFindParticipant_AbsentIsNilNil(t *testing.T) {
	repo := NewRoomRepo(testDB(t))

	room := seedRoom(t, repo, "event-1", "organizer")

	p, appErr := repo.FindParticipant(context.Background(), room.ID.String(), "stranger")
	assert.Nil(t, appErr, "absence is not an error")
	assert.Nil(t, p)
}

func TestMarkRead(t *testing.T) {
	repo := NewRoomRepo(testDB(t))
	ctx := context.Background()

	room := seedRoom(t, repo, "event-1", "organizer")

	at := time.Now().Add(time.Minute).Truncate(time.Second)
	require.Nil(t, repo.MarkRead(ctx, room.ID.String(), "organizer", at))

	p, appErr := repo.FindParticipant(ctx, room.ID.String(), "organizer")
	require.Nil(t, appErr)
	require.NotNil(t, p)
	assert.WithinDuration(t, at, p.LastReadAt, time.Second)
}

func TestMarkRead_UnknownParticipant(t *testing.T) {
	repo := NewRoomRepo(testDB(t))

	room := seedRoom(t, repo, "event-1", "organizer")

	appErr := repo.MarkRead(context.Background(), room.ID.String(), "stranger", time.Now())
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestFindRoomsForParticipant(t *testing.T) {
	repo := NewRoomRepo(testDB(t))
	ctx := context.Background()

	roomA := seedRoom(t, repo, "event-1", "organizer")
	seedRoom(t, repo, "event-1", "someone-else")
	seedRoom(t, repo, "event-2", "organizer")

	rooms, appErr := repo.FindRoomsForParticipant(ctx, "event-1", "organizer")
	require.Nil(t, appErr)
	require.Len(t, rooms, 1, "only rooms of the event where the user participates")
	assert.Equal(t, roomA.ID, rooms[0].ID)
}

func TestDeactivateRoom(t *testing.T) {
	repo := NewRoomRepo(testDB(t))
	ctx := context.Background()

	room := seedRoom(t, repo, "event-1", "organizer")
	require.Nil(t, repo.DeactivateRoom(ctx, room.ID.String()))

	got, appErr := repo.FindRoomByID(ctx, room.ID.String())
	require.Nil(t, appErr)
	assert.False(t, got.IsActive)

	active, appErr := repo.FindActiveRoomsByEvent(ctx, "event-1")
	require.Nil(t, appErr)
	assert.Empty(t, active)
}

func TestUpdateRoomLastMessage(t *testing.T) {
	repo := NewRoomRepo(testDB(t))
	ctx := context.Background()

	room := seedRoom(t, repo, "event-1", "organizer")

	at := time.Now().Add(5 * time.Minute)
	require.Nil(t, repo.UpdateRoomLastMessage(ctx, room.ID.String(), "64f000000000000000000001", at))

	got, appErr := repo.FindRoomByID(ctx, room.ID.String())
	require.Nil(t, appErr)
	assert.Equal(t, "64f000000000000000000001", got.LastMessageID)
	assert.WithinDuration(t, at, got.LastActivity, time.Second)
}

func TestSetParticipantModeration(t *testing.T) {
	repo := NewRoomRepo(testDB(t))
	ctx := context.Background()

	room := seedRoom(t, repo, "event-1", "organizer")
	now := time.Now()
	require.Nil(t, repo.AddParticipant(ctx, &entity.RoomParticipant{
		RoomID: room.ID.String(), UserID: "member-1",
		Role: entity.ParticipantRoleMember, JoinedAt: now, LastReadAt: now,
	}))

	muted := true
	require.Nil(t, repo.SetParticipantModeration(ctx, room.ID.String(), "member-1", &muted, nil))

	p, appErr := repo.FindParticipant(ctx, room.ID.String(), "member-1")
	require.Nil(t, appErr)
	assert.True(t, p.IsMuted)
	assert.False(t, p.IsBanned, "untouched flag must keep its value")

	appErr = repo.SetParticipantModeration(ctx, room.ID.String(), "member-1", nil, nil)
	require.NotNil(t, appErr, "empty moderation update is invalid")
	assert.Equal(t, 400, appErr.Code)
}
