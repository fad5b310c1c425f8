package room_service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
)

type fakeEventRepo struct {
	events        map[string]*entity.Event
	collaborators map[string]map[string]bool
	orders        map[string]map[string]string
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:        map[string]*entity.Event{},
		collaborators: map[string]map[string]bool{},
		orders:        map[string]map[string]string{},
	}
}

func (f *fakeEventRepo) FindEventByID(_ context.Context, eventID string) (*entity.Event, *app_error.AppError) {
	event, ok := f.events[eventID]
	if !ok {
		return nil, app_error.NotFound("event not found", "event-id")
	}
	return event, nil
}

func (f *fakeEventRepo) IsCollaborator(_ context.Context, eventID, userID string) (bool, *app_error.AppError) {
	return f.collaborators[eventID][userID], nil
}

func (f *fakeEventRepo) HasCompletedOrder(_ context.Context, eventID, userID string) (bool, *app_error.AppError) {
	return f.orders[eventID][userID] == entity.OrderStatusCompleted, nil
}

type fakeRoomRepo struct {
	rooms        map[string]*entity.ChatRoom
	participants map[string]*entity.RoomParticipant
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:        map[string]*entity.ChatRoom{},
		participants: map[string]*entity.RoomParticipant{},
	}
}

func pkey(roomID, userID string) string { return roomID + "|" + userID }

func (f *fakeRoomRepo) CreateRoom(_ context.Context, room *entity.ChatRoom, creator *entity.RoomParticipant) *app_error.AppError {
	f.rooms[room.ID.String()] = room
	if creator != nil {
		creator.RoomID = room.ID.String()
		f.participants[pkey(creator.RoomID, creator.UserID)] = creator
	}
	return nil
}

func (f *fakeRoomRepo) FindRoomByID(_ context.Context, roomID string) (*entity.ChatRoom, *app_error.AppError) {
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, app_error.NotFound("room not found", "room-id")
	}
	return room, nil
}

func (f *fakeRoomRepo) FindActiveRoomsByEvent(_ context.Context, eventID string) ([]*entity.ChatRoom, *app_error.AppError) {
	var rooms []*entity.ChatRoom
	for _, room := range f.rooms {
		if room.EventID == eventID && room.IsActive {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

func (f *fakeRoomRepo) FindRoomsForParticipant(_ context.Context, eventID, userID string) ([]*entity.ChatRoom, *app_error.AppError) {
	var rooms []*entity.ChatRoom
	for _, room := range f.rooms {
		if room.EventID != eventID || !room.IsActive {
			continue
		}
		if _, ok := f.participants[pkey(room.ID.String(), userID)]; ok {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

func (f *fakeRoomRepo) DeactivateRoom(_ context.Context, roomID string) *app_error.AppError {
	room, ok := f.rooms[roomID]
	if !ok {
		return app_error.NotFound("room not found", "room-id")
	}
	room.IsActive = false
	return nil
}

func (f *fakeRoomRepo) AddParticipant(_ context.Context, p *entity.RoomParticipant) *app_error.AppError {
	if _, exists := f.participants[pkey(p.RoomID, p.UserID)]; exists {
		return nil // idempotent
	}
	f.participants[pkey(p.RoomID, p.UserID)] = p
	return nil
}

func (f *fakeRoomRepo) FindParticipant(_ context.Context, roomID, userID string) (*entity.RoomParticipant, *app_error.AppError) {
	return f.participants[pkey(roomID, userID)], nil
}

func (f *fakeRoomRepo) ListParticipants(_ context.Context, roomID string) ([]*entity.RoomParticipant, *app_error.AppError) {
	var participants []*entity.RoomParticipant
	for _, p := range f.participants {
		if p.RoomID == roomID {
			participants = append(participants, p)
		}
	}
	return participants, nil
}

func (f *fakeRoomRepo) ListParticipations(_ context.Context, userID string) ([]*entity.RoomParticipant, *app_error.AppError) {
	var participations []*entity.RoomParticipant
	for _, p := range f.participants {
		if p.UserID == userID {
			participations = append(participations, p)
		}
	}
	return participations, nil
}

func (f *fakeRoomRepo) MarkRead(_ context.Context, roomID, userID string, at time.Time) *app_error.AppError {
	p, ok := f.participants[pkey(roomID, userID)]
	if !ok {
		return app_error.NotFound("participant not found", "participant")
	}
	p.LastReadAt = at
	return nil
}

func (f *fakeRoomRepo) SetParticipantModeration(_ context.Context, roomID, userID string, muted, banned *bool) *app_error.AppError {
	p, ok := f.participants[pkey(roomID, userID)]
	if !ok {
		return app_error.NotFound("participant not found", "participant")
	}
	if muted != nil {
		p.IsMuted = *muted
	}
	if banned != nil {
		p.IsBanned = *banned
	}
	return nil
}

func (f *fakeRoomRepo) UpdateRoomLastMessage(_ context.Context, roomID, messageID string, at time.Time) *app_error.AppError {
	room, ok := f.rooms[roomID]
	if !ok {
		return app_error.NotFound("room not found", "room-id")
	}
	room.LastMessageID = messageID
	room.LastActivity = at
	return nil
}

func setupService(t *testing.T) (*fakeRoomRepo, *fakeEventRepo, RoomServiceContract) {
	t.Helper()
	roomRepo := newFakeRoomRepo()
	eventRepo := newFakeEventRepo()
	return roomRepo, eventRepo, NewRoomService(roomRepo, eventRepo, nil)
}

func seedEvent(eventRepo *fakeEventRepo, eventID, organizerID string) {
	eventRepo.events[eventID] = &entity.Event{ID: eventID, OrganizerID: organizerID, ChatEnabled: true}
}

func seedActiveRoom(roomRepo *fakeRoomRepo, eventID string) *entity.ChatRoom {
	room := &entity.ChatRoom{
		ID:       uuid.New(),
		EventID:  eventID,
		Name:     "General",
		RoomType: entity.RoomTypeGeneral,
		IsActive: true,
	}
	roomRepo.rooms[room.ID.String()] = room
	return room
}

func TestComputeEventRole_Priority(t *testing.T) {
	_, eventRepo, svc := setupService(t)
	ctx := context.Background()

	seedEvent(eventRepo, "event-1", "owner-user")
	eventRepo.collaborators["event-1"] = map[string]bool{"owner-user": true, "collab-user": true}
	eventRepo.orders["event-1"] = map[string]string{
		"owner-user":    entity.OrderStatusCompleted,
		"collab-user":   entity.OrderStatusCompleted,
		"attendee-user": entity.OrderStatusCompleted,
		"pending-user":  "pending",
	}

	cases := []struct {
		userID string
		want   string
	}{
		// Organizer wins even while also collaborating and holding a ticket.
		{"owner-user", entity.EventRoleOwner},
		{"collab-user", entity.EventRoleCollaborator},
		{"attendee-user", entity.EventRoleAttendee},
		{"pending-user", entity.EventRoleNone},
		{"stranger", entity.EventRoleNone},
	}
	for _, tc := range cases {
		role, appErr := svc.ComputeEventRole(ctx, "event-1", tc.userID)
		require.Nil(t, appErr, tc.userID)
		assert.Equal(t, tc.want, role, tc.userID)
	}
}

func TestComputeEventRole_AnonymousIsNone(t *testing.T) {
	_, eventRepo, svc := setupService(t)
	seedEvent(eventRepo, "event-1", "owner-user")

	role, appErr := svc.ComputeEventRole(context.Background(), "event-1", "")
	require.Nil(t, appErr, "anonymous role derivation is not an error")
	assert.Equal(t, entity.EventRoleNone, role)
}

func TestComputeEventRole_UsesCache(t *testing.T) {
	mock := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mock.Addr()})

	roomRepo := newFakeRoomRepo()
	eventRepo := newFakeEventRepo()
	svc := NewRoomService(roomRepo, eventRepo, rdb)
	ctx := context.Background()

	seedEvent(eventRepo, "event-1", "owner-user")

	role, appErr := svc.ComputeEventRole(ctx, "event-1", "owner-user")
	require.Nil(t, appErr)
	require.Equal(t, entity.EventRoleOwner, role)

	// Flip the underlying state; the cached answer must win until it
	// expires.
	eventRepo.events["event-1"].OrganizerID = "someone-else"

	role, appErr = svc.ComputeEventRole(ctx, "event-1", "owner-user")
	require.Nil(t, appErr)
	assert.Equal(t, entity.EventRoleOwner, role, "within the TTL the derivation must come from cache")

	mock.FastForward(2 * time.Minute)

	role, appErr = svc.ComputeEventRole(ctx, "event-1", "owner-user")
	require.Nil(t, appErr)
	assert.Equal(t, entity.EventRoleNone, role, "after expiry the derivation must see current state")
}

func TestJoinRoom_AttendeeJoinsAndRejoins(t *testing.T) {
	roomRepo, eventRepo, svc := setupService(t)
	ctx := context.Background()

	seedEvent(eventRepo, "event-1", "owner-user")
	eventRepo.orders["event-1"] = map[string]string{"attendee-user": entity.OrderStatusCompleted}
	room := seedActiveRoom(roomRepo, "event-1")

	resp, appErr := svc.JoinRoom(ctx, room.ID.String(), "attendee-user")
	require.Nil(t, appErr)
	assert.Equal(t, entity.EventRoleAttendee, resp.EventRole)
	assert.Equal(t, room.ID.String(), resp.Room.RoomID)

	// Second join is a no-op, not a conflict.
	resp, appErr = svc.JoinRoom(ctx, room.ID.String(), "attendee-user")
	require.Nil(t, appErr)
	assert.Equal(t, entity.EventRoleAttendee, resp.EventRole)

	participants, _ := roomRepo.ListParticipants(ctx, room.ID.String())
	assert.Len(t, participants, 1, "rejoin must not duplicate the membership row")
	assert.Equal(t, entity.ParticipantRoleMember, participants[0].Role)
}

func TestJoinRoom_NoEventRoleRejected(t *testing.T) {
	roomRepo, eventRepo, svc := setupService(t)

	seedEvent(eventRepo, "event-1", "owner-user")
	room := seedActiveRoom(roomRepo, "event-1")

	resp, appErr := svc.JoinRoom(context.Background(), room.ID.String(), "stranger")
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Code)
	assert.Nil(t, resp)
}

func TestJoinRoom_AnonymousRejected(t *testing.T) {
	roomRepo, eventRepo, svc := setupService(t)

	seedEvent(eventRepo, "event-1", "owner-user")
	room := seedActiveRoom(roomRepo, "event-1")

	_, appErr := svc.JoinRoom(context.Background(), room.ID.String(), "")
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Code)
}

func TestJoinRoom_InactiveRoomHidden(t *testing.T) {
	roomRepo, eventRepo, svc := setupService(t)

	seedEvent(eventRepo, "event-1", "owner-user")
	room := seedActiveRoom(roomRepo, "event-1")
	room.IsActive = false

	_, appErr := svc.JoinRoom(context.Background(), room.ID.String(), "owner-user")
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code, "closed rooms read as absent, not forbidden")
}

func TestCreateRoom_RequiresOwnerOrCollaborator(t *testing.T) {
	_, eventRepo, svc := setupService(t)
	ctx := context.Background()

	seedEvent(eventRepo, "event-1", "owner-user")
	eventRepo.collaborators["event-1"] = map[string]bool{"collab-user": true}
	eventRepo.orders["event-1"] = map[string]string{"attendee-user": entity.OrderStatusCompleted}

	req := chat_dto.CreateRoomRequest{Name: "Q&A", RoomType: entity.RoomTypeQnA}

	resp, appErr := svc.CreateRoom(ctx, "event-1", "owner-user", req)
	require.Nil(t, appErr)
	assert.Equal(t, entity.RoomTypeQnA, resp.RoomType)

	_, appErr = svc.CreateRoom(ctx, "event-1", "collab-user", req)
	require.Nil(t, appErr, "collaborators may create rooms")

	_, appErr = svc.CreateRoom(ctx, "event-1", "attendee-user", req)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Code, "attendees may not create rooms")
}

func TestCreateRoom_CreatorSeededAsAdmin(t *testing.T) {
	roomRepo, eventRepo, svc := setupService(t)
	ctx := context.Background()

	seedEvent(eventRepo, "event-1", "owner-user")

	resp, appErr := svc.CreateRoom(ctx, "event-1", "owner-user", chat_dto.CreateRoomRequest{Name: "General"})
	require.Nil(t, appErr)

	p, _ := roomRepo.FindParticipant(ctx, resp.RoomID, "owner-user")
	require.NotNil(t, p)
	assert.Equal(t, entity.ParticipantRoleAdmin, p.Role)
}

func TestModerateParticipant(t *testing.T) {
	roomRepo, eventRepo, svc := setupService(t)
	ctx := context.Background()

	seedEvent(eventRepo, "event-1", "owner-user")
	room := seedActiveRoom(roomRepo, "event-1")

	now := time.Now()
	roomRepo.participants[pkey(room.ID.String(), "admin-user")] = &entity.RoomParticipant{
		RoomID: room.ID.String(), UserID: "admin-user", Role: entity.ParticipantRoleAdmin, JoinedAt: now,
	}
	roomRepo.participants[pkey(room.ID.String(), "member-user")] = &entity.RoomParticipant{
		RoomID: room.ID.String(), UserID: "member-user", Role: entity.ParticipantRoleMember, JoinedAt: now,
	}

	muted := true
	appErr := svc.ModerateParticipant(ctx, room.ID.String(), "admin-user", chat_dto.ModerateParticipantRequest{
		UserID: "member-user", Muted: &muted,
	})
	require.Nil(t, appErr)
	assert.True(t, roomRepo.participants[pkey(room.ID.String(), "member-user")].IsMuted)

	appErr = svc.ModerateParticipant(ctx, room.ID.String(), "member-user", chat_dto.ModerateParticipantRequest{
		UserID: "admin-user", Muted: &muted,
	})
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Code, "plain members cannot moderate")

	appErr = svc.ModerateParticipant(ctx, room.ID.String(), "admin-user", chat_dto.ModerateParticipantRequest{
		UserID: "admin-user", Muted: &muted,
	})
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code, "self-moderation is rejected")
}
