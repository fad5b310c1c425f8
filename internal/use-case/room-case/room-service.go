package room_service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
	event_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/event"
	room_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/room"
	"github.com/akashyap25/eazy-event-server-sub000/internal/utils"
)

// Role lookups on the stateless surface are cached briefly; the socket
// surface caches the role on the connection at join time instead.
const roleCacheTTL = 60 * time.Second

type RoomService struct {
	RoomRepo  room_repo.RoomRepoContract
	EventRepo event_repo.EventRepoContract
	Redis     *redis.Client // nil disables role caching
}

func NewRoomService(roomRepo room_repo.RoomRepoContract, eventRepo event_repo.EventRepoContract, rdb *redis.Client) RoomServiceContract {
	return &RoomService{
		RoomRepo:  roomRepo,
		EventRepo: eventRepo,
		Redis:     rdb,
	}
}

// ComputeEventRole derives the caller's access tier from current event
// and order state: owner > collaborator > attendee > none.
func (s *RoomService) ComputeEventRole(ctx context.Context, eventID, userID string) (string, *app_error.AppError) {
	if userID == "" {
		return entity.EventRoleNone, nil
	}

	cacheKey := fmt.Sprintf("eventrole:%s:%s", eventID, userID)
	if s.Redis != nil {
		if cached, err := utils.GetCacheData[string](ctx, s.Redis, cacheKey); err == nil && cached != nil {
			return *cached, nil
		}
	}

	event, appErr := s.EventRepo.FindEventByID(ctx, eventID)
	if appErr != nil {
		return "", appErr
	}

	role := entity.EventRoleNone
	switch {
	case event.OrganizerID == userID:
		role = entity.EventRoleOwner
	default:
		isCollab, appErr := s.EventRepo.IsCollaborator(ctx, eventID, userID)
		if appErr != nil {
			return "", appErr
		}
		if isCollab {
			role = entity.EventRoleCollaborator
			break
		}

		hasOrder, appErr := s.EventRepo.HasCompletedOrder(ctx, eventID, userID)
		if appErr != nil {
			return "", appErr
		}
		if hasOrder {
			role = entity.EventRoleAttendee
		}
	}

	if s.Redis != nil {
		if err := utils.SetCacheData(ctx, s.Redis, cacheKey, &role, roleCacheTTL); err != nil {
			log.Warn().Err(err).Str("eventID", eventID).Msg("failed to cache event role")
		}
	}

	return role, nil
}

func (s *RoomService) ListEventRooms(ctx context.Context, eventID, userID string) ([]chat_dto.RoomResponse, *app_error.AppError) {
	if userID == "" {
		return nil, app_error.Unauthenticated("sign in to list event rooms")
	}

	rooms, appErr := s.RoomRepo.FindRoomsForParticipant(ctx, eventID, userID)
	if appErr != nil {
		return nil, appErr
	}

	resp := make([]chat_dto.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, chat_dto.NewRoomResponse(room))
	}

	return resp, nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*chat_dto.RoomResponse, *app_error.AppError) {
	room, appErr := s.RoomRepo.FindRoomByID(ctx, roomID)
	if appErr != nil {
		return nil, appErr
	}

	resp := chat_dto.NewRoomResponse(room)

	participants, appErr := s.RoomRepo.ListParticipants(ctx, roomID)
	if appErr != nil {
		return nil, appErr
	}
	for _, p := range participants {
		resp.Participants = append(resp.Participants, chat_dto.ParticipantResponse{
			UserID:     p.UserID,
			Role:       p.Role,
			JoinedAt:   p.JoinedAt,
			LastReadAt: p.LastReadAt,
			IsMuted:    p.IsMuted,
			IsBanned:   p.IsBanned,
		})
	}

	return &resp, nil
}

// JoinRoom gates membership on the derived event role and records an
// idempotent member row. A second join of the same (room, user) pair is
// a no-op, not an error.
func (s *RoomService) JoinRoom(ctx context.Context, roomID, userID string) (*chat_dto.JoinRoomResponse, *app_error.AppError) {
	if userID == "" {
		return nil, app_error.Unauthenticated("sign in to join chat rooms")
	}

	room, appErr := s.RoomRepo.FindRoomByID(ctx, roomID)
	if appErr != nil {
		return nil, appErr
	}
	if !room.IsActive {
		return nil, app_error.NotFound("room not found", "room-id")
	}

	role, appErr := s.ComputeEventRole(ctx, room.EventID, userID)
	if appErr != nil {
		return nil, appErr
	}
	if role == entity.EventRoleNone {
		return nil, app_error.Forbidden("only the event owner, collaborators, and registered attendees can join")
	}

	now := time.Now()
	participant := &entity.RoomParticipant{
		RoomID:     room.ID.String(),
		UserID:     userID,
		Role:       entity.ParticipantRoleMember,
		JoinedAt:   now,
		LastReadAt: now,
	}
	if appErr := s.RoomRepo.AddParticipant(ctx, participant); appErr != nil {
		return nil, appErr
	}

	// The row may predate this join; the read marker moves either way.
	if appErr := s.RoomRepo.MarkRead(ctx, room.ID.String(), userID, now); appErr != nil {
		return nil, appErr
	}

	resp, appErr := s.GetRoom(ctx, room.ID.String())
	if appErr != nil {
		return nil, appErr
	}

	log.Info().Str("roomID", roomID).Str("userID", userID).Str("eventRole", role).Msg("user joined room")

	return &chat_dto.JoinRoomResponse{
		Room:      *resp,
		EventRole: role,
	}, nil
}

func (s *RoomService) CreateRoom(ctx context.Context, eventID, creatorID string, req chat_dto.CreateRoomRequest) (*chat_dto.RoomResponse, *app_error.AppError) {
	if creatorID == "" {
		return nil, app_error.Unauthenticated("sign in to create chat rooms")
	}

	event, appErr := s.EventRepo.FindEventByID(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}

	role, appErr := s.ComputeEventRole(ctx, event.ID, creatorID)
	if appErr != nil {
		return nil, appErr
	}
	if role != entity.EventRoleOwner && role != entity.EventRoleCollaborator {
		return nil, app_error.Forbidden("only the event owner or collaborators can create rooms")
	}

	roomType := req.RoomType
	if roomType == "" {
		roomType = entity.RoomTypeGeneral
	}

	now := time.Now()
	room := &entity.ChatRoom{
		ID:           uuid.New(),
		EventID:      event.ID,
		Name:         req.Name,
		Description:  req.Description,
		RoomType:     roomType,
		IsActive:     true,
		IsPrivate:    req.IsPrivate,
		LastActivity: now,
		CreatedBy:    creatorID,
	}
	creator := &entity.RoomParticipant{
		UserID:     creatorID,
		Role:       entity.ParticipantRoleAdmin,
		JoinedAt:   now,
		LastReadAt: now,
	}

	if appErr := s.RoomRepo.CreateRoom(ctx, room, creator); appErr != nil {
		return nil, appErr
	}

	log.Info().Str("roomID", room.ID.String()).Str("eventID", eventID).Str("createdBy", creatorID).Msg("chat room created")

	resp := chat_dto.NewRoomResponse(room)
	return &resp, nil
}

func (s *RoomService) ModerateParticipant(ctx context.Context, roomID, actorID string, req chat_dto.ModerateParticipantRequest) *app_error.AppError {
	if actorID == "" {
		return app_error.Unauthenticated("sign in to moderate participants")
	}

	actor, appErr := s.RoomRepo.FindParticipant(ctx, roomID, actorID)
	if appErr != nil {
		return appErr
	}
	if actor == nil || !actor.CanModerate() {
		return app_error.Forbidden("only room admins and moderators can moderate participants")
	}
	if req.UserID == actorID {
		return app_error.InvalidInput("cannot moderate yourself", "user_id")
	}

	return s.RoomRepo.SetParticipantModeration(ctx, roomID, req.UserID, req.Muted, req.Banned)
}
