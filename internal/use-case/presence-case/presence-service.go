package presence_service

import (
	"context"
	"time"

	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
	message_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/message"
	room_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/room"
)

type PresenceService struct {
	RoomRepo    room_repo.RoomRepoContract
	MessageRepo message_repo.MessageRepoContract
}

func NewPresenceService(roomRepo room_repo.RoomRepoContract, messageRepo message_repo.MessageRepoContract) PresenceServiceContract {
	return &PresenceService{
		RoomRepo:    roomRepo,
		MessageRepo: messageRepo,
	}
}

func (s *PresenceService) MarkAsRead(ctx context.Context, roomID, userID string) (time.Time, *app_error.AppError) {
	if userID == "" {
		return time.Time{}, app_error.Unauthenticated("sign in to mark rooms as read")
	}

	now := time.Now()
	if appErr := s.RoomRepo.MarkRead(ctx, roomID, userID, now); appErr != nil {
		return time.Time{}, appErr
	}

	return now, nil
}

// UnreadCounts walks the caller's participations and counts messages
// newer than each read marker, excluding the caller's own. Computed on
// demand; there are no persisted counters to race on.
func (s *PresenceService) UnreadCounts(ctx context.Context, userID string) (*chat_dto.UnreadCountsResponse, *app_error.AppError) {
	if userID == "" {
		return nil, app_error.Unauthenticated("sign in to fetch unread counts")
	}

	participations, appErr := s.RoomRepo.ListParticipations(ctx, userID)
	if appErr != nil {
		return nil, appErr
	}

	resp := &chat_dto.UnreadCountsResponse{Counts: make([]chat_dto.UnreadCount, 0, len(participations))}
	for _, p := range participations {
		since := p.LastReadAt
		if since.IsZero() {
			since = p.JoinedAt
		}

		count, appErr := s.MessageRepo.CountUnread(ctx, p.RoomID, userID, since)
		if appErr != nil {
			return nil, appErr
		}

		resp.Counts = append(resp.Counts, chat_dto.UnreadCount{
			RoomID: p.RoomID,
			Count:  count,
		})
		resp.Total += count
	}

	return resp, nil
}
