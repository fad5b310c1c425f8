package room_repo

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
)

type RoomRepo struct {
	DB *gorm.DB
}

func NewRoomRepo(db *gorm.DB) RoomRepoContract {
	return &RoomRepo{DB: db}
}

func (r *RoomRepo) CreateRoom(ctx context.Context, room *entity.ChatRoom, creator *entity.RoomParticipant) *app_error.AppError {
	tx := r.DB.WithContext(ctx).Begin()
	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(room).Error; err != nil {
		tx.Rollback()
		return app_error.Internal("failed to create chat room", "db-create")
	}

	if creator != nil {
		creator.RoomID = room.ID.String()
		if err := tx.Create(creator).Error; err != nil {
			tx.Rollback()
			return app_error.Internal("failed to add creator to chat room", "db-create")
		}
	}

	if err := tx.Commit().Error; err != nil {
		return app_error.Internal("failed to commit room creation", "db-commit")
	}

	return nil
}

func (r *RoomRepo) FindRoomByID(ctx context.Context, roomID string) (*entity.ChatRoom, *app_error.AppError) {
	var room entity.ChatRoom
	if err := r.DB.WithContext(ctx).Where("id = ?", roomID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NotFound("room not found", "room-id")
		}
		log.Error().Err(err).Str("roomID", roomID).Msg("failed to fetch room")
		return nil, app_error.Internal("failed to fetch room", "db-error")
	}
	return &room, nil
}

func (r *RoomRepo) FindActiveRoomsByEvent(ctx context.Context, eventID string) ([]*entity.ChatRoom, *app_error.AppError) {
	var rooms []*entity.ChatRoom
	if err := r.DB.WithContext(ctx).
		Where("event_id = ? AND is_active = ?", eventID, true).
		Order("created_at ASC").
		Find(&rooms).Error; err != nil {
		return nil, app_error.Internal("failed to fetch event rooms", "db-error")
	}
	return rooms, nil
}

func (r *RoomRepo) FindRoomsForParticipant(ctx context.Context, eventID, userID string) ([]*entity.ChatRoom, *app_error.AppError) {
	var rooms []*entity.ChatRoom
	err := r.DB.WithContext(ctx).
		Joins("JOIN room_participants rp ON rp.room_id = CAST(chat_rooms.id AS TEXT)").
		Where("chat_rooms.event_id = ? AND chat_rooms.is_active = ? AND rp.user_id = ?", eventID, true, userID).
		Order("chat_rooms.last_activity DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, app_error.Internal("failed to fetch participant rooms", "db-error")
	}
	return rooms, nil
}

func (r *RoomRepo) DeactivateRoom(ctx context.Context, roomID string) *app_error.AppError {
	res := r.DB.WithContext(ctx).Model(&entity.ChatRoom{}).
		Where("id = ?", roomID).
		Update("is_active", false)
	if res.Error != nil {
		return app_error.Internal("failed to deactivate room", "db-update")
	}
	if res.RowsAffected == 0 {
		return app_error.NotFound("room not found", "room-id")
	}
	return nil
}

func (r *RoomRepo) AddParticipant(ctx context.Context, p *entity.RoomParticipant) *app_error.AppError {
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(p).Error
	if err != nil {
		return app_error.Internal("failed to add participant", "db-create")
	}
	return nil
}

func (r *RoomRepo) FindParticipant(ctx context.Context, roomID, userID string) (*entity.RoomParticipant, *app_error.AppError) {
	var p entity.RoomParticipant
	if err := r.DB.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, app_error.Internal("failed to fetch participant", "db-error")
	}
	return &p, nil
}

func (r *RoomRepo) ListParticipants(ctx context.Context, roomID string) ([]*entity.RoomParticipant, *app_error.AppError) {
	var participants []*entity.RoomParticipant
	if err := r.DB.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		return nil, app_error.Internal("failed to fetch room participants", "db-error")
	}
	return participants, nil
}

func (r *RoomRepo) ListParticipations(ctx context.Context, userID string) ([]*entity.RoomParticipant, *app_error.AppError) {
	var participations []*entity.RoomParticipant
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&participations).Error; err != nil {
		return nil, app_error.Internal("failed to fetch participations", "db-error")
	}
	return participations, nil
}

func (r *RoomRepo) MarkRead(ctx context.Context, roomID, userID string, at time.Time) *app_error.AppError {
	res := r.DB.WithContext(ctx).Model(&entity.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("last_read_at", at)
	if res.Error != nil {
		return app_error.Internal("failed to update read marker", "db-update")
	}
	if res.RowsAffected == 0 {
		return app_error.NotFound("participant not found", "participant")
	}
	return nil
}

func (r *RoomRepo) SetParticipantModeration(ctx context.Context, roomID, userID string, muted, banned *bool) *app_error.AppError {
	updates := map[string]any{}
	if muted != nil {
		updates["is_muted"] = *muted
	}
	if banned != nil {
		updates["is_banned"] = *banned
	}
	if len(updates) == 0 {
		return app_error.InvalidInput("nothing to update", "moderation")
	}

	res := r.DB.WithContext(ctx).Model(&entity.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Updates(updates)
	if res.Error != nil {
		return app_error.Internal("failed to update participant moderation flags", "db-update")
	}
	if res.RowsAffected == 0 {
		return app_error.NotFound("participant not found", "participant")
	}
	return nil
}

func (r *RoomRepo) UpdateRoomLastMessage(ctx context.Context, roomID, messageID string, at time.Time) *app_error.AppError {
	if err := r.DB.WithContext(ctx).Model(&entity.ChatRoom{}).
		Where("id = ?", roomID).
		Updates(map[string]any{
			"last_message_id": messageID,
			"last_activity":   at,
		}).Error; err != nil {
		return app_error.Internal("failed to update room last message", "db-update")
	}
	return nil
}
