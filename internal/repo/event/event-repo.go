package event_repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
)

type EventRepo struct {
	DB *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepoContract {
	return &EventRepo{DB: db}
}

func (r *EventRepo) FindEventByID(ctx context.Context, eventID string) (*entity.Event, *app_error.AppError) {
	var event entity.Event
	if err := r.DB.WithContext(ctx).Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NotFound("event not found", "event-id")
		}
		return nil, app_error.Internal("failed to fetch event", "db-error")
	}
	return &event, nil
}

func (r *EventRepo) IsCollaborator(ctx context.Context, eventID, userID string) (bool, *app_error.AppError) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&entity.EventCollaborator{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error; err != nil {
		return false, app_error.Internal("failed to check collaborator", "db-count")
	}
	return count > 0, nil
}

func (r *EventRepo) HasCompletedOrder(ctx context.Context, eventID, userID string) (bool, *app_error.AppError) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&entity.Order{}).
		Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, entity.OrderStatusCompleted).
		Count(&count).Error; err != nil {
		return false, app_error.Internal("failed to check completed orders", "db-count")
	}
	return count > 0, nil
}
