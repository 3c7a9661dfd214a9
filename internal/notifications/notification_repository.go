package notifications

import (
	"context"

	"github.com/w0nsdoof/diplomatch/model"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	FirstByID(ctx context.Context, notificationID uint) (*model.Notification, error)
	ListByUserID(ctx context.Context, userID uint) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	Create(ctx context.Context, notification *model.Notification) error
	MarkRead(ctx context.Context, notificationIDs []uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	Delete(ctx context.Context, notificationID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

func (r *notificationRepository) FirstByID(ctx context.Context, notificationID uint) (*model.Notification, error) {
	var notification model.Notification
	err := r.db.WithContext(ctx).First(&notification, notificationID).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationIDs []uint) error {
	if len(notificationIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id IN ?", notificationIDs).
		Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *notificationRepository) Delete(ctx context.Context, notificationID uint) error {
	return r.db.WithContext(ctx).Delete(&model.Notification{}, notificationID).Error
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}
