package notifications

import (
	"context"
	"errors"
	"log/slog"

	"github.com/w0nsdoof/diplomatch/internal/realtime"
	"github.com/w0nsdoof/diplomatch/model"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotOwner             = errors.New("notification belongs to another user")
)

// Publisher is the fan-out side of the realtime bus the service needs.
type Publisher interface {
	Publish(channel string, event any) error
}

type NotificationService struct {
	notificationRepo NotificationRepository
	publisher        Publisher
}

// Notify stores an unread notification for the user and pushes it to their
// channel. A failed push is logged only; the stored row is delivered on the
// next fetch.
func (s *NotificationService) Notify(ctx context.Context, userID uint, message string) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}
	event := realtime.NotificationEvent{ID: notification.ID, Message: message}
	if err := s.publisher.Publish(realtime.UserChannel(userID), event); err != nil {
		slog.Error("Could not push notification", "userId", userID, "notificationId", notification.ID, "error", err)
	}
	return notification, nil
}

// List returns the user's notifications, newest first, and marks the unread
// ones among them as read. The returned rows still carry their pre-fetch read
// state so clients can highlight what was new.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]model.Notification, error) {
	notifications, err := s.notificationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var unreadIDs []uint
	for _, n := range notifications {
		if !n.IsRead {
			unreadIDs = append(unreadIDs, n.ID)
		}
	}
	if err := s.notificationRepo.MarkRead(ctx, unreadIDs); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// Delete removes a notification after checking it belongs to the caller.
func (s *NotificationService) Delete(ctx context.Context, notificationID, userID uint) error {
	notification, err := s.notificationRepo.FirstByID(ctx, notificationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return err
	}
	if notification.UserID != userID {
		return ErrNotOwner
	}
	return s.notificationRepo.Delete(ctx, notificationID)
}

func NewNotificationService(notificationRepo NotificationRepository, publisher Publisher) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}
