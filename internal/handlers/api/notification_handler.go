package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/w0nsdoof/diplomatch/internal/middlewares"
	"github.com/w0nsdoof/diplomatch/internal/notifications"
	"github.com/w0nsdoof/diplomatch/model"
)

type NotificationHandler struct {
	notificationService NotificationService
}

type notificationResponse struct {
	NotificationID uint      `json:"notificationId"`
	Message        string    `json:"message"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

func newNotificationResponse(n *model.Notification) notificationResponse {
	return notificationResponse{
		NotificationID: n.ID,
		Message:        n.Message,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
	}
}

func (h *NotificationHandler) GetNotifications(ctx *fiber.Ctx) error {
	items, err := h.notificationService.List(ctx.Context(), middlewares.AuthUserID(ctx))
	if err != nil {
		return err
	}
	resp := make([]notificationResponse, 0, len(items))
	for i := range items {
		resp = append(resp, newNotificationResponse(&items[i]))
	}
	return ctx.JSON(NewDataResponse(resp))
}

func (h *NotificationHandler) GetUnreadCount(ctx *fiber.Ctx) error {
	count, err := h.notificationService.UnreadCount(ctx.Context(), middlewares.AuthUserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(fiber.Map{"unread": count}))
}

func (h *NotificationHandler) PostMarkAllRead(ctx *fiber.Ctx) error {
	if err := h.notificationService.MarkAllRead(ctx.Context(), middlewares.AuthUserID(ctx)); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) DeleteNotification(ctx *fiber.Ctx) error {
	notificationID, err := paramUint(ctx, "id")
	if err != nil {
		return err
	}
	err = h.notificationService.Delete(ctx.Context(), notificationID, middlewares.AuthUserID(ctx))
	switch {
	case errors.Is(err, notifications.ErrNotificationNotFound), errors.Is(err, notifications.ErrNotOwner):
		// not-owner reads as not-found so ids cannot be probed
		return ctx.Status(fiber.StatusNotFound).JSON(
			NewErrorResponse(fiber.StatusNotFound, MsgNotificationNotFound))
	case err != nil:
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func NewNotificationHandler(notificationService NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}
