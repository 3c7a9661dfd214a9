package api

import (
	"github.com/gofiber/fiber/v2"
)

type StatusHandler struct {
	tracker PresenceTracker
}

// GetUserStatus reports whether a user is online, derived from their last
// heartbeat rather than the stored flag.
func (h *StatusHandler) GetUserStatus(ctx *fiber.Ctx) error {
	userID, err := paramUint(ctx, "id")
	if err != nil {
		return err
	}
	status, err := h.tracker.GetStatus(ctx.Context(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(status))
}

func NewStatusHandler(tracker PresenceTracker) *StatusHandler {
	return &StatusHandler{tracker: tracker}
}
