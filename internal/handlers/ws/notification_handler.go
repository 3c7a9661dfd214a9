package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/w0nsdoof/diplomatch/internal/realtime"
)

type NotificationHandler struct {
	verifier TokenVerifier
	tracker  PresenceTracker
	bus      SessionBus
}

// Handle serves one notification socket. The session subscribes to the
// authenticated user's own channel only.
func (h *NotificationHandler) Handle(conn *websocket.Conn) {
	defer conn.Close()
	ctx := context.Background()

	userID, ok := authenticateConn(conn, h.verifier)
	if !ok {
		return
	}

	session := realtime.NewSession(userID)
	h.bus.Subscribe(realtime.UserChannel(userID), session)
	if err := h.tracker.MarkOnline(ctx, userID); err != nil {
		slog.Error("Could not mark user online", "userId", userID, "error", err)
	}
	defer func() {
		h.bus.UnsubscribeAll(session)
		if err := h.tracker.MarkOffline(ctx, userID); err != nil {
			slog.Error("Could not mark user offline", "userId", userID, "error", err)
		}
	}()

	go writeLoop(conn, session)

	for {
		payload, err := readFrame(conn)
		if err != nil {
			return
		}
		var event inboundEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			continue
		}
		if event.Type == "ping" {
			if err := h.tracker.MarkOnline(ctx, userID); err != nil {
				slog.Error("Could not record heartbeat", "userId", userID, "error", err)
			}
		}
	}
}

func NewNotificationHandler(verifier TokenVerifier, tracker PresenceTracker, bus SessionBus) *NotificationHandler {
	return &NotificationHandler{
		verifier: verifier,
		tracker:  tracker,
		bus:      bus,
	}
}
