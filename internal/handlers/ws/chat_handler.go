package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/w0nsdoof/diplomatch/internal/realtime"
)

type ChatHandler struct {
	verifier    TokenVerifier
	chatService ChatService
	tracker     PresenceTracker
	bus         SessionBus
}

// Handle serves one chat socket. The client must be a participant of the
// chat; every inbound frame counts as a liveness signal.
func (h *ChatHandler) Handle(conn *websocket.Conn) {
	defer conn.Close()
	ctx := context.Background()

	chatID, err := paramUint(conn, "id")
	if err != nil {
		closeWithPolicyViolation(conn, "invalid chat id")
		return
	}
	userID, ok := authenticateConn(conn, h.verifier)
	if !ok {
		return
	}
	if _, err := h.chatService.GetChat(ctx, chatID, userID); err != nil {
		closeWithPolicyViolation(conn, "chat access denied")
		return
	}

	session := realtime.NewSession(userID)
	h.bus.Subscribe(realtime.ChatChannel(chatID), session)
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
		switch {
		case event.Type == "ping":
			if err := h.tracker.MarkOnline(ctx, userID); err != nil {
				slog.Error("Could not record heartbeat", "userId", userID, "error", err)
			}
		case event.Type == "typing":
			if err := h.chatService.NotifyTyping(ctx, chatID, userID); err != nil {
				slog.Error("Could not fan out typing event", "chatId", chatID, "userId", userID, "error", err)
			}
		case event.Message != "":
			if _, err := h.chatService.SendMessage(ctx, chatID, userID, event.Message); err != nil {
				slog.Error("Could not send chat message", "chatId", chatID, "userId", userID, "error", err)
			}
		}
	}
}

func NewChatHandler(verifier TokenVerifier, chatService ChatService, tracker PresenceTracker, bus SessionBus) *ChatHandler {
	return &ChatHandler{
		verifier:    verifier,
		chatService: chatService,
		tracker:     tracker,
		bus:         bus,
	}
}
