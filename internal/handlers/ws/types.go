package ws

import (
	"context"

	"github.com/w0nsdoof/diplomatch/internal/auth"
	"github.com/w0nsdoof/diplomatch/internal/realtime"
	"github.com/w0nsdoof/diplomatch/model"
)

type TokenVerifier interface {
	VerifyAccess(tokenStr string) (*auth.Claims, error)
}

type ChatService interface {
	GetChat(ctx context.Context, chatID, userID uint) (*model.Chat, error)
	SendMessage(ctx context.Context, chatID, senderID uint, content string) (*model.Message, error)
	NotifyTyping(ctx context.Context, chatID, userID uint) error
}

type PresenceTracker interface {
	MarkOnline(ctx context.Context, userID uint) error
	MarkOffline(ctx context.Context, userID uint) error
}

type SessionBus interface {
	Subscribe(channel string, session *realtime.Session)
	UnsubscribeAll(session *realtime.Session)
}

// inboundEvent is the client to server envelope. Type selects the action;
// a bare message field sends a chat message.
type inboundEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
