package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/w0nsdoof/diplomatch/params"
)

// UserChannel names the per-user channel notifications fan out on.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

// ChatChannel names the per-chat channel messages and typing events fan out on.
func ChatChannel(chatID uint) string {
	return fmt.Sprintf("chat_%d", chatID)
}

// Session is one live websocket connection. Payloads are delivered through the
// session's outbox channel; the connection's writer goroutine drains it.
type Session struct {
	ID     string
	UserID uint
	out    chan []byte
}

// Out returns the session's delivery channel. It is closed when the session
// is unsubscribed from every channel.
func (s *Session) Out() <-chan []byte {
	return s.out
}

func NewSession(userID uint) *Session {
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		out:    make(chan []byte, params.SessionSendBuffer),
	}
}

// Bus fans events out to subscribed sessions in process. Publish never blocks
// on a slow consumer: a session with a full outbox misses the event.
type Bus struct {
	mtx      sync.Mutex
	channels map[string]map[*Session]struct{}
}

func NewBus() *Bus {
	return &Bus{
		channels: make(map[string]map[*Session]struct{}),
	}
}

func (b *Bus) Subscribe(channel string, session *Session) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	sessions, ok := b.channels[channel]
	if !ok {
		sessions = make(map[*Session]struct{})
		b.channels[channel] = sessions
	}
	sessions[session] = struct{}{}
}

func (b *Bus) Unsubscribe(channel string, session *Session) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.removeLocked(channel, session)
}

// UnsubscribeAll detaches the session from every channel and closes its
// outbox. Call exactly once, when the connection goes away.
func (b *Bus) UnsubscribeAll(session *Session) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for channel := range b.channels {
		b.removeLocked(channel, session)
	}
	close(session.out)
}

func (b *Bus) removeLocked(channel string, session *Session) {
	sessions, ok := b.channels[channel]
	if !ok {
		return
	}
	delete(sessions, session)
	if len(sessions) == 0 {
		delete(b.channels, channel)
	}
}

// Publish marshals the event once and enqueues it to every session subscribed
// to the channel. Deliveries to one session stay in publish order.
func (b *Bus) Publish(channel string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for session := range b.channels[channel] {
		select {
		case session.out <- payload:
		default:
			slog.Warn("Session outbox full, dropping event", "channel", channel, "session", session.ID, "userId", session.UserID)
		}
	}
	return nil
}
