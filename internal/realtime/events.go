package realtime

import "time"

// MessageEvent is the payload chat subscribers receive for a stored message.
type MessageEvent struct {
	ChatID    uint      `json:"chat_id"`
	Message   string    `json:"message"`
	Sender    uint      `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// TypingEvent is an ephemeral indicator, fanned out but never stored.
type TypingEvent struct {
	Type string `json:"type"`
	User uint   `json:"user"`
}

// NotificationEvent is the payload a user's notification socket receives.
type NotificationEvent struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}
