package chat

import "errors"

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotParticipant  = errors.New("user is not a participant of the chat")
	ErrSelfChat        = errors.New("cannot start a chat with yourself")
)
