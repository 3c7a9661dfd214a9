package api

const (
	MsgInvalidRequest       = "Invalid request. Please try again."
	MsgInvalidCredentials   = "Invalid credentials."
	MsgWrongPassword        = "Invalid credentials. You have %d attempt(s) left."
	MsgAccountBlocked       = "Too many failed login attempts. Please try again in %d minute(s)."
	MsgTooManyFailedLogin   = "Too many failed login attempts. Please try again later."
	MsgAttemptTooSoon       = "Please wait a moment before trying again."
	MsgEmailRegistered      = "An account with this email already exists."
	MsgInvalidResetToken    = "The password reset link is invalid or has expired."
	MsgPasswordResetSent    = "If the email is registered, a reset link has been sent."
	MsgPasswordResetDone    = "Your password has been updated. You can now log in."
	MsgUserNotFound         = "User not found."
	MsgChatNotFound         = "Chat not found."
	MsgNotChatParticipant   = "You are not a participant of this chat."
	MsgMessageNotFound      = "Message not found."
	MsgNotificationNotFound = "Notification not found."
	MsgSelfChatNotAllowed   = "You cannot start a chat with yourself."
	MsgInternalServerError  = "Internal server error"
)
