package mail

import "log/slog"

// LogMailSender writes messages to the log instead of delivering them. Used
// when no SMTP backend is configured, typically in development.
type LogMailSender struct{}

func (LogMailSender) Send(message *Message) error {
	slog.Info("Outgoing mail", "to", message.To, "subject", message.Subject, "body", message.Body)
	return nil
}
