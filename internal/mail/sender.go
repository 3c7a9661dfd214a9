package mail

// Message is a plain-text mail. The sender owns the From address.
type Message struct {
	To      []string
	Subject string
	Body    string
}

type MailSender interface {
	Send(message *Message) error
}
