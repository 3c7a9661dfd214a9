package mail

import (
	"crypto/tls"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	SSL      bool
}

// SMTPMailSender delivers plain-text mail through a configured SMTP relay.
type SMTPMailSender struct {
	dialer *gomail.Dialer
	from   string
}

func (s *SMTPMailSender) Send(message *Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", message.To...)
	msg.SetHeader("Subject", message.Subject)
	msg.SetBody("text/plain", message.Body)
	return s.dialer.DialAndSend(msg)
}

func NewSMTPMailSender(smtpConfig SMTPConfig, from string) *SMTPMailSender {
	dialer := gomail.NewDialer(smtpConfig.Host, smtpConfig.Port, smtpConfig.Username, smtpConfig.Password)
	dialer.SSL = smtpConfig.SSL
	dialer.TLSConfig = &tls.Config{ServerName: smtpConfig.Host}
	return &SMTPMailSender{dialer: dialer, from: from}
}
