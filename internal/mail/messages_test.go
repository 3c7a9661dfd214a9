package mail

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type captureSender struct {
	sent []*Message
}

func (s *captureSender) Send(message *Message) error {
	s.sent = append(s.sent, message)
	return nil
}

func TestSendPasswordReset(t *testing.T) {
	sender := &captureSender{}
	err := SendPasswordReset(sender, "a@x.com", "http://localhost/reset-password?token=abc", 30)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	require.Equal(t, []string{"a@x.com"}, msg.To)
	require.Contains(t, msg.Body, "http://localhost/reset-password?token=abc")
	require.Contains(t, msg.Body, "30 minutes")
}

func TestSendWelcome(t *testing.T) {
	sender := &captureSender{}
	err := SendWelcome(sender, "a@x.com", "DiploMatch")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	require.Contains(t, sender.sent[0].Subject, "DiploMatch")
}
