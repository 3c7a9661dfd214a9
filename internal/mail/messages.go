package mail

import "fmt"

// SendPasswordReset delivers the reset link for a requested password reset.
func SendPasswordReset(sender MailSender, toEmail string, resetURL string, expireMinutes int) error {
	body := fmt.Sprintf(
		"You requested a password reset for your account.\n\n"+
			"Follow the link below to choose a new password:\n\n%s\n\n"+
			"The link expires in %d minutes. If you did not request this, ignore this message.\n",
		resetURL, expireMinutes)
	return sender.Send(&Message{
		To:      []string{toEmail},
		Subject: "Reset your password",
		Body:    body,
	})
}

// SendWelcome greets a newly registered account.
func SendWelcome(sender MailSender, toEmail string, siteName string) error {
	body := fmt.Sprintf(
		"Your account at %s has been created.\n\n"+
			"Sign in and complete your profile to start matching with thesis topics.\n",
		siteName)
	return sender.Send(&Message{
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Welcome to %s", siteName),
		Body:    body,
	})
}
