package api

import (
	"errors"
	"net/mail"
)

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("Invalid email address.")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("Password must be at least 6 characters.")
	}
	if len(password) > 72 {
		return errors.New("Password must be less than 72 characters.")
	}
	return nil
}
