package auth

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIPBlocked          = errors.New("too many login attempts from this IP, try again later")
	ErrAttemptDebounced   = errors.New("too many login attempts, please wait a moment")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWrongTokenType     = errors.New("wrong token type")
)

// AccountBlockedError is returned while an account block is in effect. The
// remaining time is reported in whole minutes, rounded up.
type AccountBlockedError struct {
	Until     time.Time
	Remaining time.Duration
}

func (e *AccountBlockedError) RemainingMinutes() int {
	return int(math.Ceil(e.Remaining.Minutes()))
}

func (e *AccountBlockedError) Error() string {
	return fmt.Sprintf("account is temporarily blocked, try again in %d minute(s)", e.RemainingMinutes())
}

// WrongPasswordError reports a counted password failure and how many attempts
// remain before the account is blocked.
type WrongPasswordError struct {
	AttemptsLeft int
}

func (e *WrongPasswordError) Error() string {
	return fmt.Sprintf("incorrect password, attempts left: %d", e.AttemptsLeft)
}
