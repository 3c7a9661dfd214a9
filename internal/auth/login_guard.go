package auth

import (
	"context"
	"errors"
	"time"

	"github.com/w0nsdoof/diplomatch/internal/common"
	"github.com/w0nsdoof/diplomatch/internal/users"
	"github.com/w0nsdoof/diplomatch/model"
	"github.com/w0nsdoof/diplomatch/params"
	"golang.org/x/crypto/bcrypt"
)

// AccountStore serializes security-state mutations per account. The callback
// runs while the account row is locked; whatever it mutates is persisted
// before its error is surfaced, so every attempt is exactly one record update.
type AccountStore interface {
	UpdateAccountLocked(ctx context.Context, email string, fn func(user *model.User) error) error
}

type IPLimiter interface {
	IsBlocked(ctx context.Context, ip string) (bool, error)
	RecordFailure(ctx context.Context, ip string) (bool, error)
	Reset(ctx context.Context, ip string) error
}

// LoginGuard decides ALLOW / REJECT / BLOCK for each login attempt. Per-IP
// counters are checked before any account state is touched; per-account
// counters escalate through warned (attempts 1-2) into a timed block with a
// duration that grows by 5 minutes per escalation up to 30.
type LoginGuard struct {
	accounts AccountStore
	limiter  IPLimiter
	clock    common.Clock
}

func NewLoginGuard(accounts AccountStore, limiter IPLimiter, clock common.Clock) *LoginGuard {
	return &LoginGuard{
		accounts: accounts,
		limiter:  limiter,
		clock:    clock,
	}
}

// Authenticate runs one login attempt through the guard. On success the
// returned user has all security counters cleared and the IP counters are
// dropped. Every rejection comes back as an error; the account record is
// already persisted by the time it is returned. Unknown emails are reported
// as ErrInvalidCredentials and still count against the IP.
func (g *LoginGuard) Authenticate(ctx context.Context, email, password, ip string) (*model.User, error) {
	blocked, err := g.limiter.IsBlocked(ctx, ip)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrIPBlocked
	}

	var loginUser *model.User
	err = g.accounts.UpdateAccountLocked(ctx, email, func(user *model.User) error {
		now := g.clock.Now()

		if user.Disabled {
			return ErrInvalidCredentials
		}

		if user.BlockedUntil != nil && now.Before(*user.BlockedUntil) {
			return &AccountBlockedError{Until: *user.BlockedUntil, Remaining: user.BlockedUntil.Sub(now)}
		}

		// A stale failure streak does not carry over.
		if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > params.LoginAttemptResetWindow {
			user.FailedLoginAttempts = 0
			user.BlockDuration = int(params.LoginBlockDuration.Minutes())
		}

		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil {
			user.FailedLoginAttempts = 0
			user.BlockedUntil = nil
			user.BlockDuration = int(params.LoginBlockDuration.Minutes())
			user.LastFailedLogin = nil
			loginUser = user
			return nil
		}

		// Duplicate submissions inside the debounce window do not count.
		if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) < params.LoginAttemptDebounce {
			return ErrAttemptDebounced
		}

		ipBlocked, err := g.limiter.RecordFailure(ctx, ip)
		if err != nil {
			return err
		}
		if ipBlocked {
			return ErrIPBlocked
		}

		user.FailedLoginAttempts++
		user.LastFailedLogin = &now

		if user.FailedLoginAttempts >= params.LoginMaxAttempts {
			blockedUntil := now.Add(time.Duration(user.BlockDuration) * time.Minute)
			user.BlockedUntil = &blockedUntil
			user.BlockDuration = min(user.BlockDuration+int(params.LoginBlockStep.Minutes()), int(params.LoginBlockMax.Minutes()))
			user.FailedLoginAttempts = 0
			user.LastFailedLogin = nil
			return &AccountBlockedError{Until: blockedUntil, Remaining: blockedUntil.Sub(now)}
		}

		return &WrongPasswordError{AttemptsLeft: params.LoginMaxAttempts - user.FailedLoginAttempts}
	})
	if errors.Is(err, users.ErrUserNotFound) {
		ipBlocked, rlErr := g.limiter.RecordFailure(ctx, ip)
		if rlErr != nil {
			return nil, rlErr
		}
		if ipBlocked {
			return nil, ErrIPBlocked
		}
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := g.limiter.Reset(ctx, ip); err != nil {
		return nil, err
	}
	return loginUser, nil
}
