package auth

import (
	"context"
	"errors"
	"time"

	"github.com/w0nsdoof/diplomatch/internal/store"
	"github.com/w0nsdoof/diplomatch/params"
)

type ipBlockState struct {
	Blocked bool `redis:"blocked"`
}

// IPRateLimiter counts failed login attempts per client IP, independent of
// account state. The counter carries a renewing expiry; once it reaches
// params.IPMaxFailures the IP is blocked for params.IPBlockDuration. Both
// expiries are enforced by the storage backend, never swept here.
type IPRateLimiter struct {
	storage store.Storage
}

func NewIPRateLimiter(storage store.Storage) *IPRateLimiter {
	return &IPRateLimiter{
		storage: store.StorageWithPrefix(storage, params.LoginAttemptKeyPrefix),
	}
}

func blockKey(ip string) string {
	return "block:" + ip
}

// IsBlocked reports whether ip is currently blocked. Storage errors fail
// closed: the caller must deny the attempt.
func (l *IPRateLimiter) IsBlocked(ctx context.Context, ip string) (bool, error) {
	var state ipBlockState
	err := l.storage.Get(ctx, blockKey(ip), &state)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return true, err
	}
	return state.Blocked, nil
}

// RecordFailure counts one failed attempt from ip, renews the counter expiry
// and reports whether the IP is now blocked.
func (l *IPRateLimiter) RecordFailure(ctx context.Context, ip string) (bool, error) {
	count, err := l.storage.IncrAttr(ctx, ip, "count", 1)
	if err != nil {
		return true, err
	}
	if err := l.storage.Expire(ctx, ip, time.Now().Add(params.IPFailureWindow)); err != nil {
		return true, err
	}
	if count >= params.IPMaxFailures {
		if err := l.storage.Set(ctx, blockKey(ip), ipBlockState{Blocked: true}, params.IPBlockDuration); err != nil {
			return true, err
		}
		return true, nil
	}
	return false, nil
}

// Reset drops the failure counter and block flag for ip after a successful
// login.
func (l *IPRateLimiter) Reset(ctx context.Context, ip string) error {
	if err := l.storage.Delete(ctx, ip); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := l.storage.Delete(ctx, blockKey(ip)); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}
