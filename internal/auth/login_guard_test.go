package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/w0nsdoof/diplomatch/internal/users"
	"github.com/w0nsdoof/diplomatch/model"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{current: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// fakeAccountStore mimics the row-locked update: the callback mutates the
// stored user in place and its error is passed through after the "commit".
type fakeAccountStore struct {
	accounts map[string]*model.User
}

func (s *fakeAccountStore) UpdateAccountLocked(ctx context.Context, email string, fn func(user *model.User) error) error {
	user, ok := s.accounts[email]
	if !ok {
		return users.ErrUserNotFound
	}
	return fn(user)
}

type fakeLimiter struct {
	blocked    bool
	blockAfter int // 0 means never
	failures   int
	resets     int
}

func (l *fakeLimiter) IsBlocked(ctx context.Context, ip string) (bool, error) {
	return l.blocked, nil
}

func (l *fakeLimiter) RecordFailure(ctx context.Context, ip string) (bool, error) {
	l.failures++
	return l.blockAfter > 0 && l.failures >= l.blockAfter, nil
}

func (l *fakeLimiter) Reset(ctx context.Context, ip string) error {
	l.resets++
	l.failures = 0
	return nil
}

const testPassword = "correct horse"

func newGuardFixture(t *testing.T) (*LoginGuard, *model.User, *fakeLimiter, *fakeClock) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		ID:            1,
		Email:         "a@x.com",
		Password:      string(hash),
		Role:          model.RoleStudent,
		BlockDuration: 5,
	}
	limiter := &fakeLimiter{}
	clock := newFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	guard := NewLoginGuard(&fakeAccountStore{accounts: map[string]*model.User{user.Email: user}}, limiter, clock)
	return guard, user, limiter, clock
}

func TestLoginGuardEscalation(t *testing.T) {
	guard, user, _, clock := newGuardFixture(t)
	ctx := context.Background()

	for _, wantLeft := range []int{2, 1} {
		_, err := guard.Authenticate(ctx, user.Email, "wrong", "10.0.0.1")
		var wrongErr *WrongPasswordError
		require.ErrorAs(t, err, &wrongErr)
		require.Equal(t, wantLeft, wrongErr.AttemptsLeft)
		clock.Advance(2 * time.Second)
	}

	_, err := guard.Authenticate(ctx, user.Email, "wrong", "10.0.0.1")
	var blockedErr *AccountBlockedError
	require.ErrorAs(t, err, &blockedErr)
	require.Equal(t, clock.Now().Add(5*time.Minute), blockedErr.Until)
	require.Equal(t, 5, blockedErr.RemainingMinutes())

	require.NotNil(t, user.BlockedUntil)
	require.Equal(t, clock.Now().Add(5*time.Minute), *user.BlockedUntil)
	require.Equal(t, 10, user.BlockDuration)
	require.Zero(t, user.FailedLoginAttempts)
	require.Nil(t, user.LastFailedLogin)
}

func TestLoginGuardSecondBlockIsLonger(t *testing.T) {
	guard, user, _, clock := newGuardFixture(t)
	ctx := context.Background()

	block := func(want time.Duration) {
		for i := 0; i < 2; i++ {
			_, err := guard.Authenticate(ctx, user.Email, "wrong", "10.0.0.1")
			require.Error(t, err)
			clock.Advance(2 * time.Second)
		}
		_, err := guard.Authenticate(ctx, user.Email, "wrong", "10.0.0.1")
		var blockedErr *AccountBlockedError
		require.ErrorAs(t, err, &blockedErr)
		require.Equal(t, want, blockedErr.Until.Sub(clock.Now()))
	}

	block(5 * time.Minute)
	clock.Advance(6 * time.Minute)
	block(10 * time.Minute)
}

func TestLoginGuardDebounce(t *testing.T) {
	guard, user, _, clock := newGuardFixture(t)
	ctx := context.Background()

	_, err := guard.Authenticate(ctx, user.Email, "wrong", "10.0.0.1")
	var wrongErr *WrongPasswordError
	require.ErrorAs(t, err, &wrongErr)

	clock.Advance(500 * time.Millisecond)
	_, err = guard.Authenticate(ctx, user.Email, "wrong", "10.0.0.1")
	require.ErrorIs(t, err, ErrAttemptDebounced)
	require.Equal(t, 1, user.FailedLoginAttempts)
}

func TestLoginGuardIdleReset(t *testing.T) {
	guard, user, _, clock := newGuardFixture(t)
	ctx := context.Background()

	_, err := guard.Authenticate(ctx, user.Email, "wrong", "10.0.0.1")
	require.Error(t, err)
	_, err = guard.Authenticate(ctx, user.Email, "wrong", "10.0.0.1")
	require.ErrorIs(t, err, ErrAttemptDebounced)

	clock.Advance(11 * time.Minute)
	_, err = guard.Authenticate(ctx, user.Email, "wrong", "10.0.0.1")
	var wrongErr *WrongPasswordError
	require.ErrorAs(t, err, &wrongErr)
	require.Equal(t, 2, wrongErr.AttemptsLeft) // streak restarted, not inherited
}

func TestLoginGuardSuccessResetsState(t *testing.T) {
	guard, user, limiter, clock := newGuardFixture(t)
	ctx := context.Background()

	lastFailed := clock.Now().Add(-30 * time.Second)
	user.FailedLoginAttempts = 2
	user.BlockDuration = 15
	user.LastFailedLogin = &lastFailed

	got, err := guard.Authenticate(ctx, user.Email, testPassword, "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	require.Zero(t, user.FailedLoginAttempts)
	require.Nil(t, user.BlockedUntil)
	require.Equal(t, 5, user.BlockDuration)
	require.Nil(t, user.LastFailedLogin)
	require.Equal(t, 1, limiter.resets)
}

func TestLoginGuardBlockedRejectsCorrectPassword(t *testing.T) {
	guard, user, _, clock := newGuardFixture(t)
	ctx := context.Background()

	blockedUntil := clock.Now().Add(4 * time.Minute)
	user.BlockedUntil = &blockedUntil

	_, err := guard.Authenticate(ctx, user.Email, testPassword, "10.0.0.1")
	var blockedErr *AccountBlockedError
	require.ErrorAs(t, err, &blockedErr)
	require.Equal(t, 4, blockedErr.RemainingMinutes())
	require.Equal(t, blockedUntil, *user.BlockedUntil) // state unchanged
}

func TestLoginGuardBlockExpiresLazily(t *testing.T) {
	guard, user, _, clock := newGuardFixture(t)
	ctx := context.Background()

	blockedUntil := clock.Now().Add(4 * time.Minute)
	user.BlockedUntil = &blockedUntil

	clock.Advance(5 * time.Minute)
	got, err := guard.Authenticate(ctx, user.Email, testPassword, "10.0.0.1")
	require.NoError(t, err)
	require.Nil(t, got.BlockedUntil)
}

func TestLoginGuardUnknownEmail(t *testing.T) {
	guard, _, limiter, _ := newGuardFixture(t)

	_, err := guard.Authenticate(context.Background(), "nobody@x.com", "whatever", "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Equal(t, 1, limiter.failures) // enumeration is not free
}

func TestLoginGuardIPBlockedSkipsAccount(t *testing.T) {
	guard, user, limiter, _ := newGuardFixture(t)
	limiter.blocked = true

	_, err := guard.Authenticate(context.Background(), user.Email, testPassword, "10.0.0.1")
	require.ErrorIs(t, err, ErrIPBlocked)
	require.Zero(t, user.FailedLoginAttempts)
}

func TestLoginGuardIPThresholdDuringFailure(t *testing.T) {
	guard, user, limiter, _ := newGuardFixture(t)
	ctx := context.Background()
	limiter.blockAfter = 5
	limiter.failures = 4

	_, err := guard.Authenticate(ctx, user.Email, "wrong", "10.0.0.1")
	require.ErrorIs(t, err, ErrIPBlocked)
	// the attempt that blocked the IP is not charged to the account
	require.Zero(t, user.FailedLoginAttempts)
}

func TestLoginGuardDisabledAccount(t *testing.T) {
	guard, user, _, _ := newGuardFixture(t)
	user.Disabled = true

	_, err := guard.Authenticate(context.Background(), user.Email, testPassword, "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Zero(t, user.FailedLoginAttempts)
}
