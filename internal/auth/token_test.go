package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/w0nsdoof/diplomatch/internal/common"
	"github.com/w0nsdoof/diplomatch/model"
)

func newTokenFixture(t *testing.T) (*TokenService, *model.User, *fakeClock) {
	t.Helper()
	clock := newFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewTokenService("test-secret", "diplomatch", time.Hour, 7*24*time.Hour, clock)
	user := &model.User{ID: 42, Email: "a@x.com", Role: model.RoleSupervisor, IsProfileCompleted: true}
	return svc, user, clock
}

func TestTokenServiceIssueAndVerify(t *testing.T) {
	svc, user, _ := newTokenFixture(t)

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)

	claims, err := svc.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, model.RoleSupervisor, claims.Role)
	require.True(t, claims.IsProfileCompleted)

	userID, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, uint(42), userID)
}

func TestTokenServiceRejectsWrongType(t *testing.T) {
	svc, user, _ := newTokenFixture(t)

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(pair.RefreshToken)
	require.ErrorIs(t, err, ErrWrongTokenType)
	_, err = svc.VerifyRefresh(pair.AccessToken)
	require.ErrorIs(t, err, ErrWrongTokenType)
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	svc, user, clock := newTokenFixture(t)

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = svc.VerifyAccess(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// the refresh token outlives the access token
	_, err = svc.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
}

func TestTokenServiceRejectsTampered(t *testing.T) {
	svc, user, _ := newTokenFixture(t)

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)

	other := NewTokenService("other-secret", "diplomatch", time.Hour, time.Hour, common.RealClock{})
	_, err = other.VerifyAccess(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}
