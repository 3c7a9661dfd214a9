package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/w0nsdoof/diplomatch/internal/store"
)

func newLimiterFixture(t *testing.T) (*IPRateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewIPRateLimiter(store.NewRedisStorage(rdb)), mr
}

func TestIPRateLimiterBlocksAtThreshold(t *testing.T) {
	limiter, _ := newLimiterFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		blocked, err := limiter.RecordFailure(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.False(t, blocked)
	}

	blocked, err := limiter.RecordFailure(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, blocked)

	blocked, err = limiter.IsBlocked(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, blocked)
}

func TestIPRateLimiterBlockExpires(t *testing.T) {
	limiter, mr := newLimiterFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		limiter.RecordFailure(ctx, "10.0.0.1")
	}
	blocked, err := limiter.IsBlocked(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, blocked)

	mr.FastForward(16 * time.Minute)
	blocked, err = limiter.IsBlocked(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestIPRateLimiterCounterWindowExpires(t *testing.T) {
	limiter, mr := newLimiterFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		limiter.RecordFailure(ctx, "10.0.0.1")
	}
	mr.FastForward(11 * time.Minute)

	// the streak expired, so this failure starts a fresh count
	blocked, err := limiter.RecordFailure(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestIPRateLimiterIsolatesIPs(t *testing.T) {
	limiter, _ := newLimiterFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		limiter.RecordFailure(ctx, "10.0.0.1")
	}

	blocked, err := limiter.IsBlocked(ctx, "10.0.0.2")
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestIPRateLimiterReset(t *testing.T) {
	limiter, _ := newLimiterFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		limiter.RecordFailure(ctx, "10.0.0.1")
	}
	require.NoError(t, limiter.Reset(ctx, "10.0.0.1"))

	blocked, err := limiter.IsBlocked(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, blocked)

	blocked, err = limiter.RecordFailure(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, blocked)
}
