package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T) *RedisLimiter {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisLimiter(client)
}

func TestAllow_UnderLimit(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := limiter.Allow(ctx, "send:+84901234567", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be admitted", i+1)
	}
}

func TestAllow_OverLimitDenied(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "send:+84901234567", 3, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, "send:+84901234567", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// A denied request is not recorded, so it cannot extend the lockout.
	ok, err = limiter.Allow(ctx, "send:+84901234567", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "send:+84901234567", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = limiter.Allow(ctx, "send:+84901234567", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "verify:+84901234567", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "a different scope has its own window")
}

func TestAllow_ConcurrentCallersAdmitExactlyLimit(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	const (
		callers = 12
		limit   = 5
	)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := limiter.Allow(ctx, "send:+84901234567", limit, time.Minute)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Check-and-record is one atomic script, so a burst cannot over-admit.
	assert.Equal(t, limit, admitted)
}

func TestAllow_WindowSlides(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	// Scores are wall-clock nanos, so the window is tested with real time
	// rather than miniredis FastForward.
	const window = 50 * time.Millisecond

	ok, err := limiter.Allow(ctx, "send:+84901234567", 1, window)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = limiter.Allow(ctx, "send:+84901234567", 1, window)
	require.NoError(t, err)
	require.False(t, ok)

	time.Sleep(window + 20*time.Millisecond)

	ok, err = limiter.Allow(ctx, "send:+84901234567", 1, window)
	require.NoError(t, err)
	assert.True(t, ok, "the old event has slid out of the window")
}
