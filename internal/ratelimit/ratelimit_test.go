package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", rps: 1, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", rps: 1, burst: 2, calls: 5, wantPass: 2},
		{name: "single token", rps: 1, burst: 1, calls: 1, wantPass: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("client") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	require.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.Equal(t, 2, rl.Len())
}

func TestPerMinute(t *testing.T) {
	rl := PerMinute(6, 2)
	defer rl.Stop()

	assert.True(t, rl.Allow("k"))
	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))

	// Six per minute refills one token every ten seconds.
	assert.InDelta(t, 10*time.Second, rl.RetryAfter("k"), float64(time.Second))
}

func TestKeyedRateLimiter_WaitContextCancelled(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()

	rl.Allow("test")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, rl.Wait(ctx, "test"))
}

func TestKeyedRateLimiter_EvictsIdleKeys(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newLimiter(1, 1, time.Minute, false)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(45 * time.Second)
	rl.Allow("fresh")
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, rl.evictIdle())
	assert.Equal(t, 1, rl.Len())

	// An evicted key starts over with a full bucket.
	assert.True(t, rl.Allow("old"))
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	require.NoError(t, rl.Shutdown())
}
