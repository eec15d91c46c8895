package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/parking-fee/internal/resilience"
)

type countingAllower struct {
	calls int
	err   error
}

func (c *countingAllower) Allow(_ context.Context, _ string, window time.Duration, limit int) (bool, int, time.Time, error) {
	c.calls++
	if c.err != nil {
		return false, 0, time.Time{}, c.err
	}
	return true, limit - 1, time.Now().Add(window), nil
}

func TestFailoverUsesFallbackWhenPrimaryFails(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fallback := &countingAllower{}
	f := Failover{
		Primary:  Limiter{Client: client, Prefix: "rl:"},
		Fallback: fallback,
		Breaker:  resilience.NewBreaker("redis", resilience.BreakerOptions{MinRequests: 1, OpenFor: time.Hour}),
	}
	ctx := context.Background()

	allowed, remaining, _, err := f.Allow(ctx, "k", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 2, remaining)
	require.Zero(t, fallback.calls)

	mr.Close()
	allowed, _, _, err = f.Allow(ctx, "k", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 1, fallback.calls)
	require.Equal(t, resilience.Open, f.Breaker.State())

	_, _, _, err = f.Allow(ctx, "k", time.Minute, 3)
	require.NoError(t, err)
	require.Equal(t, 2, fallback.calls)
}

func TestFailoverSkipsPrimaryWhileOpen(t *testing.T) {
	primary := &countingAllower{err: errors.New("boom")}
	fallback := &countingAllower{}
	f := Failover{
		Primary:  primary,
		Fallback: fallback,
		Breaker:  resilience.NewBreaker("redis", resilience.BreakerOptions{MinRequests: 1, OpenFor: time.Hour}),
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _, _, err := f.Allow(ctx, "k", time.Minute, 5)
		require.NoError(t, err)
	}
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 3, fallback.calls)
}

func TestFailoverWithoutFallbackAllows(t *testing.T) {
	f := Failover{Primary: &countingAllower{err: errors.New("boom")}}
	allowed, remaining, _, err := f.Allow(context.Background(), "k", time.Minute, 5)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 5, remaining)
}
