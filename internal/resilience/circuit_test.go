package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var errDown = errors.New("down")

func TestBreakerOpensAndRecovers(t *testing.T) {
	MustRegisterMetrics("test", prometheus.NewRegistry())
	clock := &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	b := NewBreaker("redis", BreakerOptions{MinRequests: 2, FailureRatio: 0.5, OpenFor: time.Second, Now: clock.Now, Logger: zerolog.Nop()})
	ctx := context.Background()

	require.ErrorIs(t, b.Do(ctx, func(context.Context) error { return errDown }), errDown)
	require.Equal(t, Closed, b.State())
	require.ErrorIs(t, b.Do(ctx, func(context.Context) error { return errDown }), errDown)
	require.Equal(t, Open, b.State())
	require.Equal(t, 1.0, testutil.ToFloat64(stateGauge.WithLabelValues("redis")))

	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil })
	require.ErrorIs(t, err, ErrOpenCircuit)
	require.False(t, called)

	clock.Advance(time.Second)
	require.True(t, b.Allow(ctx))
	require.Equal(t, HalfOpen, b.State())
	require.False(t, b.Allow(ctx), "only one probe while half-open")
	b.Report(ctx, nil)
	require.Equal(t, Closed, b.State())

	require.Equal(t, 0.0, testutil.ToFloat64(stateGauge.WithLabelValues("redis")))
	require.Equal(t, 1.0, testutil.ToFloat64(transitions.WithLabelValues("redis", "closed", "open")))
	require.Equal(t, 1.0, testutil.ToFloat64(transitions.WithLabelValues("redis", "open", "half_open")))
	require.Equal(t, 1.0, testutil.ToFloat64(transitions.WithLabelValues("redis", "half_open", "closed")))
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := NewBreaker("db", BreakerOptions{MinRequests: 1, OpenFor: time.Minute, Now: clock.Now})
	ctx := context.Background()

	b.Report(ctx, errDown)
	require.Equal(t, Open, b.State())
	clock.Advance(time.Minute)
	require.True(t, b.Allow(ctx))
	b.Report(ctx, errDown)
	require.Equal(t, Open, b.State())
	require.False(t, b.Allow(ctx))
}

func TestBreakerStaysClosedBelowRatio(t *testing.T) {
	b := NewBreaker("", BreakerOptions{MinRequests: 4, FailureRatio: 0.75})
	ctx := context.Background()
	require.Equal(t, "default", b.Target())
	for i := 0; i < 20; i++ {
		var err error
		if i%2 == 0 {
			err = errDown
		}
		b.Report(ctx, err)
	}
	require.Equal(t, Closed, b.State())
}
