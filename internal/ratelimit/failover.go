package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/parking-fee/internal/resilience"
)

// Failover sends decisions to Primary while its breaker is closed and to
// Fallback otherwise. A Primary error falls through to Fallback for that call.
type Failover struct {
	Primary  Allower
	Fallback Allower
	Breaker  *resilience.Breaker
	Logger   zerolog.Logger
}

// Allow implements Allower.
func (f Failover) Allow(ctx context.Context, key string, window time.Duration, limit int) (bool, int, time.Time, error) {
	if f.Primary == nil {
		return f.fallback(ctx, key, window, limit)
	}
	if f.Breaker != nil && !f.Breaker.Allow(ctx) {
		return f.fallback(ctx, key, window, limit)
	}
	allowed, remaining, reset, err := f.Primary.Allow(ctx, key, window, limit)
	if f.Breaker != nil {
		f.Breaker.Report(ctx, err)
	}
	if err != nil {
		f.Logger.Warn().Ctx(ctx).Err(err).Str("key", key).Msg("primary rate limiter failed; using fallback")
		return f.fallback(ctx, key, window, limit)
	}
	return allowed, remaining, reset, nil
}

func (f Failover) fallback(ctx context.Context, key string, window time.Duration, limit int) (bool, int, time.Time, error) {
	if f.Fallback == nil {
		return true, limit, time.Now().Add(window), nil
	}
	return f.Fallback.Allow(ctx, key, window, limit)
}
