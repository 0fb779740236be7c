package resilience

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Guard wraps a remote dependency: each attempt waits on a token bucket,
// passes through the circuit breaker, and failed transient attempts are
// retried with backoff.
type Guard struct {
	limiter *rate.Limiter
	breaker *Breaker
	policy  RetryPolicy
}

// GuardConfig configures a Guard. A non-positive RatePerSecond disables
// rate limiting.
type GuardConfig struct {
	RatePerSecond float64
	Burst         int
	Retry         RetryPolicy
	Breaker       BreakerConfig
}

// NewGuard builds a Guard from cfg.
func NewGuard(cfg GuardConfig) *Guard {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Guard{
		limiter: rate.NewLimiter(limit, max(cfg.Burst, 1)),
		breaker: NewBreaker(cfg.Breaker),
		policy:  cfg.Retry,
	}
}

// Breaker exposes the guard's circuit breaker.
func (g *Guard) Breaker() *Breaker { return g.breaker }

// Call runs fn under g. Breaker rejections are not retried.
func Call[T any](ctx context.Context, g *Guard, fn func(context.Context) (T, error)) (T, error) {
	p := g.policy
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	p.Retryable = func(err error) bool {
		return !eris.Is(err, ErrOpen) && retryable(err)
	}

	return Retry(ctx, p, func(ctx context.Context) (T, error) {
		var zero T
		if err := g.limiter.Wait(ctx); err != nil {
			return zero, eris.Wrap(err, "resilience: rate limit wait")
		}
		if err := g.breaker.Allow(); err != nil {
			return zero, err
		}
		v, err := fn(ctx)
		g.breaker.Record(err)
		return v, err
	})
}
