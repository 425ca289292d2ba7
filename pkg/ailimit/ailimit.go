// Package ailimit provides an adaptive rate limiter for outbound model
// calls. The rate creeps up while calls succeed and is cut when they fail,
// so a struggling upstream gets breathing room without any retry loop.
package ailimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	minLimit    rate.Limit
	maxLimit    rate.Limit
	stepUp      rate.Limit
	stepDown    float64
	lastFailure time.Time
}

// New creates a limiter starting at initial requests per second, bounded by
// [min, max]. stepUp is added after sustained success; stepDown multiplies
// the rate on failure (e.g. 0.5 to halve).
func New(initial, min, max rate.Limit, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if initial < min {
		initial = min
	}
	burst := int(initial)
	if burst < 1 {
		burst = 1
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burst),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Default returns a limiter tuned for chat traffic: 1 rps start, capped at 5.
func Default() *AdaptiveLimiter {
	return New(1, 0.2, 5, 0.2, 0.5)
}

// Wait blocks until a token is available or the context is canceled.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success nudges the rate up, unless a failure happened very recently.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastFailure) > 10*time.Second {
		a.adjust(a.limiter.Limit() + a.stepUp)
	}
}

// Failure cuts the rate after a failed call.
func (a *AdaptiveLimiter) Failure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastFailure = time.Now()
	a.adjust(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Current returns the current requests per second.
func (a *AdaptiveLimiter) Current() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) adjust(newLimit rate.Limit) {
	if newLimit > a.maxLimit {
		newLimit = a.maxLimit
	} else if newLimit < a.minLimit {
		newLimit = a.minLimit
	}
	if newLimit == a.limiter.Limit() {
		return
	}
	a.limiter.SetLimit(newLimit)
	burst := int(newLimit)
	if burst < 1 {
		burst = 1
	}
	a.limiter.SetBurst(burst)
}
