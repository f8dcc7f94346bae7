package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Throttled spaces calls to the wrapped client with a token bucket so a
// service shared by several workers stays under the provider's request quota.
type Throttled struct {
	next    Client
	limiter *rate.Limiter
}

// NewThrottled allows perMinute calls per minute with a burst of one.
// A non-positive perMinute returns next unchanged.
func NewThrottled(next Client, perMinute int) Client {
	if perMinute <= 0 {
		return next
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (t *Throttled) Complete(ctx context.Context, req Request) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return t.next.Complete(ctx, req)
}
