package rate

import (
	"context"
	"fmt"

	xrate "golang.org/x/time/rate"
)

// Limiter gates outbound API calls so we respect Gmail rate limits.
type Limiter interface {
	Wait(ctx context.Context) error
}

// TokenBucket releases a fixed number of requests per second.
type TokenBucket struct {
	limiter *xrate.Limiter
}

// NewTokenBucket returns a limiter that releases rps tokens per second with
// a burst of one, so calls are spread evenly.
func NewTokenBucket(rps int) *TokenBucket {
	if rps <= 0 {
		rps = 1
	}
	return &TokenBucket{limiter: xrate.NewLimiter(xrate.Limit(rps), 1)}
}

// Wait blocks until a token is available or the context is canceled.
func (t *TokenBucket) Wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate wait canceled: %w", err)
	}
	return nil
}

// Unlimited never blocks. It is used when pacing is disabled.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}

var (
	_ Limiter = (*TokenBucket)(nil)
	_ Limiter = Unlimited{}
)
