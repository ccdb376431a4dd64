package ocr

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/tsawler/ledger/model"
)

// RateLimited throttles calls to a remote Recognizer with a token bucket.
type RateLimited struct {
	next    Recognizer
	limiter *rate.Limiter
}

// NewRateLimited wraps next so that at most requestsPerSecond calls are made
// on average, with bursts of up to burst calls. A non-positive rate
// disables throttling.
func NewRateLimited(next Recognizer, requestsPerSecond float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Recognize waits for the limiter, then delegates.
func (r *RateLimited) Recognize(ctx context.Context, image []byte) ([]model.Token, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Recognize(ctx, image)
}
