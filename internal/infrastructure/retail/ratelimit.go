package retail

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval is the minimum spacing between two upstream requests
const DefaultMinInterval = time.Second

// RequestSpacer enforces a minimum interval between upstream requests.
// One spacer is shared by every request a Client makes, so concurrent
// callers queue behind each other.
type RequestSpacer struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewRequestSpacer creates a spacer that lets one request through per interval.
// A zero interval disables spacing.
func NewRequestSpacer(interval time.Duration) *RequestSpacer {
	if interval <= 0 {
		return &RequestSpacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RequestSpacer{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait blocks until the next request is permitted or ctx is done.
func (s *RequestSpacer) Wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// Interval returns the configured spacing.
func (s *RequestSpacer) Interval() time.Duration {
	return s.interval
}
