package pipeline

import (
	"context"
	"math/rand"
	"time"
)

// backoff implements exponential backoff with jitter.
type backoff struct {
	base time.Duration
	max  time.Duration
	cur  time.Duration
}

func newBackoff(base, max time.Duration) *backoff { return &backoff{base: base, max: max} }

// next advances the schedule and returns the raw delay: base, then doubling
// up to max.
func (b *backoff) next() time.Duration {
	if b.cur <= 0 {
		b.cur = b.base
	} else {
		b.cur *= 2
		if b.cur > b.max {
			b.cur = b.max
		}
	}
	return b.cur
}

// Sleep waits for the next delay with +/-20% jitter, so concurrent workers
// retrying against the same endpoint do not synchronize. Returns early with
// the context error if ctx is canceled.
func (b *backoff) Sleep(ctx context.Context) error {
	j := 0.8 + 0.4*rand.Float64()
	timer := time.NewTimer(time.Duration(float64(b.next()) * j))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
