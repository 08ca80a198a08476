package ucsc

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// throttle spaces every remote request at least `interval` apart.
type throttle struct {
	limiter  *rate.Limiter
	interval time.Duration
	last     time.Time
}

func newThrottle(interval time.Duration) *throttle {
	// a burst of 1 means an idle session never earns more than one immediate request
	return &throttle{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// wait blocks until the next request may be issued and returns how long it waited.
// The interval runs from the start of one request to the start of the next.
func (t *throttle) wait(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	err := t.limiter.Wait(ctx)
	if err != nil {
		return 0, err
	}
	// the limiter schedules against its own reservations, a late timer on the
	// previous request can leave the wall clock gap short of the interval
	if !t.last.IsZero() {
		remaining := t.interval - time.Since(t.last)
		if remaining > 0 {
			timer := time.NewTimer(remaining)
			select {
			case <-ctx.Done():
				timer.Stop()
				return 0, ctx.Err()
			case <-timer.C:
			}
		}
	}
	t.last = time.Now()
	return t.last.Sub(start), nil
}
