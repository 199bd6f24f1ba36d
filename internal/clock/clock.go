// Package clock provides the monotonic time source the measurement
// duty cycle is scheduled against. The clock is injected everywhere it
// is needed; there is no ambient process-wide instance.
package clock

import (
	"context"
	"time"
)

// Clock is a monotonic nanosecond time source with an asynchronous
// sleep primitive.
type Clock interface {
	// TimestampNS returns a monotonic, strictly increasing timestamp.
	TimestampNS() int64

	// Sleep suspends the caller for at least duration. It returns early
	// only when ctx is done.
	Sleep(ctx context.Context, duration time.Duration)
}

// TimeAlive measures time since its construction. Its timestamps are
// process-relative, which the fusion engine accepts as long as they
// increase strictly.
type TimeAlive struct {
	start time.Time
}

// NewTimeAlive returns a TimeAlive anchored at the current instant.
func NewTimeAlive() *TimeAlive {
	return &TimeAlive{start: time.Now()}
}

func (t *TimeAlive) TimestampNS() int64 {
	return time.Since(t.start).Nanoseconds()
}

func (t *TimeAlive) Sleep(ctx context.Context, duration time.Duration) {
	if duration <= 0 {
		return
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
