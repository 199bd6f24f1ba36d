// Package clocktest provides a manually advanced clock for tests.
package clocktest

import (
	"context"
	"sync"
	"time"

	"github.com/jgosmann/linux-bsec-exporter/internal/clock"
)

// Fake is a clock whose time only moves when advanced. Sleep advances
// the fake time by the full duration and returns immediately, so timing
// behaviour can be tested without real delays.
type Fake struct {
	mu  sync.Mutex
	now int64
}

var _ clock.Clock = (*Fake)(nil)

func New() *Fake {
	return &Fake{}
}

func (f *Fake) TimestampNS() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake time forward.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += d.Nanoseconds()
}

func (f *Fake) Sleep(_ context.Context, duration time.Duration) {
	if duration > 0 {
		f.Advance(duration)
	}
}
