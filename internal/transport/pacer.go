package transport

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum gap between the end of one call and the start of
// the next. The first call is never delayed.
type Pacer struct {
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewPacer creates a pacer with the given gap.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{Interval: interval, now: time.Now}
}

// Wait blocks until the gap since the last Done has elapsed.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	last := p.last
	p.mu.Unlock()

	if last.IsZero() || p.Interval <= 0 {
		return ctx.Err()
	}
	d := p.Interval - p.clock().Sub(last)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done records the end of a call.
func (p *Pacer) Done() {
	p.mu.Lock()
	p.last = p.clock()
	p.mu.Unlock()
}

func (p *Pacer) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}
