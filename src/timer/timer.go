package timer

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the time source for floor travel and door dwell.
// Tests drive it with a fake clock.
type Clock = clockwork.Clock

func NewRealClock() Clock {
	return clockwork.NewRealClock()
}

// Wait blocks for d on clk, or until ctx is cancelled.
func Wait(ctx context.Context, clk Clock, d time.Duration) error {
	t := clk.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.Chan():
		return nil
	}
}
