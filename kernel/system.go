package kernel

import (
	"context"

	"ember/hal"
)

// System is the kernel state the display code runs against: the timer table
// fed by the platform tick stream.
type System struct {
	timers *Timers
}

// NewSystem creates a kernel instance.
func NewSystem() *System {
	return &System{timers: NewTimers()}
}

// Timers returns the periodic callback table.
func (s *System) Timers() *Timers {
	return s.timers
}

// Ticks returns the current tick count (1ms per tick).
func (s *System) Ticks() uint64 {
	return s.timers.Now()
}

// StartTick forwards ht's tick stream into the timer table until ctx is done
// or the stream closes. Timer callbacks run on the forwarding goroutine.
func (s *System) StartTick(ctx context.Context, ht hal.Time) <-chan struct{} {
	done := make(chan struct{})
	if ht == nil || ht.Ticks() == nil {
		close(done)
		return done
	}
	ch := ht.Ticks()
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case seq, ok := <-ch:
				if !ok {
					return
				}
				s.timers.TickTo(seq)
			}
		}
	}()
	return done
}
