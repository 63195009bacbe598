package kernel

import (
	"context"
	"errors"
	"sync"
)

const maxTimers = 32

var (
	ErrNoTimerSlot = errors.New("timer table full")
	ErrZeroPeriod  = errors.New("timer period must be positive")
)

// Handle identifies a scheduled callback. The zero Handle is invalid.
type Handle struct {
	slot uint8
	gen  uint32
}

func (h Handle) Valid() bool { return h.gen != 0 }

type timer struct {
	gen    uint32
	fn     func()
	period uint64
	due    uint64
	repeat bool
}

func (t *timer) inUse() bool { return t.gen != 0 }

// Timers is the tick-driven callback table. Callbacks run on the goroutine
// that calls TickTo, which plays the role of the timer interrupt.
type Timers struct {
	mu   sync.Mutex
	idle *sync.Cond

	// dispatch serializes TickTo callers.
	dispatch sync.Mutex

	now     uint64
	gen     uint32
	running Handle
	slots   [maxTimers]timer
}

// NewTimers returns an empty timer table at tick 0.
func NewTimers() *Timers {
	t := &Timers{}
	t.idle = sync.NewCond(&t.mu)
	return t
}

// Now returns the last tick delivered to TickTo.
func (t *Timers) Now() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

// Schedule registers fn to run period ticks from now, and every period ticks
// after that when repeat is set.
func (t *Timers) Schedule(fn func(), period uint64, repeat bool) (Handle, error) {
	if period == 0 {
		return Handle{}, ErrZeroPeriod
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		s := &t.slots[i]
		if s.inUse() {
			continue
		}
		t.gen++
		if t.gen == 0 {
			t.gen = 1
		}
		*s = timer{gen: t.gen, fn: fn, period: period, due: t.now + period, repeat: repeat}
		return Handle{slot: uint8(i), gen: t.gen}, nil
	}
	return Handle{}, ErrNoTimerSlot
}

// Cancel removes h. When it returns, no invocation of h's callback is in
// progress and none will start. It reports whether h was still scheduled.
//
// Cancel must not be called from h's own callback.
func (t *Timers) Cancel(h Handle) bool {
	if !h.Valid() || int(h.slot) >= maxTimers {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	found := false
	if s := &t.slots[h.slot]; s.gen == h.gen {
		*s = timer{}
		found = true
	}
	for t.running == h {
		t.idle.Wait()
	}
	return found
}

// TickTo advances time to seq and runs every callback that came due.
// A repeating timer that missed several periods fires once and is
// rescheduled relative to seq.
func (t *Timers) TickTo(seq uint64) {
	t.dispatch.Lock()
	defer t.dispatch.Unlock()

	t.mu.Lock()
	if seq <= t.now {
		t.mu.Unlock()
		return
	}
	t.now = seq
	var due [maxTimers]Handle
	n := 0
	for i := range t.slots {
		s := &t.slots[i]
		if s.inUse() && s.due <= seq {
			due[n] = Handle{slot: uint8(i), gen: s.gen}
			n++
		}
	}
	t.mu.Unlock()

	for _, h := range due[:n] {
		t.fire(h, seq)
	}
}

func (t *Timers) fire(h Handle, now uint64) {
	t.mu.Lock()
	s := &t.slots[h.slot]
	if s.gen != h.gen {
		// Cancelled since collection.
		t.mu.Unlock()
		return
	}
	fn := s.fn
	if s.repeat {
		s.due += s.period
		if s.due <= now {
			s.due = now + s.period
		}
	} else {
		*s = timer{}
	}
	t.running = h
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.running = Handle{}
		t.idle.Broadcast()
		t.mu.Unlock()
	}()
	fn()
}

// Sleep blocks for the given number of ticks or until ctx is done.
func (t *Timers) Sleep(ctx context.Context, ticks uint64) error {
	if ticks == 0 {
		return ctx.Err()
	}
	woke := make(chan struct{})
	h, err := t.Schedule(func() { close(woke) }, ticks, false)
	if err != nil {
		return err
	}
	select {
	case <-woke:
		return nil
	case <-ctx.Done():
		t.Cancel(h)
		return ctx.Err()
	}
}
