//go:build !tinygo

package hal

import "time"

const tickDur = time.Millisecond

// hostTime converts wall-clock progress into a millisecond tick stream.
type hostTime struct {
	ch  chan uint64
	seq uint64

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// advance emits one tick per elapsed millisecond since the previous call.
// The first call emits a single tick.
func (t *hostTime) advance(now time.Time) {
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.emit(1)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	ticks := uint64(t.acc / tickDur)
	if ticks == 0 {
		return
	}
	t.acc %= tickDur
	t.emit(ticks)
}

// emit drops ticks when the consumer lags; the sequence number still
// advances so the kernel catches up on the next read.
func (t *hostTime) emit(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
