package kernel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleZeroPeriod(t *testing.T) {
	tm := NewTimers()
	if _, err := tm.Schedule(func() {}, 0, true); !errors.Is(err, ErrZeroPeriod) {
		t.Fatalf("Schedule() err = %v, want ErrZeroPeriod", err)
	}
}

func TestRepeatingTimerFiresEveryPeriod(t *testing.T) {
	tm := NewTimers()
	var n int
	h, err := tm.Schedule(func() { n++ }, 16, true)
	if err != nil {
		t.Fatalf("Schedule() err = %v", err)
	}
	if !h.Valid() {
		t.Fatal("expected valid handle")
	}

	for seq := uint64(1); seq <= 64; seq++ {
		tm.TickTo(seq)
	}
	if n != 4 {
		t.Fatalf("callback count = %d, want 4", n)
	}
}

func TestOneShotTimerFiresOnce(t *testing.T) {
	tm := NewTimers()
	var n int
	if _, err := tm.Schedule(func() { n++ }, 5, false); err != nil {
		t.Fatalf("Schedule() err = %v", err)
	}
	for seq := uint64(1); seq <= 20; seq++ {
		tm.TickTo(seq)
	}
	if n != 1 {
		t.Fatalf("callback count = %d, want 1", n)
	}
}

func TestRepeatingTimerCatchesUpOnce(t *testing.T) {
	tm := NewTimers()
	var n int
	if _, err := tm.Schedule(func() { n++ }, 16, true); err != nil {
		t.Fatalf("Schedule() err = %v", err)
	}

	tm.TickTo(100)
	if n != 1 {
		t.Fatalf("callback count after jump = %d, want 1", n)
	}
	tm.TickTo(115)
	if n != 1 {
		t.Fatalf("callback count at 115 = %d, want 1", n)
	}
	tm.TickTo(116)
	if n != 2 {
		t.Fatalf("callback count at 116 = %d, want 2", n)
	}
}

func TestTickToIgnoresStaleSequence(t *testing.T) {
	tm := NewTimers()
	tm.TickTo(10)
	tm.TickTo(5)
	if got := tm.Now(); got != 10 {
		t.Fatalf("Now() = %d, want 10", got)
	}
}

func TestCancelStopsCallbacks(t *testing.T) {
	tm := NewTimers()
	var n int
	h, err := tm.Schedule(func() { n++ }, 1, true)
	if err != nil {
		t.Fatalf("Schedule() err = %v", err)
	}
	tm.TickTo(1)
	if !tm.Cancel(h) {
		t.Fatal("Cancel() = false, want true")
	}
	tm.TickTo(2)
	tm.TickTo(3)
	if n != 1 {
		t.Fatalf("callback count = %d, want 1", n)
	}
	if tm.Cancel(h) {
		t.Fatal("second Cancel() = true, want false")
	}
}

func TestCancelStaleHandleKeepsNewTimer(t *testing.T) {
	tm := NewTimers()
	old, _ := tm.Schedule(func() {}, 1, false)
	tm.TickTo(1)

	var n int
	if _, err := tm.Schedule(func() { n++ }, 1, false); err != nil {
		t.Fatalf("Schedule() err = %v", err)
	}
	if tm.Cancel(old) {
		t.Fatal("Cancel(stale) = true, want false")
	}
	tm.TickTo(2)
	if n != 1 {
		t.Fatalf("callback count = %d, want 1", n)
	}
}

func TestCancelWaitsForRunningCallback(t *testing.T) {
	tm := NewTimers()
	entered := make(chan struct{})
	release := make(chan struct{})
	var after atomic.Bool

	h, err := tm.Schedule(func() {
		close(entered)
		<-release
		after.Store(true)
	}, 1, false)
	if err != nil {
		t.Fatalf("Schedule() err = %v", err)
	}

	go tm.TickTo(1)
	<-entered

	cancelled := make(chan struct{})
	go func() {
		tm.Cancel(h)
		close(cancelled)
	}()

	select {
	case <-cancelled:
		t.Fatal("Cancel() returned while callback was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Cancel()")
	}
	if !after.Load() {
		t.Fatal("Cancel() returned before the callback finished")
	}
}

func TestScheduleTableFull(t *testing.T) {
	tm := NewTimers()
	for i := 0; i < maxTimers; i++ {
		if _, err := tm.Schedule(func() {}, 1, true); err != nil {
			t.Fatalf("Schedule() err = %v at slot %d", err, i)
		}
	}
	if _, err := tm.Schedule(func() {}, 1, true); !errors.Is(err, ErrNoTimerSlot) {
		t.Fatalf("Schedule() err = %v, want ErrNoTimerSlot", err)
	}
}

func TestSleepWakesAfterTicks(t *testing.T) {
	tm := NewTimers()
	done := make(chan error, 1)
	go func() {
		done <- tm.Sleep(context.Background(), 10)
	}()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for seq := uint64(1); ; seq++ {
			select {
			case <-stop:
				return
			default:
			}
			tm.TickTo(seq)
			time.Sleep(100 * time.Microsecond)
		}
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Sleep() err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Sleep()")
	}
	if got := tm.Now(); got < 10 {
		t.Fatalf("Now() = %d after Sleep(10), want >= 10", got)
	}
}

func TestSleepContextCancel(t *testing.T) {
	tm := NewTimers()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tm.Sleep(ctx, 100); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep() err = %v, want context.Canceled", err)
	}
}

type chanTime struct {
	ch chan uint64
}

func (c chanTime) Ticks() <-chan uint64 { return c.ch }

func TestStartTickForwardsTicks(t *testing.T) {
	s := NewSystem()
	ht := chanTime{ch: make(chan uint64)}

	fired := make(chan struct{})
	if _, err := s.Timers().Schedule(func() { close(fired) }, 3, false); err != nil {
		t.Fatalf("Schedule() err = %v", err)
	}

	done := s.StartTick(context.Background(), ht)
	for seq := uint64(1); seq <= 3; seq++ {
		ht.ch <- seq
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for timer")
	}
	close(ht.ch)
	<-done
	if got := s.Ticks(); got != 3 {
		t.Fatalf("Ticks() = %d, want 3", got)
	}
}
