package pipeline

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{}, 4)
	d := NewDebouncer(20*time.Millisecond, func() {
		calls.Add(1)
		done <- struct{}{}
	})

	for range 5 {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	time.Sleep(40 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
	if d.Pending() {
		t.Error("nothing should be pending after the call")
	}
}

func TestDebouncerFlushAndStop(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(time.Hour, func() { calls.Add(1) })

	if d.Flush() {
		t.Error("Flush with nothing pending should report false")
	}
	d.Trigger()
	if !d.Pending() {
		t.Error("Trigger should mark pending")
	}
	if !d.Flush() || calls.Load() != 1 {
		t.Errorf("Flush should run fn once, calls = %d", calls.Load())
	}

	d.Trigger()
	d.Stop()
	d.Trigger()
	if d.Pending() || d.Flush() {
		t.Error("stopped debouncer should ignore events")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d after Stop", calls.Load())
	}
}

func TestNewDebouncerDefaultDelay(t *testing.T) {
	if d := NewDebouncer(0, func() {}); d.delay != DefaultDebounce {
		t.Errorf("delay = %v", d.delay)
	}
}
