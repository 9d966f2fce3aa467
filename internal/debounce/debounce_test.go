package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesCalls(t *testing.T) {
	var count atomic.Int32
	d := New(50*time.Millisecond, func() {
		count.Add(1)
	})

	for i := 0; i < 10; i++ {
		d.Call()
		time.Sleep(5 * time.Millisecond)
	}

	// Wait for the quiet period to elapse.
	time.Sleep(150 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 callback execution, got %d", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	var count atomic.Int32
	d := New(30*time.Millisecond, func() {
		count.Add(1)
	})

	d.Call()
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 callback executions after Cancel, got %d", got)
	}
	if d.IsPending() {
		t.Error("debouncer should not be pending after Cancel")
	}
}

func TestDebouncerCallImmediate(t *testing.T) {
	var count atomic.Int32
	d := New(time.Hour, func() {
		count.Add(1)
	})

	d.Call()
	d.CallImmediate()

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 immediate execution, got %d", got)
	}

	// The original scheduled call must not fire later.
	time.Sleep(50 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Errorf("expected no extra executions, got %d", got)
	}
}

func TestDebouncerCallImmediateWithoutPending(t *testing.T) {
	var count atomic.Int32
	d := New(30*time.Millisecond, func() {
		count.Add(1)
	})

	d.CallImmediate()

	if got := count.Load(); got != 0 {
		t.Errorf("expected no execution without a pending call, got %d", got)
	}
}

func TestDebouncerReusableAfterCancel(t *testing.T) {
	var count atomic.Int32
	d := New(20*time.Millisecond, func() {
		count.Add(1)
	})

	d.Call()
	d.Cancel()
	d.Call()

	time.Sleep(100 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 execution after re-arming, got %d", got)
	}
}
