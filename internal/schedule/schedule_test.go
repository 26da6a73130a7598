package schedule

import (
	"sync/atomic"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func TestFakeAfterFunc(t *testing.T) {
	f := NewFake(epoch)
	fired := 0
	f.AfterFunc(time.Second, func() { fired++ })

	f.Advance(999 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("Expected no run yet, got %d", fired)
	}
	f.Advance(time.Millisecond)
	if fired != 1 {
		t.Fatalf("Expected 1 run, got %d", fired)
	}
	f.Advance(time.Hour)
	if fired != 1 {
		t.Errorf("One-shot ran again: %d", fired)
	}
	if f.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", f.Pending())
	}
}

func TestFakeEvery(t *testing.T) {
	f := NewFake(epoch)
	var at []time.Time
	h := f.Every(45*time.Second, func() { at = append(at, f.Now()) })

	f.Advance(3 * time.Minute)
	if len(at) != 4 {
		t.Fatalf("Expected 4 runs in 3 minutes, got %d", len(at))
	}
	if !at[1].Equal(epoch.Add(90 * time.Second)) {
		t.Errorf("Second run at %v", at[1])
	}

	if !h.Stop() {
		t.Error("Expected Stop to report a pending run")
	}
	f.Advance(time.Hour)
	if len(at) != 4 {
		t.Errorf("Stopped ticker kept running: %d", len(at))
	}
	if h.Stop() {
		t.Error("Second Stop should report false")
	}
}

func TestDebouncerKeepsOnlyLast(t *testing.T) {
	f := NewFake(epoch)
	d := NewDebouncer(f, 300*time.Millisecond)

	var got []string
	for _, text := range []string{"d", "de", "des"} {
		d.Trigger(func() { got = append(got, text) })
		f.Advance(100 * time.Millisecond)
	}
	if len(got) != 0 {
		t.Fatalf("Expected nothing during the burst, got %v", got)
	}
	if !d.Pending() {
		t.Error("Expected a pending run")
	}

	f.Advance(199 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("Fired before the quiet period: %v", got)
	}
	f.Advance(time.Millisecond)
	if len(got) != 1 || got[0] != "des" {
		t.Errorf("Expected only the last value, got %v", got)
	}
	if d.Pending() {
		t.Error("Expected nothing pending after the run")
	}
}

func TestDebouncerStop(t *testing.T) {
	f := NewFake(epoch)
	d := NewDebouncer(f, 300*time.Millisecond)

	ran := false
	d.Trigger(func() { ran = true })
	d.Stop()
	d.Trigger(func() { ran = true })
	f.Advance(time.Second)

	if ran {
		t.Error("Stopped debouncer ran its callback")
	}
	if f.Pending() != 0 {
		t.Errorf("Expected no armed timers, got %d", f.Pending())
	}
}

func TestDebouncerCancelKeepsAccepting(t *testing.T) {
	f := NewFake(epoch)
	d := NewDebouncer(f, 300*time.Millisecond)

	var got []string
	d.Trigger(func() { got = append(got, "dropped") })
	d.Cancel()
	if d.Pending() {
		t.Error("Expected no pending run after Cancel")
	}
	f.Advance(time.Second)
	if len(got) != 0 {
		t.Fatalf("Expected cancelled run to be dropped, got %v", got)
	}

	d.Trigger(func() { got = append(got, "kept") })
	f.Advance(300 * time.Millisecond)
	if len(got) != 1 || got[0] != "kept" {
		t.Errorf("Expected [kept] after Cancel, got %v", got)
	}
}

func TestRealEveryStops(t *testing.T) {
	var n atomic.Int32
	h := NewReal().Every(5*time.Millisecond, func() { n.Add(1) })
	time.Sleep(30 * time.Millisecond)
	h.Stop()
	seen := n.Load()
	time.Sleep(30 * time.Millisecond)
	if n.Load() > seen+1 {
		t.Errorf("Ticker kept running after Stop: %d -> %d", seen, n.Load())
	}
}
