package timeutil

import (
	"math"
	"testing"
	"time"
)

func TestFrameTimer_VariableFrames(t *testing.T) {
	clock := NewMockClock(time.Unix(100, 0))
	ft := NewFrameTimer(clock, 0)
	ft.Start()

	frames := []time.Duration{16 * time.Millisecond, 33 * time.Millisecond, 8 * time.Millisecond}
	var total time.Duration
	for _, d := range frames {
		clock.Sleep(d)
		total += d
		if got := ft.Tick(); math.Abs(got-d.Seconds()) > 1e-12 {
			t.Errorf("Tick() = %v, want %v", got, d.Seconds())
		}
	}
	if ft.Frames() != len(frames) {
		t.Errorf("Frames() = %d, want %d", ft.Frames(), len(frames))
	}
	if ft.Elapsed() != total {
		t.Errorf("Elapsed() = %v, want %v", ft.Elapsed(), total)
	}
}

func TestFrameTimer_FirstTickWithoutStart(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	ft := NewFrameTimer(clock, 0)

	clock.Advance(time.Second)
	if got := ft.Tick(); got != 0 {
		t.Errorf("first Tick() = %v, want 0", got)
	}
	clock.Advance(20 * time.Millisecond)
	if got := ft.Tick(); math.Abs(got-0.02) > 1e-12 {
		t.Errorf("second Tick() = %v, want 0.02", got)
	}
}

func TestFrameTimer_ClampsStallsAndBackwardsTime(t *testing.T) {
	clock := NewMockClock(time.Unix(50, 0))
	ft := NewFrameTimer(clock, 100*time.Millisecond)
	ft.Start()

	clock.Advance(3 * time.Second)
	if got := ft.Tick(); got != 0.1 {
		t.Errorf("stalled Tick() = %v, want 0.1", got)
	}

	clock.Set(time.Unix(10, 0))
	if got := ft.Tick(); got != 0 {
		t.Errorf("backwards Tick() = %v, want 0", got)
	}
}
