package timeutil

import "time"

// FrameTimer turns successive clock readings into per-frame dt values in
// seconds, the form the follow pipeline consumes.
type FrameTimer struct {
	clock Clock
	last  time.Time

	// MaxDelta caps a single dt so a stall (debugger, GC, window drag)
	// does not produce one huge step. Zero disables the cap.
	MaxDelta time.Duration

	started bool
	frames  int
	elapsed time.Duration
}

// NewFrameTimer creates a timer reading clock. Call Start before the first
// frame, or the first Tick returns 0.
func NewFrameTimer(clock Clock, maxDelta time.Duration) *FrameTimer {
	return &FrameTimer{clock: clock, MaxDelta: maxDelta}
}

// Start marks the beginning of the first frame.
func (f *FrameTimer) Start() {
	f.last = f.clock.Now()
	f.started = true
	f.frames = 0
	f.elapsed = 0
}

// Tick returns the seconds since the previous Tick (or Start). A clock that
// went backwards yields 0.
func (f *FrameTimer) Tick() float64 {
	now := f.clock.Now()
	if !f.started {
		f.last = now
		f.started = true
		return 0
	}
	d := now.Sub(f.last)
	f.last = now
	if d < 0 {
		d = 0
	}
	if f.MaxDelta > 0 && d > f.MaxDelta {
		d = f.MaxDelta
	}
	f.frames++
	f.elapsed += d
	return d.Seconds()
}

// Frames returns the number of timed frames since Start.
func (f *FrameTimer) Frames() int { return f.frames }

// Elapsed returns the sum of all dt values handed out since Start.
func (f *FrameTimer) Elapsed() time.Duration { return f.elapsed }
