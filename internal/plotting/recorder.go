// Package plotting records follower/target trajectories and renders them as
// static PNG plots (gonum/plot) or interactive HTML (go-echarts) for tuning
// sessions.
package plotting

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/vecmath"
)

// Sample is one recorded tick.
type Sample struct {
	Time     float64 // seconds since the first tick
	Target   r3.Vec
	Follower r3.Vec

	// Influence is the effector field weight applied on this tick, 0 when
	// no field acted on the target.
	Influence float64
}

// ResponseRecorder accumulates samples from a follow run. It is safe for
// concurrent use.
type ResponseRecorder struct {
	mu      sync.Mutex
	title   string
	samples []Sample
}

// NewResponseRecorder creates an empty recorder; title labels the plots.
func NewResponseRecorder(title string) *ResponseRecorder {
	return &ResponseRecorder{title: title}
}

// Record appends one tick with no field influence.
func (r *ResponseRecorder) Record(t float64, target, follower r3.Vec) {
	r.RecordWithInfluence(t, target, follower, 0)
}

// RecordWithInfluence appends one tick along with the field influence the
// rig saw on it.
func (r *ResponseRecorder) RecordWithInfluence(t float64, target, follower r3.Vec, influence float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, Sample{Time: t, Target: target, Follower: follower, Influence: influence})
}

// Len returns the number of samples recorded.
func (r *ResponseRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Samples returns a copy of the recorded samples.
func (r *ResponseRecorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Reset drops every sample.
func (r *ResponseRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = nil
}

// AxisSummary describes the tracking error (follower - target) on one axis.
type AxisSummary struct {
	MaxAbsError float64
	MeanError   float64 // signed; positive means the follower leads
	FinalError  float64
}

// Summary holds per-axis error statistics of a run.
type Summary struct {
	Samples    int
	FieldTicks int            // samples with non-zero field influence
	Axes       [3]AxisSummary // indexed by vecmath.Axis
}

// Summary computes error statistics over the recorded samples.
func (r *ResponseRecorder) Summary() Summary {
	samples := r.Samples()
	s := Summary{Samples: len(samples)}
	if len(samples) == 0 {
		return s
	}
	for _, smp := range samples {
		if smp.Influence > 0 {
			s.FieldTicks++
		}
	}
	errs := make([]float64, len(samples))
	abs := make([]float64, len(samples))
	for _, a := range vecmath.Axes {
		for i, smp := range samples {
			errs[i] = vecmath.Get(smp.Follower, a) - vecmath.Get(smp.Target, a)
			abs[i] = math.Abs(errs[i])
		}
		s.Axes[a] = AxisSummary{
			MaxAbsError: floats.Max(abs),
			MeanError:   floats.Sum(errs) / float64(len(errs)),
			FinalError:  errs[len(errs)-1],
		}
	}
	return s
}

// series extracts one axis of target and follower positions.
func series(samples []Sample, a vecmath.Axis) (t, target, follower []float64) {
	t = make([]float64, len(samples))
	target = make([]float64, len(samples))
	follower = make([]float64, len(samples))
	for i, s := range samples {
		t[i] = s.Time
		target[i] = vecmath.Get(s.Target, a)
		follower[i] = vecmath.Get(s.Follower, a)
	}
	return t, target, follower
}

// activeAxes lists the axes on which either trajectory moves.
func activeAxes(samples []Sample) []vecmath.Axis {
	var axes []vecmath.Axis
	for _, a := range vecmath.Axes {
		_, target, follower := series(samples, a)
		if floats.Max(target) != floats.Min(target) || floats.Max(follower) != floats.Min(follower) {
			axes = append(axes, a)
		}
	}
	if len(axes) == 0 {
		axes = []vecmath.Axis{vecmath.AxisX}
	}
	return axes
}
