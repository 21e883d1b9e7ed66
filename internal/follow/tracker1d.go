package follow

import (
	"fmt"

	"github.com/banshee-data/damptrack/internal/damping"
	"github.com/banshee-data/damptrack/internal/vecmath"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tracker1D follows a scalar such as a zoom level. It reads the X
// components of its Config; clamp shapes do not apply.
type Tracker1D struct {
	cfg Config

	state          damping.State
	previousTarget float64
}

// NewTracker1D creates a scalar tracker at rest at value.
func NewTracker1D(cfg Config, value float64) (*Tracker1D, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracker config: %w", err)
	}
	return &Tracker1D{cfg: cfg, state: damping.State{Position: value}, previousTarget: value}, nil
}

func (t *Tracker1D) Value() float64    { return t.state.Position }
func (t *Tracker1D) Velocity() float64 { return t.state.Velocity }

// SetInitialConditions resets value and velocity.
func (t *Tracker1D) SetInitialConditions(value, velocity float64) {
	t.state = damping.State{Position: value, Velocity: velocity}
}

// SetPreviousTargetPosition seeds the stable clamp after a reset.
func (t *Tracker1D) SetPreviousTargetPosition(value float64) { t.previousTarget = value }

// Step advances toward target using the solver selected by Config.Mode.
func (t *Tracker1D) Step(target, targetVel, targetAcc, dt float64) float64 {
	acc := vecmath.Get(LimitAcceleration(r3.Vec{X: targetAcc},
		t.cfg.AccelerationThreshold, t.cfg.AccelerationOverThresholdIsZero, t.cfg.AccelerationThresholdLinked), vecmath.AxisX)
	tgt := damping.Target{Position: target, Velocity: targetVel, Acceleration: acc}
	st := t.cfg.SmoothTime.X
	dr := t.cfg.DampingRatio.X
	md := t.cfg.MaxFollowDistance.X

	switch t.cfg.Mode {
	case ModeCriticalAntiFrameLag:
		t.state = damping.CriticalDampedAntiFrameLag(t.state, tgt, st, dt, md, t.cfg.AntiOvershootX)
	case ModeCriticalStableClamp:
		t.state = damping.CriticalDampedAntiFrameLagStableClamp(t.state, tgt, t.previousTarget, st, dt, md, t.cfg.AntiOvershootX)
		t.previousTarget = target
	case ModeUnderDamped:
		t.state = damping.UnderDamped(t.state, tgt, st, dr, dt, md)
	case ModeUnderDampedAntiFrameLag:
		t.state = damping.UnderDampedAntiFrameLag(t.state, tgt, st, dr, dt, md)
	default:
		t.state = damping.CriticalDamped(t.state, tgt, st, dt, md)
	}
	return t.state.Position
}
