package follow

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/damping"
	"github.com/banshee-data/damptrack/internal/monitoring"
	"github.com/banshee-data/damptrack/internal/vecmath"
)

// Tracker is a three-axis damped follower.
type Tracker struct {
	cfg Config

	position       r3.Vec
	velocity       r3.Vec
	previousTarget r3.Vec
}

// NewTracker creates a tracker at rest at position.
func NewTracker(cfg Config, position r3.Vec) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracker config: %w", err)
	}
	return &Tracker{cfg: cfg, position: position, previousTarget: position}, nil
}

// Config returns the active configuration.
func (t *Tracker) Config() Config { return t.cfg }

// SetConfig replaces the configuration between ticks.
func (t *Tracker) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid tracker config: %w", err)
	}
	t.cfg = cfg
	return nil
}

func (t *Tracker) Position() r3.Vec               { return t.position }
func (t *Tracker) Velocity() r3.Vec               { return t.velocity }
func (t *Tracker) PreviousTargetPosition() r3.Vec { return t.previousTarget }

// SetInitialConditions resets the follower, e.g. on respawn. The previous
// target position is left alone; set it with SetPreviousTargetPosition
// before the first stable-clamp step.
func (t *Tracker) SetInitialConditions(position, velocity r3.Vec) {
	t.position = position
	t.velocity = velocity
}

func (t *Tracker) SetPosition(position r3.Vec)               { t.position = position }
func (t *Tracker) SetVelocity(velocity r3.Vec)               { t.velocity = velocity }
func (t *Tracker) SetPreviousTargetPosition(position r3.Vec) { t.previousTarget = position }

// Step is the orchestrator entry point: it runs the solver selected by
// Config.Mode and returns the new follower position.
func (t *Tracker) Step(targetPos, targetVel, targetAcc r3.Vec, dt float64, shape ClampShape) r3.Vec {
	switch t.cfg.Mode {
	case ModeCriticalAntiFrameLag:
		return t.StepAntiFrameLag(targetPos, targetVel, targetAcc, dt, shape)
	case ModeCriticalStableClamp:
		return t.StepStableClamp(targetPos, targetVel, targetAcc, dt, shape)
	case ModeUnderDamped:
		return t.StepUnderDamped(targetPos, targetVel, targetAcc, dt, shape)
	case ModeUnderDampedAntiFrameLag:
		return t.StepUnderDampedAntiFrameLag(targetPos, targetVel, targetAcc, dt, shape)
	}
	return t.StepCritical(targetPos, targetVel, targetAcc, dt, shape)
}

// StepCritical advances toward a target described at the tracker's current
// instant.
func (t *Tracker) StepCritical(targetPos, targetVel, targetAcc r3.Vec, dt float64, shape ClampShape) r3.Vec {
	acc := t.limitAcceleration(targetAcc)
	return t.advance(targetPos, targetVel, acc, targetPos, shape,
		func(a vecmath.Axis, s damping.State, target damping.Target, maxDistance float64) damping.State {
			return damping.CriticalDamped(s, target, vecmath.Get(t.cfg.SmoothTime, a), dt, maxDistance)
		})
}

// StepAntiFrameLag advances toward a target whose kinematics were already
// advanced by dt.
func (t *Tracker) StepAntiFrameLag(targetPos, targetVel, targetAcc r3.Vec, dt float64, shape ClampShape) r3.Vec {
	acc := t.limitAcceleration(targetAcc)
	clampTarget := rewind(targetPos, targetVel, acc, dt)
	return t.advance(targetPos, targetVel, acc, clampTarget, shape,
		func(a vecmath.Axis, s damping.State, target damping.Target, maxDistance float64) damping.State {
			return damping.CriticalDampedAntiFrameLag(s, target, vecmath.Get(t.cfg.SmoothTime, a), dt, maxDistance, t.antiOvershoot(a))
		})
}

// StepStableClamp is StepAntiFrameLag with the zero-velocity stable clamp.
// It records targetPos as the previous target position for the next call.
func (t *Tracker) StepStableClamp(targetPos, targetVel, targetAcc r3.Vec, dt float64, shape ClampShape) r3.Vec {
	acc := t.limitAcceleration(targetAcc)
	previous := t.previousTarget

	clampTarget := rewind(targetPos, targetVel, acc, dt)
	for _, a := range vecmath.Axes {
		if vecmath.Get(targetVel, a) == 0 {
			clampTarget = vecmath.Set(clampTarget, a, vecmath.Get(previous, a))
		}
	}

	pos := t.advance(targetPos, targetVel, acc, clampTarget, shape,
		func(a vecmath.Axis, s damping.State, target damping.Target, maxDistance float64) damping.State {
			return damping.CriticalDampedAntiFrameLagStableClamp(s, target, vecmath.Get(previous, a),
				vecmath.Get(t.cfg.SmoothTime, a), dt, maxDistance, t.antiOvershoot(a))
		})
	t.previousTarget = targetPos
	return pos
}

// StepUnderDamped advances an oscillating follower toward a target described
// at the tracker's current instant.
func (t *Tracker) StepUnderDamped(targetPos, targetVel, targetAcc r3.Vec, dt float64, shape ClampShape) r3.Vec {
	acc := t.limitAcceleration(targetAcc)
	return t.advance(targetPos, targetVel, acc, targetPos, shape,
		func(a vecmath.Axis, s damping.State, target damping.Target, maxDistance float64) damping.State {
			return damping.UnderDamped(s, target, vecmath.Get(t.cfg.SmoothTime, a),
				vecmath.Get(t.cfg.DampingRatio, a), dt, maxDistance)
		})
}

// StepUnderDampedAntiFrameLag is StepUnderDamped for pre-advanced targets.
func (t *Tracker) StepUnderDampedAntiFrameLag(targetPos, targetVel, targetAcc r3.Vec, dt float64, shape ClampShape) r3.Vec {
	acc := t.limitAcceleration(targetAcc)
	clampTarget := rewind(targetPos, targetVel, acc, dt)
	return t.advance(targetPos, targetVel, acc, clampTarget, shape,
		func(a vecmath.Axis, s damping.State, target damping.Target, maxDistance float64) damping.State {
			return damping.UnderDampedAntiFrameLag(s, target, vecmath.Get(t.cfg.SmoothTime, a),
				vecmath.Get(t.cfg.DampingRatio, a), dt, maxDistance)
		})
}

type axisSolver func(a vecmath.Axis, s damping.State, target damping.Target, maxDistance float64) damping.State

// advance resolves the clamp limits against clampTarget and runs solve on
// every axis, committing position and velocity only once all axes are done.
func (t *Tracker) advance(targetPos, targetVel, targetAcc, clampTarget r3.Vec, shape ClampShape, solve axisSolver) r3.Vec {
	limits := ResolveClamp(t.position, clampTarget, t.cfg.MaxFollowDistance, shape)

	var pos, vel r3.Vec
	for _, a := range vecmath.Axes {
		s := damping.State{Position: vecmath.Get(t.position, a), Velocity: vecmath.Get(t.velocity, a)}
		target := damping.Target{
			Position:     vecmath.Get(targetPos, a),
			Velocity:     vecmath.Get(targetVel, a),
			Acceleration: vecmath.Get(targetAcc, a),
		}
		limit := vecmath.Get(limits, a)
		if offset := s.Position - vecmath.Get(clampTarget, a); math.Abs(offset) > limit {
			monitoring.Debugf("[Tracker] %s clamp engaged: offset=%.4f limit=%.4f shape=%s", a, offset, limit, shape)
		}

		next := solve(a, s, target, limit)
		pos = vecmath.Set(pos, a, next.Position)
		vel = vecmath.Set(vel, a, next.Velocity)
	}

	t.position = pos
	t.velocity = vel
	return pos
}

func (t *Tracker) limitAcceleration(acc r3.Vec) r3.Vec {
	return LimitAcceleration(acc, t.cfg.AccelerationThreshold,
		t.cfg.AccelerationOverThresholdIsZero, t.cfg.AccelerationThresholdLinked)
}

func (t *Tracker) antiOvershoot(a vecmath.Axis) bool {
	switch a {
	case vecmath.AxisX:
		return t.cfg.AntiOvershootX
	case vecmath.AxisY:
		return t.cfg.AntiOvershootY
	}
	return false
}

// rewind estimates the start-of-tick position of a target reported dt ahead.
func rewind(pos, vel, acc r3.Vec, dt float64) r3.Vec {
	return r3.Add(r3.Sub(pos, r3.Scale(dt, vel)), r3.Scale(0.5*dt*dt, acc))
}
