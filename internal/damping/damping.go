package damping

import (
	"math"

	"github.com/banshee-data/damptrack/internal/vecmath"
)

// ClampTolerance is the slack allowed between a clamped offset and its max
// distance before the clamp is considered violated.
const ClampTolerance = 1e-4

// State is the follower's position and velocity on one axis.
type State struct {
	Position float64
	Velocity float64
}

// Target holds target kinematics on one axis. Acceleration is zero when the
// caller has no estimate.
type Target struct {
	Position     float64
	Velocity     float64
	Acceleration float64
}

// Project extrapolates the target forward by dt with constant acceleration.
func (t Target) Project(dt float64) Target {
	return Target{
		Position:     t.Position + t.Velocity*dt + 0.5*t.Acceleration*dt*dt,
		Velocity:     t.Velocity + t.Acceleration*dt,
		Acceleration: t.Acceleration,
	}
}

// Rewind estimates where a target reported one tick ahead was at the start
// of the tick. It is the inverse of Project.
func (t Target) Rewind(dt float64) Target {
	return Target{
		Position:     t.Position - t.Velocity*dt + 0.5*t.Acceleration*dt*dt,
		Velocity:     t.Velocity - t.Acceleration*dt,
		Acceleration: t.Acceleration,
	}
}

// NaturalFrequency returns ω for a smooth time.
func NaturalFrequency(smoothTime float64) float64 {
	return 2 / smoothTime
}

// SteadyStateLag is how far a critically damped follower trails a target
// moving at constant velocity when it is given no velocity information.
func SteadyStateLag(velocity, smoothTime float64) float64 {
	return velocity * smoothTime
}

// offsetSolver advances an offset and relative velocity by dt.
type offsetSolver func(x0, relVel0, dt float64) (x1, relVel1 float64)

func criticalSolver(smoothTime float64) offsetSolver {
	omega := NaturalFrequency(smoothTime)
	return func(x0, relVel0, dt float64) (float64, float64) {
		c1 := x0
		c2 := relVel0 + omega*c1
		e := math.Exp(-omega * dt)
		x1 := (c1 + c2*dt) * e
		v1 := (c2 - omega*(c1+c2*dt)) * e
		return x1, v1
	}
}

func underDampedSolver(smoothTime, dampingRatio float64) offsetSolver {
	if dampingRatio >= 1 {
		return criticalSolver(smoothTime)
	}
	omega := NaturalFrequency(smoothTime)
	k := omega * omega
	c := 2 * dampingRatio * omega
	alpha := -c / 2
	beta := math.Sqrt(math.Abs(c*c-4*k)) / 2
	return func(x0, relVel0, dt float64) (float64, float64) {
		c1 := x0
		c2 := (relVel0 - alpha*c1) / beta
		e := math.Exp(alpha * dt)
		sin, cos := math.Sincos(beta * dt)
		x1 := e * (c1*cos + c2*sin)
		v1 := e * ((alpha*c1+beta*c2)*cos + (alpha*c2-beta*c1)*sin)
		return x1, v1
	}
}

// clampOffset limits x to [-maxDistance, maxDistance].
func clampOffset(x, maxDistance float64) (float64, bool) {
	if math.Abs(x) > maxDistance {
		return vecmath.Sign(x) * maxDistance, true
	}
	return x, false
}

// advance runs one tick against a target whose start-of-tick state is
// start. The returned bool reports whether either clamp engaged.
func advance(s State, start Target, dt, maxDistance float64, solve offsetSolver) (State, bool) {
	return advanceTo(s, start, start.Project(dt), dt, maxDistance, solve)
}

// advanceTo is advance with the end-of-tick target given explicitly. The
// initial offset is measured against start, the result is placed
// relative to end.
func advanceTo(s State, start, end Target, dt, maxDistance float64, solve offsetSolver) (State, bool) {
	x0, clamped := clampOffset(s.Position-start.Position, maxDistance)
	x1, relVel1 := solve(x0, s.Velocity-start.Velocity, dt)

	if math.Abs(x1) > maxDistance {
		// Pin to the boundary and move with the target.
		return State{
			Position: end.Position + vecmath.Sign(x1)*maxDistance,
			Velocity: end.Velocity,
		}, true
	}
	return State{
		Position: end.Position + x1,
		Velocity: end.Velocity + relVel1,
	}, clamped
}

// suppressOvershoot snaps next onto the target when the tick carried the
// follower across it and it is still moving past.
func suppressOvershoot(prev State, start Target, next State, end Target) (State, bool) {
	before := start.Position - prev.Position
	if before == 0 {
		return next, false
	}
	after := end.Position - next.Position
	if vecmath.Sign(after) == vecmath.Sign(before) {
		return next, false
	}
	if vecmath.Sign(next.Velocity-end.Velocity) != vecmath.Sign(before) {
		return next, false
	}
	return State{Position: end.Position, Velocity: end.Velocity}, true
}
