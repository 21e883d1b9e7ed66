// Package leadlag biases the apparent target ahead of (or behind) its true
// position in proportion to its speed, for anticipatory framing.
//
// Two algorithms give the same framing. ByVelocityCompensation scales the
// velocity handed to a relative-damped follower so that its steady-state
// offset equals the requested distance; the tracked position itself is not
// touched. ByPositionCompensation moves the queried position directly and
// must run before any effector field query, since the field is sampled at
// the shifted point.
package leadlag

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/damping"
	"github.com/banshee-data/damptrack/internal/vecmath"
)

// Params configures either algorithm.
type Params struct {
	// SmoothTime is the X/Y smooth time of the follower being shaped. Only
	// velocity compensation uses it.
	SmoothTime r2.Vec
	// MaxDistance is the offset reached at MaxAtVelocity. Positive values
	// lead the target, negative values lag it.
	MaxDistance r2.Vec
	// MaxAtVelocity is the speed at which the full offset applies; the
	// offset ramps linearly from zero below it. Zero or less applies the
	// full offset at any speed.
	MaxAtVelocity float64
	// BoxClamp shapes the offset per axis. Otherwise the offset follows the
	// velocity direction inside the ellipse with semi-axes |MaxDistance|.
	BoxClamp bool
	// Influence blends between no compensation (0) and full compensation (1).
	Influence float64
}

// ByVelocityCompensation returns the velocity to feed the follower so that it
// settles at the configured lead or lag distance.
func ByVelocityCompensation(velocity r3.Vec, p Params) r3.Vec {
	v := vecmath.XY(velocity)
	offset := Offset(v, p)
	influence := vecmath.Clamp01(p.Influence)

	scale := func(vi, di, smoothTime float64) float64 {
		lag := damping.SteadyStateLag(vi, smoothTime)
		if lag == 0 || !(smoothTime > 0) {
			return vi
		}
		factor := 1 + di/lag
		return vi * vecmath.Lerp(1, factor, influence)
	}
	return vecmath.WithXY(velocity, r2.Vec{
		X: scale(v.X, offset.X, p.SmoothTime.X),
		Y: scale(v.Y, offset.Y, p.SmoothTime.Y),
	})
}

// ByPositionCompensation returns position shifted by the configured lead or
// lag offset for velocity.
func ByPositionCompensation(position, velocity r3.Vec, p Params) r3.Vec {
	offset := r2.Scale(vecmath.Clamp01(p.Influence), Offset(vecmath.XY(velocity), p))
	return r3.Add(position, r3.Vec{X: offset.X, Y: offset.Y})
}

// Offset is the full (influence 1) lead offset for velocity v.
func Offset(v r2.Vec, p Params) r2.Vec {
	if p.BoxClamp {
		return r2.Vec{
			X: vecmath.Sign(v.X) * p.MaxDistance.X * ramp(math.Abs(v.X), p.MaxAtVelocity),
			Y: vecmath.Sign(v.Y) * p.MaxDistance.Y * ramp(math.Abs(v.Y), p.MaxAtVelocity),
		}
	}

	dir, ok := vecmath.Unit2(v)
	if !ok {
		return r2.Vec{}
	}
	reach := ellipseReach(dir, math.Abs(p.MaxDistance.X), math.Abs(p.MaxDistance.Y))
	r := reach * ramp(r2.Norm(v), p.MaxAtVelocity)
	return r2.Vec{
		X: dir.X * r * signOrOne(p.MaxDistance.X),
		Y: dir.Y * r * signOrOne(p.MaxDistance.Y),
	}
}

func ramp(speed, maxAtVelocity float64) float64 {
	if maxAtVelocity <= 0 {
		return 1
	}
	return vecmath.Clamp01(speed / maxAtVelocity)
}

// ellipseReach is the distance from the centre to the ellipse with
// semi-axes a and b along unit direction dir.
func ellipseReach(dir r2.Vec, a, b float64) float64 {
	var q float64
	if dir.X != 0 {
		if a == 0 {
			return 0
		}
		q += (dir.X / a) * (dir.X / a)
	}
	if dir.Y != 0 {
		if b == 0 {
			return 0
		}
		q += (dir.Y / b) * (dir.Y / b)
	}
	if q == 0 {
		return 0
	}
	return 1 / math.Sqrt(q)
}

func signOrOne(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
