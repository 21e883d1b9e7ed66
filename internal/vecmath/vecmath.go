// Package vecmath collects the small scalar and vector helpers shared by the
// tracker packages. Vector types are gonum's spatial r2/r3 vectors.
package vecmath

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Axis indexes a component of an r3.Vec.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists every axis in update order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "?"
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return lo.Clamp(v, 0, 1)
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Lerp interpolates from a to b by t without clamping t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Get returns the component of v on axis a.
func Get(v r3.Vec, a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	}
	return v.Z
}

// Set returns v with the component on axis a replaced by s.
func Set(v r3.Vec, a Axis, s float64) r3.Vec {
	switch a {
	case AxisX:
		v.X = s
	case AxisY:
		v.Y = s
	default:
		v.Z = s
	}
	return v
}

// Abs returns the component-wise absolute value of v.
func Abs(v r3.Vec) r3.Vec {
	return r3.Vec{X: math.Abs(v.X), Y: math.Abs(v.Y), Z: math.Abs(v.Z)}
}

// Min returns the component-wise minimum of a and b.
func Min(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// Splat returns a vector with every component set to s.
func Splat(s float64) r3.Vec {
	return r3.Vec{X: s, Y: s, Z: s}
}

// Unbounded is the max-distance / threshold value meaning "no limit".
func Unbounded() r3.Vec {
	return Splat(math.Inf(1))
}

// XY drops the Z component.
func XY(v r3.Vec) r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

// WithXY replaces the X and Y components of v, keeping Z.
func WithXY(v r3.Vec, xy r2.Vec) r3.Vec {
	return r3.Vec{X: xy.X, Y: xy.Y, Z: v.Z}
}

// Unit2 normalises v. The second result is false for a zero vector, in
// which case the zero vector is returned instead of NaNs.
func Unit2(v r2.Vec) (r2.Vec, bool) {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}, false
	}
	return r2.Scale(1/n, v), true
}

// Unit3 is the r3 counterpart of Unit2.
func Unit3(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}

// IsFinite reports whether every component of v is finite.
func IsFinite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
