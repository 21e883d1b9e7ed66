package follow

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/vecmath"
)

// ClampShape selects how per-axis max follow distances combine into a
// boundary around the target.
type ClampShape int

const (
	// ClampBox clamps every axis independently.
	ClampBox ClampShape = iota
	// ClampCircle bounds X/Y by a circle of radius MaxFollowDistance.X.
	ClampCircle
	// ClampEllipse bounds X/Y by an ellipse with semi-axes
	// MaxFollowDistance.X and MaxFollowDistance.Y.
	ClampEllipse
	// ClampSphere bounds all three axes by a sphere of radius
	// MaxFollowDistance.X.
	ClampSphere
)

var clampShapeNames = map[ClampShape]string{
	ClampBox:     "box",
	ClampCircle:  "circle",
	ClampEllipse: "ellipse",
	ClampSphere:  "sphere",
}

func (s ClampShape) String() string {
	if name, ok := clampShapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ClampShape(%d)", int(s))
}

// ParseClampShape converts a config name into a ClampShape.
func ParseClampShape(name string) (ClampShape, error) {
	for shape, n := range clampShapeNames {
		if n == name {
			return shape, nil
		}
	}
	return ClampBox, fmt.Errorf("unknown clamp shape %q", name)
}

// ResolveClamp turns per-axis max distances into the per-axis limits the
// scalar solvers clamp against, so that independent axis clamps trace the
// requested shape. position is the follower, target the (frame-lag
// adjusted) target it is measured against.
//
// Every returned component lies in [0, maxDistance] for its axis.
func ResolveClamp(position, target, maxDistance r3.Vec, shape ClampShape) r3.Vec {
	offset := r3.Sub(position, target)

	if (shape == ClampCircle || shape == ClampSphere) && math.IsInf(maxDistance.X, 1) {
		return maxDistance
	}

	switch shape {
	case ClampCircle:
		dir, ok := vecmath.Unit2(vecmath.XY(offset))
		if !ok {
			return maxDistance
		}
		radius := maxDistance.X
		return r3.Vec{
			X: math.Min(maxDistance.X, math.Abs(dir.X)*radius),
			Y: math.Min(maxDistance.Y, math.Abs(dir.Y)*radius),
			Z: maxDistance.Z,
		}

	case ClampSphere:
		dir, ok := vecmath.Unit3(offset)
		if !ok {
			return maxDistance
		}
		return vecmath.Min(maxDistance, r3.Scale(maxDistance.X, vecmath.Abs(dir)))

	case ClampEllipse:
		t, ok := ellipseScale(offset.X, offset.Y, maxDistance.X, maxDistance.Y)
		if !ok {
			return maxDistance
		}
		return r3.Vec{
			X: math.Min(maxDistance.X, math.Abs(offset.X*t)),
			Y: math.Min(maxDistance.Y, math.Abs(offset.Y*t)),
			Z: maxDistance.Z,
		}
	}
	return maxDistance
}

// ellipseScale finds t such that (t·dx, t·dy) lies on the ellipse with
// semi-axes a and b.
func ellipseScale(dx, dy, a, b float64) (float64, bool) {
	if a <= 0 || b <= 0 || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return 0, false
	}
	q := (dx/a)*(dx/a) + (dy/b)*(dy/b)
	if q == 0 {
		return 0, false
	}
	return 1 / math.Sqrt(q), true
}
