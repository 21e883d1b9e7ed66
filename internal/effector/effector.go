// Package effector displaces a tracked point through an external
// displacement field and bends its velocity and acceleration onto the
// field's tangent.
package effector

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/vecmath"
)

// Output is a single field query result.
type Output struct {
	Displacement r3.Vec
	Tangent      r2.Vec
	Influence    float64 // [0, 1]
	LockedXY     bool    // force projected XY motion to zero
}

// Field is the external displacement field. QueryAt reports false when
// point lies outside every influence region. The want flags tell the field
// whether the tangent will be used, so it may skip computing it.
type Field interface {
	QueryAt(point r3.Vec, wantVelocityProjection, wantAccelerationProjection bool) (Output, bool)
}

// Projection is the result of DisplaceAndProject.
type Projection struct {
	Position     r3.Vec
	Velocity     r3.Vec
	Acceleration r3.Vec
	Output       Output
	Hit          bool // the field reported influence at the queried point
}

// Projector queries a Field once per call. A Projector with a nil Field
// leaves every input unchanged.
type Projector struct {
	Field Field
}

// Displace returns position moved by the field's displacement, or position
// unchanged when the field has no influence there.
func (p Projector) Displace(position r3.Vec) r3.Vec {
	if p.Field == nil {
		return position
	}
	out, ok := p.Field.QueryAt(position, false, false)
	if !ok {
		return position
	}
	return r3.Add(position, out.Displacement)
}

// DisplaceAndProject displaces position and projects the XY components of
// velocity and acceleration onto the field tangent, blended by influence.
// Z components pass through untouched.
func (p Projector) DisplaceAndProject(position, velocity, acceleration r3.Vec) Projection {
	proj := Projection{Position: position, Velocity: velocity, Acceleration: acceleration}
	if p.Field == nil {
		return proj
	}
	out, ok := p.Field.QueryAt(position, true, true)
	if !ok {
		return proj
	}
	out.Influence = vecmath.Clamp01(out.Influence)

	proj.Hit = true
	proj.Output = out
	proj.Position = r3.Add(position, out.Displacement)
	proj.Velocity = vecmath.WithXY(velocity, ProjectOnTangent(vecmath.XY(velocity), out))
	proj.Acceleration = vecmath.WithXY(acceleration, ProjectOnTangent(vecmath.XY(acceleration), out))
	return proj
}

// ProjectOnTangent blends v toward its projection on out.Tangent by
// out.Influence. A locked output always yields zero. A zero tangent leaves v
// as it is.
func ProjectOnTangent(v r2.Vec, out Output) r2.Vec {
	if out.LockedXY {
		return r2.Vec{}
	}
	lenSq := r2.Norm2(out.Tangent)
	if lenSq == 0 {
		return v
	}
	onTangent := r2.Scale(r2.Dot(out.Tangent, v)/lenSq, out.Tangent)
	return r2.Add(r2.Scale(1-out.Influence, v), r2.Scale(out.Influence, onTangent))
}
