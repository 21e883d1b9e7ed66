package world

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/effector"
	"github.com/banshee-data/damptrack/internal/vecmath"
)

// Rail is a straight channel of half-width HalfWidth around the segment
// From→To. Inside the channel it pulls points toward the centre line and
// reports the segment direction as tangent. Influence is strongest on the
// centre line and falls linearly to zero at the channel edge.
type Rail struct {
	From, To  r2.Vec
	HalfWidth float64
	// Pull is the fraction of the distance to the centre line applied as
	// displacement at full influence.
	Pull float64
	// Height, when set, also pulls Z toward this value.
	Height *float64
	// Locked freezes projected XY motion inside the channel.
	Locked bool
}

var _ effector.Field = Rail{}

// QueryAt implements effector.Field.
func (r Rail) QueryAt(point r3.Vec, wantVelocityProjection, wantAccelerationProjection bool) (effector.Output, bool) {
	if !(r.HalfWidth > 0) {
		return effector.Output{}, false
	}
	closest, edge := r.closest(vecmath.XY(point))
	toCentre := r2.Sub(closest, vecmath.XY(point))
	dist := r2.Norm(toCentre)
	if dist > r.HalfWidth {
		return effector.Output{}, false
	}

	influence := 1 - dist/r.HalfWidth
	out := effector.Output{Influence: influence, LockedXY: r.Locked}
	pull := r.Pull * influence
	out.Displacement = r3.Vec{X: toCentre.X * pull, Y: toCentre.Y * pull}
	if r.Height != nil {
		out.Displacement.Z = (*r.Height - point.Z) * pull
	}
	if wantVelocityProjection || wantAccelerationProjection {
		if tangent, ok := vecmath.Unit2(edge); ok {
			out.Tangent = tangent
		}
	}
	return out, true
}

// closest returns the nearest point on the segment to p and the segment
// direction.
func (r Rail) closest(p r2.Vec) (r2.Vec, r2.Vec) {
	edge := r2.Sub(r.To, r.From)
	lenSq := r2.Norm2(edge)
	if lenSq == 0 {
		return r.From, edge
	}
	u := r2.Dot(r2.Sub(p, r.From), edge) / lenSq
	u = math.Max(0, math.Min(1, u))
	return r2.Add(r.From, r2.Scale(u, edge)), edge
}
