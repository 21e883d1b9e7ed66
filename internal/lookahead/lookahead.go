// Package lookahead bends a target's velocity away from obstructions it is
// about to run into, using two directional obstruction queries.
package lookahead

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/damptrack/internal/monitoring"
	"github.com/banshee-data/damptrack/internal/vecmath"
)

// EntityID identifies whatever an obstruction query hit.
type EntityID string

// IgnoreMask is an opaque layer mask passed through to the query.
type IgnoreMask uint32

// Hit is the nearest obstruction along a cast.
type Hit struct {
	Point  r2.Vec
	Normal r2.Vec
	Entity EntityID
}

// Obstruction casts a ray from origin along a unit direction for at most
// maxDistance. It reports false when nothing was hit.
type Obstruction interface {
	Cast(origin, direction r2.Vec, maxDistance float64, mask IgnoreMask) (Hit, bool)
}

// DefaultSurfaceOffset lifts the second cast off the first hit's surface.
const DefaultSurfaceOffset = 1e-3

// Avoider runs look-ahead compensation. A nil Query never hits.
type Avoider struct {
	Query Obstruction
	// Self is the tracked entity; hits against it are ignored.
	Self EntityID
	// SurfaceOffset lifts the second cast off the first surface. Zero uses
	// DefaultSurfaceOffset.
	SurfaceOffset float64
}

// Compensate returns velocity bent away from the surface ahead. The first
// cast looks velocity·firstTime ahead; on a hit, the second cast looks
// velocity·secondTime along the reflected direction from the hit point.
// The normal component is removed scaled by (1-firstFactor)·secondFactor,
// where each factor is the clear fraction of its cast (1 with no hit).
func (a Avoider) Compensate(origin, velocity r2.Vec, firstTime, secondTime float64, mask IgnoreMask) r2.Vec {
	speed := r2.Norm(velocity)
	if speed == 0 {
		return r2.Vec{}
	}
	if a.Query == nil || firstTime <= 0 {
		return velocity
	}
	dir := r2.Scale(1/speed, velocity)

	firstDist := speed * firstTime
	hit, ok := a.cast(origin, dir, firstDist, mask)
	if !ok {
		return velocity
	}
	normal, ok := vecmath.Unit2(hit.Normal)
	if !ok {
		return velocity
	}
	into := r2.Dot(velocity, normal)
	if into >= 0 {
		// Moving along or away from the surface.
		return velocity
	}
	firstFactor := vecmath.Clamp01(r2.Norm(r2.Sub(hit.Point, origin)) / firstDist)

	normalPart := r2.Scale(into, normal)
	reflected := r2.Sub(velocity, r2.Scale(2, normalPart))

	secondFactor := 1.0
	if secondDist := speed * secondTime; secondDist > 0 {
		offset := a.SurfaceOffset
		if offset == 0 {
			offset = DefaultSurfaceOffset
		}
		from := r2.Add(hit.Point, r2.Scale(offset, normal))
		if second, ok := a.cast(from, r2.Scale(1/speed, reflected), secondDist, mask); ok {
			secondFactor = vecmath.Clamp01(r2.Norm(r2.Sub(second.Point, from)) / secondDist)
		}
	}

	weight := (1 - firstFactor) * secondFactor
	monitoring.Debugf("[LookAhead] hit %q first=%.3f second=%.3f weight=%.3f", hit.Entity, firstFactor, secondFactor, weight)
	return r2.Sub(velocity, r2.Scale(weight, normalPart))
}

// cast queries the obstruction and drops hits against Self.
func (a Avoider) cast(origin, dir r2.Vec, maxDistance float64, mask IgnoreMask) (Hit, bool) {
	hit, ok := a.Query.Cast(origin, dir, maxDistance, mask)
	if !ok || (a.Self != "" && hit.Entity == a.Self) {
		return Hit{}, false
	}
	return hit, true
}
