package world

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/damptrack/internal/lookahead"
	"github.com/banshee-data/damptrack/internal/vecmath"
)

// Wall is a two-sided line segment in the XY plane.
type Wall struct {
	From, To r2.Vec
	Entity   lookahead.EntityID
	// Layer bits; a cast whose mask shares any bit with Layer skips the wall.
	Layer lookahead.IgnoreMask
}

// Walls is a flat list of segments. It satisfies lookahead.Obstruction.
type Walls []Wall

// Box returns the four inner-facing walls of the axis-aligned rectangle
// spanning min and max.
func Box(min, max r2.Vec, entity lookahead.EntityID) Walls {
	a := min
	b := r2.Vec{X: max.X, Y: min.Y}
	c := max
	d := r2.Vec{X: min.X, Y: max.Y}
	return Walls{
		{From: a, To: b, Entity: entity},
		{From: b, To: c, Entity: entity},
		{From: c, To: d, Entity: entity},
		{From: d, To: a, Entity: entity},
	}
}

// Cast returns the nearest wall crossed by the ray origin + t·direction for
// t in [0, maxDistance]. The hit normal faces back toward the origin.
// Segments parallel to the ray are never hit.
func (w Walls) Cast(origin, direction r2.Vec, maxDistance float64, mask lookahead.IgnoreMask) (lookahead.Hit, bool) {
	best := math.Inf(1)
	var hit lookahead.Hit
	for _, wall := range w {
		if wall.Layer&mask != 0 {
			continue
		}
		t, ok := wall.intersect(origin, direction)
		if !ok || t > maxDistance || t >= best {
			continue
		}
		best = t
		hit = lookahead.Hit{
			Point:  r2.Add(origin, r2.Scale(t, direction)),
			Normal: wall.normalFacing(direction),
			Entity: wall.Entity,
		}
	}
	return hit, !math.IsInf(best, 1)
}

// intersect solves origin + t·dir = From + u·(To-From) for t >= 0 and
// u in [0, 1].
func (wall Wall) intersect(origin, dir r2.Vec) (float64, bool) {
	edge := r2.Sub(wall.To, wall.From)
	denom := r2.Cross(dir, edge)
	if denom == 0 {
		return 0, false
	}
	rel := r2.Sub(wall.From, origin)
	t := r2.Cross(rel, edge) / denom
	u := r2.Cross(rel, dir) / denom
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

func (wall Wall) normalFacing(dir r2.Vec) r2.Vec {
	edge := r2.Sub(wall.To, wall.From)
	n, ok := vecmath.Unit2(r2.Vec{X: -edge.Y, Y: edge.X})
	if !ok {
		return r2.Vec{}
	}
	if r2.Dot(n, dir) > 0 {
		n = r2.Scale(-1, n)
	}
	return n
}
