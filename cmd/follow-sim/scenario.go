package main

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/effector"
	"github.com/banshee-data/damptrack/internal/lookahead"
	"github.com/banshee-data/damptrack/internal/rig"
	"github.com/banshee-data/damptrack/internal/world"
)

// Scenario is a scripted target plus the world it moves through.
type Scenario struct {
	Name        string
	Spawn       r3.Vec
	Target      func(t float64) rig.Kinematics
	Obstruction lookahead.Obstruction
	Field       effector.Field
}

var scenarios = map[string]func() Scenario{
	"step":  stepScenario,
	"orbit": orbitScenario,
	"rail":  railScenario,
	"wall":  wallScenario,
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newScenario(name string) (Scenario, error) {
	build, ok := scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario %q (want one of %v)", name, scenarioNames())
	}
	return build(), nil
}

// stepScenario: a still target 10 units from the spawn point.
func stepScenario() Scenario {
	return Scenario{
		Name: "step",
		Target: func(float64) rig.Kinematics {
			return rig.Kinematics{Position: r3.Vec{X: 10}}
		},
	}
}

// orbitScenario: a target circling the origin at radius 5, one radian per
// second, bobbing on Z.
func orbitScenario() Scenario {
	const radius = 5.0
	return Scenario{
		Name:  "orbit",
		Spawn: r3.Vec{X: radius},
		Target: func(t float64) rig.Kinematics {
			s, c := math.Sincos(t)
			return rig.Kinematics{
				Position:     r3.Vec{X: radius * c, Y: radius * s, Z: 0.5 * math.Sin(2*t)},
				Velocity:     r3.Vec{X: -radius * s, Y: radius * c, Z: math.Cos(2 * t)},
				Acceleration: r3.Vec{X: -radius * c, Y: -radius * s, Z: -2 * math.Sin(2*t)},
			}
		},
	}
}

// railScenario: a target weaving along X through a channel that pulls it
// back onto the X axis.
func railScenario() Scenario {
	height := 1.0
	return Scenario{
		Name: "rail",
		Target: func(t float64) rig.Kinematics {
			return rig.Kinematics{
				Position:     r3.Vec{X: 3 * t, Y: 2 * math.Sin(t)},
				Velocity:     r3.Vec{X: 3, Y: 2 * math.Cos(t)},
				Acceleration: r3.Vec{Y: -2 * math.Sin(t)},
			}
		},
		Field: world.Rail{
			From:      r2.Vec{X: -10},
			To:        r2.Vec{X: 1000},
			HalfWidth: 3,
			Pull:      0.5,
			Height:    &height,
		},
	}
}

// wallScenario: a target bouncing around a 40x20 room at constant speed.
func wallScenario() Scenario {
	const (
		halfW = 20.0
		halfH = 10.0
	)
	vel := r2.Vec{X: 9, Y: 4}
	return Scenario{
		Name: "wall",
		Target: func(t float64) rig.Kinematics {
			x, vx := bounce(vel.X*t, halfW)
			y, vy := bounce(vel.Y*t, halfH)
			return rig.Kinematics{
				Position: r3.Vec{X: x, Y: y},
				Velocity: r3.Vec{X: vx * vel.X, Y: vy * vel.Y},
			}
		},
		Obstruction: world.Box(r2.Vec{X: -halfW, Y: -halfH}, r2.Vec{X: halfW, Y: halfH}, "room"),
	}
}

// bounce folds an unbounded coordinate into [-half, half] as a triangle
// wave and returns the direction of travel (+1 or -1).
func bounce(s, half float64) (float64, float64) {
	period := 4 * half
	p := math.Mod(s+half, period)
	if p < 0 {
		p += period
	}
	if p <= 2*half {
		return p - half, 1
	}
	return 3*half - p, -1
}
