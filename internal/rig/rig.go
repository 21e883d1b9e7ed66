// Package rig wires the look-ahead, lead/lag, effector field and tracker
// stages into the per-tick follow pipeline an orchestrator drives once per
// frame for each followed entity.
package rig

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/effector"
	"github.com/banshee-data/damptrack/internal/follow"
	"github.com/banshee-data/damptrack/internal/leadlag"
	"github.com/banshee-data/damptrack/internal/lookahead"
	"github.com/banshee-data/damptrack/internal/monitoring"
	"github.com/banshee-data/damptrack/internal/vecmath"
)

// Kinematics is the raw target state reported by the host for one tick.
// Acceleration is zero when the host does not know it.
type Kinematics struct {
	Position     r3.Vec
	Velocity     r3.Vec
	Acceleration r3.Vec
}

// LeadLagMode selects how (and whether) lead/lag framing is applied.
type LeadLagMode int

const (
	LeadLagOff LeadLagMode = iota
	LeadLagByVelocity
	LeadLagByPosition
)

var leadLagModeNames = map[LeadLagMode]string{
	LeadLagOff:        "off",
	LeadLagByVelocity: "velocity",
	LeadLagByPosition: "position",
}

func (m LeadLagMode) String() string {
	if name, ok := leadLagModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("LeadLagMode(%d)", int(m))
}

// ParseLeadLagMode maps a config name ("off", "velocity", "position").
func ParseLeadLagMode(name string) (LeadLagMode, error) {
	for m, n := range leadLagModeNames {
		if n == name {
			return m, nil
		}
	}
	return LeadLagOff, fmt.Errorf("unknown lead/lag mode %q", name)
}

// ErrInvalidLookAhead is returned for negative look-ahead times.
var ErrInvalidLookAhead = errors.New("look-ahead times must be non-negative")

// Config assembles one follow rig. Obstruction and Field are optional; a
// nil collaborator means no hit and no field influence.
type Config struct {
	Follow follow.Config
	Shape  follow.ClampShape

	LeadLagMode LeadLagMode
	// LeadLag.SmoothTime defaults to the X/Y smooth time of Follow.
	LeadLag leadlag.Params

	LookAheadFirst  float64 // seconds; 0 disables look-ahead
	LookAheadSecond float64 // seconds
	IgnoreMask      lookahead.IgnoreMask
	Self            lookahead.EntityID

	Obstruction lookahead.Obstruction
	Field       effector.Field
}

// Validate checks the tracker tuning and the rig-level settings.
func (c Config) Validate() error {
	if err := c.Follow.Validate(); err != nil {
		return fmt.Errorf("invalid follow config: %w", err)
	}
	if _, ok := leadLagModeNames[c.LeadLagMode]; !ok {
		return fmt.Errorf("unknown lead/lag mode %d", int(c.LeadLagMode))
	}
	if c.LookAheadFirst < 0 || c.LookAheadSecond < 0 {
		return fmt.Errorf("look-ahead %v/%v: %w", c.LookAheadFirst, c.LookAheadSecond, ErrInvalidLookAhead)
	}
	return nil
}

// Rig is a single followed entity. It is not safe for concurrent use;
// distinct rigs may be ticked in parallel.
type Rig struct {
	cfg       Config
	tracker   *follow.Tracker
	avoider   lookahead.Avoider
	projector effector.Projector

	// last field output seen by Tick, zero when the field had no influence
	lastEffector effector.Output
	skipped      int
}

// New validates cfg and spawns the follower at position.
func New(cfg Config, position r3.Vec) (*Rig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = withDefaults(cfg)
	tracker, err := follow.NewTracker(cfg.Follow, position)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracker: %w", err)
	}
	tracker.SetPreviousTargetPosition(position)
	return &Rig{
		cfg:       cfg,
		tracker:   tracker,
		avoider:   lookahead.Avoider{Query: cfg.Obstruction, Self: cfg.Self},
		projector: effector.Projector{Field: cfg.Field},
	}, nil
}

func withDefaults(cfg Config) Config {
	if cfg.LeadLag.SmoothTime.X == 0 {
		cfg.LeadLag.SmoothTime.X = cfg.Follow.SmoothTime.X
	}
	if cfg.LeadLag.SmoothTime.Y == 0 {
		cfg.LeadLag.SmoothTime.Y = cfg.Follow.SmoothTime.Y
	}
	return cfg
}

// Config returns the active configuration.
func (r *Rig) Config() Config { return r.cfg }

// SetConfig swaps the configuration between ticks. Tracker state is kept.
func (r *Rig) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = withDefaults(cfg)
	if err := r.tracker.SetConfig(cfg.Follow); err != nil {
		return fmt.Errorf("failed to update tracker: %w", err)
	}
	r.cfg = cfg
	r.avoider = lookahead.Avoider{Query: cfg.Obstruction, Self: cfg.Self}
	r.projector = effector.Projector{Field: cfg.Field}
	return nil
}

func (r *Rig) Position() r3.Vec { return r.tracker.Position() }
func (r *Rig) Velocity() r3.Vec { return r.tracker.Velocity() }

// EffectorOutput is the field output sampled on the last tick. It is a
// diagnostic: the pipeline queries the field afresh every tick and never
// reads it back.
func (r *Rig) EffectorOutput() effector.Output { return r.lastEffector }

// Skipped counts ticks dropped because of non-finite input.
func (r *Rig) Skipped() int { return r.skipped }

// Reset respawns the follower at position with zero velocity.
func (r *Rig) Reset(position r3.Vec) {
	r.tracker.SetInitialConditions(position, r3.Vec{})
	r.tracker.SetPreviousTargetPosition(position)
	r.lastEffector = effector.Output{}
	monitoring.Logf("[Rig] reset at (%.3f, %.3f, %.3f)", position.X, position.Y, position.Z)
}

// Tick runs one frame of the pipeline and returns the new follower
// position. Non-finite target kinematics or a non-positive dt skip the tick
// and leave the follower where it was.
func (r *Rig) Tick(target Kinematics, dt float64) r3.Vec {
	if !(dt > 0) || !vecmath.IsFinite(target.Position) || !vecmath.IsFinite(target.Velocity) || !vecmath.IsFinite(target.Acceleration) {
		r.skipped++
		monitoring.Logf("[Rig] skipping tick: dt=%v target=%+v", dt, target)
		return r.tracker.Position()
	}
	pos, vel, acc := target.Position, target.Velocity, target.Acceleration

	if r.cfg.LookAheadFirst > 0 {
		xy := r.avoider.Compensate(vecmath.XY(pos), vecmath.XY(vel), r.cfg.LookAheadFirst, r.cfg.LookAheadSecond, r.cfg.IgnoreMask)
		vel = vecmath.WithXY(vel, xy)
	}

	switch r.cfg.LeadLagMode {
	case LeadLagByVelocity:
		vel = leadlag.ByVelocityCompensation(vel, r.cfg.LeadLag)
	case LeadLagByPosition:
		// Must run before the field query: the field is sampled at the
		// shifted point.
		pos = leadlag.ByPositionCompensation(pos, vel, r.cfg.LeadLag)
	}

	proj := r.projector.DisplaceAndProject(pos, vel, acc)
	r.lastEffector = proj.Output
	if proj.Hit {
		monitoring.Debugf("[Rig] field influence=%.3f locked=%t", proj.Output.Influence, proj.Output.LockedXY)
	}

	return r.tracker.Step(proj.Position, proj.Velocity, proj.Acceleration, dt, r.cfg.Shape)
}
