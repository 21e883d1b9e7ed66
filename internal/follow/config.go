package follow

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/vecmath"
)

// Mode selects the solver Tracker.Step dispatches to.
type Mode int

const (
	// ModeCritical expects target kinematics at the tracker's current instant.
	ModeCritical Mode = iota
	// ModeCriticalAntiFrameLag expects target kinematics already advanced by dt.
	ModeCriticalAntiFrameLag
	// ModeCriticalStableClamp is ModeCriticalAntiFrameLag with the
	// zero-velocity stable clamp.
	ModeCriticalStableClamp
	// ModeUnderDamped rings around the target using DampingRatio.
	ModeUnderDamped
	// ModeUnderDampedAntiFrameLag is ModeUnderDamped for pre-advanced targets.
	ModeUnderDampedAntiFrameLag
)

var modeNames = map[Mode]string{
	ModeCritical:                "critical",
	ModeCriticalAntiFrameLag:    "critical_anti_frame_lag",
	ModeCriticalStableClamp:     "critical_stable_clamp",
	ModeUnderDamped:             "under_damped",
	ModeUnderDampedAntiFrameLag: "under_damped_anti_frame_lag",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// UnderDamped reports whether the mode uses DampingRatio.
func (m Mode) UnderDamped() bool {
	return m == ModeUnderDamped || m == ModeUnderDampedAntiFrameLag
}

// ParseMode converts a config name into a Mode.
func ParseMode(name string) (Mode, error) {
	for mode, n := range modeNames {
		if n == name {
			return mode, nil
		}
	}
	return ModeCritical, fmt.Errorf("unknown tracker mode %q", name)
}

// Configuration errors returned (wrapped) by Config.Validate.
var (
	ErrInvalidSmoothTime   = errors.New("smooth time must be positive and finite")
	ErrInvalidDampingRatio = errors.New("damping ratio must be in [0, 1)")
	ErrInvalidMaxDistance  = errors.New("max follow distance must be non-negative")
	ErrInvalidThreshold    = errors.New("acceleration threshold must be non-negative")
)

// Config holds the per-axis tuning of a Tracker. It may be replaced between
// ticks but never changes during one.
type Config struct {
	Mode Mode

	SmoothTime        r3.Vec // seconds, > 0
	DampingRatio      r3.Vec // [0, 1), under-damped modes only
	MaxFollowDistance r3.Vec // >= 0, +Inf for unclamped

	// Anti-overshoot applies to the anti-frame-lag critical modes on X and Y.
	AntiOvershootX bool
	AntiOvershootY bool

	AccelerationThreshold           r3.Vec // >= 0, +Inf for unlimited
	AccelerationOverThresholdIsZero bool   // zero out instead of clamping
	// AccelerationThresholdLinked limits the acceleration magnitude as a
	// whole. AccelerationThreshold.X is the shared limit; Y and Z are unused.
	AccelerationThresholdLinked bool
}

// DefaultConfig returns an unclamped critical tracker with a 0.15 s smooth
// time on every axis.
func DefaultConfig() Config {
	return Config{
		Mode:                  ModeCritical,
		SmoothTime:            vecmath.Splat(0.15),
		DampingRatio:          vecmath.Splat(0.5),
		MaxFollowDistance:     vecmath.Unbounded(),
		AccelerationThreshold: vecmath.Unbounded(),
	}
}

// Validate rejects configurations the solvers cannot run with.
func (c Config) Validate() error {
	for _, a := range vecmath.Axes {
		st := vecmath.Get(c.SmoothTime, a)
		if !(st > 0) || math.IsInf(st, 0) {
			return fmt.Errorf("axis %s smooth time %v: %w", a, st, ErrInvalidSmoothTime)
		}
		if c.Mode.UnderDamped() {
			dr := vecmath.Get(c.DampingRatio, a)
			if !(dr >= 0 && dr < 1) {
				return fmt.Errorf("axis %s damping ratio %v: %w", a, dr, ErrInvalidDampingRatio)
			}
		}
		if md := vecmath.Get(c.MaxFollowDistance, a); !(md >= 0) {
			return fmt.Errorf("axis %s max follow distance %v: %w", a, md, ErrInvalidMaxDistance)
		}
		if th := vecmath.Get(c.AccelerationThreshold, a); !(th >= 0) {
			return fmt.Errorf("axis %s acceleration threshold %v: %w", a, th, ErrInvalidThreshold)
		}
	}
	if _, ok := modeNames[c.Mode]; !ok {
		return fmt.Errorf("unknown tracker mode %d", int(c.Mode))
	}
	return nil
}

// LimitAcceleration applies the acceleration threshold policy to acc.
//
// Unlinked, each axis is checked against its own threshold. Linked, the
// vector magnitude is checked against threshold.X and the whole vector is
// scaled or zeroed at once.
func LimitAcceleration(acc, threshold r3.Vec, zeroOverThreshold, linked bool) r3.Vec {
	if linked {
		mag := r3.Norm(acc)
		if mag <= threshold.X {
			return acc
		}
		if zeroOverThreshold {
			return r3.Vec{}
		}
		return r3.Scale(threshold.X/mag, acc)
	}

	for _, a := range vecmath.Axes {
		v := vecmath.Get(acc, a)
		th := vecmath.Get(threshold, a)
		if math.Abs(v) <= th {
			continue
		}
		if zeroOverThreshold {
			acc = vecmath.Set(acc, a, 0)
		} else {
			acc = vecmath.Set(acc, a, vecmath.Sign(v)*th)
		}
	}
	return acc
}
