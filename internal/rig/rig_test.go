package rig

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/effector"
	"github.com/banshee-data/damptrack/internal/follow"
	"github.com/banshee-data/damptrack/internal/leadlag"
	"github.com/banshee-data/damptrack/internal/monitoring"
	"github.com/banshee-data/damptrack/internal/vecmath"
	"github.com/banshee-data/damptrack/internal/world"
)

func init() {
	monitoring.SetLogger(nil)
}

func testConfig() Config {
	fc := follow.DefaultConfig()
	fc.SmoothTime = vecmath.Splat(0.5)
	return Config{Follow: fc}
}

// recordingField returns a fixed output everywhere and remembers where it
// was queried.
type recordingField struct {
	out     effector.Output
	queried []r3.Vec
}

func (f *recordingField) QueryAt(point r3.Vec, _, _ bool) (effector.Output, bool) {
	f.queried = append(f.queried, point)
	return f.out, true
}

func TestNewValidates(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Follow.SmoothTime.Y = 0
	_, err := New(cfg, r3.Vec{})
	require.ErrorIs(t, err, follow.ErrInvalidSmoothTime)

	cfg = testConfig()
	cfg.LookAheadSecond = -1
	_, err = New(cfg, r3.Vec{})
	require.ErrorIs(t, err, ErrInvalidLookAhead)

	cfg = testConfig()
	cfg.LeadLagMode = LeadLagMode(9)
	_, err = New(cfg, r3.Vec{})
	require.Error(t, err)

	r, err := New(testConfig(), r3.Vec{X: 1})
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 1}, r.Position())
	assert.Equal(t, 0.5, r.Config().LeadLag.SmoothTime.X, "lead/lag smooth time follows the tracker")
}

func TestTickWithoutCollaboratorsMatchesTracker(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Shape = follow.ClampCircle
	cfg.Follow.MaxFollowDistance = vecmath.Splat(1.5)
	r, err := New(cfg, r3.Vec{})
	require.NoError(t, err)
	tr, err := follow.NewTracker(cfg.Follow, r3.Vec{})
	require.NoError(t, err)

	const dt = 1.0 / 60
	for i := 0; i < 120; i++ {
		ts := float64(i) * dt
		target := Kinematics{
			Position: r3.Vec{X: 3 * math.Cos(ts), Y: 3 * math.Sin(ts)},
			Velocity: r3.Vec{X: -3 * math.Sin(ts), Y: 3 * math.Cos(ts)},
		}
		got := r.Tick(target, dt)
		want := tr.Step(target.Position, target.Velocity, target.Acceleration, dt, follow.ClampCircle)
		require.Equal(t, want, got, "tick %d", i)
	}
	assert.Equal(t, effector.Output{}, r.EffectorOutput())
}

func TestTickSkipsNonFiniteInput(t *testing.T) {
	t.Parallel()
	r, err := New(testConfig(), r3.Vec{X: 2})
	require.NoError(t, err)

	got := r.Tick(Kinematics{Position: r3.Vec{X: math.NaN()}}, 0.1)
	assert.Equal(t, r3.Vec{X: 2}, got)
	got = r.Tick(Kinematics{Velocity: r3.Vec{Y: math.Inf(1)}}, 0.1)
	assert.Equal(t, r3.Vec{X: 2}, got)
	got = r.Tick(Kinematics{Position: r3.Vec{X: 5}}, 0)
	assert.Equal(t, r3.Vec{X: 2}, got)
	assert.Equal(t, 3, r.Skipped())

	got = r.Tick(Kinematics{Position: r3.Vec{X: 5}}, 0.1)
	assert.Greater(t, got.X, 2.0)
}

func TestTickLookAheadSlowsApproachToWall(t *testing.T) {
	t.Parallel()
	target := Kinematics{Position: r3.Vec{}, Velocity: r3.Vec{X: 10}}

	free, err := New(testConfig(), r3.Vec{})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.LookAheadFirst = 1
	cfg.LookAheadSecond = 0
	cfg.Obstruction = world.Box(r2.Vec{X: -5, Y: -5}, r2.Vec{X: 5, Y: 5}, "room")
	walled, err := New(cfg, r3.Vec{})
	require.NoError(t, err)

	a := free.Tick(target, 0.1)
	b := walled.Tick(target, 0.1)
	assert.Less(t, b.X, a.X)
	assert.Greater(t, b.X, 0.0)
}

func TestTickLeadByVelocity(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.LeadLagMode = LeadLagByVelocity
	cfg.LeadLag = leadlag.Params{
		MaxDistance:   r2.Vec{X: 2, Y: 1},
		MaxAtVelocity: 4,
		BoxClamp:      true,
		Influence:     1,
	}
	r, err := New(cfg, r3.Vec{})
	require.NoError(t, err)

	const (
		speed = 4.0
		dt    = 1.0 / 240
	)
	targetPos := 0.0
	for i := 0; i < int(10/dt); i++ {
		r.Tick(Kinematics{Position: r3.Vec{X: targetPos}, Velocity: r3.Vec{X: speed}}, dt)
		targetPos += speed * dt
	}
	assert.InDelta(t, 2, r.Position().X-targetPos, 0.02)
	assert.InDelta(t, 0, r.Position().Y, 1e-12)
}

func TestTickLeadByPositionShiftsFieldQuery(t *testing.T) {
	t.Parallel()
	field := &recordingField{out: effector.Output{
		Displacement: r3.Vec{Z: 1},
		Tangent:      r2.Vec{X: 1},
		Influence:    2,
	}}
	cfg := testConfig()
	cfg.LeadLagMode = LeadLagByPosition
	cfg.LeadLag = leadlag.Params{MaxDistance: r2.Vec{X: 3, Y: 3}, Influence: 1}
	cfg.Field = field
	r, err := New(cfg, r3.Vec{})
	require.NoError(t, err)

	r.Tick(Kinematics{Position: r3.Vec{X: 1}, Velocity: r3.Vec{Y: 5}}, 0.1)

	require.Len(t, field.queried, 1)
	assert.InDelta(t, 1, field.queried[0].X, 1e-12)
	assert.InDelta(t, 3, field.queried[0].Y, 1e-12)
	out := r.EffectorOutput()
	assert.Equal(t, 1.0, out.Influence, "influence is clamped")
	assert.Equal(t, r2.Vec{X: 1}, out.Tangent)
}

func TestReset(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Follow.Mode = follow.ModeCriticalStableClamp
	r, err := New(cfg, r3.Vec{})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		r.Tick(Kinematics{Position: r3.Vec{X: 4}, Velocity: r3.Vec{X: 1}}, 0.05)
	}
	require.NotEqual(t, r3.Vec{}, r.Velocity())

	spawn := r3.Vec{X: -2, Y: 1}
	r.Reset(spawn)
	assert.Equal(t, spawn, r.Position())
	assert.Equal(t, r3.Vec{}, r.Velocity())

	// A still target at the spawn point leaves the follower in place.
	got := r.Tick(Kinematics{Position: spawn}, 0.05)
	assert.Equal(t, spawn, got)
}

func TestSetConfig(t *testing.T) {
	t.Parallel()
	r, err := New(testConfig(), r3.Vec{})
	require.NoError(t, err)

	bad := testConfig()
	bad.LookAheadFirst = -1
	require.Error(t, r.SetConfig(bad))

	good := testConfig()
	good.Follow.SmoothTime = vecmath.Splat(2)
	require.NoError(t, r.SetConfig(good))
	assert.Equal(t, 2.0, r.Config().Follow.SmoothTime.Z)
	assert.Equal(t, 2.0, r.Config().LeadLag.SmoothTime.Y)
}

func TestLeadLagModeNames(t *testing.T) {
	t.Parallel()
	for _, m := range []LeadLagMode{LeadLagOff, LeadLagByVelocity, LeadLagByPosition} {
		got, err := ParseLeadLagMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseLeadLagMode("sideways")
	assert.Error(t, err)
	assert.Equal(t, "LeadLagMode(7)", LeadLagMode(7).String())
}
