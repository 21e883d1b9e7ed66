package follow

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/vecmath"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"default is valid", func(*Config) {}, nil},
		{"zero smooth time", func(c *Config) { c.SmoothTime.Y = 0 }, ErrInvalidSmoothTime},
		{"negative smooth time", func(c *Config) { c.SmoothTime.X = -1 }, ErrInvalidSmoothTime},
		{"NaN smooth time", func(c *Config) { c.SmoothTime.Z = math.NaN() }, ErrInvalidSmoothTime},
		{"damping ratio ignored for critical", func(c *Config) { c.DampingRatio.X = 4 }, nil},
		{"damping ratio of one rejected", func(c *Config) {
			c.Mode = ModeUnderDamped
			c.DampingRatio.X = 1
		}, ErrInvalidDampingRatio},
		{"negative damping ratio rejected", func(c *Config) {
			c.Mode = ModeUnderDampedAntiFrameLag
			c.DampingRatio.Z = -0.1
		}, ErrInvalidDampingRatio},
		{"zero max distance allowed", func(c *Config) { c.MaxFollowDistance = r3.Vec{} }, nil},
		{"negative max distance", func(c *Config) { c.MaxFollowDistance.X = -1 }, ErrInvalidMaxDistance},
		{"negative threshold", func(c *Config) { c.AccelerationThreshold.Y = -2 }, ErrInvalidThreshold},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v, want %v", err, tc.want)
		})
	}
}

func TestConfigRejectsUnknownMode(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Mode = Mode(99)
	assert.Error(t, cfg.Validate())
}

func TestModeNames(t *testing.T) {
	t.Parallel()
	for mode := range modeNames {
		parsed, err := ParseMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
	_, err := ParseMode("overdamped")
	assert.Error(t, err)
}

func TestLimitAcceleration(t *testing.T) {
	t.Parallel()
	acc := r3.Vec{X: 5, Y: -20, Z: 1}
	threshold := r3.Vec{X: 10, Y: 10, Z: 10}

	t.Run("per-axis clamp", func(t *testing.T) {
		got := LimitAcceleration(acc, threshold, false, false)
		assert.Equal(t, r3.Vec{X: 5, Y: -10, Z: 1}, got)
	})

	t.Run("per-axis zero", func(t *testing.T) {
		got := LimitAcceleration(acc, threshold, true, false)
		assert.Equal(t, r3.Vec{X: 5, Y: 0, Z: 1}, got)
	})

	t.Run("linked clamp scales the whole vector by the X threshold", func(t *testing.T) {
		got := LimitAcceleration(r3.Vec{X: 30, Y: 40}, r3.Vec{X: 10, Y: 1000, Z: 1000}, false, true)
		assert.InDelta(t, 6, got.X, 1e-12)
		assert.InDelta(t, 8, got.Y, 1e-12)
	})

	t.Run("linked zero drops the whole vector", func(t *testing.T) {
		got := LimitAcceleration(r3.Vec{X: 3, Y: 11}, r3.Vec{X: 10, Y: 0, Z: 0}, true, true)
		assert.Equal(t, r3.Vec{}, got)
	})

	t.Run("linked under threshold ignores Y threshold", func(t *testing.T) {
		in := r3.Vec{X: 1, Y: 5}
		got := LimitAcceleration(in, r3.Vec{X: 10, Y: 0, Z: 0}, false, true)
		assert.Equal(t, in, got)
	})

	t.Run("unbounded threshold passes through", func(t *testing.T) {
		assert.Equal(t, acc, LimitAcceleration(acc, vecmath.Unbounded(), true, false))
	})
}
