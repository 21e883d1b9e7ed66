package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/follow"
	"github.com/banshee-data/damptrack/internal/leadlag"
	"github.com/banshee-data/damptrack/internal/lookahead"
	"github.com/banshee-data/damptrack/internal/rig"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the flat, persisted tuning of one follow rig. Every field
// is optional; the Get* accessors supply defaults for omitted keys. The
// orchestrator owns this state, the tracker never writes it back.
type TuningConfig struct {
	// Tracker params
	Mode        *string  `json:"mode,omitempty"`
	ClampShape  *string  `json:"clamp_shape,omitempty"`
	SmoothTimeX *float64 `json:"smooth_time_x,omitempty"` // seconds
	SmoothTimeY *float64 `json:"smooth_time_y,omitempty"`
	SmoothTimeZ *float64 `json:"smooth_time_z,omitempty"`

	// Under-damped modes only. damping_ratio applies to every axis without
	// its own damping_ratio_<axis> key.
	DampingRatio  *float64 `json:"damping_ratio,omitempty"`
	DampingRatioX *float64 `json:"damping_ratio_x,omitempty"`
	DampingRatioY *float64 `json:"damping_ratio_y,omitempty"`
	DampingRatioZ *float64 `json:"damping_ratio_z,omitempty"`

	// Distance clamp; omitted means unclamped
	MaxFollowDistanceX *float64 `json:"max_follow_distance_x,omitempty"`
	MaxFollowDistanceY *float64 `json:"max_follow_distance_y,omitempty"`
	MaxFollowDistanceZ *float64 `json:"max_follow_distance_z,omitempty"`
	AntiOvershootX     *bool    `json:"anti_overshoot_x,omitempty"`
	AntiOvershootY     *bool    `json:"anti_overshoot_y,omitempty"`

	// Acceleration limiting; omitted thresholds mean unlimited
	AccelerationThresholdX          *float64 `json:"acceleration_threshold_x,omitempty"`
	AccelerationThresholdY          *float64 `json:"acceleration_threshold_y,omitempty"`
	AccelerationThresholdZ          *float64 `json:"acceleration_threshold_z,omitempty"`
	AccelerationOverThresholdIsZero *bool    `json:"acceleration_over_threshold_is_zero,omitempty"`
	AccelerationThresholdLinked     *bool    `json:"acceleration_threshold_linked,omitempty"`

	// Lead/lag params
	LeadLagMode          *string  `json:"lead_lag_mode,omitempty"` // off, velocity, position
	LeadLagDistanceX     *float64 `json:"lead_lag_distance_x,omitempty"`
	LeadLagDistanceY     *float64 `json:"lead_lag_distance_y,omitempty"`
	LeadLagMaxAtVelocity *float64 `json:"lead_lag_max_at_velocity,omitempty"`
	LeadLagBoxClamp      *bool    `json:"lead_lag_box_clamp,omitempty"`
	LeadLagInfluence     *float64 `json:"lead_lag_influence,omitempty"`

	// Look-ahead params
	LookAheadFirst  *string `json:"look_ahead_first,omitempty"`  // duration string like "250ms"
	LookAheadSecond *string `json:"look_ahead_second,omitempty"` // duration string like "250ms"
	IgnoreMask      *uint32 `json:"ignore_mask,omitempty"`

	// Playback
	TickInterval *string `json:"tick_interval,omitempty"` // duration string like "16ms"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every defaulted field
// populated. Clamp distances and acceleration thresholds stay nil
// (unbounded) since JSON cannot carry infinity.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		Mode:                            ptrString(follow.ModeCritical.String()),
		ClampShape:                      ptrString(follow.ClampBox.String()),
		SmoothTimeX:                     ptrFloat64(0.15),
		SmoothTimeY:                     ptrFloat64(0.15),
		SmoothTimeZ:                     ptrFloat64(0.15),
		DampingRatioX:                   ptrFloat64(0.5),
		DampingRatioY:                   ptrFloat64(0.5),
		DampingRatioZ:                   ptrFloat64(0.5),
		AntiOvershootX:                  ptrBool(false),
		AntiOvershootY:                  ptrBool(false),
		AccelerationOverThresholdIsZero: ptrBool(false),
		AccelerationThresholdLinked:     ptrBool(false),
		LeadLagMode:                     ptrString(rig.LeadLagOff.String()),
		LeadLagDistanceX:                ptrFloat64(0),
		LeadLagDistanceY:                ptrFloat64(0),
		LeadLagMaxAtVelocity:            ptrFloat64(0),
		LeadLagBoxClamp:                 ptrBool(false),
		LeadLagInfluence:                ptrFloat64(1),
		LookAheadFirst:                  ptrString("0s"),
		LookAheadSecond:                 ptrString("250ms"),
		TickInterval:                    ptrString("16.666667ms"),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseTuningConfig(data)
}

// ParseTuningConfig decodes and validates a JSON tuning blob, as stored in
// files and presets.
func ParseTuningConfig(data []byte) (*TuningConfig, error) {
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Mode != nil {
		if _, err := follow.ParseMode(*c.Mode); err != nil {
			return err
		}
	}
	if c.ClampShape != nil {
		if _, err := follow.ParseClampShape(*c.ClampShape); err != nil {
			return err
		}
	}
	if c.LeadLagMode != nil {
		if _, err := rig.ParseLeadLagMode(*c.LeadLagMode); err != nil {
			return err
		}
	}

	for name, v := range map[string]*float64{
		"smooth_time_x": c.SmoothTimeX,
		"smooth_time_y": c.SmoothTimeY,
		"smooth_time_z": c.SmoothTimeZ,
	} {
		if v != nil && !(*v > 0) {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}
	for name, v := range map[string]*float64{
		"damping_ratio":   c.DampingRatio,
		"damping_ratio_x": c.DampingRatioX,
		"damping_ratio_y": c.DampingRatioY,
		"damping_ratio_z": c.DampingRatioZ,
	} {
		if v != nil && !(*v >= 0 && *v < 1) {
			return fmt.Errorf("%s must be in [0, 1), got %f", name, *v)
		}
	}
	for name, v := range map[string]*float64{
		"max_follow_distance_x":    c.MaxFollowDistanceX,
		"max_follow_distance_y":    c.MaxFollowDistanceY,
		"max_follow_distance_z":    c.MaxFollowDistanceZ,
		"acceleration_threshold_x": c.AccelerationThresholdX,
		"acceleration_threshold_y": c.AccelerationThresholdY,
		"acceleration_threshold_z": c.AccelerationThresholdZ,
		"lead_lag_max_at_velocity": c.LeadLagMaxAtVelocity,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *v)
		}
	}
	if c.LeadLagInfluence != nil && (*c.LeadLagInfluence < 0 || *c.LeadLagInfluence > 1) {
		return fmt.Errorf("lead_lag_influence must be between 0 and 1, got %f", *c.LeadLagInfluence)
	}

	for name, v := range map[string]*string{
		"look_ahead_first":  c.LookAheadFirst,
		"look_ahead_second": c.LookAheadSecond,
		"tick_interval":     c.TickInterval,
	} {
		if v == nil || *v == "" {
			continue
		}
		d, err := time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must be non-negative, got %s", name, d)
		}
	}
	return nil
}

// GetMode returns the tracker mode or the default (critical).
func (c *TuningConfig) GetMode() follow.Mode {
	if c.Mode == nil {
		return follow.ModeCritical
	}
	m, err := follow.ParseMode(*c.Mode)
	if err != nil {
		return follow.ModeCritical // default on parse error
	}
	return m
}

// GetClampShape returns the clamp shape or the default (box).
func (c *TuningConfig) GetClampShape() follow.ClampShape {
	if c.ClampShape == nil {
		return follow.ClampBox
	}
	s, err := follow.ParseClampShape(*c.ClampShape)
	if err != nil {
		return follow.ClampBox
	}
	return s
}

// GetSmoothTime returns the per-axis smooth time in seconds.
func (c *TuningConfig) GetSmoothTime() r3.Vec {
	return r3.Vec{
		X: floatOr(c.SmoothTimeX, 0.15),
		Y: floatOr(c.SmoothTimeY, 0.15),
		Z: floatOr(c.SmoothTimeZ, 0.15),
	}
}

// GetDampingRatio returns the per-axis damping ratio. Axes without their
// own key fall back to damping_ratio, then to 0.5.
func (c *TuningConfig) GetDampingRatio() r3.Vec {
	shared := floatOr(c.DampingRatio, 0.5)
	return r3.Vec{
		X: floatOr(c.DampingRatioX, shared),
		Y: floatOr(c.DampingRatioY, shared),
		Z: floatOr(c.DampingRatioZ, shared),
	}
}

// GetMaxFollowDistance returns the per-axis clamp, +Inf where unset.
func (c *TuningConfig) GetMaxFollowDistance() r3.Vec {
	inf := math.Inf(1)
	return r3.Vec{
		X: floatOr(c.MaxFollowDistanceX, inf),
		Y: floatOr(c.MaxFollowDistanceY, inf),
		Z: floatOr(c.MaxFollowDistanceZ, inf),
	}
}

// GetAccelerationThreshold returns the per-axis threshold, +Inf where unset.
func (c *TuningConfig) GetAccelerationThreshold() r3.Vec {
	inf := math.Inf(1)
	return r3.Vec{
		X: floatOr(c.AccelerationThresholdX, inf),
		Y: floatOr(c.AccelerationThresholdY, inf),
		Z: floatOr(c.AccelerationThresholdZ, inf),
	}
}

// GetLeadLagMode returns the lead/lag mode or the default (off).
func (c *TuningConfig) GetLeadLagMode() rig.LeadLagMode {
	if c.LeadLagMode == nil {
		return rig.LeadLagOff
	}
	m, err := rig.ParseLeadLagMode(*c.LeadLagMode)
	if err != nil {
		return rig.LeadLagOff
	}
	return m
}

// GetLeadLagInfluence returns the lead_lag_influence value or the default.
func (c *TuningConfig) GetLeadLagInfluence() float64 {
	return floatOr(c.LeadLagInfluence, 1)
}

// GetLookAheadFirst returns the first look-ahead horizon (default 0, off).
func (c *TuningConfig) GetLookAheadFirst() time.Duration {
	return durationOr(c.LookAheadFirst, 0)
}

// GetLookAheadSecond returns the second look-ahead horizon.
func (c *TuningConfig) GetLookAheadSecond() time.Duration {
	return durationOr(c.LookAheadSecond, 250*time.Millisecond)
}

// GetTickInterval returns the playback tick interval.
func (c *TuningConfig) GetTickInterval() time.Duration {
	return durationOr(c.TickInterval, time.Second/60)
}

// FollowConfig converts the tracker keys into a follow.Config.
func (c *TuningConfig) FollowConfig() follow.Config {
	return follow.Config{
		Mode:                            c.GetMode(),
		SmoothTime:                      c.GetSmoothTime(),
		DampingRatio:                    c.GetDampingRatio(),
		MaxFollowDistance:               c.GetMaxFollowDistance(),
		AntiOvershootX:                  boolOr(c.AntiOvershootX, false),
		AntiOvershootY:                  boolOr(c.AntiOvershootY, false),
		AccelerationThreshold:           c.GetAccelerationThreshold(),
		AccelerationOverThresholdIsZero: boolOr(c.AccelerationOverThresholdIsZero, false),
		AccelerationThresholdLinked:     boolOr(c.AccelerationThresholdLinked, false),
	}
}

// LeadLagParams converts the lead/lag keys. SmoothTime is taken from the
// tracker's X/Y smooth time.
func (c *TuningConfig) LeadLagParams() leadlag.Params {
	st := c.GetSmoothTime()
	return leadlag.Params{
		SmoothTime:    r2.Vec{X: st.X, Y: st.Y},
		MaxDistance:   r2.Vec{X: floatOr(c.LeadLagDistanceX, 0), Y: floatOr(c.LeadLagDistanceY, 0)},
		MaxAtVelocity: floatOr(c.LeadLagMaxAtVelocity, 0),
		BoxClamp:      boolOr(c.LeadLagBoxClamp, false),
		Influence:     c.GetLeadLagInfluence(),
	}
}

// RigConfig builds a rig.Config from the tuning. Collaborators (obstruction
// query, field) are left for the caller to attach.
func (c *TuningConfig) RigConfig() (rig.Config, error) {
	cfg := rig.Config{
		Follow:          c.FollowConfig(),
		Shape:           c.GetClampShape(),
		LeadLagMode:     c.GetLeadLagMode(),
		LeadLag:         c.LeadLagParams(),
		LookAheadFirst:  c.GetLookAheadFirst().Seconds(),
		LookAheadSecond: c.GetLookAheadSecond().Seconds(),
	}
	if c.IgnoreMask != nil {
		cfg.IgnoreMask = lookahead.IgnoreMask(*c.IgnoreMask)
	}
	if err := cfg.Validate(); err != nil {
		return rig.Config{}, fmt.Errorf("invalid rig config: %w", err)
	}
	return cfg, nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def // default on parse error
	}
	return d
}
