package config

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/damptrack/internal/follow"
	"github.com/banshee-data/damptrack/internal/rig"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.SmoothTimeX == nil || *cfg.SmoothTimeX != 0.15 {
		t.Errorf("Expected SmoothTimeX 0.15, got %v", cfg.SmoothTimeX)
	}
	if cfg.MaxFollowDistanceX != nil {
		t.Errorf("Expected MaxFollowDistanceX unset, got %v", *cfg.MaxFollowDistanceX)
	}
	if got := cfg.GetTickInterval(); got.Round(time.Microsecond) != (time.Second / 60).Round(time.Microsecond) {
		t.Errorf("GetTickInterval() = %s, want ~16.667ms", got)
	}
	if got := cfg.GetLookAheadSecond(); got != 250*time.Millisecond {
		t.Errorf("GetLookAheadSecond() = %s, want 250ms", got)
	}
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.GetMode() != follow.ModeCritical {
		t.Errorf("GetMode() = %s, want critical", cfg.GetMode())
	}
	if cfg.GetClampShape() != follow.ClampBox {
		t.Errorf("GetClampShape() = %s, want box", cfg.GetClampShape())
	}
	if st := cfg.GetSmoothTime(); st.X != 0.15 || st.Y != 0.15 || st.Z != 0.15 {
		t.Errorf("GetSmoothTime() = %+v, want 0.15 on every axis", st)
	}
	if md := cfg.GetMaxFollowDistance(); !math.IsInf(md.X, 1) || !math.IsInf(md.Y, 1) || !math.IsInf(md.Z, 1) {
		t.Errorf("GetMaxFollowDistance() = %+v, want unbounded", md)
	}
	if th := cfg.GetAccelerationThreshold(); !math.IsInf(th.X, 1) {
		t.Errorf("GetAccelerationThreshold() = %+v, want unbounded", th)
	}
	if cfg.GetLeadLagMode() != rig.LeadLagOff {
		t.Errorf("GetLeadLagMode() = %s, want off", cfg.GetLeadLagMode())
	}
	if cfg.GetLookAheadFirst() != 0 {
		t.Errorf("GetLookAheadFirst() = %s, want 0", cfg.GetLookAheadFirst())
	}
}

func TestDefaultsFileMatchesCode(t *testing.T) {
	fromFile := MustLoadDefaultConfig()
	fromCode := DefaultTuningConfig()

	if !reflect.DeepEqual(fromFile, fromCode) {
		a, _ := json.MarshalIndent(fromFile, "", "  ")
		b, _ := json.MarshalIndent(fromCode, "", "  ")
		t.Errorf("%s differs from DefaultTuningConfig()\nfile: %s\ncode: %s", DefaultConfigPath, a, b)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "mode": "under_damped",
  "clamp_shape": "ellipse",
  "smooth_time_x": 0.3,
  "damping_ratio": 0.2,
  "max_follow_distance_x": 2,
  "max_follow_distance_y": 1,
  "anti_overshoot_x": true,
  "lead_lag_mode": "velocity",
  "lead_lag_distance_x": -1.5,
  "look_ahead_first": "200ms",
  "ignore_mask": 6
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	fc := cfg.FollowConfig()
	if fc.Mode != follow.ModeUnderDamped {
		t.Errorf("Mode = %s, want under_damped", fc.Mode)
	}
	if fc.SmoothTime.X != 0.3 || fc.SmoothTime.Y != 0.15 {
		t.Errorf("SmoothTime = %+v, want X 0.3 and Y default", fc.SmoothTime)
	}
	if fc.DampingRatio.Z != 0.2 {
		t.Errorf("DampingRatio = %+v, want 0.2 on every axis", fc.DampingRatio)
	}
	if fc.MaxFollowDistance.X != 2 || !math.IsInf(fc.MaxFollowDistance.Z, 1) {
		t.Errorf("MaxFollowDistance = %+v", fc.MaxFollowDistance)
	}
	if !fc.AntiOvershootX || fc.AntiOvershootY {
		t.Errorf("AntiOvershoot = %v/%v, want true/false", fc.AntiOvershootX, fc.AntiOvershootY)
	}

	rc, err := cfg.RigConfig()
	if err != nil {
		t.Fatalf("RigConfig() error: %v", err)
	}
	if rc.Shape != follow.ClampEllipse {
		t.Errorf("Shape = %s, want ellipse", rc.Shape)
	}
	if rc.LeadLagMode != rig.LeadLagByVelocity {
		t.Errorf("LeadLagMode = %s, want velocity", rc.LeadLagMode)
	}
	if rc.LeadLag.MaxDistance.X != -1.5 || rc.LeadLag.SmoothTime.X != 0.3 {
		t.Errorf("LeadLag = %+v", rc.LeadLag)
	}
	if rc.LookAheadFirst != 0.2 || rc.LookAheadSecond != 0.25 {
		t.Errorf("LookAhead = %v/%v, want 0.2/0.25", rc.LookAheadFirst, rc.LookAheadSecond)
	}
	if rc.IgnoreMask != 6 {
		t.Errorf("IgnoreMask = %d, want 6", rc.IgnoreMask)
	}
}

func TestLoadTuningConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil || !strings.Contains(err.Error(), ".json") {
			t.Errorf("expected extension error, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(tmpDir, "nope.json"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		path := filepath.Join(tmpDir, "big.json")
		if err := os.WriteFile(path, make([]byte, 1024*1024+1), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil || !strings.Contains(err.Error(), "too large") {
			t.Errorf("expected size error, got %v", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.json")
		if err := os.WriteFile(path, []byte(`{"smooth_time_x": "fast"}`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{"empty", `{}`, ""},
		{"unknown mode", `{"mode": "bouncy"}`, "unknown tracker mode"},
		{"unknown shape", `{"clamp_shape": "torus"}`, "unknown clamp shape"},
		{"unknown lead lag", `{"lead_lag_mode": "sideways"}`, "unknown lead/lag mode"},
		{"zero smooth time", `{"smooth_time_y": 0}`, "smooth_time_y must be positive"},
		{"damping ratio one", `{"damping_ratio": 1}`, "damping_ratio"},
		{"negative damping", `{"damping_ratio": -0.1}`, "damping_ratio"},
		{"axis damping ratio one", `{"damping_ratio_y": 1}`, "damping_ratio_y must be in [0, 1)"},
		{"negative distance", `{"max_follow_distance_z": -1}`, "max_follow_distance_z"},
		{"zero distance", `{"max_follow_distance_z": 0}`, ""},
		{"negative threshold", `{"acceleration_threshold_x": -2}`, "acceleration_threshold_x"},
		{"influence", `{"lead_lag_influence": 1.5}`, "lead_lag_influence"},
		{"bad duration", `{"look_ahead_first": "soon"}`, "invalid look_ahead_first"},
		{"negative duration", `{"tick_interval": "-1s"}`, "tick_interval must be non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTuningConfig([]byte(tt.json))
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGettersFallBackOnBadValues(t *testing.T) {
	// Values that bypassed Validate (e.g. set in code) fall back to defaults.
	cfg := &TuningConfig{
		Mode:           ptrString("nope"),
		ClampShape:     ptrString("nope"),
		LeadLagMode:    ptrString("nope"),
		LookAheadFirst: ptrString("nope"),
	}
	if cfg.GetMode() != follow.ModeCritical {
		t.Errorf("GetMode() = %s", cfg.GetMode())
	}
	if cfg.GetClampShape() != follow.ClampBox {
		t.Errorf("GetClampShape() = %s", cfg.GetClampShape())
	}
	if cfg.GetLeadLagMode() != rig.LeadLagOff {
		t.Errorf("GetLeadLagMode() = %s", cfg.GetLeadLagMode())
	}
	if cfg.GetLookAheadFirst() != 0 {
		t.Errorf("GetLookAheadFirst() = %s", cfg.GetLookAheadFirst())
	}
}

func TestRigConfigRejectsUnderDampedRatio(t *testing.T) {
	// damping_ratio is validated on its own, but RigConfig re-validates the
	// assembled config as a whole.
	cfg := &TuningConfig{Mode: ptrString("under_damped"), DampingRatio: ptrFloat64(1)}
	_, err := cfg.RigConfig()
	if !errors.Is(err, follow.ErrInvalidDampingRatio) {
		t.Errorf("RigConfig() error = %v, want ErrInvalidDampingRatio", err)
	}
}

func TestPerAxisDampingRatio(t *testing.T) {
	cfg, err := ParseTuningConfig([]byte(`{"mode": "under_damped", "damping_ratio": 0.2, "damping_ratio_y": 0.7}`))
	if err != nil {
		t.Fatalf("ParseTuningConfig() error = %v", err)
	}
	want := r3.Vec{X: 0.2, Y: 0.7, Z: 0.2}
	if got := cfg.FollowConfig().DampingRatio; got != want {
		t.Errorf("DampingRatio = %+v, want %+v", got, want)
	}

	if got := EmptyTuningConfig().GetDampingRatio(); got != (r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}) {
		t.Errorf("GetDampingRatio() = %+v, want 0.5 on every axis", got)
	}
}
