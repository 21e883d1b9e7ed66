// Command follow-sim drives follow rigs through scripted target motion and
// writes response plots, for tuning smooth times, clamps and lead/lag
// settings away from a game engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/damptrack/internal/config"
	"github.com/banshee-data/damptrack/internal/db"
	"github.com/banshee-data/damptrack/internal/follow"
	"github.com/banshee-data/damptrack/internal/monitoring"
	"github.com/banshee-data/damptrack/internal/plotting"
	"github.com/banshee-data/damptrack/internal/rig"
	"github.com/banshee-data/damptrack/internal/timeutil"
	"github.com/banshee-data/damptrack/internal/version"
	"github.com/samber/lo"
)

var (
	configPath   = flag.String("config", "", "Tuning JSON file (defaults to built-in defaults)")
	scenarioName = flag.String("scenario", "step", "Scenario: step, orbit, rail or wall")
	steps        = flag.Int("steps", 600, "Number of ticks to simulate")
	tickInterval = flag.Duration("dt", 0, "Nominal tick interval (0 uses tick_interval from the tuning)")
	jitter       = flag.Float64("jitter", 0, "Random tick jitter as a fraction of dt, in [0, 1)")
	seed         = flag.Uint64("seed", 1, "Jitter random seed")
	realtime     = flag.Bool("realtime", false, "Pace ticks against the wall clock")
	modes        = flag.String("modes", "", "Comma-separated tracker modes to compare (defaults to the tuning mode)")
	outDir       = flag.String("out", "", "Directory for PNG and HTML plots (none if empty)")
	dbPath       = flag.String("db", "", "SQLite preset database")
	presetName   = flag.String("preset", "", "Load tuning from this preset (requires -db)")
	savePreset   = flag.String("save-preset", "", "Save the active tuning under this preset name (requires -db)")
	debug        = flag.Bool("debug", false, "Log per-tick diagnostics")
	showVersion  = flag.Bool("version", false, "Print build information and exit")
)

// defaultLookAhead applies to obstruction scenarios when the tuning leaves
// look-ahead off.
const defaultLookAhead = 0.3

type options struct {
	configPath string
	scenario   string
	steps      int
	dt         time.Duration
	jitter     float64
	seed       uint64
	realtime   bool
	modes      []string
	outDir     string
	dbPath     string
	preset     string
	savePreset string
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println("follow-sim", version.String())
		return
	}
	monitoring.SetDebug(*debug)

	opts := options{
		configPath: *configPath,
		scenario:   *scenarioName,
		steps:      *steps,
		dt:         *tickInterval,
		jitter:     *jitter,
		seed:       *seed,
		realtime:   *realtime,
		modes:      splitList(*modes),
		outDir:     *outDir,
		dbPath:     *dbPath,
		preset:     *presetName,
		savePreset: *savePreset,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summaries, err := run(ctx, opts)
	if err != nil {
		log.Fatalf("follow-sim failed: %v", err)
	}
	for _, mode := range sortedKeys(summaries) {
		s := summaries[mode]
		fmt.Printf("%-28s samples=%d field=%d", mode, s.Samples, s.FieldTicks)
		for i, axis := range []string{"x", "y", "z"} {
			fmt.Printf("  %s: max|err|=%.4f mean=%.4f final=%.4f", axis, s.Axes[i].MaxAbsError, s.Axes[i].MeanError, s.Axes[i].FinalError)
		}
		fmt.Println()
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadTuning resolves the active tuning from a preset, a file or the
// defaults, and saves it as a preset when asked.
func loadTuning(opts options) (*config.TuningConfig, error) {
	var database *db.DB
	if opts.dbPath != "" {
		var err error
		database, err = db.NewDB(opts.dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open preset database: %w", err)
		}
		defer database.Close()
	}
	if database == nil && (opts.preset != "" || opts.savePreset != "") {
		return nil, errors.New("-preset and -save-preset require -db")
	}

	var tuning *config.TuningConfig
	switch {
	case opts.preset != "":
		preset, err := database.GetTuningPreset(opts.preset)
		if err != nil {
			return nil, err
		}
		if tuning, err = preset.Config(); err != nil {
			return nil, err
		}
		log.Printf("[Sim] loaded preset %q (%s)", preset.Name, preset.ID)
	case opts.configPath != "":
		var err error
		if tuning, err = config.LoadTuningConfig(opts.configPath); err != nil {
			return nil, err
		}
	default:
		tuning = config.DefaultTuningConfig()
	}

	if opts.savePreset != "" {
		notes := fmt.Sprintf("saved by follow-sim scenario=%s", opts.scenario)
		preset, err := database.SaveTuningPreset(opts.savePreset, tuning, notes)
		if err != nil {
			return nil, err
		}
		log.Printf("[Sim] saved preset %q (%s)", preset.Name, preset.ID)
	}
	return tuning, nil
}

// run simulates one rig per mode against the scenario target and returns
// the per-mode error summaries.
func run(ctx context.Context, opts options) (map[string]plotting.Summary, error) {
	if opts.steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", opts.steps)
	}
	if opts.jitter < 0 || opts.jitter >= 1 {
		return nil, fmt.Errorf("jitter must be in [0, 1), got %v", opts.jitter)
	}
	sc, err := newScenario(opts.scenario)
	if err != nil {
		return nil, err
	}
	tuning, err := loadTuning(opts)
	if err != nil {
		return nil, err
	}
	base, err := tuning.RigConfig()
	if err != nil {
		return nil, err
	}
	base.Obstruction = sc.Obstruction
	base.Field = sc.Field
	if sc.Obstruction != nil && base.LookAheadFirst == 0 {
		base.LookAheadFirst = defaultLookAhead
		log.Printf("[Sim] scenario %s: look-ahead enabled at %.2fs", sc.Name, defaultLookAhead)
	}

	modeNames := opts.modes
	if len(modeNames) == 0 {
		modeNames = []string{base.Follow.Mode.String()}
	}

	registry := rig.NewRegistry()
	ids := make(map[string]string, len(modeNames)) // rig ID -> mode name
	modeOf := make(map[string]follow.Mode, len(modeNames))
	recorders := make(map[string]*plotting.ResponseRecorder, len(modeNames))
	for _, name := range modeNames {
		mode, err := follow.ParseMode(name)
		if err != nil {
			return nil, err
		}
		cfg := base
		cfg.Follow.Mode = mode
		r, err := rig.New(cfg, sc.Spawn)
		if err != nil {
			return nil, fmt.Errorf("mode %s: %w", name, err)
		}
		id := registry.Add(r)
		ids[id] = name
		modeOf[id] = mode
		recorders[name] = plotting.NewResponseRecorder(fmt.Sprintf("%s / %s", sc.Name, name))
	}

	interval := opts.dt
	if interval <= 0 {
		interval = tuning.GetTickInterval()
	}
	var clock timeutil.Clock = timeutil.NewMockClock(time.Unix(0, 0))
	if opts.realtime {
		clock = timeutil.RealClock{}
	}
	frames := timeutil.NewFrameTimer(clock, 4*interval)
	progress := clock.NewTicker(time.Second)
	defer progress.Stop()
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed))

	frames.Start()
	for i := 0; i < opts.steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame := interval
		if opts.jitter > 0 {
			frame = time.Duration(float64(interval) * (1 + opts.jitter*(2*rng.Float64()-1)))
		}
		clock.Sleep(frame)
		dt := frames.Tick()
		end := frames.Elapsed().Seconds()

		targets := make(map[string]rig.Kinematics, len(ids))
		for id, mode := range modeOf {
			targets[id] = sc.Target(sampleTime(mode, end, dt))
		}
		positions, err := registry.StepAll(ctx, targets, dt)
		if err != nil {
			return nil, err
		}
		truth := sc.Target(end)
		for id, pos := range positions {
			var influence float64
			if rg, ok := registry.Get(id); ok {
				influence = rg.EffectorOutput().Influence
			}
			recorders[ids[id]].RecordWithInfluence(end, truth.Position, pos, influence)
		}

		select {
		case <-progress.C():
			log.Printf("[Sim] t=%.1fs frames=%d", end, frames.Frames())
		default:
		}
	}

	summaries := make(map[string]plotting.Summary, len(recorders))
	for name, rec := range recorders {
		summaries[name] = rec.Summary()
		if opts.outDir == "" {
			continue
		}
		if err := writePlots(rec, opts.outDir, sc.Name+"_"+name); err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

// sampleTime picks when to sample the target for a tick ending at end:
// anti-frame-lag modes expect the target already advanced to the end of the
// tick, the others expect it at the start.
func sampleTime(mode follow.Mode, end, dt float64) float64 {
	switch mode {
	case follow.ModeCriticalAntiFrameLag, follow.ModeCriticalStableClamp, follow.ModeUnderDampedAntiFrameLag:
		return end
	}
	return end - dt
}

func writePlots(rec *plotting.ResponseRecorder, dir, stem string) error {
	pngPath := filepath.Join(dir, stem+".png")
	if err := rec.WritePNG(pngPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", pngPath, err)
	}

	htmlPath := filepath.Join(dir, stem+".html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", htmlPath, err)
	}
	defer f.Close()
	if err := rec.WriteHTML(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}
	log.Printf("[Sim] wrote %s and %s", pngPath, htmlPath)
	return nil
}

func sortedKeys(m map[string]plotting.Summary) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
