package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/meshflow/config"
	"github.com/pthm-cable/meshflow/engine"
	"github.com/pthm-cable/meshflow/field"
	"github.com/pthm-cable/meshflow/mesh"
	"github.com/pthm-cable/meshflow/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	meshKind := flag.String("mesh", "", "Mesh kind override (icosphere, grid, twotri)")
	fieldType := flag.String("field", "", "Field type override (noise, gravity, attractor, buffer)")
	particles := flag.Int("particles", 0, "Particle count override")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *meshKind != "" {
		cfg.Mesh.Kind = *meshKind
	}
	if *fieldType != "" {
		cfg.Field.Type = *fieldType
	}
	if *particles > 0 {
		cfg.Particles.Count = *particles
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	m, err := buildMesh(cfg)
	if err != nil {
		slog.Error("failed to build mesh", "error", err)
		os.Exit(1)
	}

	sampler, mode, err := buildField(cfg, m, rngSeed)
	if err != nil {
		slog.Error("failed to build field", "error", err)
		os.Exit(1)
	}

	policy, err := engine.ParseBoundaryPolicy(cfg.Spawn.BoundaryPolicy)
	if err != nil {
		slog.Error("invalid boundary policy", "error", err)
		os.Exit(1)
	}

	eng, err := engine.New(m, sampler, engine.ParamsFromConfig(cfg), engine.Options{
		Mode:           mode,
		PoolSize:       cfg.Particles.Count,
		Seed:           rngSeed,
		BoundaryPolicy: policy,
		SpawnAttempts:  cfg.Spawn.MaxAttempts,
	})
	if err != nil {
		slog.Error("failed to build engine", "error", err)
		os.Exit(1)
	}
	defer eng.Close()

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	collector := telemetry.NewCollector(cfg.Derived.WindowTicks)

	slog.Info("starting simulation",
		"seed", rngSeed,
		"mesh", cfg.Mesh.Kind,
		"faces", m.NumFaces(),
		"field", cfg.Field.Type,
		"particles", cfg.Particles.Count,
		"max_ticks", *maxTicks,
	)

	var speeds []float64
	for {
		stats := eng.Step()
		speeds = eng.Speeds(speeds)
		collector.Record(stats.Respawns, stats.BoundaryHits, stats.SinkRespawns,
			stats.HopTruncated, float64(stats.Duration.Microseconds()), speeds)

		if ws, ok := collector.Flush(eng.Tick()); ok {
			slog.Info("window stats",
				"tick", ws.WindowEnd,
				"mean_speed", ws.MeanSpeed,
				"max_speed", ws.MaxSpeed,
				"respawns", ws.Respawns,
				"boundary_hits", ws.BoundaryHits,
				"hop_truncated", ws.HopTruncated,
				"step_micros", ws.StepMicros,
			)
			if err := out.WriteTelemetry(ws); err != nil {
				slog.Error("telemetry write failed", "error", err)
			}
		}

		if *maxTicks > 0 && int(eng.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", eng.Tick())
			return
		}
	}
}

// buildMesh constructs the configured procedural mesh.
func buildMesh(cfg *config.Config) (*mesh.Mesh, error) {
	switch cfg.Mesh.Kind {
	case "icosphere":
		return mesh.Icosphere(cfg.Mesh.Subdivisions, cfg.Mesh.Radius), nil
	case "grid":
		return mesh.Grid(cfg.Mesh.GridCells, cfg.Mesh.GridExtent), nil
	case "twotri":
		return mesh.TwoTriangles(), nil
	}
	return nil, fmt.Errorf("unknown mesh kind %q", cfg.Mesh.Kind)
}

// buildField constructs the configured field sampler.
func buildField(cfg *config.Config, m *mesh.Mesh, seed int64) (field.Sampler, field.Mode, error) {
	mode, err := field.ParseMode(cfg.Field.Mode)
	if err != nil {
		return nil, 0, err
	}

	switch cfg.Field.Type {
	case "noise":
		frames, err := mesh.BuildFrames(m)
		if err != nil {
			return nil, 0, err
		}
		return field.NewNoiseField(frames, cfg.Field.Noise, seed), mode, nil

	case "gravity":
		g := r3.Vec{X: cfg.Field.Gravity.X, Y: cfg.Field.Gravity.Y, Z: cfg.Field.Gravity.Z}
		// A prescribed constant velocity field is degenerate; gravity only
		// makes sense as a force.
		return field.NewGravityField(g), field.ModeForce, nil

	case "attractor":
		f := field.NewAttractorField(cfg.Field.Attractor.Softening)
		rng := rand.New(rand.NewSource(seed))
		for i := 0; i < cfg.Field.Attractor.Count; i++ {
			pos := m.Centroid(mesh.FaceID(rng.Intn(m.NumFaces())))
			strength := cfg.Field.Attractor.Strength
			if i%3 == 2 {
				strength = -strength // every third source repels
			}
			f.Add(pos, strength)
		}
		return f, field.ModeForce, nil

	case "buffer":
		if cfg.Field.Buffer.Path == "" {
			return nil, 0, fmt.Errorf("field type buffer requires field.buffer.path")
		}
		f, err := field.LoadBufferCSV(cfg.Field.Buffer.Path, m.NumFaces())
		if err != nil {
			return nil, 0, err
		}
		return f, mode, nil
	}
	return nil, 0, fmt.Errorf("unknown field type %q", cfg.Field.Type)
}
