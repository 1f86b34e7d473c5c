// Package config provides configuration loading and access for the engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Mesh      MeshConfig      `yaml:"mesh"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Particles ParticlesConfig `yaml:"particles"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Field     FieldConfig     `yaml:"field"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds viewer display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// MeshConfig selects the procedural mesh the runner and viewer use.
type MeshConfig struct {
	Kind         string  `yaml:"kind"`         // icosphere, grid, twotri
	Subdivisions int     `yaml:"subdivisions"` // icosphere detail level
	Radius       float64 `yaml:"radius"`       // icosphere radius
	GridCells    int     `yaml:"grid_cells"`   // grid cells per side
	GridExtent   float64 `yaml:"grid_extent"`  // grid half-width
}

// PhysicsConfig holds the transport stepper parameters.
type PhysicsConfig struct {
	DT          float64 `yaml:"dt"`            // Seconds per step
	TimeScale   float64 `yaml:"time_scale"`    // Multiplier on dt
	Damping     float64 `yaml:"damping"`       // Per-step velocity damping in [0,1)
	MaxSpeed    float64 `yaml:"max_speed"`     // Velocity magnitude clamp
	MaxEdgeHops int     `yaml:"max_edge_hops"` // Edge crossings allowed per step
	Epsilon     float64 `yaml:"epsilon"`       // Barycentric tolerance
}

// ParticlesConfig holds particle pool parameters.
type ParticlesConfig struct {
	Count int `yaml:"count"` // Pool size, fixed at construction
}

// SpawnConfig holds lifecycle policy parameters.
type SpawnConfig struct {
	BoundaryPolicy string `yaml:"boundary_policy"` // respawn or clamp
	MaxAttempts    int    `yaml:"max_attempts"`    // Rejection-sampling budget against the spawn mask
}

// FieldConfig selects and parameterizes the force/velocity field.
type FieldConfig struct {
	Type      string          `yaml:"type"` // noise, gravity, attractor, buffer
	Mode      string          `yaml:"mode"` // force or velocity
	Noise     NoiseConfig     `yaml:"noise"`
	Gravity   GravityConfig   `yaml:"gravity"`
	Attractor AttractorConfig `yaml:"attractor"`
	Buffer    BufferConfig    `yaml:"buffer"`
}

// NoiseConfig holds fractal noise field parameters.
type NoiseConfig struct {
	Scale      float64 `yaml:"scale"`      // Base noise frequency
	Octaves    int     `yaml:"octaves"`    // FBM octaves (detail level)
	Lacunarity float64 `yaml:"lacunarity"` // Frequency multiplier per octave
	Gain       float64 `yaml:"gain"`       // Amplitude multiplier per octave
	TimeSpeed  float64 `yaml:"time_speed"` // Speed of noise animation (0 = static)
	Strength   float64 `yaml:"strength"`   // Output vector magnitude
}

// GravityConfig holds the constant world-space gravity vector.
type GravityConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// AttractorConfig holds attractor/repulsor field parameters.
type AttractorConfig struct {
	Count     int     `yaml:"count"`     // Sources placed by the runner
	Strength  float64 `yaml:"strength"`  // Base source strength
	Softening float64 `yaml:"softening"` // Added to r^2 to bound the pull near a source
}

// BufferConfig holds the exported per-face velocity field source.
type BufferConfig struct {
	Path string `yaml:"path"` // CSV file with face,vx,vy,vz columns
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds per stats window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	StepDT      float64 // Physics.DT * Physics.TimeScale
	WindowTicks int     // Telemetry.StatsWindow in ticks
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Physics.TimeScale == 0 {
		c.Physics.TimeScale = 1
	}
	if c.Physics.MaxEdgeHops == 0 {
		c.Physics.MaxEdgeHops = 4
	}
	c.Derived.StepDT = c.Physics.DT * c.Physics.TimeScale

	ticks := 1
	if c.Physics.DT > 0 {
		ticks = int(c.Telemetry.StatsWindow/c.Physics.DT + 0.5)
		if ticks < 1 {
			ticks = 1
		}
	}
	c.Derived.WindowTicks = ticks
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
