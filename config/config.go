// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Agents    AgentsConfig    `yaml:"agents"`
	Landscape LandscapeConfig `yaml:"landscape"`
	Conflict  ConflictConfig  `yaml:"conflict"`
	Mutation  MutationConfig  `yaml:"mutation"`
	Run       RunConfig       `yaml:"run"`
	Output    OutputConfig    `yaml:"output"`
}

// AgentsConfig holds population and behavioral parameters.
type AgentsConfig struct {
	N              int     `yaml:"n"`               // population size
	Ann            string  `yaml:"ann"`             // network topology selector
	HandlingTime   int     `yaml:"handling_time"`   // timesteps to consume a picked item
	SproutRadius   int     `yaml:"sprout_radius"`   // offspring placement radius (cells)
	FleeRadius     int     `yaml:"flee_radius"`     // relocation radius after a lost fight
	CmplxPenalty   float64 `yaml:"cmplx_penalty"`   // fitness penalty per active weight
	InitArchive    string  `yaml:"init_archive"`    // optional prior-run archive for warm start
	InitGeneration int     `yaml:"init_generation"` // generation to restore (-1 = last)
}

// LandscapeConfig holds spatial substrate parameters.
type LandscapeConfig struct {
	Size          int         `yaml:"size"`           // grid side when no capacity image is given
	CapacityImage string      `yaml:"capacity_image"` // optional PNG/JPEG for the capacity layer
	ImageChannel  string      `yaml:"image_channel"`  // r|g|b|a|luma
	MaxItemCap    float64     `yaml:"max_item_cap"`   // item ceiling = floor(capacity * this)
	ItemGrowth    float64     `yaml:"item_growth"`    // per-cell Bernoulli growth probability
	DetectionRate float64     `yaml:"detection_rate"` // per-item detection probability
	KernelRadius  int         `yaml:"kernel_radius"`  // occupancy smoothing radius (1 = 3x3)
	Noise         NoiseConfig `yaml:"noise"`
}

// NoiseConfig holds procedural capacity generation parameters.
type NoiseConfig struct {
	Scale      float64 `yaml:"scale"`      // base noise frequency
	Octaves    int     `yaml:"octaves"`    // FBM octaves
	Lacunarity float64 `yaml:"lacunarity"` // frequency multiplier per octave
	Gain       float64 `yaml:"gain"`       // amplitude multiplier per octave
	Contrast   float64 `yaml:"contrast"`   // exponent shaping (higher = sparser patches)
}

// ConflictConfig holds fight resolution probabilities.
// Both default to certainty; kept configurable rather than hard-coded.
type ConflictConfig struct {
	ProbFight        float64 `yaml:"prob_fight"`
	ProbAttackerWins float64 `yaml:"prob_attacker_wins"`
}

// MutationConfig holds network mutation parameters.
type MutationConfig struct {
	Rate      float64 `yaml:"rate"`       // per-weight perturbation probability
	Sigma     float64 `yaml:"sigma"`      // perturbation stddev
	BigRate   float64 `yaml:"big_rate"`   // probability a perturbation is large
	BigSigma  float64 `yaml:"big_sigma"`  // stddev of large perturbations
	PruneRate float64 `yaml:"prune_rate"` // structural: zero a weight (skipped in fixed mode)
}

// RunConfig holds generation scheduling parameters.
type RunConfig struct {
	Burnin           int `yaml:"burnin"`            // burn-in generations (not recorded)
	Generations      int `yaml:"generations"`       // main generations
	Timesteps        int `yaml:"timesteps"`         // timesteps per normal generation
	TimestepsFixed   int `yaml:"timesteps_fixed"`   // timesteps per fixed generation
	FixedGenerations int `yaml:"fixed_generations"` // trailing generations run fixed-topology
}

// OutputConfig holds experiment output parameters.
type OutputConfig struct {
	Dir string `yaml:"dir"` // CSV logs, config snapshot, archive (empty = disabled)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks parameter ranges that would otherwise surface as
// confusing failures deep inside a run.
func (c *Config) Validate() error {
	if c.Agents.N < 1 {
		return fmt.Errorf("config: agents.n must be >= 1, got %d", c.Agents.N)
	}
	if c.Agents.HandlingTime < 1 {
		return fmt.Errorf("config: agents.handling_time must be >= 1, got %d", c.Agents.HandlingTime)
	}
	if c.Agents.SproutRadius < 0 || c.Agents.FleeRadius < 0 {
		return fmt.Errorf("config: sprout_radius and flee_radius must be >= 0")
	}
	if c.Landscape.KernelRadius < 0 {
		return fmt.Errorf("config: landscape.kernel_radius must be >= 0, got %d", c.Landscape.KernelRadius)
	}
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"landscape.item_growth", c.Landscape.ItemGrowth},
		{"landscape.detection_rate", c.Landscape.DetectionRate},
		{"conflict.prob_fight", c.Conflict.ProbFight},
		{"conflict.prob_attacker_wins", c.Conflict.ProbAttackerWins},
	} {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("config: %s must be in [0,1], got %v", p.name, p.v)
		}
	}
	if c.Run.Generations < 1 {
		return fmt.Errorf("config: run.generations must be >= 1, got %d", c.Run.Generations)
	}
	if c.Run.Timesteps < 1 || c.Run.TimestepsFixed < 1 {
		return fmt.Errorf("config: run.timesteps and run.timesteps_fixed must be >= 1")
	}
	if c.Run.FixedGenerations < 0 || c.Run.FixedGenerations > c.Run.Generations {
		return fmt.Errorf("config: run.fixed_generations must be in [0, run.generations]")
	}
	return nil
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
