// Package config provides configuration loading and access for the
// simulation. Defaults are embedded; a user file merges over them.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dustlab/grit/fixed"
	"github.com/dustlab/grit/region"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters.
type Config struct {
	Layout     LayoutConfig     `yaml:"layout"`
	Grid       GridConfig       `yaml:"grid"`
	Population PopulationConfig `yaml:"population"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Step       StepConfig       `yaml:"step"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// LayoutConfig fixes the bit layouts of the fixed-point configurations.
type LayoutConfig struct {
	KeyBits    uint `yaml:"key_bits"`    // region key width per axis, zero fractional bits
	OffsetBits uint `yaml:"offset_bits"` // fine offset width per axis, all fractional bits
	Checked    bool `yaml:"checked"`     // overflow-checked arithmetic
}

// GridConfig holds the region grid dimensions. Both must be powers of two
// no larger than 2^key_bits so the key's natural wraparound and the grid
// wrap agree.
type GridConfig struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

// PopulationConfig holds the entity count.
type PopulationConfig struct {
	Count int `yaml:"count"`
}

// PhysicsConfig holds interaction parameters, in cell units.
type PhysicsConfig struct {
	Cutoff   float64 `yaml:"cutoff"`   // interaction cutoff; must be <= 1 cell
	Strength float64 `yaml:"strength"` // repulsion strength
	Damping  float64 `yaml:"damping"`  // per-step velocity damping, < 1
}

// StepConfig holds step execution parameters.
type StepConfig struct {
	Workers int `yaml:"workers"` // 0 = GOMAXPROCS
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	Window int `yaml:"window"` // steps per stats window
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	KeyLayout      fixed.Layout // unsigned, zero fractional bits
	OffsetLayout   fixed.Layout // unsigned, all fractional bits
	WorldLayout    fixed.Layout // key + offset packed
	VelocityLayout fixed.Layout // signed, world fractional count
	Damping        fixed.Value  // Physics.Damping in the velocity layout
}

// Load loads configuration from a YAML file, merging over the embedded
// defaults. An empty path uses only the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct: only fields present in the
		// file overwrite the defaults.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the loaded parameters and builds the fixed-point
// layouts they imply.
func (c *Config) computeDerived() error {
	keyL, err := fixed.NewLayout(c.Layout.KeyBits, 0, false)
	if err != nil {
		return fmt.Errorf("key layout: %w", err)
	}
	offL, err := fixed.NewLayout(c.Layout.OffsetBits, c.Layout.OffsetBits, false)
	if err != nil {
		return fmt.Errorf("offset layout: %w", err)
	}
	worldL, err := region.WorldLayout(keyL, offL)
	if err != nil {
		return fmt.Errorf("world layout: %w", err)
	}
	velL, err := fixed.NewLayout(worldL.Bits(), worldL.Frac(), true)
	if err != nil {
		return fmt.Errorf("velocity layout: %w", err)
	}

	if c.Grid.Cols < 1 || c.Grid.Rows < 1 {
		return fmt.Errorf("grid dimensions %dx%d out of range", c.Grid.Cols, c.Grid.Rows)
	}
	maxDim := 1 << c.Layout.KeyBits
	if c.Grid.Cols > maxDim || c.Grid.Rows > maxDim {
		return fmt.Errorf("grid dimensions %dx%d exceed %d-bit key range", c.Grid.Cols, c.Grid.Rows, c.Layout.KeyBits)
	}
	if c.Grid.Cols&(c.Grid.Cols-1) != 0 || c.Grid.Rows&(c.Grid.Rows-1) != 0 {
		return fmt.Errorf("grid dimensions %dx%d must be powers of two", c.Grid.Cols, c.Grid.Rows)
	}

	if c.Population.Count < 1 {
		return fmt.Errorf("population count %d out of range", c.Population.Count)
	}

	// The neighbor query visits only the entity's own region, so the
	// cutoff may not exceed one cell.
	if c.Physics.Cutoff <= 0 || c.Physics.Cutoff > 1 {
		return fmt.Errorf("cutoff %g outside (0, 1] cell units", c.Physics.Cutoff)
	}
	if c.Physics.Damping <= 0 || c.Physics.Damping >= 1 {
		return fmt.Errorf("damping %g must lie strictly inside (0, 1)", c.Physics.Damping)
	}

	damping, err := fixed.FromFloat(velL, c.Physics.Damping)
	if err != nil {
		return fmt.Errorf("damping: %w", err)
	}

	c.Derived = DerivedConfig{
		KeyLayout:      keyL,
		OffsetLayout:   offL,
		WorldLayout:    worldL,
		VelocityLayout: velL,
		Damping:        damping,
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file, for reproducing runs.
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
