// Package config provides configuration loading and management for slicestack3d.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"slicestack3d/internal/models"
	"slicestack3d/pkg/synthesis"
	"slicestack3d/pkg/visualization"
)

// ConfigRelPath is the location of the configuration file relative to the
// XDG config directories.
const ConfigRelPath = "slicestack3d/config.yaml"

// Configuration validation errors. Shape, radius and voxel-size errors are
// the ones the pipeline itself returns, so callers can match either.
var (
	// ErrInvalidShape is returned when a slice dimension or the slice count is not positive.
	ErrInvalidShape = synthesis.ErrInvalidShape

	// ErrInvalidRadius is returned when a radius is negative.
	ErrInvalidRadius = synthesis.ErrInvalidRadius

	// ErrInvalidVoxelSize is returned when a voxel dimension is not positive.
	ErrInvalidVoxelSize = models.ErrInvalidVoxelSize

	// ErrInvalidAlpha is returned when the render opacity is outside [0,1].
	ErrInvalidAlpha = errors.New("invalid alpha: must be within [0,1]")

	// ErrInvalidStride is returned when the HTML sampling stride is negative.
	ErrInvalidStride = errors.New("invalid html stride: must be non-negative")
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Synthesis parameters
	Synthesis struct {
		// Mode is "uniform" or "shrinking"
		Mode string `yaml:"mode"`

		// Height and Width are the dimensions of each slice in voxels
		Height int `yaml:"height"`
		Width  int `yaml:"width"`

		// Slices is the number of slices in the stack
		Slices int `yaml:"slices"`

		// Radius is the disk radius in uniform mode
		Radius float64 `yaml:"radius"`

		// MaxRadius is the first-slice radius in shrinking mode
		MaxRadius float64 `yaml:"maxRadius"`

		// Seed seeds the random background; 0 means a fresh seed per run
		Seed uint64 `yaml:"seed"`
	} `yaml:"synthesis"`

	// Voxel size used by the volume metric
	Voxel struct {
		DX float64 `yaml:"dx"`
		DY float64 `yaml:"dy"`
		DZ float64 `yaml:"dz"`
	} `yaml:"voxel"`

	// Output parameters
	Output struct {
		// PlotFile is where the stacked view is written; empty disables it
		PlotFile string `yaml:"plotFile"`

		// ProfileFile is where the per-slice profile chart is written
		ProfileFile string `yaml:"profileFile"`

		// HTMLFile is where the interactive 3D chart is written
		HTMLFile string `yaml:"htmlFile"`

		// SlicesDir receives one PNG per slice along each axis
		SlicesDir string `yaml:"slicesDir"`

		// SliceGap is the vertical spacing between slices in renderings
		SliceGap float64 `yaml:"sliceGap"`

		// Alpha is the opacity of present voxels in renderings; 0 picks the
		// mode default
		Alpha float64 `yaml:"alpha"`

		// HTMLStride keeps every n-th row and column in the interactive chart
		HTMLStride int `yaml:"htmlStride"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	p := synthesis.DefaultParams()

	cfg.Synthesis.Mode = string(p.Mode)
	cfg.Synthesis.Height = p.Height
	cfg.Synthesis.Width = p.Width
	cfg.Synthesis.Slices = p.NumSlices
	cfg.Synthesis.Radius = p.Radius
	cfg.Synthesis.MaxRadius = p.MaxRadius

	cfg.Voxel.DX = 1
	cfg.Voxel.DY = 1
	cfg.Voxel.DZ = 1

	cfg.Output.SliceGap = 1
	cfg.Output.HTMLStride = 1

	return cfg
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := synthesis.ParseMode(c.Synthesis.Mode); err != nil {
		return err
	}
	if c.Synthesis.Height <= 0 || c.Synthesis.Width <= 0 || c.Synthesis.Slices <= 0 {
		return fmt.Errorf("%w: got %dx%d with %d slices",
			ErrInvalidShape, c.Synthesis.Height, c.Synthesis.Width, c.Synthesis.Slices)
	}
	if c.Synthesis.Radius < 0 {
		return fmt.Errorf("%w: radius %v", ErrInvalidRadius, c.Synthesis.Radius)
	}
	if c.Synthesis.MaxRadius < 0 {
		return fmt.Errorf("%w: maxRadius %v", ErrInvalidRadius, c.Synthesis.MaxRadius)
	}
	if err := c.VoxelSize().Validate(); err != nil {
		return err
	}
	if c.Output.Alpha < 0 || c.Output.Alpha > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidAlpha, c.Output.Alpha)
	}
	if c.Output.HTMLStride < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidStride, c.Output.HTMLStride)
	}
	return nil
}

// VoxelSize converts the voxel section to models.VoxelSize.
func (c *Config) VoxelSize() models.VoxelSize {
	return models.VoxelSize{X: c.Voxel.DX, Y: c.Voxel.DY, Z: c.Voxel.DZ}
}

// RenderOptions returns the rendering defaults for mode with the configured
// overrides applied.
func (c *Config) RenderOptions(mode synthesis.Mode) visualization.Options {
	opts := visualization.ModeOptions(mode)
	if c.Output.SliceGap > 0 {
		opts.SliceGap = c.Output.SliceGap
	}
	if c.Output.Alpha > 0 {
		opts.Alpha = c.Output.Alpha
	}
	return opts
}

// SynthesisParams converts the synthesis section to synthesis.Params.
func (c *Config) SynthesisParams() (synthesis.Params, error) {
	mode, err := synthesis.ParseMode(c.Synthesis.Mode)
	if err != nil {
		return synthesis.Params{}, err
	}
	return synthesis.Params{
		Mode:      mode,
		Height:    c.Synthesis.Height,
		Width:     c.Synthesis.Width,
		NumSlices: c.Synthesis.Slices,
		Radius:    c.Synthesis.Radius,
		MaxRadius: c.Synthesis.MaxRadius,
		Seed:      c.Synthesis.Seed,
	}, nil
}

// FindConfigFile returns configPath when set, otherwise the first
// slicestack3d/config.yaml found in the XDG config directories. It returns
// an empty string when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	path, err := xdg.SearchConfigFile(ConfigRelPath)
	if err != nil {
		return ""
	}
	return path
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
