package config

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/banshee-data/splat2mc/internal/datapack"
	"github.com/banshee-data/splat2mc/internal/splat"
)

// DefaultConfigPath is the path to the canonical conversion defaults file.
const DefaultConfigPath = "config/convert.defaults.json"

// Defaults that are not owned by the splat package.
const (
	DefaultPackFormat = datapack.DefaultPackFormat
	DefaultWorkers    = 4
)

// ConvertConfig holds the conversion tunables. Every field is optional;
// the Get* methods fall back to the built-in defaults, so a partial file
// only overrides what it names.
type ConvertConfig struct {
	// Pipeline params
	MaxParticles   *int     `json:"max_particles,omitempty"`
	TargetSize     *float64 `json:"target_size,omitempty"` // blocks spanned by the largest axis
	MinOpacity     *float64 `json:"min_opacity,omitempty"`
	CoordinateMode *string  `json:"coordinate_mode,omitempty"` // "relative" or "absolute"
	Center         *bool    `json:"center,omitempty"`
	Selection      *string  `json:"selection,omitempty"` // "opacity" or "random"
	Seed           *int64   `json:"seed,omitempty"`      // only used by random selection

	// Output params
	PackFormat *int  `json:"pack_format,omitempty"`
	Preview    *bool `json:"preview,omitempty"`

	// Batch params
	Workers *int `json:"workers,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// DefaultConvertConfig returns a config with every field set to its default.
func DefaultConvertConfig() *ConvertConfig {
	return &ConvertConfig{
		MaxParticles:   ptrInt(splat.DefaultMaxParticles),
		TargetSize:     ptrFloat64(splat.DefaultTargetSize),
		MinOpacity:     ptrFloat64(splat.DefaultMinOpacity),
		CoordinateMode: ptrString(splat.CoordsRelative.String()),
		Center:         ptrBool(true),
		Selection:      ptrString(splat.PolicyByOpacity.String()),
		PackFormat:     ptrInt(DefaultPackFormat),
		Preview:        ptrBool(false),
		Workers:        ptrInt(DefaultWorkers),
	}
}

// LoadConvertConfig loads a ConvertConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadConvertConfig(path string) (*ConvertConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

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

	cfg := &ConvertConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended
// for test setup.
func MustLoadDefaultConfig() *ConvertConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/splat2mc/
	}
	for _, path := range candidates {
		if cfg, err := LoadConvertConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *ConvertConfig) Validate() error {
	if c.CoordinateMode != nil {
		if _, err := splat.ParseCoordMode(*c.CoordinateMode); err != nil {
			return fmt.Errorf("coordinate_mode: %w", err)
		}
	}
	if c.Selection != nil {
		if _, err := splat.ParsePolicy(*c.Selection); err != nil {
			return fmt.Errorf("selection: %w", err)
		}
	}
	if c.PackFormat != nil && *c.PackFormat <= 0 {
		return fmt.Errorf("pack_format must be positive, got %d", *c.PackFormat)
	}
	if c.Workers != nil && *c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", *c.Workers)
	}
	// The numeric pipeline bounds live with the pipeline.
	opts, err := c.Options()
	if err != nil {
		return err
	}
	return opts.Validate()
}

// Options converts the config into pipeline options. A configured seed
// yields a deterministic generator for random selection.
func (c *ConvertConfig) Options() (splat.Options, error) {
	coords, err := splat.ParseCoordMode(c.GetCoordinateMode())
	if err != nil {
		return splat.Options{}, err
	}
	policy, err := splat.ParsePolicy(c.GetSelection())
	if err != nil {
		return splat.Options{}, err
	}
	opts := splat.Options{
		MaxParticles: c.GetMaxParticles(),
		TargetSize:   c.GetTargetSize(),
		MinOpacity:   c.GetMinOpacity(),
		Coords:       coords,
		Center:       c.GetCenter(),
		Policy:       policy,
	}
	if c.Seed != nil {
		opts.Rand = rand.New(rand.NewSource(*c.Seed))
	}
	return opts, nil
}

// GetMaxParticles returns the max_particles value or the default.
func (c *ConvertConfig) GetMaxParticles() int {
	if c.MaxParticles == nil {
		return splat.DefaultMaxParticles
	}
	return *c.MaxParticles
}

// GetTargetSize returns the target_size value or the default.
func (c *ConvertConfig) GetTargetSize() float64 {
	if c.TargetSize == nil {
		return splat.DefaultTargetSize
	}
	return *c.TargetSize
}

// GetMinOpacity returns the min_opacity value or the default.
func (c *ConvertConfig) GetMinOpacity() float64 {
	if c.MinOpacity == nil {
		return splat.DefaultMinOpacity
	}
	return *c.MinOpacity
}

// GetCoordinateMode returns the coordinate_mode value or the default.
func (c *ConvertConfig) GetCoordinateMode() string {
	if c.CoordinateMode == nil {
		return splat.CoordsRelative.String()
	}
	return *c.CoordinateMode
}

// GetCenter returns the center value or the default.
func (c *ConvertConfig) GetCenter() bool {
	if c.Center == nil {
		return true
	}
	return *c.Center
}

// GetSelection returns the selection value or the default.
func (c *ConvertConfig) GetSelection() string {
	if c.Selection == nil {
		return splat.PolicyByOpacity.String()
	}
	return *c.Selection
}

// GetPackFormat returns the pack_format value or the default.
func (c *ConvertConfig) GetPackFormat() int {
	if c.PackFormat == nil {
		return DefaultPackFormat
	}
	return *c.PackFormat
}

// GetPreview returns the preview value or the default.
func (c *ConvertConfig) GetPreview() bool {
	if c.Preview == nil {
		return false
	}
	return *c.Preview
}

// GetWorkers returns the workers value or the default.
func (c *ConvertConfig) GetWorkers() int {
	if c.Workers == nil {
		return DefaultWorkers
	}
	return *c.Workers
}
