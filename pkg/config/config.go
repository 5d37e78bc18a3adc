// Package config provides configuration loading and management for jfproc.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"jfproc/pkg/handler"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Detector identity
	Detector struct {
		// Name is the detector name in the form JF<id>T<nmod>V<version>
		Name string `yaml:"name"`
	} `yaml:"detector"`

	// Processing parameters
	Processing struct {
		// Conversion applies pedestal subtraction and gain scaling
		Conversion bool `yaml:"conversion"`

		// Mask zeroes pixels excluded by the bad-pixel mask
		Mask bool `yaml:"mask"`

		// MaskDoublePixels additionally masks chip-edge pixels
		MaskDoublePixels bool `yaml:"maskDoublePixels"`

		// GapPixels inserts blank gap rows/columns between chips and modules
		GapPixels bool `yaml:"gapPixels"`

		// Geometry places modules at their physical positions
		Geometry bool `yaml:"geometry"`

		// Highgain selects the detector-wide highgain calibration regime
		Highgain bool `yaml:"highgain"`

		// Parallel processes the frames of a stack concurrently
		Parallel bool `yaml:"parallel"`

		// Workers caps the number of goroutines used when Parallel is set
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Pedestal estimation parameters
	Pedestal struct {
		// SigmaThreshold masks pixels whose ADC spread exceeds this value
		SigmaThreshold float64 `yaml:"sigmaThreshold"`
	} `yaml:"pedestal"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// PreviewWidth is the pixel width of downscaled preview images
		PreviewWidth int `yaml:"previewWidth"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Detector.Name = "JF07T32V01"

	// Set default processing parameters
	cfg.Processing.Conversion = true
	cfg.Processing.Mask = true
	cfg.Processing.MaskDoublePixels = false
	cfg.Processing.GapPixels = true
	cfg.Processing.Geometry = true
	cfg.Processing.Highgain = false
	cfg.Processing.Parallel = true
	cfg.Processing.Workers = runtime.NumCPU()

	// Set default pedestal parameters
	cfg.Pedestal.SigmaThreshold = 100.0

	// Set default output parameters
	cfg.Output.Verbose = true
	cfg.Output.PreviewWidth = 1024

	return cfg
}

// Options maps the processing section onto handler options
func (c *Config) Options() handler.Options {
	return handler.Options{
		Conversion:       c.Processing.Conversion,
		Mask:             c.Processing.Mask,
		MaskDoublePixels: c.Processing.MaskDoublePixels,
		GapPixels:        c.Processing.GapPixels,
		Geometry:         c.Processing.Geometry,
		Highgain:         c.Processing.Highgain,
		Parallel:         c.Processing.Parallel,
		Workers:          c.Processing.Workers,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

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
