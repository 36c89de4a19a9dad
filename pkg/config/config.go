// Package config provides configuration loading and management for ctcontour.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ctcontour/pkg/ablation"
	"ctcontour/pkg/contour"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Dataset parameters
	Dataset struct {
		// Root is the label dataset directory. Empty means resolve via the
		// environment or the home-directory convention.
		Root string `yaml:"root"`

		// LabelThreshold binarizes slices: voxels with label >= threshold
		// are foreground. 1 merges tumor into liver for LiTS masks.
		LabelThreshold uint8 `yaml:"labelThreshold"`

		// MaxVolumes limits how many volumes are loaded; 0 loads all.
		MaxVolumes int `yaml:"maxVolumes"`
	} `yaml:"dataset"`

	// Ablation parameters
	Ablation struct {
		// Mode selects sequential or concurrent execution
		Mode string `yaml:"mode"`

		// Reference names the variant used as the correctness oracle
		Reference string `yaml:"reference"`

		// Variants lists the extractor variants to run
		Variants []string `yaml:"variants"`
	} `yaml:"ablation"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// SaveOverlays enables writing contour overlay images per slice
		SaveOverlays bool `yaml:"saveOverlays"`

		// OverlayDir is the directory for overlay images
		OverlayDir string `yaml:"overlayDir"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Dataset.LabelThreshold = 1
	cfg.Dataset.MaxVolumes = 0

	cfg.Ablation.Mode = string(ablation.Concurrent)
	cfg.Ablation.Reference = contour.DenseScanName
	cfg.Ablation.Variants = []string{
		contour.DenseScanName,
		contour.MulberryName,
		contour.RasterName,
	}

	cfg.Output.Verbose = true
	cfg.Output.SaveOverlays = false
	cfg.Output.OverlayDir = "contour_overlays"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for the errors that must stop the batch
// before any run is launched.
func (cfg *Config) Validate() error {
	if len(cfg.Ablation.Variants) == 0 {
		return fmt.Errorf("no variants configured")
	}
	switch ablation.Mode(cfg.Ablation.Mode) {
	case ablation.Sequential, ablation.Concurrent:
	default:
		return fmt.Errorf("unknown execution mode %q", cfg.Ablation.Mode)
	}

	found := false
	for _, v := range cfg.Ablation.Variants {
		if v == cfg.Ablation.Reference {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("reference variant %q is not in the variant list", cfg.Ablation.Reference)
	}

	if cfg.Output.SaveOverlays && cfg.Output.OverlayDir == "" {
		return fmt.Errorf("overlay output enabled without an overlay directory")
	}

	return nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
