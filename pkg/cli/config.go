// Package cli provides CLI-specific logic including configuration loading.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the .complyscore.yml configuration file.
type Config struct {
	Version string        `yaml:"version"`
	Scoring ScoringConfig `yaml:"scoring"`
	AI      AIConfig      `yaml:"ai"`
	Output  OutputConfig  `yaml:"output"`
}

// ScoringConfig tunes the aggregation engine.
type ScoringConfig struct {
	GapThreshold        float64         `yaml:"gap_threshold"`
	ConfidenceThreshold float64         `yaml:"confidence_threshold"`
	WeightTolerance     float64         `yaml:"weight_tolerance"`
	TierMultipliers     TierMultipliers `yaml:"tier_multipliers"`
	CategoryRules       string          `yaml:"category_rules"` // optional rules-file path
}

// TierMultipliers overrides the evidence tier discounts. Zero values fall
// back to the engine defaults.
type TierMultipliers struct {
	Tier0 float64 `yaml:"tier_0"`
	Tier1 float64 `yaml:"tier_1"`
	Tier2 float64 `yaml:"tier_2"`
}

// AIConfig holds configuration for LLM-backed answer extraction.
type AIConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Provider  string `yaml:"provider"`
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// OutputConfig controls report output settings.
type OutputConfig struct {
	Format  string `yaml:"format"`
	Verbose bool   `yaml:"verbose"`
}

// LoadConfig reads and parses a .complyscore.yml configuration file.
// If path is empty, it looks for .complyscore.yml in the current directory.
// If the default config file is not found, sensible defaults are returned.
// If an explicitly specified config file is not found, an error is returned.
func LoadConfig(path string) (*Config, error) {
	useDefault := path == ""
	if useDefault {
		path = ".complyscore.yml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && useDefault {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("cli: reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cli: parsing config %s: %w", path, err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// DefaultConfig returns a Config with sensible defaults matching the
// documented .complyscore.yml schema.
func DefaultConfig() *Config {
	cfg := &Config{Version: "1"}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Scoring.GapThreshold == 0 {
		cfg.Scoring.GapThreshold = 60
	}
	if cfg.Scoring.ConfidenceThreshold == 0 {
		cfg.Scoring.ConfidenceThreshold = 0.6
	}
	if cfg.Scoring.WeightTolerance == 0 {
		cfg.Scoring.WeightTolerance = 0.01
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "terminal"
	}
	if cfg.AI.APIKeyEnv == "" {
		cfg.AI.APIKeyEnv = "COMPLYSCORE_AI_API_KEY"
	}

	// Auto-enable AI extraction when API key is present in environment.
	if !cfg.AI.Enabled && os.Getenv(cfg.AI.APIKeyEnv) != "" {
		cfg.AI.Enabled = true
		slog.Info("AI answer extraction auto-enabled (API key detected)")
	}
}
