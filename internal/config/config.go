package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Output   Output   `yaml:"output"`
	Baseline Baseline `yaml:"baseline"`
	Spike    Spike    `yaml:"spike"`
	Pipeline Pipeline `yaml:"pipeline"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Baseline struct {
	Method     string `yaml:"method"`      // "robust" or "standard"
	WindowDays int    `yaml:"window_days"` // rolling window length
	MinPeriods int    `yaml:"min_periods"` // observations required before the baseline is trusted
}

type Spike struct {
	ZThreshold    float64 `yaml:"z_threshold"`
	Mode          string  `yaml:"mode"` // "one_sided" or "two_sided"
	EvidenceCount int     `yaml:"evidence_count"`
}

type Pipeline struct {
	Version string `yaml:"version"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for georisk.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "georisk")
}

// DataDir returns the XDG data directory for georisk.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "georisk")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/georisk/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'georisk init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults. Unrecognized
// baseline methods and spike modes fall back to their defaults rather than
// failing, so a typo in the config never blocks a scheduled run.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Baseline: Baseline{
			Method:     "robust",
			WindowDays: 14,
			MinPeriods: 7,
		},
		Spike: Spike{
			ZThreshold:    2.0,
			Mode:          "one_sided",
			EvidenceCount: 5,
		},
		Pipeline: Pipeline{Version: "v2.0"},
		Server:   Server{Port: 8000},
		Logging:  Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Baseline.Method != "robust" && cfg.Baseline.Method != "standard" {
		cfg.Baseline.Method = "robust"
	}
	if cfg.Spike.Mode != "one_sided" && cfg.Spike.Mode != "two_sided" {
		cfg.Spike.Mode = "one_sided"
	}
	if cfg.Baseline.WindowDays <= 0 {
		cfg.Baseline.WindowDays = 14
	}
	if cfg.Baseline.MinPeriods <= 0 {
		cfg.Baseline.MinPeriods = 7
	}
	if cfg.Spike.EvidenceCount <= 0 {
		cfg.Spike.EvidenceCount = 5
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
