// Package config provides configuration loading for spikewalk.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"spikewalk/internal/agent"
	"spikewalk/internal/nn"
	"spikewalk/internal/scape"
	"spikewalk/internal/storage"
)

// Config contains all spikewalk configuration settings.
type Config struct {
	// Network is the shape of each controller network.
	Network NetworkConfig `json:"network" yaml:"network"`

	// Episode controls episode length, scoring and actuation.
	Episode EpisodeConfig `json:"episode" yaml:"episode"`

	// Robot describes the simulated walker.
	Robot scape.WalkerLiteConfig `json:"robot" yaml:"robot"`

	// Storage selects where evaluations are recorded.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Evaluation controls batch concurrency and weight sampling.
	Evaluation EvaluationConfig `json:"evaluation" yaml:"evaluation"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// NetworkConfig sizes one spiking network. A controller holds Networks
// copies, one per actuator group.
type NetworkConfig struct {
	Input    int `json:"input" yaml:"input"`
	Hidden   int `json:"hidden" yaml:"hidden"`
	Output   int `json:"output" yaml:"output"`
	Networks int `json:"networks" yaml:"networks"`
}

func (c NetworkConfig) Layout() nn.Layout {
	return nn.Layout{Input: c.Input, Hidden: c.Hidden, Output: c.Output}
}

// GenomeLength is the flat weight count a controller with this shape accepts.
func (c NetworkConfig) GenomeLength() int {
	return c.Networks * c.Layout().Len()
}

type EpisodeConfig struct {
	Ticks         int             `json:"ticks" yaml:"ticks"`
	FitnessOffset float64         `json:"fitness_offset" yaml:"fitness_offset"`
	Actuation     agent.Actuation `json:"actuation" yaml:"actuation"`
}

type StorageConfig struct {
	// Kind is "memory" (default) or "sqlite".
	Kind string `json:"kind" yaml:"kind"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

type EvaluationConfig struct {
	// Workers bounds concurrent episodes in a batch.
	Workers int `json:"workers" yaml:"workers"`
	// Seed drives random weight initialisation and probe inputs.
	Seed int64 `json:"seed" yaml:"seed"`
}

type LoggingConfig struct {
	// Level sets the log verbosity: "warn", "info" (default), "debug", or
	// "trace". "trace" logs every episode tick.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			Input:    2,
			Hidden:   2,
			Output:   1,
			Networks: 4,
		},
		Episode: EpisodeConfig{
			Ticks:         scape.DefaultEpisodeTicks,
			FitnessOffset: scape.DefaultFitnessOffset,
			Actuation:     agent.DefaultActuation(),
		},
		Robot: scape.DefaultWalkerLiteConfig(),
		Storage: StorageConfig{
			Kind: storage.KindMemory,
			Path: "spikewalk.db",
		},
		Evaluation: EvaluationConfig{
			Workers: 4,
			Seed:    1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from path, or from ~/.spikewalk/config.yaml when
// path is empty, and then applies environment variables.
// Order: defaults -> config file -> environment variables
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(homeDir, ".spikewalk", "config.yaml")
			if _, statErr := os.Stat(candidate); statErr == nil {
				path = candidate
			}
		}
	}
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Network.Layout().Validate(); err != nil {
		return err
	}
	if c.Network.Networks <= 0 {
		return fmt.Errorf("networks must be > 0, got %d", c.Network.Networks)
	}
	if c.Network.Networks*c.Network.Output != c.Robot.Voxels {
		return fmt.Errorf("controller outputs (%d networks x %d) must match robot voxels (%d)",
			c.Network.Networks, c.Network.Output, c.Robot.Voxels)
	}
	if c.Episode.Ticks <= 0 {
		return fmt.Errorf("ticks must be > 0, got %d", c.Episode.Ticks)
	}
	if err := c.Episode.Actuation.Validate(); err != nil {
		return err
	}
	if err := c.Robot.Validate(); err != nil {
		return fmt.Errorf("robot: %w", err)
	}

	if c.Storage.Kind != "" && !slices.Contains(storage.Kinds(), c.Storage.Kind) {
		return fmt.Errorf("invalid storage kind: %s (valid: %s)", c.Storage.Kind, strings.Join(storage.Kinds(), ", "))
	}
	if c.Storage.Kind == storage.KindSQLite && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for sqlite")
	}

	if c.Evaluation.Workers <= 0 {
		return fmt.Errorf("workers must be > 0, got %d", c.Evaluation.Workers)
	}

	validLevels := map[string]bool{"": true, "warn": true, "info": true, "debug": true, "trace": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}
	return nil
}

// applyEnvOverrides applies SPIKEWALK_* environment variables to the config.
func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("SPIKEWALK_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("SPIKEWALK_STORE"); v != "" {
		config.Storage.Kind = v
	}
	if v := os.Getenv("SPIKEWALK_DB_PATH"); v != "" {
		config.Storage.Path = v
	}
	if v := os.Getenv("SPIKEWALK_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SPIKEWALK_WORKERS: %w", err)
		}
		config.Evaluation.Workers = n
	}
	if v := os.Getenv("SPIKEWALK_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SPIKEWALK_SEED: %w", err)
		}
		config.Evaluation.Seed = n
	}
	if v := os.Getenv("SPIKEWALK_TICKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SPIKEWALK_TICKS: %w", err)
		}
		config.Episode.Ticks = n
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
