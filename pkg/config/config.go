package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/datapilot-io/datapilot/pkg/telemetry"
)

// Config carries process-level defaults.
type Config struct {
	// MemoryPath is the memory-store file location.
	MemoryPath string `yaml:"memory_path" validate:"required"`

	// OutputRoot is the default directory run outputs are created under.
	OutputRoot string `yaml:"output_root" validate:"required"`

	// Logging configures the process logger.
	Logging telemetry.LoggingConfig `yaml:"logging"`

	// Tracing configures optional run-stage tracing.
	Tracing telemetry.TracingConfig `yaml:"tracing"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		MemoryPath: "agent_memory.json",
		OutputRoot: "outputs",
		Logging:    telemetry.DefaultLoggingConfig(),
	}
}

// Load reads and validates a YAML config file, filling unset fields from
// the defaults. An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
