package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the rgwatch configuration file.
type Config struct {
	// Path of the resource group list document to poll.
	Source string `yaml:"source"`

	// Path of the snappy-compressed cache file.
	// Optional.
	Cache string `yaml:"cache"`

	// Poll period in seconds until the document specifies one.
	// Optional.
	Freq int `yaml:"freq"`

	// One of debug, info, warn or error.
	// Defaults to info.
	LogLevel string `yaml:"log_level"`
}

// LoadConfig reads and validates the YAML configuration at path.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// validate reports every problem with c at once.
func (c Config) validate() error {
	var errs error

	if c.Source == "" {
		errs = errors.Join(errs, errors.New("source must not be empty"))
	}

	if c.Freq < 0 {
		errs = errors.Join(errs, fmt.Errorf("freq must not be negative (got %d)", c.Freq))
	}

	if _, err := c.level(); err != nil {
		errs = errors.Join(errs, err)
	}

	return errs
}

func (c Config) level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
