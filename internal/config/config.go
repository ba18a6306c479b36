// Package config loads and validates schedsim configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/internal/simulator"
	"github.com/me/schedsim/internal/tasksource"
	"github.com/me/schedsim/pkg/model"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface. Every section has a default,
// so a config file only needs the keys it changes.
type Config struct {
	Simulation simulator.Config  `yaml:"simulation"`
	Tasks      tasksource.Config `yaml:"tasks"`
	Logging    LoggingConfig     `yaml:"logging"`
	Store      StoreConfig       `yaml:"store"`
	Server     ServerConfig      `yaml:"server"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// StoreConfig locates the run history database.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite path; empty disables archiving, ":memory:" for testing
}

// ServerConfig holds configuration for the HTTP observer.
type ServerConfig struct {
	Addr string `yaml:"addr"` // Listen address (default ":8080")
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Simulation: simulator.DefaultConfig(),
		Tasks:      tasksource.DefaultConfig(),
		Logging:    LoggingConfig{Level: "info", Format: "text"},
		Server:     ServerConfig{Addr: ":8080"},
	}
}

// Load overlays the YAML file at path onto the defaults. Unknown keys are an
// error. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode strictly unmarshals YAML into cfg, keeping fields the document
// does not mention.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every section and returns a single *model.ConfigError
// listing all problems.
func (c Config) Validate() error {
	var details []model.FieldError
	for _, err := range []error{c.Simulation.Validate(), c.Tasks.Validate()} {
		var cfgErr *model.ConfigError
		if errors.As(err, &cfgErr) {
			details = append(details, cfgErr.Details...)
		} else if err != nil {
			return err
		}
	}
	if !logging.ValidLevel(c.Logging.Level) {
		details = append(details, model.FieldError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)})
	}
	if !logging.ValidFormat(c.Logging.Format) {
		details = append(details, model.FieldError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)})
	}
	if err := model.NewConfigError(details...); err != nil {
		return err
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
