// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package config handles glueschema project configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dacolabs/glueschema/internal/glue"
	"gopkg.in/yaml.v3"
)

// CurrentConfigVersion is the current version of the config file format.
const CurrentConfigVersion = 1

// ConfigFileName is the name of the project configuration file.
const ConfigFileName = "glueschema.yaml"

// Defaults applied before the config file, environment and flags.
const (
	DefaultFormat      = "json"
	DefaultLogLevel    = "info"
	DefaultConcurrency = 4
)

// Config represents the glueschema.yaml project configuration file.
type Config struct {
	Version     int      `yaml:"version" koanf:"version"`
	OverrideKey string   `yaml:"override_key,omitempty" koanf:"override_key"`
	MapKeys     string   `yaml:"map_keys,omitempty" koanf:"map_keys"`
	MaxDepth    int      `yaml:"max_depth,omitempty" koanf:"max_depth"`
	Format      string   `yaml:"format,omitempty" koanf:"format"`
	Output      string   `yaml:"output,omitempty" koanf:"output"`
	LogLevel    string   `yaml:"log_level,omitempty" koanf:"log_level"`
	Concurrency int      `yaml:"concurrency,omitempty" koanf:"concurrency"`
	S3          S3Config `yaml:"s3,omitempty" koanf:"s3"`
}

// S3Config configures the object storage sink used for s3:// outputs.
type S3Config struct {
	Region       string `yaml:"region,omitempty" koanf:"region"`
	Endpoint     string `yaml:"endpoint,omitempty" koanf:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style,omitempty" koanf:"use_path_style"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Version:     CurrentConfigVersion,
		OverrideKey: glue.DefaultOverrideKey,
		MapKeys:     string(glue.MapKeysString),
		MaxDepth:    glue.DefaultMaxDepth,
		Format:      DefaultFormat,
		LogLevel:    DefaultLogLevel,
		Concurrency: DefaultConcurrency,
	}
}

// Load reads a Config from a file path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the Config to a file path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(c)
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	if c.Version != CurrentConfigVersion {
		return errors.New("unsupported config version")
	}
	if _, err := glue.ParseMapKeys(c.MapKeys); err != nil {
		return err
	}
	switch c.Format {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q", c.Format)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	if c.MaxDepth < 0 {
		return errors.New("max_depth must not be negative")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must not be negative")
	}
	return nil
}

// ConverterOptions translates the configuration into converter options.
func (c *Config) ConverterOptions() ([]glue.Option, error) {
	mk, err := glue.ParseMapKeys(c.MapKeys)
	if err != nil {
		return nil, err
	}
	opts := []glue.Option{glue.WithMapKeys(mk)}
	if c.OverrideKey != "" {
		opts = append(opts, glue.WithOverrideKey(c.OverrideKey))
	}
	if c.MaxDepth > 0 {
		opts = append(opts, glue.WithMaxDepth(c.MaxDepth))
	}
	return opts, nil
}
