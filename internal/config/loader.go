// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "GLUESCHEMA_"

// Resolved is a configuration merged from all sources.
type Resolved struct {
	*Config

	// File is the config file that was read, empty when none was found.
	File string
}

// findConfigFile returns the explicit path when set, else the project file
// in the working directory if present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	return ""
}

// Resolve merges configuration from defaults, the config file, GLUESCHEMA_*
// environment variables and explicitly set flags, in increasing precedence.
func Resolve(cfgFile string, flags *pflag.FlagSet) (*Resolved, error) {
	k := koanf.New(".")

	def := Default()
	if err := k.Load(confmap.Provider(map[string]any{
		"version":      def.Version,
		"override_key": def.OverrideKey,
		"map_keys":     def.MapKeys,
		"max_depth":    def.MaxDepth,
		"format":       def.Format,
		"log_level":    def.LogLevel,
		"concurrency":  def.Concurrency,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// GLUESCHEMA_MAP_KEYS -> map_keys, GLUESCHEMA_S3_REGION -> s3.region
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return configKey(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Resolved{Config: &cfg, File: used}, nil
}

// flagKeys maps the flags that may override configuration to their keys.
var flagKeys = map[string]string{
	"override-key":      "override_key",
	"map-keys":          "map_keys",
	"max-depth":         "max_depth",
	"format":            "format",
	"output":            "output",
	"log-level":         "log_level",
	"concurrency":       "concurrency",
	"s3-region":         "s3.region",
	"s3-endpoint":       "s3.endpoint",
	"s3-use-path-style": "s3.use_path_style",
}

func configKey(s string) string {
	if rest, ok := strings.CutPrefix(s, "s3_"); ok {
		return "s3." + rest
	}
	return s
}
