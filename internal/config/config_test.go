// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dacolabs/glueschema/internal/glue"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_LoadAndSave(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := Default()
	cfg.MapKeys = "value"
	cfg.Output = "out/columns.json"
	cfg.S3.Region = "eu-west-1"

	require.NoError(t, cfg.Save(cfgPath))

	loaded, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unsupported version", mutate: func(c *Config) { c.Version = 99 }, wantErr: "unsupported config version"},
		{name: "bad map keys", mutate: func(c *Config) { c.MapKeys = "int" }, wantErr: "map key style"},
		{name: "bad format", mutate: func(c *Config) { c.Format = "toml" }, wantErr: "unsupported output format"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "unsupported log level"},
		{name: "negative depth", mutate: func(c *Config) { c.MaxDepth = -1 }, wantErr: "max_depth"},
		{name: "negative concurrency", mutate: func(c *Config) { c.Concurrency = -2 }, wantErr: "concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_ConverterOptions(t *testing.T) {
	cfg := Default()
	cfg.MapKeys = "value"
	cfg.OverrideKey = "x-glue"

	opts, err := cfg.ConverterOptions()
	require.NoError(t, err)

	cols, err := glue.New(opts...).ConvertJSON([]byte(`{"properties":{
		"m":{"type":"object","additionalProperties":{"type":"integer"}},
		"o":{"type":"integer","x-glue":"bigint"}}}`))
	require.NoError(t, err)
	assert.Equal(t, []glue.Column{{Name: "m", Type: "map<int,int>"}, {Name: "o", Type: "bigint"}}, cols)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestResolve_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	res, err := Resolve("", nil)
	require.NoError(t, err)
	assert.Empty(t, res.File)
	assert.Equal(t, Default(), res.Config)
}

func TestResolve_Precedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(ConfigFileName, []byte(`version: 1
format: yaml
map_keys: value
concurrency: 2
s3:
  region: us-east-1
  endpoint: http://localhost:9000
`), 0o600))

	t.Setenv("GLUESCHEMA_CONCURRENCY", "8")
	t.Setenv("GLUESCHEMA_S3_REGION", "eu-central-1")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "json", "")
	flags.String("map-keys", "string", "")
	flags.String("output", "", "")
	require.NoError(t, flags.Parse([]string{"--format", "json"}))

	res, err := Resolve("", flags)
	require.NoError(t, err)

	assert.Equal(t, ConfigFileName, res.File)
	assert.Equal(t, "json", res.Format, "flag beats file")
	assert.Equal(t, "value", res.MapKeys, "unset flag keeps file value")
	assert.Equal(t, 8, res.Concurrency, "env beats file")
	assert.Equal(t, "eu-central-1", res.S3.Region)
	assert.Equal(t, "http://localhost:9000", res.S3.Endpoint)
	assert.Empty(t, res.Output)
}

func TestResolve_ExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\noverride_key: x-type\n"), 0o600))

	res, err := Resolve(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, res.File)
	assert.Equal(t, "x-type", res.OverrideKey)
}

func TestResolve_Errors(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Resolve(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nmap_keys: nope\n"), 0o600))
	_, err = Resolve(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
