// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dacolabs/glueschema/internal/config"
	"github.com/dacolabs/glueschema/internal/glue"
	"github.com/dacolabs/glueschema/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const userSchema = `{
  "title": "User",
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer"},
    "email": {"anyOf": [{"type": "string"}, {"type": "null"}], "default": null},
    "address": {"$ref": "#/$defs/Address"},
    "scores": {"type": "object", "additionalProperties": {"type": "number"}},
    "joined": {"type": "string", "format": "date-time"}
  },
  "$defs": {
    "Address": {"type": "object", "properties": {"street": {"type": "string"}, "zip": {"type": "string"}}}
  }
}`

var userColumns = []output.Column{
	{Name: "name", Type: "string"},
	{Name: "age", Type: "int"},
	{Name: "email", Type: "string"},
	{Name: "address", Type: "struct<street:string,zip:string>"},
	{Name: "scores", Type: "map<string,float>"},
	{Name: "joined", Type: "timestamp"},
}

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type memS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

// testEnv runs commands in a fresh working directory.
type testEnv struct {
	t   *testing.T
	dir string
	s3  *memS3
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	require.NoError(t, os.Chdir(dir))
	return &testEnv{t: t, dir: dir, s3: &memS3{objects: map[string][]byte{}}}
}

func (e *testEnv) write(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (e *testEnv) run(args ...string) (string, string, error) {
	e.t.Helper()
	d := deps{
		now: func() time.Time { return fixedNow },
		newS3: func(context.Context, output.S3Config) (output.PutObjectAPI, error) {
			return e.s3, nil
		},
	}
	cmd := newRootCmd(d)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func decodeJSON(t *testing.T, data string) output.Document {
	t.Helper()
	var doc output.Document
	require.NoError(t, json.Unmarshal([]byte(data), &doc))
	return doc
}

func TestConvert_Stdout(t *testing.T) {
	env := newTestEnv(t)
	input := env.write("user.json", userSchema)

	stdout, _, err := env.run("convert", input)
	require.NoError(t, err)

	doc := decodeJSON(t, stdout)
	assert.Equal(t, "Generated by glueschema at 2026-01-02T03:04:05Z. DO NOT MODIFY", doc.Comment)
	assert.Equal(t, userColumns, doc.Columns)
}

func TestConvert_YAMLFile(t *testing.T) {
	env := newTestEnv(t)
	input := env.write("schemas/user.yaml", `
type: object
properties:
  id: {type: integer}
  tags: {type: array, items: {type: string}}
`)

	_, stderr, err := env.run("convert", input, "--format", "yaml", "--output", "out/user.yaml")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Converted 1 schema(s)")

	data, err := os.ReadFile(filepath.Join(env.dir, "out", "user.yaml"))
	require.NoError(t, err)
	var doc output.Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, []output.Column{{Name: "id", Type: "int"}, {Name: "tags", Type: "array<string>"}}, doc.Columns)
}

func TestConvert_Batch(t *testing.T) {
	env := newTestEnv(t)
	a := env.write("a.json", `{"properties":{"x":{"type":"boolean"}}}`)
	b := env.write("b.yaml", "properties:\n  y: {type: number}\n")

	_, _, err := env.run("convert", a, b, "--output", "gen", "--concurrency", "2")
	require.NoError(t, err)

	for name, want := range map[string]output.Column{
		"a.json": {Name: "x", Type: "boolean"},
		"b.json": {Name: "y", Type: "float"},
	} {
		data, err := os.ReadFile(filepath.Join(env.dir, "gen", name))
		require.NoError(t, err, name)
		assert.Equal(t, []output.Column{want}, decodeJSON(t, string(data)).Columns)
	}
}

func TestConvert_BatchStdoutKeepsInputOrder(t *testing.T) {
	env := newTestEnv(t)
	var inputs []string
	for _, name := range []string{"one", "two", "three"} {
		inputs = append(inputs, env.write(name+".json", `{"properties":{"`+name+`":{"type":"string"}}}`))
	}

	stdout, _, err := env.run(append([]string{"convert"}, inputs...)...)
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewBufferString(stdout))
	for _, name := range []string{"one", "two", "three"} {
		var doc output.Document
		require.NoError(t, dec.Decode(&doc))
		assert.Equal(t, name, doc.Columns[0].Name)
	}
}

func TestConvert_BatchRerunSingleInput(t *testing.T) {
	env := newTestEnv(t)
	a := env.write("a.json", `{"properties":{"x":{"type":"boolean"}}}`)
	b := env.write("b.json", `{"properties":{"y":{"type":"number"}}}`)
	inputs := []string{a, b}

	bt := &batch{
		conv:    glue.New(),
		format:  output.FormatJSON,
		output:  "gen",
		many:    len(inputs) > 1 || isDirTarget("gen"),
		opener:  &output.Opener{Stdout: io.Discard, Format: output.FormatJSON},
		now:     func() time.Time { return fixedNow },
		logger:  slog.New(slog.DiscardHandler),
		summary: io.Discard,
	}
	ctx := context.Background()
	require.NoError(t, bt.run(ctx, inputs))

	env.write("a.json", `{"properties":{"x":{"type":"string"}}}`)
	require.NoError(t, bt.run(ctx, []string{a}))

	data, err := os.ReadFile(filepath.Join(env.dir, "gen", "a.json"))
	require.NoError(t, err)
	assert.Equal(t, []output.Column{{Name: "x", Type: "string"}}, decodeJSON(t, string(data)).Columns)
}

func TestConvert_SingleInputIntoDirectory(t *testing.T) {
	env := newTestEnv(t)
	input := env.write("user.json", userSchema)
	require.NoError(t, os.MkdirAll(filepath.Join(env.dir, "existing"), 0o750))

	for _, out := range []string{"gen/", "existing"} {
		_, _, err := env.run("convert", input, "--output", out)
		require.NoError(t, err, out)

		data, err := os.ReadFile(filepath.Join(env.dir, out, "user.json"))
		require.NoError(t, err, out)
		assert.Equal(t, userColumns, decodeJSON(t, string(data)).Columns)
	}

	_, _, err := env.run("convert", input, "-o", "s3://catalog/glue/")
	require.NoError(t, err)
	_, ok := env.s3.objects["catalog/glue/user.json"]
	assert.True(t, ok)
}

func TestConvert_DuplicateTargets(t *testing.T) {
	env := newTestEnv(t)
	a := env.write("a/user.json", userSchema)
	b := env.write("b/user.json", userSchema)

	_, _, err := env.run("convert", a, b, "--output", "gen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both write to")
	assert.NoFileExists(t, filepath.Join(env.dir, "gen", "user.json"))
}

func TestIsDirTarget(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		out  string
		want bool
	}{
		{"", false},
		{"-", false},
		{"gen/", true},
		{dir, true},
		{filepath.Join(dir, "user.json"), false},
		{"s3://catalog/glue/", true},
		{"s3://catalog/glue/user.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			assert.Equal(t, tt.want, isDirTarget(tt.out))
		})
	}
}

func TestConvert_S3(t *testing.T) {
	env := newTestEnv(t)
	input := env.write("user.json", userSchema)

	_, _, err := env.run("convert", input, "-o", "s3://catalog/glue/user.json", "--s3-region", "eu-west-1")
	require.NoError(t, err)

	data, ok := env.s3.objects["catalog/glue/user.json"]
	require.True(t, ok)
	assert.Equal(t, userColumns, decodeJSON(t, string(data)).Columns)
}

func TestConvert_Options(t *testing.T) {
	env := newTestEnv(t)
	input := env.write("s.json", `{"properties":{
		"m":{"type":"object","additionalProperties":{"type":"integer"}},
		"ts":{"type":"integer","x-glue":"timestamp"}}}`)

	stdout, _, err := env.run("convert", input, "--map-keys", "value", "--override-key", "x-glue")
	require.NoError(t, err)
	assert.Equal(t, []output.Column{{Name: "m", Type: "map<int,int>"}, {Name: "ts", Type: "timestamp"}}, decodeJSON(t, stdout).Columns)
}

func TestConvert_ConfigFileAndEnv(t *testing.T) {
	env := newTestEnv(t)
	env.write(config.ConfigFileName, "version: 1\nmap_keys: value\n")
	input := env.write("s.json", `{"properties":{"m":{"type":"object","additionalProperties":{"type":"string"}}}}`)
	t.Setenv("GLUESCHEMA_FORMAT", "yaml")

	stdout, _, err := env.run("convert", input)
	require.NoError(t, err)

	var doc output.Document
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, []output.Column{{Name: "m", Type: "map<string,string>"}}, doc.Columns)
}

func TestConvert_LogResult(t *testing.T) {
	env := newTestEnv(t)
	input := env.write("user.json", userSchema)

	_, stderr, err := env.run("convert", input, "--log-result", "-o", "user.glue.json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "generated columns")
	assert.Contains(t, stderr, "struct<street:string,zip:string>")
}

func TestConvert_EmptyDocument(t *testing.T) {
	env := newTestEnv(t)
	input := env.write("empty.json", "\n")

	stdout, _, err := env.run("convert", input)
	require.NoError(t, err)
	assert.Empty(t, decodeJSON(t, stdout).Columns)
}

func TestConvert_Errors(t *testing.T) {
	env := newTestEnv(t)
	untyped := env.write("untyped.json", `{"properties":{"meta":{"type":"object"}}}`)
	anyMap := env.write("any.json", `{"properties":{"extra":{"type":"object","additionalProperties":true}}}`)
	badRef := env.write("ref.json", `{"properties":{"a":{"$ref":"#/$defs/Missing"}}}`)

	_, _, err := env.run("convert", untyped)
	require.ErrorIs(t, err, glue.ErrObjectWithoutProperties)
	assert.Contains(t, err.Error(), "untyped.json")

	_, _, err = env.run("convert", anyMap)
	require.ErrorIs(t, err, glue.ErrMapWithoutTypes)

	_, _, err = env.run("convert", badRef)
	require.Error(t, err)

	_, _, err = env.run("convert", filepath.Join(env.dir, "missing.json"))
	require.Error(t, err)

	_, _, err = env.run("convert")
	require.EqualError(t, err, "no schema file given")

	_, _, err = env.run("convert", untyped, "--format", "toml")
	require.Error(t, err)
}

func TestDescribe(t *testing.T) {
	env := newTestEnv(t)
	input := env.write("user.json", userSchema)

	stdout, _, err := env.run("describe", input)
	require.NoError(t, err)
	for _, c := range userColumns {
		assert.Contains(t, stdout, c.Name)
		assert.Contains(t, stdout, c.Type)
	}
	assert.Contains(t, stdout, "GLUE TYPE")
	assert.NotContains(t, stdout, "POINTER")
}

func TestDescribe_Nodes(t *testing.T) {
	env := newTestEnv(t)
	input := env.write("user.json", userSchema)

	stdout, _, err := env.run("describe", input, "--nodes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "POINTER")
	assert.Contains(t, stdout, "/properties/address")
	assert.Contains(t, stdout, "$ref #/$defs/Address")
	assert.Contains(t, stdout, "string (date-time)")
}

func TestDescribe_Errors(t *testing.T) {
	env := newTestEnv(t)
	input := env.write("bad.json", `{"properties":{"x":{"type":"object","properties":{"a":{"type":"tuple"}}}}}`)

	_, _, err := env.run("describe", input)
	var gerr *glue.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "x.a", gerr.Path)
	assert.Equal(t, "tuple", gerr.Type)

	_, _, err = env.run("describe")
	require.Error(t, err)
}

func TestInit_NonInteractive(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("init", "--non-interactive", "--map-keys", "value", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Initialization completed")

	cfg, err := config.Load(filepath.Join(env.dir, config.ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, config.CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "value", cfg.MapKeys)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, glue.DefaultOverrideKey, cfg.OverrideKey)

	_, _, err = env.run("init", "--non-interactive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "glueschema version")

	stdout, _, err = env.run("version", "--short")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "commit")
}

func TestRoot_InvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	env.write(config.ConfigFileName, "version: 3\n")

	_, _, err := env.run("version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
