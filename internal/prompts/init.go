// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import (
	"github.com/charmbracelet/huh"
	"github.com/dacolabs/glueschema/internal/config"
)

// RunInitForm runs the interactive form for the init command.
// It fills cfg with user input, starting from its current values.
func RunInitForm(cfg *config.Config) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Override keyword").
				Description("Schema key whose value replaces the generated type").
				Placeholder("glue_type").
				Validate(overrideKeyValidator).
				Value(&cfg.OverrideKey),
			huh.NewSelect[string]().
				Title("Map key type").
				Options(
					huh.NewOption("string (map<string,V>)", "string"),
					huh.NewOption("value type (map<V,V>)", "value"),
				).
				Value(&cfg.MapKeys),
		),
		huh.NewGroup(
			FormatSelect(&cfg.Format),
			huh.NewInput().
				Title("Default output").
				Description("File path, s3://bucket/key, or empty for stdout").
				Value(&cfg.Output),
		),
	).WithTheme(Theme()).Run()
}

// RunConvertForm asks for the schema file when none was given on the
// command line.
func RunConvertForm(input, output *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Schema file").
				Placeholder("schema.json").
				Validate(schemaFileValidator).
				Value(input),
			huh.NewInput().
				Title("Output").
				Description("File path, s3://bucket/key, or empty for stdout").
				Value(output),
		),
	).WithTheme(Theme()).Run()
}

// RunDescribeForm asks for the schema file to describe.
func RunDescribeForm(input *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Schema file").
				Validate(requiredValidator("schema file")).
				Value(input),
		),
	).WithTheme(Theme()).Run()
}

// FormatSelect returns a select field for choosing the output format.
func FormatSelect(value *string) *huh.Select[string] {
	return huh.NewSelect[string]().
		Title("Output format").
		Options(
			huh.NewOption("JSON", "json"),
			huh.NewOption("YAML", "yaml"),
		).
		Value(value)
}
