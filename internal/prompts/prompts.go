// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package prompts provides interactive terminal prompts for CLI commands.
package prompts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme returns the shared huh theme used across all CLI forms.
func Theme() *huh.Theme {
	theme := huh.ThemeBase16()
	theme.FieldSeparator = lipgloss.NewStyle().SetString("\n").MarginBottom(1)
	theme.Form.Base = theme.Form.Base.MarginTop(1)
	theme.Group.Base = theme.Group.Base.MarginTop(1)
	theme.Focused.Title = theme.Focused.Title.Foreground(lipgloss.Color("#f9ca24"))
	theme.Blurred.Title = theme.Blurred.Title.Foreground(lipgloss.Color("#bababa"))
	return theme
}

// TitleStyle renders section headings such as the describe title.
var TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9ca24"))

// ResultField is a label-value pair for PrintResult.
type ResultField struct {
	Label string
	Value string
}

// PrintResult prints a styled summary with green checkmarks and gray labels.
func PrintResult(w io.Writer, fields []ResultField, successMsg string) {
	success := lipgloss.NewStyle().Foreground(lipgloss.Color("#27ca3f"))
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#bababa"))
	check := success.Render("✓")

	_, _ = fmt.Fprintln(w)
	for _, f := range fields {
		_, _ = fmt.Fprintf(w, "%s %s %s\n", check, label.Render(f.Label+":"), f.Value)
	}

	if successMsg != "" {
		_, _ = fmt.Fprintln(w, success.Render("\n"+successMsg))
	}
}

// IsInteractive reports whether both in and out are terminals, so that
// forms can be shown instead of failing on missing arguments.
func IsInteractive(in io.Reader, out io.Writer) bool {
	fin, ok := in.(*os.File)
	if !ok {
		return false
	}
	fout, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(fin.Fd())) && term.IsTerminal(int(fout.Fd())) //nolint:gosec // fd fits in int
}

func requiredValidator(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

var schemaExts = []string{".json", ".yaml", ".yml"}

// schemaFileValidator accepts existing JSON or YAML files.
func schemaFileValidator(s string) error {
	if s == "" {
		return errors.New("schema file is required")
	}
	ext := strings.ToLower(filepath.Ext(s))
	known := false
	for _, e := range schemaExts {
		known = known || ext == e
	}
	if !known {
		return fmt.Errorf("unsupported schema file extension %q", ext)
	}
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("cannot read %s", s)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", s)
	}
	return nil
}

// overrideKeyValidator rejects keys that collide with JSON Schema keywords
// the converter interprets.
func overrideKeyValidator(s string) error {
	if s == "" {
		return errors.New("override key is required")
	}
	switch s {
	case "type", "format", "properties", "additionalProperties", "items", "anyOf", "oneOf", "allOf", "$ref":
		return fmt.Errorf("%q is a JSON Schema keyword", s)
	}
	return nil
}
