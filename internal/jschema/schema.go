// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package jschema provides JSON Schema loading, parsing, reference inlining
// and traversal utilities.
package jschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"
)

// Format is a schema document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the document format from a file extension.
// Anything that is not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// IsFileRef returns true if ref is an external file reference.
// File refs do not start with "#".
func IsFileRef(ref string) bool {
	return ref != "" && !strings.HasPrefix(ref, "#")
}

// IsLocalRef returns true if ref points inside the current document.
func IsLocalRef(ref string) bool {
	return ref == "#" || strings.HasPrefix(ref, "#/")
}

// IsEmptyDocument reports whether data holds no schema at all: nothing but
// whitespace, or a JSON/YAML null.
func IsEmptyDocument(data []byte) bool {
	switch string(bytes.TrimSpace(data)) {
	case "", "null", "~":
		return true
	}
	return false
}

// Parse decodes a schema document and records the declaration order of
// every properties mapping in the schema's PropertyOrder fields.
func Parse(data []byte, format Format) (*jsonschema.Schema, error) {
	var schema jsonschema.Schema
	var order map[string][]string

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, err
		}
		var err error
		if order, err = ExtractKeyOrderFromJSON(data); err != nil {
			return nil, err
		}
	case FormatYAML:
		// Schema only decodes JSON; re-encode the YAML tree first.
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("yaml document is not representable as json: %w", err)
		}
		if err := json.Unmarshal(raw, &schema); err != nil {
			return nil, err
		}
		if order, err = ExtractKeyOrderFromYAML(data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("format not supported: %q", format)
	}

	SetPropertyOrder(&schema, order)
	return &schema, nil
}

// PropertyNames returns the property names of s in declaration order.
// Names missing from PropertyOrder follow, sorted alphabetically.
func PropertyNames(s *jsonschema.Schema) []string {
	seen := make(map[string]bool, len(s.Properties))
	names := make([]string, 0, len(s.Properties))
	for _, name := range s.PropertyOrder {
		if _, ok := s.Properties[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	var rest []string
	for name := range s.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}
