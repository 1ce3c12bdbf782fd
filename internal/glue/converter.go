// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package glue translates JSON Schema documents into Glue catalog column types
// such as struct<name:string,age:int>, map<string,int>, array<T> and union<T,U>.
package glue

import (
	"fmt"
	"reflect"
	"time"

	"github.com/dacolabs/glueschema/internal/jschema"
	"github.com/google/jsonschema-go/jsonschema"
)

// DefaultOverrideKey is the schema keyword that forces a literal Glue type.
const DefaultOverrideKey = "glue_type"

// DefaultMaxDepth bounds recursion on deeply nested schemas.
const DefaultMaxDepth = 128

// MapKeys selects how the key type of a map is rendered.
type MapKeys string

const (
	// MapKeysString renders maps as map<string,V>. This is the default.
	MapKeysString MapKeys = "string"
	// MapKeysValue renders maps as map<V,V>, the legacy rendering kept for
	// catalogs generated by earlier releases.
	MapKeysValue MapKeys = "value"
)

// ParseMapKeys validates a map key style name.
func ParseMapKeys(s string) (MapKeys, error) {
	switch MapKeys(s) {
	case MapKeysString, MapKeysValue:
		return MapKeys(s), nil
	case "":
		return MapKeysString, nil
	}
	return "", fmt.Errorf("unknown map key style %q (want %q or %q)", s, MapKeysString, MapKeysValue)
}

// Column is one top-level field of the translated schema.
type Column struct {
	Name string
	Type string
}

// Converter translates schemas to Glue types.
// A Converter is immutable and safe for concurrent use.
type Converter struct {
	overrideKey string
	mapKeys     MapKeys
	maxDepth    int
}

// Option configures a Converter.
type Option func(*Converter)

// WithOverrideKey sets the keyword read as a literal type override.
func WithOverrideKey(key string) Option {
	return func(c *Converter) {
		if key != "" {
			c.overrideKey = key
		}
	}
}

// WithMapKeys sets the map key rendering.
func WithMapKeys(m MapKeys) Option {
	return func(c *Converter) {
		if m != "" {
			c.mapKeys = m
		}
	}
}

// WithMaxDepth sets the maximum nesting depth. Values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(c *Converter) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// New creates a Converter with the given options.
func New(opts ...Option) *Converter {
	c := &Converter{
		overrideKey: DefaultOverrideKey,
		mapKeys:     MapKeysString,
		maxDepth:    DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert maps every property of the root schema to a column, in declaration order.
// A nil schema yields no columns. The schema must already have its
// references inlined (see jschema.Dereference).
func (c *Converter) Convert(schema *jsonschema.Schema) ([]Column, error) {
	if schema == nil {
		return nil, nil
	}
	return c.handleRoot(schema)
}

// ConvertJSON parses, dereferences and converts a JSON Schema document.
// Empty and null documents yield no columns.
func (c *Converter) ConvertJSON(data []byte) ([]Column, error) {
	return c.convertRaw(data, jschema.FormatJSON)
}

// ConvertYAML is ConvertJSON for YAML documents.
func (c *Converter) ConvertYAML(data []byte) ([]Column, error) {
	return c.convertRaw(data, jschema.FormatYAML)
}

func (c *Converter) convertRaw(data []byte, format jschema.Format) ([]Column, error) {
	if jschema.IsEmptyDocument(data) {
		return nil, nil
	}
	schema, err := jschema.Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := jschema.Dereference(schema); err != nil {
		return nil, fmt.Errorf("failed to resolve references: %w", err)
	}
	return c.Convert(schema)
}

// forOptions renders time.Time as a date-time string so it maps to timestamp.
var forOptions = &jsonschema.ForOptions{
	TypeSchemas: map[reflect.Type]*jsonschema.Schema{
		reflect.TypeFor[time.Time](): {Type: "string", Format: "date-time"},
	},
}

// ConvertFor infers a schema from the Go type T and converts it.
func ConvertFor[T any](c *Converter) ([]Column, error) {
	schema, err := jsonschema.For[T](forOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to infer schema: %w", err)
	}
	if err := jschema.Dereference(schema); err != nil {
		return nil, fmt.Errorf("failed to resolve references: %w", err)
	}
	return c.Convert(schema)
}

var defaultConverter = New()

// Convert converts a schema with the default options.
func Convert(schema *jsonschema.Schema) ([]Column, error) {
	return defaultConverter.Convert(schema)
}

// ConvertJSON converts a JSON document with the default options.
func ConvertJSON(data []byte) ([]Column, error) {
	return defaultConverter.ConvertJSON(data)
}
