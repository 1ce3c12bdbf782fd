// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package output renders translated columns as a generated document and
// writes it to stdout, a local file or an S3 object.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dacolabs/glueschema/internal/glue"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a generated document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. An empty name selects JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// Ext returns the file extension for the format, dot included.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// ContentType returns the media type stored with uploaded documents.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Column is a serialized column entry.
type Column struct {
	Name string `json:"Name" yaml:"Name"`
	Type string `json:"Type" yaml:"Type"`
}

// Document is the generated file holding the columns of one schema.
type Document struct {
	Comment string   `json:"//" yaml:"//"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// NewDocument builds a document stamped with the given generation time.
func NewDocument(cols []glue.Column, now time.Time) *Document {
	doc := &Document{
		Comment: fmt.Sprintf("Generated by glueschema at %s. DO NOT MODIFY", now.Format(time.RFC3339)),
		Columns: make([]Column, 0, len(cols)),
	}
	for _, c := range cols {
		doc.Columns = append(doc.Columns, Column(c))
	}
	return doc
}

// Encode renders the document in the given format.
func (d *Document) Encode(format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return buf.Bytes(), nil
}
