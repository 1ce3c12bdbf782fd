// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package glue

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dacolabs/glueschema/internal/jschema"
	"github.com/google/jsonschema-go/jsonschema"
)

// dispatch returns the Glue type of a single schema node.
// Precedence: override keyword, union, allOf wrapper, type array, primitive type.
func (c *Converter) dispatch(s *jsonschema.Schema, path string, depth int) (string, error) {
	if depth > c.maxDepth {
		return "", newError(path, ErrMaxDepth)
	}
	if s == nil {
		return "", newError(path, ErrUnknownType)
	}

	if t, ok := c.override(s); ok {
		return t, nil
	}

	if alts := alternatives(s); alts != nil {
		return c.handleUnion(alts, path, depth)
	}

	if s.Type == "" && len(s.Types) == 0 && len(s.AllOf) > 0 {
		if len(s.AllOf) > 1 {
			return "", newError(path, ErrUnsupportedMerge)
		}
		return c.dispatch(s.AllOf[0], path, depth+1)
	}

	if s.Type == "" && len(s.Types) > 0 {
		return c.handleTypes(s, path, depth)
	}

	return c.dispatchType(s, s.Type, path, depth)
}

func (c *Converter) dispatchType(s *jsonschema.Schema, typ, path string, depth int) (string, error) {
	switch typ {
	case "object":
		return c.handleObject(s, path, depth)
	case "array":
		return c.handleArray(s, path, depth)
	case "string":
		switch s.Format {
		case "date-time":
			return "timestamp", nil
		case "date":
			return "date", nil
		}
		return "string", nil
	case "boolean":
		return "boolean", nil
	case "integer":
		return "int", nil
	case "number":
		return "float", nil
	}
	return "", &Error{Path: path, Kind: ErrUnknownType, Type: typ}
}

func (c *Converter) override(s *jsonschema.Schema) (string, bool) {
	v, ok := s.Extra[c.overrideKey]
	if !ok || v == nil {
		return "", false
	}
	if str, ok := v.(string); ok {
		// An empty override falls back to the node's shape.
		return str, str != ""
	}
	return fmt.Sprint(v), true
}

func (c *Converter) handleObject(s *jsonschema.Schema, path string, depth int) (string, error) {
	if ap := s.AdditionalProperties; ap != nil && !isFalseSchema(ap) {
		if isEmptySchema(ap) {
			return "", newError(path, ErrMapWithoutTypes)
		}
		if s.Properties != nil {
			return "", newError(path, ErrUnsupportedMerge)
		}
		return c.handleMap(ap, path, depth)
	}

	if s.Properties == nil {
		return "", newError(path, ErrObjectWithoutProperties)
	}

	cols, err := c.mapProperties(s, path, depth)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col.Name + ":" + col.Type
	}
	return "struct<" + strings.Join(parts, ",") + ">", nil
}

func (c *Converter) handleMap(values *jsonschema.Schema, path string, depth int) (string, error) {
	v, err := c.dispatch(values, path+"{}", depth+1)
	if err != nil {
		return "", err
	}
	key := "string"
	if c.mapKeys == MapKeysValue {
		key = v
	}
	return "map<" + key + "," + v + ">", nil
}

func (c *Converter) handleArray(s *jsonschema.Schema, path string, depth int) (string, error) {
	t, err := c.dispatch(s.Items, path+"[]", depth+1)
	if err != nil {
		return "", err
	}
	return "array<" + t + ">", nil
}

// handleUnion renders the non-null alternatives. A single survivor is
// returned as is, so an optional T renders as T.
func (c *Converter) handleUnion(alts []*jsonschema.Schema, path string, depth int) (string, error) {
	var kept []int
	for i, alt := range alts {
		if !isNull(alt) {
			kept = append(kept, i)
		}
	}

	switch len(kept) {
	case 0:
		return "", newError(path, ErrMalformedUnion)
	case 1:
		return c.dispatch(alts[kept[0]], path, depth+1)
	}

	types := make([]string, len(kept))
	for j, i := range kept {
		t, err := c.dispatch(alts[i], path+"|"+strconv.Itoa(i), depth+1)
		if err != nil {
			return "", err
		}
		types[j] = t
	}
	return "union<" + strings.Join(types, ",") + ">", nil
}

// handleTypes applies the union rules to a type array such as ["string", "null"].
func (c *Converter) handleTypes(s *jsonschema.Schema, path string, depth int) (string, error) {
	var kept []string
	for _, t := range s.Types {
		if t != "null" {
			kept = append(kept, t)
		}
	}

	switch len(kept) {
	case 0:
		return "", newError(path, ErrMalformedUnion)
	case 1:
		return c.dispatchType(s, kept[0], path, depth)
	}

	types := make([]string, len(kept))
	for i, k := range kept {
		t, err := c.dispatchType(s, k, path+"|"+strconv.Itoa(i), depth)
		if err != nil {
			return "", err
		}
		types[i] = t
	}
	return "union<" + strings.Join(types, ",") + ">", nil
}

func (c *Converter) handleRoot(s *jsonschema.Schema) ([]Column, error) {
	if s.Properties == nil {
		return nil, newError("", ErrObjectWithoutProperties)
	}
	return c.mapProperties(s, "", 0)
}

func (c *Converter) mapProperties(s *jsonschema.Schema, path string, depth int) ([]Column, error) {
	names := jschema.PropertyNames(s)
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		t, err := c.dispatch(s.Properties[name], joinPath(path, name), depth+1)
		if err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: name, Type: t})
	}
	return cols, nil
}

func alternatives(s *jsonschema.Schema) []*jsonschema.Schema {
	if len(s.AnyOf) > 0 {
		return s.AnyOf
	}
	if len(s.OneOf) > 0 {
		return s.OneOf
	}
	return nil
}

func isNull(s *jsonschema.Schema) bool {
	if s == nil {
		return false
	}
	if s.Type == "null" {
		return true
	}
	return s.Type == "" && len(s.Types) == 1 && s.Types[0] == "null"
}

// isEmptySchema reports whether s is the schema `true` (or `{}`).
func isEmptySchema(s *jsonschema.Schema) bool {
	if s == nil {
		return false
	}
	cp := *s
	if len(cp.Extra) == 0 {
		cp.Extra = nil
	}
	if len(cp.PropertyOrder) == 0 {
		cp.PropertyOrder = nil
	}
	return reflect.DeepEqual(cp, jsonschema.Schema{})
}

// isFalseSchema reports whether s is the schema `false`, decoded as {not: {}}.
func isFalseSchema(s *jsonschema.Schema) bool {
	if s == nil || s.Not == nil || !isEmptySchema(s.Not) {
		return false
	}
	cp := *s
	cp.Not = nil
	return isEmptySchema(&cp)
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
