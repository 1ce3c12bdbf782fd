// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	// ErrUnresolvedRef indicates a $ref that does not point at a schema in the document.
	ErrUnresolvedRef = errors.New("unresolved reference")

	// ErrCircularRef indicates a $ref that leads back to one of its own ancestors.
	ErrCircularRef = errors.New("circular reference")
)

// Dereference inlines every local $ref reachable from the root's
// properties, in place. Keywords set next to a $ref (for example a type
// override) are kept and take precedence over the target's.
// Definitions that are never referenced are left untouched.
func Dereference(root *jsonschema.Schema) error {
	return dereferenceIn(root, root)
}

// dereferenceIn inlines the refs reachable from s, looking targets up in root.
func dereferenceIn(root, s *jsonschema.Schema) error {
	d := &dereferencer{
		root:   root,
		active: make(map[*jsonschema.Schema]bool),
		done:   make(map[*jsonschema.Schema]bool),
	}
	return d.resolve(s)
}

type dereferencer struct {
	root   *jsonschema.Schema
	active map[*jsonschema.Schema]bool
	done   map[*jsonschema.Schema]bool
}

func (d *dereferencer) resolve(s *jsonschema.Schema) error {
	if s == nil || d.done[s] {
		return nil
	}
	if d.active[s] {
		return ErrCircularRef
	}
	d.active[s] = true
	defer delete(d.active, s)

	if s.Ref != "" {
		ref := s.Ref
		if !IsLocalRef(ref) {
			return fmt.Errorf("%w: %s (external references must be loaded first)", ErrUnresolvedRef, ref)
		}
		target := Lookup(d.root, ref)
		if target == nil {
			return fmt.Errorf("%w: %s", ErrUnresolvedRef, ref)
		}
		if err := d.resolve(target); err != nil {
			if err == ErrCircularRef { //nolint:errorlint // only the innermost error is annotated
				return fmt.Errorf("%w: %s", err, ref)
			}
			return err
		}
		inline(s, target)
	}

	for _, child := range children(s) {
		if err := d.resolve(child); err != nil {
			return err
		}
	}

	d.done[s] = true
	return nil
}

// inline replaces the $ref node s with a shallow copy of target, keeping s's
// extra keywords and definitions.
func inline(s, target *jsonschema.Schema) {
	extra := s.Extra
	merged := *target
	if merged.Defs == nil {
		merged.Defs = s.Defs
	}
	if merged.Definitions == nil {
		merged.Definitions = s.Definitions
	}
	if len(extra) > 0 {
		merged.Extra = make(map[string]any, len(target.Extra)+len(extra))
		maps.Copy(merged.Extra, target.Extra)
		maps.Copy(merged.Extra, extra)
	}
	*s = merged
}

// children returns the subschemas that shape a type. $defs and definitions
// are excluded: they are only resolved when referenced.
func children(s *jsonschema.Schema) []*jsonschema.Schema {
	var out []*jsonschema.Schema
	for _, name := range PropertyNames(s) {
		out = append(out, s.Properties[name])
	}
	out = append(out, s.Items, s.AdditionalProperties)
	out = append(out, s.AnyOf...)
	out = append(out, s.OneOf...)
	out = append(out, s.AllOf...)
	return out
}

// Lookup resolves a local JSON pointer reference such as "#/$defs/Address"
// against root. It returns nil when the pointer leads nowhere.
func Lookup(root *jsonschema.Schema, ref string) *jsonschema.Schema {
	if ref == "#" {
		return root
	}
	if !strings.HasPrefix(ref, "#/") {
		return nil
	}

	segments := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
	cur := root
	for i := 0; i < len(segments) && cur != nil; i++ {
		seg := unescapePointer(segments[i])
		switch seg {
		case "items":
			cur = cur.Items
			continue
		case "additionalProperties":
			cur = cur.AdditionalProperties
			continue
		}

		if i+1 >= len(segments) {
			return nil
		}
		i++
		key := unescapePointer(segments[i])
		switch seg {
		case "$defs":
			cur = cur.Defs[key]
		case "definitions":
			cur = cur.Definitions[key]
		case "properties":
			cur = cur.Properties[key]
		case "anyOf":
			cur = index(cur.AnyOf, key)
		case "oneOf":
			cur = index(cur.OneOf, key)
		case "allOf":
			cur = index(cur.AllOf, key)
		default:
			return nil
		}
	}
	return cur
}

func index(list []*jsonschema.Schema, key string) *jsonschema.Schema {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}
