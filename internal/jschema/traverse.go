// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"iter"
	"sort"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"
)

// RefResolver resolves $ref strings to schemas.
// Return nil if the ref cannot be resolved.
type RefResolver func(ref string) *jsonschema.Schema

// Traverse returns an iterator over all schemas in the tree, keyed by their
// JSON pointer relative to the root. Each schema is visited once, so cycles
// terminate. If resolver is provided, it follows $ref links to their targets;
// a followed target is reported under the pointer of the $ref node.
func Traverse(schema *jsonschema.Schema, resolver RefResolver) iter.Seq2[string, *jsonschema.Schema] {
	return func(yield func(string, *jsonschema.Schema) bool) {
		visited := make(map[*jsonschema.Schema]struct{})
		walk(schema, "", resolver, yield, visited)
	}
}

// Schemas is Traverse without the pointers.
func Schemas(schema *jsonschema.Schema) iter.Seq[*jsonschema.Schema] {
	return func(yield func(*jsonschema.Schema) bool) {
		for _, s := range Traverse(schema, nil) {
			if !yield(s) {
				return
			}
		}
	}
}

func walk(s *jsonschema.Schema, path string, resolver RefResolver, yield func(string, *jsonschema.Schema) bool, visited map[*jsonschema.Schema]struct{}) bool {
	if s == nil {
		return true
	}
	if _, ok := visited[s]; ok {
		return true
	}
	visited[s] = struct{}{}

	if !yield(path, s) {
		return false
	}

	if s.Ref != "" && resolver != nil {
		if !walk(resolver(s.Ref), path, resolver, yield, visited) {
			return false
		}
	}

	for key, child := range subschemas(s) {
		if !walk(child, path+"/"+key, resolver, yield, visited) {
			return false
		}
	}
	return true
}

// subschemas yields the direct children of s with their pointer segments.
func subschemas(s *jsonschema.Schema) iter.Seq2[string, *jsonschema.Schema] {
	return func(yield func(string, *jsonschema.Schema) bool) {
		named := []struct {
			key string
			m   map[string]*jsonschema.Schema
		}{
			{"properties", s.Properties},
			{"patternProperties", s.PatternProperties},
			{"dependentSchemas", s.DependentSchemas},
			{"$defs", s.Defs},
			{"definitions", s.Definitions},
		}
		for _, n := range named {
			names := make([]string, 0, len(n.m))
			if n.key == "properties" {
				names = PropertyNames(s)
			} else {
				for name := range n.m {
					names = append(names, name)
				}
				sort.Strings(names)
			}
			for _, name := range names {
				if !yield(n.key+"/"+escapePointer(name), n.m[name]) {
					return
				}
			}
		}

		single := []struct {
			key string
			s   *jsonschema.Schema
		}{
			{"additionalProperties", s.AdditionalProperties},
			{"propertyNames", s.PropertyNames},
			{"unevaluatedProperties", s.UnevaluatedProperties},
			{"items", s.Items},
			{"additionalItems", s.AdditionalItems},
			{"contains", s.Contains},
			{"unevaluatedItems", s.UnevaluatedItems},
			{"not", s.Not},
			{"if", s.If},
			{"then", s.Then},
			{"else", s.Else},
			{"contentSchema", s.ContentSchema},
		}
		for _, c := range single {
			if c.s != nil && !yield(c.key, c.s) {
				return
			}
		}

		lists := []struct {
			key  string
			list []*jsonschema.Schema
		}{
			{"prefixItems", s.PrefixItems},
			{"items", s.ItemsArray},
			{"allOf", s.AllOf},
			{"anyOf", s.AnyOf},
			{"oneOf", s.OneOf},
		}
		for _, l := range lists {
			for i, child := range l.list {
				if !yield(l.key+"/"+strconv.Itoa(i), child) {
					return
				}
			}
		}
	}
}
