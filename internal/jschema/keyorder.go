// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"
)

// ExtractKeyOrderFromJSON parses raw JSON and records the key order of every object.
// The result maps a JSON pointer (e.g. "/properties", "/$defs/Address/properties")
// to the object's keys in document order.
func ExtractKeyOrderFromJSON(data []byte) (map[string][]string, error) {
	result := make(map[string][]string)
	dec := json.NewDecoder(bytes.NewReader(data))

	var extract func(path string) error
	extract = func(path string) error {
		token, err := dec.Token()
		if err != nil {
			return err
		}
		delim, ok := token.(json.Delim)
		if !ok {
			return nil
		}

		switch delim {
		case '{':
			keys := []string{}
			for dec.More() {
				keyToken, err := dec.Token()
				if err != nil {
					return err
				}
				key, ok := keyToken.(string)
				if !ok {
					return errors.New("object key is not a string")
				}
				keys = append(keys, key)
				if err := extract(path + "/" + escapePointer(key)); err != nil {
					return err
				}
			}
			result[path] = keys
		case '[':
			for i := 0; dec.More(); i++ {
				if err := extract(path + "/" + strconv.Itoa(i)); err != nil {
					return err
				}
			}
		}
		// Consume the closing delimiter
		_, err = dec.Token()
		return err
	}

	if err := extract(""); err != nil {
		return nil, err
	}
	return result, nil
}

// ExtractKeyOrderFromYAML is ExtractKeyOrderFromJSON for YAML documents.
func ExtractKeyOrderFromYAML(data []byte) (map[string][]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	result := make(map[string][]string)
	ExtractYAMLNodeKeyOrder(&root, "", result)
	return result, nil
}

// ExtractYAMLNodeKeyOrder walks a YAML node tree and records mapping key order into result.
func ExtractYAMLNodeKeyOrder(node *yaml.Node, path string, result map[string][]string) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			ExtractYAMLNodeKeyOrder(child, path, result)
		}
	case yaml.AliasNode:
		ExtractYAMLNodeKeyOrder(node.Alias, path, result)
	case yaml.MappingNode:
		keys := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			keys = append(keys, key)
			ExtractYAMLNodeKeyOrder(node.Content[i+1], path+"/"+escapePointer(key), result)
		}
		result[path] = keys
	case yaml.SequenceNode:
		for i, child := range node.Content {
			ExtractYAMLNodeKeyOrder(child, path+"/"+strconv.Itoa(i), result)
		}
	}
}

// SetPropertyOrder copies the recorded key order onto every schema in the
// tree that declares properties.
func SetPropertyOrder(schema *jsonschema.Schema, keyOrder map[string][]string) {
	visited := make(map[*jsonschema.Schema]bool)

	var set func(s *jsonschema.Schema, path string)
	set = func(s *jsonschema.Schema, path string) {
		if s == nil || visited[s] {
			return
		}
		visited[s] = true

		if order, ok := keyOrder[path+"/properties"]; ok && len(s.PropertyOrder) == 0 {
			s.PropertyOrder = order
		}

		for name, child := range s.Properties {
			set(child, path+"/properties/"+escapePointer(name))
		}
		for name, child := range s.Defs {
			set(child, path+"/$defs/"+escapePointer(name))
		}
		for name, child := range s.Definitions {
			set(child, path+"/definitions/"+escapePointer(name))
		}
		set(s.Items, path+"/items")
		set(s.AdditionalProperties, path+"/additionalProperties")
		for i, child := range s.AnyOf {
			set(child, path+"/anyOf/"+strconv.Itoa(i))
		}
		for i, child := range s.OneOf {
			set(child, path+"/oneOf/"+strconv.Itoa(i))
		}
		for i, child := range s.AllOf {
			set(child, path+"/allOf/"+strconv.Itoa(i))
		}
	}

	set(schema, "")
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escapePointer(s string) string {
	return pointerEscaper.Replace(s)
}

func unescapePointer(s string) string {
	return pointerUnescaper.Replace(s)
}
