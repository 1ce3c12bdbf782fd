// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// Loader loads schemas from a filesystem.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a Loader that reads from the given filesystem.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// ReadFile returns the raw bytes of a schema file.
func (l *Loader) ReadFile(filePath string) ([]byte, error) {
	f, err := l.fsys.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	return io.ReadAll(f)
}

// LoadFile loads and parses a schema file.
// The format is determined from the file extension.
func (l *Loader) LoadFile(filePath string) (*jsonschema.Schema, error) {
	data, err := l.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return Parse(data, FormatFromPath(filePath))
}

// Load loads a schema file and resolves every reference in it: external
// file refs are loaded relative to the file, then local refs are inlined.
// An empty or null document yields a nil schema.
func (l *Loader) Load(filePath string) (*jsonschema.Schema, error) {
	data, err := l.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if IsEmptyDocument(data) {
		return nil, nil
	}
	schema, err := Parse(data, FormatFromPath(filePath))
	if err != nil {
		return nil, err
	}
	if err := l.ResolveRefs(schema, path.Dir(filePath)); err != nil {
		return nil, err
	}
	if err := Dereference(schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// ResolveRefs resolves all external file $refs in the schema tree in-place.
// It recursively loads referenced schemas and replaces the ref with the loaded
// content. A fragment after the file name ("other.json#/$defs/X") selects a
// subschema of the loaded file. Internal refs (starting with #) are left unchanged.
func (l *Loader) ResolveRefs(schema *jsonschema.Schema, basePath string) error {
	return l.resolveRefs(schema, basePath, make(map[string]bool))
}

func (l *Loader) resolveRefs(schema *jsonschema.Schema, basePath string, loading map[string]bool) error {
	for s := range Schemas(schema) {
		if !IsFileRef(s.Ref) {
			continue
		}
		file, fragment, _ := strings.Cut(s.Ref, "#")
		refPath := path.Join(basePath, file)
		if loading[refPath] {
			return fmt.Errorf("%w: %s", ErrCircularRef, s.Ref)
		}

		loaded, err := l.LoadFile(refPath)
		if err != nil {
			return err
		}
		loading[refPath] = true
		err = l.resolveRefs(loaded, path.Dir(refPath), loading)
		delete(loading, refPath)
		if err != nil {
			return err
		}

		target := loaded
		if fragment != "" {
			target = Lookup(loaded, "#"+fragment)
			if target == nil {
				return fmt.Errorf("%w: %s", ErrUnresolvedRef, s.Ref)
			}
		}
		if err := dereferenceIn(loaded, target); err != nil {
			return fmt.Errorf("%s: %w", refPath, err)
		}
		inline(s, target)
	}
	return nil
}
