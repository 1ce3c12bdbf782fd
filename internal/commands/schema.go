// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dacolabs/glueschema/internal/jschema"
	"github.com/google/jsonschema-go/jsonschema"
)

// schemaLoader returns a loader rooted at the filesystem root and the
// loader-relative name of file, so that refs may climb above its directory.
func schemaLoader(file string) (*jschema.Loader, string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, "", err
	}
	vol := filepath.VolumeName(abs)
	name := strings.TrimPrefix(filepath.ToSlash(strings.TrimPrefix(abs, vol)), "/")
	return jschema.NewLoader(os.DirFS(vol + string(filepath.Separator))), name, nil
}

// loadSchema reads a schema file and inlines all of its references.
// Empty documents yield a nil schema.
func loadSchema(file string) (*jsonschema.Schema, error) {
	loader, name, err := schemaLoader(file)
	if err != nil {
		return nil, err
	}
	schema, err := loader.Load(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file, err)
	}
	return schema, nil
}
