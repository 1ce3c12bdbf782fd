// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package glue

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType indicates a node whose type is not a recognized primitive.
	ErrUnknownType = errors.New("unknown type")

	// ErrObjectWithoutProperties indicates an object with neither properties nor additionalProperties.
	ErrObjectWithoutProperties = errors.New("object without properties or additionalProperties can't be represented")

	// ErrMapWithoutTypes indicates additionalProperties declared as true, which has no value type.
	ErrMapWithoutTypes = errors.New("glue cannot support a map without types")

	// ErrUnsupportedMerge indicates an object mixing properties with typed additionalProperties.
	ErrUnsupportedMerge = errors.New("merging types of properties and additionalProperties is not implemented")

	// ErrMalformedUnion indicates a union left without alternatives once null is removed.
	ErrMalformedUnion = errors.New("union has no non-null alternatives")

	// ErrMaxDepth indicates the schema nests deeper than the converter allows.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
)

// Error reports a translation failure at a location in the schema tree.
// Kind is one of the sentinel errors above and is matchable with errors.Is.
type Error struct {
	Path string // dotted location, e.g. "address.street" or "tags[]"
	Kind error
	Type string // offending type tag, set for ErrUnknownType
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Kind == ErrUnknownType {
		t := e.Type
		if t == "" {
			t = "<none>"
		}
		msg = fmt.Sprintf("%s: %s", msg, t)
	}
	if e.Path == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Path, msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(path string, kind error) *Error {
	return &Error{Path: path, Kind: kind}
}
