// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Sink stores a rendered document.
type Sink interface {
	Write(ctx context.Context, data []byte) error
	// String describes the destination for logs and messages.
	String() string
}

// WriterSink writes to an io.Writer, typically stdout.
type WriterSink struct {
	W io.Writer
}

// Write implements Sink.
func (s *WriterSink) Write(_ context.Context, data []byte) error {
	_, err := s.W.Write(data)
	return err
}

func (s *WriterSink) String() string { return "stdout" }

// FileSink writes to a local file, creating parent directories.
type FileSink struct {
	Path string
}

// Write implements Sink.
func (s *FileSink) Write(_ context.Context, data []byte) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil { //nolint:gosec // generated documents are not secret
		return fmt.Errorf("failed to write %s: %w", s.Path, err)
	}
	return nil
}

func (s *FileSink) String() string { return s.Path }

// Opener creates sinks for output targets.
type Opener struct {
	// Stdout receives documents when the target is empty or "-".
	Stdout io.Writer
	// S3 creates the object storage client for s3:// targets.
	S3 func(ctx context.Context) (PutObjectAPI, error)
	// Format sets the content type of uploaded objects.
	Format Format
}

// Open returns the sink for target: stdout, s3://bucket/key or a file path.
func (o *Opener) Open(ctx context.Context, target string) (Sink, error) {
	switch {
	case target == "" || target == "-":
		return &WriterSink{W: o.Stdout}, nil
	case IsS3URL(target):
		bucket, key, err := ParseS3URL(target)
		if err != nil {
			return nil, err
		}
		if o.S3 == nil {
			return nil, errors.New("s3 output is not configured")
		}
		client, err := o.S3(ctx)
		if err != nil {
			return nil, err
		}
		return &S3Sink{Client: client, Bucket: bucket, Key: key, ContentType: o.Format.ContentType()}, nil
	default:
		return &FileSink{Path: target}, nil
	}
}

// TargetFor returns where the document for input goes when several inputs
// share one output location: <output>/<input base name><ext>.
func TargetFor(output, input string, format Format) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + format.Ext()
	if IsS3URL(output) {
		return strings.TrimSuffix(output, "/") + "/" + path.Clean(name)
	}
	return filepath.Join(output, name)
}
