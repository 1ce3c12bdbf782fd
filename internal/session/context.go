// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package session carries the resolved configuration and logger of a CLI
// invocation through context.Context.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dacolabs/glueschema/internal/config"
	"github.com/dacolabs/glueschema/internal/glue"
)

// ErrInvalidConfig indicates the configuration could not be loaded.
var ErrInvalidConfig = errors.New("invalid configuration")

// contextKey is used to store Context in context.Context.
type contextKey struct{}

// Context holds the state shared by commands of one invocation.
type Context struct {
	// Config is the configuration merged from defaults, file, env and flags.
	Config *config.Resolved

	// Logger is the structured logger for diagnostics, written to stderr.
	Logger *slog.Logger
}

// Load resolves the configuration, builds the logger writing to stderr and
// returns a new context.Context with the session stored in it.
func Load(ctx context.Context, opts LoadOptions) (context.Context, error) {
	cfg, err := config.Resolve(opts.ConfigFile, opts.Flags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	logger := NewLogger(stderr, cfg.LogLevel)
	if cfg.File != "" {
		logger.Debug("using config file", "path", cfg.File)
	}

	return With(ctx, &Context{Config: cfg, Logger: logger}), nil
}

// With returns a copy of ctx carrying s.
func With(ctx context.Context, s *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// From extracts the session from a context.Context.
// Returns nil if no session is stored.
func From(ctx context.Context) *Context {
	if s, ok := ctx.Value(contextKey{}).(*Context); ok {
		return s
	}
	return nil
}

// Logger returns the session logger, or a discarding logger when no session
// is stored.
func Logger(ctx context.Context) *slog.Logger {
	if s := From(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Converter builds a converter configured from the session.
func (s *Context) Converter() (*glue.Converter, error) {
	opts, err := s.Config.ConverterOptions()
	if err != nil {
		return nil, err
	}
	return glue.New(opts...), nil
}

// NewLogger creates a text logger at the named level. Unknown levels fall
// back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
