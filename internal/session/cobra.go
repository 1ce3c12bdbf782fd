// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package session

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// LoadOptions selects the sources Load reads from.
type LoadOptions struct {
	// ConfigFile is an explicit config path; empty searches the working directory.
	ConfigFile string
	// Flags are consulted for explicitly set overrides.
	Flags *pflag.FlagSet
	// Stderr receives log output.
	Stderr io.Writer
}

// FromCommand extracts the session from a cobra.Command's context.
// Returns nil if no session is stored.
func FromCommand(cmd *cobra.Command) *Context {
	if cmd.Context() == nil {
		return nil
	}
	return From(cmd.Context())
}

// RequireFromCommand extracts the session from a cobra.Command's context,
// returning an error if not found.
func RequireFromCommand(cmd *cobra.Command) (*Context, error) {
	s := FromCommand(cmd)
	if s == nil {
		return nil, errors.New("session not loaded")
	}
	return s, nil
}

// PreRunLoad is a PersistentPreRunE that loads the session and stores it in
// the command's context. The --config flag selects the config file.
func PreRunLoad(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	ctx, err := Load(cmd.Context(), LoadOptions{
		ConfigFile: cfgFile,
		Flags:      cmd.Flags(),
		Stderr:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	cmd.SetContext(ctx)
	return nil
}
