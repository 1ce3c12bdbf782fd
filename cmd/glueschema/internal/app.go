// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package internal contains the main application logic for the CLI.
package internal

import (
	"context"

	"github.com/dacolabs/glueschema/internal/commands"
)

// ConfigEnv names the environment variable holding the default --config path.
const ConfigEnv = "GLUESCHEMA_CONFIG"

// Run is the main application logic, extracted for testability.
// It accepts OS dependencies as parameters (context, arguments, env lookup).
func Run(ctx context.Context, args []string, getenv func(string) string) error {
	rootCmd := commands.NewRootCmd()
	if path := getenv(ConfigEnv); path != "" {
		if err := rootCmd.PersistentFlags().Set("config", path); err != nil {
			return err
		}
	}
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
