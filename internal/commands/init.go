// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"fmt"
	"os"

	"github.com/dacolabs/glueschema/internal/config"
	"github.com/dacolabs/glueschema/internal/prompts"
	"github.com/dacolabs/glueschema/internal/session"
	"github.com/spf13/cobra"
)

type initOptions struct {
	nonInteractive bool
}

func newInitCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a glueschema project",
		Long: `Initialize a glueschema project with a glueschema.yaml configuration file.
Values not given as flags are asked for interactively.`,
		Example: `  # Interactive mode
  glueschema init

  # Non-interactive
  glueschema init --map-keys value --format yaml --non-interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			interactive := !opts.nonInteractive && prompts.IsInteractive(cmd.InOrStdin(), cmd.OutOrStdout())
			return runInit(cmd, sess, interactive)
		},
	}

	cmd.Flags().String("override-key", "", "Schema keyword whose value replaces the generated type")
	cmd.Flags().String("map-keys", "", "Map key rendering: string or value")
	cmd.Flags().StringP("format", "f", "", "Default output format (json or yaml)")
	cmd.Flags().StringP("output", "o", "", "Default output location")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Run without prompts")

	return cmd
}

func runInit(cmd *cobra.Command, sess *session.Context, interactive bool) error {
	if _, err := os.Stat(config.ConfigFileName); err == nil {
		return fmt.Errorf("%s already exists; project already initialized", config.ConfigFileName)
	}

	// Start from defaults with env and flag overrides applied.
	cfg := *sess.Config.Config
	cfg.Version = config.CurrentConfigVersion

	if interactive {
		if err := prompts.RunInitForm(&cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(config.ConfigFileName); err != nil {
		return fmt.Errorf("config file couldn't be saved: %w", err)
	}

	sess.Logger.Debug("wrote config", "path", config.ConfigFileName)
	prompts.PrintResult(cmd.OutOrStdout(), []prompts.ResultField{
		{Label: "Config", Value: config.ConfigFileName},
		{Label: "Override key", Value: cfg.OverrideKey},
		{Label: "Map keys", Value: cfg.MapKeys},
		{Label: "Format", Value: cfg.Format},
	}, "Initialization completed")
	return nil
}
