// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package commands contains all CLI command definitions.
package commands

import (
	"context"
	"time"

	"github.com/dacolabs/glueschema/internal/output"
	"github.com/dacolabs/glueschema/internal/session"
	"github.com/spf13/cobra"
)

// deps are the process dependencies commands reach for, replaced in tests.
type deps struct {
	now   func() time.Time
	newS3 func(ctx context.Context, cfg output.S3Config) (output.PutObjectAPI, error)
}

func defaultDeps() deps {
	return deps{
		now: time.Now,
		newS3: func(ctx context.Context, cfg output.S3Config) (output.PutObjectAPI, error) {
			return output.NewS3Client(ctx, cfg)
		},
	}
}

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultDeps())
}

func newRootCmd(d deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "glueschema",
		Short: "Generate Glue column types from JSON Schema",
		Long: `glueschema converts JSON Schema documents into AWS Glue column type
declarations such as struct<name:string,age:int>, array<T> and map<string,V>.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "help", "completion", "__complete":
				return nil
			}
			return session.PreRunLoad(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./glueschema.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConvertCmd(d))
	rootCmd.AddCommand(newDescribeCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
