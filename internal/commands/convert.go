// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dacolabs/glueschema/internal/glue"
	"github.com/dacolabs/glueschema/internal/output"
	"github.com/dacolabs/glueschema/internal/prompts"
	"github.com/dacolabs/glueschema/internal/session"
	"github.com/dacolabs/glueschema/internal/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type convertOptions struct {
	watch     bool
	logResult bool
}

func newConvertCmd(d deps) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [schema-file...]",
		Short: "Convert JSON Schema files to Glue column types",
		Long: `Convert one or more JSON Schema files (JSON or YAML) into a document listing
the Glue type of every top-level property, in declaration order.

With several inputs, or an --output that ends in "/" or names an existing
directory, one document per input is written to <output>/<input name>.<format>.
Inputs that would write to the same location are rejected.`,
		Example: `  # Print the columns of a schema
  glueschema convert user.schema.json

  # Write YAML next to other generated files
  glueschema convert user.schema.json --format yaml --output glue/user.yaml

  # Convert many schemas into a bucket prefix
  glueschema convert schemas/*.json --output s3://catalog/glue/

  # Regenerate on every save
  glueschema convert user.schema.json -o glue/user.json --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, d, opts, args)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file, directory or s3:// URL (default: stdout)")
	cmd.Flags().StringP("format", "f", "", "Output format (json or yaml)")
	cmd.Flags().String("override-key", "", "Schema keyword whose value replaces the generated type")
	cmd.Flags().String("map-keys", "", "Map key rendering: string (map<string,V>) or value (map<V,V>)")
	cmd.Flags().Int("max-depth", 0, "Maximum schema nesting depth")
	cmd.Flags().Int("concurrency", 0, "Number of schemas converted in parallel")
	cmd.Flags().String("s3-region", "", "AWS region for s3:// outputs")
	cmd.Flags().String("s3-endpoint", "", "Custom S3 endpoint (MinIO, LocalStack)")
	cmd.Flags().Bool("s3-use-path-style", false, "Use path-style S3 addressing")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Convert again whenever an input changes")
	cmd.Flags().BoolVarP(&opts.logResult, "log-result", "l", false, "Log each generated document")

	return cmd
}

func runConvert(cmd *cobra.Command, d deps, opts *convertOptions, args []string) error {
	sess, err := session.RequireFromCommand(cmd)
	if err != nil {
		return err
	}

	inputs := args
	out := sess.Config.Output
	if len(inputs) == 0 {
		if !prompts.IsInteractive(cmd.InOrStdin(), cmd.OutOrStdout()) {
			return errors.New("no schema file given")
		}
		var input string
		if err := prompts.RunConvertForm(&input, &out); err != nil {
			return err
		}
		inputs = []string{input}
	}

	format, err := output.ParseFormat(sess.Config.Format)
	if err != nil {
		return err
	}
	conv, err := sess.Converter()
	if err != nil {
		return err
	}

	s3cfg := output.S3Config{
		Region:       sess.Config.S3.Region,
		Endpoint:     sess.Config.S3.Endpoint,
		UsePathStyle: sess.Config.S3.UsePathStyle,
	}
	b := &batch{
		conv:   conv,
		format: format,
		output: out,
		many:   len(inputs) > 1 || isDirTarget(out),
		opener: &output.Opener{
			Stdout: cmd.OutOrStdout(),
			Format: format,
			S3: func(ctx context.Context) (output.PutObjectAPI, error) {
				return d.newS3(ctx, s3cfg)
			},
		},
		now:         d.now,
		logger:      sess.Logger,
		logResult:   opts.logResult,
		concurrency: sess.Config.Concurrency,
		summary:     cmd.ErrOrStderr(),
	}

	ctx := cmd.Context()
	if err := b.run(ctx, inputs); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	w, err := watch.New(inputs, watch.DefaultDebounce, sess.Logger)
	if err != nil {
		return err
	}
	sess.Logger.Info("watching for changes", "files", len(inputs))
	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		if err := b.run(ctx, changed); err != nil {
			sess.Logger.Error("conversion failed", "error", err)
		}
		return nil
	})
}

// batch converts a set of schema files and writes one document per file.
type batch struct {
	conv        *glue.Converter
	format      output.Format
	output      string
	many        bool // one document per input under output
	opener      *output.Opener
	now         func() time.Time
	logger      *slog.Logger
	logResult   bool
	concurrency int
	summary     io.Writer
}

type converted struct {
	input  string
	target string
	data   []byte
	cols   int
}

func (b *batch) toStdout() bool {
	return b.output == "" || b.output == "-"
}

func (b *batch) target(input string) string {
	if b.many && !b.toStdout() {
		return output.TargetFor(b.output, input, b.format)
	}
	return b.output
}

// targets maps every input to its output location and rejects inputs that
// would overwrite each other.
func (b *batch) targets(inputs []string) ([]string, error) {
	targets := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, input := range inputs {
		targets[i] = b.target(input)
		if b.toStdout() {
			continue
		}
		if prev, ok := seen[targets[i]]; ok {
			return nil, fmt.Errorf("%s and %s both write to %s", prev, input, targets[i])
		}
		seen[targets[i]] = input
	}
	return targets, nil
}

// isDirTarget reports whether out names a directory or an s3 prefix rather
// than a single document.
func isDirTarget(out string) bool {
	if out == "" || out == "-" {
		return false
	}
	if strings.HasSuffix(out, "/") || strings.HasSuffix(out, string(os.PathSeparator)) {
		return true
	}
	if output.IsS3URL(out) {
		return false
	}
	info, err := os.Stat(out)
	return err == nil && info.IsDir()
}

// run converts inputs concurrently. Documents for stdout are written in
// input order once every conversion succeeded.
func (b *batch) run(ctx context.Context, inputs []string) error {
	targets, err := b.targets(inputs)
	if err != nil {
		return err
	}
	results := make([]converted, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if b.concurrency > 0 {
		g.SetLimit(b.concurrency)
	}
	for i, input := range inputs {
		g.Go(func() error {
			res, err := b.convert(input, targets[i])
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			results[i] = res
			if b.toStdout() {
				return nil
			}
			return b.write(gctx, res)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if b.toStdout() {
		for _, res := range results {
			if err := b.write(ctx, res); err != nil {
				return err
			}
		}
		return nil
	}

	fields := make([]prompts.ResultField, 0, len(results))
	for _, res := range results {
		fields = append(fields, prompts.ResultField{Label: res.input, Value: res.target})
	}
	prompts.PrintResult(b.summary, fields, fmt.Sprintf("Converted %d schema(s)", len(results)))
	return nil
}

func (b *batch) convert(input, target string) (converted, error) {
	schema, err := loadSchema(input)
	if err != nil {
		return converted{}, err
	}
	cols, err := b.conv.Convert(schema)
	if err != nil {
		return converted{}, err
	}
	data, err := output.NewDocument(cols, b.now()).Encode(b.format)
	if err != nil {
		return converted{}, err
	}
	return converted{input: input, target: target, data: data, cols: len(cols)}, nil
}

func (b *batch) write(ctx context.Context, res converted) error {
	sink, err := b.opener.Open(ctx, res.target)
	if err != nil {
		return err
	}
	if err := sink.Write(ctx, res.data); err != nil {
		return err
	}
	b.logger.Debug("wrote document", "input", res.input, "output", sink.String(), "columns", res.cols)
	if b.logResult {
		b.logger.Info("generated columns", "input", res.input, "document", string(res.data))
	}
	return nil
}
