// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dacolabs/glueschema/internal/glue"
	"github.com/dacolabs/glueschema/internal/jschema"
	"github.com/dacolabs/glueschema/internal/prompts"
	"github.com/dacolabs/glueschema/internal/session"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type describeOptions struct {
	nodes bool
}

func newDescribeCmd() *cobra.Command {
	opts := &describeOptions{}

	cmd := &cobra.Command{
		Use:   "describe [schema-file]",
		Short: "Show the Glue columns of a schema as a table",
		Long: `Show the columns generated for a JSON Schema file, one row per top-level
property, without writing any output document.`,
		Example: `  # Describe a schema
  glueschema describe user.schema.json

  # Also list every schema node with its JSON pointer
  glueschema describe user.schema.json --nodes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}

			var input string
			if len(args) == 1 {
				input = args[0]
			} else {
				if !prompts.IsInteractive(cmd.InOrStdin(), cmd.OutOrStdout()) {
					return errors.New("no schema file given")
				}
				if err := prompts.RunDescribeForm(&input); err != nil {
					return err
				}
			}
			return runDescribe(cmd.OutOrStdout(), sess, input, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.nodes, "nodes", false, "List every schema node with its JSON pointer")

	return cmd
}

func runDescribe(w io.Writer, sess *session.Context, input string, opts *describeOptions) error {
	loader, name, err := schemaLoader(input)
	if err != nil {
		return err
	}
	data, err := loader.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", input, err)
	}

	_, _ = fmt.Fprintln(w, prompts.TitleStyle.Render(input))
	if jschema.IsEmptyDocument(data) {
		renderColumns(w, nil)
		return nil
	}

	schema, err := jschema.Parse(data, jschema.FormatFromPath(name))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", input, err)
	}
	if err := loader.ResolveRefs(schema, path.Dir(name)); err != nil {
		return fmt.Errorf("failed to load %s: %w", input, err)
	}

	if opts.nodes {
		renderNodes(w, schema)
	}

	if err := jschema.Dereference(schema); err != nil {
		return fmt.Errorf("failed to resolve references: %w", err)
	}
	conv, err := sess.Converter()
	if err != nil {
		return err
	}
	cols, err := conv.Convert(schema)
	if err != nil {
		return err
	}
	renderColumns(w, cols)
	return nil
}

func renderColumns(w io.Writer, cols []glue.Column) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Column", "Glue Type"})
	for i, c := range cols {
		t.AppendRow(table.Row{i + 1, c.Name, c.Type})
	}
	t.AppendFooter(table.Row{"", "Total", len(cols)})
	t.Render()
}

// renderNodes lists schema nodes before reference inlining, following local
// refs so that shared definitions show up under every use.
func renderNodes(w io.Writer, root *jsonschema.Schema) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Pointer", "Kind"})

	resolve := func(ref string) *jsonschema.Schema { return jschema.Lookup(root, ref) }
	for ptr, s := range jschema.Traverse(root, resolve) {
		if ptr == "" {
			ptr = "#"
		}
		t.AppendRow(table.Row{ptr, nodeKind(s)})
	}
	t.Render()
}

func nodeKind(s *jsonschema.Schema) string {
	switch {
	case s.Ref != "":
		return "$ref " + s.Ref
	case s.Type != "":
		if s.Format != "" {
			return s.Type + " (" + s.Format + ")"
		}
		return s.Type
	case len(s.Types) > 0:
		return strings.Join(s.Types, "|")
	case len(s.AnyOf) > 0:
		return "anyOf"
	case len(s.OneOf) > 0:
		return "oneOf"
	case len(s.AllOf) > 0:
		return "allOf"
	}
	return "-"
}
