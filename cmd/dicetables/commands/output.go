package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/dicetables/pkg/observability"
)

const yamlIndent = 2

// render writes view as JSON or YAML, or calls text for the text format.
func (a *App) render(w io.Writer, view any, text func(io.Writer) error) error {
	switch a.output {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(view)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)

		err := enc.Encode(view)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		return text(w)
	}
}

// run wraps a command body in a span named after the command.
func (a *App) run(cmd *cobra.Command, expr string, body func(ctx context.Context) error) error {
	ctx, span := observability.Tracer().Start(cmd.Context(), "dicetables."+cmd.Name(),
		trace.WithAttributes(attribute.String("dicetables.expr", expr)))
	defer span.End()

	err := body(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.DebugContext(ctx, "command failed", "command", cmd.Name(), "error", err)

		return err
	}

	return nil
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	return tbl
}

func (a *App) printHeader(w io.Writer, format string, args ...any) {
	a.header.Fprintf(w, format+"\n", args...)
}
