package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/dicetables/pkg/version"
)

// NewVersionCommand creates the version subcommand.
func NewVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()

			return app.render(cmd.OutOrStdout(), info, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, info.String())

				return err
			})
		},
	}
}
