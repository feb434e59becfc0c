package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/dicetables/pkg/dicetables"
	"github.com/Sumatoshi-tech/dicetables/pkg/limiter"
)

type poolLimitView struct {
	Die         string `json:"die" yaml:"die"`
	MaxKeys     int64  `json:"maxKeys" yaml:"maxKeys"`
	MaxPoolSize int    `json:"maxPoolSize" yaml:"maxPoolSize"`
	Keys        string `json:"keys" yaml:"keys"`
}

// NewPoolLimitCommand creates the pool-limit subcommand.
func NewPoolLimitCommand(app *App) *cobra.Command {
	var maxKeys int64

	cmd := &cobra.Command{
		Use:     "pool-limit <expr>",
		Short:   "Print the largest dice pool of a die that stays within the pool limits",
		Example: `  dicetables pool-limit "Die(6)" --max-keys 1000`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max-keys") {
				maxKeys = app.cfg.Limits.MaxPoolKeys
			}

			return app.run(cmd, args[0], func(ctx context.Context) error {
				die, err := app.parser.Parse(args[0])
				if err != nil {
					return err
				}

				size, err := app.limiter.PoolLimitWithin(die, maxKeys)
				if err != nil {
					return err
				}

				view := poolLimitView{
					Die:         die.String(),
					MaxKeys:     maxKeys,
					MaxPoolSize: size,
					Keys:        dicetables.CountUniqueCombinationKeys(die, size).String(),
				}
				app.logger.DebugContext(ctx, "pool limit", "die", view.Die, "size", size)

				return app.render(cmd.OutOrStdout(), view, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s: at most %s dice (%s of %s keys)\n",
						view.Die, humanize.Comma(int64(size)), view.Keys, humanize.Comma(maxKeys))

					return err
				})
			})
		},
	}

	cmd.Flags().Int64Var(&maxKeys, "max-keys", limiter.DefaultMaxPoolKeys, "key budget, C(distinct+n-1, n)")

	return cmd
}
