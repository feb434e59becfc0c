package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/dicetables/pkg/dicetables"
)

type statsView struct {
	Query            string  `json:"query" yaml:"query"`
	QueryOccurrences string  `json:"queryOccurrences" yaml:"queryOccurrences"`
	TotalOccurrences string  `json:"totalOccurrences" yaml:"totalOccurrences"`
	OneIn            string  `json:"oneIn" yaml:"oneIn"`
	Percentage       string  `json:"percentage" yaml:"percentage"`
	Min              int     `json:"min" yaml:"min"`
	Max              int     `json:"max" yaml:"max"`
	Mean             float64 `json:"mean" yaml:"mean"`
	StdDev           float64 `json:"stddev" yaml:"stddev"`
}

// NewStatsCommand creates the stats subcommand.
func NewStatsCommand(app *App) *cobra.Command {
	var query []int

	cmd := &cobra.Command{
		Use:     "stats <expr>",
		Short:   "Print the odds of rolling any of the queried values",
		Example: `  dicetables stats "2*Die(6)" --query 7,11`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, args[0], func(ctx context.Context) error {
				diceTable, err := app.parser.ParseTable(args[0])
				if err != nil {
					return err
				}

				calc := diceTable.Calc(false)

				info, err := calc.Info(app.cfg.Stats.DecimalPlaces)
				if err != nil {
					return err
				}

				view := newStatsView(calc.StatsStrings(query, app.formatter), info)
				app.logger.DebugContext(ctx, "stats computed", "query", view.Query, "one_in", view.OneIn)

				return app.render(cmd.OutOrStdout(), view, func(w io.Writer) error {
					return app.writeStats(w, diceTable, view)
				})
			})
		},
	}

	cmd.Flags().IntSliceVarP(&query, "query", "q", nil, "values to query, comma separated")

	return cmd
}

func newStatsView(stats dicetables.StatsStrings, info dicetables.TableInfo) statsView {
	return statsView{
		Query:            stats.Query,
		QueryOccurrences: stats.QueryOccurrences,
		TotalOccurrences: stats.TotalOccurrences,
		OneIn:            stats.OneIn,
		Percentage:       stats.Percentage,
		Min:              info.Min,
		Max:              info.Max,
		Mean:             info.Mean,
		StdDev:           info.StdDev,
	}
}

func (a *App) writeStats(w io.Writer, diceTable *dicetables.DiceTable, view statsView) error {
	for _, entry := range diceTable.DiceList() {
		a.printHeader(w, "%s", entry.Die.MultiplyString(entry.Count))
	}

	tbl := newTable()
	tbl.AppendRows([]table.Row{
		{"Query", view.Query},
		{"Occurrences", view.QueryOccurrences + " of " + view.TotalOccurrences},
		{"One in", view.OneIn},
		{"Percent", view.Percentage + "%"},
		{"Range", fmt.Sprintf("%d to %d", view.Min, view.Max)},
		{"Mean", a.formatter.FormatFloat(view.Mean)},
		{"Stddev", a.formatter.FormatFloat(view.StdDev)},
	})

	_, err := fmt.Fprintln(w, tbl.Render())

	return err
}
