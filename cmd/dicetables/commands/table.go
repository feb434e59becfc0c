package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/dicetables/pkg/dicetables"
)

type diceView struct {
	Die   string `json:"die" yaml:"die"`
	Count int    `json:"count" yaml:"count"`
}

type rowView struct {
	Roll        int     `json:"roll" yaml:"roll"`
	Occurrences string  `json:"occurrences" yaml:"occurrences"`
	Percent     float64 `json:"percent" yaml:"percent"`
}

type tableView struct {
	Dice   []diceView `json:"dice" yaml:"dice"`
	Rows   []rowView  `json:"rows" yaml:"rows"`
	Total  string     `json:"total" yaml:"total"`
	Mean   float64    `json:"mean" yaml:"mean"`
	StdDev float64    `json:"stddev" yaml:"stddev"`
}

// NewTableCommand creates the table subcommand.
func NewTableCommand(app *App) *cobra.Command {
	var includeZeroes bool

	cmd := &cobra.Command{
		Use:   "table <expr>",
		Short: "Print the full outcome table of a sum of dice",
		Example: `  dicetables table "3*Die(6)"
  dicetables table "BestOfDicePool(Die(6), 4, 3) + ModDie(4, 1)" --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("include-zeroes") {
				includeZeroes = app.cfg.Stats.IncludeZeroes
			}

			return app.run(cmd, args[0], func(ctx context.Context) error {
				diceTable, err := app.parser.ParseTable(args[0])
				if err != nil {
					return err
				}

				app.logger.DebugContext(ctx, "table built",
					"dice", len(diceTable.DiceList()),
					"values", diceTable.Distribution().Len(),
				)

				view, err := app.tableView(diceTable, includeZeroes)
				if err != nil {
					return err
				}

				return app.render(cmd.OutOrStdout(), view, func(w io.Writer) error {
					return app.writeTable(w, diceTable, view)
				})
			})
		},
	}

	cmd.Flags().BoolVar(&includeZeroes, "include-zeroes", false, "list values with zero occurrences inside the range")

	return cmd
}

func (a *App) tableView(diceTable *dicetables.DiceTable, includeZeroes bool) (tableView, error) {
	calc := diceTable.Calc(includeZeroes)

	info, err := calc.Info(a.cfg.Stats.DecimalPlaces)
	if err != nil {
		return tableView{}, err
	}

	view := tableView{
		Total:  info.Total.String(),
		Mean:   info.Mean,
		StdDev: info.StdDev,
	}

	for _, entry := range diceTable.DiceList() {
		view.Dice = append(view.Dice, diceView{Die: entry.Die.String(), Count: entry.Count})
	}

	dist := diceTable.Distribution()
	for _, point := range calc.PercentagePointsExact() {
		view.Rows = append(view.Rows, rowView{
			Roll:        point.Value,
			Occurrences: dist.OccurrenceAt(point.Value).String(),
			Percent:     point.Y,
		})
	}

	return view, nil
}

func (a *App) writeTable(w io.Writer, diceTable *dicetables.DiceTable, view tableView) error {
	entries := diceTable.DiceList()
	if len(entries) == 0 {
		a.printHeader(w, "(no dice)")
	}

	for _, entry := range entries {
		a.printHeader(w, "%s", entry.Die.MultiplyString(entry.Count))
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Roll", "Occurrences", "Percent"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	dist := diceTable.Distribution()
	for _, row := range view.Rows {
		tbl.AppendRow(table.Row{
			row.Roll,
			a.formatter.FormatInt(dist.OccurrenceAt(row.Roll)),
			a.formatter.FormatFloat(row.Percent),
		})
	}

	tbl.AppendFooter(table.Row{
		"Total",
		a.formatter.FormatInt(dist.TotalOccurrences()),
		"mean " + strconv.FormatFloat(view.Mean, 'f', -1, 64) + ", sd " + strconv.FormatFloat(view.StdDev, 'f', -1, 64),
	})

	_, err := fmt.Fprintln(w, tbl.Render())

	return err
}
