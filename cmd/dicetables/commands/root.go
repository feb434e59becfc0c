// Package commands implements the dicetables CLI subcommands.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/dicetables/pkg/config"
	"github.com/Sumatoshi-tech/dicetables/pkg/limiter"
	"github.com/Sumatoshi-tech/dicetables/pkg/numfmt"
	"github.com/Sumatoshi-tech/dicetables/pkg/observability"
	"github.com/Sumatoshi-tech/dicetables/pkg/parser"
	"github.com/Sumatoshi-tech/dicetables/pkg/poolmath"
	"github.com/Sumatoshi-tech/dicetables/pkg/version"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// ErrInvalidOutput is returned for an unknown --output value.
var ErrInvalidOutput = errors.New("output must be text, json or yaml")

// App carries the state shared by all subcommands. It is filled in by the
// root command before any subcommand runs.
type App struct {
	configPath string
	output     string
	verbose    bool
	noColor    bool

	cfg       *config.Config
	limiter   *limiter.Limiter
	cache     *poolmath.Cache
	parser    *parser.Parser
	formatter numfmt.Formatter
	logger    *slog.Logger
	header    *color.Color
}

// NewRootCommand builds the dicetables command tree.
func NewRootCommand() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   "dicetables",
		Short: "Exact probability tables for dice",
		Long: `dicetables computes exact outcome distributions for sums of dice.

Dice are written as constructor calls, for example:
  Die(6)
  ModDie(4, -1)
  WeightedDie({1: 2, 2: 1})
  StrongDie(Die(6), 2)
  ExplodingOn(Die(10), (9, 10), explosions=3)
  BestOfDicePool(Die(6), 4, 3)

Tables are sums of counted dice: "3*Die(6) + ModDie(4, 1)".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			app.logCacheStats(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "config file (default: ./dicetables.yaml if present)")
	flags.StringVarP(&app.output, "output", "o", OutputText, "output format: text, json or yaml")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&app.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewTableCommand(app))
	rootCmd.AddCommand(NewStatsCommand(app))
	rootCmd.AddCommand(NewPoolLimitCommand(app))
	rootCmd.AddCommand(NewVersionCommand(app))

	return rootCmd
}

func (a *App) setup(cmd *cobra.Command) error {
	if !slices.Contains([]string{OutputText, OutputJSON, OutputYAML}, a.output) {
		return fmt.Errorf("%w: %q", ErrInvalidOutput, a.output)
	}

	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	if a.verbose {
		level = slog.LevelDebug
	}

	a.logger = observability.NewLogger(observability.Config{
		Output:         cmd.ErrOrStderr(),
		ServiceName:    "dicetables",
		ServiceVersion: version.Version,
		LogLevel:       level,
		LogJSON:        cfg.Logging.Format == "json",
	})
	slog.SetDefault(a.logger)

	a.formatter, err = cfg.Formatter()
	if err != nil {
		return err
	}

	a.limiter, err = limiter.New(cfg.LimiterLimits())
	if err != nil {
		return err
	}

	opts := []parser.Option{parser.WithLimiter(a.limiter)}

	if cfg.Cache.Enabled {
		a.cache = poolmath.NewCache(cfg.Cache.MaxEntries)
		opts = append(opts, parser.WithCache(a.cache))
	}

	a.parser = parser.New(opts...)
	a.cfg = cfg

	a.header = color.New(color.Bold, color.FgCyan)
	if a.noColor {
		a.header.DisableColor()
	}

	a.logger.DebugContext(cmd.Context(), "configuration loaded",
		slog.String("command", cmd.Name()),
		slog.String("output", a.output),
		slog.Any("limits", cfg.LimiterLimits()),
	)

	return nil
}

func (a *App) logCacheStats(cmd *cobra.Command) {
	if a.cache == nil || a.logger == nil {
		return
	}

	stats := a.cache.Stats()
	a.logger.DebugContext(cmd.Context(), "pool cache",
		slog.Int64("hits", stats.Hits),
		slog.Int64("misses", stats.Misses),
		slog.Int("entries", stats.Entries),
	)
}
