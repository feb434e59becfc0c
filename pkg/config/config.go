// Package config provides configuration loading and validation for the
// dicetables CLI.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/dicetables/pkg/limiter"
	"github.com/Sumatoshi-tech/dicetables/pkg/numfmt"
)

// Sentinel validation errors.
var (
	ErrInvalidDecimalPlaces = errors.New("stats decimal places must be between 0 and 15")
	ErrInvalidCacheSize     = errors.New("cache max entries must be positive")
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrInvalidLogFormat     = errors.New("invalid log format")
)

const maxDecimalPlaces = 15

// Config holds all configuration for the dicetables CLI.
type Config struct {
	Format  FormatConfig  `mapstructure:"format"`
	Stats   StatsConfig   `mapstructure:"stats"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// FormatConfig holds number formatting settings.
type FormatConfig struct {
	ShownDigits   int `mapstructure:"shown_digits"`
	MaxCommaExp   int `mapstructure:"max_comma_exp"`
	MinFixedPtExp int `mapstructure:"min_fixed_pt_exp"`
}

// StatsConfig holds statistics settings.
type StatsConfig struct {
	DecimalPlaces int  `mapstructure:"decimal_places"`
	IncludeZeroes bool `mapstructure:"include_zeroes"`
}

// LimitsConfig holds the cost limits applied to parsed input.
type LimitsConfig struct {
	MaxPoolKeys   int64 `mapstructure:"max_pool_keys"`
	MaxSize       int   `mapstructure:"max_size"`
	MaxExplosions int   `mapstructure:"max_explosions"`
	MaxDice       int   `mapstructure:"max_dice"`
	MaxDiceTypes  int   `mapstructure:"max_dice_types"`
	MaxPoolDice   int   `mapstructure:"max_pool_dice"`
}

// CacheConfig holds pool cache settings.
type CacheConfig struct {
	MaxEntries int  `mapstructure:"max_entries"`
	Enabled    bool `mapstructure:"enabled"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Formatter returns the number formatter described by the format section.
func (c *Config) Formatter() (numfmt.Formatter, error) {
	return numfmt.New(c.Format.ShownDigits, c.Format.MaxCommaExp, c.Format.MinFixedPtExp)
}

// LimiterLimits converts the limits section.
func (c *Config) LimiterLimits() limiter.Limits {
	return limiter.Limits{
		MaxSize:       c.Limits.MaxSize,
		MaxExplosions: c.Limits.MaxExplosions,
		MaxDice:       c.Limits.MaxDice,
		MaxDiceTypes:  c.Limits.MaxDiceTypes,
		MaxPoolDice:   c.Limits.MaxPoolDice,
		MaxPoolKeys:   c.Limits.MaxPoolKeys,
	}
}

// LoadConfig loads configuration from file and environment variables.
// An empty path searches the working directory, ./config and
// $HOME/.config/dicetables for dicetables.yaml; a missing file is not an
// error in that case.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("dicetables")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("$HOME/.config/dicetables")
	}

	viperCfg.SetEnvPrefix("DICETABLES")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("format.shown_digits", DefaultShownDigits)
	viperCfg.SetDefault("format.max_comma_exp", DefaultMaxCommaExp)
	viperCfg.SetDefault("format.min_fixed_pt_exp", DefaultMinFixedPtExp)

	viperCfg.SetDefault("stats.decimal_places", DefaultDecimalPlaces)
	viperCfg.SetDefault("stats.include_zeroes", DefaultIncludeZeroes)

	viperCfg.SetDefault("limits.max_size", DefaultMaxSize)
	viperCfg.SetDefault("limits.max_explosions", DefaultMaxExplosions)
	viperCfg.SetDefault("limits.max_dice", DefaultMaxDice)
	viperCfg.SetDefault("limits.max_dice_types", DefaultMaxDiceTypes)
	viperCfg.SetDefault("limits.max_pool_dice", DefaultMaxPoolDice)
	viperCfg.SetDefault("limits.max_pool_keys", DefaultMaxPoolKeys)

	viperCfg.SetDefault("cache.enabled", DefaultCacheEnabled)
	viperCfg.SetDefault("cache.max_entries", DefaultCacheMaxEntries)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)
}

func validateConfig(config *Config) error {
	if _, err := config.Formatter(); err != nil {
		return err
	}

	if config.Stats.DecimalPlaces < 0 || config.Stats.DecimalPlaces > maxDecimalPlaces {
		return fmt.Errorf("%w: %d", ErrInvalidDecimalPlaces, config.Stats.DecimalPlaces)
	}

	if _, err := limiter.New(config.LimiterLimits()); err != nil {
		return err
	}

	if config.Cache.Enabled && config.Cache.MaxEntries <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, config.Cache.MaxEntries)
	}

	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	switch strings.ToLower(config.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	return nil
}
