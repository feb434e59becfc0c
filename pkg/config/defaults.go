package config

import (
	"github.com/Sumatoshi-tech/dicetables/pkg/limiter"
	"github.com/Sumatoshi-tech/dicetables/pkg/numfmt"
)

// Number format defaults.
const (
	DefaultShownDigits   = numfmt.DefaultShownDigits
	DefaultMaxCommaExp   = numfmt.DefaultMaxCommaExp
	DefaultMinFixedPtExp = numfmt.DefaultMinFixedPtExp
)

// Stats defaults.
const (
	DefaultDecimalPlaces = 4
	DefaultIncludeZeroes = false
)

// Limit defaults.
const (
	DefaultMaxSize       = limiter.DefaultMaxSize
	DefaultMaxExplosions = limiter.DefaultMaxExplosions
	DefaultMaxDice       = limiter.DefaultMaxDice
	DefaultMaxDiceTypes  = limiter.DefaultMaxDiceTypes
	DefaultMaxPoolDice   = limiter.DefaultMaxPoolDice
	DefaultMaxPoolKeys   = limiter.DefaultMaxPoolKeys
)

// Pool cache defaults.
const (
	DefaultCacheEnabled    = true
	DefaultCacheMaxEntries = 256
)

// Logging defaults.
const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)
