// Package limiter rejects dice requests whose computation cost would be too
// high, before any distribution is built.
package limiter

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Sumatoshi-tech/dicetables/pkg/dicetables"
)

// Default limits.
const (
	// DefaultMaxSize is the largest die size accepted.
	DefaultMaxSize = 500

	// DefaultMaxExplosions is the largest re-roll count accepted.
	DefaultMaxExplosions = 10

	// DefaultMaxDice is the largest total number of dice in one table.
	DefaultMaxDice = 6000

	// DefaultMaxDiceTypes is the largest number of distinct dice in one table.
	DefaultMaxDiceTypes = 10

	// DefaultMaxPoolKeys bounds C(distinct+n-1, n) for any pool.
	// Around this size a pool takes on the order of a second to build.
	DefaultMaxPoolKeys = 600_000

	// DefaultMaxPoolDice is the largest pool size accepted. Building a pool
	// grows with the square of its size even when it has few keys.
	DefaultMaxPoolDice = 200
)

// maxPoolSearch caps MaxPoolSize for dice whose key count never grows.
const maxPoolSearch = 1 << 20

// Limiter errors.
var (
	ErrInvalidLimits     = errors.New("limits must be positive")
	ErrDieTooBig         = errors.New("die size exceeds limit")
	ErrTooManyDice       = errors.New("dice count exceeds limit")
	ErrTooManyTypes      = errors.New("number of dice types exceeds limit")
	ErrPoolTooBig        = errors.New("dice pool exceeds key count limit")
	ErrPoolTooLarge      = errors.New("dice pool size exceeds limit")
	ErrTooManyExplosions = errors.New("explosions exceed limit")
)

// Limits holds the accepted maxima.
type Limits struct {
	MaxSize       int
	MaxExplosions int
	MaxDice       int
	MaxDiceTypes  int
	MaxPoolDice   int
	MaxPoolKeys   int64
}

// DefaultLimits returns the default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxSize:       DefaultMaxSize,
		MaxExplosions: DefaultMaxExplosions,
		MaxDice:       DefaultMaxDice,
		MaxDiceTypes:  DefaultMaxDiceTypes,
		MaxPoolDice:   DefaultMaxPoolDice,
		MaxPoolKeys:   DefaultMaxPoolKeys,
	}
}

// Limiter checks descriptors and tables against Limits.
type Limiter struct {
	limits Limits
}

// New returns a limiter enforcing limits.
func New(limits Limits) (*Limiter, error) {
	if limits.MaxSize < 1 || limits.MaxExplosions < 0 || limits.MaxDice < 1 ||
		limits.MaxDiceTypes < 1 || limits.MaxPoolDice < 1 || limits.MaxPoolKeys < 1 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidLimits, limits)
	}

	return &Limiter{limits: limits}, nil
}

// Limits returns the enforced limits.
func (l *Limiter) Limits() Limits {
	return l.limits
}

// CheckDescriptor checks d and every die nested inside it.
func (l *Limiter) CheckDescriptor(d dicetables.Descriptor) error {
	switch die := d.(type) {
	case *dicetables.StrongDie:
		return l.CheckDescriptor(die.Base())
	case *dicetables.Exploding:
		err := l.CheckExplosions(die.Explosions())
		if err != nil {
			return err
		}

		return l.CheckDescriptor(die.Base())
	case *dicetables.DicePool:
		return l.CheckPool(die.Base(), die.PoolSize())
	default:
		return l.CheckSize(d.Size())
	}
}

// CheckSize checks a die size before the die is built.
func (l *Limiter) CheckSize(size int) error {
	if size > l.limits.MaxSize {
		return fmt.Errorf("%w: %d > %d", ErrDieTooBig, size, l.limits.MaxSize)
	}

	return nil
}

// CheckExplosions checks a re-roll count before the die is built.
func (l *Limiter) CheckExplosions(explosions int) error {
	if explosions > l.limits.MaxExplosions {
		return fmt.Errorf("%w: %d > %d", ErrTooManyExplosions, explosions, l.limits.MaxExplosions)
	}

	return nil
}

// CheckPool checks a pool of poolSize copies of base before it is built.
func (l *Limiter) CheckPool(base dicetables.Descriptor, poolSize int) error {
	err := l.CheckDescriptor(base)
	if err != nil {
		return err
	}

	if poolSize > l.limits.MaxPoolDice {
		return fmt.Errorf("%w: %d > %d", ErrPoolTooLarge, poolSize, l.limits.MaxPoolDice)
	}

	keys := dicetables.CountUniqueCombinationKeys(base, poolSize)
	if keys.Cmp(big.NewInt(l.limits.MaxPoolKeys)) > 0 {
		return fmt.Errorf("%w: %d of %s has %s keys > %d", ErrPoolTooBig, poolSize, base, keys, l.limits.MaxPoolKeys)
	}

	return nil
}

// CheckTable checks the number of dice and dice types, then each die.
func (l *Limiter) CheckTable(entries []dicetables.RecordEntry) error {
	if len(entries) > l.limits.MaxDiceTypes {
		return fmt.Errorf("%w: %d > %d", ErrTooManyTypes, len(entries), l.limits.MaxDiceTypes)
	}

	total := 0

	for _, entry := range entries {
		total += entry.Count
		if total > l.limits.MaxDice {
			return fmt.Errorf("%w: more than %d", ErrTooManyDice, l.limits.MaxDice)
		}

		err := l.CheckDescriptor(entry.Die)
		if err != nil {
			return err
		}
	}

	return nil
}

// PoolLimit returns the largest pool of d that CheckPool accepts.
func (l *Limiter) PoolLimit(d dicetables.Descriptor) (int, error) {
	return l.PoolLimitWithin(d, l.limits.MaxPoolKeys)
}

// PoolLimitWithin is PoolLimit with maxKeys in place of the key budget.
// The result never exceeds MaxPoolDice.
func (l *Limiter) PoolLimitWithin(d dicetables.Descriptor, maxKeys int64) (int, error) {
	n, err := MaxPoolSize(d, maxKeys)
	if err != nil {
		return 0, err
	}

	return min(n, l.limits.MaxPoolDice), nil
}

// MaxPoolSize returns the largest pool size n for which
// CountUniqueCombinationKeys(d, n) stays within maxKeys. Dice with a single
// outcome never grow and report the search cap.
func MaxPoolSize(d dicetables.Descriptor, maxKeys int64) (int, error) {
	if maxKeys < 1 {
		return 0, fmt.Errorf("%w: budget %d", ErrPoolTooBig, maxKeys)
	}

	budget := big.NewInt(maxKeys)
	fits := func(n int) bool {
		return dicetables.CountUniqueCombinationKeys(d, n).Cmp(budget) <= 0
	}

	// Exponential probe, then binary search on (low, high].
	low, high := 0, 1
	for fits(high) {
		low = high
		if high >= maxPoolSearch {
			return maxPoolSearch, nil
		}

		high = min(high*2, maxPoolSearch)
	}

	for high-low > 1 {
		mid := low + (high-low)/2
		if fits(mid) {
			low = mid
		} else {
			high = mid
		}
	}

	return low, nil
}
