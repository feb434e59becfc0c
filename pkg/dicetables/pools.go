package dicetables

import (
	"fmt"
	"math/big"

	"github.com/Sumatoshi-tech/dicetables/pkg/poolmath"
)

// DicePool rolls PoolSize copies of a base die, sorts them and keeps Select
// of them according to its policy. The distribution is computed once, at
// construction.
type DicePool struct {
	base     Descriptor
	poolSize int
	selected int
	policy   poolmath.Policy
	dist     *Distribution
}

// PoolOption configures pool construction.
type PoolOption func(*poolOptions)

type poolOptions struct {
	cache *poolmath.Cache
}

// WithCache shares computed pool distributions through c.
func WithCache(c *poolmath.Cache) PoolOption {
	return func(o *poolOptions) {
		o.cache = c
	}
}

// NewDicePool returns the pool of poolSize copies of base keeping selectCount
// of them chosen by policy.
func NewDicePool(base Descriptor, poolSize, selectCount int, policy poolmath.Policy, opts ...PoolOption) (*DicePool, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: pool needs a base die", ErrInvalidPool)
	}

	start, stop, err := poolmath.Window(policy, poolSize, selectCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPool, err)
	}

	var options poolOptions
	for _, opt := range opts {
		opt(&options)
	}

	compute := func() (map[int]*big.Int, error) {
		return poolmath.Distribution(poolFaces(base), poolSize, start, stop)
	}

	var counts map[int]*big.Int

	if options.cache != nil {
		key := poolmath.CacheKey{Base: Key(base), PoolSize: poolSize, Start: start, Stop: stop}
		counts, err = options.cache.GetOrCompute(key, compute)
	} else {
		counts, err = compute()
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPool, err)
	}

	dist, err := NewBigDistribution(counts)
	if err != nil {
		return nil, err
	}

	return &DicePool{
		base:     base,
		poolSize: poolSize,
		selected: selectCount,
		policy:   policy,
		dist:     dist,
	}, nil
}

// NewBestOfDicePool keeps the selectCount highest dice.
func NewBestOfDicePool(base Descriptor, poolSize, selectCount int, opts ...PoolOption) (*DicePool, error) {
	return NewDicePool(base, poolSize, selectCount, poolmath.Best, opts...)
}

// NewWorstOfDicePool keeps the selectCount lowest dice.
func NewWorstOfDicePool(base Descriptor, poolSize, selectCount int, opts ...PoolOption) (*DicePool, error) {
	return NewDicePool(base, poolSize, selectCount, poolmath.Worst, opts...)
}

// NewUpperMidOfDicePool keeps the middle selectCount dice, leaning high when
// the rest cannot be split evenly.
func NewUpperMidOfDicePool(base Descriptor, poolSize, selectCount int, opts ...PoolOption) (*DicePool, error) {
	return NewDicePool(base, poolSize, selectCount, poolmath.UpperMid, opts...)
}

// NewLowerMidOfDicePool keeps the middle selectCount dice, leaning low when
// the rest cannot be split evenly.
func NewLowerMidOfDicePool(base Descriptor, poolSize, selectCount int, opts ...PoolOption) (*DicePool, error) {
	return NewDicePool(base, poolSize, selectCount, poolmath.LowerMid, opts...)
}

// Base returns the pooled die.
func (p *DicePool) Base() Descriptor { return p.base }

// PoolSize returns the number of dice rolled.
func (p *DicePool) PoolSize() int { return p.poolSize }

// Select returns the number of dice kept.
func (p *DicePool) Select() int { return p.selected }

// Policy returns the selection policy.
func (p *DicePool) Policy() poolmath.Policy { return p.policy }

// Size returns the size of the pooled die.
func (p *DicePool) Size() int { return p.base.Size() }

// Weight returns the weight of the pooled die.
func (p *DicePool) Weight() int { return p.base.Weight() }

// Distribution returns the distribution of the selected sum.
func (p *DicePool) Distribution() *Distribution { return p.dist }

// String describes the pool, as in "Best 3 of 4D6".
func (p *DicePool) String() string {
	return fmt.Sprintf("%s %d of %s", p.policy, p.selected, p.base.MultiplyString(p.poolSize))
}

// MultiplyString describes n independent pools; one pool is its String.
func (p *DicePool) MultiplyString(n int) string {
	if n == 1 {
		return p.String()
	}

	return fmt.Sprintf("%d*(%s)", n, p)
}

func poolFaces(d Descriptor) []poolmath.Face {
	items := d.Distribution().Items()

	faces := make([]poolmath.Face, 0, len(items))
	for _, item := range items {
		faces = append(faces, poolmath.Face{Value: item.Value, Weight: item.Occurrences})
	}

	return faces
}
