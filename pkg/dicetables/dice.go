package dicetables

import (
	"fmt"
	"maps"
	"math/big"
	"slices"
	"strconv"
	"strings"
)

// DefaultExplosions is the re-roll limit the parser uses when none is given.
const DefaultExplosions = 2

// Die is a fair die with faces 1..size.
type Die struct {
	size int
	dist *Distribution
}

// NewDie returns a die with faces 1..size.
func NewDie(size int) (*Die, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: die size %d must be at least 1", ErrInvalidDescriptor, size)
	}

	return &Die{size: size, dist: uniformFaces(size, 0)}, nil
}

// Size returns the number of faces.
func (d *Die) Size() int { return d.size }

// Weight is 0 for unweighted dice.
func (d *Die) Weight() int { return 0 }

// Distribution returns the outcomes of one roll.
func (d *Die) Distribution() *Distribution { return d.dist }

// String is MultiplyString(1).
func (d *Die) String() string { return d.MultiplyString(1) }

// MultiplyString describes n of the die, as in "3D6".
func (d *Die) MultiplyString(n int) string {
	return fmt.Sprintf("%dD%d", n, d.size)
}

// ModDie is a fair die with every face shifted by a modifier.
type ModDie struct {
	size     int
	modifier int
	dist     *Distribution
}

// NewModDie returns a die with faces 1+modifier..size+modifier.
func NewModDie(size, modifier int) (*ModDie, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: die size %d must be at least 1", ErrInvalidDescriptor, size)
	}

	return &ModDie{size: size, modifier: modifier, dist: uniformFaces(size, modifier)}, nil
}

// Modifier returns the shift applied to every face.
func (d *ModDie) Modifier() int { return d.modifier }

// Size returns the number of faces.
func (d *ModDie) Size() int { return d.size }

// Weight is 0 for unweighted dice.
func (d *ModDie) Weight() int { return 0 }

// Distribution returns the outcomes of one roll.
func (d *ModDie) Distribution() *Distribution { return d.dist }

// String is MultiplyString(1).
func (d *ModDie) String() string { return d.MultiplyString(1) }

// MultiplyString describes n of the die, as in "3D6-3", with the modifier scaled by n.
func (d *ModDie) MultiplyString(n int) string {
	return fmt.Sprintf("%dD%d%+d", n, d.size, n*d.modifier)
}

// WeightedDie is a die with an explicit weight per face.
//
// Size is the largest declared face, even when that face has weight 0.
type WeightedDie struct {
	weights map[int]int
	size    int
	weight  int
	dist    *Distribution
}

// NewWeightedDie returns a die whose face f comes up weights[f] times out of
// the sum of all weights. Faces start at 1; zero weights are allowed.
func NewWeightedDie(weights map[int]int) (*WeightedDie, error) {
	dist, size, weight, err := weightedFaces(weights, 0)
	if err != nil {
		return nil, err
	}

	return &WeightedDie{weights: maps.Clone(weights), size: size, weight: weight, dist: dist}, nil
}

// Weights returns a copy of the declared face weights.
func (d *WeightedDie) Weights() map[int]int { return maps.Clone(d.weights) }

// Size returns the largest declared face.
func (d *WeightedDie) Size() int { return d.size }

// Weight returns the sum of the declared face weights.
func (d *WeightedDie) Weight() int { return d.weight }

// Distribution returns the outcomes of one roll.
func (d *WeightedDie) Distribution() *Distribution { return d.dist }

// String is MultiplyString(1).
func (d *WeightedDie) String() string { return d.MultiplyString(1) }

// MultiplyString describes n of the die, as in "2D4  W:10".
func (d *WeightedDie) MultiplyString(n int) string {
	return fmt.Sprintf("%dD%d  W:%d", n, d.size, d.weight)
}

// ModWeightedDie is a weighted die with every face shifted by a modifier.
type ModWeightedDie struct {
	weights  map[int]int
	modifier int
	size     int
	weight   int
	dist     *Distribution
}

// NewModWeightedDie returns a weighted die shifted by modifier.
func NewModWeightedDie(weights map[int]int, modifier int) (*ModWeightedDie, error) {
	dist, size, weight, err := weightedFaces(weights, modifier)
	if err != nil {
		return nil, err
	}

	return &ModWeightedDie{
		weights:  maps.Clone(weights),
		modifier: modifier,
		size:     size,
		weight:   weight,
		dist:     dist,
	}, nil
}

// Weights returns a copy of the declared face weights before the shift.
func (d *ModWeightedDie) Weights() map[int]int { return maps.Clone(d.weights) }

// Modifier returns the shift applied to every face.
func (d *ModWeightedDie) Modifier() int { return d.modifier }

// Size returns the largest declared face.
func (d *ModWeightedDie) Size() int { return d.size }

// Weight returns the sum of the declared face weights.
func (d *ModWeightedDie) Weight() int { return d.weight }

// Distribution returns the outcomes of one roll.
func (d *ModWeightedDie) Distribution() *Distribution { return d.dist }

// String is MultiplyString(1).
func (d *ModWeightedDie) String() string { return d.MultiplyString(1) }

// MultiplyString describes n of the die, as in "2D4+2  W:10", with the modifier scaled by n.
func (d *ModWeightedDie) MultiplyString(n int) string {
	return fmt.Sprintf("%dD%d%+d  W:%d", n, d.size, n*d.modifier, d.weight)
}

// StrongDie multiplies every outcome of another die. A multiplier of 0
// collapses the die to a single outcome; a negative one mirrors it.
type StrongDie struct {
	base       Descriptor
	multiplier int
	dist       *Distribution
}

// NewStrongDie returns base with every outcome multiplied by multiplier.
func NewStrongDie(base Descriptor, multiplier int) (*StrongDie, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: strong die needs a base die", ErrInvalidDescriptor)
	}

	counts := map[int]*big.Int{}
	for _, item := range base.Distribution().Items() {
		addTo(counts, item.Value*multiplier, item.Occurrences)
	}

	return &StrongDie{base: base, multiplier: multiplier, dist: newFromCounts(counts)}, nil
}

// Base returns the wrapped die.
func (d *StrongDie) Base() Descriptor { return d.base }

// Multiplier returns the factor applied to each outcome.
func (d *StrongDie) Multiplier() int { return d.multiplier }

// Size returns the size of the base die.
func (d *StrongDie) Size() int { return d.base.Size() }

// Weight returns the weight of the base die.
func (d *StrongDie) Weight() int { return d.base.Weight() }

// Distribution returns the outcomes of one roll.
func (d *StrongDie) Distribution() *Distribution { return d.dist }

// String is MultiplyString(1).
func (d *StrongDie) String() string { return d.MultiplyString(1) }

// MultiplyString describes n of the die, as in "(3D6)X(2)".
func (d *StrongDie) MultiplyString(n int) string {
	return fmt.Sprintf("(%s)X(%d)", d.base.MultiplyString(n), d.multiplier)
}

// Exploding re-rolls and adds whenever an exploding face comes up, at most
// Explosions times. Dice built with NewExploding explode on their highest
// face; NewExplodingOn names the faces explicitly.
//
// The distribution total is T^(explosions+1) for a base die of total T, so
// every branch of the re-roll tree keeps its exact share.
type Exploding struct {
	base       Descriptor
	explodesOn []int
	explosions int
	onHighest  bool
	dist       *Distribution
}

// NewExploding returns base exploding on its highest outcome.
func NewExploding(base Descriptor, explosions int) (*Exploding, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: exploding die needs a base die", ErrInvalidDescriptor)
	}

	d, err := newExploding(base, []int{base.Distribution().Max()}, explosions)
	if err != nil {
		return nil, err
	}

	d.onHighest = true

	return d, nil
}

// NewExplodingOn returns base exploding on each of the given outcomes.
// Outcomes that never occur are ignored; at least one given outcome must
// occur and at least one occurring outcome must not explode.
func NewExplodingOn(base Descriptor, explodesOn []int, explosions int) (*Exploding, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: exploding die needs a base die", ErrInvalidDescriptor)
	}

	return newExploding(base, explodesOn, explosions)
}

func newExploding(base Descriptor, explodesOn []int, explosions int) (*Exploding, error) {
	if explosions < 0 {
		return nil, fmt.Errorf("%w: explosions %d must be non-negative", ErrInvalidDescriptor, explosions)
	}

	on := slices.Sorted(slices.Values(explodesOn))
	on = slices.Compact(on)

	baseDist := base.Distribution()

	var hot, cold []Item

	for _, item := range baseDist.Items() {
		if _, found := slices.BinarySearch(on, item.Value); found {
			hot = append(hot, item)
		} else {
			cold = append(cold, item)
		}
	}

	if len(hot) == 0 {
		return nil, fmt.Errorf("%w: %s never rolls an exploding face", ErrInvalidDescriptor, base)
	}

	if len(cold) == 0 {
		return nil, fmt.Errorf("%w: %s explodes on every face", ErrInvalidDescriptor, base)
	}

	return &Exploding{
		base:       base,
		explodesOn: on,
		explosions: explosions,
		dist:       explode(baseDist, hot, cold, explosions),
	}, nil
}

// explode walks the re-roll tree level by level. prefix holds the summed
// value of the exploding faces rolled so far. A non-exploding face at level
// l ends the branch and is scaled by T^(explosions-l); the last level ends
// every branch.
func explode(base *Distribution, hot, cold []Item, explosions int) *Distribution {
	total := base.TotalOccurrences()
	all := base.Items()

	prefix := map[int]*big.Int{0: big.NewInt(1)}
	result := map[int]*big.Int{}
	product := new(big.Int)

	for level := 0; level <= explosions; level++ {
		faces := cold
		scale := new(big.Int).Exp(total, big.NewInt(int64(explosions-level)), nil)

		if level == explosions {
			faces = all
		}

		for value, count := range prefix {
			for _, face := range faces {
				product.Mul(count, face.Occurrences)
				product.Mul(product, scale)
				addTo(result, value+face.Value, product)
			}
		}

		if level < explosions {
			prefix = convolvePairs(prefix, hot)
		}
	}

	return newFromCounts(result)
}

// Base returns the die being re-rolled.
func (d *Exploding) Base() Descriptor { return d.base }

// Explosions returns the maximum number of re-rolls.
func (d *Exploding) Explosions() int { return d.explosions }

// ExplodesOn returns the sorted outcomes that trigger a re-roll.
func (d *Exploding) ExplodesOn() []int { return slices.Clone(d.explodesOn) }

// Size returns the size of the base die.
func (d *Exploding) Size() int { return d.base.Size() }

// Weight returns the weight of the base die.
func (d *Exploding) Weight() int { return d.base.Weight() }

// Distribution returns the outcomes of one roll.
func (d *Exploding) Distribution() *Distribution { return d.dist }

// String is MultiplyString(1).
func (d *Exploding) String() string { return d.MultiplyString(1) }

// MultiplyString describes n of the die, as in "2D6: Explosions=2".
func (d *Exploding) MultiplyString(n int) string {
	text := fmt.Sprintf("%s: Explosions=%d", d.base.MultiplyString(n), d.explosions)
	if d.onHighest {
		return text
	}

	on := make([]string, 0, len(d.explodesOn))
	for _, value := range d.explodesOn {
		on = append(on, strconv.Itoa(value))
	}

	return text + " On: " + strings.Join(on, ", ")
}

func uniformFaces(size, modifier int) *Distribution {
	counts := make(map[int]*big.Int, size)
	for face := 1; face <= size; face++ {
		counts[face+modifier] = big.NewInt(1)
	}

	return newFromCounts(counts)
}

func weightedFaces(weights map[int]int, modifier int) (*Distribution, int, int, error) {
	size, total := 0, 0
	counts := make(map[int]*big.Int, len(weights))

	for face, weight := range weights {
		if face < 1 {
			return nil, 0, 0, fmt.Errorf("%w: face %d must be at least 1", ErrInvalidDescriptor, face)
		}

		if weight < 0 {
			return nil, 0, 0, fmt.Errorf("%w: face %d has negative weight %d", ErrInvalidDescriptor, face, weight)
		}

		size = max(size, face)
		total += weight
		counts[face+modifier] = big.NewInt(int64(weight))
	}

	if total == 0 {
		return nil, 0, 0, fmt.Errorf("%w: weighted die needs a positive weight", ErrInvalidDescriptor)
	}

	return newFromCounts(counts), size, total, nil
}
