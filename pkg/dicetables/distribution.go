// Package dicetables computes exact frequency distributions for sums of
// independent dice and the statistics derived from them.
//
// A Distribution maps integer outcomes to arbitrary-precision occurrence
// counts. Dice are described by Descriptor values; a DiceTable pairs a
// Distribution with the DiceRecord of dice combined into it. All public
// types are immutable: operations return new values.
package dicetables

import (
	"fmt"
	"maps"
	"math/big"
	"slices"
	"strings"
)

// Flattened-list convolution wins while each distinct addend value repeats
// fewer than flattenRatioNum/flattenRatioDen times on average.
const (
	flattenRatioNum = 7
	flattenRatioDen = 5
)

// maxFlattenedLen caps the expanded addend; heavier addends use pairs.
const maxFlattenedLen = 1 << 16

// Item is one outcome of a distribution and how often it occurs.
type Item struct {
	Value       int
	Occurrences *big.Int
}

// Distribution is an immutable mapping from outcome to occurrence count.
// Outcomes with zero occurrences are never stored.
type Distribution struct {
	counts map[int]*big.Int
	values []int
	total  *big.Int
}

// Identity returns the distribution {0: 1}, the starting point of every table.
func Identity() *Distribution {
	return newFromCounts(map[int]*big.Int{0: big.NewInt(1)})
}

// NewDistribution builds a distribution from small counts. Zero counts are
// dropped; negative counts are rejected.
func NewDistribution(seed map[int]int) (*Distribution, error) {
	counts := make(map[int]*big.Int, len(seed))

	for value, count := range seed {
		if count < 0 {
			return nil, fmt.Errorf("%w: %d at %d", ErrNegativeOccurrence, count, value)
		}

		counts[value] = big.NewInt(int64(count))
	}

	return newFromCounts(counts), nil
}

// NewBigDistribution builds a distribution from arbitrary-precision counts.
// The counts are copied.
func NewBigDistribution(seed map[int]*big.Int) (*Distribution, error) {
	counts := make(map[int]*big.Int, len(seed))

	for value, count := range seed {
		if count.Sign() < 0 {
			return nil, fmt.Errorf("%w: %s at %d", ErrNegativeOccurrence, count, value)
		}

		counts[value] = new(big.Int).Set(count)
	}

	return newFromCounts(counts), nil
}

// MustDistribution is NewDistribution for literal seeds. Panics on invalid input.
func MustDistribution(seed map[int]int) *Distribution {
	d, err := NewDistribution(seed)
	if err != nil {
		panic(err)
	}

	return d
}

// newFromCounts takes ownership of counts.
func newFromCounts(counts map[int]*big.Int) *Distribution {
	total := new(big.Int)

	for value, count := range counts {
		if count.Sign() == 0 {
			delete(counts, value)

			continue
		}

		total.Add(total, count)
	}

	return &Distribution{
		counts: counts,
		values: slices.Sorted(maps.Keys(counts)),
		total:  total,
	}
}

// TotalOccurrences returns the sum of all occurrence counts.
func (d *Distribution) TotalOccurrences() *big.Int {
	return new(big.Int).Set(d.total)
}

// Values returns the sorted outcomes with non-zero occurrences.
func (d *Distribution) Values() []int {
	return slices.Clone(d.values)
}

// Len returns the number of distinct outcomes.
func (d *Distribution) Len() int {
	return len(d.values)
}

// Min returns the smallest outcome, or 0 for an empty distribution.
func (d *Distribution) Min() int {
	if len(d.values) == 0 {
		return 0
	}

	return d.values[0]
}

// Max returns the largest outcome, or 0 for an empty distribution.
func (d *Distribution) Max() int {
	if len(d.values) == 0 {
		return 0
	}

	return d.values[len(d.values)-1]
}

// OccurrenceAt returns the occurrences of value, 0 if absent.
func (d *Distribution) OccurrenceAt(value int) *big.Int {
	count, ok := d.counts[value]
	if !ok {
		return new(big.Int)
	}

	return new(big.Int).Set(count)
}

// OccurrenceRange returns the occurrences of every value in [start, stop).
func (d *Distribution) OccurrenceRange(start, stop int) []*big.Int {
	if stop <= start {
		return nil
	}

	out := make([]*big.Int, 0, stop-start)
	for value := start; value < stop; value++ {
		out = append(out, d.OccurrenceAt(value))
	}

	return out
}

// HighestOccurrence returns the first outcome, in ascending order, with the
// largest occurrence count.
func (d *Distribution) HighestOccurrence() (int, *big.Int) {
	best := 0
	bestCount := new(big.Int)

	for _, value := range d.values {
		if d.counts[value].Cmp(bestCount) > 0 {
			best = value
			bestCount = d.counts[value]
		}
	}

	return best, new(big.Int).Set(bestCount)
}

// Items returns the outcomes and counts in ascending order of outcome.
func (d *Distribution) Items() []Item {
	items := make([]Item, 0, len(d.values))
	for _, value := range d.values {
		items = append(items, Item{Value: value, Occurrences: new(big.Int).Set(d.counts[value])})
	}

	return items
}

// AllItemsIncludingZeroes returns an item for every outcome from Min to Max,
// with zero counts filled in.
func (d *Distribution) AllItemsIncludingZeroes() []Item {
	if len(d.values) == 0 {
		return nil
	}

	items := make([]Item, 0, d.Max()-d.Min()+1)
	for value := d.Min(); value <= d.Max(); value++ {
		items = append(items, Item{Value: value, Occurrences: d.OccurrenceAt(value)})
	}

	return items
}

// Map returns a copy of the distribution as a plain map.
func (d *Distribution) Map() map[int]*big.Int {
	out := make(map[int]*big.Int, len(d.counts))
	for value, count := range d.counts {
		out[value] = new(big.Int).Set(count)
	}

	return out
}

// Equal reports whether both distributions hold the same outcomes and counts.
func (d *Distribution) Equal(other *Distribution) bool {
	if len(d.values) != len(other.values) {
		return false
	}

	for _, value := range d.values {
		count, ok := other.counts[value]
		if !ok || count.Cmp(d.counts[value]) != 0 {
			return false
		}
	}

	return true
}

// String renders the distribution as {value: count, ...}.
func (d *Distribution) String() string {
	parts := make([]string, 0, len(d.values))
	for _, value := range d.values {
		parts = append(parts, fmt.Sprintf("%d: %s", value, d.counts[value]))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// Combine returns the distribution of this one summed with times independent
// copies of addend. Picks the faster convolution strategy for the addend.
func (d *Distribution) Combine(addend *Distribution, times int) (*Distribution, error) {
	err := validateAddend(addend, times)
	if err != nil {
		return nil, err
	}

	if prefersFlattenedList(addend) {
		return d.combineFlattened(addend, times), nil
	}

	return d.combinePairs(addend, times), nil
}

// CombineByFlattenedList is Combine forced to expand the addend into one
// entry per unit of weight. Addends whose total weight exceeds 65536 are
// convolved over pairs instead, with the same result.
func (d *Distribution) CombineByFlattenedList(addend *Distribution, times int) (*Distribution, error) {
	err := validateAddend(addend, times)
	if err != nil {
		return nil, err
	}

	return d.combineFlattened(addend, times), nil
}

// CombineByPairs is Combine forced to convolve over (value, weight) pairs.
func (d *Distribution) CombineByPairs(addend *Distribution, times int) (*Distribution, error) {
	err := validateAddend(addend, times)
	if err != nil {
		return nil, err
	}

	return d.combinePairs(addend, times), nil
}

// Remove undoes Combine(addend, times) by deconvolution.
//
// Remove does not check that addend was ever combined in. Removing a
// distribution that was not added, or removing it more times than it was
// added, yields a meaningless result without an error. Use DiceTable.RemoveDie
// for a checked removal.
func (d *Distribution) Remove(addend *Distribution, times int) (*Distribution, error) {
	err := validateAddend(addend, times)
	if err != nil {
		return nil, err
	}

	acc := d.Map()
	items := addend.Items()

	for range times {
		acc = deconvolve(acc, items)
	}

	return newFromCounts(acc), nil
}

func validateAddend(addend *Distribution, times int) error {
	if times < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeTimes, times)
	}

	if addend == nil || addend.total.Sign() == 0 {
		return ErrEmptyAddend
	}

	return nil
}

// prefersFlattenedList reports whether total/distinct < 1.4 for the addend.
func prefersFlattenedList(addend *Distribution) bool {
	lhs := new(big.Int).Mul(addend.total, big.NewInt(flattenRatioDen))
	rhs := big.NewInt(int64(len(addend.values) * flattenRatioNum))

	return lhs.Cmp(rhs) < 0
}

func (d *Distribution) combineFlattened(addend *Distribution, times int) *Distribution {
	if !fitsFlattened(addend) {
		return d.combinePairs(addend, times)
	}

	flat := make([]int, 0, len(addend.values))

	for _, value := range addend.values {
		for range addend.counts[value].Int64() {
			flat = append(flat, value)
		}
	}

	acc := d.Map()
	for range times {
		acc = convolveFlattened(acc, flat)
	}

	return newFromCounts(acc)
}

func fitsFlattened(addend *Distribution) bool {
	return addend.total.IsInt64() && addend.total.Int64() <= maxFlattenedLen
}

func (d *Distribution) combinePairs(addend *Distribution, times int) *Distribution {
	items := addend.Items()

	acc := d.Map()
	for range times {
		acc = convolvePairs(acc, items)
	}

	return newFromCounts(acc)
}

func convolveFlattened(current map[int]*big.Int, flat []int) map[int]*big.Int {
	out := make(map[int]*big.Int, len(current)+len(flat))

	for value, count := range current {
		for _, addValue := range flat {
			addTo(out, value+addValue, count)
		}
	}

	return out
}

func convolvePairs(current map[int]*big.Int, items []Item) map[int]*big.Int {
	out := make(map[int]*big.Int, len(current)+len(items))
	product := new(big.Int)

	for value, count := range current {
		for _, item := range items {
			product.Mul(count, item.Occurrences)
			addTo(out, value+item.Value, product)
		}
	}

	return out
}

func addTo(acc map[int]*big.Int, key int, amount *big.Int) {
	existing, ok := acc[key]
	if !ok {
		acc[key] = new(big.Int).Set(amount)

		return
	}

	existing.Add(existing, amount)
}

// deconvolve solves current = result * addend for result, walking upward from
// the smallest outcome:
//
//	result[v] = (current[v+a0] - sum_{i>0} result[v-(a_i-a0)] * w_i) / w0
func deconvolve(current map[int]*big.Int, items []Item) map[int]*big.Int {
	result := map[int]*big.Int{}
	if len(current) == 0 {
		return result
	}

	lowest, highest := keyBounds(current)
	first := items[0]
	last := items[len(items)-1]

	term := new(big.Int)

	for value := lowest - first.Value; value <= highest-last.Value; value++ {
		numerator := new(big.Int)
		if count, ok := current[value+first.Value]; ok {
			numerator.Set(count)
		}

		for _, item := range items[1:] {
			prior, ok := result[value-(item.Value-first.Value)]
			if !ok {
				continue
			}

			term.Mul(prior, item.Occurrences)
			numerator.Sub(numerator, term)
		}

		numerator.Quo(numerator, first.Occurrences)
		if numerator.Sign() != 0 {
			result[value] = numerator
		}
	}

	return result
}

func keyBounds(m map[int]*big.Int) (int, int) {
	first := true
	lowest, highest := 0, 0

	for key := range m {
		if first {
			lowest, highest = key, key
			first = false

			continue
		}

		lowest = min(lowest, key)
		highest = max(highest, key)
	}

	return lowest, highest
}
