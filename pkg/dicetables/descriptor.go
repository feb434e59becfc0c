package dicetables

import (
	"cmp"
	"fmt"
	"math/big"

	"github.com/Sumatoshi-tech/dicetables/pkg/poolmath"
)

// Descriptor describes one kind of die. Implementations are immutable.
type Descriptor interface {
	// Size is the largest declared face of the underlying die.
	Size() int
	// Weight is 0 for unweighted dice, else the sum of the declared face weights.
	Weight() int
	// Distribution maps each outcome to its positive weight.
	Distribution() *Distribution
	// String is the canonical display text.
	String() string
	// MultiplyString is the display text for n of these dice.
	MultiplyString(n int) string
}

// Compare orders descriptors by size, weight, distribution items and then
// canonical text. It returns 0 only when all four agree.
func Compare(a, b Descriptor) int {
	if c := cmp.Compare(a.Size(), b.Size()); c != 0 {
		return c
	}

	if c := cmp.Compare(a.Weight(), b.Weight()); c != 0 {
		return c
	}

	if c := compareItems(a.Distribution().Items(), b.Distribution().Items()); c != 0 {
		return c
	}

	return cmp.Compare(a.String(), b.String())
}

// Equal reports whether a and b describe the same die. Dice with identical
// faces but different text are not equal.
func Equal(a, b Descriptor) bool {
	return Compare(a, b) == 0
}

// Key returns a string that is equal for two descriptors exactly when Equal is true.
func Key(d Descriptor) string {
	return fmt.Sprintf("%d|%d|%s|%s", d.Size(), d.Weight(), d.Distribution(), d.String())
}

// Must returns d, panicking if err is non-nil. For literals in tests and package vars.
func Must[T Descriptor](d T, err error) T {
	if err != nil {
		panic(err)
	}

	return d
}

// DistinctValueCount returns the number of distinct outcomes of d.
func DistinctValueCount(d Descriptor) int {
	return d.Distribution().Len()
}

// CountUniqueCombinationKeys bounds the number of distinct sorted rolls of
// poolSize copies of d, C(distinct+poolSize-1, poolSize). Pool construction
// cost grows with it.
func CountUniqueCombinationKeys(d Descriptor, poolSize int) *big.Int {
	return poolmath.KeyCount(DistinctValueCount(d), poolSize)
}

func compareItems(a, b []Item) int {
	for i := range min(len(a), len(b)) {
		if c := cmp.Compare(a[i].Value, b[i].Value); c != 0 {
			return c
		}

		if c := a[i].Occurrences.Cmp(b[i].Occurrences); c != 0 {
			return c
		}
	}

	return cmp.Compare(len(a), len(b))
}
