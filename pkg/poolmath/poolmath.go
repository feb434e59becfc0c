// Package poolmath computes the distributions of dice pools: roll n identical
// dice, sort the results ascending and sum a contiguous window of them
// ("best 3 of 4", "worst 2 of 5", the middle k, ...).
//
// Every non-decreasing sequence of n faces stands for n!/Π(run!) orderings,
// each weighted by the product of its faces' weights. Distribution groups the
// sequences by how many copies of each face they contain, which gives the
// same sums as enumerating them one by one without materialising them.
package poolmath

import (
	"errors"
	"fmt"
	"math/big"
	"slices"
)

var (
	// ErrInvalidSelect is returned when the select count is outside [0, pool size].
	ErrInvalidSelect = errors.New("poolmath: select count must be within [0, pool size]")

	// ErrInvalidPoolSize is returned for a negative pool size.
	ErrInvalidPoolSize = errors.New("poolmath: pool size must be non-negative")

	// ErrInvalidPolicy is returned for an unknown selection policy.
	ErrInvalidPolicy = errors.New("poolmath: unknown selection policy")

	// ErrInvalidWindow is returned when a window does not fit inside the pool.
	ErrInvalidWindow = errors.New("poolmath: window must satisfy 0 <= start <= stop <= pool size")

	// ErrInvalidFaces is returned when faces are empty, repeated or not positively weighted.
	ErrInvalidFaces = errors.New("poolmath: faces must be distinct with positive weights")
)

// Policy selects which sorted window of the pool is summed.
type Policy int

// Selection policies.
const (
	Best Policy = iota + 1
	Worst
	UpperMid
	LowerMid
)

// String returns the policy name used in pool display text.
func (p Policy) String() string {
	switch p {
	case Best:
		return "Best"
	case Worst:
		return "Worst"
	case UpperMid:
		return "UpperMid"
	case LowerMid:
		return "LowerMid"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Face is one distinct outcome of the pooled die and its weight.
type Face struct {
	Value  int
	Weight *big.Int
}

// Window returns the [start, stop) indices, into the ascending-sorted pool,
// that policy selects when keeping selectCount of poolSize dice.
// The middle policies centre the window; when the discarded dice cannot be
// split evenly, UpperMid discards the extra die from the low end and LowerMid
// from the high end.
func Window(policy Policy, poolSize, selectCount int) (start, stop int, err error) {
	if poolSize < 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidPoolSize, poolSize)
	}

	if selectCount < 0 || selectCount > poolSize {
		return 0, 0, fmt.Errorf("%w: select %d of %d", ErrInvalidSelect, selectCount, poolSize)
	}

	leftover := poolSize - selectCount

	switch policy {
	case Best:
		start = leftover
	case Worst:
		start = 0
	case UpperMid:
		start = leftover - leftover/2
	case LowerMid:
		start = leftover / 2
	default:
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidPolicy, int(policy))
	}

	return start, start + selectCount, nil
}

// Distribution returns, for every achievable window sum, the total weight of
// the ordered rolls of poolSize dice whose sorted window [start, stop) adds
// up to it. The total weight equals (Σ weights)^poolSize.
func Distribution(faces []Face, poolSize, start, stop int) (map[int]*big.Int, error) {
	sorted, err := prepare(faces, poolSize, start, stop)
	if err != nil {
		return nil, err
	}

	// layers[p] maps a partial window sum to the weight of all ways to fill
	// the first p sorted positions with the faces seen so far.
	layers := make([]map[int]*big.Int, poolSize+1)
	layers[0] = map[int]*big.Int{0: big.NewInt(1)}

	for idx, face := range sorted {
		powers := weightPowers(face.Weight, poolSize)
		last := idx == len(sorted)-1
		next := make([]map[int]*big.Int, poolSize+1)

		for filled, sums := range layers {
			if sums == nil {
				continue
			}

			remaining := poolSize - filled
			binom := binomialRow(remaining)

			minCopies := 0
			if last {
				minCopies = remaining
			}

			for copies := minCopies; copies <= remaining; copies++ {
				factor := new(big.Int).Mul(binom[copies], powers[copies])
				shift := overlap(filled, filled+copies, start, stop) * face.Value

				target := next[filled+copies]
				if target == nil {
					target = map[int]*big.Int{}
					next[filled+copies] = target
				}

				for sum, weight := range sums {
					accumulate(target, sum+shift, new(big.Int).Mul(weight, factor))
				}
			}
		}

		layers = next
	}

	result := layers[poolSize]
	if result == nil {
		result = map[int]*big.Int{}
	}

	return result, nil
}

// Enumerate computes the same result as Distribution by walking every
// non-decreasing sequence of faces explicitly. Its cost grows with
// KeyCount(len(faces), poolSize); it exists as a reference implementation.
func Enumerate(faces []Face, poolSize, start, stop int) (map[int]*big.Int, error) {
	sorted, err := prepare(faces, poolSize, start, stop)
	if err != nil {
		return nil, err
	}

	result := map[int]*big.Int{}
	sequence := make([]int, poolSize)
	nFactorial := factorial(poolSize)

	var walk func(position, lowest int)

	walk = func(position, lowest int) {
		if position == poolSize {
			accumulate(result, windowSum(sorted, sequence, start, stop), sequenceWeight(sorted, sequence, nFactorial))

			return
		}

		for idx := lowest; idx < len(sorted); idx++ {
			sequence[position] = idx
			walk(position+1, idx)
		}
	}

	walk(0, 0)

	return result, nil
}

// KeyCount returns C(distinct+poolSize-1, poolSize), the number of
// non-decreasing sequences of poolSize values drawn from distinct values.
// It bounds both the work of Enumerate and the number of distinct pool
// outcomes, so callers can reject requests before computing them.
func KeyCount(distinct, poolSize int) *big.Int {
	if poolSize <= 0 {
		return big.NewInt(1)
	}

	if distinct <= 0 {
		return new(big.Int)
	}

	return new(big.Int).Binomial(int64(distinct+poolSize-1), int64(poolSize))
}

// DistinctValues returns the number of distinct face values.
func DistinctValues(faces []Face) int {
	seen := make(map[int]struct{}, len(faces))
	for _, face := range faces {
		seen[face.Value] = struct{}{}
	}

	return len(seen)
}

func prepare(faces []Face, poolSize, start, stop int) ([]Face, error) {
	if poolSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPoolSize, poolSize)
	}

	if start < 0 || start > stop || stop > poolSize {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrInvalidWindow, start, stop, poolSize)
	}

	if len(faces) == 0 {
		return nil, ErrInvalidFaces
	}

	sorted := slices.Clone(faces)
	slices.SortFunc(sorted, func(a, b Face) int { return a.Value - b.Value })

	for i, face := range sorted {
		if face.Weight == nil || face.Weight.Sign() <= 0 {
			return nil, fmt.Errorf("%w: weight of %d", ErrInvalidFaces, face.Value)
		}

		if i > 0 && sorted[i-1].Value == face.Value {
			return nil, fmt.Errorf("%w: %d repeated", ErrInvalidFaces, face.Value)
		}
	}

	return sorted, nil
}

// overlap returns the length of [a0, a1) ∩ [b0, b1).
func overlap(a0, a1, b0, b1 int) int {
	return max(0, min(a1, b1)-max(a0, b0))
}

func accumulate(acc map[int]*big.Int, key int, amount *big.Int) {
	existing, ok := acc[key]
	if !ok {
		acc[key] = amount

		return
	}

	existing.Add(existing, amount)
}

// binomialRow returns C(n, 0..n).
func binomialRow(n int) []*big.Int {
	row := make([]*big.Int, n+1)
	row[0] = big.NewInt(1)

	for k := range n {
		next := new(big.Int).Mul(row[k], big.NewInt(int64(n-k)))
		row[k+1] = next.Quo(next, big.NewInt(int64(k+1)))
	}

	return row
}

func weightPowers(weight *big.Int, n int) []*big.Int {
	powers := make([]*big.Int, n+1)
	powers[0] = big.NewInt(1)

	for i := 1; i <= n; i++ {
		powers[i] = new(big.Int).Mul(powers[i-1], weight)
	}

	return powers
}

func factorial(n int) *big.Int {
	return new(big.Int).MulRange(1, int64(max(n, 1)))
}

func windowSum(faces []Face, sequence []int, start, stop int) int {
	sum := 0
	for _, idx := range sequence[start:stop] {
		sum += faces[idx].Value
	}

	return sum
}

// sequenceWeight returns n!/Π(run!) · Π weight for a non-decreasing sequence of face indices.
func sequenceWeight(faces []Face, sequence []int, nFactorial *big.Int) *big.Int {
	weight := new(big.Int).Set(nFactorial)
	run := 0

	for i, idx := range sequence {
		weight.Mul(weight, faces[idx].Weight)

		if i > 0 && sequence[i-1] == idx {
			run++
		} else {
			run = 1
		}

		// Dividing by run at each step divides by run! over the whole run.
		weight.Quo(weight, big.NewInt(int64(run)))
	}

	return weight
}
