package poolmath_test

import (
	"math/big"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/dicetables/pkg/poolmath"
)

// uniform returns faces 1..size, each with weight 1.
func uniform(size int) []poolmath.Face {
	faces := make([]poolmath.Face, 0, size)
	for v := 1; v <= size; v++ {
		faces = append(faces, poolmath.Face{Value: v, Weight: big.NewInt(1)})
	}

	return faces
}

func toInt64(m map[int]*big.Int) map[int]int64 {
	out := make(map[int]int64, len(m))
	for k, v := range m {
		out[k] = v.Int64()
	}

	return out
}

// bruteForce rolls every ordered tuple of faces, sorts it and sums the window.
func bruteForce(faces []poolmath.Face, poolSize, start, stop int) map[int]int64 {
	out := map[int]int64{}
	indices := make([]int, poolSize)

	for {
		values := make([]int, poolSize)
		weight := int64(1)

		for i, idx := range indices {
			values[i] = faces[idx].Value
			weight *= faces[idx].Weight.Int64()
		}

		slices.Sort(values)

		sum := 0
		for _, v := range values[start:stop] {
			sum += v
		}

		out[sum] += weight

		pos := poolSize - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(faces) {
				break
			}

			indices[pos] = 0
			pos--
		}

		if pos < 0 {
			return out
		}
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		policy    poolmath.Policy
		pool, sel int
		start     int
		stop      int
	}{
		{name: "best_3_of_4", policy: poolmath.Best, pool: 4, sel: 3, start: 1, stop: 4},
		{name: "worst_2_of_5", policy: poolmath.Worst, pool: 5, sel: 2, start: 0, stop: 2},
		{name: "upper_mid_1_of_4", policy: poolmath.UpperMid, pool: 4, sel: 1, start: 2, stop: 3},
		{name: "lower_mid_1_of_4", policy: poolmath.LowerMid, pool: 4, sel: 1, start: 1, stop: 2},
		{name: "upper_mid_even_split", policy: poolmath.UpperMid, pool: 5, sel: 1, start: 2, stop: 3},
		{name: "lower_mid_even_split", policy: poolmath.LowerMid, pool: 5, sel: 3, start: 1, stop: 4},
		{name: "select_all", policy: poolmath.Best, pool: 3, sel: 3, start: 0, stop: 3},
		{name: "select_none", policy: poolmath.Worst, pool: 3, sel: 0, start: 0, stop: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start, stop, err := poolmath.Window(tt.policy, tt.pool, tt.sel)
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.stop, stop)
		})
	}
}

func TestWindow_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := poolmath.Window(poolmath.Best, 2, 3)
	require.ErrorIs(t, err, poolmath.ErrInvalidSelect)

	_, _, err = poolmath.Window(poolmath.Best, 2, -1)
	require.ErrorIs(t, err, poolmath.ErrInvalidSelect)

	_, _, err = poolmath.Window(poolmath.Best, -1, 0)
	require.ErrorIs(t, err, poolmath.ErrInvalidPoolSize)

	_, _, err = poolmath.Window(poolmath.Policy(42), 2, 1)
	assert.ErrorIs(t, err, poolmath.ErrInvalidPolicy)
}

func TestDistribution_BestTwoOfTwoD2(t *testing.T) {
	t.Parallel()

	got, err := poolmath.Distribution(uniform(2), 2, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{2: 1, 3: 2, 4: 1}, toInt64(got))
}

func TestDistribution_BestOneOfThreeD3(t *testing.T) {
	t.Parallel()

	got, err := poolmath.Distribution(uniform(3), 3, 2, 3)
	require.NoError(t, err)

	total := new(big.Int)
	for _, v := range got {
		total.Add(total, v)
	}

	assert.Equal(t, int64(27), total.Int64())
	assert.Equal(t, map[int]int64{1: 1, 2: 7, 3: 19}, toInt64(got))
}

func TestDistribution_MatchesEnumerationAndBruteForce(t *testing.T) {
	t.Parallel()

	weighted := []poolmath.Face{
		{Value: -1, Weight: big.NewInt(2)},
		{Value: 2, Weight: big.NewInt(1)},
		{Value: 5, Weight: big.NewInt(3)},
	}

	tests := []struct {
		name   string
		faces  []poolmath.Face
		policy poolmath.Policy
		pool   int
		sel    int
	}{
		{name: "best_3_of_4d6", faces: uniform(6), policy: poolmath.Best, pool: 4, sel: 3},
		{name: "worst_2_of_4d4", faces: uniform(4), policy: poolmath.Worst, pool: 4, sel: 2},
		{name: "upper_mid_2_of_5d3", faces: uniform(3), policy: poolmath.UpperMid, pool: 5, sel: 2},
		{name: "lower_mid_2_of_5d3", faces: uniform(3), policy: poolmath.LowerMid, pool: 5, sel: 2},
		{name: "weighted_best_2_of_3", faces: weighted, policy: poolmath.Best, pool: 3, sel: 2},
		{name: "weighted_worst_1_of_4", faces: weighted, policy: poolmath.Worst, pool: 4, sel: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start, stop, err := poolmath.Window(tt.policy, tt.pool, tt.sel)
			require.NoError(t, err)

			dp, err := poolmath.Distribution(tt.faces, tt.pool, start, stop)
			require.NoError(t, err)

			enumerated, err := poolmath.Enumerate(tt.faces, tt.pool, start, stop)
			require.NoError(t, err)

			assert.Equal(t, toInt64(enumerated), toInt64(dp))
			assert.Equal(t, bruteForce(tt.faces, tt.pool, start, stop), toInt64(dp))
		})
	}
}

func TestDistribution_LargeCoinPoolIsBinomial(t *testing.T) {
	t.Parallel()

	const pool = 80

	got, err := poolmath.Distribution(uniform(2), pool, 0, pool)
	require.NoError(t, err)
	require.Len(t, got, pool+1)

	// Summing every coin of n d2 counts the twos: sum n+k has weight C(n, k).
	for k := 0; k <= pool; k++ {
		want := new(big.Int).Binomial(pool, int64(k))
		assert.Zero(t, want.Cmp(got[pool+k]), "sum %d", pool+k)
	}
}

func TestDistribution_EmptyPool(t *testing.T) {
	t.Parallel()

	got, err := poolmath.Distribution(uniform(6), 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{0: 1}, toInt64(got))
}

func TestDistribution_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := poolmath.Distribution(nil, 2, 0, 2)
	require.ErrorIs(t, err, poolmath.ErrInvalidFaces)

	_, err = poolmath.Distribution(uniform(3), 2, 1, 3)
	require.ErrorIs(t, err, poolmath.ErrInvalidWindow)

	repeated := []poolmath.Face{{Value: 1, Weight: big.NewInt(1)}, {Value: 1, Weight: big.NewInt(2)}}
	_, err = poolmath.Distribution(repeated, 2, 0, 2)
	require.ErrorIs(t, err, poolmath.ErrInvalidFaces)

	zero := []poolmath.Face{{Value: 1, Weight: big.NewInt(0)}}
	_, err = poolmath.Enumerate(zero, 2, 0, 2)
	assert.ErrorIs(t, err, poolmath.ErrInvalidFaces)
}

func TestKeyCount_MatchesEnumeratedSequences(t *testing.T) {
	t.Parallel()

	for distinct := 1; distinct <= 5; distinct++ {
		for pool := 0; pool <= 5; pool++ {
			assert.Equal(t, countSequences(distinct, pool, 0), poolmath.KeyCount(distinct, pool).Int64(),
				"distinct=%d pool=%d", distinct, pool)
		}
	}
}

// countSequences counts non-decreasing sequences of length n over values [lowest, distinct).
func countSequences(distinct, n, lowest int) int64 {
	if n == 0 {
		return 1
	}

	var total int64
	for v := lowest; v < distinct; v++ {
		total += countSequences(distinct, n-1, v)
	}

	return total
}

func TestKeyCount_Edges(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1), poolmath.KeyCount(0, 0).Int64())
	assert.Equal(t, int64(0), poolmath.KeyCount(0, 3).Int64())
	assert.Equal(t, int64(56), poolmath.KeyCount(6, 3).Int64())
}

func TestDistinctValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 6, poolmath.DistinctValues(uniform(6)))
	assert.Equal(t, 0, poolmath.DistinctValues(nil))
}

func TestPolicy_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Best", poolmath.Best.String())
	assert.Equal(t, "Worst", poolmath.Worst.String())
	assert.Equal(t, "UpperMid", poolmath.UpperMid.String())
	assert.Equal(t, "LowerMid", poolmath.LowerMid.String())
	assert.Equal(t, "Policy(9)", poolmath.Policy(9).String())
}
