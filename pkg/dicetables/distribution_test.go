package dicetables_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/dicetables/pkg/dicetables"
)

func TestNewDistribution_DropsZeroes(t *testing.T) {
	t.Parallel()

	d, err := dicetables.NewDistribution(map[int]int{1: 2, 2: 0, 5: 1})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 5}, d.Values())
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, int64(3), d.TotalOccurrences().Int64())
	assert.Equal(t, "{1: 2, 5: 1}", d.String())
}

func TestNewDistribution_RejectsNegative(t *testing.T) {
	t.Parallel()

	_, err := dicetables.NewDistribution(map[int]int{1: -1})
	require.ErrorIs(t, err, dicetables.ErrNegativeOccurrence)
	assert.ErrorIs(t, err, dicetables.ErrValidation)

	_, err = dicetables.NewBigDistribution(map[int]*big.Int{1: big.NewInt(-3)})
	assert.ErrorIs(t, err, dicetables.ErrNegativeOccurrence)
}

func TestDistribution_Queries(t *testing.T) {
	t.Parallel()

	d := dicetables.MustDistribution(map[int]int{-1: 1, 2: 3, 4: 3})

	assert.Equal(t, -1, d.Min())
	assert.Equal(t, 4, d.Max())
	assert.Equal(t, int64(3), d.OccurrenceAt(2).Int64())
	assert.Equal(t, int64(0), d.OccurrenceAt(3).Int64())

	value, count := d.HighestOccurrence()
	assert.Equal(t, 2, value)
	assert.Equal(t, int64(3), count.Int64())

	rng := d.OccurrenceRange(1, 5)
	require.Len(t, rng, 4)
	assert.Equal(t, []int64{0, 3, 0, 3}, []int64{rng[0].Int64(), rng[1].Int64(), rng[2].Int64(), rng[3].Int64()})
	assert.Empty(t, d.OccurrenceRange(3, 3))

	all := d.AllItemsIncludingZeroes()
	require.Len(t, all, 6)
	assert.Equal(t, 0, all[1].Value)
	assert.Equal(t, int64(0), all[1].Occurrences.Int64())
}

func TestDistribution_AccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	d := dicetables.MustDistribution(map[int]int{1: 1})

	d.OccurrenceAt(1).SetInt64(99)
	d.TotalOccurrences().SetInt64(99)
	d.Items()[0].Occurrences.SetInt64(99)
	d.Map()[1].SetInt64(99)

	assert.Equal(t, "{1: 1}", d.String())
	assert.Equal(t, int64(1), d.TotalOccurrences().Int64())
}

func TestCombine_IdentityLaw(t *testing.T) {
	t.Parallel()

	a := dicetables.MustDistribution(map[int]int{1: 2, 3: 5, 7: 1})

	got, err := a.Combine(dicetables.Identity(), 1)
	require.NoError(t, err)
	assert.True(t, got.Equal(a))

	got, err = dicetables.Identity().Combine(a, 1)
	require.NoError(t, err)
	assert.True(t, got.Equal(a))
}

func TestCombine_Commutative(t *testing.T) {
	t.Parallel()

	a := dicetables.MustDistribution(map[int]int{1: 1, 2: 1, 3: 1})
	b := dicetables.MustDistribution(map[int]int{-2: 4, 5: 1})

	ab, err := a.Combine(b, 1)
	require.NoError(t, err)

	ba, err := b.Combine(a, 1)
	require.NoError(t, err)

	assert.True(t, ab.Equal(ba), "%s != %s", ab, ba)
}

func TestCombine_TotalIsProduct(t *testing.T) {
	t.Parallel()

	a := dicetables.MustDistribution(map[int]int{0: 3, 1: 2})
	b := dicetables.MustDistribution(map[int]int{1: 1, 2: 2, 3: 4})

	got, err := a.Combine(b, 5)
	require.NoError(t, err)

	want := new(big.Int).Exp(big.NewInt(7), big.NewInt(5), nil)
	want.Mul(want, big.NewInt(5))

	assert.Equal(t, 0, want.Cmp(got.TotalOccurrences()))
}

func TestCombine_BulkEqualsSequential(t *testing.T) {
	t.Parallel()

	die := dicetables.MustDistribution(map[int]int{1: 1, 2: 1, 3: 1, 4: 1})

	bulk, err := dicetables.Identity().Combine(die, 3)
	require.NoError(t, err)

	seq := dicetables.Identity()
	for range 3 {
		seq, err = seq.Combine(die, 1)
		require.NoError(t, err)
	}

	assert.True(t, bulk.Equal(seq))
}

func TestCombine_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	a := dicetables.MustDistribution(map[int]int{1: 1, 2: 1})

	_, err := a.Combine(a, 2)
	require.NoError(t, err)
	assert.Equal(t, "{1: 1, 2: 1}", a.String())
}

func TestCombine_TwoD4(t *testing.T) {
	t.Parallel()

	d4 := dicetables.MustDistribution(map[int]int{1: 1, 2: 1, 3: 1, 4: 1})

	got, err := dicetables.Identity().Combine(d4, 2)
	require.NoError(t, err)
	assert.Equal(t, "{2: 1, 3: 2, 4: 3, 5: 4, 6: 3, 7: 2, 8: 1}", got.String())
}

func TestCombine_Errors(t *testing.T) {
	t.Parallel()

	a := dicetables.Identity()

	_, err := a.Combine(a, -1)
	require.ErrorIs(t, err, dicetables.ErrNegativeTimes)

	empty := dicetables.MustDistribution(map[int]int{1: 0})
	_, err = a.Combine(empty, 1)
	require.ErrorIs(t, err, dicetables.ErrEmptyAddend)

	_, err = a.Remove(empty, 1)
	require.ErrorIs(t, err, dicetables.ErrEmptyAddend)

	_, err = a.CombineByPairs(nil, 1)
	assert.ErrorIs(t, err, dicetables.ErrEmptyAddend)
}

func TestRemove_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		start  map[int]int
		addend map[int]int
		times  int
	}{
		{name: "uniform", start: map[int]int{0: 1}, addend: map[int]int{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1}, times: 3},
		{name: "weighted", start: map[int]int{2: 3, 5: 1}, addend: map[int]int{-1: 2, 0: 0, 4: 7}, times: 2},
		{name: "gapped", start: map[int]int{0: 1, 10: 2}, addend: map[int]int{1: 5, 3: 1, 9: 2}, times: 4},
		{name: "zero_times", start: map[int]int{1: 1}, addend: map[int]int{1: 1}, times: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start := dicetables.MustDistribution(tt.start)
			addend := dicetables.MustDistribution(tt.addend)

			combined, err := start.Combine(addend, tt.times)
			require.NoError(t, err)

			restored, err := combined.Remove(addend, tt.times)
			require.NoError(t, err)
			assert.True(t, restored.Equal(start), "got %s want %s", restored, start)
		})
	}
}

func TestCombine_HugeTotals(t *testing.T) {
	t.Parallel()

	d10 := dicetables.MustDistribution(map[int]int{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1, 8: 1, 9: 1, 10: 1})

	got, err := dicetables.Identity().Combine(d10, 320)
	require.NoError(t, err)

	// 10^320 ordered rolls, past float64 range.
	want := new(big.Int).Exp(big.NewInt(10), big.NewInt(320), nil)
	assert.Equal(t, 0, want.Cmp(got.TotalOccurrences()))
	assert.Equal(t, 320, got.Min())
	assert.Equal(t, 3200, got.Max())
}
