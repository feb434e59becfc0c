package dicetables_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/dicetables/pkg/dicetables"
	"github.com/Sumatoshi-tech/dicetables/pkg/numfmt"
)

func tableOf(t *testing.T, count int, die dicetables.Descriptor) *dicetables.DiceTable {
	t.Helper()

	table, err := dicetables.NewDiceTable().AddDie(count, die)
	require.NoError(t, err)

	return table
}

func TestCalculations_MeanOfTwoD6(t *testing.T) {
	t.Parallel()

	mean, err := tableOf(t, 2, d(6)).Calc(false).Mean()
	require.NoError(t, err)
	assert.Equal(t, 7.0, mean)
}

func TestCalculations_StdDev(t *testing.T) {
	t.Parallel()

	calc := tableOf(t, 2, d(6)).Calc(false)

	sd, err := calc.StdDev(4)
	require.NoError(t, err)
	assert.InDelta(t, 2.4152, sd, 1e-9)

	sd, err = calc.StdDev(1)
	require.NoError(t, err)
	assert.InDelta(t, 2.4, sd, 1e-9)

	single, err := dicetables.NewCalculations(dicetables.Identity(), false).StdDev(3)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, single, 1e-12)
}

func TestCalculations_ZeroTotal(t *testing.T) {
	t.Parallel()

	calc := dicetables.NewCalculations(dicetables.MustDistribution(map[int]int{}), false)

	_, err := calc.Mean()
	require.ErrorIs(t, err, dicetables.ErrZeroTotal)
	require.ErrorIs(t, err, dicetables.ErrArithmetic)

	_, err = calc.StdDev(2)
	require.ErrorIs(t, err, dicetables.ErrZeroTotal)

	_, err = calc.Percentile(50)
	require.ErrorIs(t, err, dicetables.ErrZeroTotal)

	_, err = calc.Info(2)
	require.ErrorIs(t, err, dicetables.ErrZeroTotal)

	assert.Empty(t, calc.PercentagePoints())
	assert.Empty(t, calc.PercentagePointsExact())
}

func TestCalculations_HugeCounts(t *testing.T) {
	t.Parallel()

	calc := tableOf(t, 320, d(10)).Calc(false)

	mean, err := calc.Mean()
	require.NoError(t, err)
	assert.InDelta(t, 1760.0, mean, 1e-9)

	sd, err := calc.StdDev(4)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(320*8.25), sd, 1e-4)

	for _, places := range []int{15, 150, 400} {
		sd, err = calc.StdDev(places)
		require.NoError(t, err)
		assert.False(t, math.IsNaN(sd) || math.IsInf(sd, 0), "%d places", places)
		assert.InDelta(t, math.Sqrt(320*8.25), sd, 1e-4, "%d places", places)
	}

	var sum float64
	for _, p := range calc.PercentagePoints() {
		assert.False(t, math.IsNaN(p.Y))
		sum += p.Y
	}

	assert.InDelta(t, 100.0, sum, 1e-6)

	stats := calc.StatsStrings([]int{1760}, numfmt.Default())
	assert.Equal(t, "1.000e+320", stats.TotalOccurrences)
	assert.NotEqual(t, dicetables.InfiniteOdds, stats.OneIn)
}

func TestCalculations_PercentagePoints(t *testing.T) {
	t.Parallel()

	calc := tableOf(t, 2, d(6)).Calc(false)

	fast := calc.PercentagePoints()
	exact := calc.PercentagePointsExact()
	require.Len(t, fast, 11)
	require.Len(t, exact, 11)

	for i := range fast {
		assert.Equal(t, exact[i].Value, fast[i].Value)
		assert.InDelta(t, exact[i].Y, fast[i].Y, 1e-9)
	}

	assert.InDelta(t, 100.0/36, exact[0].Y, 1e-12)
	assert.InDelta(t, 600.0/36, exact[5].Y, 1e-12)

	values, ys := calc.PercentageAxesExact()
	assert.Equal(t, 2, values[0])
	assert.Equal(t, 12, values[len(values)-1])
	assert.InDelta(t, exact[3].Y, ys[3], 1e-12)

	fastValues, fastYs := calc.PercentageAxes()
	assert.Equal(t, values, fastValues)
	assert.Len(t, fastYs, 11)
}

func TestCalculations_IncludeZeroes(t *testing.T) {
	t.Parallel()

	dist := dicetables.MustDistribution(map[int]int{1: 1, 2: 100, 4: 10})

	points := dicetables.NewCalculations(dist, true).Log10Points(-1)
	require.Len(t, points, 4)
	assert.InDelta(t, 0.0, points[0].Y, 1e-12)
	assert.InDelta(t, 2.0, points[1].Y, 1e-12)
	assert.InDelta(t, -1.0, points[2].Y, 1e-12)
	assert.InDelta(t, 1.0, points[3].Y, 1e-12)

	assert.Len(t, dicetables.NewCalculations(dist, false).Log10Points(-1), 3)
	assert.Len(t, dicetables.NewCalculations(dist, true).PercentagePointsExact(), 4)
}

func TestCalculations_Percentile(t *testing.T) {
	t.Parallel()

	calc := tableOf(t, 3, d(6)).Calc(false)

	tests := []struct {
		name string
		pct  float64
		want int
	}{
		{name: "zero", pct: 0, want: 3},
		{name: "median", pct: 50, want: 10},
		{name: "ninetieth", pct: 90, want: 14},
		{name: "all", pct: 100, want: 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := calc.Percentile(tt.pct)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := calc.Percentile(101)
	require.ErrorIs(t, err, dicetables.ErrInvalidPercentile)

	_, err = calc.Percentile(math.NaN())
	assert.ErrorIs(t, err, dicetables.ErrInvalidPercentile)
}

func TestCalculations_StatsStrings(t *testing.T) {
	t.Parallel()

	calc := tableOf(t, 2, d(6)).Calc(false)
	f := numfmt.Default()

	tests := []struct {
		name  string
		query []int
		want  dicetables.StatsStrings
	}{
		{
			name:  "single_value_deduplicated",
			query: []int{7, 7},
			want: dicetables.StatsStrings{
				Query: "7", QueryOccurrences: "6", TotalOccurrences: "36", OneIn: "6.000", Percentage: "16.67",
			},
		},
		{
			name:  "ranges",
			query: []int{12, 3, 2, 4},
			want: dicetables.StatsStrings{
				Query: "2-4, 12", QueryOccurrences: "7", TotalOccurrences: "36", OneIn: "5.143", Percentage: "19.44",
			},
		},
		{
			name:  "never_occurs",
			query: []int{13, 1},
			want: dicetables.StatsStrings{
				Query: "1, 13", QueryOccurrences: "0", TotalOccurrences: "36", OneIn: "Infinity", Percentage: "0",
			},
		},
		{
			name:  "empty_query",
			query: nil,
			want: dicetables.StatsStrings{
				Query: "", QueryOccurrences: "0", TotalOccurrences: "36", OneIn: "Infinity", Percentage: "0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, calc.StatsStrings(tt.query, f))
		})
	}
}

func TestCalculations_FullTableString(t *testing.T) {
	t.Parallel()

	dist := dicetables.MustDistribution(map[int]int{-10: 1, 5: 1234567})

	got := dicetables.NewCalculations(dist, false).FullTableString(numfmt.Default())
	assert.Equal(t, "-10: 1\n  5: 1,234,567\n", got)
}

func TestCalculations_Info(t *testing.T) {
	t.Parallel()

	info, err := tableOf(t, 2, d(6)).Calc(false).Info(2)
	require.NoError(t, err)

	assert.Equal(t, 2, info.Min)
	assert.Equal(t, 12, info.Max)
	assert.Equal(t, 7, info.Mode)
	assert.Equal(t, int64(6), info.ModeCount.Int64())
	assert.Equal(t, int64(36), info.Total.Int64())
	assert.InDelta(t, 7.0, info.Mean, 1e-12)
	assert.InDelta(t, 2.42, info.StdDev, 1e-12)
}
