package dicetables

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/dicetables/pkg/bigmath"
	"github.com/Sumatoshi-tech/dicetables/pkg/numfmt"
)

const (
	// stdDevSafetyDigits are kept beyond twice the requested decimal places
	// when truncating counts for StdDev.
	stdDevSafetyDigits = 5

	// fastPercentDigits is the fixed-point precision of PercentagePoints.
	fastPercentDigits = 10

	percentScale = 100

	// maxRoundDigits is the most decimal places float64 can meaningfully round to.
	maxRoundDigits = 15
)

// Point is one (value, y) pair of a derived series.
type Point struct {
	Value int
	Y     float64
}

// TableInfo summarises a distribution.
type TableInfo struct {
	Min       int
	Max       int
	Mode      int
	ModeCount *big.Int
	Total     *big.Int
	Mean      float64
	StdDev    float64
}

// Calculations derives statistics from a distribution without converting
// occurrence counts to float64 before they have been scaled down.
type Calculations struct {
	dist          *Distribution
	includeZeroes bool
}

// NewCalculations returns statistics over dist. With includeZeroes set, series
// cover every value from Min to Max, including those that never occur.
func NewCalculations(dist *Distribution, includeZeroes bool) Calculations {
	return Calculations{dist: dist, includeZeroes: includeZeroes}
}

// IncludeZeroes reports whether series include zero-occurrence values.
func (c Calculations) IncludeZeroes() bool {
	return c.includeZeroes
}

// Mean returns the weighted average outcome.
func (c Calculations) Mean() (float64, error) {
	total := c.dist.TotalOccurrences()
	if total.Sign() == 0 {
		return 0, ErrZeroTotal
	}

	sum := new(big.Int)
	term := new(big.Int)

	for _, item := range c.dist.Items() {
		term.Mul(big.NewInt(int64(item.Value)), item.Occurrences)
		sum.Add(sum, term)
	}

	mean, err := bigmath.Div(sum, total)
	if err != nil {
		return 0, fmt.Errorf("mean: %w", err)
	}

	return mean.Float64(), nil
}

// StdDev returns the population standard deviation rounded to decimalPlace.
// Counts are integer-divided by a power of ten first, so that the largest
// keeps about 2*(decimalPlace+5) digits; this keeps the sum of squares
// inside float64 range for any total. decimalPlace is clamped to
// [0, 15], the precision of the float64 result.
func (c Calculations) StdDev(decimalPlace int) (float64, error) {
	decimalPlace = min(max(decimalPlace, 0), maxRoundDigits)

	mean, err := c.Mean()
	if err != nil {
		return 0, err
	}

	_, highest := c.dist.HighestOccurrence()
	factor := bigmath.TruncationFactor(highest, 2*(decimalPlace+stdDevSafetyDigits))

	truncatedTotal := 0.0
	squares := 0.0
	adjusted := new(big.Int)

	for _, item := range c.dist.Items() {
		adjusted.Quo(item.Occurrences, factor)
		weight, _ := new(big.Float).SetInt(adjusted).Float64()

		deviation := mean - float64(item.Value)
		truncatedTotal += weight
		squares += weight * deviation * deviation
	}

	return roundTo(math.Sqrt(squares/truncatedTotal), decimalPlace), nil
}

// PercentagePoints returns each value's share of the total in percent,
// accurate to about ten decimal places.
func (c Calculations) PercentagePoints() []Point {
	total := c.dist.TotalOccurrences()
	if total.Sign() == 0 {
		return nil
	}

	scale := new(big.Int).Mul(big.NewInt(percentScale), bigmath.Pow10(fastPercentDigits))
	divisor := math.Pow10(fastPercentDigits)

	items := c.items()
	points := make([]Point, 0, len(items))
	scaled := new(big.Int)

	for _, item := range items {
		scaled.Mul(item.Occurrences, scale)
		scaled.Quo(scaled, total)
		value, _ := new(big.Float).SetInt(scaled).Float64()

		points = append(points, Point{Value: item.Value, Y: value / divisor})
	}

	return points
}

// PercentagePointsExact is PercentagePoints computed with exact rationals.
func (c Calculations) PercentagePointsExact() []Point {
	total := c.dist.TotalOccurrences()
	if total.Sign() == 0 {
		return nil
	}

	items := c.items()
	points := make([]Point, 0, len(items))

	for _, item := range items {
		share := new(big.Rat).SetFrac(new(big.Int).Mul(item.Occurrences, big.NewInt(percentScale)), total)
		value, _ := share.Float64()

		points = append(points, Point{Value: item.Value, Y: value})
	}

	return points
}

// PercentageAxes returns PercentagePoints as parallel value and percent slices.
func (c Calculations) PercentageAxes() ([]int, []float64) {
	return axes(c.PercentagePoints())
}

// PercentageAxesExact returns PercentagePointsExact as parallel slices.
func (c Calculations) PercentageAxesExact() ([]int, []float64) {
	return axes(c.PercentagePointsExact())
}

// Log10Points returns log10 of each count. Zero counts map to zeroValue.
func (c Calculations) Log10Points(zeroValue float64) []Point {
	items := c.items()
	points := make([]Point, 0, len(items))

	for _, item := range items {
		y := zeroValue
		if item.Occurrences.Sign() > 0 {
			y = bigmath.Log10(item.Occurrences)
		}

		points = append(points, Point{Value: item.Value, Y: y})
	}

	return points
}

// Percentile returns the smallest value at which the cumulative share of
// the total reaches pct percent.
func (c Calculations) Percentile(pct float64) (int, error) {
	if math.IsNaN(pct) || pct < 0 || pct > percentScale {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPercentile, pct)
	}

	total := c.dist.TotalOccurrences()
	if total.Sign() == 0 {
		return 0, ErrZeroTotal
	}

	// cumulative*100 >= pct*total
	threshold := new(big.Rat).Mul(new(big.Rat).SetFloat64(pct), new(big.Rat).SetInt(total))
	cumulative := new(big.Int)
	scaled := new(big.Rat)

	items := c.dist.Items()
	for _, item := range items {
		cumulative.Add(cumulative, item.Occurrences)
		scaled.SetInt(new(big.Int).Mul(cumulative, big.NewInt(percentScale)))

		if scaled.Cmp(threshold) >= 0 {
			return item.Value, nil
		}
	}

	return items[len(items)-1].Value, nil
}

// FullTableString renders one "value: count" line per value, values right-aligned.
func (c Calculations) FullTableString(f numfmt.Formatter) string {
	items := c.items()

	width := 0
	for _, item := range items {
		width = max(width, len(strconv.Itoa(item.Value)))
	}

	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "%*d: %s\n", width, item.Value, f.FormatInt(item.Occurrences))
	}

	return sb.String()
}

// Info returns the range, mode, total, mean and standard deviation.
func (c Calculations) Info(decimalPlace int) (TableInfo, error) {
	mean, err := c.Mean()
	if err != nil {
		return TableInfo{}, err
	}

	stdDev, err := c.StdDev(decimalPlace)
	if err != nil {
		return TableInfo{}, err
	}

	mode, modeCount := c.dist.HighestOccurrence()

	return TableInfo{
		Min:       c.dist.Min(),
		Max:       c.dist.Max(),
		Mode:      mode,
		ModeCount: modeCount,
		Total:     c.dist.TotalOccurrences(),
		Mean:      mean,
		StdDev:    stdDev,
	}, nil
}

func (c Calculations) items() []Item {
	if c.includeZeroes {
		return c.dist.AllItemsIncludingZeroes()
	}

	return c.dist.Items()
}

func axes(points []Point) ([]int, []float64) {
	values := make([]int, 0, len(points))
	ys := make([]float64, 0, len(points))

	for _, p := range points {
		values = append(values, p.Value)
		ys = append(ys, p.Y)
	}

	return values, ys
}

func roundTo(x float64, decimalPlace int) float64 {
	if decimalPlace > maxRoundDigits {
		return x
	}

	scale := math.Pow10(decimalPlace)

	return math.Round(x*scale) / scale
}
