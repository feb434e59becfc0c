package dicetables

import (
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/dicetables/pkg/bigmath"
	"github.com/Sumatoshi-tech/dicetables/pkg/numfmt"
)

// Odds and percentage text for a query that never occurs.
const (
	InfiniteOdds = "Infinity"
	ZeroPercent  = "0"
)

// StatsStrings is the formatted answer to "how likely is any of these values".
type StatsStrings struct {
	// Query is the de-duplicated query as ranges, e.g. "1-3, 5".
	Query            string
	QueryOccurrences string
	TotalOccurrences string
	// OneIn is N in "1 in N".
	OneIn      string
	Percentage string
}

// StatsStrings sums the occurrences of the distinct values in query and
// formats the result with f.
func (c Calculations) StatsStrings(query []int, f numfmt.Formatter) StatsStrings {
	values := slices.Sorted(slices.Values(query))
	values = slices.Compact(values)

	hits := new(big.Int)
	for _, value := range values {
		hits.Add(hits, c.dist.OccurrenceAt(value))
	}

	total := c.dist.TotalOccurrences()
	out := StatsStrings{
		Query:            rangesText(values),
		QueryOccurrences: f.FormatInt(hits),
		TotalOccurrences: f.FormatInt(total),
		OneIn:            InfiniteOdds,
		Percentage:       ZeroPercent,
	}

	if hits.Sign() == 0 {
		return out
	}

	// Neither division can fail: hits > 0 implies total > 0.
	oneIn, _ := bigmath.Div(total, hits)
	pct, _ := bigmath.Div(new(big.Int).Mul(hits, big.NewInt(percentScale)), total)

	out.OneIn = f.Format(oneIn)
	out.Percentage = f.Format(pct)

	return out
}

// rangesText joins sorted distinct values, collapsing runs into "a-b".
func rangesText(values []int) string {
	if len(values) == 0 {
		return ""
	}

	var parts []string

	start := values[0]
	prev := values[0]

	flush := func() {
		if start == prev {
			parts = append(parts, fmt.Sprint(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}

	for _, value := range values[1:] {
		if value == prev+1 {
			prev = value

			continue
		}

		flush()

		start, prev = value, value
	}

	flush()

	return strings.Join(parts, ", ")
}
