package poolmath_test

import (
	"testing"

	"github.com/Sumatoshi-tech/dicetables/pkg/poolmath"
)

const (
	// benchFaces is the die size used by the pool benchmarks.
	benchFaces = 10

	// benchPoolSize is the number of dice in the benchmarked pool.
	benchPoolSize = 8

	// benchSelect is the number of dice kept.
	benchSelect = 3
)

// BenchmarkDistribution measures the grouped-by-copies computation.
func BenchmarkDistribution(b *testing.B) {
	faces := uniform(benchFaces)

	start, stop, err := poolmath.Window(poolmath.Best, benchPoolSize, benchSelect)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for range b.N {
		_, err = poolmath.Distribution(faces, benchPoolSize, start, stop)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEnumerate measures the sequence-by-sequence reference walk.
func BenchmarkEnumerate(b *testing.B) {
	faces := uniform(benchFaces)

	start, stop, err := poolmath.Window(poolmath.Best, benchPoolSize, benchSelect)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for range b.N {
		_, err = poolmath.Enumerate(faces, benchPoolSize, start, stop)
		if err != nil {
			b.Fatal(err)
		}
	}
}
