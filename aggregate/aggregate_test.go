package aggregate_test

import (
	"math"
	"testing"

	"github.com/emer/roomfdtd/aggregate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// The aggregator's per-cell variance matches the population variance
// of the fed sequence, computed directly.
func TestVarianceMapMatchesDirectComputation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		samples := rapid.SliceOfN(rapid.Float64Range(-5, 5), 1, 30).Draw(rt, "samples")

		agg := aggregate.New(1)
		for _, s := range samples {
			require.NoError(rt, agg.Accumulate([]float64{s}))
		}

		mean := 0.0
		for _, s := range samples {
			mean += s
		}
		mean /= float64(len(samples))
		wantVar := 0.0
		for _, s := range samples {
			wantVar += (s - mean) * (s - mean)
		}
		wantVar /= float64(len(samples))

		got := agg.VarianceMap()[0]
		if math.Abs(got-wantVar) > 1e-6 {
			rt.Fatalf("variance = %v, want %v", got, wantVar)
		}
	})
}

func TestAccumulateSkipsNaNPerCell(t *testing.T) {
	agg := aggregate.New(2)
	require.NoError(t, agg.Accumulate([]float64{1, math.NaN()}))
	require.NoError(t, agg.Accumulate([]float64{3, math.NaN()}))

	variance := agg.VarianceMap()
	assert.False(t, math.IsNaN(variance[0]))
	assert.True(t, math.IsNaN(variance[1]))
}

func TestRankingMapNaNCellsMapToZero(t *testing.T) {
	ranking := aggregate.RankingMap([]float64{1.0, math.NaN(), 4.0})
	assert.Equal(t, 0.0, ranking[1])
}

func TestRankingMapHigherForLowerVariance(t *testing.T) {
	ranking := aggregate.RankingMap([]float64{0.1, 5.0})
	assert.Greater(t, ranking[0], ranking[1])
}

func TestAccumulateRejectsMismatchedLength(t *testing.T) {
	agg := aggregate.New(3)
	require.Error(t, agg.Accumulate([]float64{1, 2}))
}
