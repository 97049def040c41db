package stencil_test

import (
	"math"
	"testing"

	"github.com/emer/roomfdtd/gridgeom"
	"github.com/emer/roomfdtd/grid"
	"github.com/emer/roomfdtd/params"
	"github.com/emer/roomfdtd/stencil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLine(t *testing.T, n int) (*grid.Grid, *params.Parameters) {
	t.Helper()
	p, err := params.New(200, 16, 100, 1.0/math.Sqrt(3), 0, 0)
	require.NoError(t, err)

	g := grid.New(n, 1, 1, p.Dx)
	g.FillRegion(0, 0, 0, 0, 0, 0, gridgeom.SourceRegion)
	require.NoError(t, g.Build())
	require.NoError(t, g.SelectSourceLocations([][3]int{{0, 0, 0}}))
	return g, p
}

// A hard-sourced impulse injected at cell 0 of a 1-D line arrives at a
// distant cell after the expected travel time.
func TestPlaneWavePropagationTravelTime(t *testing.T) {
	n := 32
	g, p := buildLine(t, n)

	peak, peakStep := 0.0, -1
	for step := 0; step < n*2; step++ {
		s := math.NaN() // no injection after the single impulse
		if step == 0 {
			s = 1.0
		}
		stencil.Step(g, p, s)
		rotate(g)

		v := g.PCur.Values[g.Index(n-1, 0, 0)]
		if math.Abs(v) > math.Abs(peak) {
			peak, peakStep = v, step
		}
	}

	expectedStep := int(float64(n-1) / p.Lambda)
	assert.InDelta(t, expectedStep, peakStep, 8, "peak should arrive near the expected travel time")
	assert.NotEqual(t, -1, peakStep)
}

// WALL cells stay at zero pressure, and a SOURCE cell's most recent
// pressure equals the last injected sample.
func TestWallZeroAndHardSourceInjection(t *testing.T) {
	p, err := params.New(200, 16, 100, 1.0/math.Sqrt(3), 0, 0)
	require.NoError(t, err)

	g := grid.New(5, 5, 5, p.Dx)
	g.FillRegion(0, 0, 0, 4, 0, 4, gridgeom.Wall)
	g.FillRegion(2, 2, 2, 2, 2, 2, gridgeom.SourceRegion)
	require.NoError(t, g.Build())
	require.NoError(t, g.SelectSourceLocations([][3]int{{2, 2, 2}}))

	const injected = 0.75
	stencil.Step(g, p, injected)
	rotate(g)

	wallIdx := g.Index(0, 0, 0)
	assert.Equal(t, 0.0, g.PCur.Values[wallIdx])

	srcIdx := g.Index(2, 2, 2)
	assert.Equal(t, injected, g.PCur.Values[srcIdx])
}

// rotate mimics the Simulation controller's triple-buffer role
// permutation for tests that drive stencil.Step directly.
func rotate(g *grid.Grid) {
	g.PPrev, g.PCur, g.PNext = g.PCur, g.PNext, g.PPrev
}

func l2Norm(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func buildCube(t *testing.T, n int, edgeBeta [6]float64) (*grid.Grid, *params.Parameters) {
	t.Helper()
	p, err := params.New(200, 16, 100, 1.0/math.Sqrt(3), 0, 0)
	require.NoError(t, err)

	g := grid.New(n, n, n, p.Dx)
	g.SetEdgeBeta(edgeBeta)
	require.NoError(t, g.Build())
	return g, p
}

func roundTripSteps(n int, p *params.Parameters) int {
	tRound := 2 * float64(n) * p.Dx / params.SpeedOfSound
	return int(math.Round(tRound / p.Dt))
}

// With every outer face's reflection coefficient at zero (perfectly
// rigid, lossless), a pulse's L2 norm over the whole domain is
// preserved, within 1e-9 relative error, after one round trip to the
// boundary and back.
func TestPerfectReflectionPreservesL2Norm(t *testing.T) {
	n := 10
	g, p := buildCube(t, n, [6]float64{0, 0, 0, 0, 0, 0})

	center := g.Index(n/2, n/2, n/2)
	g.PCur.Values[center] = 1.0
	g.PPrev.Values[center] = 1.0
	before := l2Norm(g.PCur.Values)

	steps := roundTripSteps(n, p)
	for step := 0; step < steps; step++ {
		stencil.Step(g, p, math.NaN())
		rotate(g)
	}
	after := l2Norm(g.PCur.Values)

	assert.InEpsilon(t, before, after, 1e-9, "lossless boundary must preserve the domain L2 norm across a round trip")
}

// With a lossy outer-face reflection coefficient, the domain's L2 norm
// decays monotonically across successive round trips.
func TestLossyBoundaryDecaysL2NormMonotonically(t *testing.T) {
	n := 10
	g, p := buildCube(t, n, [6]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5})

	center := g.Index(n/2, n/2, n/2)
	g.PCur.Values[center] = 1.0
	g.PPrev.Values[center] = 1.0

	steps := roundTripSteps(n, p)
	norms := make([]float64, 0, 4)
	norms = append(norms, l2Norm(g.PCur.Values))
	for round := 0; round < 3; round++ {
		for step := 0; step < steps; step++ {
			stencil.Step(g, p, math.NaN())
			rotate(g)
		}
		norms = append(norms, l2Norm(g.PCur.Values))
	}

	for i := 1; i < len(norms); i++ {
		assert.Less(t, norms[i], norms[i-1], "L2 norm must decay monotonically round-trip over round-trip with a lossy boundary")
	}
}
