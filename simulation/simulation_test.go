package simulation_test

import (
	"math"
	"testing"

	"github.com/emer/roomfdtd/backend"
	"github.com/emer/roomfdtd/generator"
	"github.com/emer/roomfdtd/gridgeom"
	"github.com/emer/roomfdtd/grid"
	"github.com/emer/roomfdtd/params"
	"github.com/emer/roomfdtd/roomerr"
	"github.com/emer/roomfdtd/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSim(t *testing.T, gen generator.Generator) *simulation.Simulation {
	t.Helper()
	p, err := params.New(200, 16, 100, 1.0/math.Sqrt(3), 0, 0)
	require.NoError(t, err)
	g := grid.New(5, 5, 5, p.Dx)
	g.FillRegion(2, 2, 2, 2, 2, 2, gridgeom.SourceRegion)
	g.FillRegion(3, 3, 3, 3, 3, 3, gridgeom.Listener)
	require.NoError(t, g.Build())
	require.NoError(t, g.SelectSourceLocations([][3]int{{2, 2, 2}}))

	sim, err := simulation.New(g, p, backend.NewCPUWorkerPool(), gen, nil)
	require.NoError(t, err)
	return sim
}

func TestNewRequiresBuiltGrid(t *testing.T) {
	p, err := params.New(200, 16, 100, 1.0/math.Sqrt(3), 0, 0)
	require.NoError(t, err)
	g := grid.New(2, 2, 2, p.Dx)
	_, err = simulation.New(g, p, backend.NewCPUWorkerPool(), generator.Dirac{}, nil)
	var buildErr *roomerr.BuildError
	assert.ErrorAs(t, err, &buildErr)
}

func TestStepAdvancesIterationAndTime(t *testing.T) {
	sim := buildSim(t, generator.Dirac{Amplitude: 1, AtIteration: 0})
	assert.Equal(t, simulation.Ready, sim.State())

	require.NoError(t, sim.Step(5))
	assert.Equal(t, 5, sim.Iteration)
	assert.InDelta(t, 5*sim.Params.Dt, sim.T, 1e-15)
	assert.Equal(t, simulation.Ready, sim.State())
}

func TestResetZerosStateAndReturnsToReady(t *testing.T) {
	sim := buildSim(t, generator.Dirac{Amplitude: 1, AtIteration: 0})
	require.NoError(t, sim.Step(3))

	require.NoError(t, sim.Reset())
	assert.Equal(t, 0, sim.Iteration)
	assert.Equal(t, 0.0, sim.T)
	assert.Equal(t, simulation.Ready, sim.State())
	for _, v := range sim.Grid.PCur.Values {
		assert.Equal(t, 0.0, v)
	}
}

// After Step rotates the buffer roles, PPrev, PCur, and PNext must
// never alias the same backing array, or a subsequent step would read
// and write the same storage through two different role names.
func TestStepRotatesToDistinctBuffers(t *testing.T) {
	sim := buildSim(t, generator.Dirac{Amplitude: 1, AtIteration: 0})
	require.NoError(t, sim.Step(4))

	prev, cur, next := sim.Grid.PPrev, sim.Grid.PCur, sim.Grid.PNext
	assert.NotSame(t, prev, cur)
	assert.NotSame(t, cur, next)
	assert.NotSame(t, prev, next)
}

func TestStepLeavesControllerReadyForNextStep(t *testing.T) {
	sim := buildSim(t, generator.Dirac{Amplitude: 1, AtIteration: 0})
	sim.Iteration = 0 // no-op, just documents precondition

	// force a bogus non-Ready state is not directly possible from the
	// outside; instead verify Step leaves the controller Ready again
	// so a second call is always legal.
	require.NoError(t, sim.Step(1))
	require.NoError(t, sim.Step(1))
}
