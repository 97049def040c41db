package backend_test

import (
	"math"
	"testing"

	"github.com/emer/roomfdtd/backend"
	"github.com/emer/roomfdtd/gridgeom"
	"github.com/emer/roomfdtd/grid"
	"github.com/emer/roomfdtd/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPUWorkerPoolMatchesSingleThreadedDispatch(t *testing.T) {
	p, err := params.New(200, 16, 100, 1.0/math.Sqrt(3), 0, 0)
	require.NoError(t, err)

	build := func(workers int) *grid.Grid {
		g := grid.New(6, 6, 6, p.Dx)
		g.FillRegion(2, 2, 2, 4, 2, 4, gridgeom.SourceRegion)
		require.NoError(t, g.Build())
		require.NoError(t, g.SelectSourceLocations([][3]int{{3, 3, 3}}))
		g.PCur.Values[g.Index(3, 3, 3)] = 1.0
		g.PPrev.Values[g.Index(3, 3, 3)] = 0.5
		return g
	}

	serial := build(1)
	pooled := build(4)

	pool := &backend.CPUWorkerPool{Workers: 4}
	require.NoError(t, pool.DispatchStencil(pooled, p, math.NaN()))
	require.NoError(t, pool.DispatchAnalysis(pooled, p, 0))

	single := &backend.CPUWorkerPool{Workers: 1}
	require.NoError(t, single.DispatchStencil(serial, p, math.NaN()))
	require.NoError(t, single.DispatchAnalysis(serial, p, 0))

	assert.Equal(t, serial.PNext.Values, pooled.PNext.Values)
	assert.Equal(t, serial.Analysis.Values, pooled.Analysis.Values)
}

func TestDeviceBackendReturnsDeviceError(t *testing.T) {
	d := &backend.Device{Name: "test-gpu"}
	err := d.DispatchStencil(nil, nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test-gpu")
}

func TestDispatchBeforeBuildReturnsBuildError(t *testing.T) {
	p, err := params.New(200, 16, 100, 1.0/math.Sqrt(3), 0, 0)
	require.NoError(t, err)
	g := grid.New(2, 2, 2, p.Dx)
	pool := backend.NewCPUWorkerPool()
	require.Error(t, pool.DispatchStencil(g, p, 0))
	require.Error(t, pool.DispatchAnalysis(g, p, 0))
}
