// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backend implements the compute-dispatch side of a step: one
// dispatch for the stencil kernel and one for the analysis kernel,
// called separately per step by the simulation controller. The CPU
// worker-pool implementation here partitions the domain into
// contiguous w-slabs, dispatching the stencil kernel and then the
// analysis kernel. A device back-end is left as a DeviceError-
// returning stub (see roomerr.DeviceError) an implementer can fill in
// against a GPU compute binding later.
package backend

import (
	"runtime"
	"sync"

	"github.com/emer/roomfdtd/analysis"
	"github.com/emer/roomfdtd/grid"
	"github.com/emer/roomfdtd/params"
	"github.com/emer/roomfdtd/roomerr"
	"github.com/emer/roomfdtd/stencil"
)

// Backend performs the per-step stencil and analysis dispatches. A
// Backend owns no grid state; it only partitions work across it.
type Backend interface {
	DispatchStencil(g *grid.Grid, p *params.Parameters, s float64) error
	DispatchAnalysis(g *grid.Grid, p *params.Parameters, iteration int) error
}

// CPUWorkerPool partitions the grid's W dimension into contiguous
// slabs and runs one goroutine per slab per dispatch. A w-slab is
// itself made of contiguous h*d runs given the grid's row-major
// layout, so slab boundaries don't split a cache line across workers.
type CPUWorkerPool struct {
	// Workers is the number of goroutines per dispatch. Zero means
	// runtime.GOMAXPROCS(0).
	Workers int
}

// NewCPUWorkerPool returns a pool sized to the host's available
// parallelism.
func NewCPUWorkerPool() *CPUWorkerPool {
	return &CPUWorkerPool{Workers: runtime.GOMAXPROCS(0)}
}

func (c *CPUWorkerPool) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// slabs splits [0,w) into up to n contiguous, roughly-equal ranges.
func slabs(w, n int) [][2]int {
	if n > w {
		n = w
	}
	if n < 1 {
		n = 1
	}
	base := w / n
	rem := w % n
	out := make([][2]int, 0, n)
	lo := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		out = append(out, [2]int{lo, lo + size})
		lo += size
	}
	return out
}

// DispatchStencil runs stencil.StepRange concurrently across w-slabs.
func (c *CPUWorkerPool) DispatchStencil(g *grid.Grid, p *params.Parameters, s float64) error {
	if err := g.RequireBuilt(); err != nil {
		return err
	}
	var wg sync.WaitGroup
	for _, slab := range slabs(g.W, c.workers()) {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			stencil.StepRange(g, p, s, lo, hi)
		}(slab[0], slab[1])
	}
	wg.Wait()
	return nil
}

// DispatchAnalysis runs analysis.StepRange concurrently across w-slabs.
func (c *CPUWorkerPool) DispatchAnalysis(g *grid.Grid, p *params.Parameters, iteration int) error {
	if err := g.RequireBuilt(); err != nil {
		return err
	}
	var wg sync.WaitGroup
	for _, slab := range slabs(g.W, c.workers()) {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			analysis.StepRange(g, p, iteration, lo, hi)
		}(slab[0], slab[1])
	}
	wg.Wait()
	return nil
}

// Device is an unimplemented placeholder for a GPU/accelerator
// back-end. Every call returns a DeviceError: no compute binding in
// the example corpus gives this a concrete library to ground an
// implementation on (see DESIGN.md).
type Device struct {
	Name string
}

func (d *Device) DispatchStencil(*grid.Grid, *params.Parameters, float64) error {
	return &roomerr.DeviceError{Backend: d.Name, Reason: "device back-end not implemented"}
}

func (d *Device) DispatchAnalysis(*grid.Grid, *params.Parameters, int) error {
	return &roomerr.DeviceError{Backend: d.Name, Reason: "device back-end not implemented"}
}
