// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stencil implements the explicit FDTD time step: one sweep
// over all interior cells computing pressure_next from pressure_prev,
// pressure_cur, the neighbour mask, and the per-cell reflection
// coefficient, plus the locally-reacting absorbing-boundary variant and
// hard-source injection.
//
// StepRange operates on a half-open w-range [wLo,wHi) so a back-end can
// partition the domain into contiguous w-slabs — the grid is stored
// row-major with d fastest-varying, so a w-slab is itself made of
// contiguous h*d runs, keeping each worker's writes in its own cache
// lines.
package stencil

import (
	"math"

	"github.com/emer/roomfdtd/gridgeom"
	"github.com/emer/roomfdtd/grid"
	"github.com/emer/roomfdtd/params"
)

// Step runs one FDTD time step over the whole grid, writing into
// g.PNext. Equivalent to StepRange(g, p, s, 0, g.W).
func Step(g *grid.Grid, p *params.Parameters, s float64) {
	StepRange(g, p, s, 0, g.W)
}

// StepRange runs one FDTD time step over w in [wLo,wHi), writing into
// g.PNext. Safe to call concurrently for disjoint ranges: each call
// only reads PPrev/PCur and only writes the PNext cells in its own
// range.
func StepRange(g *grid.Grid, p *params.Parameters, s float64, wLo, wHi int) {
	d1, d2, d3, d4 := p.D1, p.D2, p.D3, p.D4
	lambda := p.Lambda

	prev, cur, next := g.PPrev.Values, g.PCur.Values, g.PNext.Values

	for w := wLo; w < wHi; w++ {
		for h := 0; h < g.H; h++ {
			for d := 0; d < g.D; d++ {
				idx := g.Index(w, h, d)
				geom := g.Geometry[idx]

				if geom&gridgeom.Wall != 0 {
					next[idx] = 0
					continue
				}

				mask := g.Neighbours[idx]
				var s1, s2, s3 float64
				for i := 0; i < gridgeom.AxisCount; i++ {
					if mask.Has(i) {
						s1 += cur[neighbourIndex(g, w, h, d, i)]
					}
				}
				for i := gridgeom.AxisCount; i < gridgeom.AxisCount+gridgeom.EdgeCount; i++ {
					if mask.Has(i) {
						s2 += cur[neighbourIndex(g, w, h, d, i)]
					}
				}
				for i := gridgeom.AxisCount + gridgeom.EdgeCount; i < len(gridgeom.Offsets); i++ {
					if mask.Has(i) {
						s3 += cur[neighbourIndex(g, w, h, d, i)]
					}
				}

				k := mask.AxisPopcount()
				pOpen := d1*s1 + d2*s2 + d3*s3 + d4*cur[idx] - prev[idx]

				var pNext float64
				if k < gridgeom.AxisCount {
					gamma := float64(gridgeom.AxisCount-k) * lambda * g.Beta[idx]
					pNext = (pOpen + gamma*prev[idx]) / (1 + gamma)
				} else {
					pNext = pOpen
				}

				if geom&gridgeom.Source != 0 && !math.IsNaN(s) {
					pNext = s
				}
				next[idx] = pNext
			}
		}
	}
}

func neighbourIndex(g *grid.Grid, w, h, d, offsetIdx int) int {
	off := gridgeom.Offsets[offsetIdx]
	return g.Index(w+off[0], h+off[1], d+off[2])
}
