// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package analysis implements the per-cell online analysis kernel that
// runs once per step on the freshly-rotated P_cur: a Welford mean, an
// RMS/Leq pair, and an EWMA/EWMA_L pair over pressure-squared. Like
// stencil, it is split into a whole-grid entry point and a w-range
// entry point so a backend can partition the same way across both
// kernels.
package analysis

import (
	"math"

	"github.com/emer/roomfdtd/gridgeom"
	"github.com/emer/roomfdtd/grid"
	"github.com/emer/roomfdtd/params"
)

// pRef is the reference pressure for dB quantities, 20 micropascals.
const pRef = 20e-6

// Step runs the analysis kernel over the whole grid. Equivalent to
// StepRange(g, p, iteration, 0, g.W).
func Step(g *grid.Grid, p *params.Parameters, iteration int) {
	StepRange(g, p, iteration, 0, g.W)
}

// StepRange runs the analysis kernel over w in [wLo,wHi), reading
// g.PCur and updating g.Analysis in place. iteration is the
// zero-based step count just completed; n = iteration+1 is the sample
// count fed into the Welford recurrence. Safe to call concurrently for
// disjoint ranges.
func StepRange(g *grid.Grid, p *params.Parameters, iteration int, wLo, wHi int) {
	n := float64(iteration + 1)
	alpha := 1 - math.Exp(-p.Dt/p.EWMATau)
	pressure := g.PCur.Values
	a := g.Analysis.Values
	nc := int(grid.NumChannels)

	for w := wLo; w < wHi; w++ {
		for h := 0; h < g.H; h++ {
			for d := 0; d < g.D; d++ {
				idx := g.Index(w, h, d)
				if g.Geometry[idx]&gridgeom.Wall != 0 {
					continue // stays NaN forever, set once at Build/ResetValues
				}

				P := pressure[idx]
				if math.IsNaN(P) {
					continue // policy: NaN input skips the update entirely
				}

				base := idx * nc

				mean := a[base+int(grid.MeanPressure)]
				a[base+int(grid.MeanPressure)] = mean + (P-mean)/n

				rms := a[base+int(grid.RMS)]
				meanSq := rms*rms + (P*P-rms*rms)/n
				rmsNew := math.Sqrt(meanSq)
				a[base+int(grid.RMS)] = rmsNew
				a[base+int(grid.Leq)] = 10 * math.Log10(meanSq/(pRef*pRef))

				ewma := a[base+int(grid.Ewma)]
				ewmaNew := ewma + (P*P-ewma)*alpha
				a[base+int(grid.Ewma)] = ewmaNew
				a[base+int(grid.EwmaL)] = 10 * math.Log10(ewmaNew/(pRef*pRef))
			}
		}
	}
}

// ReduceListener computes (avgSPL, minSPL, maxSPL) of the LEQ channel
// over every LISTENER cell with a non-NaN LEQ value. Returns all-zero
// when the listener set is empty or every LEQ in it is NaN.
func ReduceListener(g *grid.Grid) (avgSPL, minSPL, maxSPL float64) {
	nc := int(grid.NumChannels)
	sum := 0.0
	count := 0
	minSPL, maxSPL = math.Inf(1), math.Inf(-1)

	for w := 0; w < g.W; w++ {
		for h := 0; h < g.H; h++ {
			for d := 0; d < g.D; d++ {
				idx := g.Index(w, h, d)
				if g.Geometry[idx]&gridgeom.Listener == 0 {
					continue
				}
				leq := g.Analysis.Values[idx*nc+int(grid.Leq)]
				if math.IsNaN(leq) {
					continue
				}
				sum += leq
				count++
				if leq < minSPL {
					minSPL = leq
				}
				if leq > maxSPL {
					maxSPL = leq
				}
			}
		}
	}

	if count == 0 {
		return 0, 0, 0
	}
	return sum / float64(count), minSPL, maxSPL
}
