// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grid owns the cubic pressure, geometry, neighbour-mask,
// reflection-coefficient, and analysis arrays that the stencil and
// analysis kernels operate on each step. It is the sole owner of that
// state: Stencil and Analysis receive the arrays by reference for the
// duration of one step only.
//
// Array layout follows the etensor convention used throughout
// github.com/emer/etable: shaped tensors for anything multi-channel or
// multi-dimensional, with direct .Values slice access in the hot paths
// (stencil, analysis) for speed.
package grid

import (
	"math"
	"sync"

	"github.com/emer/etable/etensor"
	"github.com/emer/roomfdtd/gridgeom"
	"github.com/emer/roomfdtd/roomerr"
)

// ChannelKey indexes the K analysis channels carried per cell.
type ChannelKey int

const (
	MeanPressure ChannelKey = iota
	RMS
	Leq
	Ewma
	EwmaL
	NumChannels
)

// Grid owns every per-cell array for a (W,H,D) simulation domain.
type Grid struct {
	W, H, D int
	Dx      float64

	Geometry   []gridgeom.Flag
	Neighbours []gridgeom.NeighbourMask
	Beta       []float64 // per-cell reflection coefficient
	EdgeBeta   [6]float64 // outer-face β, ordered as gridgeom axis offsets 0..5

	PPrev, PCur, PNext *etensor.Float64 // triple-buffered pressure, rotated each step
	Analysis           *etensor.Float64 // shape [W,H,D,NumChannels]

	sourceSet [][3]int // ordered SOURCE_REGION positions, indexed by build order

	// mu excludes Build/ResetValues (writers) from a Simulation.Step
	// batch in progress (a reader, via RLock/RUnlock), so a concurrent
	// scene rebuild or reset can't observe or mutate the arrays
	// mid-batch.
	mu sync.RWMutex

	built bool
}

// New allocates (but does not yet build) a Grid of the given shape.
func New(w, h, d int, dx float64) *Grid {
	n := w * h * d
	g := &Grid{
		W: w, H: h, D: d, Dx: dx,
		Geometry:   make([]gridgeom.Flag, n),
		Neighbours: make([]gridgeom.NeighbourMask, n),
		Beta:       make([]float64, n),
		PPrev:      etensor.NewFloat64([]int{w, h, d}, nil, nil),
		PCur:       etensor.NewFloat64([]int{w, h, d}, nil, nil),
		PNext:      etensor.NewFloat64([]int{w, h, d}, nil, nil),
		Analysis:   etensor.NewFloat64([]int{w, h, d, int(NumChannels)}, nil, nil),
	}
	return g
}

// Index returns the flat index of cell (w,h,d) into Geometry, Neighbours,
// Beta, and the three pressure tensors.
func (g *Grid) Index(w, h, d int) int {
	return (w*g.H+h)*g.D + d
}

// InBounds reports whether (w,h,d) lies inside the grid.
func (g *Grid) InBounds(w, h, d int) bool {
	return w >= 0 && w < g.W && h >= 0 && h < g.H && d >= 0 && d < g.D
}

// FillRegion ORs flag into every cell in the inclusive box
// [wLo,wHi]x[hLo,hHi]x[dLo,dHi]. This is the Scene collaborator's entry
// point for painting geometry.
func (g *Grid) FillRegion(wLo, wHi, hLo, hHi, dLo, dHi int, flag gridgeom.Flag) {
	for w := wLo; w <= wHi; w++ {
		for h := hLo; h <= hHi; h++ {
			for d := dLo; d <= dHi; d++ {
				if !g.InBounds(w, h, d) {
					continue
				}
				g.Geometry[g.Index(w, h, d)] |= flag
			}
		}
	}
}

// SetWallBeta sets the material reflection coefficient of a WALL cell.
func (g *Grid) SetWallBeta(w, h, d int, beta float64) {
	g.Beta[g.Index(w, h, d)] = beta
}

// SetEdgeBeta sets the six outer-face reflection coefficients, ordered
// -w,+w,-h,+h,-d,+d (matching gridgeom's axis offset order).
func (g *Grid) SetEdgeBeta(edge [6]float64) {
	g.EdgeBeta = edge
}

// Build computes Neighbours as a pure function of Geometry, derives
// interior β by averaging adjacent wall/edge β, and indexes the ordered
// source-region position list. Must run exactly once before any step.
func (g *Grid) Build() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for w := 0; w < g.W; w++ {
		for h := 0; h < g.H; h++ {
			for d := 0; d < g.D; d++ {
				idx := g.Index(w, h, d)
				if g.Geometry[idx]&gridgeom.Wall != 0 {
					g.Neighbours[idx] = 0
					continue
				}
				g.Neighbours[idx] = g.buildNeighbourMask(w, h, d)
				if g.Geometry[idx]&gridgeom.SourceRegion != 0 {
					g.sourceSet = append(g.sourceSet, [3]int{w, h, d})
				}
			}
		}
	}
	g.buildInteriorBeta()
	g.buildWallAnalysisSentinel()
	g.built = true
	return nil
}

// Built reports whether Build has run.
func (g *Grid) Built() bool { return g.built }

// RequireBuilt returns a BuildError if the grid has not been built yet.
func (g *Grid) RequireBuilt() error {
	if !g.built {
		return &roomerr.BuildError{Reason: "grid.Build must run before stepping or resetting"}
	}
	return nil
}

func (g *Grid) buildNeighbourMask(w, h, d int) gridgeom.NeighbourMask {
	var mask gridgeom.NeighbourMask
	for i, off := range gridgeom.Offsets {
		nw, nh, nd := w+off[0], h+off[1], d+off[2]
		if !g.InBounds(nw, nh, nd) {
			continue
		}
		if g.Geometry[g.Index(nw, nh, nd)]&gridgeom.Wall != 0 {
			continue
		}
		mask = mask.Set(i)
	}
	return mask
}

// buildInteriorBeta derives, for every non-WALL cell, β as the mean of
// each missing axis neighbour's contribution: an adjacent WALL cell
// contributes that wall's β, and a missing neighbour at the domain
// boundary contributes EdgeBeta for that face. Cells with no missing
// axis neighbour (K=6, fully interior) keep β=0.
func (g *Grid) buildInteriorBeta() {
	for w := 0; w < g.W; w++ {
		for h := 0; h < g.H; h++ {
			for d := 0; d < g.D; d++ {
				idx := g.Index(w, h, d)
				if g.Geometry[idx]&gridgeom.Wall != 0 {
					continue // walls keep their own material β
				}
				sum, count := 0.0, 0
				for i := 0; i < gridgeom.AxisCount; i++ {
					off := gridgeom.Offsets[i]
					nw, nh, nd := w+off[0], h+off[1], d+off[2]
					if !g.InBounds(nw, nh, nd) {
						sum += g.EdgeBeta[i]
						count++
						continue
					}
					nIdx := g.Index(nw, nh, nd)
					if g.Geometry[nIdx]&gridgeom.Wall != 0 {
						sum += g.Beta[nIdx]
						count++
					}
				}
				if count > 0 {
					g.Beta[idx] = sum / float64(count)
				}
			}
		}
	}
}

func (g *Grid) buildWallAnalysisSentinel() {
	nan := math.NaN()
	for w := 0; w < g.W; w++ {
		for h := 0; h < g.H; h++ {
			for d := 0; d < g.D; d++ {
				idx := g.Index(w, h, d)
				if g.Geometry[idx]&gridgeom.Wall == 0 {
					continue
				}
				base := idx * int(NumChannels)
				for k := 0; k < int(NumChannels); k++ {
					g.Analysis.Values[base+k] = nan
				}
			}
		}
	}
}

// SourceSet returns the ordered list of SOURCE_REGION positions found at
// Build time.
func (g *Grid) SourceSet() [][3]int { return g.sourceSet }

// SelectSourceLocations clears every SOURCE bit and sets it at exactly
// the given positions.
func (g *Grid) SelectSourceLocations(positions [][3]int) error {
	if err := g.RequireBuilt(); err != nil {
		return err
	}
	for i := range g.Geometry {
		g.Geometry[i] &^= gridgeom.Source
	}
	for _, p := range positions {
		if !g.InBounds(p[0], p[1], p[2]) {
			return &roomerr.ConfigurationError{Field: "source position", Reason: "out of bounds"}
		}
		g.Geometry[g.Index(p[0], p[1], p[2])] |= gridgeom.Source
	}
	return nil
}

// ResetValues zeros the three pressure buffers and every non-WALL
// analysis channel, re-establishing the NaN sentinel on WALL cells.
func (g *Grid) ResetValues() error {
	if err := g.RequireBuilt(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range g.PPrev.Values {
		g.PPrev.Values[i] = 0
		g.PCur.Values[i] = 0
		g.PNext.Values[i] = 0
	}
	for i := range g.Analysis.Values {
		g.Analysis.Values[i] = 0
	}
	g.buildWallAnalysisSentinel()
	return nil
}

// Lock/Unlock/RLock/RUnlock expose the grid's array mutex. Build and
// ResetValues take the write lock; Simulation.Step takes the read lock
// for the duration of a step batch, so the two can never run
// concurrently against the same arrays.
func (g *Grid) Lock()    { g.mu.Lock() }
func (g *Grid) Unlock()  { g.mu.Unlock() }
func (g *Grid) RLock()   { g.mu.RLock() }
func (g *Grid) RUnlock() { g.mu.RUnlock() }
