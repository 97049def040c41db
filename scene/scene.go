// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scene implements the external Scene collaborator: it paints
// geometry and β into a Grid and calls Grid.Build, but the core
// packages never import it back. A ShoeboxScene covers the
// rectangular-room case.
package scene

import (
	"math"

	"github.com/emer/roomfdtd/gridgeom"
	"github.com/emer/roomfdtd/grid"
	"github.com/emer/roomfdtd/params"
	"github.com/emer/roomfdtd/roomerr"
)

// Scene is the external collaborator that owns room geometry and
// material properties; the core Grid/Stencil/Analysis packages never
// know about a concrete Scene.
type Scene interface {
	Build(p *params.Parameters) (*grid.Grid, error)
	Rebuild(g *grid.Grid) error
	RoomModes() []Mode
}

// Mode is one analytic room-resonance frequency.
type Mode struct {
	FreqHz   float64
	AxisKind int // 1 = axial, 2 = tangential, 3 = oblique
}

// ShoeboxScene is a rectangular room of WidthM x HeightM x DepthM
// metres, uniform wall β, an axis-aligned box of candidate source
// positions, and an axis-aligned box of listener positions.
type ShoeboxScene struct {
	WidthM, HeightM, DepthM float64
	WallBeta                float64

	SourceRegionLoM, SourceRegionHiM [3]float64
	ListenerLoM, ListenerHiM         [3]float64
}

// Build instantiates a Grid sized from the room dimensions and the
// Parameters' spatial step, sets the six outer faces' reflection
// coefficient to WallBeta (the room boundary is the locally-reacting
// absorbing condition at the domain edge, not a WALL-flagged cell),
// marks the configured source-region and listener boxes, and calls
// Grid.Build.
func (s *ShoeboxScene) Build(p *params.Parameters) (*grid.Grid, error) {
	if s.WidthM <= 0 || s.HeightM <= 0 || s.DepthM <= 0 {
		return nil, &roomerr.ConfigurationError{Field: "room dimensions", Reason: "must all be > 0"}
	}
	w := int(math.Round(s.WidthM / p.Dx))
	h := int(math.Round(s.HeightM / p.Dx))
	d := int(math.Round(s.DepthM / p.Dx))
	if w < 2 || h < 2 || d < 2 {
		return nil, &roomerr.ConfigurationError{Field: "room dimensions", Reason: "too small for the current spatial step"}
	}

	g := grid.New(w, h, d, p.Dx)
	g.SetEdgeBeta([6]float64{s.WallBeta, s.WallBeta, s.WallBeta, s.WallBeta, s.WallBeta, s.WallBeta})

	s.paintRegion(g, s.SourceRegionLoM, s.SourceRegionHiM, gridgeom.SourceRegion, p.Dx)
	s.paintRegion(g, s.ListenerLoM, s.ListenerHiM, gridgeom.Listener, p.Dx)

	if err := g.Build(); err != nil {
		return nil, err
	}
	return g, nil
}

// Rebuild touches β only, without re-topologising geometry or
// neighbours. A ShoeboxScene's β is uniform and frequency-independent,
// so this only re-asserts the edge β already set at Build time. The
// per-cell β the stencil reads is derived from EdgeBeta by Grid.Build
// alone, so a changed EdgeBeta set here would not reach it.
func (s *ShoeboxScene) Rebuild(g *grid.Grid) error {
	g.SetEdgeBeta([6]float64{s.WallBeta, s.WallBeta, s.WallBeta, s.WallBeta, s.WallBeta, s.WallBeta})
	return nil
}

// RoomModes computes the analytic axial/tangential/oblique resonance
// frequencies f_ijk = (c/2)*sqrt((i/W)^2+(j/H)^2+(k/D)^2) for i,j,k in
// 0..3, excluding (0,0,0).
func (s *ShoeboxScene) RoomModes() []Mode {
	var modes []Mode
	for i := 0; i <= 3; i++ {
		for j := 0; j <= 3; j++ {
			for k := 0; k <= 3; k++ {
				if i == 0 && j == 0 && k == 0 {
					continue
				}
				term := math.Pow(float64(i)/s.WidthM, 2) + math.Pow(float64(j)/s.HeightM, 2) + math.Pow(float64(k)/s.DepthM, 2)
				freq := (params.SpeedOfSound / 2) * math.Sqrt(term)
				axisKind := nonZeroCount(i, j, k)
				modes = append(modes, Mode{FreqHz: freq, AxisKind: axisKind})
			}
		}
	}
	return modes
}

func nonZeroCount(vals ...int) int {
	n := 0
	for _, v := range vals {
		if v != 0 {
			n++
		}
	}
	return n
}

// paintRegion marks the grid cells inside [loM,hiM] (metres, inclusive)
// with flag, converting metres to grid indices via dx.
func (s *ShoeboxScene) paintRegion(g *grid.Grid, loM, hiM [3]float64, flag gridgeom.Flag, dx float64) {
	toIdx := func(m float64) int { return int(math.Round(m / dx)) }
	g.FillRegion(toIdx(loM[0]), toIdx(hiM[0]), toIdx(loM[1]), toIdx(hiM[1]), toIdx(loM[2]), toIdx(hiM[2]), flag)
}
