// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sweep implements the Sweep Driver: for each candidate
// source-position set, it iterates the test frequencies in ascending
// order, runs the simulation to steady state at each, and scores the
// position by the flatness of its SPL response across frequency. It
// also implements source-pair enumeration and fractional-octave band
// centres, the latter ported from the original implementation's
// get_octaval_center_frequencies (original_source/lib/math/octaves.py).
package sweep

import (
	"math"
	"sort"
	"strconv"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/emer/roomfdtd/analysis"
	"github.com/emer/roomfdtd/generator"
	"github.com/emer/roomfdtd/grid"
	"github.com/emer/roomfdtd/params"
	"github.com/emer/roomfdtd/roomerr"
	"github.com/emer/roomfdtd/roomlog"
	"github.com/emer/roomfdtd/scene"
	"github.com/emer/roomfdtd/simulation"
	"gonum.org/v1/gonum/stat"
)

// OctaveBands computes the fractional-octave band centres
// f_k = 1000*2^(k/fraction) whose centre falls within [lower,upper],
// ascending order. Ported from octaves.py's
// get_octaval_center_frequencies (inclusive variant).
func OctaveBands(fraction int, lower, upper float64) []float64 {
	if fraction <= 0 || lower <= 0 || upper < lower {
		return nil
	}
	factor := math.Pow(2, 1/float64(fraction))
	lowerIt := float64(fraction) * -math.Log2(lower/1000)
	upperIt := float64(fraction) * -math.Log2(upper/1000)
	startBand := int(math.Floor(lowerIt))
	endBand := int(math.Ceil(upperIt))

	n := startBand - endBand + 1
	if n <= 0 {
		return nil
	}
	out := make([]float64, 0, n)
	current := 1000 * math.Pow(2, -float64(startBand)/float64(fraction))
	for i := 0; i < n; i++ {
		out = append(out, current)
		current *= factor
	}
	return out
}

// EnumerateSourcePositions returns every k-combination of P whose
// members are pairwise at least d_min metres apart. k=1 returns each
// position as its own singleton. Output order is combinatorial
// (stable).
func EnumerateSourcePositions(positions [][3]int, k int, dMin, dx float64) ([][][3]int, error) {
	if k < 1 {
		return nil, &roomerr.ConfigurationError{Field: "k", Reason: "must be >= 1"}
	}
	if k == 1 {
		out := make([][][3]int, len(positions))
		for i, p := range positions {
			out[i] = [][3]int{p}
		}
		return out, nil
	}

	var out [][][3]int
	combo := make([]int, k)
	var recurse func(start, depth int)
	recurse = func(start, depth int) {
		if depth == k {
			if combinationSatisfiesMinDistance(positions, combo, dMin, dx) {
				tuple := make([][3]int, k)
				for i, idx := range combo {
					tuple[i] = positions[idx]
				}
				out = append(out, tuple)
			}
			return
		}
		for i := start; i < len(positions); i++ {
			combo[depth] = i
			recurse(i+1, depth+1)
		}
	}
	recurse(0, 0)
	return out, nil
}

func combinationSatisfiesMinDistance(positions [][3]int, combo []int, dMin, dx float64) bool {
	for i := 0; i < len(combo); i++ {
		for j := i + 1; j < len(combo); j++ {
			pa, pb := positions[combo[i]], positions[combo[j]]
			dw := float64(pa[0] - pb[0])
			dh := float64(pa[1] - pb[1])
			dd := float64(pa[2] - pb[2])
			sqDist := (dw*dw + dh*dh + dd*dd) * dx * dx
			if sqDist < dMin*dMin {
				return false
			}
		}
	}
	return true
}

// PositionResult is one candidate position's sweep outcome.
type PositionResult struct {
	Index      int
	Positions  [][3]int // the k-tuple of grid indices tested
	Dx         float64
	SPLVec     []float64 // avg_spl per test frequency, ascending
	Deviation  float64   // flatness score; lower is flatter
	MeanSPL    float64
	StdDevSPL  float64
}

// Driver owns the Grid/Scene/Simulation for the duration of a sweep
// across candidate position sets.
type Driver struct {
	Scene  scene.Scene
	Grid   *grid.Grid
	Params *params.Parameters
	Sim    *simulation.Simulation
	Log    *roomlog.Logger

	Frequencies  []float64 // test frequencies, ascending
	SimSeconds   float64   // T_sim, a per-sweep constant
	NewGenerator func(freqHz float64) generator.Generator
}

// RunPosition selects the source positions, then for each test
// frequency in turn retunes the generator, rebuilds the scene, resets
// the simulation, and steps it to steady state, returning the
// resulting SPL vector and flatness deviation.
func (d *Driver) RunPosition(index int, positionSet [][3]int) (*PositionResult, error) {
	if err := d.Grid.SelectSourceLocations(positionSet); err != nil {
		return nil, err
	}

	splVec := make([]float64, len(d.Frequencies))
	for i, f := range d.Frequencies {
		if err := d.Params.SetSignalFrequency(f); err != nil {
			return nil, err
		}
		if err := d.Scene.Rebuild(d.Grid); err != nil {
			return nil, err
		}
		if err := d.Sim.Reset(); err != nil {
			return nil, err
		}
		if err := d.Sim.SyncReadBuffers(); err != nil {
			return nil, err
		}

		d.Sim.Generator = d.NewGenerator(f)
		runtimeSteps := int(math.Ceil(d.SimSeconds / d.Params.Dt))
		if err := d.Sim.Step(runtimeSteps); err != nil {
			return nil, err
		}

		avg, _, _ := analysis.ReduceListener(d.Grid)
		splVec[i] = avg

		if d.Log != nil {
			d.Log.Debug("sweep frequency complete", "position_index", index, "frequency_hz", f, "avg_spl", avg)
		}
	}

	deviation := 0.0
	for k := 1; k < len(splVec); k++ {
		diff := splVec[k] - splVec[k-1]
		deviation += diff * diff
	}

	mean, stddev := stat.MeanStdDev(splVec, nil)

	return &PositionResult{
		Index:     index,
		Positions: positionSet,
		Dx:        d.Grid.Dx,
		SPLVec:    splVec,
		Deviation: deviation,
		MeanSPL:   mean,
		StdDevSPL: stddev,
	}, nil
}

// RunAll runs RunPosition over every candidate position set in input
// order, ascending frequency order within each.
func (d *Driver) RunAll(positionSets [][][3]int) ([]*PositionResult, error) {
	results := make([]*PositionResult, len(positionSets))
	for i, ps := range positionSets {
		r, err := d.RunPosition(i, ps)
		if err != nil {
			return nil, err
		}
		results[i] = r
		if d.Log != nil {
			d.Log.Info("position complete", "position_index", i, "deviation", r.Deviation)
		}
	}
	return results, nil
}

// RankPositions sorts results by ascending deviation (flatter first),
// breaking ties by original position-set iteration order.
func RankPositions(results []*PositionResult) []*PositionResult {
	ranked := make([]*PositionResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Deviation < ranked[j].Deviation
	})
	return ranked
}

// ResultTable renders results into an etable.Table whose columns are
// the per-position-set CSV record: index, per-tuple-member grid and
// metre coordinates, deviation, avg_spl, then one spl_f column per
// test frequency. Built with SetFromSchema/AddRows/SetCellFloat, the
// row-building idiom used throughout github.com/emer/etable/etable.
func ResultTable(results []*PositionResult, k int) (*etable.Table, error) {
	maxFreqs := 0
	for _, r := range results {
		if len(r.SPLVec) > maxFreqs {
			maxFreqs = len(r.SPLVec)
		}
	}

	sch := etable.Schema{
		{"index", etensor.FLOAT64, nil, nil},
	}
	for t := 0; t < k; t++ {
		for _, base := range []string{"w_idx", "w_m", "h_idx", "h_m", "d_idx", "d_m"} {
			sch = append(sch, etable.Column{Name: colName(base, t), Type: etensor.FLOAT64})
		}
	}
	sch = append(sch, etable.Column{Name: "deviation", Type: etensor.FLOAT64})
	sch = append(sch, etable.Column{Name: "avg_spl", Type: etensor.FLOAT64})
	for f := 0; f < maxFreqs; f++ {
		sch = append(sch, etable.Column{Name: colName("spl_f", f+1), Type: etensor.FLOAT64})
	}

	dt := &etable.Table{}
	dt.SetFromSchema(sch, 0)
	if err := dt.AddRows(len(results)); err != nil {
		return nil, err
	}

	for row, r := range results {
		dt.SetCellFloat("index", row, float64(r.Index))
		for t, pos := range r.Positions {
			dt.SetCellFloat(colName("w_idx", t), row, float64(pos[0]))
			dt.SetCellFloat(colName("w_m", t), row, (float64(pos[0])+0.5)*r.Dx)
			dt.SetCellFloat(colName("h_idx", t), row, float64(pos[1]))
			dt.SetCellFloat(colName("h_m", t), row, (float64(pos[1])+0.5)*r.Dx)
			dt.SetCellFloat(colName("d_idx", t), row, float64(pos[2]))
			dt.SetCellFloat(colName("d_m", t), row, (float64(pos[2])+0.5)*r.Dx)
		}
		dt.SetCellFloat("deviation", row, r.Deviation)
		dt.SetCellFloat("avg_spl", row, r.MeanSPL)
		for f, v := range r.SPLVec {
			dt.SetCellFloat(colName("spl_f", f+1), row, v)
		}
	}

	return dt, nil
}

func colName(base string, idx int) string {
	if idx == 0 {
		return base
	}
	return base + "_" + strconv.Itoa(idx)
}
