// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package simulation implements the Simulation Controller state
// machine: Unbuilt -> Ready -> Stepping -> Ready. It owns the Generator
// and Backend for the run's lifetime and is the single writer of the
// Grid's arrays while a step batch is in flight.
package simulation

import (
	"math"

	"github.com/emer/roomfdtd/backend"
	"github.com/emer/roomfdtd/generator"
	"github.com/emer/roomfdtd/grid"
	"github.com/emer/roomfdtd/gridgeom"
	"github.com/emer/roomfdtd/params"
	"github.com/emer/roomfdtd/roomerr"
	"github.com/emer/roomfdtd/roomlog"
)

// State is one of the three states in the controller's state machine.
type State int

const (
	Unbuilt State = iota
	Ready
	Stepping
)

func (s State) String() string {
	switch s {
	case Unbuilt:
		return "unbuilt"
	case Ready:
		return "ready"
	case Stepping:
		return "stepping"
	default:
		return "unknown"
	}
}

// Simulation drives a Grid through FDTD time steps using a Generator
// for hard-source injection and a Backend for the per-step dispatches.
type Simulation struct {
	Grid      *grid.Grid
	Params    *params.Parameters
	Backend   backend.Backend
	Generator generator.Generator
	Log       *roomlog.Logger

	Iteration int
	T         float64

	state State
}

// New constructs a Simulation from an already-built Grid, producing
// the Ready state. A Grid that has not been built yields a
// BuildError, matching the state machine's Unbuilt predecessor.
func New(g *grid.Grid, p *params.Parameters, be backend.Backend, gen generator.Generator, lg *roomlog.Logger) (*Simulation, error) {
	if err := g.RequireBuilt(); err != nil {
		return nil, err
	}
	if lg == nil {
		lg = roomlog.Default()
	}
	return &Simulation{
		Grid:      g,
		Params:    p,
		Backend:   be,
		Generator: gen,
		Log:       lg,
		state:     Ready,
	}, nil
}

// State reports the controller's current state.
func (s *Simulation) State() State { return s.state }

// Step advances exactly n steps. Each step: ask the Generator for the
// hard-source sample, dispatch the stencil kernel into P_next, rotate
// the three buffer roles, dispatch the analysis kernel on the new
// P_cur, then advance iteration and t. The whole batch is atomic from
// the caller's perspective: Step returns only after every dispatch in
// the batch has completed, and a NumericalFailure is checked once at
// the end rather than after every step.
//
// Step holds the Grid's array lock for the duration of the batch (as a
// reader, alongside any other concurrent Step call) so that a Build or
// ResetValues on another goroutine cannot observe or mutate the arrays
// mid-batch.
func (s *Simulation) Step(n int) error {
	if s.state != Ready {
		return &roomerr.BuildError{Reason: "simulation must be Ready to step"}
	}
	s.state = Stepping
	defer func() { s.state = Ready }()

	s.Grid.RLock()
	defer s.Grid.RUnlock()

	for i := 0; i < n; i++ {
		sample := s.Generator.Generate(s.T, s.Iteration)

		if err := s.Backend.DispatchStencil(s.Grid, s.Params, sample); err != nil {
			return err
		}

		s.Grid.PPrev, s.Grid.PCur, s.Grid.PNext = s.Grid.PCur, s.Grid.PNext, s.Grid.PPrev

		if err := s.Backend.DispatchAnalysis(s.Grid, s.Params, s.Iteration); err != nil {
			return err
		}

		s.Iteration++
		s.T += s.Params.Dt
	}

	if err := s.checkFinite(); err != nil {
		s.Log.Error("numerical failure detected", "iteration", s.Iteration, "err", err)
		return err
	}

	s.Log.Debug("step batch complete", "iteration", s.Iteration, "t", s.T)
	return nil
}

// checkFinite scans P_cur for the first non-finite value, reporting it
// as a NumericalFailure. Walls and NaN-sentinel analysis channels are
// not pressure, so this only inspects the pressure tensor.
func (s *Simulation) checkFinite() error {
	for idx, v := range s.Grid.PCur.Values {
		isWall := s.Grid.Geometry[idx]&gridgeom.Wall != 0
		if math.IsInf(v, 0) || (math.IsNaN(v) && !isWall) {
			return &roomerr.NumericalFailure{CellIndex: idx, Step: uint64(s.Iteration), Value: v}
		}
	}
	return nil
}

// Reset zeros the pressure and analysis arrays and the iteration/time
// counters, and re-synchronises to the compute device. It always leaves
// the controller Ready; since Step returns to Ready when its batch
// ends, a Reset between batches is a Ready -> Ready transition.
func (s *Simulation) Reset() error {
	if err := s.Grid.ResetValues(); err != nil {
		return err
	}
	s.Iteration = 0
	s.T = 0
	s.state = Ready
	return s.SyncReadBuffers()
}

// SyncReadBuffers re-uploads geometry and β to the compute device
// after a scene rebuild. The CPU worker-pool back-end has no device
// mirror to synchronise, so this is a documented no-op for that
// back-end; a Device back-end would perform the transfer here.
func (s *Simulation) SyncReadBuffers() error {
	return nil
}

// SelectSourceLocations delegates to Grid.
func (s *Simulation) SelectSourceLocations(positions [][3]int) error {
	return s.Grid.SelectSourceLocations(positions)
}
