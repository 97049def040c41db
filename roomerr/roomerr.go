// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package roomerr holds the error taxonomy shared by every core package:
// configuration mistakes, attempts to step an unbuilt grid, non-finite
// pressure values, and back-end failures. Kept as its own tiny package
// so params, grid, simulation, and sweep can all depend on it without
// forming an import cycle.
package roomerr

import "fmt"

// ConfigurationError reports an invalid parameter combination, caught at
// setup time and fatal for the run.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("roomfdtd: configuration error: %s: %s", e.Field, e.Reason)
}

// BuildError reports an attempt to step or reset a Grid before Build has
// run.
type BuildError struct {
	Reason string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("roomfdtd: build error: %s", e.Reason)
}

// NumericalFailure reports a non-finite value discovered in pressure_next
// at the end of a step batch. The offending cell and step are recorded
// once per batch; the run that produced it must be aborted.
type NumericalFailure struct {
	CellIndex int
	Step      uint64
	Value     float64
}

func (e *NumericalFailure) Error() string {
	return fmt.Sprintf("roomfdtd: numerical failure: cell %d at step %d is non-finite (%v)", e.CellIndex, e.Step, e.Value)
}

// DeviceError reports a compute back-end failure: kernel compile/launch
// or a host<->device transfer that did not complete.
type DeviceError struct {
	Backend string
	Reason  string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("roomfdtd: device error (%s): %s", e.Backend, e.Reason)
}
