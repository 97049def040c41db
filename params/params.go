// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package params derives the spatial step, time step, Courant number, and
// FDTD scheme coefficients from a handful of user-facing knobs: a small
// set of raw fields, and a single Compute pass that derives everything
// else so callers never see stale derived state.
package params

import (
	"math"

	"github.com/emer/roomfdtd/roomerr"
)

// SpeedOfSound is c, in metres/second, held constant for a run.
const SpeedOfSound = 343.0

// flushThreshold: scheme coefficients smaller than this in magnitude are
// flushed to zero so the stencil loop can branch-eliminate them.
const flushThreshold = 1e-12

// DefaultEWMATau is the default EWMA time constant, 125ms.
const DefaultEWMATau = 0.125

// Parameters holds the raw knobs plus every derived quantity the stencil
// and analysis kernels need. Reconfigurable between runs via the Set*
// methods, each of which recomputes the full derived set atomically.
type Parameters struct {
	// Raw, user-facing.
	FMax         float64 // upper design frequency, Hz
	Oversampling float64 // sample-rate oversampling factor, >= 1
	FSig         float64 // current source frequency, Hz
	Lambda       float64 // Courant number free parameter
	A, B         float64 // scheme free parameters (SLF: a=b=0)
	EWMATau       float64 // EWMA time constant, seconds

	// Derived, recomputed by Compute() whenever a raw field changes.
	FS        float64 // sample rate = FMax * Oversampling
	Dx        float64 // spatial step
	Dt        float64 // time step
	LambdaSq  float64
	D1, D2, D3, D4 float64
}

// New builds Parameters from the minimal required knobs and computes all
// derived values. Returns a ConfigurationError if the inputs can't form a
// valid scheme.
func New(fMax, oversampling, fSig, lambda, a, b float64) (*Parameters, error) {
	p := &Parameters{
		FMax:         fMax,
		Oversampling: oversampling,
		FSig:         fSig,
		Lambda:       lambda,
		A:            a,
		B:            b,
		EWMATau:      DefaultEWMATau,
	}
	if err := p.Compute(); err != nil {
		return nil, err
	}
	return p, nil
}

// Compute (re)derives FS, Dx, Dt, and the scheme coefficients d1..d4 from
// the current raw fields. Call after mutating any raw field directly.
func (p *Parameters) Compute() error {
	if p.FMax <= 0 {
		return &roomerr.ConfigurationError{Field: "FMax", Reason: "must be > 0"}
	}
	if p.Oversampling < 1 {
		return &roomerr.ConfigurationError{Field: "Oversampling", Reason: "must be >= 1"}
	}
	if p.Lambda <= 0 {
		return &roomerr.ConfigurationError{Field: "Lambda", Reason: "must be > 0"}
	}

	p.FS = p.FMax * p.Oversampling
	p.Dx = SpeedOfSound / p.FS
	p.Dt = p.Dx * p.Lambda / SpeedOfSound

	p.LambdaSq = p.Lambda * p.Lambda
	a, b, lsq := p.A, p.B, p.LambdaSq

	p.D1 = flush(lsq * (1 - 4*a + 4*b))
	p.D2 = flush(lsq * (a - 2*b))
	p.D3 = flush(lsq * b)
	p.D4 = flush(2 - 6*lsq + 12*a*lsq - 8*b*lsq)
	return nil
}

// SetSignalFrequency updates the current source test frequency. It does
// not itself require recomputing d1..d4 (those depend only on fMax,
// oversampling, lambda, a, b), but it is the hook the Sweep Driver calls
// once per test frequency before retuning the generator and rebuilding
// the scene.
func (p *Parameters) SetSignalFrequency(fSig float64) error {
	if fSig <= 0 {
		return &roomerr.ConfigurationError{Field: "FSig", Reason: "must be > 0"}
	}
	p.FSig = fSig
	return nil
}

// SetScheme updates the free scheme parameters and recomputes derived
// coefficients.
func (p *Parameters) SetScheme(lambda, a, b float64) error {
	p.Lambda, p.A, p.B = lambda, a, b
	return p.Compute()
}

// SetFMax updates the design upper frequency (and therefore the sample
// rate, dx, dt) and recomputes derived coefficients.
func (p *Parameters) SetFMax(fMax float64) error {
	p.FMax = fMax
	return p.Compute()
}

func flush(x float64) float64 {
	if math.Abs(x) < flushThreshold {
		return 0
	}
	return x
}
