// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package generator implements the source-signal capability consumed
// by the simulation controller's hard-source injection step. Each of
// the five source signals in this file is a pure function of
// (t, iteration): none holds externally-observable mutable state, so the
// same Generator can be shared across sweep runs without a reset.
// TapGenerator (recorder.go) is the exception: every Generate call
// appends the sample to its WAVRecorder.
package generator

import "math"

// Generator computes the scalar sample to inject at the source cell
// for a given elapsed time t (seconds) and zero-based step iteration.
// Returning NaN means "no injection this step".
type Generator interface {
	Generate(t float64, iteration int) float64
}

// Sinusoid is a continuous-wave source at FreqHz with the given
// amplitude.
type Sinusoid struct {
	FreqHz    float64
	Amplitude float64
}

func (s Sinusoid) Generate(t float64, _ int) float64 {
	return s.Amplitude * math.Sin(2*math.Pi*s.FreqHz*t)
}

// GaussianModulatedCosine is a narrowband pulse: a cosine carrier
// under a Gaussian envelope centred at T0 with standard deviation
// Sigma.
type GaussianModulatedCosine struct {
	FreqHz    float64
	Amplitude float64
	T0        float64
	Sigma     float64
}

func (g GaussianModulatedCosine) Generate(t float64, _ int) float64 {
	dt := t - g.T0
	envelope := math.Exp(-(dt * dt) / (2 * g.Sigma * g.Sigma))
	return g.Amplitude * envelope * math.Cos(2*math.Pi*g.FreqHz*dt)
}

// GaussianMonopulse is the derivative-of-Gaussian broadband impulse
// (a single polarity excursion), useful for exciting a wide band in
// one hard-source sample.
type GaussianMonopulse struct {
	Amplitude float64
	T0        float64
	Sigma     float64
}

func (g GaussianMonopulse) Generate(t float64, _ int) float64 {
	dt := t - g.T0
	return -g.Amplitude * (dt / (g.Sigma * g.Sigma)) * math.Exp(-(dt*dt)/(2*g.Sigma*g.Sigma))
}

// HannWindowedSinusoid windows a sinusoid by a single raised-cosine
// lobe of duration Duration starting at T0, returning NaN outside the
// window so the stencil leaves the cell's own dynamics untouched
// before and after the tone burst.
type HannWindowedSinusoid struct {
	FreqHz    float64
	Amplitude float64
	T0        float64
	Duration  float64
}

func (h HannWindowedSinusoid) Generate(t float64, _ int) float64 {
	dt := t - h.T0
	if dt < 0 || dt > h.Duration {
		return math.NaN()
	}
	window := 0.5 * (1 - math.Cos(2*math.Pi*dt/h.Duration))
	return h.Amplitude * window * math.Sin(2*math.Pi*h.FreqHz*dt)
}

// Dirac injects Amplitude at exactly AtIteration and NaN otherwise,
// the canonical hard-source impulse used for impulse-response and
// boundary-reflection tests.
type Dirac struct {
	Amplitude  float64
	AtIteration int
}

func (d Dirac) Generate(_ float64, iteration int) float64 {
	if iteration == d.AtIteration {
		return d.Amplitude
	}
	return math.NaN()
}
