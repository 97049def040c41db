// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package generator

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVRecorder is a supplemental, additive feature: it taps the scalar
// value a Generator produced for a step and writes it to a mono WAV
// file for offline listening, using the same audio.IntBuffer/
// wav.Encoder pair used for decoding elsewhere in the pack. The
// simulation never depends on this; it is driven explicitly by a
// caller (TapGenerator, or cmd/roomfdtd's --record flag) that wants a
// listening copy of a sweep run.
type WAVRecorder struct {
	enc       *wav.Encoder
	samples   []int
	format    *audio.Format
	fullScale float64
}

// NewWAVRecorder opens a mono, 16-bit PCM WAV encoder at sampleRate
// samples/second over w.
func NewWAVRecorder(w io.WriteSeeker, sampleRate int) *WAVRecorder {
	format := &audio.Format{NumChannels: 1, SampleRate: sampleRate}
	return &WAVRecorder{
		enc:       wav.NewEncoder(w, sampleRate, 16, 1, 1),
		format:    format,
		fullScale: float64(1 << 15),
	}
}

// Tap records one sample, clamped to the 16-bit range. NaN (no
// injection) is recorded as silence.
func (r *WAVRecorder) Tap(sample float64) {
	if math.IsNaN(sample) {
		r.samples = append(r.samples, 0)
		return
	}
	scaled := sample * r.fullScale
	if scaled > r.fullScale-1 {
		scaled = r.fullScale - 1
	}
	if scaled < -r.fullScale {
		scaled = -r.fullScale
	}
	r.samples = append(r.samples, int(scaled))
}

// Flush writes the buffered samples as one IntBuffer and resets the
// internal sample slice. Call Close afterward to finalise the file.
func (r *WAVRecorder) Flush() error {
	if len(r.samples) == 0 {
		return nil
	}
	buf := &audio.IntBuffer{
		Format:         r.format,
		Data:           r.samples,
		SourceBitDepth: 16,
	}
	err := r.enc.Write(buf)
	r.samples = r.samples[:0]
	return err
}

// Close flushes any remaining samples and finalises the WAV header.
func (r *WAVRecorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}
	return r.enc.Close()
}

// TapGenerator wraps an inner Generator, recording every sample it
// produces to Rec before returning it unchanged. NaN samples (no
// injection) are recorded as silence by WAVRecorder.Tap.
type TapGenerator struct {
	Inner Generator
	Rec   *WAVRecorder
}

func (t TapGenerator) Generate(t0 float64, iteration int) float64 {
	sample := t.Inner.Generate(t0, iteration)
	t.Rec.Tap(sample)
	return sample
}
