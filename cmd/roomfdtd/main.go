// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command roomfdtd runs a source-position sweep against a shoebox room
// and reports the flatness-ranked candidate positions. Flags follow
// the long/short pflag convention used elsewhere in the pack.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/emer/roomfdtd/backend"
	"github.com/emer/roomfdtd/config"
	"github.com/emer/roomfdtd/generator"
	"github.com/emer/roomfdtd/params"
	"github.com/emer/roomfdtd/roomerr"
	"github.com/emer/roomfdtd/roomlog"
	"github.com/emer/roomfdtd/simulation"
	"github.com/emer/roomfdtd/sweep"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	timeSeconds := pflag.Float64P("time", "t", 1.0, "simulated seconds per test frequency")
	maxFreqHz := pflag.Float64P("max-frequency", "f", 200, "upper design frequency in Hz")
	oversampling := pflag.Float64P("oversampling", "o", 16, "sample-rate oversampling factor")
	bands := pflag.IntP("bands", "b", 24, "fractional-octave band denominator")
	speakers := pflag.IntP("speakers", "x", 1, "source-tuple size")
	distanceM := pflag.Float64("distance", 0.5, "minimum pairwise source distance in metres")
	sceneName := pflag.String("scene", "shoebox", "named scene to build")
	configPath := pflag.String("config", "", "path to a YAML run configuration, overrides the other flags")
	recordPath := pflag.String("record", "", "write the injected source signal to a mono WAV file at this path")
	pflag.Parse()

	lg := roomlog.Default()

	rc, err := resolveRunConfig(*configPath, *timeSeconds, *maxFreqHz, *oversampling, *bands, *speakers, *distanceM, *sceneName)
	if err != nil {
		lg.Error("invalid configuration", "err", err)
		return 1
	}

	p, err := params.New(rc.MaxFrequencyHz, rc.Oversampling, rc.MaxFrequencyHz, 1.0/sqrt3, 0, 0)
	if err != nil {
		lg.Error("invalid parameters", "err", err)
		return 1
	}

	sc := rc.ShoeboxScene()
	g, err := sc.Build(p)
	if err != nil {
		lg.Error("scene build failed", "err", err)
		return 1
	}

	positions := g.SourceSet()
	if len(positions) == 0 {
		lg.Error("no candidate source positions in scene")
		return 1
	}

	tuples, err := sweep.EnumerateSourcePositions(positions, rc.Speakers, rc.DistanceM, g.Dx)
	if err != nil {
		lg.Error("source-pair enumeration failed", "err", err)
		return 1
	}
	if len(tuples) == 0 {
		lg.Error("no candidate source tuples satisfy the minimum distance")
		return 1
	}

	sim, err := simulation.New(g, p, backend.NewCPUWorkerPool(), generator.Sinusoid{}, lg)
	if err != nil {
		lg.Error("simulation construction failed", "err", err)
		return 1
	}

	var rec *generator.WAVRecorder
	if *recordPath != "" {
		f, err := os.Create(*recordPath)
		if err != nil {
			lg.Error("could not open record file", "err", err)
			return 1
		}
		defer func() {
			if rec != nil {
				if cerr := rec.Close(); cerr != nil {
					lg.Error("failed to finalise recording", "err", cerr)
				}
			}
		}()
		rec = generator.NewWAVRecorder(f, int(math.Round(p.FS)))
	}

	driver := &sweep.Driver{
		Scene:       sc,
		Grid:        g,
		Params:      p,
		Sim:         sim,
		Log:         lg,
		Frequencies: sweep.OctaveBands(rc.Bands, 20, 200),
		SimSeconds:  rc.TimeSeconds,
		NewGenerator: func(freqHz float64) generator.Generator {
			base := generator.Sinusoid{FreqHz: freqHz, Amplitude: 1.0}
			if rec == nil {
				return base
			}
			return generator.TapGenerator{Inner: base, Rec: rec}
		},
	}

	results, err := driver.RunAll(tuples)
	if err != nil {
		if _, ok := err.(*roomerr.NumericalFailure); ok {
			lg.Error("numerical failure during sweep", "err", err)
			return 2
		}
		lg.Error("sweep failed", "err", err)
		return 1
	}

	ranked := sweep.RankPositions(results)
	for i, r := range ranked {
		fmt.Printf("rank %d: position_index=%d deviation=%.6f avg_spl=%.3f\n", i+1, r.Index, r.Deviation, r.MeanSPL)
	}

	return 0
}

// sqrt3 is 1/sqrt(3), the SLF scheme's stable Courant number in 3-D.
const sqrt3 = 0.5773502691896258

func resolveRunConfig(configPath string, timeSeconds, maxFreqHz, oversampling float64, bandsFlag, speakersFlag int, distanceM float64, sceneName string) (*config.RunConfig, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if sceneName != "shoebox" {
		return nil, &roomerr.ConfigurationError{Field: "scene", Reason: "unknown scene name (only \"shoebox\" is built in; use --config for others)"}
	}
	rc := &config.RunConfig{
		TimeSeconds:    timeSeconds,
		MaxFrequencyHz: maxFreqHz,
		Oversampling:   oversampling,
		Bands:          bandsFlag,
		Speakers:       speakersFlag,
		DistanceM:      distanceM,
		Scene:          sceneName,
		Room: config.RoomConfig{
			WidthM: 3, HeightM: 3, DepthM: 3,
			WallBeta:        0.1,
			SourceRegionLoM: [3]float64{0.3, 1.5, 1.5},
			SourceRegionHiM: [3]float64{1.5, 1.5, 1.5},
			ListenerLoM:     [3]float64{2.8, 1.5, 1.5},
			ListenerHiM:     [3]float64{2.8, 1.5, 1.5},
		},
	}
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return rc, nil
}
