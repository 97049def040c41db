// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads a YAML scene/run description so a sweep can be
// reproduced from a file instead of repeating CLI flags; scene/material
// authoring stays external to the core simulation packages. This
// follows the YAML shape used for configuration elsewhere in the pack
// (gopkg.in/yaml.v3).
package config

import (
	"os"

	"github.com/emer/roomfdtd/roomerr"
	"github.com/emer/roomfdtd/scene"
	"gopkg.in/yaml.v3"
)

// RoomConfig is the on-disk description of a ShoeboxScene and the
// candidate source/listener regions used to build it.
type RoomConfig struct {
	WidthM   float64 `yaml:"width_m"`
	HeightM  float64 `yaml:"height_m"`
	DepthM   float64 `yaml:"depth_m"`
	WallBeta float64 `yaml:"wall_beta"`

	SourceRegionLoM [3]float64 `yaml:"source_region_lo_m"`
	SourceRegionHiM [3]float64 `yaml:"source_region_hi_m"`
	ListenerLoM     [3]float64 `yaml:"listener_lo_m"`
	ListenerHiM     [3]float64 `yaml:"listener_hi_m"`
}

// RunConfig is the on-disk description of a sweep run: the same knobs
// exposed as CLI flags, so a run can be reproduced from a file instead
// of repeating them.
type RunConfig struct {
	TimeSeconds    float64 `yaml:"time_seconds"`
	MaxFrequencyHz float64 `yaml:"max_frequency_hz"`
	Oversampling   float64 `yaml:"oversampling"`
	Bands          int     `yaml:"bands"`
	Speakers       int     `yaml:"speakers"`
	DistanceM      float64 `yaml:"distance_m"`
	Scene          string  `yaml:"scene"`

	Room RoomConfig `yaml:"room"`
}

// Load reads and parses a RunConfig from path.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &roomerr.ConfigurationError{Field: "path", Reason: err.Error()}
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &roomerr.ConfigurationError{Field: "yaml", Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the knobs the core simulation actually honours.
func (c *RunConfig) Validate() error {
	if c.TimeSeconds <= 0 {
		return &roomerr.ConfigurationError{Field: "time_seconds", Reason: "must be > 0"}
	}
	if c.MaxFrequencyHz <= 0 {
		return &roomerr.ConfigurationError{Field: "max_frequency_hz", Reason: "must be > 0"}
	}
	if c.Oversampling < 1 {
		return &roomerr.ConfigurationError{Field: "oversampling", Reason: "must be >= 1"}
	}
	if c.Bands <= 0 {
		return &roomerr.ConfigurationError{Field: "bands", Reason: "must be > 0"}
	}
	if c.Speakers < 1 {
		return &roomerr.ConfigurationError{Field: "speakers", Reason: "must be >= 1"}
	}
	if c.DistanceM <= 0 {
		return &roomerr.ConfigurationError{Field: "distance_m", Reason: "must be > 0"}
	}
	return nil
}

// ShoeboxScene builds the scene.ShoeboxScene described by c.Room.
func (c *RunConfig) ShoeboxScene() *scene.ShoeboxScene {
	r := c.Room
	return &scene.ShoeboxScene{
		WidthM: r.WidthM, HeightM: r.HeightM, DepthM: r.DepthM,
		WallBeta:        r.WallBeta,
		SourceRegionLoM: r.SourceRegionLoM, SourceRegionHiM: r.SourceRegionHiM,
		ListenerLoM: r.ListenerLoM, ListenerHiM: r.ListenerHiM,
	}
}
