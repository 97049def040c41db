// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package roomlog wraps github.com/charmbracelet/log with the
// handful of fields the simulation controller and sweep driver need
// (iteration, position_index, frequency_hz). The low-level grid,
// stencil, and analysis packages do no logging of their own (grid
// reports failures as error values); this package exists for the
// long-running, unattended components where levelled, attributable
// output matters.
package roomlog

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the structured logger used by simulation and sweep.
type Logger struct {
	inner *log.Logger
}

// New builds a Logger writing to w at the given level.
func New(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return &Logger{inner: l}
}

// Default builds a Logger writing to stderr at info level, the
// standard entry point for cmd/roomfdtd.
func Default() *Logger {
	return New(os.Stderr, log.InfoLevel)
}

// With returns a child Logger carrying the given key/value pairs on
// every subsequent call.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{inner: l.inner.With(keyvals...)}
}

func (l *Logger) Info(msg string, keyvals ...interface{})  { l.inner.Info(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.inner.Warn(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.inner.Error(msg, keyvals...) }
func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.inner.Debug(msg, keyvals...) }

// IterationLogger returns a child Logger pre-tagged with the sweep's
// position index and test frequency, so every message logged through
// it carries that context.
func (l *Logger) IterationLogger(positionIndex int, freqHz float64) *Logger {
	return l.With("position_index", positionIndex, "frequency_hz", freqHz)
}
