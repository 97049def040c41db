// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gridgeom defines the geometry-flag bits and the canonical
// 26-neighbour bitmask layout shared by grid, stencil, and analysis.
// Keeping the layout in its own leaf package lets every consumer agree
// on bit order without importing the (much larger) grid package.
package gridgeom

// Flag is a bitfield over a single cell's geometry. WALL dominates: a
// cell carrying WALL never updates pressure regardless of any other bit.
type Flag uint8

const (
	Wall Flag = 1 << iota
	SourceRegion
	Source
	Listener
)

// Offset is one of the 26 neighbour directions in canonical order: the 6
// axis offsets first, then the 12 edge (2-step diagonal) offsets, then
// the 8 corner (3-step diagonal) offsets. NeighbourMask bit i corresponds
// to Offsets[i].
var Offsets = [26][3]int{
	// axis (6)
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
	// edge (12): two axes non-zero
	{-1, -1, 0}, {-1, 1, 0}, {1, -1, 0}, {1, 1, 0},
	{-1, 0, -1}, {-1, 0, 1}, {1, 0, -1}, {1, 0, 1},
	{0, -1, -1}, {0, -1, 1}, {0, 1, -1}, {0, 1, 1},
	// corner (8): three axes non-zero
	{-1, -1, -1}, {-1, -1, 1}, {-1, 1, -1}, {-1, 1, 1},
	{1, -1, -1}, {1, -1, 1}, {1, 1, -1}, {1, 1, 1},
}

const (
	AxisCount   = 6
	EdgeCount   = 12
	CornerCount = 8
)

// NeighbourMask is the 26-bit mask over Offsets; bit i set means that
// neighbour exists (in-bounds) and is not a WALL cell.
type NeighbourMask uint32

// AxisBits returns the low 6 bits (the axis neighbours only).
func (m NeighbourMask) AxisBits() NeighbourMask { return m & ((1 << AxisCount) - 1) }

// EdgeBits returns the 12 edge-neighbour bits, shifted to start at 0.
func (m NeighbourMask) EdgeBits() NeighbourMask {
	return (m >> AxisCount) & ((1 << EdgeCount) - 1)
}

// CornerBits returns the 8 corner-neighbour bits, shifted to start at 0.
func (m NeighbourMask) CornerBits() NeighbourMask {
	return (m >> (AxisCount + EdgeCount)) & ((1 << CornerCount) - 1)
}

// AxisPopcount returns K, the number of present axis neighbours (0..6).
func (m NeighbourMask) AxisPopcount() int {
	return popcount(uint32(m.AxisBits()))
}

func popcount(x uint32) int {
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}

// Has reports whether neighbour offset index i (0..25) is set.
func (m NeighbourMask) Has(i int) bool {
	return m&(1<<uint(i)) != 0
}

// Set returns m with neighbour offset index i set.
func (m NeighbourMask) Set(i int) NeighbourMask {
	return m | (1 << uint(i))
}

// AxisIndex returns the Offsets index (0..5) of an axis direction; that
// index is also the matching position in Grid.EdgeBeta.
func AxisIndex(dw, dh, dd int) int {
	switch {
	case dw == -1:
		return 0
	case dw == 1:
		return 1
	case dh == -1:
		return 2
	case dh == 1:
		return 3
	case dd == -1:
		return 4
	default:
		return 5
	}
}
