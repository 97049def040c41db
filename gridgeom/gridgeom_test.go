package gridgeom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffsetsCanonicalOrder(t *testing.T) {
	assert.Equal(t, AxisCount+EdgeCount+CornerCount, len(Offsets))
	// first 6 are single-axis offsets
	for i := 0; i < AxisCount; i++ {
		nonZero := 0
		for _, c := range Offsets[i] {
			if c != 0 {
				nonZero++
			}
		}
		assert.Equal(t, 1, nonZero, "offset %d should touch exactly one axis", i)
	}
	// next 12 touch exactly two axes
	for i := AxisCount; i < AxisCount+EdgeCount; i++ {
		nonZero := 0
		for _, c := range Offsets[i] {
			if c != 0 {
				nonZero++
			}
		}
		assert.Equal(t, 2, nonZero, "offset %d should touch exactly two axes", i)
	}
	// last 8 touch all three axes
	for i := AxisCount + EdgeCount; i < len(Offsets); i++ {
		nonZero := 0
		for _, c := range Offsets[i] {
			if c != 0 {
				nonZero++
			}
		}
		assert.Equal(t, 3, nonZero, "offset %d should touch three axes", i)
	}
}

func TestNeighbourMaskBitAccessors(t *testing.T) {
	var m NeighbourMask
	m = m.Set(0).Set(5).Set(6).Set(17).Set(25)

	assert.True(t, m.Has(0))
	assert.True(t, m.Has(5))
	assert.False(t, m.Has(1))

	assert.Equal(t, 2, m.AxisPopcount())
	assert.NotZero(t, m.EdgeBits())
	assert.NotZero(t, m.CornerBits())
}

func TestAxisIndex(t *testing.T) {
	assert.Equal(t, 0, AxisIndex(-1, 0, 0))
	assert.Equal(t, 1, AxisIndex(1, 0, 0))
	assert.Equal(t, 2, AxisIndex(0, -1, 0))
	assert.Equal(t, 3, AxisIndex(0, 1, 0))
	assert.Equal(t, 4, AxisIndex(0, 0, -1))
	assert.Equal(t, 5, AxisIndex(0, 0, 1))
}
