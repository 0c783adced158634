package stochastic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededSource_Bounds(t *testing.T) {
	src := NewSeededSource(42)

	var sum float64
	for i := 0; i < 10000; i++ {
		v := src.Next()
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
		sum += v
	}

	// Zero-mean within loose sampling tolerance.
	assert.InDelta(t, 0.0, sum/10000, 0.05)
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := NewSeededSource(7)
	b := NewSeededSource(7)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestFixed_CyclesSequence(t *testing.T) {
	src := NewFixed(0.5, -0.5)

	assert.Equal(t, 0.5, src.Next())
	assert.Equal(t, -0.5, src.Next())
	assert.Equal(t, 0.5, src.Next())
}

func TestFixed_EmptyYieldsZero(t *testing.T) {
	src := NewFixed()

	assert.Equal(t, 0.0, src.Next())
	assert.Equal(t, 0.0, src.Next())
}
