package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineDistance(t *testing.T) {
	// Identical direction: zero distance.
	assert.InDelta(t, 0, CosineDistance([]float32{1, 0}, []float32{2, 0}), 1e-9)

	// Orthogonal: distance one.
	assert.InDelta(t, 1, CosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-9)

	// Opposite: distance two.
	assert.InDelta(t, 2, CosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Degenerate inputs rank last rather than erroring.
	assert.Equal(t, float64(1), CosineDistance([]float32{1, 0}, []float32{1}))
	assert.Equal(t, float64(1), CosineDistance(nil, nil))
	assert.Equal(t, float64(1), CosineDistance([]float32{0, 0}, []float32{1, 0}))
}
