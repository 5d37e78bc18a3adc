package pedestal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jfproc/internal/models"
)

// TestEstimate verifies per-pixel mean and spread, including the
// stripping of the gain-selector bits.
func TestEstimate(t *testing.T) {
	frames := models.NewStack[uint16](4, 2, 2)
	for f := 0; f < 4; f++ {
		// Pixel (0, 0) is constant, pixel (0, 1) alternates 10/14.
		frames.Set(f, 0, 0, 100)
		if f%2 == 0 {
			frames.Set(f, 0, 1, 10)
		} else {
			frames.Set(f, 0, 1, 14)
		}
		// Pixel (1, 0) carries selector bits that must be stripped.
		frames.Set(f, 1, 0, 0xC000|200)
	}

	s, err := Estimate(frames)
	require.NoError(t, err)
	require.Equal(t, 2, s.Height)
	require.Equal(t, 2, s.Width)

	assert.InDelta(t, 100.0, float64(s.Mean[0]), 1e-6)
	assert.InDelta(t, 0.0, float64(s.Sigma[0]), 1e-6)

	assert.InDelta(t, 12.0, float64(s.Mean[1]), 1e-6)
	assert.InDelta(t, math.Sqrt(16.0/3.0), float64(s.Sigma[1]), 1e-5)

	assert.InDelta(t, 200.0, float64(s.Mean[2]), 1e-6)
}

// TestEstimateTooFewFrames verifies that a one-frame run is rejected.
func TestEstimateTooFewFrames(t *testing.T) {
	frames := models.NewStack[uint16](1, 2, 2)
	_, err := Estimate(frames)
	assert.ErrorIs(t, err, ErrTooFewFrames)
}

// TestCombine verifies the assembly of per-stage runs into pedestal
// planes and the sigma-threshold outlier mask.
func TestCombine(t *testing.T) {
	var stages [4]*Stats
	for i := range stages {
		stages[i] = &Stats{
			Mean:   []float32{float32(10 * (i + 1)), 0},
			Sigma:  []float32{0, 0},
			Height: 1,
			Width:  2,
		}
	}
	// Pixel 1 is noisy in stage 2 only.
	stages[2].Sigma[1] = 50

	ped, mask, err := Combine(stages, 30)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.Equal(t, float32(10*(i+1)), ped.At(i, 0, 0))
	}
	assert.False(t, mask.At(0, 0))
	assert.True(t, mask.At(0, 1))
}

// TestCombineShapeMismatch verifies that disagreeing run shapes are
// rejected.
func TestCombineShapeMismatch(t *testing.T) {
	var stages [4]*Stats
	for i := range stages {
		stages[i] = &Stats{Mean: make([]float32, 4), Sigma: make([]float32, 4), Height: 2, Width: 2}
	}
	stages[3] = &Stats{Mean: make([]float32, 2), Sigma: make([]float32, 2), Height: 1, Width: 2}

	_, _, err := Combine(stages, 30)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
