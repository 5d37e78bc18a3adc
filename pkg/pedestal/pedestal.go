// Package pedestal estimates per-pixel pedestal values from calibration
// runs. A run records many frames with the detector forced into one gain
// stage; the pedestal of a pixel is the mean of its ADC values over the
// run, and the spread identifies noisy pixels for the bad-pixel mask.
package pedestal

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"jfproc/internal/models"
)

// adcMask strips the 2-bit gain selector from a raw detector word.
const adcMask = 0x3FFF

var (
	// ErrTooFewFrames is returned when a run has fewer than two frames,
	// which leaves the spread undefined.
	ErrTooFewFrames = errors.New("pedestal: need at least two frames")

	// ErrShapeMismatch is returned when per-stage runs disagree in shape.
	ErrShapeMismatch = errors.New("pedestal: shape mismatch between stage runs")
)

// Stats holds the per-pixel statistics of one gain stage's run.
type Stats struct {
	// Mean is the per-pixel pedestal estimate (mean ADC value).
	Mean []float32

	// Sigma is the per-pixel sample standard deviation of the ADC values.
	Sigma []float32

	// Height and Width are the frame dimensions of the run.
	Height int
	Width  int
}

// Estimate computes per-pixel pedestal statistics from a calibration run.
// The gain-selector bits of every raw word are stripped before
// aggregation.
func Estimate(frames *models.Stack[uint16]) (*Stats, error) {
	if frames.Frames < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewFrames, frames.Frames)
	}

	size := frames.Height * frames.Width
	s := &Stats{
		Mean:   make([]float32, size),
		Sigma:  make([]float32, size),
		Height: frames.Height,
		Width:  frames.Width,
	}

	samples := make([]float64, frames.Frames)
	for idx := 0; idx < size; idx++ {
		for f := 0; f < frames.Frames; f++ {
			samples[f] = float64(frames.Data[f*size+idx] & adcMask)
		}
		mean, sigma := stat.MeanStdDev(samples, nil)
		s.Mean[idx] = float32(mean)
		s.Sigma[idx] = float32(sigma)
	}
	return s, nil
}

// Combine assembles the four per-stage runs into pedestal planes and an
// outlier mask. A pixel is masked when its spread in any stage exceeds
// sigmaThreshold ADC counts.
func Combine(stages [4]*Stats, sigmaThreshold float64) (*models.GainSet, *models.MaskPlane, error) {
	height, width := stages[0].Height, stages[0].Width
	for i, st := range stages {
		if st.Height != height || st.Width != width {
			return nil, nil, fmt.Errorf("%w: stage %d is (%d, %d), stage 0 is (%d, %d)",
				ErrShapeMismatch, i, st.Height, st.Width, height, width)
		}
	}

	ped := models.NewGainSet(len(stages), height, width)
	mask := models.NewMaskPlane(height, width)
	for i, st := range stages {
		copy(ped.Plane(i), st.Mean)
		for idx, sigma := range st.Sigma {
			if float64(sigma) > sigmaThreshold {
				mask.Data[idx] = true
			}
		}
	}
	return ped, mask, nil
}
