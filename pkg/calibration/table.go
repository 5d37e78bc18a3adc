// Package calibration owns the per-pixel calibration state of one detector:
// the gain and pedestal tables for all four gain stages and the bad-pixel
// mask. Both keep derived, read-only views optimized for the correction
// kernel's access pattern; the views are fully rebuilt on every assignment,
// so a concurrent reader observes either the old or the new state, never a
// mixture.
package calibration

import (
	"errors"
	"fmt"

	"jfproc/internal/models"
)

// NumStages is the number of gain stages encoded in the calibration tables.
const NumStages = 4

// Strides of the derived views, in float32 values per pixel. Gain and
// pedestal are interleaved per pixel so the kernel touches one cache line
// per pixel instead of two distant planes.
const (
	// NormalStride covers four (inverse gain, pedestal) pairs per pixel.
	NormalStride = 2 * NumStages

	// HighgainStride covers the single (inverse gain, pedestal) pair of
	// the highgain view.
	HighgainStride = 2
)

// ErrShapeMismatch is returned when an assigned gain, pedestal or mask
// array does not match the detector's full shape.
var ErrShapeMismatch = errors.New("calibration: shape mismatch")

// Table holds the gain and pedestal stage planes and their derived views.
//
// The normal view stores, per pixel, interleaved (1/gain, pedestal) records
// for the stage order 0, 1, 2, 2: the raw 2-bit selector value 3 is an
// undefined code that legacy sensor firmware emits for stage 2, so it maps
// to the same calibration record. The highgain view stores a single record
// per pixel taken from the fourth raw plane (index 3).
type Table struct {
	height int
	width  int

	gain     *models.GainSet
	pedestal *models.GainSet

	normal   []float32
	highgain []float32
}

// NewTable creates an empty calibration table for a detector with the
// given full shape. Gain and pedestal start unset.
func NewTable(height, width int) *Table {
	return &Table{height: height, width: width}
}

// Shape returns the full-detector plane shape the table validates against.
func (t *Table) Shape() (int, int) { return t.height, t.width }

// Gain returns the currently assigned gain planes, or nil if unset.
func (t *Table) Gain() *models.GainSet { return t.gain }

// Pedestal returns the currently assigned pedestal planes, or nil if unset.
func (t *Table) Pedestal() *models.GainSet { return t.pedestal }

// SetGain stores a copy of the given gain planes and rebuilds the derived
// views. Passing nil clears the gain and invalidates the views.
func (t *Table) SetGain(g *models.GainSet) error {
	if g == nil {
		t.gain = nil
		t.rebuild()
		return nil
	}
	if err := t.checkShape("gain", g); err != nil {
		return err
	}
	t.gain = g.Clone()
	t.rebuild()
	return nil
}

// SetPedestal stores a copy of the given pedestal planes and rebuilds the
// derived views. Passing nil clears the pedestal and invalidates the views.
func (t *Table) SetPedestal(p *models.GainSet) error {
	if p == nil {
		t.pedestal = nil
		t.rebuild()
		return nil
	}
	if err := t.checkShape("pedestal", p); err != nil {
		return err
	}
	t.pedestal = p.Clone()
	t.rebuild()
	return nil
}

func (t *Table) checkShape(what string, g *models.GainSet) error {
	if g.Stages != NumStages || g.Height != t.height || g.Width != t.width {
		return fmt.Errorf("%w: expected %s shape (%d, %d, %d), got (%d, %d, %d)",
			ErrShapeMismatch, what, NumStages, t.height, t.width, g.Stages, g.Height, g.Width)
	}
	return nil
}

// CanConvert reports whether both gain and pedestal are set, i.e. whether
// the derived views are available for calibration.
func (t *Table) CanConvert() bool {
	return t.gain != nil && t.pedestal != nil
}

// View returns the derived view for the requested regime together with its
// per-pixel stride. It returns nil when gain or pedestal is unset.
func (t *Table) View(highgain bool) ([]float32, int) {
	if highgain {
		return t.highgain, HighgainStride
	}
	return t.normal, NormalStride
}

// rebuild recomputes both derived views from scratch. New slices are built
// completely before being installed, so readers never see partial state.
// The gain is stored inverted so the kernel multiplies instead of divides.
func (t *Table) rebuild() {
	if t.gain == nil || t.pedestal == nil {
		t.normal = nil
		t.highgain = nil
		return
	}

	// Selector codes 0..3 map to raw stages 0, 1, 2, 2.
	stageOrder := [NumStages]int{0, 1, 2, 2}

	size := t.height * t.width
	normal := make([]float32, size*NormalStride)
	highgain := make([]float32, size*HighgainStride)

	for s, src := range stageOrder {
		gp := t.gain.Plane(src)
		pp := t.pedestal.Plane(src)
		for i := 0; i < size; i++ {
			normal[i*NormalStride+2*s] = 1 / gp[i]
			normal[i*NormalStride+2*s+1] = pp[i]
		}
	}

	gp := t.gain.Plane(NumStages - 1)
	pp := t.pedestal.Plane(NumStages - 1)
	for i := 0; i < size; i++ {
		highgain[i*HighgainStride] = 1 / gp[i]
		highgain[i*HighgainStride+1] = pp[i]
	}

	t.normal = normal
	t.highgain = highgain
}
