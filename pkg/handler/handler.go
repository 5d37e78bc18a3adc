// Package handler ties the detector descriptor, calibration tables, pixel
// mask and module map together into the frame processing pipeline: unpack
// the 16-bit raw encoding, apply per-pixel per-stage calibration, apply
// the bad-pixel mask, and re-tile the per-module data into a geometrically
// correct composite image.
package handler

import (
	"errors"
	"fmt"
	"log"

	"jfproc/internal/models"
	"jfproc/pkg/calibration"
	"jfproc/pkg/detector"
	"jfproc/pkg/geometry"
)

// Raw pixel encoding: the top 2 bits select the gain stage, the low 14
// bits carry the ADC value.
const (
	adcMask       = 0x3FFF
	selectorShift = 14
)

var (
	// ErrShapeMismatch is returned when an input stack does not match the
	// raw shape implied by the current module map.
	ErrShapeMismatch = errors.New("handler: image shape mismatch")

	// ErrNoCalibration is returned when conversion is requested but gain
	// and/or pedestal values are not set.
	ErrNoCalibration = errors.New("handler: gain and/or pedestal values are not set")

	// ErrNoPixelMask is returned when masking is requested but no pixel
	// mask is set.
	ErrNoPixelMask = errors.New("handler: pixel mask is not set")

	// ErrModuleMap is returned when a module map has the wrong length or
	// out-of-range values.
	ErrModuleMap = errors.New("handler: invalid module map")
)

// Options selects the processing steps applied by Process and Assemble.
type Options struct {
	// Conversion applies pedestal subtraction and gain scaling, producing
	// float32 output.
	Conversion bool

	// Mask zeroes the pixels excluded by the current pixel mask.
	Mask bool

	// MaskDoublePixels selects the mask variant that additionally excludes
	// chip-edge pixels. Only meaningful together with Mask.
	MaskDoublePixels bool

	// GapPixels inserts blank gap rows/columns between chips and modules.
	// Ignored (with a warning) for stripsel detectors.
	GapPixels bool

	// Geometry places modules at their physical positions using the
	// detector's placement table.
	Geometry bool

	// Highgain selects the detector-wide highgain calibration regime,
	// which uses the fourth calibration plane for every pixel regardless
	// of the per-pixel selector bits.
	Highgain bool

	// Parallel processes the frames of a stack concurrently. Results are
	// bit-identical to serial processing; parallelism is only ever across
	// frames, never within one frame.
	Parallel bool

	// Workers caps the number of goroutines used when Parallel is set.
	// Zero means one per CPU.
	Workers int
}

// Handler performs the detector data processing for one detector. The
// calibration table, pixel mask and module map are owned by the handler
// and mutated only through its setters, which re-validate shapes and
// rebuild derived state synchronously.
type Handler struct {
	det       *detector.Descriptor
	table     *calibration.Table
	mask      *calibration.Mask
	moduleMap []int
}

// New creates a handler for the named detector. Gain, pedestal and pixel
// mask start unset; the module map starts as the identity map with all
// modules enabled.
func New(detectorName string) (*Handler, error) {
	det, err := detector.New(detectorName)
	if err != nil {
		return nil, err
	}

	fullH, fullW := det.FullShape()
	return &Handler{
		det:       det,
		table:     calibration.NewTable(fullH, fullW),
		mask:      calibration.NewMask(fullH, fullW),
		moduleMap: identityMap(det.NModules()),
	}, nil
}

func identityMap(n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = i
	}
	return m
}

// Detector returns the handler's detector descriptor.
func (h *Handler) Detector() *detector.Descriptor { return h.det }

// SetGain assigns the gain planes; shape must be (4, H, W) of the full
// detector. Derived calibration views are rebuilt before returning.
func (h *Handler) SetGain(g *models.GainSet) error { return h.table.SetGain(g) }

// SetPedestal assigns the pedestal planes; shape must be (4, H, W) of the
// full detector. Derived calibration views are rebuilt before returning.
func (h *Handler) SetPedestal(p *models.GainSet) error { return h.table.SetPedestal(p) }

// SetPixelMask assigns the bad-pixel mask; shape must be the full detector
// shape. The double-pixel variant is derived before returning.
func (h *Handler) SetPixelMask(p *models.MaskPlane) error { return h.mask.Set(p) }

// CanConvert reports whether both gain and pedestal are set.
func (h *Handler) CanConvert() bool { return h.table.CanConvert() }

// Table returns the handler's calibration table.
func (h *Handler) Table() *calibration.Table { return h.table }

// Mask returns the handler's pixel mask.
func (h *Handler) Mask() *calibration.Mask { return h.mask }

// SetModuleMap assigns the logical-to-physical module assignment. Each
// entry is either a raw-frame slot index or -1 for a module that is
// absent from the data. A raw frame only carries as many slots as there
// are non-disabled entries, so every slot index must be below that
// active count. Passing nil restores the identity map. Duplicate slot
// assignments are accepted; later logical modules win.
func (h *Handler) SetModuleMap(mm []int) error {
	n := h.det.NModules()
	if mm == nil {
		h.moduleMap = identityMap(n)
		return nil
	}
	if len(mm) != n {
		return fmt.Errorf("%w: expected length %d, got %d", ErrModuleMap, n, len(mm))
	}
	active := 0
	for _, v := range mm {
		if v != -1 {
			active++
		}
	}
	for i, v := range mm {
		if v < -1 || v >= n {
			return fmt.Errorf("%w: entry %d is %d, valid values are -1..%d", ErrModuleMap, i, v, n-1)
		}
		if v >= active {
			return fmt.Errorf("%w: entry %d is slot %d, but the raw data only carries %d active slots",
				ErrModuleMap, i, v, active)
		}
	}
	h.moduleMap = append([]int(nil), mm...)
	return nil
}

// ModuleMap returns a copy of the current module map.
func (h *Handler) ModuleMap() []int {
	return append([]int(nil), h.moduleMap...)
}

// hasIdentityMap reports whether every logical module reads its own raw
// slot, i.e. whether placement without flags is a no-op.
func (h *Handler) hasIdentityMap() bool {
	for i, m := range h.moduleMap {
		if m != i {
			return false
		}
	}
	return true
}

// ActiveModules returns the number of modules present in the raw data.
func (h *Handler) ActiveModules() int {
	n := 0
	for _, m := range h.moduleMap {
		if m != -1 {
			n++
		}
	}
	return n
}

// RawShape returns the expected shape of one raw input frame under the
// current module map.
func (h *Handler) RawShape() (int, int) {
	return geometry.RawShape(h.det, h.ActiveModules())
}

// OutputShape returns the shape Process/Assemble would produce for the
// given flags under the current detector.
func (h *Handler) OutputShape(gapPixels, fullGeometry bool) (int, int) {
	if gapPixels && h.det.IsStripsel() {
		gapPixels = false
	}
	return geometry.OutputShape(h.det, gapPixels, fullGeometry)
}

// SaturatedValue returns the raw 16-bit word that marks a saturated pixel
// in the given gain regime.
func (h *Handler) SaturatedValue(highgain bool) uint16 {
	if highgain {
		return 0x3FFF
	}
	return 0xC000
}

// checkStack validates that a stack's frame shape matches the raw shape
// implied by the current module map.
func (h *Handler) checkStack(height, width int) error {
	eh, ew := h.RawShape()
	if height != eh || width != ew {
		return fmt.Errorf("%w: expected image shape (%d, %d), got (%d, %d)",
			ErrShapeMismatch, eh, ew, height, width)
	}
	return nil
}

// downgradeGap clears the gap-pixel flag for stripsel detectors, where gap
// insertion has no meaning, logging a notice instead of failing.
func (h *Handler) downgradeGap(gapPixels bool) bool {
	if gapPixels && h.det.IsStripsel() {
		log.Printf("warning: gap pixels requested for stripsel detector %s, ignoring", h.det.Name())
		return false
	}
	return gapPixels
}
