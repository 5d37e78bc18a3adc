package handler

import (
	"fmt"

	"jfproc/internal/models"
	"jfproc/pkg/detector"
)

// GainMaps extracts the per-pixel gain-stage selector (the top 2 bits of
// every raw word) and runs it through the same geometric placement as
// Process, with conversion disabled. Values are 0..3 in raw encoding.
func (h *Handler) GainMaps(images *models.Stack[uint16], opts Options) (*models.Stack[uint16], error) {
	stages := models.NewStack[uint16](images.Frames, images.Height, images.Width)
	for i, v := range images.Data {
		stages.Data[i] = v >> selectorShift
	}

	opts.Conversion = false
	return Assemble(h, stages, opts)
}

// DecodeADC strips the gain-selector bits from every raw word, yielding
// the 14-bit magnitudes without calibration or placement.
func DecodeADC(images *models.Stack[uint16]) *models.Stack[uint16] {
	out := models.NewStack[uint16](images.Frames, images.Height, images.Width)
	for i, v := range images.Data {
		out.Data[i] = v & adcMask
	}
	return out
}

// SaturatedPixels flags every pixel whose raw word equals the saturation
// sentinel of the selected gain regime and runs the flags through the
// same geometric placement as Process.
func (h *Handler) SaturatedPixels(images *models.Stack[uint16], opts Options) (*models.Stack[bool], error) {
	sat := h.SaturatedValue(opts.Highgain)

	flags := models.NewStack[bool](images.Frames, images.Height, images.Width)
	for i, v := range images.Data {
		flags.Data[i] = v == sat
	}

	opts.Conversion = false
	return Assemble(h, flags, opts)
}

// Coords lists the (frame, y, x) coordinates of every true entry of a
// boolean stack, in row-major order.
func Coords(s *models.Stack[bool]) [][3]int {
	var coords [][3]int
	for f := 0; f < s.Frames; f++ {
		frame := s.Frame(f)
		for idx, v := range frame {
			if v {
				coords = append(coords, [3]int{f, idx / s.Width, idx % s.Width})
			}
		}
	}
	return coords
}

// PixelMaskView projects the current pixel mask into output coordinates
// for the given flags. The mask is inverted, run through the placement
// pipeline and inverted back, so that gap pixels and missing tiles come
// out masked.
func (h *Handler) PixelMaskView(opts Options) (*models.MaskPlane, error) {
	view := h.mask.View(opts.MaskDoublePixels)
	if view == nil {
		return nil, fmt.Errorf("%w: no mask to project", ErrNoPixelMask)
	}

	_, fullW := h.det.FullShape()
	rawH, rawW := h.RawShape()
	inverted := models.NewStack[bool](1, rawH, rawW)

	for i, m := range h.moduleMap {
		if m == -1 {
			continue
		}
		for y := 0; y < detector.ModuleHeight; y++ {
			var vrow, rrow int
			if h.det.SideBySide() {
				vrow = y*fullW + i*detector.ModuleWidth
				rrow = y*rawW + m*detector.ModuleWidth
			} else {
				vrow = (i*detector.ModuleHeight+y)*fullW
				rrow = (m*detector.ModuleHeight+y)*rawW
			}
			for x := 0; x < detector.ModuleWidth; x++ {
				inverted.Data[rrow+x] = !view[vrow+x]
			}
		}
	}

	opts.Conversion = false
	opts.Mask = false
	placed, err := Assemble(h, inverted, opts)
	if err != nil {
		return nil, err
	}

	plane := models.NewMaskPlane(placed.Height, placed.Width)
	for idx, v := range placed.Frame(0) {
		plane.Data[idx] = !v
	}
	return plane, nil
}
