package handler

import (
	"fmt"

	"jfproc/internal/models"
	"jfproc/pkg/detector"
	"jfproc/pkg/geometry"
)

// Process runs the full pipeline over a raw frame stack: validate, unpack,
// calibrate, mask and place every active module, producing a float32
// output stack. All validation happens before any output is produced, so
// a returned error never leaves a partially written result.
//
// Disabled modules (-1 in the module map) leave their output region
// zero-filled, showing up as a missing tile. With Conversion disabled the
// unpacked 14-bit magnitudes pass through unscaled; to preserve the input
// element type instead, use Assemble.
func (h *Handler) Process(images *models.Stack[uint16], opts Options) (*models.Stack[float32], error) {
	if err := h.checkStack(images.Height, images.Width); err != nil {
		return nil, err
	}

	// Without conversion the kernel passes the 14-bit magnitude through;
	// masking and placement still apply.
	var view []float32
	stride := 1
	if opts.Conversion {
		if !h.CanConvert() {
			return nil, fmt.Errorf("%w: cannot convert", ErrNoCalibration)
		}
		view, stride = h.table.View(opts.Highgain)
	}
	k := selectKernel(view, opts.Highgain)

	var mask []bool
	if opts.Mask {
		mask = h.mask.View(opts.MaskDoublePixels)
		if mask == nil {
			return nil, fmt.Errorf("%w: cannot mask", ErrNoPixelMask)
		}
	}

	gap := h.downgradeGap(opts.GapPixels)

	outH, outW := geometry.OutputShape(h.det, gap, opts.Geometry)
	out := models.NewStack[float32](images.Frames, outH, outW)

	specs := h.moduleSpecs(images.Width, stride, gap, opts.Geometry)
	stripsel := h.det.IsStripsel() && opts.Geometry
	rotate := h.det.RequiresImageRotation() && opts.Geometry

	// Pre-rotation assembly shape; OutputShape already reports the
	// rotated dimensions when a whole-image rotation applies.
	asmH, asmW := outH, outW
	if rotate {
		asmH, asmW = outW, outH
	}

	run := func(f int) {
		src := images.Frame(f)
		dst := out.Frame(f)

		target := dst
		targetW := outW
		if rotate {
			target = make([]float32, asmH*asmW)
			targetW = asmW
		}

		for _, s := range specs {
			if stripsel {
				tmp := make([]float32, detector.ModulePixels)
				ts := s
				ts.oy, ts.ox, ts.gapPixels = 0, 0, false
				correctModule(tmp, detector.ModuleWidth, src, view, mask, k, ts)
				geometry.ReshapeStripsel(target, targetW, s.oy, s.ox, tmp, detector.ModuleWidth)
				continue
			}
			correctModule(target, targetW, src, view, mask, k, s)
		}

		if rotate {
			rotate90(dst, target, asmH, asmW)
		}
	}
	forEachFrame(images.Frames, opts.Workers, opts.Parallel, run)

	return out, nil
}

// Assemble applies masking, gap-pixel insertion and geometric placement
// without calibration, preserving the input element type. When none of
// the flags require work and the module map is the identity, the input
// stack is returned unchanged. Conversion and Highgain are ignored.
func Assemble[T models.Pixel](h *Handler, images *models.Stack[T], opts Options) (*models.Stack[T], error) {
	if err := h.checkStack(images.Height, images.Width); err != nil {
		return nil, err
	}

	var mask []bool
	if opts.Mask {
		mask = h.mask.View(opts.MaskDoublePixels)
		if mask == nil {
			return nil, fmt.Errorf("%w: cannot mask", ErrNoPixelMask)
		}
	}

	// A non-identity module map still needs placement: slots may be
	// reordered or disabled even when no flag is set.
	gap := h.downgradeGap(opts.GapPixels)
	if !gap && !opts.Geometry && mask == nil && h.hasIdentityMap() {
		return images, nil
	}

	outH, outW := geometry.OutputShape(h.det, gap, opts.Geometry)
	out := models.NewStack[T](images.Frames, outH, outW)

	specs := h.moduleSpecs(images.Width, 1, gap, opts.Geometry)
	stripsel := h.det.IsStripsel() && opts.Geometry
	rotate := h.det.RequiresImageRotation() && opts.Geometry

	asmH, asmW := outH, outW
	if rotate {
		asmH, asmW = outW, outH
	}

	run := func(f int) {
		src := images.Frame(f)
		dst := out.Frame(f)

		target := dst
		targetW := outW
		if rotate {
			target = make([]T, asmH*asmW)
			targetW = asmW
		}

		for _, s := range specs {
			if stripsel {
				tmp := make([]T, detector.ModulePixels)
				ts := s
				ts.oy, ts.ox, ts.gapPixels = 0, 0, false
				placeModule(tmp, detector.ModuleWidth, src, mask, ts)
				geometry.ReshapeStripsel(target, targetW, s.oy, s.ox, tmp, detector.ModuleWidth)
				continue
			}
			placeModule(target, targetW, src, mask, s)
		}

		if rotate {
			rotate90(dst, target, asmH, asmW)
		}
	}
	forEachFrame(images.Frames, opts.Workers, opts.Parallel, run)

	return out, nil
}

// moduleSpecs computes the read/write layout of every active module under
// the current module map. Raw data is read from the physical slot m; the
// calibration view, mask plane and output origin are addressed by the
// logical module index i.
func (h *Handler) moduleSpecs(rawWidth, stride int, gapPixels, fullGeometry bool) []moduleSpec {
	_, fullW := h.det.FullShape()

	specs := make([]moduleSpec, 0, len(h.moduleMap))
	for i, m := range h.moduleMap {
		if m == -1 {
			continue
		}

		var s moduleSpec
		s.srcStride = rawWidth
		if h.det.SideBySide() {
			s.srcOff = m * detector.ModuleWidth
			base := i * detector.ModuleWidth
			s.gpOff = base * stride
			s.maskOff = base
		} else {
			s.srcOff = m * detector.ModuleHeight * rawWidth
			base := i * detector.ModuleHeight * fullW
			s.gpOff = base * stride
			s.maskOff = base
		}
		s.gpRowStride = fullW * stride
		s.gpStride = stride
		s.maskRowStride = fullW

		s.oy, s.ox = geometry.ModuleOrigin(h.det, i, gapPixels, fullGeometry)
		s.gapPixels = gapPixels
		s.rot180 = h.det.RequiresModuleRotation()

		specs = append(specs, s)
	}
	return specs
}
