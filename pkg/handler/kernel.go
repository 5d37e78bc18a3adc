package handler

import (
	"runtime"
	"sync"

	"jfproc/internal/models"
	"jfproc/pkg/detector"
)

// pixelKernel computes one output pixel from a raw 16-bit word and the
// pixel's record offset in the calibration view. The kernel variant is
// selected once per Process call, never per pixel.
type pixelKernel func(gp []float32, rec int, v uint16) float32

// normalPixel uses the per-pixel 2-bit selector to pick one of the four
// interleaved (inverse gain, pedestal) records of the normal view.
func normalPixel(gp []float32, rec int, v uint16) float32 {
	stage := int(v >> selectorShift)
	return (float32(v&adcMask) - gp[rec+2*stage+1]) * gp[rec+2*stage]
}

// highgainPixel ignores the selector bits and uses the single record of
// the highgain view for every pixel.
func highgainPixel(gp []float32, rec int, v uint16) float32 {
	return (float32(v&adcMask) - gp[rec+1]) * gp[rec]
}

// rawPixel passes the 14-bit magnitude through unmodified; it is used
// when no calibration tables are available.
func rawPixel(_ []float32, _ int, v uint16) float32 {
	return float32(v & adcMask)
}

// selectKernel picks the kernel variant for one Process call.
func selectKernel(view []float32, highgain bool) pixelKernel {
	switch {
	case view == nil:
		return rawPixel
	case highgain:
		return highgainPixel
	default:
		return normalPixel
	}
}

// moduleSpec describes where one module's pixels are read from and written
// to: source offsets into the raw frame, record offsets into the
// calibration view and mask plane, and the destination origin.
type moduleSpec struct {
	srcOff    int
	srcStride int

	gpOff       int
	gpRowStride int
	gpStride    int

	maskOff       int
	maskRowStride int

	oy int
	ox int

	gapPixels bool
	rot180    bool
}

// correctModule runs the correction kernel over one module: unpack, mask,
// calibrate and place each pixel. When gap pixels are enabled the
// destination coordinate additionally advances by the chip gap at every
// 256-pixel chip boundary, inlining gap insertion into the same pass.
// With rot180 the source (raw, calibration and mask alike) is read
// mirrored in both axes, which places the module's content rotated by
// 180 degrees.
func correctModule(dst []float32, dstWidth int, src []uint16, gp []float32, mask []bool, k pixelKernel, s moduleSpec) {
	for y := 0; y < detector.ModuleHeight; y++ {
		sy := y
		if s.rot180 {
			sy = detector.ModuleHeight - 1 - y
		}
		wy := s.oy + y
		if s.gapPixels {
			wy += y / detector.ChipHeight * detector.ChipGapY
		}
		drow := wy*dstWidth + s.ox
		srow := s.srcOff + sy*s.srcStride
		grow := s.gpOff + sy*s.gpRowStride
		mrow := s.maskOff + sy*s.maskRowStride

		for x := 0; x < detector.ModuleWidth; x++ {
			sx := x
			if s.rot180 {
				sx = detector.ModuleWidth - 1 - x
			}
			wx := x
			if s.gapPixels {
				wx += x / detector.ChipWidth * detector.ChipGapX
			}
			if mask != nil && mask[mrow+sx] {
				dst[drow+wx] = 0
				continue
			}
			dst[drow+wx] = k(gp, grow+sx*s.gpStride, src[srow+sx])
		}
	}
}

// placeModule copies one module's pixels to their destination without
// calibration, preserving the element type. Masked pixels are written as
// the zero value.
func placeModule[T models.Pixel](dst []T, dstWidth int, src []T, mask []bool, s moduleSpec) {
	var zero T
	for y := 0; y < detector.ModuleHeight; y++ {
		sy := y
		if s.rot180 {
			sy = detector.ModuleHeight - 1 - y
		}
		wy := s.oy + y
		if s.gapPixels {
			wy += y / detector.ChipHeight * detector.ChipGapY
		}
		drow := wy*dstWidth + s.ox
		srow := s.srcOff + sy*s.srcStride
		mrow := s.maskOff + sy*s.maskRowStride

		for x := 0; x < detector.ModuleWidth; x++ {
			sx := x
			if s.rot180 {
				sx = detector.ModuleWidth - 1 - x
			}
			wx := x
			if s.gapPixels {
				wx += x / detector.ChipWidth * detector.ChipGapX
			}
			if mask != nil && mask[mrow+sx] {
				dst[drow+wx] = zero
				continue
			}
			dst[drow+wx] = src[srow+sx]
		}
	}
}

// rotate90 rotates a frame counterclockwise by 90 degrees. dst must have
// shape (srcWidth, srcHeight).
func rotate90[T models.Pixel](dst, src []T, srcHeight, srcWidth int) {
	for y := 0; y < srcWidth; y++ {
		drow := y * srcHeight
		for x := 0; x < srcHeight; x++ {
			dst[drow+x] = src[x*srcWidth+(srcWidth-1-y)]
		}
	}
}

// forEachFrame runs fn for every frame index, optionally spreading the
// frames over worker goroutines. Frames are independent: each worker
// reads and writes only its own frames, so no synchronization beyond the
// final wait is needed.
func forEachFrame(frames, workers int, parallel bool, fn func(f int)) {
	if !parallel || frames <= 1 {
		for f := 0; f < frames; f++ {
			fn(f)
		}
		return
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > frames {
		workers = frames
	}
	perWorker := (frames + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * perWorker
		if start >= frames {
			break
		}
		end := start + perWorker
		if end > frames {
			end = frames
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for f := start; f < end; f++ {
				fn(f)
			}
		}(start, end)
	}
	wg.Wait()
}
