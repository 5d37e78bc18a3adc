// Package geometry computes output shapes and module placement for the
// assembled detector image. All functions are pure: the result depends
// only on the detector descriptor and the requested flags, which keeps
// them testable independent of any handler state.
package geometry

import (
	"jfproc/pkg/detector"
)

// Gap padding added to one module's content when gap pixels are inserted:
// one 2-pixel row gap between the two chip rows and three 2-pixel column
// gaps between the four chip columns.
const (
	moduleGapPadY = (detector.ChipRows - 1) * detector.ChipGapY
	moduleGapPadX = (detector.ChipsPerRow - 1) * detector.ChipGapX
)

// RawShape returns the shape of a raw frame carrying nActive module slots.
func RawShape(d *detector.Descriptor, nActive int) (int, int) {
	if d.SideBySide() {
		return detector.ModuleHeight, nActive * detector.ModuleWidth
	}
	return nActive * detector.ModuleHeight, detector.ModuleWidth
}

// OutputShape returns the shape of the assembled output image for the
// given flag combination. Without geometry the shape is derived from the
// nominal module count, so disabled modules show up as zero-filled tiles
// instead of shrinking the image. For the family that requires a whole
// image rotation the reported dimensions are the rotated ones, matching
// the buffer the pipeline actually returns.
func OutputShape(d *detector.Descriptor, gapPixels, geometry bool) (int, int) {
	if d.IsStripsel() {
		// Gap insertion has no meaning on the stripsel topology.
		if geometry {
			maxY, maxX := d.MaxOrigin()
			return maxY + detector.StripselModuleHeight, maxX + detector.StripselModuleWidth
		}
		return stackedShape(d, false)
	}

	if geometry {
		maxY, maxX := d.MaxOrigin()
		h := maxY + detector.ModuleHeight
		w := maxX + detector.ModuleWidth
		if gapPixels {
			h += moduleGapPadY
			w += moduleGapPadX
		}
		if d.RequiresImageRotation() {
			return w, h
		}
		return h, w
	}

	return stackedShape(d, gapPixels)
}

// stackedShape computes the output shape for the no-geometry cases, where
// all nominal modules are stacked along the detector's stacking axis.
func stackedShape(d *detector.Descriptor, gapPixels bool) (int, int) {
	mh := detector.ModuleHeight
	mw := detector.ModuleWidth
	if gapPixels {
		mh += moduleGapPadY
		mw += moduleGapPadX
	}
	if d.SideBySide() {
		return mh, d.NModules() * mw
	}
	return d.NModules() * mh, mw
}

// ModuleOrigin returns the (y, x) output coordinate at which logical
// module i's content is written. With geometry the origin comes from the
// descriptor's static placement table; otherwise modules are stacked in
// logical order, each occupying its gap-padded extent when gap pixels are
// requested.
func ModuleOrigin(d *detector.Descriptor, i int, gapPixels, geometry bool) (int, int) {
	if geometry {
		return d.ModuleOrigin(i)
	}

	mh := detector.ModuleHeight
	mw := detector.ModuleWidth
	if gapPixels && !d.IsStripsel() {
		mh += moduleGapPadY
		mw += moduleGapPadX
	}
	if d.SideBySide() {
		return 0, i * mw
	}
	return i * mh, 0
}
