package geometry

import (
	"jfproc/internal/models"
)

// Stripsel remap constants. The sensor's pixel wiring redistributes each
// 256x1024 block of sensor pixels into an 86x3090 output block: every
// input column lands in a 3-pixel-wide output group, and each of the four
// chips occupies a 774-column period (256*3 content plus a 6-column gap
// band). The mapping encodes physical wiring and is not tunable.
const (
	stripselInRows = 256
	stripselInCols = 1024

	stripselChipPeriod = 774 // 256*3 + 6
	stripselGapStart   = 765 // first gap-band column within a chip period
	stripselGapGroup   = 64  // input-column period of the gap source pixels
)

// ReshapeStripsel redistributes one stripsel module's sensor pixels into
// its output block, writing into dst at origin (oy, ox). Bulk pixels
// follow the deterministic wiring formula; the three inter-chip gap bands
// then duplicate their boundary source pixels into two neighboring output
// rows, with the right side of each gap mirrored. The duplicated pixels
// physically sense twice the area, so the same source value appears at
// both output locations.
func ReshapeStripsel[T models.Pixel](dst []T, dstWidth, oy, ox int, src []T, srcWidth int) {
	// Bulk pixels first; the gap bands are overwritten below.
	for yin := 0; yin < stripselInRows; yin++ {
		srow := yin * srcWidth
		yout := oy + yin/3
		drow := yout*dstWidth + ox
		for xin := 0; xin < stripselInCols; xin++ {
			ichip := xin / 256
			xout := ichip*stripselChipPeriod + (xin%256)*3 + yin%3
			dst[drow+xout] = src[srow+xin]
		}
	}

	for igap := 0; igap < 3; igap++ {
		for yin := 0; yin < stripselInRows; yin++ {
			yout := oy + (yin/6)*2
			drow := yout * dstWidth
			dnext := (yout + 1) * dstWidth

			// Left side of the gap.
			xin := igap*stripselGapGroup + stripselGapGroup - 1
			xout := ox + igap*stripselChipPeriod + stripselGapStart + yin%6
			v := src[yin*srcWidth+xin]
			dst[drow+xout] = v
			dst[dnext+xout] = v

			// Right side, mirrored within the gap band.
			xin++
			xout = ox + igap*stripselChipPeriod + stripselGapStart + 11 - yin%6
			v = src[yin*srcWidth+xin]
			dst[drow+xout] = v
			dst[dnext+xout] = v
		}
	}
}
