package geometry

import (
	"testing"

	"jfproc/pkg/detector"
)

// TestStripselBulkMapping verifies that the bulk wiring formula maps every
// sensor pixel to a unique, in-range output location.
func TestStripselBulkMapping(t *testing.T) {
	seen := make([]bool, detector.StripselModuleHeight*detector.StripselModuleWidth)
	for yin := 0; yin < stripselInRows; yin++ {
		for xin := 0; xin < stripselInCols; xin++ {
			ichip := xin / 256
			xout := ichip*stripselChipPeriod + (xin%256)*3 + yin%3
			yout := yin / 3
			if yout < 0 || yout >= detector.StripselModuleHeight || xout < 0 || xout >= detector.StripselModuleWidth {
				t.Fatalf("input (%d, %d) maps out of range to (%d, %d)", yin, xin, yout, xout)
			}
			idx := yout*detector.StripselModuleWidth + xout
			if seen[idx] {
				t.Fatalf("input (%d, %d) maps to already used output (%d, %d)", yin, xin, yout, xout)
			}
			seen[idx] = true
		}
	}
}

// TestReshapeStripsel verifies hand-computed samples of the remap,
// including the duplicated gap-band pixels, at a nonzero output origin.
func TestReshapeStripsel(t *testing.T) {
	const (
		oy = 86
		ox = 10
	)
	dstW := ox + detector.StripselModuleWidth
	dstH := oy + detector.StripselModuleHeight

	src := make([]float32, stripselInRows*stripselInCols)
	for i := range src {
		src[i] = float32(i)
	}
	dst := make([]float32, dstH*dstW)
	for i := range dst {
		dst[i] = -1
	}

	ReshapeStripsel(dst, dstW, oy, ox, src, stripselInCols)

	at := func(y, x int) float32 { return dst[(oy+y)*dstW+ox+x] }

	// Bulk samples.
	if got := at(0, 0); got != src[0] {
		t.Errorf("output (0, 0) = %v, expected %v", got, src[0])
	}
	// Input (5, 300): chip 1, xout = 774 + 44*3 + 2 = 908, yout = 1.
	if got := at(1, 908); got != src[5*stripselInCols+300] {
		t.Errorf("output (1, 908) = %v, expected %v", got, src[5*stripselInCols+300])
	}
	// Input (255, 1023): chip 3, xout = 2322 + 765 + 0 = 3087, yout = 85.
	if got := at(85, 3087); got != src[255*stripselInCols+1023] {
		t.Errorf("output (85, 3087) = %v, expected %v", got, src[255*stripselInCols+1023])
	}

	// Gap band, left side: input (7, 63) lands at columns 766 of rows 2
	// and 3.
	want := src[7*stripselInCols+63]
	if got := at(2, 766); got != want {
		t.Errorf("gap output (2, 766) = %v, expected %v", got, want)
	}
	if got := at(3, 766); got != want {
		t.Errorf("gap output (3, 766) = %v, expected %v", got, want)
	}

	// Gap band, mirrored right side: input (0, 192) lands at column
	// 2*774 + 765 + 11 = 2324 of rows 0 and 1.
	want = src[192]
	if got := at(0, 2324); got != want {
		t.Errorf("gap output (0, 2324) = %v, expected %v", got, want)
	}
	if got := at(1, 2324); got != want {
		t.Errorf("gap output (1, 2324) = %v, expected %v", got, want)
	}

	// Nothing outside the module's output block may be written.
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			if y >= oy && x >= ox {
				continue
			}
			if dst[y*dstW+x] != -1 {
				t.Fatalf("pixel (%d, %d) outside the output block was written", y, x)
			}
		}
	}
}

// TestReshapeStripselGapBands verifies that the gap-band overwrite stays
// within the three 12-column bands at the chip interfaces.
func TestReshapeStripselGapBands(t *testing.T) {
	src := make([]float32, stripselInRows*stripselInCols)
	for i := range src {
		src[i] = float32(i)
	}
	dst := make([]float32, detector.StripselModuleHeight*detector.StripselModuleWidth)
	ReshapeStripsel(dst, detector.StripselModuleWidth, 0, 0, src, stripselInCols)

	inGapBand := func(x int) bool {
		for igap := 0; igap < 3; igap++ {
			lo := igap*stripselChipPeriod + stripselGapStart
			if x >= lo && x <= lo+11 {
				return true
			}
		}
		return false
	}

	// Outside the gap bands every output pixel must carry its bulk value.
	for yin := 0; yin < stripselInRows; yin++ {
		for xin := 0; xin < stripselInCols; xin++ {
			ichip := xin / 256
			xout := ichip*stripselChipPeriod + (xin%256)*3 + yin%3
			if inGapBand(xout) {
				continue
			}
			yout := yin / 3
			if got := dst[yout*detector.StripselModuleWidth+xout]; got != src[yin*stripselInCols+xin] {
				t.Fatalf("bulk output (%d, %d) = %v, expected %v", yout, xout, got, src[yin*stripselInCols+xin])
			}
		}
	}
}
