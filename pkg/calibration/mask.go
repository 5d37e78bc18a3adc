package calibration

import (
	"fmt"

	"jfproc/internal/models"
	"jfproc/pkg/detector"
)

// Mask owns the bad-pixel mask of one detector. Next to the raw mask it
// keeps a derived variant where every pixel on a chip's outer edge (the
// first and last row and column of every chip) is additionally masked;
// those "double" pixels sit on chip boundaries, cover twice the sensing
// area, and are often excluded from analysis. Both planes are recomputed
// together whenever the raw mask is assigned.
type Mask struct {
	height int
	width  int

	raw    []bool
	double []bool
}

// NewMask creates an empty mask for a detector with the given full shape.
func NewMask(height, width int) *Mask {
	return &Mask{height: height, width: width}
}

// Shape returns the full-detector plane shape the mask validates against.
func (m *Mask) Shape() (int, int) { return m.height, m.width }

// Set stores a copy of the given mask plane and derives the double-pixel
// variant. Passing nil clears both planes.
func (m *Mask) Set(p *models.MaskPlane) error {
	if p == nil {
		m.raw = nil
		m.double = nil
		return nil
	}
	if p.Height != m.height || p.Width != m.width {
		return fmt.Errorf("%w: expected pixel mask shape (%d, %d), got (%d, %d)",
			ErrShapeMismatch, m.height, m.width, p.Height, p.Width)
	}

	raw := make([]bool, len(p.Data))
	copy(raw, p.Data)

	// Module boundaries always align with chip boundaries, so a pixel is a
	// chip-edge pixel exactly when its coordinate is the first or last of a
	// 256-pixel chip period, in either axis.
	double := make([]bool, len(raw))
	copy(double, raw)
	for y := 0; y < m.height; y++ {
		edgeRow := y%detector.ChipHeight == 0 || y%detector.ChipHeight == detector.ChipHeight-1
		row := double[y*m.width : (y+1)*m.width]
		if edgeRow {
			for x := range row {
				row[x] = true
			}
			continue
		}
		for x := 0; x < m.width; x++ {
			if x%detector.ChipWidth == 0 || x%detector.ChipWidth == detector.ChipWidth-1 {
				row[x] = true
			}
		}
	}

	m.raw = raw
	m.double = double
	return nil
}

// View returns the requested precomputed plane, or nil if no mask is set.
// With doublePixels the chip-edge pixels are masked in addition to the raw
// bad-pixel entries.
func (m *Mask) View(doublePixels bool) []bool {
	if doublePixels {
		return m.double
	}
	return m.raw
}
