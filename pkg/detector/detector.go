// Package detector provides static geometry and identity metadata for the
// supported pixel detectors. A detector is identified by a name of the form
// JF<id>T<nmod>V<version>; everything else about it (module count, chip
// layout, module placement, family quirks) is derived from that name and a
// set of fixed per-family tables.
package detector

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Chip and module layout constants. Every module is a 2x4 grid of 256x256
// chips; a 2-pixel gap separates neighboring chips in both axes when gap
// pixels are requested.
const (
	ChipWidth  = 256
	ChipHeight = 256

	ChipsPerRow = 4 // chips along the x axis of a module
	ChipRows    = 2 // chips along the y axis of a module

	ChipGapX = 2
	ChipGapY = 2

	ModuleWidth  = ChipsPerRow * ChipWidth // 1024
	ModuleHeight = ChipRows * ChipHeight   // 512
	ModulePixels = ModuleWidth * ModuleHeight
)

// Stripsel output block dimensions. 256 rows are not divisible by 3, so the
// output rounds up to 86 rows; the width gains 6 pixels per chip gap.
const (
	StripselModuleWidth  = 1024*3 + 18 // 3090
	StripselModuleHeight = 86
)

// ErrUnknownDetector is returned when a detector name cannot be parsed or
// no geometry is on record for it.
var ErrUnknownDetector = errors.New("detector: unknown detector")

var namePattern = regexp.MustCompile(`^JF(\d+)T(\d+)V(\d+)$`)

// Descriptor holds the immutable identity and geometry metadata of one
// detector. It is safe for concurrent use once constructed.
type Descriptor struct {
	name    string
	id      int
	modules int
	version int

	stripsel      bool
	sideBySide    bool
	rotateImage   bool
	rotateModules bool

	originY []int
	originX []int
}

// New parses a detector name and returns its descriptor. The name must
// match JF<id>T<nmod>V<version> and have a known placement table.
func New(name string) (*Descriptor, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("%w: malformed name %q", ErrUnknownDetector, name)
	}

	org, ok := moduleOrigins[name]
	if !ok {
		return nil, fmt.Errorf("%w: no geometry for %q", ErrUnknownDetector, name)
	}

	id, _ := strconv.Atoi(m[1])
	modules, _ := strconv.Atoi(m[2])
	version, _ := strconv.Atoi(m[3])

	if len(org.y) != modules || len(org.x) != modules {
		return nil, fmt.Errorf("%w: geometry table for %q covers %d modules, name declares %d",
			ErrUnknownDetector, name, len(org.y), modules)
	}

	return &Descriptor{
		name:    name,
		id:      id,
		modules: modules,
		version: version,

		// JF05 and JF11 use the stripsel sensor topology.
		stripsel: id == 5 || id == 11,

		// One detector packs its modules side by side into a single row
		// instead of stacking them vertically.
		sideBySide: name == "JF02T09V01",

		// JF06 is mounted rotated; the assembled image gets a 90 degree
		// rotation when full geometry is requested.
		rotateImage: id == 6,

		// Two legacy module revisions are mounted upside down.
		rotateModules: name == "JF02T09V02" || name == "JF02T01V02",

		originY: org.y,
		originX: org.x,
	}, nil
}

// Name returns the detector name the descriptor was built from.
func (d *Descriptor) Name() string { return d.name }

// ID returns the numeric detector family id.
func (d *Descriptor) ID() int { return d.id }

// NModules returns the nominal module count of the detector.
func (d *Descriptor) NModules() int { return d.modules }

// Version returns the detector version number.
func (d *Descriptor) Version() int { return d.version }

// IsStripsel reports whether the detector uses the stripsel sensor
// topology, which requires a non-affine pixel remap instead of plain
// chip tiling.
func (d *Descriptor) IsStripsel() bool { return d.stripsel }

// SideBySide reports whether modules are laid out along the column axis
// into a single row rather than stacked vertically.
func (d *Descriptor) SideBySide() bool { return d.sideBySide }

// RequiresImageRotation reports whether the fully assembled image must be
// rotated by 90 degrees when full geometry is requested.
func (d *Descriptor) RequiresImageRotation() bool { return d.rotateImage }

// RequiresModuleRotation reports whether each module's content must be
// rotated by 180 degrees before placement.
func (d *Descriptor) RequiresModuleRotation() bool { return d.rotateModules }

// ModuleOrigin returns the full-geometry (y, x) placement origin of
// logical module i.
func (d *Descriptor) ModuleOrigin(i int) (int, int) {
	return d.originY[i], d.originX[i]
}

// MaxOrigin returns the component-wise maximum over all module origins,
// used to compute full-geometry output bounds.
func (d *Descriptor) MaxOrigin() (int, int) {
	maxY, maxX := 0, 0
	for i := range d.originY {
		if d.originY[i] > maxY {
			maxY = d.originY[i]
		}
		if d.originX[i] > maxX {
			maxX = d.originX[i]
		}
	}
	return maxY, maxX
}

// FullShape returns the dimensions of the detector's calibration-table
// plane: all nominal modules in raw order with no gaps.
func (d *Descriptor) FullShape() (int, int) {
	if d.sideBySide {
		return ModuleHeight, d.modules * ModuleWidth
	}
	return d.modules * ModuleHeight, ModuleWidth
}

// KnownDetectors returns the names of all detectors with a placement
// table, in no particular order.
func KnownDetectors() []string {
	names := make([]string, 0, len(moduleOrigins))
	for name := range moduleOrigins {
		names = append(names, name)
	}
	return names
}
