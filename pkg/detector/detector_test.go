package detector

import (
	"errors"
	"testing"
)

// TestNew verifies that a well-formed detector name is parsed into its
// numeric components.
func TestNew(t *testing.T) {
	d, err := New("JF07T32V01")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if d.Name() != "JF07T32V01" {
		t.Errorf("Expected name JF07T32V01, got %s", d.Name())
	}
	if d.ID() != 7 {
		t.Errorf("Expected id 7, got %d", d.ID())
	}
	if d.NModules() != 32 {
		t.Errorf("Expected 32 modules, got %d", d.NModules())
	}
	if d.Version() != 1 {
		t.Errorf("Expected version 1, got %d", d.Version())
	}
}

// TestNewUnknown verifies that malformed and unknown names are rejected
// with a configuration error.
func TestNewUnknown(t *testing.T) {
	for _, name := range []string{"", "JF07", "EG01T32V01", "JF07T32V01X", "JF99T01V01"} {
		if _, err := New(name); !errors.Is(err, ErrUnknownDetector) {
			t.Errorf("New(%q): expected ErrUnknownDetector, got %v", name, err)
		}
	}
}

// TestFamilyPredicates verifies the per-family quirk flags.
func TestFamilyPredicates(t *testing.T) {
	tests := []struct {
		name          string
		stripsel      bool
		sideBySide    bool
		rotateImage   bool
		rotateModules bool
	}{
		{"JF01T03V01", false, false, false, false},
		{"JF02T09V01", false, true, false, false},
		{"JF02T09V02", false, false, false, true},
		{"JF02T01V02", false, false, false, true},
		{"JF03T01V01", false, false, false, false},
		{"JF05T01V01", true, false, false, false},
		{"JF06T32V01", false, false, true, false},
		{"JF07T32V01", false, false, false, false},
		{"JF11T04V01", true, false, false, false},
	}

	for _, tc := range tests {
		d, err := New(tc.name)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", tc.name, err)
		}
		if d.IsStripsel() != tc.stripsel {
			t.Errorf("%s: IsStripsel = %v, expected %v", tc.name, d.IsStripsel(), tc.stripsel)
		}
		if d.SideBySide() != tc.sideBySide {
			t.Errorf("%s: SideBySide = %v, expected %v", tc.name, d.SideBySide(), tc.sideBySide)
		}
		if d.RequiresImageRotation() != tc.rotateImage {
			t.Errorf("%s: RequiresImageRotation = %v, expected %v", tc.name, d.RequiresImageRotation(), tc.rotateImage)
		}
		if d.RequiresModuleRotation() != tc.rotateModules {
			t.Errorf("%s: RequiresModuleRotation = %v, expected %v", tc.name, d.RequiresModuleRotation(), tc.rotateModules)
		}
	}
}

// TestFullShape verifies the calibration-plane shape for both stacking
// layouts.
func TestFullShape(t *testing.T) {
	d, _ := New("JF07T32V01")
	h, w := d.FullShape()
	if h != 32*ModuleHeight || w != ModuleWidth {
		t.Errorf("JF07T32V01 full shape = (%d, %d), expected (%d, %d)", h, w, 32*ModuleHeight, ModuleWidth)
	}

	// The single-row detector grows along the column axis instead.
	d, _ = New("JF02T09V01")
	h, w = d.FullShape()
	if h != ModuleHeight || w != 9*ModuleWidth {
		t.Errorf("JF02T09V01 full shape = (%d, %d), expected (%d, %d)", h, w, ModuleHeight, 9*ModuleWidth)
	}
}

// TestModuleOrigin verifies placement-table lookups and bounds.
func TestModuleOrigin(t *testing.T) {
	d, _ := New("JF07T32V01")

	y, x := d.ModuleOrigin(0)
	if y != 0 || x != 68 {
		t.Errorf("module 0 origin = (%d, %d), expected (0, 68)", y, x)
	}

	y, x = d.ModuleOrigin(31)
	if y != 3918 || x != 3117 {
		t.Errorf("module 31 origin = (%d, %d), expected (3918, 3117)", y, x)
	}

	maxY, maxX := d.MaxOrigin()
	if maxY != 3918 || maxX != 3185 {
		t.Errorf("max origin = (%d, %d), expected (3918, 3185)", maxY, maxX)
	}
}

// TestKnownDetectors verifies that every known detector constructs.
func TestKnownDetectors(t *testing.T) {
	names := KnownDetectors()
	if len(names) == 0 {
		t.Fatal("no known detectors")
	}
	for _, name := range names {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
		}
	}
}
