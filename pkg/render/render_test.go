package render

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// TestGray16 verifies the linear min/max scaling.
func TestGray16(t *testing.T) {
	frame := []float32{0, 1, 2, 3}
	img := Gray16(frame, 2, 2)

	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, expected 2x2", b)
	}
	if v := img.Gray16At(0, 0).Y; v != 0 {
		t.Errorf("minimum pixel = %d, expected 0", v)
	}
	if v := img.Gray16At(1, 1).Y; v != 65535 {
		t.Errorf("maximum pixel = %d, expected 65535", v)
	}
}

// TestGray16Constant verifies that a constant frame renders as black
// instead of dividing by a zero range.
func TestGray16Constant(t *testing.T) {
	frame := []float32{5, 5, 5, 5}
	img := Gray16(frame, 2, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if v := img.Gray16At(x, y).Y; v != 0 {
				t.Errorf("pixel (%d, %d) = %d, expected 0", x, y, v)
			}
		}
	}
}

// TestHeatmap verifies rendering and the shape check.
func TestHeatmap(t *testing.T) {
	frame := make([]float32, 8*4)
	for i := range frame {
		frame[i] = float32(i)
	}

	img, err := Heatmap(frame, 8, 4)
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		t.Errorf("empty heatmap bounds %v", b)
	}

	if _, err := Heatmap(frame, 8, 5); err == nil {
		t.Error("expected an error for a mismatched shape")
	}
}

// TestPreview verifies aspect-preserving downscaling.
func TestPreview(t *testing.T) {
	img := Preview(image.NewGray16(image.Rect(0, 0, 8, 4)), 4)
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("preview bounds = %v, expected 4x2", b)
	}
}

// TestSavePNG verifies that the written file decodes as PNG.
func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	if err := SavePNG(path, Gray16([]float32{0, 1, 2, 3}, 2, 2)); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening the written file failed: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("decoding the written file failed: %v", err)
	}
}

// TestSavePNGError verifies that the underlying file error stays
// inspectable through the wrap.
func TestSavePNGError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "preview.png")
	err := SavePNG(path, Gray16([]float32{0, 1}, 2, 1))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist through the wrap, got %v", err)
	}
}
