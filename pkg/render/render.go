// Package render converts processed detector frames into images for quick
// inspection: 16-bit grayscale PNGs, false-color heatmaps and downscaled
// previews.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Gray16 renders a frame into a 16-bit grayscale image, scaling linearly
// between the frame's minimum and maximum value. A constant frame renders
// as black.
func Gray16(frame []float32, width, height int) *image.Gray16 {
	lo, hi := frame[0], frame[0]
	for _, v := range frame {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	scale := float32(0)
	if hi > lo {
		scale = 65535 / (hi - lo)
	}

	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := (frame[y*width+x] - lo) * scale
			img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}
	return img
}

// frameGrid adapts a frame to the plotter.GridXYZ interface, with one grid
// cell per pixel.
type frameGrid struct {
	data   []float32
	width  int
	height int
}

func (g frameGrid) Dims() (int, int)   { return g.width, g.height }
func (g frameGrid) Z(c, r int) float64 { return float64(g.data[r*g.width+c]) }
func (g frameGrid) X(c int) float64    { return float64(c) }
func (g frameGrid) Y(r int) float64    { return float64(r) }

// Heatmap renders a frame as a false-color heatmap image of roughly the
// frame's pixel dimensions.
func Heatmap(frame []float32, width, height int) (image.Image, error) {
	if len(frame) != width*height {
		return nil, fmt.Errorf("render: frame has %d pixels, shape (%d, %d) needs %d",
			len(frame), height, width, width*height)
	}

	p := plot.New()
	p.HideAxes()
	p.Add(plotter.NewHeatMap(frameGrid{data: frame, width: width, height: height}, palette.Heat(12, 255)))

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Points(float64(width)), vg.Points(float64(height))),
		vgimg.UseDPI(72),
	)
	p.Draw(draw.New(c))
	return c.Image(), nil
}

// Preview downscales an image to the given width, preserving the aspect
// ratio. Composite detector images run to several thousand pixels per
// side, which is unwieldy for quick looks.
func Preview(img image.Image, width uint) image.Image {
	return resize.Resize(width, 0, img, resize.Bilinear)
}

// SavePNG writes an image to the given path in PNG format.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}
