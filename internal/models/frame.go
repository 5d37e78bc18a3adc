// Package models defines the in-memory data structures shared by the
// detector processing pipeline: frame stacks, calibration planes and
// pixel masks. All arrays are stored flat in row-major order.
package models

// Pixel enumerates the element types that can flow through the pipeline:
// raw 16-bit detector words, calibrated float32 values, and boolean or
// small-integer planes derived from them.
type Pixel interface {
	~uint16 | ~uint8 | ~float32 | ~bool
}

// Stack represents a stack of 2D frames with identical dimensions.
type Stack[T Pixel] struct {
	// Data holds all frames back to back, each frame row-major.
	Data []T

	// Frames is the number of frames in the stack.
	Frames int

	// Height and Width are the dimensions of a single frame in pixels.
	Height int
	Width  int
}

// NewStack allocates a zero-initialized stack of the given dimensions.
func NewStack[T Pixel](frames, height, width int) *Stack[T] {
	return &Stack[T]{
		Data:   make([]T, frames*height*width),
		Frames: frames,
		Height: height,
		Width:  width,
	}
}

// Frame returns the flat pixel slice of frame i, sharing the stack's storage.
func (s *Stack[T]) Frame(i int) []T {
	size := s.Height * s.Width
	return s.Data[i*size : (i+1)*size]
}

// At returns the pixel at (y, x) of frame f.
func (s *Stack[T]) At(f, y, x int) T {
	return s.Data[(f*s.Height+y)*s.Width+x]
}

// Set assigns the pixel at (y, x) of frame f.
func (s *Stack[T]) Set(f, y, x int, v T) {
	s.Data[(f*s.Height+y)*s.Width+x] = v
}

// GainSet holds one float32 plane per gain stage, covering the full
// detector area. It is used for both gain and pedestal tables.
type GainSet struct {
	// Data holds the stage planes back to back, each row-major.
	Data []float32

	// Stages is the number of gain-stage planes (four for this detector).
	Stages int

	// Height and Width are the full-detector plane dimensions.
	Height int
	Width  int
}

// NewGainSet allocates a zero-initialized set of stage planes.
func NewGainSet(stages, height, width int) *GainSet {
	return &GainSet{
		Data:   make([]float32, stages*height*width),
		Stages: stages,
		Height: height,
		Width:  width,
	}
}

// Plane returns the flat plane of stage s, sharing the set's storage.
func (g *GainSet) Plane(s int) []float32 {
	size := g.Height * g.Width
	return g.Data[s*size : (s+1)*size]
}

// At returns the value of stage s at (y, x).
func (g *GainSet) At(s, y, x int) float32 {
	return g.Data[(s*g.Height+y)*g.Width+x]
}

// Set assigns the value of stage s at (y, x).
func (g *GainSet) Set(s, y, x int, v float32) {
	g.Data[(s*g.Height+y)*g.Width+x] = v
}

// Clone returns a deep copy of the set.
func (g *GainSet) Clone() *GainSet {
	c := NewGainSet(g.Stages, g.Height, g.Width)
	copy(c.Data, g.Data)
	return c
}

// MaskPlane is a single boolean plane covering the full detector area.
// A true entry marks an excluded pixel.
type MaskPlane struct {
	Data   []bool
	Height int
	Width  int
}

// NewMaskPlane allocates an all-false mask plane.
func NewMaskPlane(height, width int) *MaskPlane {
	return &MaskPlane{
		Data:   make([]bool, height*width),
		Height: height,
		Width:  width,
	}
}

// At returns the mask entry at (y, x).
func (m *MaskPlane) At(y, x int) bool {
	return m.Data[y*m.Width+x]
}

// Set assigns the mask entry at (y, x).
func (m *MaskPlane) Set(y, x int, v bool) {
	m.Data[y*m.Width+x] = v
}
