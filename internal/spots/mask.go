package spots

import (
	"fmt"
	"image"
)

// Mask marks the pixels classified as white spots, row-major.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask returns an all-false mask of the given size.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// At reports whether the pixel at column x, row y is a spot.
func (m *Mask) At(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

// Count returns the number of spot pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Image renders the mask as an 8-bit gray image: 255 for spots, 0 elsewhere.
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+m.Width]
		for x := range row {
			if m.Bits[y*m.Width+x] {
				row[x] = 255
			}
		}
	}
	return img
}

// checkShape fails with ErrShapeMismatch unless the mask covers exactly bounds.
func (m *Mask) checkShape(bounds image.Rectangle) error {
	if m.Width != bounds.Dx() || m.Height != bounds.Dy() || len(m.Bits) != m.Width*m.Height {
		return fmt.Errorf("%w: mask is %dx%d, image is %dx%d",
			ErrShapeMismatch, m.Width, m.Height, bounds.Dx(), bounds.Dy())
	}
	return nil
}
