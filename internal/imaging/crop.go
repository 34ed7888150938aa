package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region is a rectangle in pixel coordinates. (X1,Y1) is inclusive, (X2,Y2)
// exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width returns X2-X1.
func (r Region) Width() int { return r.X2 - r.X1 }

// Height returns Y2-Y1.
func (r Region) Height() int { return r.Y2 - r.Y1 }

// Validate checks that r is non-empty and lies inside an image of the given
// bounds.
func (r Region) Validate(bounds image.Rectangle) error {
	w, h := bounds.Dx(), bounds.Dy()
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > w || r.Y2 > h {
		return fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, w, h)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	return nil
}

// Crop extracts a rectangular region from a raster.
//
// Parameters:
//   - img: The source raster. Region coordinates are relative to its top-left
//     corner, whatever its Bounds().Min.
//   - r: The region to keep.
//
// Returns:
//   - *image.NRGBA: A new raster of r.Width() x r.Height() with bounds at (0,0).
//     The source is not modified.
//   - error: Non-nil if the region is empty or outside the image.
func Crop(img *image.NRGBA, r Region) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if err := r.Validate(bounds); err != nil {
		return nil, err
	}
	rect := image.Rect(r.X1, r.Y1, r.X2, r.Y2).Add(bounds.Min)
	return imaging.Crop(img, rect), nil
}

// Quadrants lists the names accepted by NamedRegion.
var Quadrants = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// NamedRegion resolves a quadrant name to a region of an image of the given
// bounds. "center" is the middle 50% in each direction.
func NamedRegion(bounds image.Rectangle, name string) (Region, error) {
	w := bounds.Dx()
	h := bounds.Dy()
	midX := w / 2
	midY := h / 2

	switch name {
	case "top-left":
		return Region{0, 0, midX, midY}, nil
	case "top-right":
		return Region{midX, 0, w, midY}, nil
	case "bottom-left":
		return Region{0, midY, midX, h}, nil
	case "bottom-right":
		return Region{midX, midY, w, h}, nil
	case "top-half":
		return Region{0, 0, w, midY}, nil
	case "bottom-half":
		return Region{0, midY, w, h}, nil
	case "left-half":
		return Region{0, 0, midX, h}, nil
	case "right-half":
		return Region{midX, 0, w, h}, nil
	case "center":
		qW := w / 4
		qH := h / 4
		return Region{qW, qH, w - qW, h - qH}, nil
	default:
		return Region{}, fmt.Errorf("unknown region: %s", name)
	}
}
