package spots

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/parallel"
)

// Red is the default overlay marker.
var Red = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

// Detection is the outcome of running a strategy over a LabImage.
type Detection struct {
	Mask *Mask

	// Matched is the number of pixels in the mask.
	Matched int

	// DistanceSum is the sum of match distances over matched pixels. Zero for
	// strategies that do not measure distance.
	DistanceSum float64
}

// MeanDistance returns DistanceSum / Matched, or 0 when nothing matched.
func (d *Detection) MeanDistance() float64 {
	if d.Matched == 0 {
		return 0
	}
	return d.DistanceSum / float64(d.Matched)
}

// Detect applies s to every pixel of lab.
//
// Rows are evaluated in parallel. Each row keeps its own count and distance sum,
// summed left to right; the rows are then reduced top to bottom so the result
// never depends on how rows were split between goroutines.
func Detect(lab *LabImage, s Strategy) *Detection {
	mask := NewMask(lab.Width, lab.Height)
	counts := make([]int, lab.Height)
	sums := make([]float64, lab.Height)

	parallel.Line(lab.Height, func(start, end int) {
		for y := start; y < end; y++ {
			off := y * lab.Width
			for x := 0; x < lab.Width; x++ {
				ok, dist := s.Match(lab.Pix[off+x])
				if !ok {
					continue
				}
				mask.Bits[off+x] = true
				counts[y]++
				sums[y] += dist
			}
		}
	})

	det := &Detection{Mask: mask}
	for y := range counts {
		det.Matched += counts[y]
		det.DistanceSum += sums[y]
	}
	if !s.MeasuresDistance() {
		det.DistanceSum = 0
	}
	return det
}

// Overlay returns a copy of src with every masked pixel replaced by marker.
// Unmasked pixels keep their original channel values. src and mask are not
// modified.
func Overlay(src *image.NRGBA, mask *Mask, marker color.NRGBA) (*image.NRGBA, error) {
	bounds := src.Bounds()
	if err := mask.checkShape(bounds); err != nil {
		return nil, err
	}

	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+width*4]
		dstRow := out.Pix[y*out.Stride : y*out.Stride+width*4]
		copy(dstRow, srcRow)
		for x := 0; x < width; x++ {
			if !mask.Bits[y*width+x] {
				continue
			}
			i := x * 4
			dstRow[i+0] = marker.R
			dstRow[i+1] = marker.G
			dstRow[i+2] = marker.B
			dstRow[i+3] = marker.A
		}
	}
	return out, nil
}

// Coverage returns the percentage (0-100) of spot pixels in mask. An empty mask
// has zero coverage. The value is not rounded.
func Coverage(mask *Mask) float64 {
	total := mask.Width * mask.Height
	if total == 0 {
		return 0
	}
	return 100.0 * float64(mask.Count()) / float64(total)
}

// Result bundles everything produced by Classify.
type Result struct {
	Strategy Kind
	Mask     *Mask
	Overlay  *image.NRGBA

	// Coverage is the spot percentage in [0, 100], full precision.
	Coverage float64

	Matched int
	Total   int

	// MeanDistance is the mean distance of matched pixels; only set when
	// HasMeanDistance is true, and 0 when nothing matched.
	MeanDistance    float64
	HasMeanDistance bool
}

// Options tweak Classify.
type Options struct {
	// Marker is the overlay colour. Nil means Red; any other value, transparent
	// black included, is painted as given.
	Marker *color.NRGBA
}

// Classify runs the full pipeline on src with strategy s.
func Classify(src *image.NRGBA, s Strategy, opts Options) (*Result, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrShapeMismatch)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: nil strategy", ErrInvalidConfig)
	}
	marker := Red
	if opts.Marker != nil {
		marker = *opts.Marker
	}

	det := Detect(ToLab(src), s)

	overlay, err := Overlay(src, det.Mask, marker)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Strategy: s.Kind(),
		Mask:     det.Mask,
		Overlay:  overlay,
		Coverage: Coverage(det.Mask),
		Matched:  det.Matched,
		Total:    det.Mask.Width * det.Mask.Height,
	}
	if s.MeasuresDistance() {
		res.HasMeanDistance = true
		res.MeanDistance = det.MeanDistance()
	}
	return res, nil
}
