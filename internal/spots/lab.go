package spots

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/lucasb-eyer/go-colorful"
)

// Lab is a CIE L*a*b* colour.
//
// L ranges from 0 (black) to 100 (diffuse white); A and B are roughly within
// [-128, 127] for colours reachable from sRGB.
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// White is the ideal diffuse white, the default Delta reference.
var White = Lab{L: 100, A: 0, B: 0}

// LabImage is a row-major grid of Lab values with the same shape as the raster
// it was converted from.
type LabImage struct {
	Width  int
	Height int
	Pix    []Lab
}

// At returns the Lab value at column x, row y.
func (m *LabImage) At(x, y int) Lab {
	return m.Pix[y*m.Width+x]
}

// xyzFromRGB maps linear sRGB to CIE XYZ under D65.
var xyzFromRGB = [3][3]float64{
	{0.412453, 0.357580, 0.180423},
	{0.212671, 0.715160, 0.072169},
	{0.019334, 0.119193, 0.950227},
}

var rgbFromXYZ = invert3(xyzFromRGB)

// d65 is the reference white, xyzFromRGB applied to linear (1, 1, 1). It is
// within 1e-4 of the tabulated D65 white (0.95047, 1, 1.08883), which shifts Lab
// by at most about 4.7e-3 per channel, and maps sRGB white to exactly L=100, a=b=0.
var d65 = [3]float64{
	xyzFromRGB[0][0] + xyzFromRGB[0][1] + xyzFromRGB[0][2],
	xyzFromRGB[1][0] + xyzFromRGB[1][1] + xyzFromRGB[1][2],
	xyzFromRGB[2][0] + xyzFromRGB[2][1] + xyzFromRGB[2][2],
}

// linear holds the sRGB transfer function decoded for every 8-bit value.
var linear = func() [256]float64 {
	var t [256]float64
	for i := range t {
		v, _, _ := colorful.Color{R: float64(i) / 255.0}.LinearRgb()
		t[i] = v
	}
	return t
}()

// RGBToLab converts one 8-bit sRGB triple to Lab.
//
// The conversion decodes the sRGB transfer curve, projects to XYZ with the sRGB
// primaries and applies the CIE Lab nonlinearity relative to the D65 white
// point. go-colorful works with L in [0,1], so the result is
// rescaled to the conventional [0,100] range.
func RGBToLab(r, g, b uint8) Lab {
	lr, lg, lb := linear[r], linear[g], linear[b]

	x := xyzFromRGB[0][0]*lr + xyzFromRGB[0][1]*lg + xyzFromRGB[0][2]*lb
	y := xyzFromRGB[1][0]*lr + xyzFromRGB[1][1]*lg + xyzFromRGB[1][2]*lb
	z := xyzFromRGB[2][0]*lr + xyzFromRGB[2][1]*lg + xyzFromRGB[2][2]*lb

	l, a, bb := colorful.XyzToLabWhiteRef(x, y, z, d65)
	return Lab{L: l * 100, A: a * 100, B: bb * 100}
}

// LabToRGB converts a Lab colour back to 8-bit sRGB, clamping out-of-gamut
// values. It is the inverse of RGBToLab up to rounding.
func LabToRGB(c Lab) (r, g, b uint8) {
	x, y, z := colorful.LabToXyzWhiteRef(c.L/100, c.A/100, c.B/100, d65)

	lr := rgbFromXYZ[0][0]*x + rgbFromXYZ[0][1]*y + rgbFromXYZ[0][2]*z
	lg := rgbFromXYZ[1][0]*x + rgbFromXYZ[1][1]*y + rgbFromXYZ[1][2]*z
	lb := rgbFromXYZ[2][0]*x + rgbFromXYZ[2][1]*y + rgbFromXYZ[2][2]*z

	return colorful.LinearRgb(clamp01(lr), clamp01(lg), clamp01(lb)).RGB255()
}

// ToLab converts every pixel of src to Lab. Alpha is ignored.
//
// Each pixel depends only on its own channels, so rows are converted in
// parallel; the output is identical to a sequential pass.
func ToLab(src *image.NRGBA) *LabImage {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	out := &LabImage{
		Width:  width,
		Height: height,
		Pix:    make([]Lab, width*height),
	}

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+width*4]
			dst := out.Pix[y*width : (y+1)*width]
			for x := range dst {
				i := x * 4
				dst[x] = RGBToLab(row[i], row[i+1], row[i+2])
			}
		}
	})

	return out
}

// invert3 returns the inverse of a non-singular 3x3 matrix.
func invert3(m [3][3]float64) [3][3]float64 {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])

	var inv [3][3]float64
	inv[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) / det
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) / det
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) / det
	inv[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) / det
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) / det
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) / det
	inv[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) / det
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) / det
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) / det
	return inv
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
