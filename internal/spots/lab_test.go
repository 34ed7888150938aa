package spots

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

// createInMemoryImage creates a uniform NRGBA test image
func createInMemoryImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestRGBToLab_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    Lab
		tol     float64
	}{
		{"white", 255, 255, 255, Lab{100, 0, 0}, 1e-2},
		{"black", 0, 0, 0, Lab{0, 0, 0}, 1e-9},
		// Reference values from the standard sRGB/D65 pipeline.
		{"red", 255, 0, 0, Lab{53.2408, 80.0925, 67.2032}, 1e-2},
		{"green", 0, 255, 0, Lab{87.7347, -86.1827, 83.1793}, 1e-2},
		{"blue", 0, 0, 255, Lab{32.2970, 79.1875, -107.8602}, 1e-2},
		{"mid gray", 128, 128, 128, Lab{53.5850, 0, 0}, 1e-2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RGBToLab(tt.r, tt.g, tt.b)
			if math.Abs(got.L-tt.want.L) > tt.tol ||
				math.Abs(got.A-tt.want.A) > tt.tol ||
				math.Abs(got.B-tt.want.B) > tt.tol {
				t.Errorf("RGBToLab(%d,%d,%d) = %+v, want %+v (tol %g)",
					tt.r, tt.g, tt.b, got, tt.want, tt.tol)
			}
		})
	}
}

// The white point here is the matrix row sums rather than the tabulated D65
// (0.95047, 1, 1.08883). The two pipelines drift apart as X/Xn and Z/Zn
// approach 1, peaking near 4.65e-3 on b* at white.
func TestRGBToLab_TabulatedWhiteDeviation(t *testing.T) {
	values := []uint8{255}
	for v := 0; v < 256; v += 3 {
		values = append(values, uint8(v))
	}

	var worst float64
	for _, r := range values {
		for _, g := range values {
			for _, b := range values {
				lr, lg, lb := linear[r], linear[g], linear[b]
				x := xyzFromRGB[0][0]*lr + xyzFromRGB[0][1]*lg + xyzFromRGB[0][2]*lb
				y := xyzFromRGB[1][0]*lr + xyzFromRGB[1][1]*lg + xyzFromRGB[1][2]*lb
				z := xyzFromRGB[2][0]*lr + xyzFromRGB[2][1]*lg + xyzFromRGB[2][2]*lb
				l, a, bb := colorful.XyzToLabWhiteRef(x, y, z, colorful.D65)

				got := RGBToLab(r, g, b)
				d := math.Max(math.Abs(got.L-l*100),
					math.Max(math.Abs(got.A-a*100), math.Abs(got.B-bb*100)))
				if d > 5e-3 {
					t.Fatalf("RGBToLab(%d,%d,%d) = %+v, tabulated white gives (%.4f, %.4f, %.4f)",
						r, g, b, got, l*100, a*100, bb*100)
				}
				worst = math.Max(worst, d)
			}
		}
	}

	if worst < 4e-3 {
		t.Errorf("largest deviation %g, expected about 4.65e-3 at white", worst)
	}
}

func TestRGBToLab_RoundTrip(t *testing.T) {
	// Walk the whole cube with a stride coprime to 256 plus the corners.
	values := []uint8{0, 255}
	for v := 1; v < 255; v += 7 {
		values = append(values, uint8(v))
	}

	for _, r := range values {
		for _, g := range values {
			for _, b := range values {
				lab := RGBToLab(r, g, b)
				rr, gg, bb := LabToRGB(lab)
				if absDiff(r, rr) > 1 || absDiff(g, gg) > 1 || absDiff(b, bb) > 1 {
					t.Fatalf("round trip (%d,%d,%d) -> %+v -> (%d,%d,%d)", r, g, b, lab, rr, gg, bb)
				}
			}
		}
	}
}

func TestRGBToLab_Ranges(t *testing.T) {
	for v := 0; v < 256; v += 5 {
		lab := RGBToLab(uint8(v), uint8(255-v), uint8(v/2))
		if lab.L < -1e-9 || lab.L > 100+1e-9 {
			t.Errorf("L out of range for %d: %f", v, lab.L)
		}
		if lab.A < -128 || lab.A > 128 || lab.B < -128 || lab.B > 128 {
			t.Errorf("a/b out of range for %d: %+v", v, lab)
		}
	}
}

func TestToLab_Shape(t *testing.T) {
	img := createInMemoryImage(7, 3, color.NRGBA{255, 255, 255, 255})
	lab := ToLab(img)

	if lab.Width != 7 || lab.Height != 3 {
		t.Fatalf("shape: got %dx%d, want 7x3", lab.Width, lab.Height)
	}
	if len(lab.Pix) != 21 {
		t.Fatalf("pix: got %d, want 21", len(lab.Pix))
	}
	if got := lab.At(6, 2); math.Abs(got.L-100) > 1e-2 {
		t.Errorf("At(6,2).L = %f, want 100", got.L)
	}
}

func TestToLab_MatchesPerPixel(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 4), uint8(y * 5), uint8(x ^ y), 255})
		}
	}

	lab := ToLab(img)
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			c := img.NRGBAAt(x, y)
			if want := RGBToLab(c.R, c.G, c.B); lab.At(x, y) != want {
				t.Fatalf("pixel (%d,%d): got %+v, want %+v", x, y, lab.At(x, y), want)
			}
		}
	}
}

func TestToLab_SubImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(2, 2, color.NRGBA{255, 255, 255, 255})

	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*image.NRGBA)
	lab := ToLab(sub)

	if lab.Width != 2 || lab.Height != 2 {
		t.Fatalf("shape: got %dx%d, want 2x2", lab.Width, lab.Height)
	}
	if lab.At(0, 0).L < 99 {
		t.Errorf("sub-image origin should be white, got %+v", lab.At(0, 0))
	}
	if lab.At(1, 1).L > 1 {
		t.Errorf("sub-image corner should be black, got %+v", lab.At(1, 1))
	}
}

func TestToLab_IgnoresAlpha(t *testing.T) {
	opaque := ToLab(createInMemoryImage(1, 1, color.NRGBA{200, 180, 160, 255}))
	clear := ToLab(createInMemoryImage(1, 1, color.NRGBA{200, 180, 160, 0}))

	if opaque.Pix[0] != clear.Pix[0] {
		t.Errorf("alpha changed conversion: %+v vs %+v", opaque.Pix[0], clear.Pix[0])
	}
}

func TestInvert3(t *testing.T) {
	inv := invert3(xyzFromRGB)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += xyzFromRGB[i][k] * inv[k][j]
			}
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(sum-want) > 1e-12 {
				t.Errorf("(M*inv)[%d][%d] = %g, want %g", i, j, sum, want)
			}
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
