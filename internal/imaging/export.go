package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Default export file names.
const (
	DefaultAnnotatedName = "annotated_image.png"
	DefaultBinaryName    = "binary_image.png"
)

// ExportResult lists the files written by Export.
type ExportResult struct {
	AnnotatedPath string `json:"annotated_path"`
	BinaryPath    string `json:"binary_path"`
}

// Export writes the overlay and the binary mask as PNG files into dir.
//
// Parameters:
//   - dir: Output directory. Created (with parents) if missing.
//   - annotatedName, binaryName: File names inside dir. Empty names fall back to
//     DefaultAnnotatedName and DefaultBinaryName.
//   - overlay: The recoloured image.
//   - mask: The mask rendered as 8-bit gray (0 or 255).
//
// Returns:
//   - *ExportResult: Absolute paths of the written files.
//   - error: Non-nil if the directory cannot be created or a file cannot be
//     encoded or written. The annotated file may exist when the binary write fails.
//
// Existing files with the same names are overwritten.
func Export(dir, annotatedName, binaryName string, overlay, mask image.Image) (*ExportResult, error) {
	if annotatedName == "" {
		annotatedName = DefaultAnnotatedName
	}
	if binaryName == "" {
		binaryName = DefaultBinaryName
	}
	if annotatedName == binaryName {
		return nil, fmt.Errorf("annotated and binary file names must differ: %q", annotatedName)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	res := &ExportResult{
		AnnotatedPath: filepath.Join(abs, annotatedName),
		BinaryPath:    filepath.Join(abs, binaryName),
	}

	// Names are forced to PNG regardless of extension.
	if err := savePNG(overlay, res.AnnotatedPath); err != nil {
		return nil, fmt.Errorf("failed to save annotated image: %w", err)
	}
	if err := savePNG(mask, res.BinaryPath); err != nil {
		return nil, fmt.Errorf("failed to save binary image: %w", err)
	}
	return res, nil
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodedImage is an image encoded as base64 PNG for inline transport.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := img.Bounds()
	return &EncodedImage{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// PreviewOverlay scales an overlay so neither side exceeds maxSize, keeping the
// aspect ratio. Images already within bounds, or maxSize <= 0, are returned as-is.
// Lanczos resampling is used since the overlay is a photograph.
func PreviewOverlay(img image.Image, maxSize int) image.Image {
	if !needsPreview(img, maxSize) {
		return img
	}
	return imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
}

// PreviewMask scales a binary mask like PreviewOverlay and thresholds the
// result back to 0 and 255. Nearest-neighbour downscaling in nfnt/resize still
// averages the source pixels under each output pixel, so a cell becomes a spot
// when at least half of its window was one.
func PreviewMask(mask image.Image, maxSize int) image.Image {
	if !needsPreview(mask, maxSize) {
		return mask
	}
	return binarize(resize.Thumbnail(uint(maxSize), uint(maxSize), mask, resize.NearestNeighbor))
}

// binarize maps every pixel with gray value >= 128 to 255 and the rest to 0.
func binarize(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range row {
			if color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y >= 128 {
				row[x] = 255
			}
		}
	}
	return out
}

func needsPreview(img image.Image, maxSize int) bool {
	b := img.Bounds()
	return maxSize > 0 && (b.Dx() > maxSize || b.Dy() > maxSize)
}
