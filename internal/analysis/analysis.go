// Package analysis turns one detection request into a report.
//
// It is the glue between callers (the MCP server, the CLI) and the pure spots
// package: it loads or decodes the image, builds the strategy from request
// thresholds layered over configured defaults, classifies, and optionally
// exports PNG files and inline previews. Presentation rounding happens here and
// nowhere else.
package analysis

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/ironsheep/white-spot-mcp/internal/imaging"
	"github.com/ironsheep/white-spot-mcp/internal/spots"
	"github.com/mitchellh/go-homedir"
)

// Defaults hold the values used when a request leaves a field unset.
type Defaults struct {
	Strategy      spots.Kind
	Box           spots.BoxConfig
	Delta         spots.DeltaConfig
	Marker        string
	OutputDir     string
	AnnotatedName string
	BinaryName    string
	PreviewSize   int
}

// DefaultDefaults returns the built-in defaults: box strategy, stock thresholds,
// red marker, export into the working directory.
func DefaultDefaults() Defaults {
	return Defaults{
		Strategy:      spots.KindBox,
		Box:           spots.DefaultBoxConfig(),
		Delta:         spots.DefaultDeltaConfig(),
		Marker:        "#FF0000",
		OutputDir:     ".",
		AnnotatedName: imaging.DefaultAnnotatedName,
		BinaryName:    imaging.DefaultBinaryName,
		PreviewSize:   512,
	}
}

// Request describes one detection. Pointer fields are optional overrides.
type Request struct {
	// Path of the image file. Ignored when ImageBase64 is set.
	Path string `json:"path,omitempty"`
	// ImageBase64 is an encoded image (PNG, JPEG, ...) sent inline.
	ImageBase64 string `json:"image_base64,omitempty"`

	// Region restricts detection to a rectangle; Quadrant does the same by name
	// (see imaging.Quadrants). At most one may be set.
	Region   *imaging.Region `json:"region,omitempty"`
	Quadrant string          `json:"quadrant,omitempty"`

	Strategy string `json:"strategy,omitempty"`

	LightnessMin *float64 `json:"lightness_min,omitempty"`
	ATolerance   *float64 `json:"a_tolerance,omitempty"`
	BTolerance   *float64 `json:"b_tolerance,omitempty"`

	Reference   *spots.Lab `json:"reference,omitempty"`
	MaxDistance *float64   `json:"max_distance,omitempty"`
	Metric      string     `json:"metric,omitempty"`

	MarkerColor string `json:"marker_color,omitempty"`

	Export        bool   `json:"export,omitempty"`
	OutputDir     string `json:"output_dir,omitempty"`
	AnnotatedName string `json:"annotated_name,omitempty"`
	BinaryName    string `json:"binary_name,omitempty"`

	IncludeImages  bool `json:"include_images,omitempty"`
	PreviewMaxSize *int `json:"preview_max_size,omitempty"`
}

// Report is the presentation form of a classification.
type Report struct {
	Strategy   spots.Kind  `json:"strategy"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Thresholds interface{} `json:"thresholds"`

	// Region is the analysed rectangle when the request narrowed it. Pixel
	// counts, coverage and exported images then refer to the region only.
	Region *imaging.Region `json:"region,omitempty"`

	// CoveragePercent is rounded to two decimals.
	CoveragePercent float64 `json:"coverage_percent"`
	SpotPixels      int     `json:"spot_pixels"`
	TotalPixels     int     `json:"total_pixels"`

	// MeanDelta is rounded to two decimals; delta strategy only.
	MeanDelta *float64 `json:"mean_delta,omitempty"`

	Marker string `json:"marker_color"`

	Export    *imaging.ExportResult `json:"export,omitempty"`
	Annotated *imaging.EncodedImage `json:"annotated_image,omitempty"`
	Binary    *imaging.EncodedImage `json:"binary_image,omitempty"`
}

// Analyzer runs requests against a shared image cache.
type Analyzer struct {
	cache    *imaging.ImageCache
	defaults Defaults
}

// New returns an Analyzer. A nil cache gets a fresh one.
func New(cache *imaging.ImageCache, defaults Defaults) *Analyzer {
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	return &Analyzer{cache: cache, defaults: defaults}
}

// Defaults returns the configured defaults.
func (a *Analyzer) Defaults() Defaults { return a.defaults }

// Cache returns the image cache used for path requests.
func (a *Analyzer) Cache() *imaging.ImageCache { return a.cache }

// Run executes req.
//
// Threshold errors are returned unchanged, so callers can match
// spots.ErrInvalidConfig with errors.Is.
func (a *Analyzer) Run(req *Request) (*Report, error) {
	img, err := a.load(req)
	if err != nil {
		return nil, err
	}

	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	region, err := resolveRegion(req, img.Bounds())
	if err != nil {
		return nil, err
	}
	if region != nil {
		if img, err = imaging.Crop(img, *region); err != nil {
			return nil, err
		}
	}

	strategy, thresholds, err := a.Strategy(req)
	if err != nil {
		return nil, err
	}

	markerHex := firstNonEmpty(req.MarkerColor, a.defaults.Marker, "#FF0000")
	marker, err := imaging.ParseHexColor(markerHex)
	if err != nil {
		return nil, fmt.Errorf("invalid marker color: %w", err)
	}

	res, err := spots.Classify(img, strategy, spots.Options{Marker: &marker})
	if err != nil {
		return nil, err
	}

	report := &Report{
		Strategy:        res.Strategy,
		Width:           width,
		Height:          height,
		Thresholds:      thresholds,
		Region:          region,
		CoveragePercent: round2(res.Coverage),
		SpotPixels:      res.Matched,
		TotalPixels:     res.Total,
		Marker:          imaging.HexColor(marker),
	}
	if res.HasMeanDistance {
		mean := round2(res.MeanDistance)
		report.MeanDelta = &mean
	}

	if req.Export {
		dir, err := homedir.Expand(firstNonEmpty(req.OutputDir, a.defaults.OutputDir, "."))
		if err != nil {
			return nil, fmt.Errorf("invalid output dir: %w", err)
		}
		report.Export, err = imaging.Export(dir,
			firstNonEmpty(req.AnnotatedName, a.defaults.AnnotatedName),
			firstNonEmpty(req.BinaryName, a.defaults.BinaryName),
			res.Overlay, res.Mask.Image())
		if err != nil {
			return nil, err
		}
	}

	if req.IncludeImages {
		size := a.defaults.PreviewSize
		if req.PreviewMaxSize != nil {
			size = *req.PreviewMaxSize
		}
		if report.Annotated, err = imaging.EncodePNG(imaging.PreviewOverlay(res.Overlay, size)); err != nil {
			return nil, err
		}
		if report.Binary, err = imaging.EncodePNG(imaging.PreviewMask(res.Mask.Image(), size)); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// Strategy builds the strategy named by req (or the default) with request
// thresholds layered over the defaults. The second value is the effective
// threshold bundle, for reporting.
func (a *Analyzer) Strategy(req *Request) (spots.Strategy, interface{}, error) {
	kind := a.defaults.Strategy
	if req.Strategy != "" {
		k, err := spots.ParseKind(req.Strategy)
		if err != nil {
			return nil, nil, err
		}
		kind = k
	}

	switch kind {
	case spots.KindDelta:
		cfg := a.defaults.Delta
		if req.Reference != nil {
			cfg.Reference = *req.Reference
		}
		if req.MaxDistance != nil {
			cfg.MaxDistance = *req.MaxDistance
		}
		if req.Metric != "" {
			m, err := spots.ParseMetric(req.Metric)
			if err != nil {
				return nil, nil, err
			}
			cfg.Metric = m
		}
		d, err := spots.NewDelta(cfg)
		if err != nil {
			return nil, nil, err
		}
		return d, d.Config(), nil

	default:
		cfg := a.defaults.Box
		if req.LightnessMin != nil {
			cfg.LightnessMin = *req.LightnessMin
		}
		if req.ATolerance != nil {
			cfg.ATolerance = *req.ATolerance
		}
		if req.BTolerance != nil {
			cfg.BTolerance = *req.BTolerance
		}
		b, err := spots.NewBox(cfg)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Config(), nil
	}
}

func (a *Analyzer) load(req *Request) (*image.NRGBA, error) {
	if req.ImageBase64 != "" {
		data := req.ImageBase64
		// Accept data URLs as sent by browsers.
		if i := strings.Index(data, ";base64,"); i >= 0 && strings.HasPrefix(data, "data:") {
			data = data[i+len(";base64,"):]
		}
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("invalid image_base64: %w", err)
		}
		return imaging.Decode(bytes.NewReader(raw))
	}
	if req.Path == "" {
		return nil, fmt.Errorf("either path or image_base64 is required")
	}
	path, err := homedir.Expand(req.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return a.cache.Load(path)
}

func resolveRegion(req *Request, bounds image.Rectangle) (*imaging.Region, error) {
	switch {
	case req.Region != nil && req.Quadrant != "":
		return nil, fmt.Errorf("region and quadrant are mutually exclusive")
	case req.Region != nil:
		r := *req.Region
		if err := r.Validate(bounds); err != nil {
			return nil, err
		}
		return &r, nil
	case req.Quadrant != "":
		r, err := imaging.NamedRegion(bounds, req.Quadrant)
		if err != nil {
			return nil, err
		}
		return &r, nil
	}
	return nil, nil
}

// round2 rounds to two decimals for display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
