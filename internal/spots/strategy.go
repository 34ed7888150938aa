package spots

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jkl1337/go-chromath"
	"github.com/jkl1337/go-chromath/deltae"
)

var (
	// ErrInvalidConfig is returned when a threshold bundle cannot produce a
	// meaningful mask (negative tolerances, non-positive distance, NaN).
	ErrInvalidConfig = errors.New("invalid threshold config")

	// ErrShapeMismatch is returned when a mask and an image disagree on size.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// Kind names a classification strategy.
type Kind string

const (
	KindBox   Kind = "box"
	KindDelta Kind = "delta"
)

// ParseKind maps a case-insensitive strategy name to its Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindBox:
		return KindBox, nil
	case KindDelta:
		return KindDelta, nil
	default:
		return "", fmt.Errorf("unknown strategy: %q (want %q or %q)", s, KindBox, KindDelta)
	}
}

// Strategy decides whether a single Lab colour is a white spot.
//
// Match must be a pure function of its argument. The returned distance is only
// meaningful when MeasuresDistance reports true.
type Strategy interface {
	Kind() Kind
	Match(c Lab) (matched bool, distance float64)
	MeasuresDistance() bool
}

// BoxConfig bounds each Lab channel independently.
type BoxConfig struct {
	LightnessMin float64 `json:"lightness_min"`
	ATolerance   float64 `json:"a_tolerance"`
	BTolerance   float64 `json:"b_tolerance"`
}

// DefaultBoxConfig returns the thresholds used by the box detector: L >= 90,
// |a| <= 15, |b| <= 15.
func DefaultBoxConfig() BoxConfig {
	return BoxConfig{LightnessMin: 90, ATolerance: 15, BTolerance: 15}
}

// Box is the axis-aligned Lab threshold strategy.
type Box struct {
	cfg BoxConfig
}

// NewBox validates cfg and returns a Box strategy.
func NewBox(cfg BoxConfig) (*Box, error) {
	if math.IsNaN(cfg.LightnessMin) || math.IsNaN(cfg.ATolerance) || math.IsNaN(cfg.BTolerance) {
		return nil, fmt.Errorf("%w: box thresholds must be numbers", ErrInvalidConfig)
	}
	if cfg.ATolerance < 0 {
		return nil, fmt.Errorf("%w: a tolerance %g is negative", ErrInvalidConfig, cfg.ATolerance)
	}
	if cfg.BTolerance < 0 {
		return nil, fmt.Errorf("%w: b tolerance %g is negative", ErrInvalidConfig, cfg.BTolerance)
	}
	return &Box{cfg: cfg}, nil
}

// Config returns the thresholds the strategy was built with.
func (b *Box) Config() BoxConfig { return b.cfg }

func (b *Box) Kind() Kind { return KindBox }

func (b *Box) MeasuresDistance() bool { return false }

func (b *Box) Match(c Lab) (bool, float64) {
	return c.L >= b.cfg.LightnessMin &&
		math.Abs(c.A) <= b.cfg.ATolerance &&
		math.Abs(c.B) <= b.cfg.BTolerance, 0
}

// Metric selects how Delta measures colour difference.
type Metric string

const (
	// MetricEuclidean is the straight-line Lab distance (CIE76).
	MetricEuclidean Metric = "euclidean"
	// MetricCIEDE2000 is the CIEDE2000 colour difference.
	MetricCIEDE2000 Metric = "ciede2000"
)

// ParseMetric maps a case-insensitive metric name to its Metric. An empty
// string selects MetricEuclidean.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "", MetricEuclidean, "cie76":
		return MetricEuclidean, nil
	case MetricCIEDE2000, "de2000":
		return MetricCIEDE2000, nil
	default:
		return "", fmt.Errorf("unknown metric: %q", s)
	}
}

// DeltaConfig matches pixels close to a reference colour.
type DeltaConfig struct {
	Reference   Lab     `json:"reference"`
	MaxDistance float64 `json:"max_distance"`
	Metric      Metric  `json:"metric"`
}

// DefaultDeltaConfig returns the delta detector defaults: reference {100,0,0},
// max distance 25, Euclidean metric.
func DefaultDeltaConfig() DeltaConfig {
	return DeltaConfig{Reference: White, MaxDistance: 25, Metric: MetricEuclidean}
}

// Delta is the distance-to-reference strategy.
type Delta struct {
	cfg DeltaConfig
	ref chromath.Lab
}

// NewDelta validates cfg and returns a Delta strategy. An empty Metric means
// MetricEuclidean.
func NewDelta(cfg DeltaConfig) (*Delta, error) {
	if math.IsNaN(cfg.MaxDistance) || cfg.MaxDistance <= 0 {
		return nil, fmt.Errorf("%w: max distance %g must be positive", ErrInvalidConfig, cfg.MaxDistance)
	}
	r := cfg.Reference
	if math.IsNaN(r.L) || math.IsNaN(r.A) || math.IsNaN(r.B) {
		return nil, fmt.Errorf("%w: reference colour must be numbers", ErrInvalidConfig)
	}
	if cfg.Metric == "" {
		cfg.Metric = MetricEuclidean
	}
	if cfg.Metric != MetricEuclidean && cfg.Metric != MetricCIEDE2000 {
		return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidConfig, cfg.Metric)
	}
	return &Delta{cfg: cfg, ref: chromath.Lab{r.L, r.A, r.B}}, nil
}

// Config returns the thresholds the strategy was built with.
func (d *Delta) Config() DeltaConfig { return d.cfg }

func (d *Delta) Kind() Kind { return KindDelta }

func (d *Delta) MeasuresDistance() bool { return true }

// Distance returns the configured metric between c and the reference.
func (d *Delta) Distance(c Lab) float64 {
	if d.cfg.Metric == MetricCIEDE2000 {
		return deltae.CIE2000(d.ref, chromath.Lab{c.L, c.A, c.B}, &deltae.KLChDefault)
	}
	dl := c.L - d.cfg.Reference.L
	da := c.A - d.cfg.Reference.A
	db := c.B - d.cfg.Reference.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// Match reports distance < MaxDistance. A pixel exactly at MaxDistance is not
// a match.
func (d *Delta) Match(c Lab) (bool, float64) {
	dist := d.Distance(c)
	return dist < d.cfg.MaxDistance, dist
}
