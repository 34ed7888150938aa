// Package spots classifies near-white pixel regions ("white spots") in an image.
//
// The package is a pure, stateless pipeline:
//
//	RasterImage -> LabImage -> Mask -> (Overlay, Coverage[, MeanDistance])
//
// A decoded 8-bit RGB raster is converted to CIE L*a*b* (sRGB, D65 white), each
// pixel is tested by a Strategy, and the resulting Mask is aggregated into a
// recoloured overlay and a coverage percentage.
//
// # Strategies
//
// Two strategies share the same interface:
//   - Box: L >= LightnessMin, |a| <= ATolerance, |b| <= BTolerance
//     (defaults 90, 15, 15).
//   - Delta: distance to a reference white below MaxDistance, strictly
//     (defaults {100, 0, 0} and 25). Delta also reports the mean distance of the
//     matched pixels.
//
// The default thresholds were tuned by eye on sample photographs. They are kept
// as configurable defaults, not as calibrated colorimetric limits.
//
// # Concurrency
//
// Conversion and detection run over rows in parallel. Per-row partial results
// are reduced in row order, so every call returns bit-identical results for the
// same input regardless of GOMAXPROCS. Inputs are never mutated and no state is
// shared between calls.
//
// # Errors
//
// Invalid thresholds are rejected by NewBox and NewDelta with ErrInvalidConfig.
// Aggregating a mask against a raster of a different shape fails with
// ErrShapeMismatch. Nothing in this package logs or retries; errors are returned
// to the caller as-is.
package spots
