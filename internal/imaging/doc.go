// Package imaging provides the image I/O around spot detection: decoding and
// caching rasters, cropping regions, parsing marker colors, exporting the
// annotated and binary PNG files, and encoding inline previews.
//
// # Rasters
//
// Every image leaves this package as an *image.NRGBA with EXIF orientation
// applied and alpha forced to 255. The color channels are kept as stored;
// transparent pixels are not composited onto a background. Cached rasters are
// shared between callers and must be treated as read-only.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, relative
// to the raster's Bounds().Min. For regions, (x1,y1) is inclusive and (x2,y2)
// exclusive.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The remaining functions are
// stateless and never modify their inputs.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Regions outside image bounds or with zero area
//   - Malformed hex colors
//   - File I/O errors during loading or export
//   - Encoding errors during image output
package imaging
