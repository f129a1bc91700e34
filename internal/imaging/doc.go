// Package imaging is the image provider for dense feature extraction.
//
// It decodes image files (PNG, JPEG, GIF, WebP) through a thread-safe cache,
// converts them to single-band scalar planes, and supplies the low level
// operations descriptor computers build on: Gaussian pre-smoothing and
// finite difference gradients. It also renders sample locations back onto an
// image for inspection.
//
// # Coordinate System
//
// Plane coordinates are 0-based with (0,0) at the top-left pixel, X
// increasing rightward and Y increasing downward. Conversion from an
// image.Image re-bases the image so its Bounds().Min maps to (0,0).
//
// # Pixel Types
//
// Two plane storages share the Plane interface:
//   - GrayU8: 8-bit luma, produced with disintegration/imaging's grayscale filter
//   - GrayF32: CIE L* lightness scaled to 0-255, produced with go-colorful
//
// Code that consumes planes should accept the Plane interface (or be generic
// over it) rather than switching on the concrete type.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Planes are not synchronized; treat
// a plane as read-only once it has been handed to a sampler.
package imaging
