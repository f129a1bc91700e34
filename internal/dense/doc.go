// Package dense extracts feature descriptors on a regular grid.
//
// A Sampler enumerates every grid center whose square support window lies
// fully inside the image and asks a Computer for one descriptor per center.
// The support window half-width is the computer's canonical radius at the
// configured scale, so shrinking the scale frees border pixels for sampling
// and growing it removes them.
//
// # Grid Layout
//
// For an image of width W and height H, radius r = CanonicalRadius(scale)
// and window side w = 2r:
//
//	numCols = floor((W - w) / periodX)
//	numRows = floor((H - w) / periodY)
//	x_j     = r + floor(j * periodX)   for 0 <= j < numCols
//	y_i     = r + floor(i * periodY)   for 0 <= i < numRows
//
// Images narrower or shorter than w produce no samples. Every center
// satisfies r <= x <= W-r and r <= y <= H-r. Radii above MaxRadius are
// treated as MaxRadius, and a grid with more samples than W*H pixels is
// rejected with ErrTooManySamples instead of being allocated.
//
// # Enumeration Order
//
// Results are row-major: all columns of row 0, then row 1, and so on.
// Locations()[i] is always the center that produced Descriptions()[i],
// including when rows are evaluated concurrently (see WithWorkers).
//
// # Errors
//
// Configure rejects non-positive or non-finite values with ErrInvalidConfig.
// Process rejects nil or empty images with ErrInvalidImage, and sub-pixel
// periods that would exceed one sample per pixel with ErrTooManySamples.
// Errors returned by the Computer are passed through unchanged.
package dense
