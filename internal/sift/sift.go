// Package sift implements an upright SIFT-style descriptor for dense sampling.
//
// The descriptor divides a square support window into WidthGrid x WidthGrid
// spatial cells and accumulates Gaussian weighted gradient magnitudes into
// HistogramBins orientation bins per cell, using trilinear interpolation
// across neighbouring cells and bins. The vector is L2 normalized, clipped at
// MaxDescriptorElement and normalized again. Orientation is not estimated:
// dense grids describe every window in the image frame.
//
// With the default configuration descriptors have 4*4*8 = 128 elements and
// the canonical radius at scale 1 is 8 pixels.
package sift

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/image-dense-mcp/internal/dense"
	"github.com/ironsheep/image-dense-mcp/internal/imaging"
)

var (
	// ErrNoImage is returned when descriptors are requested before SetImage.
	ErrNoImage = errors.New("no image set")

	// ErrOutsideImage is returned when a support window crosses the border.
	ErrOutsideImage = errors.New("support window outside image")
)

// Config holds the descriptor geometry.
type Config struct {
	// WidthSubregion is the side of one spatial cell at scale 1, in pixels.
	WidthSubregion int `json:"width_subregion"`

	// WidthGrid is the number of cells along each side of the window.
	WidthGrid int `json:"width_grid"`

	// HistogramBins is the number of orientation bins per cell.
	HistogramBins int `json:"histogram_bins"`

	// WeightingSigmaFraction sets the Gaussian weighting sigma as a fraction
	// of the window side.
	WeightingSigmaFraction float64 `json:"weighting_sigma_fraction"`

	// MaxDescriptorElement caps each element after the first normalization.
	MaxDescriptorElement float64 `json:"max_descriptor_element"`
}

// DefaultConfig returns the classic 4x4x8 layout.
func DefaultConfig() Config {
	return Config{
		WidthSubregion:         4,
		WidthGrid:              4,
		HistogramBins:          8,
		WeightingSigmaFraction: 0.5,
		MaxDescriptorElement:   0.2,
	}
}

// Validate checks that every field is usable.
func (c Config) Validate() error {
	switch {
	case c.WidthSubregion < 1:
		return fmt.Errorf("width_subregion must be at least 1, got %d", c.WidthSubregion)
	case c.WidthGrid < 1:
		return fmt.Errorf("width_grid must be at least 1, got %d", c.WidthGrid)
	case c.HistogramBins < 1:
		return fmt.Errorf("histogram_bins must be at least 1, got %d", c.HistogramBins)
	case !(c.WeightingSigmaFraction > 0):
		return fmt.Errorf("weighting_sigma_fraction must be positive, got %v", c.WeightingSigmaFraction)
	case !(c.MaxDescriptorElement > 0):
		return fmt.Errorf("max_descriptor_element must be positive, got %v", c.MaxDescriptorElement)
	}
	return nil
}

// Describer computes descriptors from the gradients of one image. Once
// SetImage returns it only reads shared state, so ComputeDescriptor may be
// called from several goroutines.
type Describer[P imaging.Plane] struct {
	cfg    Config
	gx, gy *imaging.GrayF32
}

// NewDescriber validates cfg and returns a describer with no image bound.
func NewDescriber[P imaging.Plane](cfg Config) (*Describer[P], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sift configuration: %w", err)
	}
	return &Describer[P]{cfg: cfg}, nil
}

// NewDense builds a dense sampler backed by a SIFT describer.
func NewDense[P imaging.Plane](cfg Config, opts ...dense.Option) (*dense.Sampler[P], error) {
	d, err := NewDescriber[P](cfg)
	if err != nil {
		return nil, err
	}
	return dense.New[P](d, opts...)
}

// SetImage computes the image gradients used by later descriptors.
func (d *Describer[P]) SetImage(img P) error {
	if any(img) == nil || img.Width() <= 0 || img.Height() <= 0 {
		return fmt.Errorf("%w: empty image", ErrNoImage)
	}
	d.gx, d.gy = imaging.Gradient(img, imaging.DerivThree)
	return nil
}

// CanonicalRadius returns the window half-width at the given scale, rounded
// to the nearest pixel, never below 1 and never above dense.MaxRadius.
func (d *Describer[P]) CanonicalRadius(scale float64) int {
	base := float64(d.cfg.WidthGrid*d.cfg.WidthSubregion) / 2
	r := math.Round(base * scale)
	switch {
	case r >= dense.MaxRadius:
		return dense.MaxRadius
	case r < 1:
		return 1
	}
	return int(r)
}

// DescriptorLength returns WidthGrid² * HistogramBins.
func (d *Describer[P]) DescriptorLength() int {
	return d.cfg.WidthGrid * d.cfg.WidthGrid * d.cfg.HistogramBins
}

// ComputeDescriptor describes the window of side 2*CanonicalRadius(scale)
// centered on (x, y). The window covers pixels [x-r, x+r) x [y-r, y+r).
func (d *Describer[P]) ComputeDescriptor(x, y int, scale float64) (dense.Descriptor, error) {
	if d.gx == nil {
		return nil, ErrNoImage
	}
	r := d.CanonicalRadius(scale)
	width, height := d.gx.Width(), d.gx.Height()
	if x-r < 0 || y-r < 0 || x+r > width || y+r > height {
		return nil, fmt.Errorf("%w: center (%d,%d) radius %d in %dx%d image", ErrOutsideImage, x, y, r, width, height)
	}

	grid := d.cfg.WidthGrid
	bins := d.cfg.HistogramBins
	side := float64(2 * r)
	cell := side / float64(grid)
	sigma := d.cfg.WeightingSigmaFraction * side
	gaussDenom := 2 * sigma * sigma
	binWidth := 2 * math.Pi / float64(bins)

	desc := make(dense.Descriptor, d.DescriptorLength())

	for py := y - r; py < y+r; py++ {
		for px := x - r; px < x+r; px++ {
			dx := d.gx.At(px, py)
			dy := d.gy.At(px, py)
			mag := math.Hypot(dx, dy)
			if mag == 0 {
				continue
			}

			// Pixel center relative to the window center.
			ox := float64(px-x) + 0.5
			oy := float64(py-y) + 0.5
			weight := mag * math.Exp(-(ox*ox+oy*oy)/gaussDenom)

			// Cell coordinates with cell centers on integers.
			cx := (ox+float64(r))/cell - 0.5
			cy := (oy+float64(r))/cell - 0.5
			theta := math.Atan2(dy, dx)
			if theta < 0 {
				theta += 2 * math.Pi
			}
			ob := theta / binWidth

			x0, y0, o0 := math.Floor(cx), math.Floor(cy), math.Floor(ob)
			fx, fy, fo := cx-x0, cy-y0, ob-o0

			for iy := 0; iy < 2; iy++ {
				row := int(y0) + iy
				if row < 0 || row >= grid {
					continue
				}
				wy := 1 - fy
				if iy == 1 {
					wy = fy
				}
				for ix := 0; ix < 2; ix++ {
					col := int(x0) + ix
					if col < 0 || col >= grid {
						continue
					}
					wx := 1 - fx
					if ix == 1 {
						wx = fx
					}
					base := (row*grid + col) * bins
					for io := 0; io < 2; io++ {
						wo := 1 - fo
						if io == 1 {
							wo = fo
						}
						bin := (int(o0) + io) % bins
						desc[base+bin] += weight * wx * wy * wo
					}
				}
			}
		}
	}

	normalize(desc, d.cfg.MaxDescriptorElement)
	return desc, nil
}

// normalize scales desc to unit length, clips large elements, then rescales.
// An all-zero descriptor is left as is.
func normalize(desc dense.Descriptor, maxElement float64) {
	n := floats.Norm(desc, 2)
	if n == 0 {
		return
	}
	floats.Scale(1/n, desc)
	for i, v := range desc {
		if v > maxElement {
			desc[i] = maxElement
		}
	}
	n = floats.Norm(desc, 2)
	floats.Scale(1/n, desc)
}
