package imaging

import (
	"image"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Plane is a single-band scalar image addressed with 0-based pixel
// coordinates. Implementations must tolerate a nil receiver in Width and
// Height, reporting zero dimensions.
type Plane interface {
	Width() int
	Height() int
	At(x, y int) float64
}

// GrayU8 is a single-band image with 8-bit unsigned storage.
type GrayU8 struct {
	W, H int
	Pix  []uint8
}

// NewGrayU8 allocates a zero-filled width x height plane.
func NewGrayU8(width, height int) *GrayU8 {
	return &GrayU8{W: width, H: height, Pix: make([]uint8, width*height)}
}

// Width returns the plane width in pixels.
func (p *GrayU8) Width() int {
	if p == nil {
		return 0
	}
	return p.W
}

// Height returns the plane height in pixels.
func (p *GrayU8) Height() int {
	if p == nil {
		return 0
	}
	return p.H
}

// At returns the pixel value at (x, y). Coordinates are not bounds checked
// beyond the slice access itself.
func (p *GrayU8) At(x, y int) float64 {
	return float64(p.Pix[y*p.W+x])
}

// Set stores v at (x, y), rounding and saturating to the 0-255 range.
func (p *GrayU8) Set(x, y int, v float64) {
	p.Pix[y*p.W+x] = saturateU8(v)
}

// GrayF32 is a single-band image with 32-bit floating point storage.
type GrayF32 struct {
	W, H int
	Pix  []float32
}

// NewGrayF32 allocates a zero-filled width x height plane.
func NewGrayF32(width, height int) *GrayF32 {
	return &GrayF32{W: width, H: height, Pix: make([]float32, width*height)}
}

// Width returns the plane width in pixels.
func (p *GrayF32) Width() int {
	if p == nil {
		return 0
	}
	return p.W
}

// Height returns the plane height in pixels.
func (p *GrayF32) Height() int {
	if p == nil {
		return 0
	}
	return p.H
}

// At returns the pixel value at (x, y).
func (p *GrayF32) At(x, y int) float64 {
	return float64(p.Pix[y*p.W+x])
}

// Set stores v at (x, y).
func (p *GrayF32) Set(x, y int, v float64) {
	p.Pix[y*p.W+x] = float32(v)
}

// ToGrayU8 converts any image to an 8-bit luminance plane.
//
// The conversion uses the grayscale filter from disintegration/imaging, which
// weights channels with the ITU-R BT.601 luma coefficients. The resulting
// plane is re-based so that the image's top-left pixel is (0, 0).
func ToGrayU8(img image.Image) *GrayU8 {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	out := NewGrayU8(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.H; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < out.W; x++ {
			// R, G and B are equal after the grayscale filter
			out.Pix[y*out.W+x] = row[x*4]
		}
	}
	return out
}

// ToGrayF32 converts any image to a floating point lightness plane.
//
// Each pixel is mapped to CIE L* through go-colorful and scaled to the same
// 0-255 range as GrayU8, so descriptor magnitudes are comparable between the
// two storages. Fully transparent pixels map to zero.
func ToGrayF32(img image.Image) *GrayF32 {
	bounds := img.Bounds()
	out := NewGrayF32(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			c, ok := colorful.MakeColor(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			out.Pix[y*out.W+x] = float32(clampFloat(l, 0, 1) * 255)
		}
	}
	return out
}

// FillUniform fills a plane with values drawn uniformly from [lo, hi) using
// the supplied generator. Passing the generator explicitly keeps fixtures
// reproducible.
func FillUniform(p interface {
	Plane
	Set(x, y int, v float64)
}, rng *rand.Rand, lo, hi float64) {
	for y := 0; y < p.Height(); y++ {
		for x := 0; x < p.Width(); x++ {
			p.Set(x, y, lo+rng.Float64()*(hi-lo))
		}
	}
}

func saturateU8(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
