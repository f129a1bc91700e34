package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
)

// DerivativeKernel selects the finite difference used by Gradient.
type DerivativeKernel int

const (
	// DerivThree is the centered difference (I[x+1] - I[x-1]) / 2.
	DerivThree DerivativeKernel = iota

	// DerivSobel is the 3x3 Sobel operator, normalized by 1/8 so its
	// response to a linear ramp matches DerivThree.
	DerivSobel
)

// Gradient computes the horizontal and vertical image derivatives of p.
//
// Parameters:
//   - p: Source plane. Must have non-zero dimensions.
//   - kernel: The finite difference to use (DerivThree or DerivSobel).
//
// Returns:
//   - gx: Derivative along X (positive when intensity increases rightward).
//   - gy: Derivative along Y (positive when intensity increases downward).
//
// # Border Handling
//
// Pixels outside the plane are replaced by the nearest edge pixel
// (replicated border), so the outermost row and column have one-sided
// responses instead of being left at zero.
func Gradient(p Plane, kernel DerivativeKernel) (gx, gy *GrayF32) {
	width := p.Width()
	height := p.Height()
	gx = NewGrayF32(width, height)
	gy = NewGrayF32(width, height)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var dx, dy float64
			switch kernel {
			case DerivSobel:
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						v := p.At(clamp(x+kx, 0, width-1), clamp(y+ky, 0, height-1))
						dx += v * sobelX[ky+1][kx+1]
						dy += v * sobelY[ky+1][kx+1]
					}
				}
				dx /= 8
				dy /= 8
			default:
				dx = (p.At(clamp(x+1, 0, width-1), y) - p.At(clamp(x-1, 0, width-1), y)) / 2
				dy = (p.At(x, clamp(y+1, 0, height-1)) - p.At(x, clamp(y-1, 0, height-1))) / 2
			}
			gx.Pix[y*width+x] = float32(dx)
			gy.Pix[y*width+x] = float32(dy)
		}
	}
	return gx, gy
}

// Smooth applies a Gaussian blur of the given radius before feature
// extraction. A non-positive radius returns img unchanged.
func Smooth(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	return blur.Gaussian(img, radius)
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
