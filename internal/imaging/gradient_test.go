package imaging

import (
	"image/color"
	"math"
	"testing"
)

// createRampPlane creates a plane whose value is ax*x + ay*y
func createRampPlane(width, height int, ax, ay float64) *GrayF32 {
	p := NewGrayF32(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p.Set(x, y, ax*float64(x)+ay*float64(y))
		}
	}
	return p
}

func TestGradient_Interior(t *testing.T) {
	p := createRampPlane(10, 8, 2, 3)

	tests := []struct {
		name   string
		kernel DerivativeKernel
	}{
		{"three", DerivThree},
		{"sobel", DerivSobel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gx, gy := Gradient(p, tt.kernel)
			for y := 1; y < 7; y++ {
				for x := 1; x < 9; x++ {
					if math.Abs(gx.At(x, y)-2) > 1e-4 {
						t.Fatalf("gx(%d,%d): got %v, want 2", x, y, gx.At(x, y))
					}
					if math.Abs(gy.At(x, y)-3) > 1e-4 {
						t.Fatalf("gy(%d,%d): got %v, want 3", x, y, gy.At(x, y))
					}
				}
			}
		})
	}
}

func TestGradient_ReplicatedBorder(t *testing.T) {
	p := createRampPlane(5, 5, 2, 0)

	gx, _ := Gradient(p, DerivThree)
	// (p[1] - p[0]) / 2 with the left neighbour replicated
	if got := gx.At(0, 2); math.Abs(got-1) > 1e-6 {
		t.Errorf("left border gx: got %v, want 1", got)
	}
	if got := gx.At(4, 2); math.Abs(got-1) > 1e-6 {
		t.Errorf("right border gx: got %v, want 1", got)
	}
}

func TestSmooth(t *testing.T) {
	img := createInMemoryImage(30, 30, color.RGBA{128, 128, 128, 255})

	if Smooth(img, 0) != img {
		t.Error("Smooth with zero radius should return the input")
	}

	blurred := Smooth(img, 2)
	if b := blurred.Bounds(); b.Dx() != 30 || b.Dy() != 30 {
		t.Fatalf("dimensions: got %dx%d, want 30x30", b.Dx(), b.Dy())
	}
	r, _, _, _ := blurred.At(15, 15).RGBA()
	if v := int(r >> 8); v < 127 || v > 129 {
		t.Errorf("uniform interior changed by blur: got %d, want ~128", v)
	}
}
