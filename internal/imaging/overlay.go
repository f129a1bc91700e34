package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// SampleOverlayResult contains the image with dense sample locations drawn on it.
type SampleOverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	SampleCount int    `json:"sample_count"`
	Radius      int    `json:"radius"`
}

// SampleOverlay draws sample centers, and optionally their square support
// windows, on a copy of img.
//
// Centers are plane coordinates, i.e. relative to the image's top-left pixel.
// Each center is marked with a small cross; when showWindows is set the
// outline of the [x-radius, x+radius) x [y-radius, y+radius) window is drawn
// as well. An unparseable markColorHex falls back to red.
func SampleOverlay(img image.Image, centers []image.Point, radius int, showWindows bool, markColorHex string) (*SampleOverlayResult, error) {
	markColor := color.NRGBA{255, 0, 0, 255}
	if c, err := colorful.Hex(markColorHex); err == nil {
		r, g, b := c.RGB255()
		markColor = color.NRGBA{r, g, b, 255}
	}

	result := imaging.Clone(img)
	bounds := result.Bounds()

	set := func(x, y int) {
		p := image.Pt(x, y).Add(bounds.Min)
		if p.In(bounds) {
			result.SetNRGBA(p.X, p.Y, markColor)
		}
	}

	for _, c := range centers {
		if showWindows && radius > 0 {
			x0, y0 := c.X-radius, c.Y-radius
			x1, y1 := c.X+radius-1, c.Y+radius-1
			for x := x0; x <= x1; x++ {
				set(x, y0)
				set(x, y1)
			}
			for y := y0; y <= y1; y++ {
				set(x0, y)
				set(x1, y)
			}
		}
		for d := -1; d <= 1; d++ {
			set(c.X+d, c.Y)
			set(c.X, c.Y+d)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode overlay image: %w", err)
	}

	return &SampleOverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		SampleCount: len(centers),
		Radius:      radius,
	}, nil
}
