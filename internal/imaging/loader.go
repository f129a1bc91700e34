package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// PixelType names the storage used for a decoded plane.
type PixelType string

const (
	// PixelU8 stores 8-bit luma (see ToGrayU8).
	PixelU8 PixelType = "u8"

	// PixelF32 stores floating point lightness (see ToGrayF32).
	PixelF32 PixelType = "f32"
)

// ParsePixelType maps a user supplied name to a PixelType. The empty string
// selects PixelU8.
func ParsePixelType(name string) (PixelType, error) {
	switch strings.ToLower(name) {
	case "", "u8", "uint8":
		return PixelU8, nil
	case "f32", "float32":
		return PixelF32, nil
	default:
		return "", fmt.Errorf("unknown pixel type %q (want u8 or f32)", name)
	}
}

// planeKey identifies a preprocessed plane derived from a cached image.
type planeKey struct {
	path       string
	pixelType  PixelType
	blurRadius float64
}

// ImageCache provides thread-safe caching of decoded images and of the
// scalar planes derived from them, so that repeated sampling requests on the
// same file skip both disk I/O and grayscale conversion.
//
// Entries are keyed by the exact path string. Different spellings of the
// same file (relative vs absolute) produce separate entries.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	plane, err := cache.LoadPlane("/path/to/image.png", imaging.PixelU8, 2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/path/to/image.png") // drops the image and its planes
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
	planes map[planeKey]Plane
}

// NewImageCache creates an empty cache ready for concurrent use.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
		planes: make(map[planeKey]Plane),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
// PNG, JPEG, GIF and WebP are supported.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadPlane returns the image at path smoothed with a Gaussian of
// blurRadius (see Smooth) and converted to the requested pixel type.
//
// The concrete type of the returned plane is *GrayU8 for PixelU8 and
// *GrayF32 for PixelF32.
func (c *ImageCache) LoadPlane(path string, pixelType PixelType, blurRadius float64) (Plane, error) {
	if blurRadius < 0 {
		blurRadius = 0
	}
	key := planeKey{path: path, pixelType: pixelType, blurRadius: blurRadius}

	c.mu.RLock()
	if p, ok := c.planes[key]; ok {
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}

	p, err := ConvertPlane(Smooth(img, blurRadius), pixelType)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.planes[key] = p
	c.mu.Unlock()

	return p, nil
}

// ConvertPlane converts img to a plane of the given pixel type.
func ConvertPlane(img image.Image, pixelType PixelType) (Plane, error) {
	switch pixelType {
	case PixelU8:
		return ToGrayU8(img), nil
	case PixelF32:
		return ToGrayF32(img), nil
	default:
		return nil, fmt.Errorf("unsupported pixel type %q", pixelType)
	}
}

// Clear removes every cached image and plane.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.planes = make(map[planeKey]Plane)
	c.mu.Unlock()
}

// Evict removes the image cached for path together with all planes derived
// from it. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	for k := range c.planes {
		if k.path == path {
			delete(c.planes, k)
		}
	}
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif",
	// "webp", or "unknown".
	Format string `json:"format"`

	// ColorDepth is "16-bit" for 16-bit-per-channel image types, else "8-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha reports whether the decoded image type carries alpha.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads the image at path into the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".webp":
		format = "webp"
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the size of the image at path, loading it into the
// cache if needed.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
