package dense

import (
	"errors"
	"fmt"
	"log"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-dense-mcp/internal/imaging"
)

var (
	// ErrInvalidConfig is returned by Configure for non-positive or
	// non-finite scale and period values.
	ErrInvalidConfig = errors.New("invalid sampling configuration")

	// ErrInvalidImage is returned by Process for nil or empty images.
	ErrInvalidImage = errors.New("invalid image")

	// ErrTooManySamples is returned when the periods are so small that the
	// grid would hold more samples than the image has pixels.
	ErrTooManySamples = errors.New("too many samples")
)

// Descriptor is a fixed-length feature vector.
type Descriptor []float64

// Computer computes descriptors around integer centers of one image.
//
// SetImage is called once at the start of every Process call. After it
// returns, CanonicalRadius and ComputeDescriptor must not depend on any other
// mutable state; computers used with WithWorkers must additionally be safe
// for concurrent ComputeDescriptor calls.
type Computer[P imaging.Plane] interface {
	// SetImage binds the image subsequent descriptors are computed from.
	SetImage(img P) error

	// CanonicalRadius is the half-width of the square support window at
	// the given scale. It scales linearly with scale.
	CanonicalRadius(scale float64) int

	// DescriptorLength is the number of elements in every descriptor.
	DescriptorLength() int

	// ComputeDescriptor describes the window centered on (x, y).
	ComputeDescriptor(x, y int, scale float64) (Descriptor, error)
}

// Config holds the spatial sampling parameters.
type Config struct {
	// Scale multiplies the computer's support radius.
	Scale float64 `json:"scale"`

	// PeriodX is the horizontal distance between centers, in pixels.
	PeriodX float64 `json:"period_x"`

	// PeriodY is the vertical distance between centers, in pixels.
	PeriodY float64 `json:"period_y"`
}

// DefaultConfig returns scale 1 with an 8 pixel grid.
func DefaultConfig() Config {
	return Config{Scale: 1, PeriodX: 8, PeriodY: 8}
}

// Validate reports whether every field is positive and finite.
func (c Config) Validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%w: %s must be positive and finite, got %v", ErrInvalidConfig, name, v)
		}
		return nil
	}
	if err := check("scale", c.Scale); err != nil {
		return err
	}
	if err := check("period_x", c.PeriodX); err != nil {
		return err
	}
	return check("period_y", c.PeriodY)
}

// Result is the output of one Process call. Locations[i] is the center used
// to compute Descriptors[i].
type Result struct {
	Grid
	Locations   []Point
	Descriptors []Descriptor
}

// Option configures a Sampler.
type Option func(*options)

type options struct {
	workers int
	logger  *log.Logger
}

// WithWorkers evaluates up to n grid rows concurrently. Values below 2 keep
// evaluation on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger enables debug logging of each processing pass.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Sampler computes descriptors on a dense grid. It keeps the last
// configuration and the last result; it is not safe for concurrent use.
type Sampler[P imaging.Plane] struct {
	computer Computer[P]
	config   Config
	opts     options
	result   Result
}

// New creates a sampler around computer using DefaultConfig.
func New[P imaging.Plane](computer Computer[P], opts ...Option) (*Sampler[P], error) {
	if computer == nil {
		return nil, errors.New("descriptor computer must not be nil")
	}
	s := &Sampler[P]{
		computer: computer,
		config:   DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s, nil
}

// Configure sets the scale and grid periods used by the next Process call.
// An invalid configuration is rejected and the previous one is kept.
func (s *Sampler[P]) Configure(scale, periodX, periodY float64) error {
	c := Config{Scale: scale, PeriodX: periodX, PeriodY: periodY}
	if err := c.Validate(); err != nil {
		return err
	}
	s.config = c
	return nil
}

// Config returns the active configuration.
func (s *Sampler[P]) Config() Config {
	return s.config
}

// DescriptorLength returns the length of every produced descriptor.
func (s *Sampler[P]) DescriptorLength() int {
	return s.computer.DescriptorLength()
}

// Layout returns the grid Process would use for a width x height image.
func (s *Sampler[P]) Layout(width, height int) (Grid, error) {
	r := s.computer.CanonicalRadius(s.config.Scale)
	return Layout(width, height, r, s.config.PeriodX, s.config.PeriodY)
}

// Process samples img and replaces the stored result. If the computer fails
// its error is returned as is and the previous result is kept.
func (s *Sampler[P]) Process(img P) error {
	if any(img) == nil || img.Width() <= 0 || img.Height() <= 0 {
		return fmt.Errorf("%w: image must be non-nil with positive dimensions", ErrInvalidImage)
	}

	grid, err := s.Layout(img.Width(), img.Height())
	if err != nil {
		return err
	}

	if err := s.computer.SetImage(img); err != nil {
		return err
	}
	locations := grid.Centers()
	descriptors := make([]Descriptor, len(locations))

	if s.opts.workers > 1 && grid.NumRows > 1 {
		err = s.describeRowsParallel(grid, locations, descriptors)
	} else {
		err = s.describeRange(locations, descriptors)
	}
	if err != nil {
		return err
	}

	if s.opts.logger != nil {
		s.opts.logger.Printf("dense: %dx%d image, scale=%v radius=%d grid=%dx%d samples=%d",
			img.Width(), img.Height(), s.config.Scale, grid.Radius, grid.NumCols, grid.NumRows, len(locations))
	}

	s.result = Result{
		Grid:        grid,
		Locations:   locations,
		Descriptors: descriptors,
	}
	return nil
}

func (s *Sampler[P]) describeRange(locations []Point, out []Descriptor) error {
	for i, p := range locations {
		d, err := s.computer.ComputeDescriptor(p.X, p.Y, s.config.Scale)
		if err != nil {
			return err
		}
		out[i] = d
	}
	return nil
}

// describeRowsParallel fans rows out to at most opts.workers goroutines.
// Each row writes only to its own slice range, so the canonical order is
// kept without reassembly.
func (s *Sampler[P]) describeRowsParallel(grid Grid, locations []Point, out []Descriptor) error {
	var g errgroup.Group
	g.SetLimit(s.opts.workers)
	for row := 0; row < grid.NumRows; row++ {
		lo := row * grid.NumCols
		hi := lo + grid.NumCols
		g.Go(func() error {
			return s.describeRange(locations[lo:hi], out[lo:hi])
		})
	}
	return g.Wait()
}

// Locations returns the centers of the last successful Process call in
// row-major order. The slice must not be modified.
func (s *Sampler[P]) Locations() []Point {
	return s.result.Locations
}

// Descriptions returns the descriptors of the last successful Process call,
// parallel to Locations. The slice must not be modified.
func (s *Sampler[P]) Descriptions() []Descriptor {
	return s.result.Descriptors
}

// Result returns the full output of the last successful Process call.
func (s *Sampler[P]) Result() Result {
	return s.result
}
