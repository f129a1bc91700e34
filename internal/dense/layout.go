package dense

import (
	"fmt"
	"math"
)

// MaxRadius is the largest support radius Layout accepts. Computers should
// saturate their canonical radius at this value.
const MaxRadius = math.MaxInt32 / 2

// Point is an integer pixel location.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid describes the sample centers for one image size and configuration.
type Grid struct {
	Radius  int     `json:"radius"`
	Side    int     `json:"support_width"`
	NumCols int     `json:"num_cols"`
	NumRows int     `json:"num_rows"`
	PeriodX float64 `json:"period_x"`
	PeriodY float64 `json:"period_y"`
}

// Layout computes the sampling grid of a width x height image for support
// windows of the given radius. Periods must be positive.
//
// A grid with more samples than the image has pixels is rejected with
// ErrTooManySamples; this only happens for periods below one pixel.
func Layout(width, height, radius int, periodX, periodY float64) (Grid, error) {
	if radius > MaxRadius {
		radius = MaxRadius
	}
	side := radius * 2
	g := Grid{
		Radius:  radius,
		Side:    side,
		PeriodX: periodX,
		PeriodY: periodY,
	}
	if width < side || height < side {
		return g, nil
	}

	cols := math.Floor(float64(width-side) / periodX)
	rows := math.Floor(float64(height-side) / periodY)
	limit := float64(width) * float64(height)
	if cols > limit || rows > limit || cols*rows > limit {
		return Grid{}, fmt.Errorf("%w: %.0f x %.0f grid for a %dx%d image (period %vx%v)",
			ErrTooManySamples, cols, rows, width, height, periodX, periodY)
	}
	g.NumCols = int(cols)
	g.NumRows = int(rows)
	return g, nil
}

// Count returns the number of sample centers.
func (g Grid) Count() int {
	return g.NumCols * g.NumRows
}

// Center returns the center of the sample at the given row and column.
func (g Grid) Center(row, col int) Point {
	return Point{
		X: g.Radius + int(math.Floor(float64(col)*g.PeriodX)),
		Y: g.Radius + int(math.Floor(float64(row)*g.PeriodY)),
	}
}

// Centers returns all sample centers in row-major order.
func (g Grid) Centers() []Point {
	points := make([]Point, 0, g.Count())
	for row := 0; row < g.NumRows; row++ {
		for col := 0; col < g.NumCols; col++ {
			points = append(points, g.Center(row, col))
		}
	}
	return points
}
