// Package raster provides dense in-memory rasters tagged with a grid
// extent, and read-only views that reinterpret a raster onto a finer or
// offset grid.
package raster

import (
	"math"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
)

// Value is the set of cell types a raster can hold
type Value interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Raster is a dense 2-D array of cell values on a regular grid.
// Cells are indexed (row, col) with row 0 on top.
type Raster[T Value] struct {
	grid      grid.Grid
	data      []T
	nodata    T
	hasNodata bool
}

// New creates a zero-filled raster on the given grid
func New[T Value](g grid.Grid) *Raster[T] {
	return &Raster[T]{
		grid: g,
		data: make([]T, g.Size()),
	}
}

// Grid returns the grid the raster lives on
func (r *Raster[T]) Grid() grid.Grid { return r.grid }

// Rows returns the number of rows
func (r *Raster[T]) Rows() int { return r.grid.Rows() }

// Cols returns the number of columns
func (r *Raster[T]) Cols() int { return r.grid.Cols() }

// XRes returns the cell width
func (r *Raster[T]) XRes() float64 { return r.grid.DX() }

// YRes returns the cell height
func (r *Raster[T]) YRes() float64 { return r.grid.DY() }

// At returns the value of the cell (row, col).
// It will panic if row or col are out of bounds for the grid.
func (r *Raster[T]) At(row, col int) T {
	return r.data[row*r.grid.Cols()+col]
}

// Set stores a value in the cell (row, col).
// It will panic if row or col are out of bounds for the grid.
func (r *Raster[T]) Set(row, col int, v T) {
	r.data[row*r.grid.Cols()+col] = v
}

// SetNodata designates a sentinel value marking cells with no data
func (r *Raster[T]) SetNodata(v T) {
	r.nodata = v
	r.hasNodata = true
}

// Nodata returns the nodata sentinel, if one is set
func (r *Raster[T]) Nodata() (T, bool) {
	return r.nodata, r.hasNodata
}

// IsNodata reports whether v is the nodata sentinel or NaN
func (r *Raster[T]) IsNodata(v T) bool {
	if math.IsNaN(float64(v)) {
		return true
	}

	return r.hasNodata && v == r.nodata
}

// Equal reports whether both rasters have the same grid and element-wise
// equal values
func (r *Raster[T]) Equal(other *Raster[T]) bool {
	if !r.grid.Equal(other.grid) {
		return false
	}

	for i := range r.data {
		if r.data[i] != other.data[i] {
			return false
		}
	}

	return true
}
