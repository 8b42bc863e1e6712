package raster

import (
	"fmt"
	"math"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
)

// View reinterprets a source raster onto a target grid whose cell size
// divides the source's and whose origin aligns on the source grid.
// A target cell reads the source cell whose extent contains the target
// cell's center; cells outside the source return the nodata sentinel.
type View[T Value] struct {
	src    *Raster[T]
	grid   grid.Grid
	nodata T
}

// NewView creates a view of src on the target grid
func NewView[T Value](src *Raster[T], target grid.Grid, nodata T) (*View[T], error) {
	if target.DX() > src.grid.DX() || target.DY() > src.grid.DY() {
		return nil, fmt.Errorf("%w: view must be at least as fine as its source", grid.ErrIncompatibleGrids)
	}
	if !target.CompatibleWith(src.grid) {
		return nil, fmt.Errorf("%w: view target is not aligned with its source", grid.ErrIncompatibleGrids)
	}

	return &View[T]{src: src, grid: target, nodata: nodata}, nil
}

// Grid returns the target grid of the view
func (v *View[T]) Grid() grid.Grid { return v.grid }

// Rows returns the number of rows of the view
func (v *View[T]) Rows() int { return v.grid.Rows() }

// Cols returns the number of columns of the view
func (v *View[T]) Cols() int { return v.grid.Cols() }

// XRes returns the cell width of the view
func (v *View[T]) XRes() float64 { return v.grid.DX() }

// YRes returns the cell height of the view
func (v *View[T]) YRes() float64 { return v.grid.DY() }

// At returns the source value backing the view cell (row, col)
func (v *View[T]) At(row, col int) T {
	x := v.grid.XForCol(col)
	y := v.grid.YForRow(row)

	src := v.src.grid
	sc := int(math.Floor((x - src.XMin()) / src.DX()))
	sr := int(math.Floor((src.YMax() - y) / src.DY()))

	if sr < 0 || sr >= v.src.Rows() || sc < 0 || sc >= v.src.Cols() {
		return v.nodata
	}

	return v.src.At(sr, sc)
}

// Materialize copies the view into a raster on the target grid
func (v *View[T]) Materialize() *Raster[T] {
	out := New[T](v.grid)
	out.SetNodata(v.nodata)

	for r := 0; r < v.Rows(); r++ {
		for c := 0; c < v.Cols(); c++ {
			out.Set(r, c, v.At(r, c))
		}
	}

	return out
}
