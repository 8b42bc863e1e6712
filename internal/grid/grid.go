package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfExtent is returned for coordinates outside a bounded grid.
var ErrOutOfExtent = errors.New("coordinate out of grid extent")

// ErrIncompatibleGrids is returned when an operation requires two grids
// to share a common refinement but they don't.
var ErrIncompatibleGrids = errors.New("grids are not compatible")

// relative tolerance used to absorb floating point error when comparing
// cell sizes and origin offsets of two grids
const compatTol = 1e-6

// Grid describes an axis-aligned regular grid by its extent and cell size.
// Row 0 is at the top (largest y), column 0 at the left (smallest x).
// Cell (r, c) covers [xmin+c*dx, xmin+(c+1)*dx] x [ymax-(r+1)*dy, ymax-r*dy].
type Grid struct {
	extent Box
	dx, dy float64
}

// New creates a grid over the given extent with cell size dx, dy.
func New(extent Box, dx, dy float64) Grid {
	if dx <= 0 || dy <= 0 {
		panic(fmt.Sprintf("invalid cell size (%g, %g)", dx, dy))
	}

	return Grid{extent: extent, dx: dx, dy: dy}
}

// Extent returns the extent of the grid
func (g Grid) Extent() Box { return g.extent }

// XMin returns the smallest x coordinate of the grid extent
func (g Grid) XMin() float64 { return g.extent.XMin }

// XMax returns the largest x coordinate of the grid extent
func (g Grid) XMax() float64 { return g.extent.XMax }

// YMin returns the smallest y coordinate of the grid extent
func (g Grid) YMin() float64 { return g.extent.YMin }

// YMax returns the largest y coordinate of the grid extent
func (g Grid) YMax() float64 { return g.extent.YMax }

// DX returns the cell width
func (g Grid) DX() float64 { return g.dx }

// DY returns the cell height
func (g Grid) DY() float64 { return g.dy }

// Rows returns the number of rows of the grid. Rounding half away from
// zero absorbs floating point error in the extent.
func (g Grid) Rows() int {
	return int(math.Round(g.extent.Height() / g.dy))
}

// Cols returns the number of columns of the grid
func (g Grid) Cols() int {
	return int(math.Round(g.extent.Width() / g.dx))
}

// Size returns rows*cols
func (g Grid) Size() int {
	return g.Rows() * g.Cols()
}

// Equal reports whether both grids have the same extent and cell size
func (g Grid) Equal(other Grid) bool {
	return g.extent == other.extent && g.dx == other.dx && g.dy == other.dy
}

// GetRow returns the index of the row containing the y coordinate.
// A coordinate exactly on the line between two rows belongs to the lower
// row, except for ymin which belongs to the last row.
func (g Grid) GetRow(y float64) (int, error) {
	if y < g.extent.YMin || y > g.extent.YMax {
		return 0, fmt.Errorf("%w: y=%g not in [%g, %g]", ErrOutOfExtent, y, g.extent.YMin, g.extent.YMax)
	}

	return clamp(int(math.Floor((g.extent.YMax-y)/g.dy)), 0, g.Rows()-1), nil
}

// GetColumn returns the index of the column containing the x coordinate.
// A coordinate exactly on the line between two columns belongs to the
// right column, except for xmax which belongs to the last column.
func (g Grid) GetColumn(x float64) (int, error) {
	if x < g.extent.XMin || x > g.extent.XMax {
		return 0, fmt.Errorf("%w: x=%g not in [%g, %g]", ErrOutOfExtent, x, g.extent.XMin, g.extent.XMax)
	}

	return clamp(int(math.Floor((x-g.extent.XMin)/g.dx)), 0, g.Cols()-1), nil
}

// XForCol returns the x coordinate of the center of the cells in column c
func (g Grid) XForCol(c int) float64 {
	return g.extent.XMin + (float64(c)+0.5)*g.dx
}

// YForRow returns the y coordinate of the center of the cells in row r
func (g Grid) YForRow(r int) float64 {
	return g.extent.YMax - (float64(r)+0.5)*g.dy
}

// CellBox returns the extent of the cell (r, c)
func (g Grid) CellBox(r, c int) Box {
	return Box{
		XMin: g.extent.XMin + float64(c)*g.dx,
		YMin: g.extent.YMax - float64(r+1)*g.dy,
		XMax: g.extent.XMin + float64(c+1)*g.dx,
		YMax: g.extent.YMax - float64(r)*g.dy,
	}
}

// ShrinkToFit returns a grid with the same cell size whose extent is the
// smallest box snapped to the grid lines of g that contains b. Shrinking
// an already shrunk grid to the same box has no effect.
func (g Grid) ShrinkToFit(b Box) (Grid, error) {
	if b.XMin < g.extent.XMin || b.YMin < g.extent.YMin || b.XMax > g.extent.XMax || b.YMax > g.extent.YMax {
		return Grid{}, fmt.Errorf("%w: box %v exceeds grid extent %v", ErrOutOfExtent, b, g.extent)
	}

	xmin := g.extent.XMin + math.Floor((b.XMin-g.extent.XMin)/g.dx)*g.dx
	ymax := g.extent.YMax - math.Floor((g.extent.YMax-b.YMax)/g.dy)*g.dy

	// floating point rounding can snap to the grid line just inside the
	// box; widen by one cell so the box stays contained
	if xmin > b.XMin {
		xmin -= g.dx
	}
	if ymax < b.YMax {
		ymax += g.dy
	}

	cols := int(math.Ceil((b.XMax - xmin) / g.dx))
	rows := int(math.Ceil((ymax - b.YMin) / g.dy))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if xmin+float64(cols)*g.dx < b.XMax {
		cols++
	}
	if ymax-float64(rows)*g.dy > b.YMin {
		rows++
	}

	extent := Box{
		XMin: xmin,
		YMin: ymax - float64(rows)*g.dy,
		XMax: xmin + float64(cols)*g.dx,
		YMax: ymax,
	}

	return Grid{extent: extent, dx: g.dx, dy: g.dy}, nil
}

// CompatibleWith reports whether the cell size of one grid is an integer
// multiple of the other's in both axes and the grid origins are aligned
// on the finer cell size.
func (g Grid) CompatibleWith(other Grid) bool {
	if !integerRatio(g.dx, other.dx) || !integerRatio(g.dy, other.dy) {
		return false
	}

	fdx := min(g.dx, other.dx)
	fdy := min(g.dy, other.dy)

	return integerMultiple(g.extent.XMin-other.extent.XMin, fdx) &&
		integerMultiple(g.extent.YMin-other.extent.YMin, fdy)
}

// CommonGrid returns the grid with the finer cell size in each axis whose
// extent is the union of both extents.
func (g Grid) CommonGrid(other Grid) (Grid, error) {
	if !g.CompatibleWith(other) {
		return Grid{}, fmt.Errorf("%w: %v@(%g, %g) vs %v@(%g, %g)",
			ErrIncompatibleGrids, g.extent, g.dx, g.dy, other.extent, other.dx, other.dy)
	}

	extent := Box{
		XMin: min(g.extent.XMin, other.extent.XMin),
		YMin: min(g.extent.YMin, other.extent.YMin),
		XMax: max(g.extent.XMax, other.extent.XMax),
		YMax: max(g.extent.YMax, other.extent.YMax),
	}

	return Grid{extent: extent, dx: min(g.dx, other.dx), dy: min(g.dy, other.dy)}, nil
}

// RowOffset returns the absolute offset between the grid origins measured
// in rows of the finer grid. The caller is expected to already know which
// grid is positively offset from the other.
func (g Grid) RowOffset(other Grid) (int, error) {
	if !g.CompatibleWith(other) {
		return 0, fmt.Errorf("%w: row offset requires compatible grids", ErrIncompatibleGrids)
	}

	return int(math.Round(math.Abs(g.extent.YMax-other.extent.YMax) / min(g.dy, other.dy))), nil
}

// ColOffset returns the absolute offset between the grid origins measured
// in columns of the finer grid.
func (g Grid) ColOffset(other Grid) (int, error) {
	if !g.CompatibleWith(other) {
		return 0, fmt.Errorf("%w: column offset requires compatible grids", ErrIncompatibleGrids)
	}

	return int(math.Round(math.Abs(g.extent.XMin-other.extent.XMin) / min(g.dx, other.dx))), nil
}

// integerRatio checks whether a/b or b/a is an integer
func integerRatio(a, b float64) bool {
	ratio := a / b
	if ratio < 1 {
		ratio = 1 / ratio
	}

	return math.Abs(ratio-math.Round(ratio)) <= compatTol*ratio
}

// integerMultiple checks whether d is an integer multiple of step
func integerMultiple(d, step float64) bool {
	m := d / step

	tol := compatTol * math.Max(1, math.Abs(m))
	return math.Abs(m-math.Round(m)) <= tol
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
