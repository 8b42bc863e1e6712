package grid

import "math"

// Infinite is a grid padded by one ghost row/column of cells on each
// side. Coordinates outside the extent index into the ghost cells
// instead of failing, so a boundary traversal can look one cell beyond
// the extent without bounds checks.
type Infinite struct {
	bounded Grid
}

// NewInfinite creates an infinite grid over the given extent
func NewInfinite(extent Box, dx, dy float64) Infinite {
	return Infinite{bounded: New(extent, dx, dy)}
}

// Infinite returns the infinite variant of the grid
func (g Grid) Infinite() Infinite {
	return Infinite{bounded: g}
}

// Bounded returns the grid without the ghost border
func (g Infinite) Bounded() Grid { return g.bounded }

// Extent returns the extent of the grid, excluding the ghost border
func (g Infinite) Extent() Box { return g.bounded.extent }

// DX returns the cell width
func (g Infinite) DX() float64 { return g.bounded.dx }

// DY returns the cell height
func (g Infinite) DY() float64 { return g.bounded.dy }

// Rows returns the number of rows, including both ghost rows
func (g Infinite) Rows() int { return g.bounded.Rows() + 2 }

// Cols returns the number of columns, including both ghost columns
func (g Infinite) Cols() int { return g.bounded.Cols() + 2 }

// GetRow returns the index of the row containing the y coordinate.
// Coordinates above the extent map to the top ghost row 0, coordinates
// below the extent to the bottom ghost row.
func (g Infinite) GetRow(y float64) int {
	if y > g.bounded.extent.YMax {
		return 0
	}
	if y < g.bounded.extent.YMin {
		return g.Rows() - 1
	}

	r, _ := g.bounded.GetRow(y)
	return r + 1
}

// GetColumn returns the index of the column containing the x coordinate.
// Coordinates left of the extent map to the left ghost column 0,
// coordinates right of the extent to the right ghost column.
func (g Infinite) GetColumn(x float64) int {
	if x < g.bounded.extent.XMin {
		return 0
	}
	if x > g.bounded.extent.XMax {
		return g.Cols() - 1
	}

	c, _ := g.bounded.GetColumn(x)
	return c + 1
}

// XForCol returns the x coordinate of the center of the cells in column c
func (g Infinite) XForCol(c int) float64 {
	return g.bounded.XForCol(c - 1)
}

// YForRow returns the y coordinate of the center of the cells in row r
func (g Infinite) YForRow(r int) float64 {
	return g.bounded.YForRow(r - 1)
}

// CellBox returns the extent of the cell (r, c)
func (g Infinite) CellBox(r, c int) Box {
	return g.bounded.CellBox(r-1, c-1)
}

// RowLine returns the index of the horizontal grid line closest to y.
// Line i separates row i (above, in infinite indexing) from row i+1.
func (g Infinite) RowLine(y float64) int {
	return int(math.Round((g.bounded.extent.YMax - y) / g.bounded.dy))
}

// ColLine returns the index of the vertical grid line closest to x.
// Line i separates column i (left, in infinite indexing) from column i+1.
func (g Infinite) ColLine(x float64) int {
	return int(math.Round((x - g.bounded.extent.XMin) / g.bounded.dx))
}

// YForRowLine returns the y coordinate of horizontal grid line i
func (g Infinite) YForRowLine(i int) float64 {
	return g.bounded.extent.YMax - float64(i)*g.bounded.dy
}

// XForColLine returns the x coordinate of vertical grid line i
func (g Infinite) XForColLine(i int) float64 {
	return g.bounded.extent.XMin + float64(i)*g.bounded.dx
}
