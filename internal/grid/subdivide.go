package grid

// Subdivision is a lazy sequence of sub-grids covering a grid without
// overlap, each with at most maxCells cells. Tiles are emitted row-major
// from the top left.
type Subdivision struct {
	src        Grid
	tileRows   int
	tileCols   int
	row, col   int
	rows, cols int
}

// Subdivide splits the grid into tiles of at most maxCells cells each.
// The tiles have the same cell size as the grid and their union equals
// the grid extent.
func (g Grid) Subdivide(maxCells int) *Subdivision {
	if maxCells < 1 {
		maxCells = 1
	}

	cols := g.Cols()
	rows := g.Rows()

	tileCols := cols
	if tileCols > maxCells {
		tileCols = maxCells
	}

	tileRows := maxCells / tileCols
	if tileRows < 1 {
		tileRows = 1
	}
	if tileRows > rows {
		tileRows = rows
	}

	return &Subdivision{
		src:      g,
		tileRows: tileRows,
		tileCols: tileCols,
		rows:     rows,
		cols:     cols,
	}
}

// Next returns the next tile. The second return value is false once all
// tiles have been emitted.
func (s *Subdivision) Next() (Grid, bool) {
	if s.row >= s.rows {
		return Grid{}, false
	}

	r0 := s.row
	c0 := s.col

	r1 := r0 + s.tileRows
	if r1 > s.rows {
		r1 = s.rows
	}
	c1 := c0 + s.tileCols
	if c1 > s.cols {
		c1 = s.cols
	}

	s.col = c1
	if s.col >= s.cols {
		s.col = 0
		s.row = r1
	}

	extent := Box{
		XMin: s.src.extent.XMin + float64(c0)*s.src.dx,
		YMin: s.src.extent.YMax - float64(r1)*s.src.dy,
		XMax: s.src.extent.XMin + float64(c1)*s.src.dx,
		YMax: s.src.extent.YMax - float64(r0)*s.src.dy,
	}

	return Grid{extent: extent, dx: s.src.dx, dy: s.src.dy}, true
}
