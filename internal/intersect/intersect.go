package intersect

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
	"github.com/gruppe-adler/zonal-utils/internal/raster"
)

// ErrInvalidGeometry is returned for geometries the traversal cannot
// resolve.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Coverage walks the polygon boundary across the grid and returns a
// raster of per-cell coverage fractions in [0, 1] on the corresponding
// bounded grid. The polygon may extend beyond the grid extent; the
// fraction of a cell covered only counts area within the cell.
//
// Rings are filled with even-odd semantics: the first ring of each
// polygon adds coverage, every further ring subtracts it. Ring
// orientation does not matter.
func Coverage(geom orb.Geometry, g grid.Infinite) (*raster.Raster[float32], error) {
	var polys []orb.Polygon

	switch geo := geom.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{geo}
	case orb.MultiPolygon:
		polys = geo
	default:
		return nil, fmt.Errorf("%w: unsupported geometry type %q", ErrInvalidGeometry, geom.GeoJSONType())
	}

	bounded := g.Bounded()
	rows := bounded.Rows()
	cols := bounded.Cols()

	acc := make([]float64, rows*cols)

	for _, poly := range polys {
		for ringIdx, ring := range poly {
			sign := 1.0
			if ringIdx > 0 {
				sign = -1
			}

			if err := processRing(ring, sign, g, acc); err != nil {
				return nil, err
			}
		}
	}

	out := raster.New[float32](bounded)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			f := acc[r*cols+c]
			if f < 0 {
				f = 0
			}
			if f > 1 {
				f = 1
			}
			out.Set(r, c, float32(f))
		}
	}

	return out, nil
}

// processRing adds the ring's per-cell coverage to acc, scaled by sign
func processRing(ring orb.Ring, sign float64, g grid.Infinite, acc []float64) error {
	if err := validateRing(ring); err != nil {
		return err
	}

	ring = normalized(ring)

	bounded := g.Bounded()
	rows := bounded.Rows()
	cols := bounded.Cols()

	cells, left := traceRing(ring, g)

	if !left {
		// the whole ring lies within one cell
		for key := range cells {
			if r, c, ok := boundedIndex(key, rows, cols); ok {
				frac := math.Abs(shoelace(ring)) / (g.DX() * g.DY())
				acc[r*cols+c] += sign * frac
			}
		}
		return nil
	}

	// cells crossed by the boundary get their exact covered fraction
	for key, travs := range cells {
		r, c, ok := boundedIndex(key, rows, cols)
		if !ok {
			continue
		}

		box := bounded.CellBox(r, c)
		acc[r*cols+c] += sign * coveredFraction(box, travs)
	}

	// every remaining cell is fully inside or fully outside; a scan line
	// through the row's cell centers decides which
	ringBound := grid.FromBound(ring.Bound())
	if !bounded.Extent().Intersects(ringBound) {
		return nil
	}
	bbox := ringBound.Intersection(bounded.Extent())

	r0 := rowIndexFor(bbox.YMax, bounded)
	r1 := rowIndexFor(bbox.YMin, bounded)
	c0 := colIndexFor(bbox.XMin, bounded)
	c1 := colIndexFor(bbox.XMax, bounded)

	for r := r0; r <= r1; r++ {
		xs := ringCrossings(ring, bounded.YForRow(r))
		if len(xs) == 0 {
			continue
		}

		for c := c0; c <= c1; c++ {
			if _, isBoundary := cells[cellKey{r + 1, c + 1}]; isBoundary {
				continue
			}
			if insideByParity(xs, bounded.XForCol(c)) {
				acc[r*cols+c] += sign
			}
		}
	}

	return nil
}

// validateRing rejects rings the traversal cannot resolve
func validateRing(ring orb.Ring) error {
	if len(ring) < 4 {
		return fmt.Errorf("%w: ring has %d points", ErrInvalidGeometry, len(ring))
	}

	for _, p := range ring {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return fmt.Errorf("%w: non-finite vertex coordinate", ErrInvalidGeometry)
		}
	}

	if ring[0] != ring[len(ring)-1] {
		return fmt.Errorf("%w: ring is not closed", ErrInvalidGeometry)
	}

	return nil
}

// normalized returns the ring in counter-clockwise orientation, so that
// the interior is always on the left of the traversal direction
func normalized(ring orb.Ring) orb.Ring {
	if ring.Orientation() == orb.CCW {
		return ring
	}

	reversed := make(orb.Ring, len(ring))
	for i, p := range ring {
		reversed[len(ring)-1-i] = p
	}

	return reversed
}

// boundedIndex converts infinite-grid indices to bounded ones, dropping
// the ghost border
func boundedIndex(key cellKey, rows, cols int) (int, int, bool) {
	r := key.row - 1
	c := key.col - 1

	if r < 0 || r >= rows || c < 0 || c >= cols {
		return 0, 0, false
	}

	return r, c, true
}

func rowIndexFor(y float64, g grid.Grid) int {
	r := int(math.Floor((g.YMax() - y) / g.DY()))
	return clampIndex(r, g.Rows()-1)
}

func colIndexFor(x float64, g grid.Grid) int {
	c := int(math.Floor((x - g.XMin()) / g.DX()))
	return clampIndex(c, g.Cols()-1)
}
