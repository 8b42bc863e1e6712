// Package intersect computes per-cell coverage fractions of polygons on
// a regular grid. A polygon boundary is walked across the grid, every
// touched cell's covered fraction is derived from the traversal geometry
// and the interior is filled by scan-line parity.
package intersect

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
)

// coordinate comparison tolerances
const (
	absTol = 1e-12
	relTol = 1e-8
)

// segmentOrientation classifies a boundary segment. Axis-aligned
// segments that run exactly on a grid line need their own cell
// assignment rule, so they get explicit orientations.
type segmentOrientation int

const (
	angled segmentOrientation = iota
	horizontalRight
	horizontalLeft
	verticalUp
	verticalDown
)

func orientation(a, b orb.Point) segmentOrientation {
	switch {
	case a[1] == b[1] && b[0] > a[0]:
		return horizontalRight
	case a[1] == b[1] && b[0] < a[0]:
		return horizontalLeft
	case a[0] == b[0] && b[1] > a[1]:
		return verticalUp
	case a[0] == b[0] && b[1] < a[1]:
		return verticalDown
	}
	return angled
}

func sameCoord(a, b float64) bool {
	return math.Abs(a-b) <= absTol+relTol*math.Max(math.Abs(a), math.Abs(b))
}

func samePoint(a, b orb.Point) bool {
	return sameCoord(a[0], b[0]) && sameCoord(a[1], b[1])
}

// splitAtGridLines returns the ring's point sequence with every crossing
// of a grid line inserted, so that each consecutive point pair lies
// within a single cell. Crossing coordinates are snapped exactly onto
// the grid lines they cross.
func splitAtGridLines(ring orb.Ring, g grid.Infinite) []orb.Point {
	out := make([]orb.Point, 0, 2*len(ring))

	for i := 0; i < len(ring)-1; i++ {
		a, b := ring[i], ring[i+1]
		out = append(out, a)
		out = append(out, crossings(a, b, g)...)
	}

	out = append(out, ring[len(ring)-1])

	return out
}

// crossings returns the points where the segment a->b crosses a grid
// line, ordered along the segment, excluding the endpoints
func crossings(a, b orb.Point, g grid.Infinite) []orb.Point {
	type crossing struct {
		t float64
		p orb.Point
	}
	var found []crossing

	dx := b[0] - a[0]
	dy := b[1] - a[1]

	if dx != 0 {
		lo, hi := lineRange(math.Min(a[0], b[0]), math.Max(a[0], b[0]), g.Extent().XMin, g.DX(), g.Bounded().Cols())
		for c := lo; c <= hi; c++ {
			x := g.XForColLine(c)
			t := (x - a[0]) / dx
			if t <= 0 || t >= 1 {
				continue
			}
			y := a[1] + t*dy
			found = append(found, crossing{t, orb.Point{x, y}})
		}
	}

	if dy != 0 {
		// row lines are indexed from the top, so the roles of lo and hi flip
		yLo, yHi := math.Min(a[1], b[1]), math.Max(a[1], b[1])
		first := int(math.Floor((g.Extent().YMax-yHi)/g.DY())) + 1
		last := int(math.Ceil((g.Extent().YMax-yLo)/g.DY())) - 1
		if first < 0 {
			first = 0
		}
		if last > g.Bounded().Rows() {
			last = g.Bounded().Rows()
		}
		for r := first; r <= last; r++ {
			y := g.YForRowLine(r)
			t := (y - a[1]) / dy
			if t <= 0 || t >= 1 {
				continue
			}
			x := a[0] + t*dx
			found = append(found, crossing{t, orb.Point{x, y}})
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].t < found[j].t })

	out := make([]orb.Point, 0, len(found))
	for _, c := range found {
		// a crossing through a cell corner shows up once per axis;
		// merge the two into a single point snapped to both lines
		if n := len(out); n > 0 && samePoint(out[n-1], c.p) {
			merged := out[n-1]
			if merged[0] != c.p[0] && onColLine(c.p[0], g) {
				merged[0] = c.p[0]
			}
			if merged[1] != c.p[1] && onRowLine(c.p[1], g) {
				merged[1] = c.p[1]
			}
			out[n-1] = merged
			continue
		}
		if samePoint(c.p, a) || samePoint(c.p, b) {
			continue
		}
		out = append(out, c.p)
	}

	return out
}

// lineRange returns the inclusive range of grid line indices whose
// coordinate lies strictly between lo and hi, clamped to the lines that
// exist within the extent
func lineRange(lo, hi, origin, step float64, count int) (int, int) {
	first := int(math.Floor((lo-origin)/step)) + 1
	last := int(math.Ceil((hi-origin)/step)) - 1

	if first < 0 {
		first = 0
	}
	if last > count {
		last = count
	}

	return first, last
}

func onColLine(x float64, g grid.Infinite) bool {
	line := math.Round((x - g.Extent().XMin) / g.DX())
	return sameCoord(x, g.Extent().XMin+line*g.DX())
}

func onRowLine(y float64, g grid.Infinite) bool {
	line := math.Round((g.Extent().YMax - y) / g.DY())
	return sameCoord(y, g.Extent().YMax-line*g.DY())
}

// cellFor returns the infinite-grid cell containing the sub-segment
// a->b, which must not cross any grid line. A sub-segment lying exactly
// on a grid line belongs to the cell on its left: right-moving segments
// to the row above, left-moving to the row below, up-moving to the
// column on the left and down-moving to the column on the right.
func cellFor(a, b orb.Point, g grid.Infinite) (row, col int) {
	o := orientation(a, b)
	mid := orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}

	switch {
	case (o == horizontalRight || o == horizontalLeft) && onRowLine(a[1], g) && withinY(a[1], g):
		line := g.RowLine(a[1])
		if o == horizontalRight {
			row = line
		} else {
			row = line + 1
		}
		row = clampIndex(row, g.Rows()-1)
	default:
		row = g.GetRow(mid[1])
	}

	switch {
	case (o == verticalUp || o == verticalDown) && onColLine(a[0], g) && withinX(a[0], g):
		line := g.ColLine(a[0])
		if o == verticalUp {
			col = line
		} else {
			col = line + 1
		}
		col = clampIndex(col, g.Cols()-1)
	default:
		col = g.GetColumn(mid[0])
	}

	return row, col
}

// withinY reports whether a horizontal grid line exists at y
func withinY(y float64, g grid.Infinite) bool {
	return y >= g.Extent().YMin-absTol && y <= g.Extent().YMax+absTol
}

// withinX reports whether a vertical grid line exists at x
func withinX(x float64, g grid.Infinite) bool {
	return x >= g.Extent().XMin-absTol && x <= g.Extent().XMax+absTol
}

func clampIndex(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
