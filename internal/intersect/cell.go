package intersect

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
)

// traversal is the piece of a ring boundary passing through one cell.
// The first and last coordinate lie on the cell boundary, except for the
// open ends of a ring that starts inside the cell; those are closed when
// the ring wraps around.
type traversal struct {
	coords []orb.Point
}

func (t *traversal) entry() orb.Point { return t.coords[0] }
func (t *traversal) exit() orb.Point  { return t.coords[len(t.coords)-1] }

// cellKey addresses a boundary cell in infinite grid indices
type cellKey struct {
	row, col int
}

// boundary holds the traversals of every cell touched by one ring
type boundary map[cellKey][]traversal

// traceRing splits the ring at grid line crossings and groups the
// resulting sub-segments into per-cell traversals. The bool result is
// false if the ring never leaves a single cell.
func traceRing(ring orb.Ring, g grid.Infinite) (boundary, bool) {
	pts := splitAtGridLines(ring, g)

	cells := make(boundary)

	var cur traversal
	var curKey cellKey
	started := false

	for i := 0; i < len(pts)-1; i++ {
		a, b := pts[i], pts[i+1]
		if samePoint(a, b) {
			continue
		}

		row, col := cellFor(a, b, g)
		key := cellKey{row, col}

		if !started {
			cur = traversal{coords: []orb.Point{a, b}}
			curKey = key
			started = true
			continue
		}

		if key == curKey {
			cur.coords = append(cur.coords, b)
			continue
		}

		cells[curKey] = append(cells[curKey], cur)
		cur = traversal{coords: []orb.Point{a, b}}
		curKey = key
	}

	if !started {
		return cells, false
	}

	if len(cells) == 0 {
		// the ring never left a single cell
		cells[curKey] = append(cells[curKey], cur)
		return cells, false
	}

	// the ring is closed, so the open trailing traversal continues the
	// ring's first traversal
	if first := cells[curKey]; len(first) > 0 && samePoint(cur.exit(), first[0].entry()) {
		merged := traversal{coords: append(cur.coords[:len(cur.coords):len(cur.coords)], first[0].coords[1:]...)}
		cells[curKey] = append([]traversal{merged}, first[1:]...)
	} else {
		cells[curKey] = append(cells[curKey], cur)
	}

	return cells, true
}

// coveredFraction computes the fraction of the cell covered by the
// region left of the cell's traversals, clamped to [0, 1]
func coveredFraction(box grid.Box, travs []traversal) float64 {
	area := leftHandArea(box, travs)

	frac := area / box.Area()
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	return frac
}

// leftHandArea computes the area of the part of the box left of the
// directed traversals. Each traversal is closed by walking the box
// perimeter counter-clockwise from its exit to the entry of the next
// traversal, inserting the corners passed along the way; the resulting
// rings are summed with the shoelace formula.
func leftHandArea(box grid.Box, travs []traversal) float64 {
	perimeter := 2 * (box.Width() + box.Height())

	used := make([]bool, len(travs))
	total := 0.0

	for start := range travs {
		if used[start] {
			continue
		}

		var ring []orb.Point

		cur := start
		for {
			used[cur] = true
			ring = append(ring, travs[cur].coords...)

			exitDist := perimeterDistance(box, travs[cur].exit())

			next := -1
			nextDelta := math.Inf(1)
			for cand := range travs {
				if used[cand] && cand != start {
					continue
				}
				delta := math.Mod(perimeterDistance(box, travs[cand].entry())-exitDist+perimeter, perimeter)
				if delta < nextDelta || (delta == nextDelta && cand == start) {
					next = cand
					nextDelta = delta
				}
			}

			ring = append(ring, cornersBetween(box, exitDist, nextDelta)...)

			if next == start {
				break
			}
			cur = next
		}

		total += shoelace(ring)
	}

	return total
}

// perimeterDistance measures the position of a point on the box border,
// travelling counter-clockwise from the bottom left corner
func perimeterDistance(b grid.Box, p orb.Point) float64 {
	w := b.Width()
	h := b.Height()

	switch {
	case sameCoord(p[1], b.YMin):
		return p[0] - b.XMin
	case sameCoord(p[0], b.XMax):
		return w + p[1] - b.YMin
	case sameCoord(p[1], b.YMax):
		return w + h + b.XMax - p[0]
	case sameCoord(p[0], b.XMin):
		return 2*w + h + b.YMax - p[1]
	}

	// traversal ends should always sit on the cell border; treat stray
	// points as the nearest border position
	return clampPerimeter(b, p)
}

func clampPerimeter(b grid.Box, p orb.Point) float64 {
	w := b.Width()
	h := b.Height()

	dBottom := math.Abs(p[1] - b.YMin)
	dRight := math.Abs(p[0] - b.XMax)
	dTop := math.Abs(p[1] - b.YMax)
	dLeft := math.Abs(p[0] - b.XMin)

	minDist := math.Min(math.Min(dBottom, dRight), math.Min(dTop, dLeft))
	switch minDist {
	case dBottom:
		return p[0] - b.XMin
	case dRight:
		return w + p[1] - b.YMin
	case dTop:
		return w + h + b.XMax - p[0]
	}
	return 2*w + h + b.YMax - p[1]
}

// cornersBetween returns the box corners encountered when walking the
// perimeter counter-clockwise from distance d for a length of delta
func cornersBetween(b grid.Box, d, delta float64) []orb.Point {
	w := b.Width()
	h := b.Height()
	perimeter := 2 * (w + h)

	corners := []struct {
		dist float64
		p    orb.Point
	}{
		{0, orb.Point{b.XMin, b.YMin}},
		{w, orb.Point{b.XMax, b.YMin}},
		{w + h, orb.Point{b.XMax, b.YMax}},
		{2*w + h, orb.Point{b.XMin, b.YMax}},
	}

	tol := absTol + relTol*perimeter

	var out []orb.Point
	for _, c := range corners {
		rel := math.Mod(c.dist-d+perimeter, perimeter)
		if rel > tol && rel < delta-tol {
			out = append(out, c.p)
		}
	}

	// corners must be appended in walking order
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			relJ := math.Mod(perimeterDistance(b, out[j])-d+perimeter, perimeter)
			relP := math.Mod(perimeterDistance(b, out[j-1])-d+perimeter, perimeter)
			if relJ < relP {
				out[j], out[j-1] = out[j-1], out[j]
			}
		}
	}

	return out
}

// shoelace returns the signed area of the ring, positive for
// counter-clockwise orientation
func shoelace(ring []orb.Point) float64 {
	sum := 0.0

	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}

	return sum / 2
}
