package intersect

import (
	"sort"

	"github.com/paulmach/orb"
)

// ringCrossings returns the x coordinates where the ring boundary
// crosses the horizontal line at y, sorted left to right. Edges touching
// the line at a single vertex are counted once by the half-open rule.
func ringCrossings(ring orb.Ring, y float64) []float64 {
	var xs []float64

	for i := 0; i < len(ring)-1; i++ {
		a, b := ring[i], ring[i+1]

		if (a[1] <= y && b[1] > y) || (b[1] <= y && a[1] > y) {
			x := a[0] + (y-a[1])*(b[0]-a[0])/(b[1]-a[1])
			xs = append(xs, x)
		}
	}

	sort.Float64s(xs)

	return xs
}

// insideByParity reports whether a point at x is inside the ring, given
// the ring's crossings of the point's scan line
func insideByParity(xs []float64, x float64) bool {
	crossings := sort.SearchFloat64s(xs, x)
	return crossings%2 == 1
}
