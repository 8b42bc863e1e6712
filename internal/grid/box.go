package grid

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Box is an axis-aligned rectangle in the common planar coordinate space.
type Box struct {
	XMin, YMin, XMax, YMax float64
}

// FromBound converts an orb bounding box
func FromBound(b orb.Bound) Box {
	return Box{XMin: b.Min[0], YMin: b.Min[1], XMax: b.Max[0], YMax: b.Max[1]}
}

// Bound converts the box to its orb representation
func (b Box) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.XMin, b.YMin}, Max: orb.Point{b.XMax, b.YMax}}
}

// Width returns the extent of the box along the x axis
func (b Box) Width() float64 {
	return b.XMax - b.XMin
}

// Height returns the extent of the box along the y axis
func (b Box) Height() float64 {
	return b.YMax - b.YMin
}

// Area returns the area of the box
func (b Box) Area() float64 {
	return b.Width() * b.Height()
}

// Empty reports whether the box has zero area
func (b Box) Empty() bool {
	return b.XMin >= b.XMax || b.YMin >= b.YMax
}

// Contains reports whether the point (x, y) lies within the box (borders included)
func (b Box) Contains(x, y float64) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

// Intersects reports whether the two boxes share any point
func (b Box) Intersects(other Box) bool {
	return b.XMin <= other.XMax && b.XMax >= other.XMin &&
		b.YMin <= other.YMax && b.YMax >= other.YMin
}

// Intersection returns the box common to both boxes. The result is
// degenerate if the boxes only touch and zero if they are disjoint.
func (b Box) Intersection(other Box) Box {
	if !b.Intersects(other) {
		return Box{}
	}

	return Box{
		XMin: max(b.XMin, other.XMin),
		YMin: max(b.YMin, other.YMin),
		XMax: min(b.XMax, other.XMax),
		YMax: min(b.YMax, other.YMax),
	}
}

func (b Box) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", b.XMin, b.YMin, b.XMax, b.YMax)
}
