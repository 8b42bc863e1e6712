package grid

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestBoxIntersection(t *testing.T) {
	a := Box{0, 0, 10, 10}
	b := Box{5, 5, 15, 15}

	if !a.Intersects(b) {
		t.Fatal("boxes should intersect")
	}

	got := a.Intersection(b)
	want := Box{5, 5, 10, 10}
	if got != want {
		t.Fatalf("unexpected intersection: %v", got)
	}

	disjoint := Box{20, 20, 30, 30}
	if a.Intersects(disjoint) {
		t.Fatal("boxes should not intersect")
	}
	if !a.Intersection(disjoint).Empty() {
		t.Fatal("intersection of disjoint boxes should be empty")
	}
}

func TestBoxContains(t *testing.T) {
	b := Box{0, 0, 10, 10}

	if !b.Contains(5, 5) {
		t.Fatal("interior point should be contained")
	}
	if !b.Contains(0, 10) {
		t.Fatal("border point should be contained")
	}
	if b.Contains(-1, 5) {
		t.Fatal("outside point should not be contained")
	}
}

func TestBoxBoundRoundTrip(t *testing.T) {
	b := Box{1, 2, 3, 4}

	bound := b.Bound()
	if bound.Min != (orb.Point{1, 2}) || bound.Max != (orb.Point{3, 4}) {
		t.Fatalf("unexpected bound: %v", bound)
	}
	if FromBound(bound) != b {
		t.Fatal("round trip changed the box")
	}
}
