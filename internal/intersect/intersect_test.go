package intersect

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
	"github.com/gruppe-adler/zonal-utils/internal/raster"
)

func square(xmin, ymin, xmax, ymax float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{xmin, ymin}, {xmax, ymin}, {xmax, ymax}, {xmin, ymax}, {xmin, ymin},
	}}
}

func coverageSum(r *raster.Raster[float32]) float64 {
	sum := 0.0
	for i := 0; i < r.Rows(); i++ {
		for j := 0; j < r.Cols(); j++ {
			sum += float64(r.At(i, j))
		}
	}
	return sum
}

func TestFullCellPolygon(t *testing.T) {
	g := grid.NewInfinite(grid.Box{0, 0, 3, 3}, 1, 1)

	cov, err := Coverage(square(1, 1, 2, 2), g)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := float32(0)
			if i == 1 && j == 1 {
				want = 1
			}
			if cov.At(i, j) != want {
				t.Fatalf("unexpected coverage at (%d, %d): %v, want %v", i, j, cov.At(i, j), want)
			}
		}
	}
}

func TestHalfCellPolygon(t *testing.T) {
	g := grid.NewInfinite(grid.Box{0, 0, 1, 1}, 1, 1)

	cov, err := Coverage(square(0, 0, 0.5, 1), g)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(float64(cov.At(0, 0))-0.5) > 1e-9 {
		t.Fatalf("unexpected coverage: %v", cov.At(0, 0))
	}
}

func TestQuarterCoverage(t *testing.T) {
	g := grid.NewInfinite(grid.Box{0, 0, 2, 2}, 1, 1)

	// one square centered on the grid center covers a quarter of each cell
	cov, err := Coverage(square(0.5, 0.5, 1.5, 1.5), g)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(float64(cov.At(i, j))-0.25) > 1e-9 {
				t.Fatalf("unexpected coverage at (%d, %d): %v", i, j, cov.At(i, j))
			}
		}
	}
}

func TestCoverageValuesInRange(t *testing.T) {
	g := grid.NewInfinite(grid.Box{0, 0, 4, 4}, 0.5, 0.5)

	diamond := orb.Polygon{orb.Ring{{2, 0.25}, {3.75, 2}, {2, 3.75}, {0.25, 2}, {2, 0.25}}}

	cov, err := Coverage(diamond, g)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < cov.Rows(); i++ {
		for j := 0; j < cov.Cols(); j++ {
			f := cov.At(i, j)
			if f < 0 || f > 1 {
				t.Fatalf("coverage out of range at (%d, %d): %v", i, j, f)
			}
		}
	}
}

func TestCoverageSumsToPolygonArea(t *testing.T) {
	g := grid.NewInfinite(grid.Box{0, 0, 4, 4}, 0.5, 0.5)

	polys := []orb.Polygon{
		square(0.75, 0.75, 3.25, 3.25),
		{orb.Ring{{2, 0.25}, {3.75, 2}, {2, 3.75}, {0.25, 2}, {2, 0.25}}},
		{orb.Ring{{0.3, 0.2}, {3.9, 0.7}, {3.1, 3.8}, {1.2, 2.9}, {0.3, 0.2}}},
	}

	for i, poly := range polys {
		cov, err := Coverage(poly, g)
		if err != nil {
			t.Fatal(err)
		}

		got := coverageSum(cov) * g.DX() * g.DY()
		want := planar.Area(poly)
		if math.Abs(got-want) > 1e-6*float64(cov.Rows()*cov.Cols())*g.DX()*g.DY() {
			t.Fatalf("polygon %d: coverage area %v, polygon area %v", i, got, want)
		}
	}
}

func TestPolygonWithHole(t *testing.T) {
	g := grid.NewInfinite(grid.Box{0, 0, 4, 4}, 0.5, 0.5)

	poly := orb.Polygon{
		orb.Ring{{0.5, 0.5}, {3.5, 0.5}, {3.5, 3.5}, {0.5, 3.5}, {0.5, 0.5}},
		orb.Ring{{1.5, 1.5}, {2.5, 1.5}, {2.5, 2.5}, {1.5, 2.5}, {1.5, 1.5}},
	}

	cov, err := Coverage(poly, g)
	if err != nil {
		t.Fatal(err)
	}

	got := coverageSum(cov) * g.DX() * g.DY()
	want := 3*3 - 1*1
	if math.Abs(got-float64(want)) > 1e-6 {
		t.Fatalf("unexpected covered area: %v, want %d", got, want)
	}

	// the hole center cell is fully uncovered
	r, _ := g.Bounded().GetRow(2.1)
	c, _ := g.Bounded().GetColumn(2.1)
	if cov.At(r, c) != 0 {
		t.Fatalf("expected hole cell to be uncovered, got %v", cov.At(r, c))
	}
}

func TestMultiPolygon(t *testing.T) {
	g := grid.NewInfinite(grid.Box{0, 0, 4, 1}, 1, 1)

	mp := orb.MultiPolygon{
		square(0, 0, 1, 1),
		square(3, 0, 4, 1),
	}

	cov, err := Coverage(mp, g)
	if err != nil {
		t.Fatal(err)
	}

	want := []float32{1, 0, 0, 1}
	for j, w := range want {
		if cov.At(0, j) != w {
			t.Fatalf("unexpected coverage at col %d: %v, want %v", j, cov.At(0, j), w)
		}
	}
}

func TestRingOrientationDoesNotMatter(t *testing.T) {
	g := grid.NewInfinite(grid.Box{0, 0, 2, 2}, 1, 1)

	ccw := square(0.5, 0.5, 1.5, 1.5)
	cw := orb.Polygon{orb.Ring{{0.5, 0.5}, {0.5, 1.5}, {1.5, 1.5}, {1.5, 0.5}, {0.5, 0.5}}}

	covCCW, err := Coverage(ccw, g)
	if err != nil {
		t.Fatal(err)
	}
	covCW, err := Coverage(cw, g)
	if err != nil {
		t.Fatal(err)
	}

	if !covCCW.Equal(covCW) {
		t.Fatal("coverage should not depend on ring orientation")
	}
}

func TestPolygonExtendingBeyondGrid(t *testing.T) {
	g := grid.NewInfinite(grid.Box{0, 0, 2, 2}, 1, 1)

	cov, err := Coverage(square(-1, -1, 1, 1), g)
	if err != nil {
		t.Fatal(err)
	}

	// only the quadrant inside the grid counts
	got := coverageSum(cov) * g.DX() * g.DY()
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("unexpected clipped area: %v", got)
	}

	r, _ := g.Bounded().GetRow(0.5)
	c, _ := g.Bounded().GetColumn(0.5)
	if math.Abs(float64(cov.At(r, c))-1.0) > 1e-9 {
		t.Fatalf("unexpected coverage in overlapped cell: %v", cov.At(r, c))
	}
}

func TestPolygonOutsideGrid(t *testing.T) {
	g := grid.NewInfinite(grid.Box{0, 0, 2, 2}, 1, 1)

	cov, err := Coverage(square(10, 10, 12, 12), g)
	if err != nil {
		t.Fatal(err)
	}

	if coverageSum(cov) != 0 {
		t.Fatalf("expected zero coverage, got %v", coverageSum(cov))
	}
}

func TestTileAdditivity(t *testing.T) {
	full := grid.New(grid.Box{0, 0, 4, 4}, 0.5, 0.5)
	poly := orb.Polygon{orb.Ring{{0.3, 0.2}, {3.9, 0.7}, {3.1, 3.8}, {1.2, 2.9}, {0.3, 0.2}}}

	whole, err := Coverage(poly, full.Infinite())
	if err != nil {
		t.Fatal(err)
	}

	sum := 0.0
	sub := full.Subdivide(16)
	for {
		tile, ok := sub.Next()
		if !ok {
			break
		}

		cov, err := Coverage(poly, tile.Infinite())
		if err != nil {
			t.Fatal(err)
		}
		sum += coverageSum(cov)
	}

	if math.Abs(sum-coverageSum(whole)) > 1e-6 {
		t.Fatalf("tiled sum %v differs from whole sum %v", sum, coverageSum(whole))
	}
}

func TestInvalidGeometry(t *testing.T) {
	g := grid.NewInfinite(grid.Box{0, 0, 2, 2}, 1, 1)

	cases := []orb.Geometry{
		orb.Polygon{orb.Ring{{0, 0}, {1, 1}, {0, 0}}},
		orb.Polygon{orb.Ring{{0, 0}, {math.NaN(), 1}, {1, 1}, {0, 0}}},
		orb.Polygon{orb.Ring{{0, 0}, {math.Inf(1), 1}, {1, 1}, {0, 0}}},
		orb.LineString{{0, 0}, {1, 1}},
	}

	for i, geom := range cases {
		if _, err := Coverage(geom, g); !errors.Is(err, ErrInvalidGeometry) {
			t.Fatalf("case %d: expected ErrInvalidGeometry, got %v", i, err)
		}
	}
}
