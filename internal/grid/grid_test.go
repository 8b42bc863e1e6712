package grid

import (
	"errors"
	"testing"
)

var global = Box{XMin: -180, YMin: -90, XMax: 180, YMax: 90}

func TestBoundedGridDimensions(t *testing.T) {
	g := New(global, 0.5, 0.5)

	if g.Rows() != 360 {
		t.Fatalf("unexpected rows: %d", g.Rows())
	}
	if g.Cols() != 720 {
		t.Fatalf("unexpected cols: %d", g.Cols())
	}
}

func TestBoundedGridDimensionRobustness(t *testing.T) {
	g := New(Box{8.5, 1.6, 16.2, 13.1}, 0.1, 0.1)

	if g.Cols() != 77 {
		t.Fatalf("unexpected cols: %d", g.Cols())
	}
	if g.Rows() != 115 {
		t.Fatalf("unexpected rows: %d", g.Rows())
	}
}

func TestInfiniteGridDimensions(t *testing.T) {
	g := NewInfinite(global, 0.5, 0.5)

	if g.Rows() != 2+360 {
		t.Fatalf("unexpected rows: %d", g.Rows())
	}
	if g.Cols() != 2+720 {
		t.Fatalf("unexpected cols: %d", g.Cols())
	}
}

func TestInfiniteGridDimensionRobustness(t *testing.T) {
	g := NewInfinite(Box{8.5, 1.6, 16.2, 13.1}, 0.1, 0.1)

	if g.Cols() != 2+77 {
		t.Fatalf("unexpected cols: %d", g.Cols())
	}
	if g.Rows() != 2+115 {
		t.Fatalf("unexpected rows: %d", g.Rows())
	}
}

func TestBoundedGridIndexLookups(t *testing.T) {
	g := New(global, 1.0, 0.5)

	rowCases := []struct {
		y    float64
		want int
	}{
		{90, 0},
		{-89.50000001, 359},
		{-89.5, 359},
		{-90, 359},
	}
	for _, c := range rowCases {
		got, err := g.GetRow(c.y)
		if err != nil {
			t.Fatalf("GetRow(%v): %v", c.y, err)
		}
		if got != c.want {
			t.Fatalf("GetRow(%v) = %d, want %d", c.y, got, c.want)
		}
	}

	for _, y := range []float64{-90.00000001, 90.00000001} {
		if _, err := g.GetRow(y); !errors.Is(err, ErrOutOfExtent) {
			t.Fatalf("GetRow(%v): expected ErrOutOfExtent, got %v", y, err)
		}
	}

	colCases := []struct {
		x    float64
		want int
	}{
		{-180, 0},
		{-179.000001, 0},
		{-179, 1},
		{179, 359},
		{180, 359},
	}
	for _, c := range colCases {
		got, err := g.GetColumn(c.x)
		if err != nil {
			t.Fatalf("GetColumn(%v): %v", c.x, err)
		}
		if got != c.want {
			t.Fatalf("GetColumn(%v) = %d, want %d", c.x, got, c.want)
		}
	}

	for _, x := range []float64{-180.0000001, 180.0000001} {
		if _, err := g.GetColumn(x); !errors.Is(err, ErrOutOfExtent) {
			t.Fatalf("GetColumn(%v): expected ErrOutOfExtent, got %v", x, err)
		}
	}
}

func TestInfiniteGridIndexLookups(t *testing.T) {
	g := NewInfinite(global, 1.0, 0.5)

	rowCases := []struct {
		y    float64
		want int
	}{
		{90, 1},
		{-89.50000001, 360},
		{-89.5, 360},
		{-90, 360},
		{-90.00000001, 361},
		{90.00000001, 0},
	}
	for _, c := range rowCases {
		if got := g.GetRow(c.y); got != c.want {
			t.Fatalf("GetRow(%v) = %d, want %d", c.y, got, c.want)
		}
	}

	colCases := []struct {
		x    float64
		want int
	}{
		{-180, 1},
		{-179.000001, 1},
		{-179, 2},
		{179, 360},
		{180, 360},
		{-180.0000001, 0},
		{180.0000001, 361},
	}
	for _, c := range colCases {
		if got := g.GetColumn(c.x); got != c.want {
			t.Fatalf("GetColumn(%v) = %d, want %d", c.x, got, c.want)
		}
	}
}

func TestShrinkToFit(t *testing.T) {
	g := New(global, 1, 0.5)

	shrunk, err := g.ShrinkToFit(Box{-44.3, -21.4, 18.3, 88.2})
	if err != nil {
		t.Fatal(err)
	}

	if shrunk.XMin() != -45 {
		t.Fatalf("unexpected xmin: %v", shrunk.XMin())
	}
	if shrunk.XMax() != 19 {
		t.Fatalf("unexpected xmax: %v", shrunk.XMax())
	}
	if shrunk.YMin() != -21.5 {
		t.Fatalf("unexpected ymin: %v", shrunk.YMin())
	}
	if shrunk.YMax() != 88.5 {
		t.Fatalf("unexpected ymax: %v", shrunk.YMax())
	}
	if shrunk.DX() != g.DX() || shrunk.DY() != g.DY() {
		t.Fatalf("cell size not preserved: (%v, %v)", shrunk.DX(), shrunk.DY())
	}
}

func TestRepeatedShrinkHasNoEffect(t *testing.T) {
	g := New(Box{-180.5, -90, 180, 90}, 0.1, 0.1)
	reduced := Box{8.532812500000006, 1.6762207031249972, 16.183398437500017, 13.078515624999994}

	once, err := g.ShrinkToFit(reduced)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := once.ShrinkToFit(reduced)
	if err != nil {
		t.Fatal(err)
	}

	if once.Rows() != twice.Rows() || once.Cols() != twice.Cols() {
		t.Fatalf("shrink not idempotent: %dx%d vs %dx%d", once.Rows(), once.Cols(), twice.Rows(), twice.Cols())
	}
}

func TestShrinkRobustness(t *testing.T) {
	cases := []struct {
		grid    Grid
		reduced Box
	}{
		{
			New(Box{-180.5, -90, 180, 90}, 0.5, 0.5),
			Box{-1.0000000000000142, 8.141666666665664, 0.08749999999993818, 9.904166666665645},
		},
		{
			New(Box{-180.5, -90.5, 180.5, 90.5}, 0.25, 0.25),
			Box{129.75833333333242, -1.2541666666666238, 129.7624999999993, -1.2499999999999964},
		},
	}

	for _, c := range cases {
		shrunk, err := c.grid.ShrinkToFit(c.reduced)
		if err != nil {
			t.Fatal(err)
		}

		if c.reduced.XMin < shrunk.XMin() || c.reduced.XMax > shrunk.XMax() {
			t.Fatalf("shrunk extent %v does not contain %v in x", shrunk.Extent(), c.reduced)
		}
		if c.reduced.YMin < shrunk.YMin() || c.reduced.YMax > shrunk.YMax() {
			t.Fatalf("shrunk extent %v does not contain %v in y", shrunk.Extent(), c.reduced)
		}
	}
}

func TestGridCompatibility(t *testing.T) {
	halfDegreeGlobal := New(global, 0.5, 0.5)
	oneDegreeGlobal := New(global, 1, 1)
	quarterDegreePartial := New(Box{-180, -60, 90, 83}, 0.25, 0.25)
	nldas := New(Box{-125.0, 0.25, -67, 53}, 0.125, 0.125)
	tenthDegreeGlobal := New(global, 0.1, 0.1)
	halfDegreeOffset := New(Box{-180.25, -90, -100.25, 50}, 0.5, 0.5)

	compatible := [][2]Grid{
		{halfDegreeGlobal, oneDegreeGlobal},
		{quarterDegreePartial, oneDegreeGlobal},
		{oneDegreeGlobal, nldas},
		{halfDegreeGlobal, tenthDegreeGlobal},
	}
	for i, pair := range compatible {
		if !pair[0].CompatibleWith(pair[1]) {
			t.Fatalf("pair %d should be compatible", i)
		}
	}

	incompatible := [][2]Grid{
		{quarterDegreePartial, tenthDegreeGlobal},
		{tenthDegreeGlobal, nldas},
		{halfDegreeGlobal, halfDegreeOffset},
	}
	for i, pair := range incompatible {
		if pair[0].CompatibleWith(pair[1]) {
			t.Fatalf("pair %d should not be compatible", i)
		}
	}
}

func TestCommonGrid(t *testing.T) {
	halfDegreeGlobal := New(global, 0.5, 0.5)
	nldas := New(Box{-125.0, 0.25, -67, 53}, 0.125, 0.125)

	common, err := nldas.CommonGrid(halfDegreeGlobal)
	if err != nil {
		t.Fatal(err)
	}

	want := New(global, 0.125, 0.125)
	if !common.Equal(want) {
		t.Fatalf("unexpected common grid: %v @ (%v, %v)", common.Extent(), common.DX(), common.DY())
	}

	reversed, err := halfDegreeGlobal.CommonGrid(nldas)
	if err != nil {
		t.Fatal(err)
	}
	if !reversed.Equal(common) {
		t.Fatal("common grid is not symmetric")
	}
}

func TestCommonGridIncompatible(t *testing.T) {
	a := New(global, 0.5, 0.5)
	b := New(Box{-180.25, -90, -100.25, 50}, 0.5, 0.5)

	if _, err := a.CommonGrid(b); !errors.Is(err, ErrIncompatibleGrids) {
		t.Fatalf("expected ErrIncompatibleGrids, got %v", err)
	}
}

func TestCellCenters(t *testing.T) {
	bounded := New(global, 0.5, 0.25)
	infinite := NewInfinite(global, 0.5, 0.25)

	if bounded.XForCol(0) != -179.75 {
		t.Fatalf("unexpected x: %v", bounded.XForCol(0))
	}
	if infinite.XForCol(1) != -179.75 {
		t.Fatalf("unexpected x: %v", infinite.XForCol(1))
	}
	if bounded.YForRow(0) != 89.875 {
		t.Fatalf("unexpected y: %v", bounded.YForRow(0))
	}
	if infinite.YForRow(1) != 89.875 {
		t.Fatalf("unexpected y: %v", infinite.YForRow(1))
	}
}

func TestOffsets(t *testing.T) {
	g1 := New(global, 0.5, 0.25)
	g2 := New(Box{-170, -90, 180, 88.5}, 0.5, 0.25)

	for _, pair := range [][2]Grid{{g1, g2}, {g2, g1}} {
		rowOffset, err := pair[0].RowOffset(pair[1])
		if err != nil {
			t.Fatal(err)
		}
		if rowOffset != 6 {
			t.Fatalf("unexpected row offset: %d", rowOffset)
		}

		colOffset, err := pair[0].ColOffset(pair[1])
		if err != nil {
			t.Fatal(err)
		}
		if colOffset != 20 {
			t.Fatalf("unexpected col offset: %d", colOffset)
		}
	}
}

func TestSubdivide(t *testing.T) {
	g := New(Box{0, 0, 10, 10}, 1, 1)

	var tiles []Grid
	sub := g.Subdivide(30)
	for {
		tile, ok := sub.Next()
		if !ok {
			break
		}
		tiles = append(tiles, tile)
	}

	if len(tiles) != 4 {
		t.Fatalf("unexpected tile count: %d", len(tiles))
	}

	totalCells := 0
	for _, tile := range tiles {
		if tile.Size() > 30 {
			t.Fatalf("tile exceeds cell budget: %d", tile.Size())
		}
		if tile.DX() != 1 || tile.DY() != 1 {
			t.Fatalf("tile cell size changed: (%v, %v)", tile.DX(), tile.DY())
		}
		totalCells += tile.Size()
	}

	if totalCells != g.Size() {
		t.Fatalf("tiles cover %d cells, grid has %d", totalCells, g.Size())
	}

	// first tile starts at the top left
	if tiles[0].XMin() != 0 || tiles[0].YMax() != 10 {
		t.Fatalf("unexpected first tile: %v", tiles[0].Extent())
	}
}

func TestSubdivideSingleTile(t *testing.T) {
	g := New(Box{0, 0, 4, 4}, 1, 1)

	sub := g.Subdivide(100)
	tile, ok := sub.Next()
	if !ok {
		t.Fatal("expected one tile")
	}
	if !tile.Equal(g) {
		t.Fatalf("single tile should equal grid, got %v", tile.Extent())
	}
	if _, ok := sub.Next(); ok {
		t.Fatal("expected exactly one tile")
	}
}
