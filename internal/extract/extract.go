// Package extract implements the extract subcommand: zonal statistics
// for a set of polygon zones over one value raster and optionally one
// weighting raster.
package extract

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/paulmach/orb"
	"golang.org/x/sync/semaphore"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
	"github.com/gruppe-adler/zonal-utils/internal/intersect"
	"github.com/gruppe-adler/zonal-utils/internal/output"
	"github.com/gruppe-adler/zonal-utils/internal/raster"
	"github.com/gruppe-adler/zonal-utils/internal/stats"
	"github.com/gruppe-adler/zonal-utils/internal/zones"
)

// RasterSource serves a grid and rectangular windows of cell values
type RasterSource interface {
	Grid() grid.Grid
	ReadBox(b grid.Box) (*raster.Raster[float64], error)
}

type zone struct {
	id       string
	bbox     grid.Box
	geometry orb.Geometry
}

type zoneResult struct {
	id      string
	results map[string]float64
	skipped bool
	err     error
}

type config struct {
	fieldName string
	outPath   string
	statNames []string
	filter    string
	maxCells  int
	workers   int
}

// run processes every zone and writes the result rows in input order.
// A failing zone is reported and processing continues with the next
// zone.
func run(cfg config, values, weights RasterSource, src zones.Source) ([]string, error) {
	sts, err := stats.ParseAll(cfg.statNames)
	if err != nil {
		return nil, err
	}
	storeValues := stats.StoredValuesNeeded(sts)

	if weights != nil && !values.Grid().CompatibleWith(weights.Grid()) {
		return nil, fmt.Errorf("%w: value grid %v@(%g, %g) and weighting grid %v@(%g, %g)",
			grid.ErrIncompatibleGrids,
			values.Grid().Extent(), values.Grid().DX(), values.Grid().DY(),
			weights.Grid().Extent(), weights.Grid().DX(), weights.Grid().DY())
	}

	var all []zone
	for src.Next() {
		z := zone{id: src.ID(), bbox: src.BBox(), geometry: src.Geometry()}

		if cfg.filter != "" && z.id != cfg.filter {
			continue
		}

		all = append(all, z)
	}
	if err := src.Err(); err != nil {
		return nil, err
	}

	workers := cfg.workers
	if workers < 1 {
		workers = 1
	}

	results := make([]zoneResult, len(all))
	sem := semaphore.NewWeighted(int64(workers))
	waitGrp := sync.WaitGroup{}

	for i := range all {
		waitGrp.Add(1)
		go func(i int) {
			defer waitGrp.Done()

			sem.Acquire(context.Background(), 1)
			defer sem.Release(1)

			results[i] = processZone(all[i], values, weights, sts, storeValues, cfg.maxCells)
		}(i)
	}
	waitGrp.Wait()

	writer, err := output.NewCSVWriter(cfg.outPath, cfg.fieldName, sts)
	if err != nil {
		return nil, err
	}

	var failures []string
	for _, res := range results {
		if res.err != nil {
			fmt.Printf("❌  Zone %s failed: %v\n", res.id, res.err)
			failures = append(failures, res.id)
			continue
		}
		if res.skipped {
			continue
		}

		if err := writer.Write(res.id, res.results); err != nil {
			writer.Close()
			return failures, err
		}
	}

	return failures, writer.Close()
}

// processZone runs the full per-zone pipeline: shrink the value grid to
// the zone's bounding box, refine against the weighting grid, subdivide
// into memory-bounded tiles and accumulate statistics tile by tile.
func processZone(z zone, values, weights RasterSource, sts []stats.Stat, storeValues bool, maxCells int) zoneResult {
	res := zoneResult{id: z.id}

	valueExtent := values.Grid().Extent()
	if !z.bbox.Intersects(valueExtent) {
		res.skipped = true
		return res
	}

	processingGrid, err := values.Grid().ShrinkToFit(z.bbox.Intersection(valueExtent))
	if err != nil {
		res.err = err
		return res
	}

	if weights != nil {
		weightBox := z.bbox.Intersection(valueExtent).Intersection(weights.Grid().Extent())
		if !weightBox.Empty() {
			croppedWeights, err := weights.Grid().ShrinkToFit(weightBox)
			if err != nil {
				res.err = err
				return res
			}

			processingGrid, err = processingGrid.CommonGrid(croppedWeights)
			if err != nil {
				res.err = err
				return res
			}
		} else {
			// no weighting cell covers the zone: every weight is nodata,
			// so no cell contributes
			res.results = stats.New(storeValues).Results(sts)
			return res
		}
	}

	accumulator := stats.New(storeValues)

	sub := processingGrid.Subdivide(maxCells)
	for {
		tile, ok := sub.Next()
		if !ok {
			break
		}

		coverage, err := intersect.Coverage(z.geometry, tile.Infinite())
		if err != nil {
			res.err = err
			return res
		}

		tileValues, err := readOnGrid(values, tile)
		if err != nil {
			res.err = err
			return res
		}

		if weights == nil {
			if err := accumulator.Process(coverage, tileValues); err != nil {
				res.err = err
				return res
			}
			continue
		}

		tileWeights, err := readOnGrid(weights, tile)
		if err != nil {
			res.err = err
			return res
		}

		if err := accumulator.ProcessWeighted(coverage, tileValues, tileWeights); err != nil {
			res.err = err
			return res
		}
	}

	res.results = accumulator.Results(sts)
	return res
}

// readOnGrid reads the cells covering the tile from the source and
// reinterprets them onto the tile's grid
func readOnGrid(src RasterSource, tile grid.Grid) (*raster.Raster[float64], error) {
	window, err := src.ReadBox(tile.Extent())
	if err != nil {
		return nil, err
	}

	if window.Grid().Equal(tile) {
		return window, nil
	}

	nodata, ok := window.Nodata()
	if !ok {
		nodata = math.NaN()
	}

	view, err := raster.NewView(window, tile, nodata)
	if err != nil {
		return nil, err
	}

	return view.Materialize(), nil
}
