package stats

import (
	"fmt"
	"math"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
	"github.com/gruppe-adler/zonal-utils/internal/raster"
)

// RasterStats accumulates statistics over cells weighted by the fraction
// of each cell covered by a zone. Accumulation is additive: processing
// disjoint tiles of the same zone yields the same results as processing
// their union at once.
type RasterStats struct {
	storeValues bool

	sumF   float64 // sum of coverage fractions
	sumFV  float64 // sum of coverage * value
	sumFW  float64 // sum of coverage * weight
	sumFVW float64 // sum of coverage * value * weight

	min float64
	max float64

	// allocated on first use; the value -> coverage mapping dominates
	// memory for large rasters
	freq  map[float64]float64
	wfreq map[float64]float64
}

// New creates an accumulator. storeValues must be true iff a requested
// statistic needs per-value accounting.
func New(storeValues bool) *RasterStats {
	return &RasterStats{
		storeValues: storeValues,
		min:         math.NaN(),
		max:         math.NaN(),
	}
}

// Process ingests one tile of coverage fractions and values, with an
// implicit weight of 1 for every cell.
func (s *RasterStats) Process(coverage *raster.Raster[float32], values *raster.Raster[float64]) error {
	return s.process(coverage, values, nil)
}

// ProcessWeighted ingests one tile of coverage fractions, values and
// weights.
func (s *RasterStats) ProcessWeighted(coverage *raster.Raster[float32], values, weights *raster.Raster[float64]) error {
	if weights == nil {
		return s.process(coverage, values, nil)
	}
	return s.process(coverage, values, weights)
}

func (s *RasterStats) process(coverage *raster.Raster[float32], values, weights *raster.Raster[float64]) error {
	if !coverage.Grid().Equal(values.Grid()) {
		return fmt.Errorf("%w: coverage grid %v does not match value grid %v",
			grid.ErrIncompatibleGrids, coverage.Grid().Extent(), values.Grid().Extent())
	}
	if weights != nil && !coverage.Grid().Equal(weights.Grid()) {
		return fmt.Errorf("%w: coverage grid %v does not match weight grid %v",
			grid.ErrIncompatibleGrids, coverage.Grid().Extent(), weights.Grid().Extent())
	}

	for r := 0; r < coverage.Rows(); r++ {
		for c := 0; c < coverage.Cols(); c++ {
			f := float64(coverage.At(r, c))
			if f == 0 {
				continue
			}

			v := values.At(r, c)
			if values.IsNodata(v) {
				continue
			}

			w := 1.0
			if weights != nil {
				w = weights.At(r, c)
				if weights.IsNodata(w) {
					continue
				}
			}

			s.sumF += f
			s.sumFV += f * v
			s.sumFW += f * w
			s.sumFVW += f * v * w

			if math.IsNaN(s.min) || v < s.min {
				s.min = v
			}
			if math.IsNaN(s.max) || v > s.max {
				s.max = v
			}

			if s.storeValues {
				if s.freq == nil {
					s.freq = make(map[float64]float64)
					s.wfreq = make(map[float64]float64)
				}
				s.freq[v] += f
				s.wfreq[v] += f * w
			}
		}
	}

	return nil
}

// Count returns the fractional number of covered cells
func (s *RasterStats) Count() float64 { return s.sumF }

// Sum returns the coverage-weighted sum of cell values
func (s *RasterStats) Sum() float64 { return s.sumFV }

// Mean returns the coverage-weighted mean of cell values.
// NaN if no cell contributed.
func (s *RasterStats) Mean() float64 { return s.sumFV / s.sumF }

// Min returns the smallest contributing cell value.
// NaN if no cell contributed.
func (s *RasterStats) Min() float64 { return s.min }

// Max returns the largest contributing cell value.
// NaN if no cell contributed.
func (s *RasterStats) Max() float64 { return s.max }

// Variety returns the number of distinct contributing cell values
func (s *RasterStats) Variety() int { return len(s.freq) }

// Mode returns the value with the largest accumulated coverage.
// Ties break toward the smaller value. NaN if no cell contributed.
func (s *RasterStats) Mode() float64 {
	mode := math.NaN()
	best := 0.0

	for v, f := range s.freq {
		if math.IsNaN(mode) || f > best || (f == best && v < mode) {
			mode = v
			best = f
		}
	}

	return mode
}

// Minority returns the value with the smallest non-zero accumulated
// coverage. Ties break toward the smaller value. NaN if no cell
// contributed.
func (s *RasterStats) Minority() float64 {
	minority := math.NaN()
	best := 0.0

	for v, f := range s.freq {
		if math.IsNaN(minority) || f < best || (f == best && v < minority) {
			minority = v
			best = f
		}
	}

	return minority
}

// WeightedCount returns the coverage- and weight-weighted cell count
func (s *RasterStats) WeightedCount() float64 { return s.sumFW }

// WeightedSum returns the coverage- and weight-weighted sum of values
func (s *RasterStats) WeightedSum() float64 { return s.sumFVW }

// WeightedMean returns the weighted mean of cell values.
// NaN if no cell contributed.
func (s *RasterStats) WeightedMean() float64 { return s.sumFVW / s.sumFW }

// WeightedFraction returns the ratio of weighted to unweighted count.
// NaN if no cell contributed.
func (s *RasterStats) WeightedFraction() float64 { return s.sumFW / s.sumF }

// Get returns the value of a single statistic
func (s *RasterStats) Get(stat Stat) float64 {
	switch stat {
	case Count:
		return s.Count()
	case Sum:
		return s.Sum()
	case Mean:
		return s.Mean()
	case Min:
		return s.Min()
	case Max:
		return s.Max()
	case Mode, Majority:
		return s.Mode()
	case Minority:
		return s.Minority()
	case Variety:
		return float64(s.Variety())
	case WeightedCount:
		return s.WeightedCount()
	case WeightedSum:
		return s.WeightedSum()
	case WeightedMean:
		return s.WeightedMean()
	case WeightedFraction:
		return s.WeightedFraction()
	}

	panic(fmt.Sprintf("unhandled statistic %d", stat))
}

// Results serializes the requested statistics as a name -> value map.
// The "count" key is always present.
func (s *RasterStats) Results(sts []Stat) map[string]float64 {
	results := make(map[string]float64, len(sts)+1)
	results[Count.String()] = s.Count()

	for _, stat := range sts {
		results[stat.String()] = s.Get(stat)
	}

	return results
}
