// Package stats accumulates zonal statistics from streams of
// (coverage, value, weight) cell triples.
package stats

import (
	"errors"
	"fmt"
)

// ErrUnknownStatistic is returned when a statistic name cannot be parsed
var ErrUnknownStatistic = errors.New("unknown statistic")

// Stat identifies one of the supported statistics
type Stat int

const (
	Count Stat = iota
	Sum
	Mean
	Min
	Max
	Mode
	Majority
	Minority
	Variety
	WeightedCount
	WeightedSum
	WeightedMean
	WeightedFraction
)

var statNames = map[Stat]string{
	Count:            "count",
	Sum:              "sum",
	Mean:             "mean",
	Min:              "min",
	Max:              "max",
	Mode:             "mode",
	Majority:         "majority",
	Minority:         "minority",
	Variety:          "variety",
	WeightedCount:    "weighted count",
	WeightedSum:      "weighted sum",
	WeightedMean:     "weighted mean",
	WeightedFraction: "weighted fraction",
}

func (s Stat) String() string {
	return statNames[s]
}

// Parse resolves a statistic name. Unknown names fail here, so a query
// for a parsed Stat can never hit an unknown kind.
func Parse(name string) (Stat, error) {
	for s, n := range statNames {
		if n == name {
			return s, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownStatistic, name)
}

// ParseAll resolves a list of statistic names
func ParseAll(names []string) ([]Stat, error) {
	parsed := make([]Stat, len(names))

	for i, name := range names {
		s, err := Parse(name)
		if err != nil {
			return nil, err
		}
		parsed[i] = s
	}

	return parsed, nil
}

// NeedsStoredValues reports whether the statistic requires per-value
// frequency accounting
func (s Stat) NeedsStoredValues() bool {
	switch s {
	case Mode, Majority, Minority, Variety, WeightedFraction:
		return true
	}
	return false
}

// StoredValuesNeeded reports whether any of the statistics requires
// per-value frequency accounting
func StoredValuesNeeded(sts []Stat) bool {
	for _, s := range sts {
		if s.NeedsStoredValues() {
			return true
		}
	}
	return false
}
