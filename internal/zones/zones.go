// Package zones streams polygon zones from vector datasets.
package zones

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
)

// Source yields a stream of zones, each with a string identifier and a
// polygonal geometry in the common coordinate space
type Source interface {
	// Next advances to the next zone and reports whether one is available
	Next() bool
	// ID returns the identifier of the current zone
	ID() string
	// BBox returns the bounding box of the current zone
	BBox() grid.Box
	// Geometry returns the polygon geometry of the current zone
	Geometry() orb.Geometry
	// Err returns the first error encountered while reading
	Err() error
}

// Open creates a source for the given path, chosen by file extension
// (.geojson/.json or .shp)
func Open(path, idField string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return NewGeoJSONSource(path, idField)
	case ".shp":
		return NewShapefileSource(path, idField)
	}

	return nil, fmt.Errorf("unsupported zone dataset format: %s", path)
}
