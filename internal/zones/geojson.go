package zones

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
)

// GeoJSONSource streams the features of a GeoJSON FeatureCollection
type GeoJSONSource struct {
	features []*geojson.Feature
	idField  string
	index    int
}

// NewGeoJSONSource reads a FeatureCollection from the given path. The
// zone identifier is taken from the named property, falling back to the
// feature id and finally the feature index.
func NewGeoJSONSource(path, idField string) (*GeoJSONSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	return &GeoJSONSource{features: fc.Features, idField: idField, index: -1}, nil
}

// Next advances to the next feature
func (s *GeoJSONSource) Next() bool {
	if s.index+1 >= len(s.features) {
		return false
	}

	s.index++
	return true
}

// ID returns the identifier of the current feature
func (s *GeoJSONSource) ID() string {
	f := s.features[s.index]

	if s.idField != "" {
		if v, ok := f.Properties[s.idField]; ok {
			return fmt.Sprintf("%v", v)
		}
	}

	if f.ID != nil {
		return fmt.Sprintf("%v", f.ID)
	}

	return fmt.Sprintf("%d", s.index)
}

// BBox returns the bounding box of the current feature
func (s *GeoJSONSource) BBox() grid.Box {
	return grid.FromBound(s.features[s.index].Geometry.Bound())
}

// Geometry returns the geometry of the current feature
func (s *GeoJSONSource) Geometry() orb.Geometry {
	return s.features[s.index].Geometry
}

// Err returns the first error encountered while reading
func (s *GeoJSONSource) Err() error { return nil }
