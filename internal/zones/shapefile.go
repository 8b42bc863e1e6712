package zones

import (
	"fmt"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
)

// ShapefileSource streams the polygon records of an ESRI shapefile
type ShapefileSource struct {
	reader   *shp.Reader
	idField  int
	row      int
	geometry orb.Geometry
	err      error
}

// NewShapefileSource opens a shapefile. The zone identifier is taken
// from the named DBF field, falling back to the record index where the
// field is empty for a record or no field name is given. A shapefile
// without the named field is rejected with an error.
func NewShapefileSource(path, idField string) (*ShapefileSource, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, err
	}

	fieldIndex := -1
	if idField != "" {
		for i, field := range reader.Fields() {
			if strings.EqualFold(field.String(), idField) {
				fieldIndex = i
				break
			}
		}
		if fieldIndex < 0 {
			reader.Close()
			return nil, fmt.Errorf("shapefile has no field %q", idField)
		}
	}

	return &ShapefileSource{reader: reader, idField: fieldIndex, row: -1}, nil
}

// Next advances to the next polygon record
func (s *ShapefileSource) Next() bool {
	if s.err != nil {
		return false
	}

	for s.reader.Next() {
		row, shape := s.reader.Shape()
		s.row = row

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		s.geometry = polygonFromParts(poly)
		return true
	}

	s.err = s.reader.Err()
	return false
}

// ID returns the identifier of the current record
func (s *ShapefileSource) ID() string {
	if s.idField >= 0 {
		if v := s.reader.ReadAttribute(s.row, s.idField); v != "" {
			return v
		}
	}

	return fmt.Sprintf("%d", s.row)
}

// BBox returns the bounding box of the current record
func (s *ShapefileSource) BBox() grid.Box {
	return grid.FromBound(s.geometry.Bound())
}

// Geometry returns the geometry of the current record
func (s *ShapefileSource) Geometry() orb.Geometry { return s.geometry }

// Err returns the first error encountered while reading
func (s *ShapefileSource) Err() error { return s.err }

// Close releases the underlying files
func (s *ShapefileSource) Close() { s.reader.Close() }

// polygonFromParts converts a shapefile polygon record. Shapefile outer
// rings wind clockwise and holes counter-clockwise; every clockwise
// part starts a new polygon, every counter-clockwise part is a hole of
// the most recent one.
func polygonFromParts(p *shp.Polygon) orb.Geometry {
	var mp orb.MultiPolygon

	for i := 0; i < len(p.Parts); i++ {
		start := int(p.Parts[i])
		end := len(p.Points)
		if i+1 < len(p.Parts) {
			end = int(p.Parts[i+1])
		}

		ring := make(orb.Ring, 0, end-start)
		for _, pt := range p.Points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}

		if ring.Orientation() == orb.CW || len(mp) == 0 {
			mp = append(mp, orb.Polygon{ring})
		} else {
			mp[len(mp)-1] = append(mp[len(mp)-1], ring)
		}
	}

	if len(mp) == 1 {
		return mp[0]
	}

	return mp
}
