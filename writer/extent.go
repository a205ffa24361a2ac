package writer

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/transform"
)

// Extent limits the records to an area in WGS84.
type Extent struct {
	geom  orb.Geometry
	bound orb.Bound
}

// LoadExtent returns the extent of a GeoJSON file if s ends with .geojson
// or .json, otherwise s is parsed as WKT.
func LoadExtent(s string) (*Extent, error) {
	switch strings.ToLower(filepath.Ext(s)) {
	case ".geojson", ".json":
		f, err := os.Open(s)
		if err != nil {
			return nil, errors.Wrap(err, "opening spatial extent")
		}
		defer f.Close()
		return ParseGeoJSONExtent(f)
	}
	return ParseExtent(s)
}

// ParseExtent parses a WKT polygon or multipolygon.
func ParseExtent(s string) (*Extent, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "parsing spatial extent")
	}
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return nil, errors.Errorf("spatial extent is a %s, not a polygon", g.GeoJSONType())
	}
	return &Extent{geom: g, bound: g.Bound()}, nil
}

// ParseGeoJSONExtent reads a FeatureCollection, a Feature or a bare
// geometry. All polygons are combined, other geometries are ignored.
func ParseGeoJSONExtent(r io.Reader) (*Extent, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading spatial extent")
	}
	var geoms []orb.Geometry
	if fc, err := geojson.UnmarshalFeatureCollection(b); err == nil && len(fc.Features) > 0 {
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	} else if f, err := geojson.UnmarshalFeature(b); err == nil && f.Geometry != nil {
		geoms = append(geoms, f.Geometry)
	} else if g, err := geojson.UnmarshalGeometry(b); err == nil && g.Geometry() != nil {
		geoms = append(geoms, g.Geometry())
	} else {
		return nil, errors.New("spatial extent is not valid GeoJSON")
	}

	var mp orb.MultiPolygon
	for _, g := range geoms {
		switch g := g.(type) {
		case orb.Polygon:
			mp = append(mp, g)
		case orb.MultiPolygon:
			mp = append(mp, g...)
		}
	}
	if len(mp) == 0 {
		return nil, errors.New("spatial extent contains no polygons")
	}
	if len(mp) == 1 {
		return &Extent{geom: mp[0], bound: mp[0].Bound()}, nil
	}
	return &Extent{geom: mp, bound: mp.Bound()}, nil
}

// Contains returns true if the centroid of g is inside the extent.
func (e *Extent) Contains(g orb.Geometry) bool {
	c := transform.Centroid(g)
	if !e.bound.Contains(c) {
		return false
	}
	switch ext := e.geom.(type) {
	case orb.Polygon:
		return planar.PolygonContains(ext, c)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(ext, c)
	}
	return false
}
