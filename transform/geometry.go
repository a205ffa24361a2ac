package transform

import (
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/geom"
	"github.com/smartdatalake/osmwrangle/rdf"
)

// GeoOntology selects the encoding of geometries.
type GeoOntology string

const (
	GeoSPARQL GeoOntology = "GeoSPARQL"
	WGS84Pos  GeoOntology = "wgs84_pos"
	Virtuoso  GeoOntology = "Virtuoso"
)

const (
	defaultGeoHashPrecision = 8
	geomSuffix              = "/geom"
	crsPrefix               = "http://www.opengis.net/def/crs/EPSG/0/"
)

func ParseGeoOntology(s string) (GeoOntology, error) {
	for _, o := range []GeoOntology{GeoSPARQL, WGS84Pos, Virtuoso} {
		if strings.EqualFold(s, string(o)) {
			return o, nil
		}
	}
	if s == "" {
		return GeoSPARQL, nil
	}
	return "", errors.Errorf("unknown geometry ontology %q", s)
}

// Area returns the area of the WGS84 geometry in square meters.
func Area(g orb.Geometry) float64 { return geo.Area(g) }

// Length returns the length of the WGS84 geometry in meters. This is the
// perimeter for polygons.
func Length(g orb.Geometry) float64 { return geo.Length(g) }

func Centroid(g orb.Geometry) orb.Point {
	c, _ := planar.CentroidArea(g)
	return c
}

// GeoHash returns the geohash of p with precision characters.
func GeoHash(p orb.Point, precision uint) string {
	return geohash.EncodeWithPrecision(p.Lat(), p.Lon(), precision)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// addGeometricAttrs computes the attributes declared with geometry
// functions into row. wgs is the geometry in WGS84.
func (g *Generator) addGeometricAttrs(row map[string]string, wgs orb.Geometry) {
	m := g.mapping
	first := func(fn string) string {
		if keys := m.GeometricAttrs(fn); len(keys) > 0 {
			return keys[0]
		}
		return ""
	}
	if geom.IsPolygonal(wgs) {
		if k := first(funcArea); k != "" {
			row[k] = formatFloat(Area(wgs))
		}
	}
	if geom.IsPolygonal(wgs) || geom.IsLineal(wgs) {
		if k := first(funcLength); k != "" {
			row[k] = formatFloat(Length(wgs))
		}
	}

	c := Centroid(wgs)
	if k := first(funcLongitude); k != "" {
		row[k] = formatFloat(c.Lon())
	}
	if k := first(funcLatitude); k != "" {
		row[k] = formatFloat(c.Lat())
	}
	if k := first(funcGeoHash); k != "" {
		precision := uint(defaultGeoHashPrecision)
		if args := m.Find(k).Generate.Args; len(args) > 0 {
			if p, err := strconv.ParseUint(strings.Trim(args[0], `"`), 10, 8); err == nil && p > 0 {
				precision = uint(p)
			}
		}
		row[k] = GeoHash(c, precision)
	}
}

// geometryTriples encodes the geometry of the feature. target is the
// geometry in the output SRID, wgs in WGS84.
func (g *Generator) geometryTriples(uri string, target, wgs orb.Geometry) []rdf.Triple {
	var ts []rdf.Triple
	switch g.conf.GeoOntology {
	case WGS84Pos:
		c := Centroid(wgs)
		ts = append(ts,
			triple(uri, rdf.NsPos+"long", rdf.Typed(formatFloat(c.Lon()), rdf.NsXSD+"float")),
			triple(uri, rdf.NsPos+"lat", rdf.Typed(formatFloat(c.Lat()), rdf.NsXSD+"float")),
		)
	case Virtuoso:
		ts = append(ts,
			triple(uri, rdf.NsPos+"Geometry", rdf.Typed(wkt.MarshalString(target), rdf.NsVirt+"Geometry")),
		)
	default:
		geomURI := uri + geomSuffix
		literal := "<" + crsPrefix + strconv.Itoa(g.conf.SRID) + "> " + wkt.MarshalString(target)
		ts = append(ts,
			triple(uri, rdf.NsGeo+"hasGeometry", rdf.IRI(geomURI)),
			triple(geomURI, rdf.Type, rdf.IRI(rdf.NsSF+geom.TypeName(target))),
			triple(geomURI, rdf.NsGeo+"asWKT", rdf.Typed(literal, rdf.NsGeo+"wktLiteral")),
		)
	}
	return append(ts, triple(uri, rdf.Type, rdf.IRI(g.conf.GeometryNS+"Feature")))
}
