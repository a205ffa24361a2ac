// Package geom builds geometries for OSM nodes, ways and relations.
//
// Member geometries are looked up by id from previously populated
// geometry stores. Relations are assembled into (multi)linestrings,
// (multi)polygons or geometry collections, depending on their type tag.
package geom

import (
	"github.com/paulmach/orb"
)

// Lookup is the read side of a geometry store. Get returns nil for
// unknown ids and for ids stored with an empty geometry.
type Lookup interface {
	Get(id int64) orb.Geometry
}

// IsEmpty returns true for nil geometries and geometries without any
// coordinate.
func IsEmpty(g orb.Geometry) bool {
	switch g := g.(type) {
	case nil:
		return true
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(g) == 0
	case orb.LineString:
		return len(g) == 0
	case orb.Ring:
		return len(g) == 0
	case orb.Polygon:
		return len(g) == 0 || len(g[0]) == 0
	case orb.MultiLineString:
		for _, ls := range g {
			if len(ls) > 0 {
				return false
			}
		}
		return true
	case orb.MultiPolygon:
		for _, p := range g {
			if !IsEmpty(p) {
				return false
			}
		}
		return true
	case orb.Collection:
		for _, c := range g {
			if !IsEmpty(c) {
				return false
			}
		}
		return true
	case orb.Bound:
		return false
	}
	return true
}

// TypeName returns the simple feature name of the geometry type,
// e.g. Polygon or GeometryCollection.
func TypeName(g orb.Geometry) string {
	switch g.(type) {
	case orb.Point:
		return "Point"
	case orb.MultiPoint:
		return "MultiPoint"
	case orb.LineString:
		return "LineString"
	case orb.Ring:
		return "LinearRing"
	case orb.Polygon, orb.Bound:
		return "Polygon"
	case orb.MultiLineString:
		return "MultiLineString"
	case orb.MultiPolygon:
		return "MultiPolygon"
	case orb.Collection:
		return "GeometryCollection"
	}
	return "Geometry"
}

// IsPolygonal returns true for polygons and multipolygons.
func IsPolygonal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon, orb.Ring, orb.Bound:
		return true
	}
	return false
}

// IsLineal returns true for linestrings and multilinestrings.
func IsLineal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.LineString, orb.MultiLineString:
		return true
	}
	return false
}

// NodePoint returns the point geometry of a node.
func NodePoint(long, lat float64) orb.Point {
	return orb.Point{long, lat}
}

// BuildWay returns the geometry of a way from the points of its node refs.
// Nodes missing in the lookup are skipped. A closed way becomes a Polygon
// if closedAsPolygon is set and it has more than three nodes, otherwise
// the way is a LineString, or a Point if only one node resolved.
// Returns nil if no node resolved.
func BuildWay(refs []int64, nodes Lookup, closedAsPolygon bool) orb.Geometry {
	ls := make(orb.LineString, 0, len(refs))
	for _, ref := range refs {
		pt, ok := nodes.Get(ref).(orb.Point)
		if !ok {
			continue
		}
		ls = append(ls, pt)
	}
	switch {
	case len(ls) == 0:
		return nil
	case len(ls) == 1:
		return ls[0]
	case closedAsPolygon && len(ls) > 3 && isClosed(refs) && ls[0] == ls[len(ls)-1]:
		return orb.Polygon{orb.Ring(ls)}
	}
	return ls
}

func isClosed(refs []int64) bool {
	return len(refs) >= 4 && refs[0] == refs[len(refs)-1]
}

// closedLine returns true if ls starts and ends at the same point and
// has enough points to form a ring.
func closedLine(ls orb.LineString) bool {
	return len(ls) >= 4 && ls[0] == ls[len(ls)-1]
}
