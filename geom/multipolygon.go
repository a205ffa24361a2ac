package geom

import (
	"strings"

	osm "github.com/omniscale/go-osm"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

type ringSet struct {
	rings     []orb.Ring
	fragments []orb.LineString
}

func (s *ringSet) add(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Polygon:
		if len(g) > 0 && len(g[0]) > 0 {
			s.rings = append(s.rings, g[0])
		}
	case orb.Ring:
		s.rings = append(s.rings, g)
	case orb.LineString:
		if closedLine(g) {
			ring := make(orb.Ring, len(g))
			copy(ring, g)
			s.rings = append(s.rings, ring)
		} else {
			s.fragments = append(s.fragments, g)
		}
	}
}

func (s *ringSet) close() []orb.Ring {
	return append(s.rings, closeRings(s.fragments)...)
}

func isInner(role string) bool {
	return strings.EqualFold(role, "inner")
}

// buildMultiPolygon assembles the way members of a multipolygon or boundary
// relation. All roles other than inner are treated as outer. Returns an
// empty MultiPolygon if no outer ring could be built.
func (r *Reconstructor) buildMultiPolygon(members []osm.Member) orb.Geometry {
	var outer, inner ringSet
	for _, m := range members {
		if m.Type != osm.WayMember {
			continue
		}
		g := r.Ways.Get(m.ID)
		if g == nil {
			continue
		}
		if isInner(m.Role) {
			inner.add(g)
		} else {
			outer.add(g)
		}
	}

	innerRings := inner.close()
	outerRings := outer.close()

	if len(outerRings) == 1 {
		polygon := orb.Polygon{outerRings[0]}
		polygon = append(polygon, innerRings...)
		return polygon
	}

	mp := make(orb.MultiPolygon, 0, len(outerRings))
	for _, shell := range outerRings {
		polygon := orb.Polygon{shell}
		for _, hole := range innerRings {
			if ringContainsRing(shell, hole) {
				polygon = append(polygon, hole)
			}
		}
		mp = append(mp, polygon)
	}
	return mp
}

// ringContainsRing returns true if all points of inner lie within or on
// the boundary of outer.
func ringContainsRing(outer, inner orb.Ring) bool {
	if len(inner) == 0 {
		return false
	}
	if !outer.Bound().Contains(inner.Bound().Min) || !outer.Bound().Contains(inner.Bound().Max) {
		return false
	}
	for _, pt := range inner {
		if !planar.RingContains(outer, pt) {
			return false
		}
	}
	return true
}

// buildMultiLineString collects the way members of a multilinestring or
// route relation. Polygons contribute their exterior ring. Members that are
// not resolved are dropped. Returns nil if no member resolved.
func (r *Reconstructor) buildMultiLineString(members []osm.Member) orb.Geometry {
	var mls orb.MultiLineString
	for _, m := range members {
		if m.Type != osm.WayMember {
			continue
		}
		switch g := r.Ways.Get(m.ID).(type) {
		case orb.LineString:
			mls = append(mls, g)
		case orb.Ring:
			mls = append(mls, orb.LineString(g))
		case orb.Polygon:
			if len(g) > 0 {
				mls = append(mls, orb.LineString(g[0]))
			}
		}
	}
	if len(mls) == 0 {
		return nil
	}
	return mls
}
