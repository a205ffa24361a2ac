package geom

import (
	"strings"

	osm "github.com/omniscale/go-osm"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ErrIncomplete is returned by BuildRelation when a member geometry is not
// available yet. The relation can be retried after all other relations
// were processed.
var ErrIncomplete = errors.New("relation has unresolved members")

// Reconstructor builds relation geometries from the geometries of their
// members.
type Reconstructor struct {
	Nodes     Lookup
	Ways      Lookup
	Relations Lookup
}

// BuildRelation returns the geometry of rel.
//
// Relations of type multilinestring or route are built from their way
// members. Relations of type multipolygon or boundary are assembled from
// the inner and outer rings of their way members. All other relations, and
// relations where the typed assembly yields nothing, become the geometry of
// their single member or a GeometryCollection of all members.
func (r *Reconstructor) BuildRelation(rel *osm.Relation) (g orb.Geometry, err error) {
	defer func() {
		if p := recover(); p != nil {
			g = nil
			err = errors.Errorf("building relation %d: %v", rel.ID, p)
		}
	}()

	switch strings.ToLower(rel.Tags["type"]) {
	case "multilinestring", "route":
		if g := r.buildMultiLineString(rel.Members); !IsEmpty(g) {
			return g, nil
		}
	case "multipolygon", "boundary":
		if g := r.buildMultiPolygon(rel.Members); !IsEmpty(g) {
			return g, nil
		}
	}
	return r.buildCollection(rel)
}

func (r *Reconstructor) member(m osm.Member) orb.Geometry {
	var lookup Lookup
	switch m.Type {
	case osm.NodeMember:
		lookup = r.Nodes
	case osm.WayMember:
		lookup = r.Ways
	case osm.RelationMember:
		lookup = r.Relations
	}
	if lookup == nil {
		return nil
	}
	return lookup.Get(m.ID)
}

func (r *Reconstructor) buildCollection(rel *osm.Relation) (orb.Geometry, error) {
	if len(rel.Members) == 0 {
		return nil, errors.Errorf("relation %d has no members", rel.ID)
	}
	geoms := make(orb.Collection, 0, len(rel.Members))
	for _, m := range rel.Members {
		g := r.member(m)
		if g == nil {
			return nil, ErrIncomplete
		}
		geoms = append(geoms, g)
	}
	if len(geoms) == 1 {
		return geoms[0], nil
	}
	return geoms, nil
}
