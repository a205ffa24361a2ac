package element

import (
	"strconv"

	osm "github.com/omniscale/go-osm"
	"github.com/paulmach/orb"
)

type Kind uint8

const (
	NODE Kind = iota
	WAY
	RELATION
)

var kindNames = map[Kind]string{
	NODE:     "node",
	WAY:      "way",
	RELATION: "relation",
}

func (k Kind) String() string { return kindNames[k] }

// Record is a filtered OSM primitive with its geometry, ready for
// transformation.
type Record struct {
	Kind  Kind
	OSMID int64
	// ID is the OSM reference of the primitive (node/42).
	ID       string
	Name     string
	Type     string
	Category string
	Tags     osm.Tags
	// Geometry in WGS84, nil if it could not be built.
	Geometry orb.Geometry
}

func NewRecord(kind Kind, id int64, tags osm.Tags, category string) *Record {
	return &Record{
		Kind:     kind,
		OSMID:    id,
		ID:       kind.String() + "/" + strconv.FormatInt(id, 10),
		Name:     tags["name"],
		Type:     tags["type"],
		Category: category,
		Tags:     tags,
	}
}

// Attributes returns the tags of the record together with osm_id, name,
// type and the category stored as categoryAttr.
func (r *Record) Attributes(categoryAttr string) map[string]string {
	attrs := make(map[string]string, len(r.Tags)+4)
	for k, v := range r.Tags {
		attrs[k] = v
	}
	attrs["osm_id"] = r.ID
	attrs["name"] = r.Name
	attrs["type"] = r.Type
	if categoryAttr != "" {
		attrs[categoryAttr] = r.Category
	}
	return attrs
}

// IDSet is a set of OSM ids. It is not safe for concurrent writes.
type IDSet map[int64]struct{}

func (s IDSet) Add(id int64) { s[id] = struct{}{} }

func (s IDSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Refs marks the ids of all members of kind t.
func (s IDSet) Refs(members []osm.Member, t osm.MemberType) int {
	n := 0
	for _, m := range members {
		if m.Type == t {
			s.Add(m.ID)
			n++
		}
	}
	return n
}
