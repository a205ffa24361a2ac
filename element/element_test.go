package element

import (
	"testing"

	osm "github.com/omniscale/go-osm"
)

func TestNewRecord(t *testing.T) {
	r := NewRecord(WAY, 42, osm.Tags{"name": "Cafe", "amenity": "cafe", "type": "x"}, "EAT/DRINK_CAFE")
	if r.ID != "way/42" {
		t.Error("unexpected id", r.ID)
	}
	if r.Name != "Cafe" || r.Type != "x" {
		t.Error("unexpected name/type", r)
	}

	attrs := r.Attributes("OSM_Category")
	if attrs["osm_id"] != "way/42" || attrs["OSM_Category"] != "EAT/DRINK_CAFE" || attrs["amenity"] != "cafe" {
		t.Error("unexpected attributes", attrs)
	}
	if len(attrs) != 5 {
		t.Error("unexpected attributes", attrs)
	}
	// tags are not modified
	if _, ok := r.Tags["osm_id"]; ok {
		t.Error("tags modified")
	}
}

func TestIDSet(t *testing.T) {
	s := IDSet{}
	s.Add(1)
	n := s.Refs([]osm.Member{
		{ID: 10, Type: osm.WayMember},
		{ID: 11, Type: osm.NodeMember},
		{ID: 12, Type: osm.WayMember},
	}, osm.WayMember)
	if n != 2 {
		t.Error("unexpected count", n)
	}
	for _, id := range []int64{1, 10, 12} {
		if !s.Contains(id) {
			t.Error("missing", id)
		}
	}
	if s.Contains(11) {
		t.Error("node member in way set")
	}
}
