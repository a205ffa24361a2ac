package reader

import (
	"context"
	"strings"
	"testing"
	"time"

	osm "github.com/omniscale/go-osm"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdatalake/osmwrangle/cache"
	"github.com/smartdatalake/osmwrangle/element"
	"github.com/smartdatalake/osmwrangle/filter"
	"github.com/smartdatalake/osmwrangle/stats"
)

func newTestReader(t *testing.T, opts Options) *Reader {
	t.Helper()
	c := cache.NewGeometryCache(t.TempDir())
	require.NoError(t, c.Open(cache.MemoryKind))
	t.Cleanup(func() { c.Clear() })
	return New(opts, c, stats.NewStatistics())
}

func testFilters(t *testing.T) *filter.Forest {
	t.Helper()
	f, err := filter.Parse(strings.NewReader("amenity=restaurant EAT_RESTAURANT\nbuilding=yes BUILDING_YES\n"))
	require.NoError(t, err)
	return f
}

func makeNodes(ids ...int64) []osm.Node {
	nds := make([]osm.Node, len(ids))
	for i, id := range ids {
		nds[i] = osm.Node{Element: osm.Element{ID: id}, Long: float64(id), Lat: float64(id % 2)}
	}
	return nds
}

func elem(id int64, tags osm.Tags) *osm.Element {
	return &osm.Element{ID: id, Tags: tags}
}

func TestNewRecord(t *testing.T) {
	r := newTestReader(t, Options{Filters: testFilters(t)})

	rec := r.newRecord(element.NODE, elem(1, osm.Tags{"amenity": "restaurant", "name": "Ta Nisia"}))
	require.NotNil(t, rec)
	assert.Equal(t, "node/1", rec.ID)
	assert.Equal(t, "EAT_RESTAURANT", rec.Category)
	assert.Equal(t, "Ta Nisia", rec.Name)

	// unnamed
	assert.Nil(t, r.newRecord(element.NODE, elem(2, osm.Tags{"amenity": "restaurant"})))
	// no category
	assert.Nil(t, r.newRecord(element.NODE, elem(3, osm.Tags{"amenity": "bank", "name": "B"})))
	// untagged elements are not counted
	assert.Nil(t, r.newRecord(element.NODE, elem(4, nil)))
	assert.Equal(t, int64(2), r.stats.Rejected.Value())

	r = newTestReader(t, Options{KeepUnnamed: true})
	rec = r.newRecord(element.WAY, elem(5, osm.Tags{"highway": "primary"}))
	require.NotNil(t, rec)
	assert.Equal(t, "way", rec.Category)
	assert.Equal(t, "way/5", rec.ID)
}

func TestNewRecordMetadata(t *testing.T) {
	md := &osm.Metadata{
		UserID:    42,
		UserName:  "mapper",
		Version:   3,
		Timestamp: time.Date(2019, 5, 1, 12, 0, 0, 0, time.UTC),
		Changeset: 1234,
	}
	e := &osm.Element{ID: 1, Tags: osm.Tags{"name": "N"}, Metadata: md}

	r := newTestReader(t, Options{})
	rec := r.newRecord(element.NODE, e)
	require.NotNil(t, rec)
	assert.NotContains(t, rec.Tags, element.MetadataVersion)

	r = newTestReader(t, Options{Metadata: true})
	rec = r.newRecord(element.NODE, &osm.Element{ID: 1, Tags: osm.Tags{"name": "N"}, Metadata: md})
	require.NotNil(t, rec)
	assert.Equal(t, osm.Tags{
		"name":          "N",
		"osm_version":   "3",
		"osm_timestamp": "2019-05-01T12:00:00Z",
		"osm_changeset": "1234",
		"osm_uid":       "42",
		"osm_user":      "mapper",
	}, rec.Tags)

	// elements without metadata
	rec = r.newRecord(element.NODE, elem(2, osm.Tags{"name": "M"}))
	require.NotNil(t, rec)
	assert.Len(t, rec.Tags, 1)
}

func TestWay(t *testing.T) {
	r := newTestReader(t, Options{ClosedAsPolygons: true, KeepUnnamed: true, Filters: testFilters(t)})
	for _, id := range []int64{1, 2, 3, 4} {
		r.nodes.Add(id)
	}
	r.ways.Add(20)
	r.storeCoords(makeNodes(1, 2, 3, 4, 5))
	assert.Equal(t, 4, r.cache.Nodes.Size())

	rec := r.way(&osm.Way{Element: osm.Element{ID: 10, Tags: osm.Tags{"building": "yes"}}, Refs: []int64{1, 2, 3, 1}})
	require.NotNil(t, rec)
	assert.Equal(t, orb.Polygon{{{1, 1}, {2, 0}, {3, 1}, {1, 1}}}, rec.Geometry)
	// records are not stored unless referenced
	assert.False(t, r.cache.Ways.ContainsKey(10))

	// referenced way without category
	rec = r.way(&osm.Way{Element: osm.Element{ID: 20}, Refs: []int64{2, 3, 9}})
	assert.Nil(t, rec)
	assert.Equal(t, orb.LineString{{2, 0}, {3, 1}}, r.cache.Ways.Get(20))

	// neither record nor referenced
	assert.Nil(t, r.way(&osm.Way{Element: osm.Element{ID: 30}, Refs: []int64{1, 2}}))
	assert.False(t, r.cache.Ways.ContainsKey(30))
}

func TestRelationRetry(t *testing.T) {
	r := newTestReader(t, Options{Filters: testFilters(t)})
	rel := &osm.Relation{
		Element: osm.Element{ID: 7, Tags: osm.Tags{"type": "multipolygon", "building": "yes", "name": "Stoa"}},
		Members: []osm.Member{{ID: 70, Type: osm.WayMember, Role: "outer"}},
	}

	assert.Nil(t, r.relation(rel, false))
	assert.Equal(t, int64(1), r.stats.Deferred.Value())

	ring := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	require.NoError(t, r.cache.Ways.Put(70, orb.Polygon{ring}))

	var recs []*element.Record
	require.NoError(t, r.retryDeferred(context.Background(), func(rec *element.Record) {
		recs = append(recs, rec)
	}))
	require.Len(t, recs, 1)
	assert.Equal(t, "relation/7", recs[0].ID)
	assert.Equal(t, orb.Polygon{ring}, recs[0].Geometry)
	assert.Equal(t, int64(1), r.stats.Retried.Value())
	assert.Equal(t, int64(0), r.stats.Rejected.Value())
}

func TestRelationStillIncomplete(t *testing.T) {
	r := newTestReader(t, Options{Filters: testFilters(t)})
	r.relations.Add(8)
	rel := &osm.Relation{
		Element: osm.Element{ID: 8, Tags: osm.Tags{"amenity": "restaurant", "name": "R"}},
		Members: []osm.Member{{ID: 1, Type: osm.NodeMember}, {ID: 81, Type: osm.RelationMember}},
	}
	assert.Nil(t, r.relation(rel, false))

	var recs []*element.Record
	require.NoError(t, r.retryDeferred(context.Background(), func(rec *element.Record) {
		recs = append(recs, rec)
	}))
	assert.Empty(t, recs)
	assert.Equal(t, int64(1), r.stats.Rejected.Value())
	// referenced relations are stored as empty marker
	assert.True(t, r.cache.Relations.ContainsKey(8))
	assert.Nil(t, r.cache.Relations.Get(8))

	// retried only once
	require.NoError(t, r.retryDeferred(context.Background(), func(*element.Record) {}))
	assert.Equal(t, int64(1), r.stats.Retried.Value())
}

func TestRelationMembers(t *testing.T) {
	r := newTestReader(t, Options{})
	r.storeCoords(nil)
	r.nodes.Add(1)
	r.nodes.Add(2)
	r.storeCoords(makeNodes(1, 2))

	rel := &osm.Relation{
		Element: osm.Element{ID: 9, Tags: osm.Tags{"type": "site", "name": "Site"}},
		Members: []osm.Member{{ID: 1, Type: osm.NodeMember}, {ID: 2, Type: osm.NodeMember}},
	}
	rec := r.relation(rel, false)
	require.NotNil(t, rec)
	assert.Equal(t, "relation", rec.Category)
	assert.Equal(t, orb.Collection{orb.Point{1, 1}, orb.Point{2, 0}}, rec.Geometry)

	// unnamed relation without reference is rejected without building
	assert.Nil(t, r.relation(&osm.Relation{Element: osm.Element{ID: 10, Tags: osm.Tags{"type": "site"}}}, false))
	assert.Equal(t, int64(1), r.stats.Rejected.Value())
	assert.Equal(t, int64(0), r.stats.Deferred.Value())
}

func TestReadMissingFile(t *testing.T) {
	r := newTestReader(t, Options{})
	err := r.Scan(context.Background(), "/does/not/exist.pbf")
	assert.Error(t, err)
}
