package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	osm "github.com/omniscale/go-osm"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdatalake/osmwrangle/classification"
	"github.com/smartdatalake/osmwrangle/element"
	"github.com/smartdatalake/osmwrangle/filter"
	"github.com/smartdatalake/osmwrangle/proj"
	"github.com/smartdatalake/osmwrangle/rdf"
	"github.com/smartdatalake/osmwrangle/stats"
	"github.com/smartdatalake/osmwrangle/transform"
)

type memorySink struct {
	mu      sync.Mutex
	batches [][]rdf.Triple
	fail    error
}

func (s *memorySink) Write(ts []rdf.Triple) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.batches = append(s.batches, append([]rdf.Triple(nil), ts...))
	return nil
}

func (s *memorySink) Close() error { return nil }

func (s *memorySink) triples() []rdf.Triple {
	var all []rdf.Triple
	for _, b := range s.batches {
		all = append(all, b...)
	}
	return all
}

func makeRecord(id int64, name, category string, g orb.Geometry) *element.Record {
	rec := element.NewRecord(element.NODE, id, osm.Tags{"name": name, "amenity": "cafe"}, category)
	rec.Geometry = g
	return rec
}

func run(t *testing.T, sink rdf.Sink, h *classification.Hierarchy, opts Options, recs ...*element.Record) (*stats.Statistics, error) {
	t.Helper()
	gen, err := transform.NewGenerator(transform.Config{}, nil, nil, nil)
	require.NoError(t, err)
	progress := stats.NewStatistics()
	records := make(chan *element.Record)
	w := NewRecordWriter(records, gen, h, sink, progress, opts)
	w.Start()
	for _, rec := range recs {
		records <- rec
	}
	close(records)
	return progress, w.Wait()
}

func TestRecordWriter(t *testing.T) {
	sink := &memorySink{}
	extent, err := ParseExtent("POLYGON((20 35, 30 35, 30 42, 20 42, 20 35))")
	require.NoError(t, err)

	progress, err := run(t, sink, nil, Options{Workers: 2, BatchSize: 1, Extent: extent},
		makeRecord(1, "A", "EAT_CAFE", orb.Point{23.7, 37.9}),
		makeRecord(2, "B", "EAT_CAFE", orb.Point{23.8, 38.0}),
		makeRecord(3, "outside", "EAT_CAFE", orb.Point{2.3, 48.8}),
		makeRecord(4, "no geometry", "EAT_CAFE", nil),
		makeRecord(5, "no category", "", orb.Point{23.7, 37.9}),
	)
	require.NoError(t, err)

	assert.Equal(t, int64(2), progress.Records.Value())
	assert.Equal(t, int64(3), progress.Rejected.Value())
	assert.Equal(t, int64(len(sink.triples())), progress.Triples.Value())

	// one batch per record, each with the triples of one subject
	require.Len(t, sink.batches, 2)
	for _, b := range sink.batches {
		uri := b[0].Subject
		for _, tr := range b {
			assert.True(t, strings.HasPrefix(tr.Subject, uri), tr.Subject)
		}
	}
}

func TestRecordWriterBatches(t *testing.T) {
	sink := &memorySink{}
	var recs []*element.Record
	for i := int64(1); i <= 5; i++ {
		recs = append(recs, makeRecord(i, "X", "EAT_CAFE", orb.Point{1, 1}))
	}
	_, err := run(t, sink, nil, Options{Workers: 1, BatchSize: 2}, recs...)
	require.NoError(t, err)
	assert.Len(t, sink.batches, 3)
}

func TestRecordWriterSinkError(t *testing.T) {
	sink := &memorySink{fail: errors.New("disk full")}
	_, err := run(t, sink, nil, Options{Workers: 1, BatchSize: 1},
		makeRecord(1, "A", "EAT_CAFE", orb.Point{1, 1}))
	assert.EqualError(t, err, "disk full")
}

func TestWriteCategories(t *testing.T) {
	forest, err := filter.Parse(strings.NewReader("amenity=cafe EAT_CAFE\n"))
	require.NoError(t, err)
	h, err := classification.FromFilter(forest, classification.Options{})
	require.NoError(t, err)

	sink := &memorySink{}
	gen, err := transform.NewGenerator(transform.Config{}, nil, nil, nil)
	require.NoError(t, err)
	w := NewRecordWriter(nil, gen, h, sink, nil, Options{})
	require.NoError(t, w.WriteCategories())
	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 2*3+1)

	w = NewRecordWriter(nil, gen, nil, sink, nil, Options{})
	require.NoError(t, w.WriteCategories())
	assert.Len(t, sink.batches, 1)
}

func TestExtent(t *testing.T) {
	e, err := ParseExtent("MULTIPOLYGON(((0 0, 10 0, 10 10, 0 10, 0 0)),((20 20, 30 20, 30 30, 20 30, 20 20)))")
	require.NoError(t, err)
	assert.True(t, e.Contains(orb.Point{5, 5}))
	assert.True(t, e.Contains(orb.LineString{{21, 21}, {29, 29}}))
	assert.False(t, e.Contains(orb.Point{15, 15}))

	_, err = ParseExtent("POINT(1 2)")
	assert.Error(t, err)
	_, err = ParseExtent("POLYGON((1 2")
	assert.Error(t, err)
}

func TestGeoJSONExtent(t *testing.T) {
	e, err := ParseGeoJSONExtent(strings.NewReader(`{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]}},
		{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [50, 50]}},
		{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[20, 20], [30, 20], [30, 30], [20, 30], [20, 20]]]}}
	]}`))
	require.NoError(t, err)
	assert.True(t, e.Contains(orb.Point{5, 5}))
	assert.True(t, e.Contains(orb.Point{25, 25}))
	assert.False(t, e.Contains(orb.Point{50, 50}))

	e, err = ParseGeoJSONExtent(strings.NewReader(`{"type": "Polygon", "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]}`))
	require.NoError(t, err)
	assert.True(t, e.Contains(orb.Point{5, 5}))

	_, err = ParseGeoJSONExtent(strings.NewReader(`{"type": "Point", "coordinates": [1, 2]}`))
	assert.Error(t, err)
	_, err = ParseGeoJSONExtent(strings.NewReader(`{"type": `))
	assert.Error(t, err)
}

func TestLoadExtent(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "extent.geojson")
	require.NoError(t, os.WriteFile(fname, []byte(`{"type": "Feature", "properties": {},
		"geometry": {"type": "Polygon", "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]}}`), 0644))
	e, err := LoadExtent(fname)
	require.NoError(t, err)
	assert.True(t, e.Contains(orb.Point{5, 5}))

	e, err = LoadExtent("POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))")
	require.NoError(t, err)
	assert.False(t, e.Contains(orb.Point{5, 5}))

	_, err = LoadExtent(filepath.Join(t.TempDir(), "missing.geojson"))
	assert.Error(t, err)
}

func TestCSVWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	c, err := NewCSVWriter(buf, proj.WGS84)
	require.NoError(t, err)

	rec := element.NewRecord(element.WAY, 7, osm.Tags{"name": "Cafe|Bar\nNorth", "amenity": "cafe", "note": "a|b"}, "EAT_CAFE")
	rec.Geometry = orb.Point{23.5, 37.5}
	require.NoError(t, c.Write(rec))
	require.NoError(t, c.Write(element.NewRecord(element.NODE, 8, osm.Tags{"name": "N"}, "MISC")))
	assert.Equal(t, 2, c.Count())
	require.NoError(t, c.Close())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID|NAME|CATEGORY|SUBCATEGORY|LON|LAT|SRID|WKT|OTHER_TAGS", lines[0])
	assert.Equal(t, `way/7|Cafe;Bar North|EAT|CAFE|23.5|37.5|4326|POINT(23.5 37.5)|{"amenity":"cafe","note":"a;b"}`, lines[1])
	assert.Equal(t, "node/8|N|MISC||||4326||", lines[2])

	_, err = NewCSVWriter(buf, 2100)
	assert.Error(t, err)
}
