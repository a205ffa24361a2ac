package writer

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/element"
	"github.com/smartdatalake/osmwrangle/proj"
	"github.com/smartdatalake/osmwrangle/transform"
)

var csvHeader = []string{"ID", "NAME", "CATEGORY", "SUBCATEGORY", "LON", "LAT", "SRID", "WKT", "OTHER_TAGS"}

// CSVWriter writes records as pipe separated lines. Values are stripped of
// line breaks and pipes. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	srid   int
	count  int
}

// NewCSVWriter writes the header to w. Geometries are written in srid. w is
// closed by Close if it is an io.Closer.
func NewCSVWriter(w io.Writer, srid int) (*CSVWriter, error) {
	if !proj.Supported(srid) {
		return nil, errors.Wrapf(proj.ErrUnsupportedSRID, "SRID %d", srid)
	}
	c := &CSVWriter{w: bufio.NewWriterSize(w, 64*1024), srid: srid}
	if closer, ok := w.(io.Closer); ok {
		c.closer = closer
	}
	if err := c.writeLine(csvHeader); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CSVWriter) writeLine(fields []string) error {
	_, err := c.w.WriteString(strings.Join(fields, "|") + "\n")
	return err
}

func splitCategory(cat string) (string, string) {
	if i := strings.Index(cat, "_"); i >= 0 {
		return cat[:i], cat[i+1:]
	}
	return cat, ""
}

func otherTags(rec *element.Record) (string, error) {
	tags := make(map[string]string, len(rec.Tags))
	for k, v := range rec.Tags {
		if k == "name" {
			continue
		}
		tags[transform.CSVValue(k)] = transform.CSVValue(v)
	}
	if len(tags) == 0 {
		return "", nil
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

// Write writes one record. Records without geometry are written without
// coordinates.
func (c *CSVWriter) Write(rec *element.Record) error {
	var lon, lat, geomWKT string
	if rec.Geometry != nil {
		center := transform.Centroid(rec.Geometry)
		lon = strconv.FormatFloat(center.Lon(), 'f', -1, 64)
		lat = strconv.FormatFloat(center.Lat(), 'f', -1, 64)
		g, err := proj.FromWGS84(rec.Geometry, c.srid)
		if err != nil {
			return err
		}
		geomWKT = wkt.MarshalString(g)
	}
	tags, err := otherTags(rec)
	if err != nil {
		return errors.Wrapf(err, "encoding tags of %s", rec.ID)
	}
	cat, sub := splitCategory(rec.Category)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return c.writeLine([]string{
		rec.ID,
		transform.CSVValue(rec.Name),
		transform.CSVValue(cat),
		transform.CSVValue(sub),
		lon,
		lat,
		strconv.Itoa(c.srid),
		geomWKT,
		tags,
	})
}

// Count returns the number of written records.
func (c *CSVWriter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.w.Flush()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
