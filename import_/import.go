/*
Package import_ runs the transformation of an OSM PBF file to RDF triples.
*/
package import_

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/cache"
	"github.com/smartdatalake/osmwrangle/classification"
	"github.com/smartdatalake/osmwrangle/config"
	"github.com/smartdatalake/osmwrangle/database"
	_ "github.com/smartdatalake/osmwrangle/database/postgres"
	"github.com/smartdatalake/osmwrangle/element"
	"github.com/smartdatalake/osmwrangle/filter"
	"github.com/smartdatalake/osmwrangle/log"
	"github.com/smartdatalake/osmwrangle/mapping"
	"github.com/smartdatalake/osmwrangle/rdf"
	"github.com/smartdatalake/osmwrangle/reader"
	"github.com/smartdatalake/osmwrangle/stats"
	"github.com/smartdatalake/osmwrangle/transform"
	"github.com/smartdatalake/osmwrangle/writer"
)

const memprofInterval = 30 * time.Second

// Result of a transformation.
type Result struct {
	stats.Summary
	// Timestamp of the input data.
	Timestamp  time.Time
	Attributes []transform.AttrCount
	// Bound of all records in WGS84, only valid if HasBound.
	Bound    orb.Bound
	HasBound bool
}

// nopCloser keeps stdout open when the sink is closed.
type nopCloser struct{ io.Writer }

func create(fname string) (io.Writer, error) {
	if fname == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", fname)
	}
	return f, nil
}

// LoadClassification returns the classification of the options. Without
// classification file, the categories of the filters are used. It returns
// nil if neither is set.
func LoadClassification(o *config.Options, filters *filter.Forest) (*classification.Hierarchy, error) {
	opts := classification.Options{ClassifyByName: o.ClassifyByName}
	if o.Classification != "" {
		return classification.ParseFile(o.Classification, opts)
	}
	if filters != nil {
		return classification.FromFilter(filters, opts)
	}
	return nil, nil
}

// GeneratorConfig returns the triple configuration of the options.
func GeneratorConfig(o *config.Options) (transform.Config, error) {
	ontology, err := transform.ParseGeoOntology(o.GeometryOntology)
	if err != nil {
		return transform.Config{}, err
	}
	return transform.Config{
		OntologyNS:       o.Namespaces.Ontology,
		GeometryNS:       o.Namespaces.Geometry,
		FeatureNS:        o.Namespaces.Feature,
		ClassNS:          o.Namespaces.Class,
		ClassificationNS: o.Namespaces.Classification,
		FeatureSource:    o.FeatureSource,
		SRID:             o.Srid,
		GeoOntology:      ontology,
		CategoryAttrs:    o.CategoryAttrs,
		Prefixes:         o.Prefixes,
	}, nil
}

func openSink(o *config.Options) (rdf.Sink, error) {
	var sinks rdf.MultiSink
	if o.Output != "" {
		w, err := create(o.Output)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, rdf.NewNTriplesWriter(w))
	}
	if o.Postgres != "" {
		db, err := database.Open(database.Config{
			ConnectionParams: o.Postgres,
			Table:            o.PostgresTable,
		})
		if err != nil {
			sinks.Close()
			return nil, err
		}
		if err := db.Init(); err != nil {
			db.Close()
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, db)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}

func openCache(o *config.Options) (*cache.GeometryCache, error) {
	kind, err := cache.ParseStoreKind(o.Store)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(o.Input)
	if err != nil {
		return nil, errors.Wrap(err, "reading input")
	}
	kind = cache.ResolveKind(kind, fi.Size())
	if o.CacheSizeMB > 0 {
		cache.SetReadCacheSize(o.CacheSizeMB)
	}

	c := cache.NewGeometryCache(o.CacheDir)
	if kind != cache.MemoryKind && c.Exists() {
		// stores are only valid for one run
		if err := c.Remove(); err != nil {
			return nil, errors.Wrap(err, "removing existing stores")
		}
	}
	if err := c.Open(kind); err != nil {
		return nil, err
	}
	log.Printf("[info] keeping geometries in %s stores", kind)
	return c, nil
}

// Transform reads the input of o and writes the triples of all records to
// the configured outputs.
func Transform(ctx context.Context, o *config.Options) (*Result, error) {
	defer log.Step("Transforming " + o.Input)()

	if o.Httpprofile != "" {
		stats.StartHttpPProf(o.Httpprofile)
	}
	if o.Memprofile != "" {
		done := make(chan struct{})
		defer close(done)
		go func() {
			if err := stats.MemProfiler(o.Memprofile, memprofInterval, done); err != nil {
				log.Println("[error] memory profile:", err)
			}
		}()
	}

	timestamp, err := inputTimestamp(o.Input)
	if err != nil {
		return nil, err
	}
	log.Printf("[info] input data from %s", timestamp.UTC().Format(time.RFC3339))

	var filters *filter.Forest
	if o.Filters != "" {
		filters, err = filter.ParseFile(o.Filters)
		if err != nil {
			return nil, err
		}
	}
	h, err := LoadClassification(o, filters)
	if err != nil {
		return nil, err
	}
	var m *mapping.Mapping
	if o.Mapping != "" {
		m, err = mapping.FromFile(o.Mapping)
		if err != nil {
			return nil, err
		}
	}
	genConf, err := GeneratorConfig(o)
	if err != nil {
		return nil, err
	}
	gen, err := transform.NewGenerator(genConf, m, nil, nil)
	if err != nil {
		return nil, err
	}

	var extent *writer.Extent
	if o.SpatialExtent != "" {
		extent, err = writer.LoadExtent(o.SpatialExtent)
		if err != nil {
			return nil, err
		}
	}

	sink, err := openSink(o)
	if err != nil {
		return nil, err
	}
	var csv *writer.CSVWriter
	if o.CSV != "" {
		w, err := create(o.CSV)
		if err != nil {
			sink.Close()
			return nil, err
		}
		if csv, err = writer.NewCSVWriter(w, o.Srid); err != nil {
			sink.Close()
			return nil, err
		}
	}

	geoms, err := openCache(o)
	if err != nil {
		sink.Close()
		return nil, err
	}

	// progress output goes to stdout, which might be the triple output
	var progress *stats.Statistics
	if o.Quiet || o.Output == "-" {
		progress = stats.NewStatistics()
	} else {
		progress = stats.StatsReporter()
	}

	rd := reader.New(reader.Options{
		Filters:          filters,
		KeepUnnamed:      o.KeepUnnamed,
		ClosedAsPolygons: o.ClosedAsPolygons,
		Metadata:         o.Metadata,
		Progress:         !o.Quiet,
	}, geoms, progress)

	records := make(chan *element.Record, 256)
	w := writer.NewRecordWriter(records, gen, h, sink, progress, writer.Options{
		Workers:   o.Workers,
		BatchSize: o.BatchSize,
		Extent:    extent,
		CSV:       csv,
	})

	err = rd.Scan(ctx, o.Input)
	if err == nil {
		err = w.WriteCategories()
	}
	if err == nil {
		w.Start()
		err = rd.Read(ctx, o.Input, records)
		close(records)
		if werr := w.Wait(); err == nil {
			err = werr
		}
	}
	progress.Stop()

	if cerr := geoms.Clear(); cerr != nil {
		log.Println("[warn] clearing geometry stores:", cerr)
	}
	if cerr := sink.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "closing output")
	}
	if csv != nil {
		if cerr := csv.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing CSV output")
		}
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		Summary:    progress.Summary(),
		Timestamp:  timestamp,
		Attributes: gen.Stats().Attributes(),
	}
	res.Bound, res.HasBound = gen.Stats().Bound()
	return res, nil
}
