// Package config merges command line flags with a JSON config file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/smartdatalake/osmwrangle/cache"
	"github.com/smartdatalake/osmwrangle/proj"
	"github.com/smartdatalake/osmwrangle/transform"
)

// Config is the content of a JSON config file. Flags that are set on the
// command line take precedence.
type Config struct {
	Input            string            `json:"input"`
	Output           string            `json:"output"`
	CSV              string            `json:"csv"`
	Filters          string            `json:"filters"`
	Classification   string            `json:"classification"`
	ClassifyByName   *bool             `json:"classify_by_name"`
	Mapping          string            `json:"mapping"`
	Store            string            `json:"store"`
	CacheDir         string            `json:"cachedir"`
	CacheSizeMB      int               `json:"cache_size_mb"`
	Srid             int               `json:"srid"`
	GeometryOntology string            `json:"geometry_ontology"`
	FeatureSource    string            `json:"feature_source"`
	CategoryAttrs    []string          `json:"category_attrs"`
	Namespaces       Namespaces        `json:"namespaces"`
	Prefixes         map[string]string `json:"prefixes"`
	KeepUnnamed      *bool             `json:"keep_unnamed"`
	ClosedAsPolygons *bool             `json:"closed_rings_polygons"`
	Metadata         *bool             `json:"metadata"`
	SpatialExtent    string            `json:"spatial_extent"`
	BatchSize        int               `json:"batch_size"`
	Workers          int               `json:"workers"`
	Postgres         string            `json:"postgres"`
	PostgresTable    string            `json:"postgres_table"`
}

type Namespaces struct {
	Ontology       string `json:"ontology"`
	Geometry       string `json:"geometry"`
	Feature        string `json:"feature"`
	Class          string `json:"class"`
	Classification string `json:"classification"`
}

const (
	defaultSrid          = proj.WGS84
	defaultStore         = "auto"
	defaultOutput        = "-"
	defaultPostgresTable = "triples"
)

var defaultCacheDir = filepath.Join(os.TempDir(), "osmwrangle")

type Options struct {
	Input            string
	Output           string
	CSV              string
	Filters          string
	Classification   string
	ClassifyByName   bool
	Mapping          string
	Store            string
	CacheDir         string
	CacheSizeMB      int
	Srid             int
	GeometryOntology string
	FeatureSource    string
	CategoryAttrs    []string
	Namespaces       Namespaces
	Prefixes         map[string]string
	KeepUnnamed      bool
	ClosedAsPolygons bool
	Metadata         bool
	SpatialExtent    string
	BatchSize        int
	Workers          int
	Postgres         string
	PostgresTable    string

	ConfigFile  string
	Httpprofile string
	Memprofile  string
	Quiet       bool

	flags *pflag.FlagSet
}

// AddTransformFlags registers all transformation options on flags.
func AddTransformFlags(flags *pflag.FlagSet) *Options {
	o := &Options{flags: flags}
	flags.StringVarP(&o.Input, "input", "i", "", "OSM PBF input file")
	flags.StringVarP(&o.Output, "output", "o", defaultOutput, "N-Triples output file, - for stdout")
	flags.StringVar(&o.CSV, "csv", "", "write records also to this CSV file")
	flags.StringVar(&o.Filters, "filters", "", "tag filter file")
	flags.StringVar(&o.Classification, "classification", "", "classification file (YAML or CSV)")
	flags.BoolVar(&o.ClassifyByName, "classify-by-name", false, "records reference categories by name instead of id")
	flags.StringVar(&o.Mapping, "mapping", "", "attribute mapping file (YAML)")
	flags.StringVar(&o.Store, "store", defaultStore, "geometry store: memory, goleveldb, badger, leveldb or auto")
	flags.StringVar(&o.CacheDir, "cachedir", defaultCacheDir, "directory of the disk geometry stores")
	flags.IntVar(&o.CacheSizeMB, "cache-size-mb", 0, "read cache of each disk store in MB")
	flags.IntVar(&o.Srid, "srid", defaultSrid, "SRID of the output geometries (4326 or 3857)")
	flags.StringVar(&o.GeometryOntology, "geometry-ontology", string(transform.GeoSPARQL), "GeoSPARQL, wgs84_pos or Virtuoso")
	flags.StringVar(&o.FeatureSource, "feature-source", "", "name of the data source")
	flags.StringSliceVar(&o.CategoryAttrs, "category-attrs", nil, "attributes that reference a category, finest first")
	flags.StringVar(&o.Namespaces.Ontology, "ontology-ns", "", "namespace of the ontology")
	flags.StringVar(&o.Namespaces.Geometry, "geometry-ns", "", "namespace of the geometry ontology")
	flags.StringVar(&o.Namespaces.Feature, "feature-ns", "", "namespace of the features")
	flags.StringVar(&o.Namespaces.Class, "class-ns", "", "namespace of the classes")
	flags.StringVar(&o.Namespaces.Classification, "classification-ns", "", "namespace of the classification")
	flags.StringToStringVar(&o.Prefixes, "prefixes", nil, "additional namespace prefixes (prefix=iri)")
	flags.BoolVar(&o.KeepUnnamed, "keep-unnamed", false, "keep records without name")
	flags.BoolVar(&o.ClosedAsPolygons, "closed-rings-polygons", false, "build polygons from closed ways")
	flags.BoolVar(&o.Metadata, "metadata", false, "add version, timestamp, changeset and author of the elements")
	flags.StringVar(&o.SpatialExtent, "spatial-extent", "", "only keep records inside this WKT polygon or GeoJSON file (WGS84)")
	flags.IntVar(&o.BatchSize, "batch-size", 0, "records per write to the output")
	flags.IntVar(&o.Workers, "workers", 0, "number of transformation workers, defaults to the number of CPUs")
	flags.StringVar(&o.Postgres, "postgres", "", "write triples also to PostgreSQL (postgres://...)")
	flags.StringVar(&o.PostgresTable, "postgres-table", defaultPostgresTable, "table of the triples, optionally with schema")
	addBaseFlags(o, flags)
	return o
}

// AddClassificationFlags registers the options of the classification
// commands.
func AddClassificationFlags(flags *pflag.FlagSet) *Options {
	o := &Options{flags: flags}
	flags.StringVarP(&o.Output, "output", "o", defaultOutput, "output file, - for stdout")
	flags.BoolVar(&o.ClassifyByName, "classify-by-name", false, "categories are referenced by name instead of id")
	flags.StringVar(&o.Namespaces.Ontology, "ontology-ns", "", "namespace of the ontology")
	flags.StringVar(&o.Namespaces.Class, "class-ns", "", "namespace of the classes")
	flags.StringVar(&o.Namespaces.Classification, "classification-ns", "", "namespace of the classification")
	flags.StringVar(&o.FeatureSource, "feature-source", "", "name of the data source")
	addBaseFlags(o, flags)
	return o
}

func addBaseFlags(o *Options, flags *pflag.FlagSet) {
	flags.StringVar(&o.ConfigFile, "config", "", "config (json)")
	flags.StringVar(&o.Httpprofile, "httpprofile", "", "bind address for profile and metrics server")
	flags.StringVar(&o.Memprofile, "memprofile", "", "write memory profiles to this directory")
	flags.BoolVar(&o.Quiet, "quiet", false, "quiet log output")
}

func (o *Options) changed(name string) bool {
	return o.flags != nil && o.flags.Lookup(name) != nil && o.flags.Changed(name)
}

func (o *Options) setString(name string, dst *string, v string) {
	if v != "" && !o.changed(name) {
		*dst = v
	}
}

func (o *Options) setInt(name string, dst *int, v int) {
	if v != 0 && !o.changed(name) {
		*dst = v
	}
}

func (o *Options) setBool(name string, dst *bool, v *bool) {
	if v != nil && !o.changed(name) {
		*dst = *v
	}
}

func (o *Options) updateFromConfig() error {
	conf := &Config{}

	if o.ConfigFile != "" {
		f, err := os.Open(o.ConfigFile)
		if err != nil {
			return err
		}
		defer f.Close()
		decoder := json.NewDecoder(f)

		err = decoder.Decode(&conf)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", o.ConfigFile)
		}
	}

	o.setString("input", &o.Input, conf.Input)
	o.setString("output", &o.Output, conf.Output)
	o.setString("csv", &o.CSV, conf.CSV)
	o.setString("filters", &o.Filters, conf.Filters)
	o.setString("classification", &o.Classification, conf.Classification)
	o.setBool("classify-by-name", &o.ClassifyByName, conf.ClassifyByName)
	o.setString("mapping", &o.Mapping, conf.Mapping)
	o.setString("store", &o.Store, conf.Store)
	o.setString("cachedir", &o.CacheDir, conf.CacheDir)
	o.setInt("cache-size-mb", &o.CacheSizeMB, conf.CacheSizeMB)
	o.setInt("srid", &o.Srid, conf.Srid)
	o.setString("geometry-ontology", &o.GeometryOntology, conf.GeometryOntology)
	o.setString("feature-source", &o.FeatureSource, conf.FeatureSource)
	if len(conf.CategoryAttrs) > 0 && !o.changed("category-attrs") {
		o.CategoryAttrs = conf.CategoryAttrs
	}
	o.setString("ontology-ns", &o.Namespaces.Ontology, conf.Namespaces.Ontology)
	o.setString("geometry-ns", &o.Namespaces.Geometry, conf.Namespaces.Geometry)
	o.setString("feature-ns", &o.Namespaces.Feature, conf.Namespaces.Feature)
	o.setString("class-ns", &o.Namespaces.Class, conf.Namespaces.Class)
	o.setString("classification-ns", &o.Namespaces.Classification, conf.Namespaces.Classification)
	if len(conf.Prefixes) > 0 {
		// prefixes from the command line are added to those of the file
		prefixes := make(map[string]string, len(conf.Prefixes)+len(o.Prefixes))
		for p, iri := range conf.Prefixes {
			prefixes[p] = iri
		}
		for p, iri := range o.Prefixes {
			prefixes[p] = iri
		}
		o.Prefixes = prefixes
	}
	o.setBool("keep-unnamed", &o.KeepUnnamed, conf.KeepUnnamed)
	o.setBool("closed-rings-polygons", &o.ClosedAsPolygons, conf.ClosedAsPolygons)
	o.setBool("metadata", &o.Metadata, conf.Metadata)
	o.setString("spatial-extent", &o.SpatialExtent, conf.SpatialExtent)
	o.setInt("batch-size", &o.BatchSize, conf.BatchSize)
	o.setInt("workers", &o.Workers, conf.Workers)
	o.setString("postgres", &o.Postgres, conf.Postgres)
	o.setString("postgres-table", &o.PostgresTable, conf.PostgresTable)
	return nil
}

func (o *Options) check() []error {
	errs := []error{}
	if o.Input == "" {
		errs = append(errs, errors.New("missing input"))
	}
	if o.Output == "" && o.Postgres == "" {
		errs = append(errs, errors.New("missing output"))
	}
	if !proj.Supported(o.Srid) {
		errs = append(errs, errors.New("only -srid=3857 or -srid=4326 are supported"))
	}
	if _, err := cache.ParseStoreKind(o.Store); err != nil {
		errs = append(errs, err)
	}
	if _, err := transform.ParseGeoOntology(o.GeometryOntology); err != nil {
		errs = append(errs, err)
	}
	if o.CacheSizeMB < 0 {
		errs = append(errs, errors.New("cache-size-mb must not be negative"))
	}
	if o.BatchSize < 0 {
		errs = append(errs, errors.New("batch-size must not be negative"))
	}
	if o.Workers < 0 {
		errs = append(errs, errors.New("workers must not be negative"))
	}
	if o.Postgres != "" && !strings.Contains(o.Postgres, "://") {
		errs = append(errs, errors.New("postgres needs a URL like postgres://user@host/database"))
	}
	return errs
}

// ConfigErrors is returned for invalid options.
type ConfigErrors []error

func (e ConfigErrors) Error() string {
	var b strings.Builder
	b.WriteString("errors in config/options:")
	for _, err := range e {
		fmt.Fprintf(&b, "\n\t%s", err)
	}
	return b.String()
}

// Load merges the config file into the options and checks the transform
// options.
func (o *Options) Load() error {
	if err := o.updateFromConfig(); err != nil {
		return err
	}
	if errs := o.check(); len(errs) != 0 {
		return ConfigErrors(errs)
	}
	return nil
}

// LoadClassification merges the config file into the options of the
// classification commands.
func (o *Options) LoadClassification() error {
	return o.updateFromConfig()
}
