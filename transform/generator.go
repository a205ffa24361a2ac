// Package transform generates RDF triples from records.
package transform

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/classification"
	"github.com/smartdatalake/osmwrangle/element"
	"github.com/smartdatalake/osmwrangle/geom"
	"github.com/smartdatalake/osmwrangle/mapping"
	"github.com/smartdatalake/osmwrangle/proj"
	"github.com/smartdatalake/osmwrangle/rdf"
)

// Config of the generated triples. Empty fields get the defaults of
// DefaultConfig.
type Config struct {
	OntologyNS       string
	GeometryNS       string
	FeatureNS        string
	ClassNS          string
	ClassificationNS string
	// FeatureSource is the name of the data source.
	FeatureSource string
	SRID          int
	GeoOntology   GeoOntology
	// CategoryAttrs are the attributes that may reference a category of
	// the classification, finest first.
	CategoryAttrs []string
	// CategoryAttr is the attribute that holds the category of a record.
	CategoryAttr string
	// Prefixes expanded in predicates, in addition to rdf.DefaultNamespaces.
	Prefixes rdf.Namespaces
}

func DefaultConfig() Config {
	return Config{
		OntologyNS:       "http://slipo.eu/def#",
		GeometryNS:       rdf.NsGeo,
		FeatureNS:        "http://slipo.eu/id/poi/",
		ClassNS:          "http://slipo.eu/id/term/",
		ClassificationNS: "http://slipo.eu/id/classification/",
		FeatureSource:    "OpenStreetMap",
		SRID:             proj.WGS84,
		GeoOntology:      GeoSPARQL,
		CategoryAttr:     "OSM_Category",
	}
}

func (c *Config) setDefaults() {
	def := DefaultConfig()
	set := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	set(&c.OntologyNS, def.OntologyNS)
	set(&c.GeometryNS, def.GeometryNS)
	set(&c.FeatureNS, def.FeatureNS)
	set(&c.ClassNS, def.ClassNS)
	set(&c.ClassificationNS, def.ClassificationNS)
	set(&c.FeatureSource, def.FeatureSource)
	set(&c.CategoryAttr, def.CategoryAttr)
	if c.GeoOntology == "" {
		c.GeoOntology = def.GeoOntology
	}
	if c.SRID == 0 {
		c.SRID = def.SRID
	}
	if len(c.CategoryAttrs) == 0 {
		c.CategoryAttrs = []string{c.CategoryAttr}
	}
}

// Generator transforms records to triples. It does not keep state between
// records and is safe for concurrent use if the Registry and Stats are.
type Generator struct {
	conf    Config
	mapping *mapping.Mapping
	ns      rdf.Namespaces
	funcs   *Registry
	stats   *Stats
}

// NewGenerator returns a generator for the mapping m. m can be nil, all
// attributes are then mapped to predicates of the same name.
func NewGenerator(conf Config, m *mapping.Mapping, funcs *Registry, stats *Stats) (*Generator, error) {
	conf.setDefaults()
	if !proj.Supported(conf.SRID) {
		return nil, errors.Wrapf(proj.ErrUnsupportedSRID, "SRID %d", conf.SRID)
	}
	ns := rdf.DefaultNamespaces()
	for p, iri := range conf.Prefixes {
		ns[strings.TrimSpace(p)] = strings.TrimSpace(iri)
	}
	if funcs == nil {
		funcs = NewRegistry(conf.FeatureSource)
	}
	if stats == nil {
		stats = NewStats()
	}
	return &Generator{conf: conf, mapping: m, ns: ns, funcs: funcs, stats: stats}, nil
}

func (g *Generator) Stats() *Stats { return g.stats }

func (g *Generator) Config() Config { return g.conf }

func triple(s, p string, o rdf.Term) rdf.Triple {
	return rdf.Triple{Subject: s, Predicate: p, Object: o}
}

// emitter collects the triples of one record.
type emitter struct {
	ns      rdf.Namespaces
	triples []rdf.Triple
}

func (e *emitter) add(s, p string, o rdf.Term) {
	e.triples = append(e.triples, triple(s, e.ns.Expand(p), o))
}

func (e *emitter) iri(s, p, o string)   { e.add(s, p, rdf.IRI(o)) }
func (e *emitter) plain(s, p, v string) { e.add(s, p, rdf.Plain(v)) }

func (e *emitter) lang(s, p, v, lang string) {
	if lang == "" {
		e.plain(s, p, v)
		return
	}
	e.add(s, p, rdf.Lang(v, lang))
}

// Transform returns the feature URI of the record and all triples of the
// record. h can be nil if no classification is configured.
func (g *Generator) Transform(rec *element.Record, h *classification.Hierarchy) (string, []rdf.Triple, error) {
	row := rec.Attributes(g.conf.CategoryAttr)
	e := &emitter{ns: g.ns}

	uri, err := g.featureURI(row)
	if err != nil {
		return "", nil, errors.Wrapf(err, "URI of %s", rec.ID)
	}

	if rec.Geometry != nil && !geom.IsEmpty(rec.Geometry) {
		target, err := proj.FromWGS84(rec.Geometry, g.conf.SRID)
		if err != nil {
			return "", nil, err
		}
		if g.mapping != nil {
			g.addGeometricAttrs(row, rec.Geometry)
		}
		g.stats.extend(rec.Geometry.Bound())
		e.triples = append(e.triples, g.geometryTriples(uri, target, rec.Geometry)...)
	}

	if g.mapping == nil || g.mapping.Flat() {
		g.plainTriples(e, uri, row)
	} else {
		row[g.dataSourceAttr()] = g.conf.FeatureSource
		g.assignClassification(row, h)
		if err := g.generateAttrs(row); err != nil {
			return "", nil, errors.Wrapf(err, "attributes of %s", rec.ID)
		}
		g.mappedTriples(e, uri, row)
	}
	return uri, e.triples, nil
}

func (g *Generator) dataSourceAttr() string {
	if g.mapping == nil {
		return "DATA_SOURCE"
	}
	return g.mapping.DataSourceAttr()
}

// argValues resolves function arguments. Arguments that name an attribute
// of the row are replaced by the value, all others are constants.
func (g *Generator) argValues(args []string, row map[string]string) []string {
	row[g.dataSourceAttr()] = g.conf.FeatureSource
	vals := make([]string, len(args))
	for i, a := range args {
		if v, ok := row[a]; ok {
			vals[i] = v
		} else {
			vals[i] = strings.Replace(a, `"`, "", -1)
		}
	}
	return vals
}

func (g *Generator) featureURI(row map[string]string) (string, error) {
	var id string
	switch {
	case g.mapping != nil && g.mapping.Find(g.mapping.URIAttr()) != nil &&
		g.mapping.Find(g.mapping.URIAttr()).Generate != nil:
		f := g.mapping.Find(g.mapping.URIAttr()).Generate
		v, ok, err := g.funcs.Call(f.Name, g.argValues(f.Args, row)...)
		if err != nil {
			return "", err
		}
		if !ok || v == "" {
			return "", errors.Errorf("%s returned no value", f.Name)
		}
		id = v
	case g.mapping != nil && g.mapping.Find(g.mapping.URIAttr()) == nil:
		id = uuid.New().String()
	default:
		id = g.funcs.FeatureUUID(g.conf.FeatureSource, row["osm_id"])
	}
	return g.conf.FeatureNS + ReplaceWhiteSpace(id), nil
}

// assignClassification adds the category URI of the first category
// attribute found in the classification to the row.
func (g *Generator) assignClassification(row map[string]string, h *classification.Hierarchy) {
	if h == nil {
		return
	}
	for _, attr := range g.conf.CategoryAttrs {
		val := strings.TrimSpace(row[attr])
		if val == "" {
			continue
		}
		c := h.ByName(val)
		if c == nil {
			c = h.ByID(val)
		}
		if c == nil {
			continue
		}
		row[g.mapping.CategoryURIAttr()] = g.conf.ClassNS + c.UUID
		if g.mapping.AssignsEmbeddedCategory() {
			row[g.mapping.AssignedCategoryAttr()] = c.Embedded
		}
		return
	}
}

// generateAttrs computes the attributes declared with generateWith.
func (g *Generator) generateAttrs(row map[string]string) error {
	for _, r := range g.mapping.ThematicAttrs() {
		f := r.Generate
		if len(f.Args) == 0 && f.Name == funcEmbeddedCategory {
			continue
		}
		v, ok, err := g.funcs.Call(f.Name, g.argValues(f.Args, row)...)
		if err != nil {
			return errors.Wrapf(err, "generating %s", r.Key)
		}
		if ok {
			row[r.Key] = v
		}
	}
	return nil
}

func validValue(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "null")
}

func sortedKeys(row map[string]string) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// plainTriples maps each attribute to a predicate of the same name in the
// ontology namespace.
func (g *Generator) plainTriples(e *emitter, uri string, row map[string]string) {
	row[g.dataSourceAttr()] = g.conf.FeatureSource
	for _, key := range sortedKeys(row) {
		val := row[key]
		if !validValue(val) {
			continue
		}
		e.plain(uri, g.conf.OntologyNS+url.QueryEscape(key), RemoveIllegalChars(val))
		g.stats.count(key)
	}
}

// mappedTriples emits the triples of all attributes by their mapping
// profile.
func (g *Generator) mappedTriples(e *emitter, uri string, row map[string]string) {
	ont := g.conf.OntologyNS
	m := g.mapping
	parts := make(map[string]struct{})

	for _, key := range sortedKeys(row) {
		val := row[key]
		if !validValue(val) {
			continue
		}
		val = RemoveIllegalChars(val)

		var lang, entityType string
		rule := m.Find(key)
		if rule == nil {
			base := m.FindFamily(key)
			if base != "" {
				rule = m.Find(base)
			}
			if rule == nil {
				if catchAll := m.Find(mapping.CatchAll); catchAll != nil {
					sub := uri + "/" + ReplaceWhiteSpace(key)
					e.iri(uri, catchAll.Predicate, sub)
					e.plain(sub, ont+"key", key)
					e.plain(sub, ont+"value", val)
					g.stats.count(key)
				}
				continue
			}
			if strings.Contains(base, "*") {
				entityType = key
			} else {
				l, ok, err := g.funcs.Call(rule.Language, key, strconv.Itoa(len(base)))
				if err != nil || !ok {
					continue
				}
				lang = l
				entityType = rule.Entity + "_" + lang
			}
		} else {
			lang = rule.Language
			entityType = rule.Entity
		}
		g.stats.count(key)

		resType := rule.ResourceType()
		if rule.TypeFunc != nil {
			v, _, err := g.funcs.Call(rule.TypeFunc.Name, g.argValues(rule.TypeFunc.Args, row)...)
			if err != nil {
				continue
			}
			resType = v
		}
		entity := uri + "/" + ReplaceWhiteSpace(entityType)

		switch rule.Profile {
		case mapping.InstanceLang:
			e.iri(uri, rule.Predicate, entity)
			if IsValidISOLanguage(lang) {
				e.lang(entity, ont+rule.InstanceOf+"Value", val, lang)
				e.plain(entity, ont+"language", lang)
			} else {
				e.plain(entity, ont+rule.InstanceOf+"Value", val)
			}
			if strings.ToUpper(strings.TrimSpace(resType)) != "NONE" {
				e.plain(entity, ont+rule.InstanceOf+"Type", resType)
			}
			e.iri(entity, rdf.Type, ont+rule.InstanceOf)
		case mapping.Instance:
			e.iri(uri, rule.Predicate, entity)
			e.plain(entity, ont+rule.InstanceOf+"Value", val)
			e.plain(entity, ont+rule.InstanceOf+"Type", resType)
			e.iri(entity, rdf.Type, ont+rule.InstanceOf)
		case mapping.PartLang, mapping.Part:
			part := uri + "/" + rule.PartOf
			if _, ok := parts[rule.PartOf]; !ok {
				parts[rule.PartOf] = struct{}{}
				e.iri(uri, ont+entityType, part)
				e.iri(part, rdf.Type, ont+rule.PartOf)
			}
			if rule.Profile == mapping.PartLang {
				e.lang(part, rule.Predicate, val, lang)
			} else {
				e.plain(part, rule.Predicate, val)
			}
		case mapping.URLLiteral:
			e.iri(uri, rule.Predicate, CleanupURL(val))
		case mapping.TypedLiteral:
			e.add(uri, rule.Predicate, rdf.Typed(val, rule.Datatype))
		case mapping.LangLiteral:
			e.lang(uri, rule.Predicate, val, lang)
		case mapping.PlainLiteral:
			e.plain(uri, rule.Predicate, val)
		}
	}
}

// CategoryTriples returns the triples of all categories of the
// classification.
func (g *Generator) CategoryTriples(h *classification.Hierarchy) []rdf.Triple {
	ont := g.conf.OntologyNS
	e := &emitter{ns: g.ns}
	for _, c := range h.Categories() {
		uri := g.conf.ClassNS + ReplaceWhiteSpace(url.QueryEscape(c.UUID))
		e.iri(uri, ont+"termClassification", g.conf.ClassificationNS+g.conf.FeatureSource)
		e.iri(uri, rdf.Type, ont+"Term")
		if h.ClassifyByName {
			e.plain(uri, ont+"value", c.Name)
		} else {
			e.plain(uri, ont+"value", c.ID)
		}
		if c.Parent != "" {
			if parent := h.UUIDForID(c.Parent); parent != "" {
				e.iri(uri, ont+"parent", g.conf.ClassNS+ReplaceWhiteSpace(url.QueryEscape(parent)))
			}
		}
	}
	return e.triples
}
