package mapping

import (
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/mapping/config"
)

const (
	defaultURIAttr         = "URI"
	defaultCategoryURIAttr = "CATEGORY_URI"
	defaultDataSourceAttr  = "DATA_SOURCE"
	embeddedCategoryFunc   = "getEmbeddedCategory"
)

// Mapping is the parsed attribute mapping. It is read-only after parsing
// and safe for concurrent use.
type Mapping struct {
	rules     map[string]*Rule
	order     []*Rule
	families  []string
	thematic  []*Rule
	geometric []*Rule

	uriAttr              string
	categoryURIAttr      string
	dataSourceAttr       string
	assignedCategoryAttr string
}

// FromFile reads a mapping from a YAML file.
func FromFile(filename string) (*Mapping, error) {
	f, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading mapping")
	}
	m, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping %s", filename)
	}
	return m, nil
}

func Parse(data []byte) (*Mapping, error) {
	conf, err := config.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing mapping")
	}
	return New(conf), nil
}

// New prepares the rules of a decoded mapping document.
func New(conf *config.Mapping) *Mapping {
	m := &Mapping{
		rules:           make(map[string]*Rule),
		uriAttr:         defaultURIAttr,
		categoryURIAttr: defaultCategoryURIAttr,
		dataSourceAttr:  defaultDataSourceAttr,
	}
	for _, attr := range conf.Attributes {
		m.add(newRule(attr))
	}
	return m
}

func newRule(attr config.KeyAttribute) *Rule {
	r := &Rule{
		Key:        attr.Key,
		Entity:     strings.TrimSpace(attr.Entity),
		Predicate:  strings.TrimSpace(attr.Predicate),
		Type:       strings.TrimSpace(attr.Type),
		Language:   strings.TrimSpace(attr.Language),
		InstanceOf: strings.TrimSpace(attr.InstanceOf),
		PartOf:     strings.TrimSpace(attr.PartOf),
	}
	if attr.Datatype != "" {
		r.Datatype = Datatype(attr.Datatype)
	}
	if gen := strings.TrimSpace(attr.GenerateWith); gen != "" {
		if strings.HasPrefix(gen, geometryPrefix) {
			gen = gen[len(geometryPrefix):]
			r.Geometric = true
		}
		f := ParseFunc(gen)
		r.Generate = &f
	}
	if strings.HasPrefix(r.Type, typePrefix) {
		f := ParseFunc(r.Type[len(typePrefix):])
		r.TypeFunc = &f
	}
	r.Profile = decideProfile(r)
	return r
}

func (m *Mapping) add(r *Rule) {
	// %LANG rules are stored by the base of their key
	if strings.HasSuffix(r.Key, langFamily) {
		r.Key = r.Key[:strings.Index(r.Key, "%")]
		m.families = append(m.families, r.Key)
	} else if strings.Contains(r.Key, "*") {
		m.families = append(m.families, r.Key)
	}

	if prev, ok := m.rules[r.Key]; ok {
		for i := range m.order {
			if m.order[i] == prev {
				m.order[i] = r
			}
		}
	} else {
		m.order = append(m.order, r)
	}
	m.rules[r.Key] = r

	if r.Generate != nil && r.Profile != URIDefinition {
		if r.Geometric {
			m.geometric = append(m.geometric, r)
		} else {
			m.thematic = append(m.thematic, r)
		}
	}

	if r.IsURI() {
		m.uriAttr = r.Key
	}
	if strings.Contains(r.Entity, "category") {
		m.categoryURIAttr = r.Key
	}
	if strings.Contains(r.Predicate, "sourceRef") {
		m.dataSourceAttr = r.Key
	}
	if strings.Contains(r.Entity, "assignedCategory") {
		m.assignedCategoryAttr = r.Key
	}
}

// Find returns the rule of an attribute or nil.
func (m *Mapping) Find(key string) *Rule {
	return m.rules[key]
}

// FindFamily returns the family key of an attribute that belongs to a
// %LANG or * family, or an empty string. For %LANG families this is the
// base of the key (name_ for name_%LANG).
func (m *Mapping) FindFamily(key string) string {
	for _, f := range m.families {
		if strings.Contains(f, "*") {
			parts := strings.Split(f, "*")
			if strings.HasPrefix(key, parts[0]) && strings.HasSuffix(key, parts[len(parts)-1]) {
				return f
			}
		} else if strings.HasPrefix(key, f) {
			return f
		}
	}
	return ""
}

// GeometricAttrs returns the keys of all attributes generated by the
// geometric function fn, in document order.
func (m *Mapping) GeometricAttrs(fn string) []string {
	var keys []string
	for _, r := range m.geometric {
		if r.Generate.Name == fn {
			keys = append(keys, r.Key)
		}
	}
	return keys
}

// ThematicAttrs returns the rules of all attributes generated from other
// attributes, in document order.
func (m *Mapping) ThematicAttrs() []*Rule {
	return m.thematic
}

// Rules returns all rules in document order.
func (m *Mapping) Rules() []*Rule {
	return m.order
}

// URIAttr is the attribute that carries the feature URI.
func (m *Mapping) URIAttr() string { return m.uriAttr }

// CategoryURIAttr is the attribute that carries the category URI.
func (m *Mapping) CategoryURIAttr() string { return m.categoryURIAttr }

// DataSourceAttr is the attribute that carries the name of the data
// source.
func (m *Mapping) DataSourceAttr() string { return m.dataSourceAttr }

// AssignedCategoryAttr is the attribute that carries the embedded
// category, empty if the mapping does not declare one.
func (m *Mapping) AssignedCategoryAttr() string { return m.assignedCategoryAttr }

// AssignsEmbeddedCategory returns true if the assigned category attribute
// is generated with getEmbeddedCategory.
func (m *Mapping) AssignsEmbeddedCategory() bool {
	r := m.rules[m.assignedCategoryAttr]
	return r != nil && r.Generate != nil && r.Generate.Name == embeddedCategoryFunc
}

// Flat returns true if the mapping only defines the feature URI. All
// attributes are then mapped to predicates of the same name.
func (m *Mapping) Flat() bool {
	return len(m.order) == 1 && m.order[0].IsURI()
}

func (m *Mapping) Len() int { return len(m.order) }
