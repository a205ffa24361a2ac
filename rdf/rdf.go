// Package rdf contains the triple model and N-Triples output.
package rdf

import (
	"strings"

	"github.com/cayleygraph/quad"
)

const (
	NsRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NsXSD  = "http://www.w3.org/2001/XMLSchema#"
	NsGeo  = "http://www.opengis.net/ont/geosparql#"
	NsSF   = "http://www.opengis.net/ont/sf#"
	NsPos  = "http://www.w3.org/2003/01/geo/wgs84_pos#"
	NsVirt = "http://www.openlinksw.com/schemas/virtrdf#"

	Type = NsRDF + "type"
)

// TermKind distinguishes IRIs and the literal forms.
type TermKind uint8

const (
	KindIRI TermKind = iota
	KindPlain
	KindLang
	KindTyped
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindPlain:
		return "plain"
	case KindLang:
		return "lang"
	case KindTyped:
		return "typed"
	}
	return "unknown"
}

// Term is an IRI or a literal. Lang is only set for KindLang and Datatype
// only for KindTyped.
type Term struct {
	Kind     TermKind
	Value    string
	Lang     string
	Datatype string
}

func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

func Plain(v string) Term { return Term{Kind: KindPlain, Value: v} }

func Lang(v, lang string) Term { return Term{Kind: KindLang, Value: v, Lang: lang} }

func Typed(v, datatype string) Term { return Term{Kind: KindTyped, Value: v, Datatype: datatype} }

func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// Quad returns the term as cayley quad value.
func (t Term) Quad() quad.Value {
	switch t.Kind {
	case KindIRI:
		return quad.IRI(t.Value)
	case KindLang:
		return quad.LangString{Value: quad.String(t.Value), Lang: t.Lang}
	case KindTyped:
		return quad.TypedString{Value: quad.String(t.Value), Type: quad.IRI(t.Datatype)}
	}
	return quad.String(t.Value)
}

func (t Term) String() string {
	return t.Quad().String()
}

type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}

func (t Triple) Quad() quad.Quad {
	return quad.Quad{
		Subject:   quad.IRI(t.Subject),
		Predicate: quad.IRI(t.Predicate),
		Object:    t.Object.Quad(),
	}
}

func (t Triple) String() string {
	return t.Quad().NQuad()
}

// Namespaces maps prefixes to namespace IRIs.
type Namespaces map[string]string

// Expand replaces a known prefix of a prefix:local name with its
// namespace. Names without a known prefix are returned unchanged.
func (ns Namespaces) Expand(name string) string {
	idx := strings.Index(name, ":")
	if idx < 0 {
		return name
	}
	if iri, ok := ns[name[:idx]]; ok {
		return iri + name[idx+1:]
	}
	return name
}

// DefaultNamespaces returns the well known prefixes used in mappings.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		"rdf":     NsRDF,
		"xsd":     NsXSD,
		"geo":     NsGeo,
		"sf":      NsSF,
		"pos":     NsPos,
		"virtrdf": NsVirt,
	}
}

// Sink receives the triples of one record at a time.
type Sink interface {
	Write(triples []Triple) error
	Close() error
}
