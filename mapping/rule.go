package mapping

import (
	"strings"

	"github.com/smartdatalake/osmwrangle/rdf"
)

type Profile uint8

const (
	Unspecified Profile = iota
	Instance
	InstanceLang
	Part
	PartLang
	TypedLiteral
	URLLiteral
	LangLiteral
	PlainLiteral
	URIDefinition
)

var profileNames = [...]string{
	Unspecified:   "unspecified",
	Instance:      "instance",
	InstanceLang:  "instance_lang",
	Part:          "part",
	PartLang:      "part_lang",
	TypedLiteral:  "typed_literal",
	URLLiteral:    "url_literal",
	LangLiteral:   "lang_literal",
	PlainLiteral:  "plain_literal",
	URIDefinition: "uri",
}

func (p Profile) String() string {
	if int(p) < len(profileNames) {
		return profileNames[p]
	}
	return "unknown"
}

const (
	geometryPrefix = "geometry."
	typePrefix     = "generateWith."
	langFamily     = "%LANG"
	// CatchAll is the key of the rule for attributes without a mapping.
	CatchAll = "_"
)

var datatypes = map[string]string{
	"int":       rdf.NsXSD + "integer",
	"integer":   rdf.NsXSD + "integer",
	"long":      rdf.NsXSD + "long",
	"float":     rdf.NsXSD + "float",
	"double":    rdf.NsXSD + "double",
	"date":      rdf.NsXSD + "date",
	"datetime":  rdf.NsXSD + "dateTime",
	"timestamp": rdf.NsXSD + "dateTimeStamp",
	"boolean":   rdf.NsXSD + "boolean",
	"uri":       rdf.NsXSD + "anyURI",
}

// Datatype returns the XSD datatype IRI for a mapping datatype name.
// Unknown names are strings.
func Datatype(name string) string {
	if dt, ok := datatypes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return dt
	}
	return rdf.NsXSD + "string"
}

// Func is a call of a built-in function with attribute names or quoted
// constants as arguments.
type Func struct {
	Name string
	Args []string
}

// ParseFunc parses f(a, "b, c"). Arguments are split at commas outside of
// double quotes. A name without parentheses is a call without arguments.
func ParseFunc(s string) Func {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "(")
	if open < 0 {
		return Func{Name: s}
	}
	f := Func{Name: strings.TrimSpace(s[:open])}
	inner := s[open+1:]
	if close := strings.LastIndex(inner, ")"); close >= 0 {
		inner = inner[:close]
	}
	if strings.TrimSpace(inner) == "" {
		return f
	}
	f.Args = splitArgs(inner)
	return f
}

func splitArgs(s string) []string {
	var args []string
	quoted := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

func (f *Func) String() string {
	return f.Name + "(" + strings.Join(f.Args, ",") + ")"
}

// Rule is the mapping of one attribute.
type Rule struct {
	// Key is the attribute name. It is the base name for %LANG families
	// (name_ for name_%LANG) and includes the * for other families.
	Key        string
	Entity     string
	Predicate  string
	Type       string
	Language   string
	InstanceOf string
	PartOf     string
	// Datatype is the XSD datatype IRI, empty if none is set.
	Datatype string
	// Generate is the function that generates the attribute value.
	Generate *Func
	// Geometric is set if Generate is computed from the geometry.
	Geometric bool
	// TypeFunc computes the resource type if type is generateWith.f().
	TypeFunc *Func
	Profile  Profile
}

func decideProfile(r *Rule) Profile {
	switch {
	case r.Type != "" && r.InstanceOf != "" && r.PartOf == "":
		if r.Language != "" {
			return InstanceLang
		}
		return Instance
	case r.PartOf != "":
		if r.Language != "" {
			return PartLang
		}
		return Part
	case r.Datatype != "":
		if r.Datatype == rdf.NsXSD+"anyURI" {
			return URLLiteral
		}
		return TypedLiteral
	case r.Predicate != "" && r.Language != "":
		return LangLiteral
	case r.Predicate != "":
		return PlainLiteral
	case strings.EqualFold(r.Entity, "URI"):
		return URIDefinition
	}
	return Unspecified
}

// ResourceType returns the configured type or the local name of the
// predicate.
func (r *Rule) ResourceType() string {
	if r.Type != "" {
		return r.Type
	}
	if idx := strings.Index(r.Predicate, ":"); idx >= 0 {
		return r.Predicate[idx+1:]
	}
	return r.Predicate
}

// IsURI returns true for the rule that generates the feature URIs.
func (r *Rule) IsURI() bool {
	return strings.EqualFold(r.Entity, "uri")
}
