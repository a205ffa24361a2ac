// Package filter assigns categories to OSM elements from their tags.
//
// Filters are read from a plain text file with one rule per line:
//
//	amenity=restaurant EAT/DRINK_RESTAURANT
//	shop=
//	  =bakery SHOP_BAKERY
//	  =butcher SHOP_BUTCHER
//
// Two leading spaces nest a rule below the last rule of the previous
// level. A rule without a key inherits the key of its parent.
package filter

import (
	osm "github.com/omniscale/go-osm"
)

// Rule is a single line of the filter file.
type Rule struct {
	Key      string
	Value    string
	Category string
	Children []*Rule
}

func (r *Rule) HasKey() bool      { return r.Key != "" }
func (r *Rule) HasValue() bool    { return r.Value != "" }
func (r *Rule) HasCategory() bool { return r.Category != "" }

// match returns the category of the first matching leaf below r, or the
// category of r itself if no child matches. An empty string means no
// match.
func (r *Rule) match(tags osm.Tags, key string) string {
	if r.HasKey() {
		key = r.Key
	}
	v, ok := tags[key]
	if !ok {
		return ""
	}
	if r.HasValue() && r.Value != v {
		return ""
	}
	for _, child := range r.Children {
		if cat := child.match(tags, key); cat != "" {
			return cat
		}
	}
	return r.Category
}

// Forest holds all top level rules in file order.
type Forest struct {
	Rules []*Rule
}

// CategoryFor returns the category of the first top level rule that
// matches tags.
func (f *Forest) CategoryFor(tags osm.Tags) (string, bool) {
	if len(tags) == 0 {
		return "", false
	}
	for _, r := range f.Rules {
		if cat := r.match(tags, ""); cat != "" {
			return cat, true
		}
	}
	return "", false
}

// Keys returns all keys used by the rules.
func (f *Forest) Keys() map[string]struct{} {
	keys := make(map[string]struct{})
	var walk func(rules []*Rule)
	walk = func(rules []*Rule) {
		for _, r := range rules {
			if r.HasKey() {
				keys[r.Key] = struct{}{}
			}
			walk(r.Children)
		}
	}
	walk(f.Rules)
	return keys
}

// Relevant returns true if tags contain at least one key used by the
// rules. Elements without such a key never get a category.
func (f *Forest) Relevant(tags osm.Tags) bool {
	for _, r := range f.Rules {
		if _, ok := tags[r.Key]; ok {
			return true
		}
	}
	return false
}

// Categories returns all category names in file order without
// duplicates.
func (f *Forest) Categories() []string {
	seen := make(map[string]struct{})
	var cats []string
	var walk func(rules []*Rule)
	walk = func(rules []*Rule) {
		for _, r := range rules {
			if r.HasCategory() {
				if _, ok := seen[r.Category]; !ok {
					seen[r.Category] = struct{}{}
					cats = append(cats, r.Category)
				}
			}
			walk(r.Children)
		}
	}
	walk(f.Rules)
	return cats
}
