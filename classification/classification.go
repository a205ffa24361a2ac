// Package classification parses category hierarchies.
//
// A hierarchy is read either from indented text, one category per line
// with its id after a separator:
//
//	Food #1
//	  Restaurant #103
//
// or from CSV files with alternating columns of names and ids from the
// top tier to the finest tier. Each category is matched against the
// default taxonomy and gets a deterministic UUID from its id and name.
package classification

import (
	"fmt"

	"github.com/smartdatalake/osmwrangle/classification/taxonomy"
)

const (
	maxLevels        = 10
	defaultSeparator = "#"
)

type Category struct {
	UUID string
	ID   string
	Name string
	// Parent is the id of the parent category, empty for top tier
	// categories.
	Parent string
	// Embedded is the assigned category of the default taxonomy and Score
	// the similarity of that assignment.
	Embedded string
	Score    float64
}

type Options struct {
	// ClassifyByName is set if records reference categories by name
	// instead of by id.
	ClassifyByName bool
	// Separator between name and id in indented hierarchies.
	Separator string
	// Index is the taxonomy used for embedded categories. Defaults to
	// taxonomy.Default().
	Index *taxonomy.Index
}

func (o *Options) separator() string {
	if o.Separator == "" {
		return defaultSeparator
	}
	return o.Separator
}

func (o *Options) index() *taxonomy.Index {
	if o.Index == nil {
		return taxonomy.Default()
	}
	return o.Index
}

// Hierarchy is the parsed classification. It is read-only after parsing
// and safe for concurrent use.
type Hierarchy struct {
	ClassifyByName bool
	byName         map[string]*Category
	order          []*Category
	uuids          map[string]string
	tiers          int
}

func newHierarchy(classifyByName bool) *Hierarchy {
	return &Hierarchy{
		ClassifyByName: classifyByName,
		byName:         make(map[string]*Category),
		uuids:          make(map[string]string),
	}
}

// add stores c by name. A later category with the same name replaces the
// earlier one.
func (h *Hierarchy) add(c *Category) {
	if prev, ok := h.byName[c.Name]; ok {
		for i := range h.order {
			if h.order[i] == prev {
				h.order[i] = c
				break
			}
		}
	} else {
		h.order = append(h.order, c)
	}
	h.byName[c.Name] = c
	h.uuids[c.ID] = c.UUID
}

func (h *Hierarchy) ByName(name string) *Category {
	return h.byName[name]
}

// ByID returns the first category with id.
func (h *Hierarchy) ByID(id string) *Category {
	for _, c := range h.order {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// UUIDForName returns the UUID of the category name, or an empty string.
func (h *Hierarchy) UUIDForName(name string) string {
	if c, ok := h.byName[name]; ok {
		return c.UUID
	}
	return ""
}

// UUIDForID returns the UUID of the category id, or an empty string.
func (h *Hierarchy) UUIDForID(id string) string {
	return h.uuids[id]
}

func (h *Hierarchy) EmbeddedCategoryFor(name string) string {
	if c, ok := h.byName[name]; ok {
		return c.Embedded
	}
	return ""
}

// Categories returns all categories in the order they were parsed.
func (h *Hierarchy) Categories() []*Category {
	return h.order
}

func (h *Hierarchy) Len() int { return len(h.order) }

func (h *Hierarchy) Tiers() int { return h.tiers }

func (h *Hierarchy) String() string {
	return fmt.Sprintf("%d categories in %d tiers", h.Len(), h.Tiers())
}
