package classification

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"sort"
	"strings"

	"github.com/smartdatalake/osmwrangle/filter"
)

// WriteYAML writes the hierarchy as indented text. Siblings are sorted by
// id.
func (h *Hierarchy) WriteYAML(w io.Writer) error {
	children := make(map[string][]*Category)
	for _, c := range h.order {
		children[c.Parent] = append(children[c.Parent], c)
	}
	for _, cs := range children {
		sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
	}

	bw := bufio.NewWriter(w)
	var write func(parent string, level int, seen map[string]bool)
	write = func(parent string, level int, seen map[string]bool) {
		if level >= maxLevels || seen[parent] {
			return
		}
		seen[parent] = true
		for _, c := range children[parent] {
			bw.WriteString(strings.Repeat("  ", level))
			bw.WriteString(c.Name)
			bw.WriteString(" " + defaultSeparator)
			bw.WriteString(c.ID)
			bw.WriteByte('\n')
			write(c.ID, level+1, seen)
		}
		delete(seen, parent)
	}
	write("", 0, map[string]bool{})
	return bw.Flush()
}

// WriteFilterCSV writes a two tier CSV classification of all filter
// categories. A category A_B becomes the category A with the
// subcategory B. Categories without "_" are not written.
func WriteFilterCSV(w io.Writer, forest *filter.Forest) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"CATEGORY_ID", "CATEGORY", "SUBCATEGORY_ID", "SUBCATEGORY"})
	for _, cat := range forest.Categories() {
		parts := strings.SplitN(cat, "_", 2)
		if len(parts) != 2 {
			continue
		}
		cw.Write([]string{parts[0], parts[0], cat, parts[1]})
	}
	cw.Flush()
	return cw.Error()
}

// FromFilter returns the classification of all filter categories, as
// written by WriteFilterCSV.
func FromFilter(forest *filter.Forest, opts Options) (*Hierarchy, error) {
	buf := &bytes.Buffer{}
	if err := WriteFilterCSV(buf, forest); err != nil {
		return nil, err
	}
	return ParseCSV(buf, opts)
}
