package classification

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/util"
)

// ParseError is returned for invalid classification files. Line is 0 for
// errors that do not belong to a single line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return "parsing classification: " + e.Msg
	}
	return fmt.Sprintf("parsing classification, line %d: %s", e.Line, e.Msg)
}

var errEmpty = &ParseError{Msg: "classification is empty"}

// ParseFile parses an indented (.yml, .yaml) or CSV (.csv) hierarchy.
func ParseFile(filename string, opts Options) (*Hierarchy, error) {
	var parse func(io.Reader, Options) (*Hierarchy, error)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yml", ".yaml":
		parse = ParseYAML
	case ".csv":
		parse = ParseCSV
	default:
		return nil, errors.Errorf("classification %s must be a .yml or .csv file", filename)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading classification")
	}
	defer f.Close()
	return parse(f, opts)
}

func newCategory(id, name string, emb string, score float64) *Category {
	return &Category{
		UUID:     util.NameUUID(id + name).String(),
		ID:       id,
		Name:     name,
		Embedded: emb,
		Score:    score,
	}
}

// ParseYAML parses an indented hierarchy. Two spaces indent one tier.
func ParseYAML(r io.Reader, opts Options) (*Hierarchy, error) {
	h := newHierarchy(opts.ClassifyByName)
	sep := opts.separator()
	idx := opts.index()
	var levels [maxLevels + 1]*Category

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		level := (len(line) - len(strings.TrimLeft(line, " "))) / 2
		if level > maxLevels {
			return nil, &ParseError{lineNumber, fmt.Sprintf("maximum depth of classification is %d levels", maxLevels)}
		}

		parts := strings.SplitN(strings.TrimSpace(line), sep, 2)
		if len(parts) != 2 {
			return nil, &ParseError{lineNumber, fmt.Sprintf("no %q found before identifier", sep)}
		}
		id := strings.TrimSpace(strings.Replace(parts[1], sep, " ", -1))
		name := strings.TrimSpace(parts[0])
		emb, score := idx.Assign(name)

		if level == 0 {
			if id == "" {
				return nil, &ParseError{lineNumber, "no identifier given for top-tier category"}
			}
			c := newCategory(id, name, emb, score)
			h.add(c)
			levels = [maxLevels + 1]*Category{}
			levels[0] = c
			continue
		}

		parent := levels[level-1]
		if parent == nil {
			return nil, &ParseError{lineNumber, "invalid indentation"}
		}
		if id == "" {
			return nil, &ParseError{lineNumber, "no identifier provided for a category"}
		}
		if parent.Score > score {
			emb, score = parent.Embedded, parent.Score
		}
		c := newCategory(id, name, emb, score)
		c.Parent = parent.ID
		h.add(c)
		levels[level] = c
		if level > h.tiers {
			h.tiers = level
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading classification")
	}
	if h.Len() == 0 {
		return nil, errEmpty
	}
	// tiers counts levels, top tier is level 0
	h.tiers++
	return h, nil
}

// ParseCSV parses a hierarchy from CSV records with a header row. Each
// record lists pairs of columns from the top tier to the finest tier.
// The pairs are (name, id) if categories are referenced by id and
// (id, name) if they are referenced by name.
func ParseCSV(r io.Reader, opts Options) (*Hierarchy, error) {
	h := newHierarchy(opts.ClassifyByName)
	idx := opts.index()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if perr, ok := err.(*csv.ParseError); ok {
				return nil, &ParseError{perr.Line, perr.Err.Error()}
			}
			return nil, errors.Wrap(err, "reading classification")
		}
		if first {
			first = false
			continue
		}

		var parent, parentEmb string
		var parentScore float64
		level := 0
		for i := 0; i+1 < len(rec); i += 2 {
			if strings.TrimSpace(rec[i+1]) == "" {
				continue
			}
			level++
			var id, name, text string
			if !opts.ClassifyByName {
				name = strings.TrimSpace(rec[i])
				id = strings.TrimSpace(rec[i+1])
				text = id
			} else {
				id = strings.TrimSpace(rec[i])
				name = strings.TrimSpace(rec[i+1])
				text = name
			}
			if id == "" || name == "" {
				continue
			}
			emb, score := idx.Assign(text)
			if parentScore > score {
				emb, score = parentEmb, parentScore
			}
			c := newCategory(id, name, emb, score)
			c.Parent = parent
			parent, parentEmb, parentScore = id, emb, score

			if prev := h.byName[name]; prev != nil && prev.ID == id {
				continue
			}
			h.add(c)
			if level > h.tiers {
				h.tiers = level
			}
		}
	}
	if h.Len() == 0 {
		return nil, errEmpty
	}
	return h, nil
}
