// Package taxonomy maps free text onto a fixed set of default categories.
//
// A taxonomy is an indented text file. Lines without indentation are
// category names, indented lines are tags of the last category. Text is
// assigned to the category with the tag most similar to it.
package taxonomy

import (
	"bufio"
	_ "embed"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/xrash/smetrics"
)

//go:embed categories.yml
var defaultCategories string

type Category struct {
	Name string
	Tags []string
}

// Index holds the categories in file order.
type Index struct {
	Categories []Category
}

func Parse(r io.Reader) (*Index, error) {
	idx := &Index{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		level := (len(line) - len(strings.TrimLeft(line, " "))) / 2
		line = strings.TrimSpace(line)
		if level == 0 {
			idx.Categories = append(idx.Categories, Category{Name: line})
			continue
		}
		if len(idx.Categories) == 0 {
			return nil, errors.Errorf("tag %q before first category", line)
		}
		last := &idx.Categories[len(idx.Categories)-1]
		last.Tags = append(last.Tags, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(idx.Categories) == 0 {
		return nil, errors.New("taxonomy is empty")
	}
	return idx, nil
}

var (
	defaultOnce  sync.Once
	defaultIndex *Index
)

// Default returns the bundled taxonomy.
func Default() *Index {
	defaultOnce.Do(func() {
		idx, err := Parse(strings.NewReader(defaultCategories))
		if err != nil {
			panic(err)
		}
		defaultIndex = idx
	})
	return defaultIndex
}

// similarity is the Jaro-Winkler similarity with the usual boost
// threshold and prefix length.
func similarity(a, b string) float64 {
	return smetrics.JaroWinkler(a, b, 0.7, 4)
}

// Assign returns the category with the highest similarity between text
// and any of its tags or its own name. On ties the first category wins.
// The score is 0 and the category empty if nothing is similar at all.
func (idx *Index) Assign(text string) (string, float64) {
	var best string
	var bestScore float64
	text = strings.ToUpper(text)
	if text == "" {
		return best, bestScore
	}
	for _, cat := range idx.Categories {
		for _, tag := range cat.Tags {
			if s := similarity(tag, text); s > bestScore {
				best, bestScore = cat.Name, s
			}
		}
		if s := similarity(cat.Name, text); s > bestScore {
			best, bestScore = cat.Name, s
		}
	}
	return best, bestScore
}
