package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const maxLevel = 100

// ParseError is returned for invalid filter files.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return "parsing filters: " + e.Msg
	}
	return fmt.Sprintf("parsing filters, line %d: %s", e.Line, e.Msg)
}

func ParseFile(filename string) (*Forest, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading filter file")
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*Forest, error) {
	forest := &Forest{}
	var levels [maxLevel + 1]*Rule

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		spaces := len(line) - len(strings.TrimLeft(line, " "))
		level := spaces / 2
		if level > maxLevel {
			return nil, &ParseError{lineNumber, fmt.Sprintf("max indentation is %d levels", maxLevel)}
		}

		line = strings.TrimSpace(line)
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, &ParseError{lineNumber, `no "=" character`}
		}
		rule := &Rule{Key: line[:eq], Value: line[eq+1:]}
		if sp := strings.IndexByte(rule.Value, ' '); sp >= 0 {
			rule.Category = strings.TrimSpace(rule.Value[sp+1:])
			rule.Value = rule.Value[:sp]
		}

		if level == 0 {
			if !rule.HasKey() {
				return nil, &ParseError{lineNumber, "no key for top level filter"}
			}
			forest.Rules = append(forest.Rules, rule)
			levels = [maxLevel + 1]*Rule{}
			levels[0] = rule
			continue
		}

		parent := levels[level-1]
		if parent == nil {
			return nil, &ParseError{lineNumber, "invalid indentation"}
		}
		if !rule.HasKey() && !rule.HasValue() {
			return nil, &ParseError{lineNumber, "filters must have at least a key or a value"}
		}
		if parent.HasValue() && !rule.HasKey() {
			return nil, &ParseError{lineNumber, "no key provided after a value"}
		}
		parent.Children = append(parent.Children, rule)
		levels[level] = rule
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading filters")
	}

	for _, r := range forest.Rules {
		if leaf := leafWithoutCategory(r); leaf != nil {
			return nil, &ParseError{Msg: fmt.Sprintf("filter %s=%s has no children and no category", leaf.Key, leaf.Value)}
		}
	}
	return forest, nil
}

func leafWithoutCategory(r *Rule) *Rule {
	if len(r.Children) == 0 && !r.HasCategory() {
		return r
	}
	for _, child := range r.Children {
		if leaf := leafWithoutCategory(child); leaf != nil {
			return leaf
		}
	}
	return nil
}
