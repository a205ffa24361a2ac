package geom

import (
	"github.com/paulmach/orb"
)

// line is a fragment of a ring that gets merged with other fragments
// sharing an end point.
type line struct {
	points orb.LineString
	merged bool
}

func newLine(ls orb.LineString) *line {
	l := line{}
	l.points = make(orb.LineString, len(ls))
	copy(l.points, ls)
	return &l
}

func (l *line) first() orb.Point { return l.points[0] }
func (l *line) last() orb.Point  { return l.points[len(l.points)-1] }

func reversePoints(points orb.LineString) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}

// mergeLines joins all line strings that share end points. Lines are
// reversed as required. The result keeps the order in which the first
// fragment of each merged line was passed in. Input line strings are not
// modified.
func mergeLines(lines []orb.LineString) []orb.LineString {
	endpoints := make(map[orb.Point]*line)
	all := make([]*line, 0, len(lines))

	for _, ls := range lines {
		if len(ls) < 2 {
			continue
		}
		l := newLine(ls)
		all = append(all, l)
		left := l.first()
		right := l.last()

		if orig, ok := endpoints[left]; ok {
			// left point connects to..
			delete(endpoints, left)
			if left == orig.last() {
				// .. right end
				orig.points = append(orig.points, l.points[1:]...)
			} else {
				// .. left end, reverse orig
				reversePoints(orig.points)
				orig.points = append(orig.points, l.points[1:]...)
			}
			l.merged = true
			if rightLine, ok := endpoints[right]; ok && rightLine != orig {
				// right point connects to another line, join both
				delete(endpoints, right)
				if right == rightLine.first() {
					orig.points = append(orig.points, rightLine.points[1:]...)
				} else {
					reversePoints(rightLine.points)
					orig.points = append(orig.points[:len(orig.points)-1], rightLine.points...)
				}
				rightLine.merged = true
				endpoints[orig.last()] = orig
			} else if right != orig.first() {
				endpoints[right] = orig
			} else {
				// closed
				delete(endpoints, right)
			}
		} else if orig, ok := endpoints[right]; ok {
			// right point connects to..
			delete(endpoints, right)
			if right == orig.first() {
				// .. left end
				joined := make(orb.LineString, 0, len(l.points)+len(orig.points)-1)
				joined = append(joined, l.points[:len(l.points)-1]...)
				orig.points = append(joined, orig.points...)
			} else {
				// .. right end, reverse l
				reversePoints(l.points)
				orig.points = append(orig.points[:len(orig.points)-1], l.points...)
			}
			l.merged = true
			if orig.first() != orig.last() {
				endpoints[left] = orig
			} else {
				delete(endpoints, left)
			}
		} else {
			// not connected (yet)
			endpoints[left] = l
			endpoints[right] = l
		}
	}

	result := make([]orb.LineString, 0, len(all))
	for _, l := range all {
		if !l.merged {
			result = append(result, l.points)
		}
	}
	return result
}

// closeRings merges fragments and returns all resulting closed rings.
// Fragments that do not form a closed ring are dropped.
func closeRings(fragments []orb.LineString) []orb.Ring {
	var rings []orb.Ring
	for _, ls := range mergeLines(fragments) {
		if closedLine(ls) {
			rings = append(rings, orb.Ring(ls))
		}
	}
	return rings
}
