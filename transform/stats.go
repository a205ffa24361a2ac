package transform

import (
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/puzpuzpuz/xsync/v3"
)

// Stats counts the emitted values per attribute and the bounding box of
// all transformed geometries. It is safe for concurrent use.
type Stats struct {
	attrs *xsync.MapOf[string, int64]

	mu       sync.Mutex
	bound    orb.Bound
	hasBound bool
}

func NewStats() *Stats {
	return &Stats{attrs: xsync.NewMapOf[string, int64]()}
}

func (s *Stats) count(key string) {
	s.attrs.Compute(key, func(old int64, loaded bool) (int64, bool) {
		return old + 1, false
	})
}

func (s *Stats) extend(b orb.Bound) {
	s.mu.Lock()
	if !s.hasBound {
		s.bound = b
		s.hasBound = true
	} else {
		s.bound = s.bound.Union(b)
	}
	s.mu.Unlock()
}

// Count returns the number of emitted values of the attribute.
func (s *Stats) Count(key string) int64 {
	n, _ := s.attrs.Load(key)
	return n
}

type AttrCount struct {
	Key   string
	Count int64
}

// Attributes returns the counts of all attributes, sorted by key.
func (s *Stats) Attributes() []AttrCount {
	var counts []AttrCount
	s.attrs.Range(func(k string, n int64) bool {
		counts = append(counts, AttrCount{k, n})
		return true
	})
	sort.Slice(counts, func(i, j int) bool { return counts[i].Key < counts[j].Key })
	return counts
}

// Bound returns the bounding box of all geometries in WGS84. ok is false if
// no geometry was transformed.
func (s *Stats) Bound() (b orb.Bound, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound, s.hasBound
}
