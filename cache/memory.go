package cache

import (
	"github.com/paulmach/orb"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/smartdatalake/osmwrangle/geom"
)

// MemoryStore keeps all geometries in a concurrent map. Empty geometries
// are stored as nil values.
type MemoryStore struct {
	m *xsync.MapOf[int64, orb.Geometry]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: xsync.NewMapOf[int64, orb.Geometry]()}
}

func (s *MemoryStore) Put(id int64, g orb.Geometry) error {
	if geom.IsEmpty(g) {
		g = nil
	}
	s.m.Store(id, g)
	return nil
}

func (s *MemoryStore) PutAll(geoms map[int64]orb.Geometry) error {
	for id, g := range geoms {
		s.Put(id, g)
	}
	return nil
}

func (s *MemoryStore) Get(id int64) orb.Geometry {
	g, _ := s.m.Load(id)
	return g
}

func (s *MemoryStore) ContainsKey(id int64) bool {
	_, ok := s.m.Load(id)
	return ok
}

func (s *MemoryStore) Size() int {
	return s.m.Size()
}

func (s *MemoryStore) Clear() error {
	s.m.Clear()
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
