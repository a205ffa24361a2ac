package cache

import (
	"os"
	"sync"

	"github.com/coocood/freecache"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/cache/binary"
	"github.com/smartdatalake/osmwrangle/geom"
	"github.com/smartdatalake/osmwrangle/log"
)

// engine is an ordered key/value store on disk. Get returns nil and no
// error for missing keys.
type engine interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	PutBatch(keys, values [][]byte) error
	Count() (int, error)
	Close() error
}

type engineOpener func(path string, opts *engineOptions) (engine, error)

// DiskStore keeps binary encoded geometries in an on-disk key/value
// engine. A read cache of encoded values sits in front of the engine.
type DiskStore struct {
	dir    string
	mu     sync.RWMutex
	db     engine
	rcache *freecache.Cache
	closed bool
}

func openDiskStore(dir string, open engineOpener, opts *engineOptions) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating store dir %s", dir)
	}
	db, err := open(dir, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening store %s", dir)
	}
	s := &DiskStore{dir: dir, db: db}
	if opts.ReadCacheSizeM > 0 {
		s.rcache = freecache.NewCache(opts.ReadCacheSizeM * 1024 * 1024)
	}
	return s, nil
}

func marshal(g orb.Geometry) ([]byte, error) {
	if geom.IsEmpty(g) {
		return binary.MarshalEmpty()
	}
	return binary.MarshalGeometry(g)
}

func (s *DiskStore) Put(id int64, g orb.Geometry) error {
	data, err := marshal(g)
	if err != nil {
		return errors.Wrapf(err, "encoding geometry %d", id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	key := idToKeyBuf(id)
	if err := s.db.Put(key, data); err != nil {
		return err
	}
	if s.rcache != nil {
		s.rcache.Del(key)
	}
	return nil
}

func (s *DiskStore) PutAll(geoms map[int64]orb.Geometry) error {
	keys := make([][]byte, 0, len(geoms))
	values := make([][]byte, 0, len(geoms))
	for id, g := range geoms {
		data, err := marshal(g)
		if err != nil {
			return errors.Wrapf(err, "encoding geometry %d", id)
		}
		keys = append(keys, idToKeyBuf(id))
		values = append(values, data)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.db.PutBatch(keys, values); err != nil {
		return err
	}
	if s.rcache != nil {
		for _, key := range keys {
			s.rcache.Del(key)
		}
	}
	return nil
}

func (s *DiskStore) load(id int64) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	key := idToKeyBuf(id)
	if s.rcache != nil {
		if data, err := s.rcache.Get(key); err == nil {
			return data
		}
	}
	data, err := s.db.Get(key)
	if err != nil {
		log.Printf("[warn] reading geometry %d: %s", id, err)
		return nil
	}
	if data != nil && s.rcache != nil {
		s.rcache.Set(key, data, 0)
	}
	return data
}

// Get returns the geometry for id. Geometries that fail to decode are
// logged and reported as absent.
func (s *DiskStore) Get(id int64) orb.Geometry {
	data := s.load(id)
	if data == nil {
		return nil
	}
	g, err := binary.UnmarshalGeometry(data)
	if err != nil {
		log.Printf("[warn] decoding geometry %d: %s", id, err)
		return nil
	}
	return g
}

func (s *DiskStore) ContainsKey(id int64) bool {
	return s.load(id) != nil
}

func (s *DiskStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0
	}
	n, err := s.db.Count()
	if err != nil {
		log.Printf("[warn] counting %s: %s", s.dir, err)
	}
	return n
}

// Clear closes the engine and removes the store directory. The store
// cannot be used afterwards.
func (s *DiskStore) Clear() error {
	if err := s.Close(); err != nil {
		return err
	}
	return os.RemoveAll(s.dir)
}

func (s *DiskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.rcache != nil {
		s.rcache.Clear()
	}
	return s.db.Close()
}
