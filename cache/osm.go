package cache

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/log"
)

type StoreKind string

const (
	MemoryKind    StoreKind = "memory"
	GoLevelDBKind StoreKind = "goleveldb"
	BadgerKind    StoreKind = "badger"
	LevelDBKind   StoreKind = "leveldb"
	AutoKind      StoreKind = "auto"
)

func ParseStoreKind(s string) (StoreKind, error) {
	switch k := StoreKind(strings.ToLower(s)); k {
	case MemoryKind, GoLevelDBKind, BadgerKind, LevelDBKind, AutoKind:
		return k, nil
	case "":
		return AutoKind, nil
	}
	return "", errors.Errorf("unknown store %q", s)
}

// ResolveKind replaces AutoKind with a concrete kind. Input files larger
// than the configured limit are stored on disk.
func ResolveKind(kind StoreKind, inputSize int64) StoreKind {
	if kind != AutoKind {
		return kind
	}
	if inputSize > globalCacheOptions.AutoMaxInputM*1024*1024 {
		return GoLevelDBKind
	}
	return MemoryKind
}

func opener(kind StoreKind) (engineOpener, error) {
	switch kind {
	case GoLevelDBKind:
		return openGoLevelDB, nil
	case BadgerKind:
		return openBadger, nil
	case LevelDBKind:
		if !levigoAvailable {
			return nil, errors.New("leveldb store requires a build with -tags levigo")
		}
		return openLevigo, nil
	}
	return nil, errors.Errorf("no disk engine for store %q", kind)
}

// GeometryCache groups the node, way and relation stores of one run.
type GeometryCache struct {
	dir       string
	Nodes     GeometryStore
	Ways      GeometryStore
	Relations GeometryStore
	Kind      StoreKind
	opened    bool
}

func NewGeometryCache(dir string) *GeometryCache {
	return &GeometryCache{dir: dir}
}

// Open creates the three stores. kind must not be AutoKind.
func (c *GeometryCache) Open(kind StoreKind) error {
	c.Kind = kind
	if kind == MemoryKind {
		c.Nodes = NewMemoryStore()
		c.Ways = NewMemoryStore()
		c.Relations = NewMemoryStore()
		c.opened = true
		return nil
	}

	open, err := opener(kind)
	if err != nil {
		return err
	}
	if c.Nodes, err = openDiskStore(filepath.Join(c.dir, "nodes"), open, &globalCacheOptions.Nodes); err != nil {
		c.Close()
		return err
	}
	if c.Ways, err = openDiskStore(filepath.Join(c.dir, "ways"), open, &globalCacheOptions.Ways); err != nil {
		c.Close()
		return err
	}
	if c.Relations, err = openDiskStore(filepath.Join(c.dir, "relations"), open, &globalCacheOptions.Relations); err != nil {
		c.Close()
		return err
	}
	c.opened = true
	return nil
}

func (c *GeometryCache) Close() {
	if c.Nodes != nil {
		c.Nodes.Close()
		c.Nodes = nil
	}
	if c.Ways != nil {
		c.Ways.Close()
		c.Ways = nil
	}
	if c.Relations != nil {
		c.Relations.Close()
		c.Relations = nil
	}
	c.opened = false
}

// Exists returns true if the cache is opened or a store directory from an
// earlier run is present.
func (c *GeometryCache) Exists() bool {
	if c.opened {
		return true
	}
	for _, name := range []string{"nodes", "ways", "relations"} {
		if _, err := os.Stat(filepath.Join(c.dir, name)); !os.IsNotExist(err) {
			return true
		}
	}
	return false
}

// Clear releases all stores. Disk stores remove their directories.
func (c *GeometryCache) Clear() error {
	var firstErr error
	for _, s := range []GeometryStore{c.Nodes, c.Ways, c.Relations} {
		if s == nil {
			continue
		}
		if err := s.Clear(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.Close()
	return firstErr
}

// Remove deletes store directories left over from an earlier run.
func (c *GeometryCache) Remove() error {
	if c.opened {
		c.Close()
	}
	for _, name := range []string{"nodes", "ways", "relations"} {
		if err := os.RemoveAll(filepath.Join(c.dir, name)); err != nil {
			return err
		}
	}
	log.Printf("[info] removed stores in %s", c.dir)
	return nil
}
