// Package cache stores geometries of OSM nodes, ways and relations by id.
//
// Stores are scratch structures of a single run. They keep a geometry or
// an empty marker per id, so that ids that were seen without a usable
// geometry can be told apart from ids that were never stored.
package cache

import (
	bin "encoding/binary"
	"errors"

	"github.com/paulmach/orb"
)

var ErrClosed = errors.New("geometry store closed")

// GeometryStore is the contract shared by the memory and disk stores.
// Get returns nil for absent ids and for ids stored with an empty or nil
// geometry. ContainsKey is true for both stored geometries and empty
// markers. All methods are safe for concurrent use.
type GeometryStore interface {
	Put(id int64, g orb.Geometry) error
	PutAll(geoms map[int64]orb.Geometry) error
	Get(id int64) orb.Geometry
	ContainsKey(id int64) bool
	Size() int
	// Clear removes all entries and releases the underlying storage.
	Clear() error
	Close() error
}

func idToKeyBuf(id int64) []byte {
	b := make([]byte, 8)
	bin.BigEndian.PutUint64(b, uint64(id))
	return b[:8]
}

func idFromKeyBuf(buf []byte) int64 {
	return int64(bin.BigEndian.Uint64(buf))
}
