//go:build levigo

package cache

import (
	"github.com/jmhodges/levigo"
)

const levigoAvailable = true

type levigoEngine struct {
	db    *levigo.DB
	cache *levigo.Cache
	wo    *levigo.WriteOptions
	ro    *levigo.ReadOptions
}

func openLevigo(path string, o *engineOptions) (engine, error) {
	e := &levigoEngine{}
	opts := levigo.NewOptions()
	defer opts.Close()
	opts.SetCreateIfMissing(true)
	if o.CacheSizeM > 0 {
		e.cache = levigo.NewLRUCache(o.CacheSizeM * 1024 * 1024)
		opts.SetCache(e.cache)
	}
	if o.MaxOpenFiles > 0 {
		opts.SetMaxOpenFiles(o.MaxOpenFiles)
	}
	if o.BlockRestartInterval > 0 {
		opts.SetBlockRestartInterval(o.BlockRestartInterval)
	}
	if o.WriteBufferSizeM > 0 {
		opts.SetWriteBufferSize(o.WriteBufferSizeM * 1024 * 1024)
	}
	if o.BlockSizeK > 0 {
		opts.SetBlockSize(o.BlockSizeK * 1024)
	}

	db, err := levigo.Open(path, opts)
	if err != nil {
		if e.cache != nil {
			e.cache.Close()
		}
		return nil, err
	}
	e.db = db
	e.wo = levigo.NewWriteOptions()
	e.ro = levigo.NewReadOptions()
	return e, nil
}

func (e *levigoEngine) Get(key []byte) ([]byte, error) {
	return e.db.Get(e.ro, key)
}

func (e *levigoEngine) Put(key, value []byte) error {
	return e.db.Put(e.wo, key, value)
}

func (e *levigoEngine) PutBatch(keys, values [][]byte) error {
	batch := levigo.NewWriteBatch()
	defer batch.Close()
	for i := range keys {
		batch.Put(keys[i], values[i])
	}
	return e.db.Write(e.wo, batch)
}

func (e *levigoEngine) Count() (int, error) {
	ro := levigo.NewReadOptions()
	ro.SetFillCache(false)
	defer ro.Close()
	it := e.db.NewIterator(ro)
	defer it.Close()
	n := 0
	for it.SeekToFirst(); it.Valid(); it.Next() {
		n++
	}
	return n, it.GetError()
}

func (e *levigoEngine) Close() error {
	if e.ro != nil {
		e.ro.Close()
		e.ro = nil
	}
	if e.wo != nil {
		e.wo.Close()
		e.wo = nil
	}
	if e.db != nil {
		e.db.Close()
		e.db = nil
	}
	if e.cache != nil {
		e.cache.Close()
		e.cache = nil
	}
	return nil
}
