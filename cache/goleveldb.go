package cache

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

type goleveldbEngine struct {
	db *leveldb.DB
}

func openGoLevelDB(path string, o *engineOptions) (engine, error) {
	opts := &opt.Options{}
	if o.CacheSizeM > 0 {
		opts.BlockCacheCapacity = o.CacheSizeM * opt.MiB
	}
	if o.MaxOpenFiles > 0 {
		opts.OpenFilesCacheCapacity = o.MaxOpenFiles
	}
	if o.BlockRestartInterval > 0 {
		opts.BlockRestartInterval = o.BlockRestartInterval
	}
	if o.WriteBufferSizeM > 0 {
		opts.WriteBuffer = o.WriteBufferSizeM * opt.MiB
	}
	if o.BlockSizeK > 0 {
		opts.BlockSize = o.BlockSizeK * opt.KiB
	}
	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, err
	}
	return &goleveldbEngine{db: db}, nil
}

func (e *goleveldbEngine) Get(key []byte) ([]byte, error) {
	data, err := e.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return data, err
}

func (e *goleveldbEngine) Put(key, value []byte) error {
	return e.db.Put(key, value, nil)
}

func (e *goleveldbEngine) PutBatch(keys, values [][]byte) error {
	batch := new(leveldb.Batch)
	for i := range keys {
		batch.Put(keys[i], values[i])
	}
	return e.db.Write(batch, nil)
}

func (e *goleveldbEngine) Count() (int, error) {
	it := e.db.NewIterator(nil, nil)
	defer it.Release()
	n := 0
	for it.Next() {
		n++
	}
	return n, it.Error()
}

func (e *goleveldbEngine) Close() error {
	return e.db.Close()
}
