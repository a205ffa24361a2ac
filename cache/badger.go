package cache

import (
	"github.com/dgraph-io/badger"

	"github.com/smartdatalake/osmwrangle/log"
)

type badgerEngine struct {
	db *badger.DB
}

// badgerLogger routes badger messages through our log levels.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, v ...interface{}) {
	log.Printf("[error] badger: "+format, v...)
}
func (badgerLogger) Warningf(format string, v ...interface{}) {
	log.Printf("[warn] badger: "+format, v...)
}
func (badgerLogger) Infof(format string, v ...interface{}) {
	log.Printf("[debug] badger: "+format, v...)
}
func (badgerLogger) Debugf(format string, v ...interface{}) {
	log.Printf("[debug] badger: "+format, v...)
}

func openBadger(path string, o *engineOptions) (engine, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = badgerLogger{}
	if o.WriteBufferSizeM > 0 {
		opts.MaxTableSize = int64(o.WriteBufferSizeM) * 1024 * 1024
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerEngine{db: db}, nil
}

func (e *badgerEngine) Get(key []byte) ([]byte, error) {
	var data []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	return data, err
}

func (e *badgerEngine) Put(key, value []byte) error {
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// PutBatch writes all entries, committing early whenever a transaction
// grows too big.
func (e *badgerEngine) PutBatch(keys, values [][]byte) error {
	txn := e.db.NewTransaction(true)
	defer func() { txn.Discard() }()
	for i := range keys {
		err := txn.Set(keys[i], values[i])
		if err == badger.ErrTxnTooBig {
			if err := txn.Commit(); err != nil {
				return err
			}
			txn = e.db.NewTransaction(true)
			err = txn.Set(keys[i], values[i])
		}
		if err != nil {
			return err
		}
	}
	return txn.Commit()
}

func (e *badgerEngine) Count() (int, error) {
	n := 0
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (e *badgerEngine) Close() error {
	return e.db.Close()
}
