// Package bdgr persists receipts in a badger key/value store, one JSON
// document per receipt under a receipt: key prefix.
package bdgr

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/badger"
	jsoniter "github.com/json-iterator/go"

	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/store"
)

var receiptPref = []byte("receipt:")

func badgerRewriteError(err error) error {
	switch err {
	case badger.ErrKeyNotFound:
		return store.ReceiptNotFound
	case badger.ErrEmptyKey:
		return store.IDIsRequired
	default:
		return err
	}
}

// New creates a badger based receipt store rooted at baseDir.
func New(baseDir string) store.ReceiptStore {
	return &receiptStore{baseDir: baseDir}
}

type receiptStore struct {
	baseDir string
	db      *badger.DB
	init    sync.Once
	close   sync.Once
}

func (s *receiptStore) Initialize() error {
	var err error
	s.init.Do(func() {
		opts := badger.DefaultOptions(s.baseDir)
		opts.Logger = nil
		s.db, err = badger.Open(opts)
	})
	return err
}

func (s *receiptStore) Close() error {
	var err error
	s.close.Do(func() {
		if s.db != nil {
			err = s.db.Close()
		}
	})
	return err
}

func key(id string) []byte {
	return append(append([]byte(nil), receiptPref...), id...)
}

func (s *receiptStore) Add(r model.Receipt) error {
	if r.ID == "" {
		return store.IDIsRequired
	}
	data, err := jsoniter.Marshal(r)
	if err != nil {
		return fmt.Errorf("json marshal failed: %v", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key(r.ID))
		if err == nil {
			return store.ReceiptAlreadyExists
		}
		if err != badger.ErrKeyNotFound {
			return badgerRewriteError(err)
		}
		return txn.Set(key(r.ID), data)
	})
}

func (s *receiptStore) Get(id string) (*model.Receipt, error) {
	if id == "" {
		return nil, store.IDIsRequired
	}
	var out model.Receipt
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return badgerRewriteError(err)
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return badgerRewriteError(err)
		}
		if e := jsoniter.Unmarshal(data, &out); e != nil {
			return fmt.Errorf("json unmarshal failed: %v", e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *receiptStore) List() ([]model.Receipt, error) {
	receipts := make([]model.Receipt, 0, 16)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(receiptPref); it.ValidForPrefix(receiptPref); it.Next() {
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return badgerRewriteError(err)
			}
			var r model.Receipt
			if e := jsoniter.Unmarshal(data, &r); e != nil {
				return fmt.Errorf("json unmarshal failed: %v", e)
			}
			receipts = append(receipts, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].UploadedAt.Before(receipts[j].UploadedAt)
	})
	return receipts, nil
}

func (s *receiptStore) Clear() (int, error) {
	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		keys := make([][]byte, 0, 16)
		for it.Seek(receiptPref); it.ValidForPrefix(receiptPref); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return badgerRewriteError(err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
