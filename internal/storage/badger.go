package storage

import (
	"encoding/binary"
	"time"

	"github.com/dgraph-io/badger"
)

// List entries live at `key + "!" + 8-byte big-endian index` so that a
// prefix scan returns them in insertion order; the next index is tracked
// at `key + "#len"`.
const (
	listEntrySep  = "!"
	listLenSuffix = "#len"
)

type badgerDb struct {
	db *badger.DB
}

func (s *badgerDb) Get(key string) ([]byte, error) {
	var value []byte
	now := uint64(time.Now().Unix())

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return KeyNotFound
		}
		if err != nil {
			return err
		}

		expiresAt := item.ExpiresAt()
		if expiresAt != 0 && now >= expiresAt {
			return KeyExpired
		}

		if item.IsDeletedOrExpired() {
			return KeyNotFound
		}

		value, err = item.ValueCopy(nil)

		return err
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *badgerDb) Exists(key string) (bool, error) {
	_, err := s.Get(key)
	if err == KeyNotFound || err == KeyExpired {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *badgerDb) Set(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (s *badgerDb) SetExpiring(key string, value []byte, lifetime time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(lifetime))
	})
}

func (s *badgerDb) Incr(key string) (int64, error) {
	counter := int64(0)

	err := s.db.Update(func(txn *badger.Txn) error {
		var raw []byte

		item, err := txn.Get([]byte(key))
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		if err == nil && !item.IsDeletedOrExpired() {
			raw, err = item.ValueCopy(nil)
			if err != nil {
				return err
			}
		}

		current, err := counterValue(raw)
		if err != nil {
			return err
		}

		counter = current + 1

		return txn.Set([]byte(key), []byte(formatCounter(counter)))
	})
	if err != nil {
		return 0, err
	}

	return counter, nil
}

func (s *badgerDb) RPush(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		lenKey := []byte(key + listLenSuffix)
		next := uint64(0)

		item, err := txn.Get(lenKey)
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		if err == nil {
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			next = binary.BigEndian.Uint64(raw)
		}

		if err := txn.Set(listEntryKey(key, next), value); err != nil {
			return err
		}

		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], next+1)

		return txn.Set(lenKey, buf[:])
	})
}

func (s *badgerDb) LRange(key string, start, stop int64) ([][]byte, error) {
	var list [][]byte
	prefix := []byte(key + listEntrySep)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			list = append(list, value)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	first, last, ok := rangeBounds(len(list), start, stop)
	if !ok {
		return nil, nil
	}

	return list[first : last+1], nil
}

func (s *badgerDb) FlushAll() error {
	var keys [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, append([]byte(nil), it.Item().Key()...))
		}

		return nil
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		return nil
	})
}

func listEntryKey(key string, index uint64) []byte {
	entryKey := make([]byte, 0, len(key)+len(listEntrySep)+8)
	entryKey = append(entryKey, key...)
	entryKey = append(entryKey, listEntrySep...)

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], index)

	return append(entryKey, buf[:]...)
}

func NewBadgerDb(logger badger.Logger, storagePath string) (Store, error) {
	opts := badger.DefaultOptions(storagePath)
	opts.SyncWrites = false
	opts.Logger = logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &badgerDb{
		db: db,
	}, nil
}
