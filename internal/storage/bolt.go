package storage

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	kvBucket    = []byte("kv")
	listsBucket = []byte("lists")
)

type boltDb struct {
	db *bolt.DB
}

// Scalar layout: 8 bytes big endian absolute expiry (unix nanoseconds,
// 0 = never) followed by the raw value.
func encodeScalar(value []byte, expiresAt int64) []byte {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(expiresAt))
	copy(buf[8:], value)

	return buf
}

func decodeScalar(buf []byte) (value []byte, expiresAt int64) {
	expiresAt = int64(binary.BigEndian.Uint64(buf[:8]))
	value = append([]byte(nil), buf[8:]...)

	return value, expiresAt
}

func (s *boltDb) Get(key string) ([]byte, error) {
	var value []byte
	var expiresAt int64
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(kvBucket).Get([]byte(key))
		if raw == nil {
			return nil
		}

		found = true
		value, expiresAt = decodeScalar(raw)

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, KeyNotFound
	}
	if expiresAt != 0 && time.Now().UnixNano() >= expiresAt {
		return nil, KeyExpired
	}

	return value, nil
}

func (s *boltDb) Exists(key string) (bool, error) {
	_, err := s.Get(key)
	if err == KeyNotFound || err == KeyExpired {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *boltDb) Set(key string, value []byte) error {
	return s.setScalar(key, value, 0)
}

func (s *boltDb) SetExpiring(key string, value []byte, lifetime time.Duration) error {
	return s.setScalar(key, value, time.Now().Add(lifetime).UnixNano())
}

func (s *boltDb) setScalar(key string, value []byte, expiresAt int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(kvBucket).Put([]byte(key), encodeScalar(value, expiresAt))
	})
}

func (s *boltDb) Incr(key string) (int64, error) {
	counter := int64(0)

	// bolt serializes write transactions, so read-modify-write inside a
	// single Update is atomic.
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(kvBucket)

		var current []byte
		if raw := bucket.Get([]byte(key)); raw != nil {
			current, _ = decodeScalar(raw)
		}

		value, err := counterValue(current)
		if err != nil {
			return err
		}

		counter = value + 1

		return bucket.Put([]byte(key), encodeScalar([]byte(formatCounter(counter)), 0))
	})
	if err != nil {
		return 0, err
	}

	return counter, nil
}

func (s *boltDb) RPush(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		list, err := tx.Bucket(listsBucket).CreateBucketIfNotExists([]byte(key))
		if err != nil {
			return err
		}

		index, err := list.NextSequence()
		if err != nil {
			return err
		}

		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], index)

		return list.Put(buf[:], value)
	})
}

func (s *boltDb) LRange(key string, start, stop int64) ([][]byte, error) {
	var list [][]byte

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(listsBucket).Bucket([]byte(key))
		if bucket == nil {
			return nil
		}

		// Keys are big endian sequence numbers, so the cursor walks the
		// list in insertion order.
		return bucket.ForEach(func(_, value []byte) error {
			list = append(list, append([]byte(nil), value...))
			return nil
		})
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

func (s *boltDb) FlushAll() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{kvBucket, listsBucket} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		return nil
	})
}

func NewBoltDb(storagePath string) (Store, error) {
	db, err := bolt.Open(storagePath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "could not open bolt database")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{kvBucket, listsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &boltDb{
		db: db,
	}, nil
}
