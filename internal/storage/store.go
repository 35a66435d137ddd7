package storage

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var (
	KeyNotFound = errors.New("key not found")
	KeyExpired  = errors.New("key has expired")
)

// Store is the contract every storage engine satisfies. Keys are stored
// bit-for-bit as given. Scalar values and lists live under separate keys;
// reusing one key for both kinds is undefined.
type Store interface {
	Get(key string) ([]byte, error)
	Exists(key string) (bool, error)

	Set(key string, value []byte) error
	SetExpiring(key string, value []byte, lifetime time.Duration) error

	// Incr adds one to the decimal integer stored at key, treating an
	// absent key as 0, and returns the new value.
	Incr(key string) (int64, error)

	RPush(key string, value []byte) error
	LRange(key string, start, stop int64) ([][]byte, error)

	FlushAll() error
}

// counterValue parses the integer behind a counter key. An absent value
// (nil or empty) counts as 0.
func counterValue(raw []byte) (int64, error) {
	if len(raw) == 0 {
		return 0, nil
	}

	value, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "counter key does not hold an integer")
	}

	return value, nil
}

func formatCounter(value int64) string {
	return strconv.FormatInt(value, 10)
}

// rangeBounds resolves redis-style LRANGE indices (negative values count
// from the end, stop is inclusive) against a list of the given length.
// The third return value is false when the range selects nothing.
func rangeBounds(length int, start, stop int64) (int, int, bool) {
	n := int64(length)

	if start < 0 {
		start += n
	}
	if start < 0 {
		start = 0
	}
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}

	if n == 0 || start >= n || start > stop {
		return 0, 0, false
	}

	return int(start), int(stop), true
}
