package cachetap

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cachetap/cachetap/internal/storage"
)

// storeOpName is the qualified name under which Store calls are counted
// and recorded. It is a storage key and must stay stable.
const storeOpName = "Cache.Store"

// Decoder transforms the raw bytes read back by Retrieve.
type Decoder func(raw []byte) (interface{}, error)

// AsText decodes raw bytes as a UTF-8 string.
func AsText(raw []byte) (interface{}, error) {
	return string(raw), nil
}

// AsInt decodes raw bytes as a decimal integer.
func AsInt(raw []byte) (interface{}, error) {
	value, err := strconv.Atoi(string(raw))
	if err != nil {
		return nil, errors.Wrap(err, "value is not an integer")
	}

	return value, nil
}

// Cache assigns opaque keys to stored values. Its Store operation is
// instrumented: every call is counted and recorded in the underlying
// store, under keys derived from the operation's qualified name.
type Cache struct {
	store storage.Store

	storeOp OpFunc
}

// New wires a Cache over the given store. The store is flushed on
// construction: entries from a previous session do not survive.
func New(store storage.Store) (*Cache, error) {
	if err := store.FlushAll(); err != nil {
		return nil, errors.Wrap(err, "could not flush store")
	}

	cache := &Cache{store: store}
	cache.storeOp = Instrument(store, storeOpName, cache.doStore)

	return cache, nil
}

// Store writes a scalar value (text, binary, integer or float) under a
// fresh random key and returns that key.
func (cache *Cache) Store(value interface{}) (string, error) {
	result, err := cache.storeOp(value)
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (cache *Cache) doStore(args ...interface{}) (interface{}, error) {
	raw, err := encodeValue(args[0])
	if err != nil {
		return nil, err
	}

	key := uuid.New().String()
	if err := cache.store.Set(key, raw); err != nil {
		return nil, err
	}

	return key, nil
}

// Retrieve reads the raw bytes stored at key. An absent key yields
// (nil, nil). The decoder, when given, is applied to present values only
// and its result returned in place of the raw bytes.
func (cache *Cache) Retrieve(key string, decode Decoder) (interface{}, error) {
	raw, err := cache.store.Get(key)
	if err == storage.KeyNotFound || err == storage.KeyExpired {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if decode == nil {
		return raw, nil
	}

	return decode(raw)
}

// RetrieveText reads the value at key as text. An absent key yields "".
func (cache *Cache) RetrieveText(key string) (string, error) {
	value, err := cache.Retrieve(key, AsText)
	if err != nil || value == nil {
		return "", err
	}

	return value.(string), nil
}

// RetrieveInt reads the value at key as an integer. An absent key yields 0.
func (cache *Cache) RetrieveInt(key string) (int, error) {
	value, err := cache.Retrieve(key, AsInt)
	if err != nil || value == nil {
		return 0, err
	}

	return value.(int), nil
}

// StoreOp returns the replayable handle for the instrumented Store
// operation.
func (cache *Cache) StoreOp() *OpRef {
	return &OpRef{name: storeOpName, store: cache.store}
}

func encodeValue(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case int:
		return []byte(strconv.Itoa(v)), nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	case float64:
		return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
	default:
		return nil, errors.Errorf("unsupported value type %T", value)
	}
}
