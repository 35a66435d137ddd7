package storage

import (
	"sync"
	"time"
)

type entry struct {
	value []byte

	expiration int64
}

func (e entry) expired() bool {
	if e.expiration == 0 {
		return false
	}

	return time.Now().UnixNano() >= e.expiration
}

type syncMap struct {
	mutex sync.RWMutex

	data  map[string]entry
	lists map[string][][]byte
}

func (m *syncMap) Get(key string) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	item, exists := m.data[key]
	if !exists {
		return nil, KeyNotFound
	}

	if item.expired() {
		return nil, KeyExpired
	}

	return item.value, nil
}

func (m *syncMap) Exists(key string) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	item, exists := m.data[key]

	return exists && !item.expired(), nil
}

func (m *syncMap) Set(key string, value []byte) error {
	m.mutex.Lock()
	m.data[key] = entry{value: copyBytes(value), expiration: 0}
	m.mutex.Unlock()

	return nil
}

func (m *syncMap) SetExpiring(key string, value []byte, lifetime time.Duration) error {
	m.mutex.Lock()
	m.data[key] = entry{value: copyBytes(value), expiration: time.Now().Add(lifetime).UnixNano()}
	m.mutex.Unlock()

	return nil
}

func (m *syncMap) Incr(key string) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var raw []byte
	if item, exists := m.data[key]; exists && !item.expired() {
		raw = item.value
	}

	current, err := counterValue(raw)
	if err != nil {
		return 0, err
	}

	current++
	m.data[key] = entry{value: []byte(formatCounter(current)), expiration: 0}

	return current, nil
}

func (m *syncMap) RPush(key string, value []byte) error {
	m.mutex.Lock()
	m.lists[key] = append(m.lists[key], copyBytes(value))
	m.mutex.Unlock()

	return nil
}

func (m *syncMap) LRange(key string, start, stop int64) ([][]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	list := m.lists[key]

	first, last, ok := rangeBounds(len(list), start, stop)
	if !ok {
		return nil, nil
	}

	result := make([][]byte, 0, last-first+1)
	for _, item := range list[first : last+1] {
		result = append(result, copyBytes(item))
	}

	return result, nil
}

func (m *syncMap) FlushAll() error {
	m.mutex.Lock()
	m.data = make(map[string]entry)
	m.lists = make(map[string][][]byte)
	m.mutex.Unlock()

	return nil
}

func copyBytes(value []byte) []byte {
	return append([]byte(nil), value...)
}

func NewSyncMap() Store {
	return &syncMap{
		data:  make(map[string]entry),
		lists: make(map[string][][]byte),
	}
}
