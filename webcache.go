package cachetap

import (
	"strconv"
	"time"

	"github.com/cachetap/cachetap/internal/storage"
)

// Per-URL key namespaces. Storage keys, must stay stable.
const (
	countKeyPrefix  = "count:"
	resultKeyPrefix = "result:"
)

// FetchFunc retrieves the content behind a URL.
type FetchFunc func(url string) (string, error)

type Config struct {
	// PageTTL is how long a fetched page is served from the store before
	// the next call fetches it again.
	PageTTL time.Duration

	RequestTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		PageTTL:        10 * time.Second,
		RequestTimeout: 20 * time.Second,
	}
}

// PageCache serves page content from the store and falls back to the fetch
// function on a miss. Every call advances the per-URL attempt counter,
// hit, miss or failed fetch alike.
type PageCache struct {
	config Config

	store storage.Store
	fetch FetchFunc
}

func NewPageCache(store storage.Store, fetch FetchFunc, config Config) *PageCache {
	return &PageCache{
		config: config,
		store:  store,
		fetch:  fetch,
	}
}

func (cache *PageCache) Get(url string) (string, error) {
	if _, err := cache.store.Incr(countKeyPrefix + url); err != nil {
		return "", err
	}

	cached, err := cache.store.Get(resultKeyPrefix + url)
	if err == nil {
		return string(cached), nil
	}
	if err != storage.KeyNotFound && err != storage.KeyExpired {
		return "", err
	}

	page, err := cache.fetch(url)
	if err != nil {
		return "", err
	}

	if err := cache.store.SetExpiring(resultKeyPrefix+url, []byte(page), cache.config.PageTTL); err != nil {
		return "", err
	}

	return page, nil
}

// Requests reports how many times Get was called for url.
func (cache *PageCache) Requests(url string) (int64, error) {
	raw, err := cache.store.Get(countKeyPrefix + url)
	if err == storage.KeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(string(raw), 10, 64)
}
