package main

import (
	"flag"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cachetap/cachetap"
	"github.com/cachetap/cachetap/internal/storage"
	"github.com/cachetap/cachetap/internal/web"
)

func main() {
	var engine string
	var path string
	var url string

	flag.StringVar(&engine, "storage", "memory", "Storage engine to use (memory, badger or bolt)")
	flag.StringVar(&path, "path", "/tmp/cachetap", "Where persistent engines keep their data")
	flag.StringVar(&url, "url", "", "URL to fetch through the page cache")

	flag.Parse()

	logger := logrus.New()

	store, err := newStore(logger, engine, path)
	if err != nil {
		logger.Fatalf("Could not start storage engine: %s", err)
	}

	cache, err := cachetap.New(store)
	if err != nil {
		logger.Fatalf("Could not create cache: %s", err)
	}

	for _, value := range []interface{}{"foo", 123, 3.14} {
		key, err := cache.Store(value)
		if err != nil {
			logger.Fatalf("Could not store %v: %s", value, err)
		}

		logger.Infof("Stored %v under %s", value, key)
	}

	if err := cachetap.Replay(os.Stdout, cache.StoreOp()); err != nil {
		logger.Fatalf("Could not replay call history: %s", err)
	}

	if url == "" {
		return
	}

	config := cachetap.DefaultConfig()
	fetcher := web.NewFetcher(config.RequestTimeout)
	pages := cachetap.NewPageCache(store, fetcher.Get, config)

	webLogger := cachetap.NewPrefixedLogger(logger, "web: ")

	for i := 0; i < 2; i++ {
		page, err := pages.Get(url)
		if err != nil {
			webLogger.Fatalf("Could not fetch %s: %s", url, err)
		}

		webLogger.Infof("Fetched %s (%d bytes)", url, len(page))
	}

	requests, err := pages.Requests(url)
	if err != nil {
		webLogger.Fatalf("Could not read request counter: %s", err)
	}

	webLogger.Infof("%s was requested %d times", url, requests)
}

func newStore(logger *logrus.Logger, engine string, path string) (storage.Store, error) {
	switch engine {
	case "memory":
		return storage.NewSyncMap(), nil
	case "badger":
		return storage.NewBadgerDb(cachetap.NewPrefixedLogger(logger, "storage: "), path)
	case "bolt":
		return storage.NewBoltDb(path)
	default:
		return nil, errors.Errorf("unknown storage engine %q", engine)
	}
}
