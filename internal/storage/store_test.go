package storage

import (
	"fmt"
	"os"
	"testing"
	"time"

	logging "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type storageTestSuite struct {
	suite.Suite

	syncMap Store

	badger            Store
	badgerStoragePath string

	bolt            Store
	boltStoragePath string
}

func (suite *storageTestSuite) SetupSuite() {
	logger, _ := logging.NewNullLogger()

	suite.syncMap = NewSyncMap()

	suite.badgerStoragePath = "/tmp/cachetap-test-badger-store"
	badger, err := NewBadgerDb(logger, suite.badgerStoragePath)
	if err != nil {
		panic(fmt.Sprintf("Could not start badger storage engine: %s", err))
	}
	suite.badger = badger

	suite.boltStoragePath = "/tmp/cachetap-test-bolt-store.db"
	bolt, err := NewBoltDb(suite.boltStoragePath)
	if err != nil {
		panic(fmt.Sprintf("Could not start bolt storage engine: %s", err))
	}
	suite.bolt = bolt
}

func (suite *storageTestSuite) TearDownSuite() {
	os.RemoveAll(suite.badgerStoragePath)
	os.Remove(suite.boltStoragePath)
}

func TestStorageTestSuite(t *testing.T) {
	suite.Run(t, new(storageTestSuite))
}

func (suite *storageTestSuite) TestCommonStorageFeaturesWithSyncMap() {
	commonStorageFeaturesAssertions(suite.T(), suite.syncMap)
}

func (suite *storageTestSuite) TestCommonStorageFeaturesWithBadger() {
	commonStorageFeaturesAssertions(suite.T(), suite.badger)
}

func (suite *storageTestSuite) TestCommonStorageFeaturesWithBolt() {
	commonStorageFeaturesAssertions(suite.T(), suite.bolt)
}

func commonStorageFeaturesAssertions(t *testing.T, store Store) {
	require.NoError(t, store.FlushAll(), "Flushing the store should not return an error")

	val, err := store.Get("unknown-key")
	require.Nil(t, val, "Getting an unknown key should return no value")
	require.Equal(t, KeyNotFound, err, "Getting an unknown key should return KeyNotFound")

	exists, err := store.Exists("unknown-key")
	require.NoError(t, err)
	require.False(t, exists, "An unknown key should not exist")

	require.NoError(t, store.Set("known-key", []byte("some-value")))

	val, err = store.Get("known-key")
	require.NoError(t, err, "Getting a known key should return no error")
	require.Equal(t, []byte("some-value"), val, "Getting a known key should return the right value")

	exists, err = store.Exists("known-key")
	require.NoError(t, err)
	require.True(t, exists, "A known key should exist")

	counter, err := store.Incr("some-counter")
	require.NoError(t, err, "Incrementing an absent counter should not return an error")
	require.Equal(t, int64(1), counter, "An absent counter should start at 0")

	counter, err = store.Incr("some-counter")
	require.NoError(t, err)
	require.Equal(t, int64(2), counter, "A counter should increment by one per call")

	val, err = store.Get("some-counter")
	require.NoError(t, err)
	require.Equal(t, []byte("2"), val, "A counter should be readable as its decimal representation")

	_, err = store.Incr("known-key")
	require.Error(t, err, "Incrementing a non-integer value should return an error")

	list, err := store.LRange("some-list", 0, -1)
	require.NoError(t, err)
	require.Empty(t, list, "An absent list should be empty")

	require.NoError(t, store.RPush("some-list", []byte("first")))
	require.NoError(t, store.RPush("some-list", []byte("second")))
	require.NoError(t, store.RPush("some-list", []byte("third")))

	list, err = store.LRange("some-list", 0, -1)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("first"), []byte("second"), []byte("third")}, list, "LRange should return entries in insertion order")

	list, err = store.LRange("some-list", 1, 1)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("second")}, list, "LRange should honor explicit bounds")

	list, err = store.LRange("some-list", -2, -1)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("second"), []byte("third")}, list, "LRange should resolve negative indices from the end")

	list, err = store.LRange("some-list", 5, 10)
	require.NoError(t, err)
	require.Empty(t, list, "An out-of-bounds range should be empty")

	lifetime, _ := time.ParseDuration("1s")
	require.NoError(t, store.SetExpiring("expiring-key", []byte("some-value"), lifetime))

	val, err = store.Get("expiring-key")
	require.NoError(t, err, "Getting a known, non-expired key should return no error")
	require.Equal(t, []byte("some-value"), val, "Getting a non-expired key should return its value")

	// wait for the key to expire
	time.Sleep(lifetime + 100*time.Millisecond)

	val, err = store.Get("expiring-key")
	require.Nil(t, val, "Getting an expired key should return no value")
	require.Error(t, err, "Getting an expired key should return an error")

	exists, err = store.Exists("expiring-key")
	require.NoError(t, err)
	require.False(t, exists, "An expired key should not exist")

	require.NoError(t, store.FlushAll(), "Flushing a populated store should not return an error")

	_, err = store.Get("known-key")
	require.Equal(t, KeyNotFound, err, "A flushed key should be gone")

	list, err = store.LRange("some-list", 0, -1)
	require.NoError(t, err)
	require.Empty(t, list, "A flushed list should be empty")

	require.NoError(t, store.RPush("some-list", []byte("fresh")))
	list, err = store.LRange("some-list", 0, -1)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("fresh")}, list, "A flushed store should accept new entries")
}
