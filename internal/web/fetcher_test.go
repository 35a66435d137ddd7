package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetcherReturnsPageBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello world")
	}))
	defer server.Close()

	fetcher := NewFetcher(5 * time.Second)

	body, err := fetcher.Get(server.URL)
	require.NoError(t, err, "Fetching a reachable URL should not return an error")
	require.Equal(t, "hello world", body)
}

func TestFetcherReturnsBodyRegardlessOfStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "not here")
	}))
	defer server.Close()

	fetcher := NewFetcher(5 * time.Second)

	body, err := fetcher.Get(server.URL)
	require.NoError(t, err, "A non-2xx response should not be treated as a fetch error")
	require.Equal(t, "not here", body)
}

func TestFetcherAllowsRefetchingTheSameURL(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprintf(w, "hit %d", hits)
	}))
	defer server.Close()

	fetcher := NewFetcher(5 * time.Second)

	body, err := fetcher.Get(server.URL)
	require.NoError(t, err)
	require.Equal(t, "hit 1", body)

	body, err = fetcher.Get(server.URL)
	require.NoError(t, err, "Visiting the same URL twice should be allowed")
	require.Equal(t, "hit 2", body)
}
