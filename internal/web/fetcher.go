package web

import (
	"time"

	"github.com/gocolly/colly/v2"
)

// Fetcher retrieves page bodies. The collector allows URL revisits so a
// page can be fetched again once its cached copy expires, and parses HTTP
// error responses so the body comes back regardless of status code.
type Fetcher struct {
	c *colly.Collector

	body []byte
}

func NewFetcher(timeout time.Duration) *Fetcher {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.SetRequestTimeout(timeout)

	fetcher := &Fetcher{c: c}
	c.OnResponse(func(r *colly.Response) {
		fetcher.body = append([]byte(nil), r.Body...)
	})

	return fetcher
}

// Get returns the body of url as text. Not safe for concurrent use: the
// collector and the response buffer are shared between calls.
func (f *Fetcher) Get(url string) (string, error) {
	f.body = nil

	if err := f.c.Visit(url); err != nil {
		return "", err
	}

	return string(f.body), nil
}
