package httpds

import (
	"context"
	"fmt"
	"io"
)

// Source adapts Client to the datasource.Source interface for a single URL.
type Source struct {
	url    string
	client *Client
}

// NewSource returns a Source that fetches url with client. When client is
// nil, a default client (30s timeout, 3 retries) is used.
func NewSource(url string, client *Client) *Source {
	if client == nil {
		client = NewClient(Config{})
	}
	return &Source{url: url, client: client}
}

// Open issues a GET for the configured URL and returns the response body.
// Non-2xx statuses (after the client's retry policy is exhausted) are
// reported as errors; the body is closed in that case.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("get %s: unexpected status %d", s.url, resp.StatusCode)
	}
	return resp.Body, nil
}
