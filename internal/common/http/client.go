// Package http provides the outbound HTTP client used by external adapters.
package http

import (
	"net/http"
	"time"
)

// Client stamps a User-Agent on every request and bounds it by a timeout.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}
