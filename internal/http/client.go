package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole thumbnail request.
const DefaultTimeout = 10 * time.Second

// MaxBodySize caps how much of a response body Get reads.
const MaxBodySize = 8 << 20

// Client fetches small resources such as thumbnails.
//
// Example usage:
//
//	client := NewClient(5 * time.Second)
//	data, err := client.Get(ctx, "https://i.ytimg.com/vi/abc/mqdefault.jpg")
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a client whose requests time out after timeout. A zero
// timeout means DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "SkylarkDownloader",
	}
}

// Get performs a GET request and returns the response body.
//
// Returns an error if:
//   - The request fails or times out
//   - The response status is not 200 OK
//   - The body is larger than MaxBodySize
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBodySize {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxBodySize)
	}
	return data, nil
}
