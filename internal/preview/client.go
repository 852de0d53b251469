package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// Client fetches a preview image URL for an article link from a
// microlink-shaped metadata service. Strictly best-effort: every
// failure mode collapses to the placeholder image.
type Client struct {
	baseURL     string
	placeholder string
	hc          *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithTimeout sets the request timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.hc.Timeout = d
	}
}

// WithPlaceholder sets the image URL returned when the lookup fails.
func WithPlaceholder(p string) Option {
	return func(c *Client) {
		if p != "" {
			c.placeholder = p
		}
	}
}

// NewClient creates a link-preview client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		placeholder: "/placeholder.png",
		hc:          &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Placeholder returns the fallback image URL.
func (c *Client) Placeholder() string {
	return c.placeholder
}

type metadata struct {
	Data struct {
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
	} `json:"data"`
}

// ImageURL returns the preview image for target, or the placeholder.
// Never returns an error: image enrichment must not fail a session.
func (c *Client) ImageURL(ctx context.Context, target string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?url="+url.QueryEscape(target), nil)
	if err != nil {
		return c.placeholder
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return c.placeholder
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.placeholder
	}

	var meta metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return c.placeholder
	}
	if meta.Data.Image.URL == "" {
		return c.placeholder
	}
	return meta.Data.Image.URL
}
