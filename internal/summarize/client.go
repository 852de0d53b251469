package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Result is the summarization service response: the original or
// extracted source text plus the generated summary.
type Result struct {
	Text    string `json:"text"`
	Summary string `json:"summary"`
}

// Client talks to the external summarization service. The service
// exposes three endpoints distinguished by input shape; all return the
// same {text, summary} JSON. Failures are terminal, no retry: the
// caller surfaces them and lets the user re-submit.
type Client struct {
	baseURL string
	hc      *http.Client
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

// NewClient creates a summarization client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Text summarizes raw article text.
func (c *Client) Text(ctx context.Context, text string) (*Result, error) {
	return c.postJSON(ctx, "/summarize", map[string]string{"text": text})
}

// URL summarizes the article behind a URL; the service extracts the
// text itself and returns it alongside the summary.
func (c *Client) URL(ctx context.Context, articleURL string) (*Result, error) {
	return c.postJSON(ctx, "/summarize-url", map[string]string{"url": articleURL})
}

// File summarizes an uploaded document (pdf/docx/txt), sent as a
// multipart "file" field.
func (c *Client) File(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("summarize file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("summarize file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("summarize file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/summarize-file", &buf)
	if err != nil {
		return nil, fmt.Errorf("summarize file: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*Result, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("summarize marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("summarize new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Result, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("summarization failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("summarization failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("summarization failed: decode: %w", err)
	}
	return &out, nil
}
