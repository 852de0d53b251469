package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PBL-Kelompok-3/newsalyze/pkg/models"
)

// Request parameterizes a recommendation query. Alpha/Beta/Gamma
// weight text similarity, summary similarity and category preference.
type Request struct {
	Text                string   `json:"text"`
	Summary             string   `json:"summary"`
	PreferredCategories []string `json:"preferred_categories"`
	Alpha               float64  `json:"alpha"`
	Beta                float64  `json:"beta"`
	Gamma               float64  `json:"gamma"`
	N                   int      `json:"n_recommendations"`
}

type response struct {
	Recommendations []candidate `json:"recommendations"`
}

type candidate struct {
	ArticleID       string  `json:"article_id"`
	Category        string  `json:"category"`
	SimilarityScore float64 `json:"similarity_score"`
	SourceURL       string  `json:"source_url"`
}

// Client talks to the external recommendation service.
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

// NewClient creates a recommendation client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recommend returns ranked related-article candidates. Malformed
// entries (no article id or source URL) are dropped at the boundary so
// loosely-typed upstream data never reaches the rest of the workflow.
// The returned order is the service's ranking order.
func (c *Client) Recommend(ctx context.Context, req Request) ([]models.Recommendation, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("recommend marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommendations/", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("recommend new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("recommend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("recommend request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("recommend decode response: %w", err)
	}

	out := make([]models.Recommendation, 0, len(parsed.Recommendations))
	for _, cand := range parsed.Recommendations {
		if cand.ArticleID == "" || cand.SourceURL == "" {
			continue
		}
		out = append(out, models.Recommendation{
			ArticleID:       cand.ArticleID,
			Category:        cand.Category,
			SimilarityScore: cand.SimilarityScore,
			SourceURL:       cand.SourceURL,
		})
	}
	return out, nil
}
