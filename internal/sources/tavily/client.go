// Package tavily implements web and profile search against the Tavily
// search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/finscout/finscout/internal/research"
)

const defaultBaseURL = "https://api.tavily.com"

// Domains preferred for company-profile discovery, highest priority
// first.
var profileDomains = []string{
	"wikipedia.org", "en.wikipedia.org", "ko.wikipedia.org",
	"finance.google.com", "google.com/finance",
	"invest.deepsearch.com", "m.invest.zum.com",
	"companiesmarketcap.com", "marketscreener.com",
	"alphasquare.co.kr",
}

const profileQuerySuffix = " company profile overview 기업 개요 회사 소개 무엇을 하는 회사"

// Client calls the Tavily search endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option mutates a Client during construction.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a Client. The key may be empty; Search reports the
// missing credential at call time.
func New(apiKey string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

type searchHit struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Source     string  `json:"source"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
}

// Search runs a basic web search. A missing API key is the one
// configuration failure allowed to propagate to the caller.
func (c *Client) Search(ctx context.Context, query string, topK int) ([]research.SearchResult, error) {
	return c.search(ctx, query, topK, false)
}

// SearchProfile searches with a profile-intent query and re-ranks hits
// by the fixed domain-priority list, then provider score.
func (c *Client) SearchProfile(ctx context.Context, query string, topK int) ([]research.SearchResult, error) {
	results, err := c.search(ctx, query+profileQuerySuffix, topK, true)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool {
		pi, pj := domainPriority(results[i]), domainPriority(results[j])
		if pi != pj {
			return pi > pj
		}
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (c *Client) search(ctx context.Context, query string, topK int, raw bool) ([]research.SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("tavily api key is required for web search")
	}

	body, err := json.Marshal(searchRequest{
		Query:             query,
		SearchDepth:       "basic",
		MaxResults:        topK,
		IncludeRawContent: raw,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily search: unexpected status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]research.SearchResult, 0, len(parsed.Results))
	for _, hit := range parsed.Results {
		content := hit.Content
		if content == "" {
			content = hit.RawContent
		}
		out = append(out, research.SearchResult{
			Title:   hit.Title,
			URL:     CleanURL(hit.URL),
			Source:  hit.Source,
			Score:   hit.Score,
			Content: content,
		})
	}
	c.logger.Debug("tavily search done", zap.String("query", query), zap.Int("hits", len(out)))
	return out, nil
}

func domainPriority(r research.SearchResult) int {
	dom := strings.ToLower(r.Source)
	if dom == "" {
		dom = strings.ToLower(r.URL)
	}
	for i, d := range profileDomains {
		if strings.Contains(dom, d) {
			return 100 - i
		}
	}
	return 0
}

// CleanURL strips tracking query parameters and the fragment. Anything
// unparseable passes through unchanged.
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for key := range q {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") || lower == "fbclid" || lower == "gclid" {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String()
}
