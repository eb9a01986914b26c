package research

import (
	"context"
	"time"
)

// WebSearcher runs a general web search. It is the only collaborator
// allowed to fail on missing credentials.
type WebSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]SearchResult, error)
}

// ProfileSearcher discovers candidate company-profile pages, ranked by
// domain priority then provider score.
type ProfileSearcher interface {
	SearchProfile(ctx context.Context, query string, topK int) ([]SearchResult, error)
}

// QuoteProvider looks up quotes for a symbol list. Per-symbol failures
// are embedded in the returned records; the call itself never fails.
type QuoteProvider interface {
	Quotes(ctx context.Context, symbols []string) []QuoteRecord
}

// PageFetcher retrieves one page body.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (PageResponse, error)
}

// PageResponse is the result returned by a PageFetcher implementation.
type PageResponse struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	Duration    time.Duration
}

// Summarizer condenses text. The capability may be absent (nil), in
// which case summarization is skipped rather than erred.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// NoticeSource fetches raw notice records from one portal. Sources
// fail independently of each other.
type NoticeSource interface {
	Name() string
	FetchNotices(ctx context.Context, query string, topK int) ([]RawNotice, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
