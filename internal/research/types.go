// Package research defines core types shared across subsystems.
package research

import "time"

// TaskKind identifies one independent lookup inside a request.
type TaskKind string

// Task kinds scheduled by the orchestrator.
const (
	TaskWeb       TaskKind = "web"
	TaskQuote     TaskKind = "quote"
	TaskProfile   TaskKind = "profile"
	TaskNoticeA   TaskKind = "notice_a"
	TaskNoticeB   TaskKind = "notice_b"
	TaskNoticeWeb TaskKind = "notice_web"
)

// Plan selects which sources run and with what result-count limits.
// It is immutable once handed to orchestration; Clamp is the only
// permitted normalization and runs once before dispatch.
type Plan struct {
	Web            bool     `json:"web" mapstructure:"web"`
	Quotes         bool     `json:"quotes" mapstructure:"quotes"`
	Symbols        []string `json:"symbols" mapstructure:"symbols"`
	WebTopK        int      `json:"web_top_k" mapstructure:"web_top_k"`
	NoticeATopK    int      `json:"notice_a_top_k" mapstructure:"notice_a_top_k"`
	NoticeBTopK    int      `json:"notice_b_top_k" mapstructure:"notice_b_top_k"`
	NoticeWebTopK  int      `json:"notice_web_top_k" mapstructure:"notice_web_top_k"`
	UseWebFallback bool     `json:"use_web_fallback" mapstructure:"use_web_fallback"`
}

// Clamp returns a copy with every top-k raised to at least 1.
func (p Plan) Clamp() Plan {
	if p.WebTopK < 1 {
		p.WebTopK = 1
	}
	if p.NoticeATopK < 1 {
		p.NoticeATopK = 1
	}
	if p.NoticeBTopK < 1 {
		p.NoticeBTopK = 1
	}
	if p.NoticeWebTopK < 1 {
		p.NoticeWebTopK = 1
	}
	return p
}

// SearchResult is one hit returned by a web or profile search provider.
type SearchResult struct {
	Title   string  `json:"title,omitempty"`
	URL     string  `json:"url"`
	Source  string  `json:"source,omitempty"`
	Score   float64 `json:"score,omitempty"`
	Content string  `json:"content,omitempty"`
}

// QuoteRecord is the per-symbol result of a quote lookup. A failed
// lookup carries Err and zero price; the lookup call itself never fails.
type QuoteRecord struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Err      string  `json:"error,omitempty"`
}

// ProfileRecord is the summarized company profile plus the URLs it
// was derived from.
type ProfileRecord struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
}

// RawNotice is a notice record as returned by one source, before
// normalization. Fields holds the source's own field names.
type RawNotice struct {
	Source string
	Fields map[string]string
}

// NoticeItem is the canonical normalized notice shape. Unique by URL
// within one response only.
type NoticeItem struct {
	Title    string     `json:"title"`
	URL      string     `json:"url"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Agency   string     `json:"agency,omitempty"`
	Source   string     `json:"source"`
	Score    float64    `json:"score"`
}

// EnvelopeType tags which pipeline produced a ResultEnvelope.
type EnvelopeType string

// Envelope type values.
const (
	EnvelopeWebResults EnvelopeType = "web_results"
	EnvelopeGovNotices EnvelopeType = "gov_notices"
)

// ResultEnvelope is the single canonical output returned to callers.
// Failed sources leave their slot at its zero value and contribute one
// entry to Errors; Errors never blocks population of the other fields.
type ResultEnvelope struct {
	Type           EnvelopeType   `json:"type"`
	Query          string         `json:"query"`
	Plan           *Plan          `json:"plan,omitempty"`
	Items          []SearchResult `json:"items"`
	Quotes         []QuoteRecord  `json:"quotes,omitempty"`
	Notices        []NoticeItem   `json:"notices,omitempty"`
	Profile        string         `json:"company_profile,omitempty"`
	ProfileSources []string       `json:"profile_sources,omitempty"`
	Errors         []string       `json:"errors"`
}

// Outcome is the tagged result of one task: a payload or a captured
// failure, never both. Errors cross the orchestration boundary only
// through this type.
type Outcome struct {
	Kind    TaskKind
	Payload any
	Err     error
}

// Ok builds a success outcome.
func Ok(kind TaskKind, payload any) Outcome {
	return Outcome{Kind: kind, Payload: payload}
}

// Fail builds a failure outcome.
func Fail(kind TaskKind, err error) Outcome {
	return Outcome{Kind: kind, Err: err}
}
