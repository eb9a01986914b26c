package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finscout/finscout/internal/extract"
	"github.com/finscout/finscout/internal/research"
	"github.com/finscout/finscout/internal/summary"
)

type fakeWeb struct {
	results []research.SearchResult
	err     error
	panics  bool
}

func (f *fakeWeb) Search(ctx context.Context, query string, topK int) ([]research.SearchResult, error) {
	if f.panics {
		panic("boom")
	}
	return f.results, f.err
}

type fakeProfiles struct {
	results []research.SearchResult
	err     error
}

func (f *fakeProfiles) SearchProfile(ctx context.Context, query string, topK int) ([]research.SearchResult, error) {
	return f.results, f.err
}

type fakeQuotes struct {
	records []research.QuoteRecord
}

func (f *fakeQuotes) Quotes(ctx context.Context, symbols []string) []research.QuoteRecord {
	return f.records
}

type failingFetcher struct{}

func (failingFetcher) Fetch(ctx context.Context, url string) (research.PageResponse, error) {
	return research.PageResponse{}, errors.New("connection refused")
}

type fakeNoticeSource struct {
	name    string
	records []research.RawNotice
	err     error
	calls   int
}

func (f *fakeNoticeSource) Name() string { return f.name }

func (f *fakeNoticeSource) FetchNotices(ctx context.Context, query string, topK int) ([]research.RawNotice, error) {
	f.calls++
	return f.records, f.err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestOrchestrator(web research.WebSearcher, profiles research.ProfileSearcher, quotes research.QuoteProvider, sources []research.NoticeSource) *Orchestrator {
	extractor := extract.New(failingFetcher{}, extract.DefaultHeuristics(), nil)
	chain := summary.NewChain(nil, summary.DefaultGate(), nil)
	clk := fixedClock{t: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	return New(web, profiles, quotes, extractor, chain, sources, nil, clk, Config{}, nil)
}

// TestResearchAllSourcesDisabled: a plan enabling nothing, with a
// non-ticker query and no symbols, yields an empty envelope and an
// empty error list.
func TestResearchAllSourcesDisabled(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(&fakeWeb{}, &fakeProfiles{}, &fakeQuotes{}, nil)
	env := o.Research(context.Background(), "핀테크 동향", research.Plan{})

	assert.Empty(t, env.Items)
	assert.Empty(t, env.Quotes)
	assert.Empty(t, env.Profile)
	assert.Empty(t, env.Errors)
}

// TestResearchQuoteAndProfileFallback: quote lookup succeeds while both
// discovered profile pages fail to fetch. The envelope carries the one
// quote record plus the template fallback profile naming both URLs, and
// no error entries.
func TestResearchQuoteAndProfileFallback(t *testing.T) {
	t.Parallel()

	quotes := &fakeQuotes{records: []research.QuoteRecord{
		{Symbol: "005930.KS", Price: 71200, Currency: "KRW"},
	}}
	profiles := &fakeProfiles{results: []research.SearchResult{
		{Title: "Samsung", URL: "https://a.example/profile"},
		{Title: "About", URL: "https://b.example/about"},
	}}
	o := newTestOrchestrator(&fakeWeb{}, profiles, quotes, nil)

	env := o.Research(context.Background(), "005930", research.Plan{
		Quotes:  true,
		Symbols: []string{"005930"},
	})

	require.Len(t, env.Quotes, 1)
	assert.Equal(t, "005930.KS", env.Quotes[0].Symbol)

	assert.Contains(t, env.Profile, "기업 개요(폴백)")
	assert.Contains(t, env.Profile, "- https://a.example/profile")
	assert.Contains(t, env.Profile, "- https://b.example/about")
	assert.Equal(t, []string{"https://a.example/profile", "https://b.example/about"}, env.ProfileSources)

	assert.Empty(t, env.Errors)
}

// TestResearchWebFailureIsolated: a failing web search becomes one
// error entry and never disturbs the quote task.
func TestResearchWebFailureIsolated(t *testing.T) {
	t.Parallel()

	web := &fakeWeb{err: errors.New("tavily: unexpected status 429")}
	quotes := &fakeQuotes{records: []research.QuoteRecord{
		{Symbol: "AAPL", Price: 150, Currency: "USD"},
	}}
	o := newTestOrchestrator(web, &fakeProfiles{}, quotes, nil)

	env := o.Research(context.Background(), "핀테크 동향", research.Plan{
		Web:     true,
		Quotes:  true,
		Symbols: []string{"AAPL"},
	})

	assert.Empty(t, env.Items)
	require.Len(t, env.Quotes, 1)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "web: tavily: unexpected status 429", env.Errors[0])
}

// TestResearchPanicBecomesFailure: a panicking source settles as a
// tagged failure while its siblings finish normally.
func TestResearchPanicBecomesFailure(t *testing.T) {
	t.Parallel()

	web := &fakeWeb{panics: true}
	quotes := &fakeQuotes{records: []research.QuoteRecord{
		{Symbol: "AAPL", Price: 150, Currency: "USD"},
	}}
	o := newTestOrchestrator(web, &fakeProfiles{}, quotes, nil)

	env := o.Research(context.Background(), "핀테크 동향", research.Plan{
		Web:     true,
		Quotes:  true,
		Symbols: []string{"AAPL"},
	})

	require.Len(t, env.Quotes, 1)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "web: panic: boom", env.Errors[0])
}

// TestResearchWebResults passes topK through and fills the item slot.
func TestResearchWebResults(t *testing.T) {
	t.Parallel()

	web := &fakeWeb{results: []research.SearchResult{
		{Title: "기사", URL: "https://news.example/1"},
		{Title: "보고서", URL: "https://report.example/2"},
	}}
	o := newTestOrchestrator(web, &fakeProfiles{}, &fakeQuotes{}, nil)

	env := o.Research(context.Background(), "핀테크 동향", research.Plan{Web: true, WebTopK: 2})
	assert.Len(t, env.Items, 2)
	assert.Empty(t, env.Errors)
}

// TestNoticesUnionNormalizedAndRanked: records from both portal sources
// are normalized into canonical items; a failing source contributes an
// error entry but not a pipeline failure.
func TestNoticesUnionNormalizedAndRanked(t *testing.T) {
	t.Parallel()

	feed := &fakeNoticeSource{name: "notice_a", records: []research.RawNotice{
		{Source: "notice_a", Fields: map[string]string{
			"title":     "2025 스타트업 지원사업 공고",
			"link":      "https://feed.example/1",
			"publisher": "중소벤처기업부",
			"due":       "2025-06-04",
		}},
	}}
	portal := &fakeNoticeSource{name: "notice_b", err: errors.New("portal fetch: unexpected status 503")}

	o := newTestOrchestrator(&fakeWeb{}, &fakeProfiles{}, &fakeQuotes{}, []research.NoticeSource{feed, portal})

	env := o.Notices(context.Background(), "지원사업", research.Plan{NoticeATopK: 3, NoticeBTopK: 2})

	require.Len(t, env.Notices, 1)
	assert.Equal(t, "2025 스타트업 지원사업 공고", env.Notices[0].Title)
	assert.Equal(t, "중소벤처기업부", env.Notices[0].Agency)
	require.NotNil(t, env.Notices[0].Deadline)
	assert.Greater(t, env.Notices[0].Score, 0.0)

	require.Len(t, env.Errors, 1)
	assert.Equal(t, "notice_b: portal fetch: unexpected status 503", env.Errors[0])
}

// TestNoticesWebFallbackOptIn: the web notice source only runs when the
// plan opts in.
func TestNoticesWebFallbackOptIn(t *testing.T) {
	t.Parallel()

	web := &fakeNoticeSource{name: "notice_web", records: []research.RawNotice{
		{Source: "notice_web", Fields: map[string]string{
			"title":  "바우처 사업 공고 모음",
			"url":    "https://web.example/1",
			"source": "web.example",
		}},
	}}

	o := newTestOrchestrator(&fakeWeb{}, &fakeProfiles{}, &fakeQuotes{}, []research.NoticeSource{web})

	env := o.Notices(context.Background(), "바우처", research.Plan{UseWebFallback: false})
	assert.Equal(t, 0, web.calls)
	assert.Empty(t, env.Notices)

	env = o.Notices(context.Background(), "바우처", research.Plan{UseWebFallback: true, NoticeWebTopK: 2})
	assert.Equal(t, 1, web.calls)
	require.Len(t, env.Notices, 1)
	assert.Equal(t, "web.example", env.Notices[0].Agency)
}

// TestNoticesDeduplicatesAcrossSources: the same URL surfacing from two
// sources keeps the first occurrence in source order.
func TestNoticesDeduplicatesAcrossSources(t *testing.T) {
	t.Parallel()

	feed := &fakeNoticeSource{name: "notice_a", records: []research.RawNotice{
		{Source: "notice_a", Fields: map[string]string{
			"title": "중복 공고",
			"link":  "https://dup.example/1",
		}},
	}}
	portal := &fakeNoticeSource{name: "notice_b", records: []research.RawNotice{
		{Source: "notice_b", Fields: map[string]string{
			"pblancNm":  "중복 공고",
			"pblancUrl": "https://dup.example/1",
		}},
	}}

	o := newTestOrchestrator(&fakeWeb{}, &fakeProfiles{}, &fakeQuotes{}, []research.NoticeSource{feed, portal})

	env := o.Notices(context.Background(), "공고", research.Plan{NoticeATopK: 3, NoticeBTopK: 2})
	require.Len(t, env.Notices, 1)
	assert.Equal(t, "notice_a", env.Notices[0].Source)
}

// TestProfileSearchFailureSurfaces: profile discovery failing wholesale
// is an error entry, unlike page-level extraction failures.
func TestProfileSearchFailureSurfaces(t *testing.T) {
	t.Parallel()

	profiles := &fakeProfiles{err: errors.New("tavily api key is required for web search")}
	o := newTestOrchestrator(&fakeWeb{}, profiles, &fakeQuotes{}, nil)

	env := o.Research(context.Background(), "AAPL", research.Plan{})
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "profile: profile search: tavily api key is required for web search", env.Errors[0])
	assert.Empty(t, env.Profile)
}

func TestNoticeBudget(t *testing.T) {
	t.Parallel()

	plan := research.Plan{NoticeATopK: 3, NoticeBTopK: 2, NoticeWebTopK: 2, UseWebFallback: true}

	topK, enabled := noticeBudget(plan, research.TaskNoticeA)
	assert.True(t, enabled)
	assert.Equal(t, 3, topK)

	topK, enabled = noticeBudget(plan, research.TaskNoticeB)
	assert.True(t, enabled)
	assert.Equal(t, 2, topK)

	_, enabled = noticeBudget(plan, research.TaskNoticeWeb)
	assert.True(t, enabled)

	plan.UseWebFallback = false
	_, enabled = noticeBudget(plan, research.TaskNoticeWeb)
	assert.False(t, enabled)

	_, enabled = noticeBudget(plan, research.TaskQuote)
	assert.False(t, enabled)
}
