// Package notices contains tests for the portal source adapters.
package notices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finscout/finscout/internal/research"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>지원사업 공고</title>
    <item>
      <title>AI 스타트업 지원사업 모집</title>
      <link>https://portal.example/notice/1</link>
      <description>접수기간: 2026-08-01 ~ 2026-09-15</description>
      <pubDate>Mon, 27 Jul 2026 09:00:00 +0900</pubDate>
    </item>
    <item>
      <title>수출 바우처 참여기업 모집</title>
      <link>https://portal.example/notice/2</link>
      <description>상시 접수</description>
    </item>
  </channel>
</rss>`

// TestFeedSourceFiltersAndMaps parses the feed into raw records with
// the feed's own field names.
func TestFeedSourceFiltersAndMaps(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	src := NewFeedSource(srv.URL, nil)
	got, err := src.FetchNotices(context.Background(), "스타트업", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, SourceFeed, got[0].Source)
	assert.Equal(t, "AI 스타트업 지원사업 모집", got[0].Fields["title"])
	assert.Equal(t, "https://portal.example/notice/1", got[0].Fields["link"])
	assert.Equal(t, "지원사업 공고", got[0].Fields["publisher"])
	assert.Equal(t, "2026-09-15", got[0].Fields["due"])
}

// TestFeedSourceTopK caps the result count.
func TestFeedSourceTopK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	src := NewFeedSource(srv.URL, nil)
	got, err := src.FetchNotices(context.Background(), "모집", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// TestFeedSourceUnreachable fails independently with an error.
func TestFeedSourceUnreachable(t *testing.T) {
	t.Parallel()

	src := NewFeedSource("http://127.0.0.1:1/feed.xml", nil)
	_, err := src.FetchNotices(context.Background(), "query", 3)
	assert.Error(t, err)
}

// TestPortalSourceMapsFields keeps the portal's field vocabulary in the
// raw record.
func TestPortalSourceMapsFields(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "바우처", r.URL.Query().Get("searchKrwd"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{
					"pblancNm":    "창업 바우처 지원사업",
					"pblancUrl":   "https://portal-b.example/notice/9",
					"reqstEndDe":  "20261001",
					"jrsdInsttNm": "중소벤처기업부",
				},
			},
		})
	}))
	defer srv.Close()

	src := NewPortalSource(srv.URL, "", time.Second, nil)
	got, err := src.FetchNotices(context.Background(), "바우처", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, SourcePortal, got[0].Source)
	assert.Equal(t, "창업 바우처 지원사업", got[0].Fields["pblancNm"])
	assert.Equal(t, "20261001", got[0].Fields["reqstEndDe"])
	assert.Equal(t, "중소벤처기업부", got[0].Fields["jrsdInsttNm"])
}

// TestPortalSourceNon200 surfaces the failure to the task boundary.
func TestPortalSourceNon200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewPortalSource(srv.URL, "", time.Second, nil)
	_, err := src.FetchNotices(context.Background(), "query", 3)
	assert.Error(t, err)
}

type stubSearcher struct {
	hits []research.SearchResult
	err  error
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int) ([]research.SearchResult, error) {
	return s.hits, s.err
}

// TestWebSourceWrapsSearchHits converts search hits into raw notices.
func TestWebSourceWrapsSearchHits(t *testing.T) {
	t.Parallel()

	src := NewWebSource(&stubSearcher{hits: []research.SearchResult{
		{Title: "지원사업 공고 안내", URL: "https://web.example/n/1", Source: "web.example"},
	}}, nil)

	got, err := src.FetchNotices(context.Background(), "지원사업", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, SourceWeb, got[0].Source)
	assert.Equal(t, "지원사업 공고 안내", got[0].Fields["title"])
	assert.Equal(t, "https://web.example/n/1", got[0].Fields["url"])
}

// TestWebSourcePropagatesSearchError keeps per-source failure
// isolation at the adapter boundary.
func TestWebSourcePropagatesSearchError(t *testing.T) {
	t.Parallel()

	src := NewWebSource(&stubSearcher{err: errors.New("no api key")}, nil)
	_, err := src.FetchNotices(context.Background(), "query", 3)
	assert.Error(t, err)
}

// TestDeadlineFromDescription extracts the closing date of a range.
func TestDeadlineFromDescription(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc string
		want string
	}{
		{"접수기간: 2026-08-01 ~ 2026-09-15", "2026-09-15"},
		{"2026.08.01 ~ 2026.09.15 까지", "2026.09.15"},
		{"상시 접수", ""},
	}
	for i, tc := range cases {
		assert.Equal(t, tc.want, deadlineFromDescription(tc.desc), fmt.Sprintf("case %d", i))
	}
}
