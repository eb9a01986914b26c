package notices

import (
	"context"

	"go.uber.org/zap"

	"github.com/finscout/finscout/internal/research"
)

// SourceWeb is the source tag for the web-search fallback.
const SourceWeb = "notice_web"

const webQuerySuffix = " 정부 지원사업 공고 모집"

// WebSource discovers notices through a general web search, used as a
// fallback when the dedicated portals come up short.
type WebSource struct {
	searcher research.WebSearcher
	logger   *zap.Logger
}

// NewWebSource builds a WebSource over any WebSearcher.
func NewWebSource(searcher research.WebSearcher, logger *zap.Logger) *WebSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSource{searcher: searcher, logger: logger}
}

// Name returns the source tag.
func (s *WebSource) Name() string { return SourceWeb }

// FetchNotices searches the web with a notice-flavored query.
func (s *WebSource) FetchNotices(ctx context.Context, query string, topK int) ([]research.RawNotice, error) {
	hits, err := s.searcher.Search(ctx, query+webQuerySuffix, topK)
	if err != nil {
		return nil, err
	}

	out := make([]research.RawNotice, 0, len(hits))
	for _, hit := range hits {
		if len(out) >= topK {
			break
		}
		out = append(out, research.RawNotice{
			Source: SourceWeb,
			Fields: map[string]string{
				"title":   hit.Title,
				"url":     hit.URL,
				"source":  hit.Source,
				"content": hit.Content,
			},
		})
	}
	s.logger.Debug("web notices fetched", zap.String("query", query), zap.Int("count", len(out)))
	return out, nil
}
