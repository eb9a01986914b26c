// Package notices fetches raw government-notice records from
// heterogeneous portals. Each source fails independently and keeps its
// own field names; reconciliation happens downstream.
package notices

import (
	"context"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/finscout/finscout/internal/research"
)

// SourceFeed is the source tag for the RSS portal.
const SourceFeed = "notice_a"

// FeedSource fetches notices from an RSS/Atom portal feed.
type FeedSource struct {
	feedURL string
	parser  *gofeed.Parser
	logger  *zap.Logger
}

// NewFeedSource builds a FeedSource for one feed URL.
func NewFeedSource(feedURL string, logger *zap.Logger) *FeedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedSource{feedURL: feedURL, parser: gofeed.NewParser(), logger: logger}
}

// Name returns the source tag.
func (s *FeedSource) Name() string { return SourceFeed }

// FetchNotices parses the feed and keeps the first topK items matching
// the query terms.
func (s *FeedSource) FetchNotices(ctx context.Context, query string, topK int) ([]research.RawNotice, error) {
	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, err
	}

	terms := queryTerms(query)
	out := make([]research.RawNotice, 0, topK)
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if !matchesTerms(item.Title+" "+item.Description, terms) {
			continue
		}
		fields := map[string]string{
			"title": item.Title,
			"link":  item.Link,
		}
		if item.Published != "" {
			fields["pubDate"] = item.Published
		}
		if feed.Title != "" {
			fields["publisher"] = feed.Title
		}
		if deadline := deadlineFromDescription(item.Description); deadline != "" {
			fields["due"] = deadline
		}
		out = append(out, research.RawNotice{Source: SourceFeed, Fields: fields})
		if len(out) >= topK {
			break
		}
	}
	s.logger.Debug("feed notices fetched", zap.String("query", query), zap.Int("count", len(out)))
	return out, nil
}

func queryTerms(query string) []string {
	var terms []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// matchesTerms is permissive: no terms matches everything, otherwise
// any single term hit is enough.
func matchesTerms(text string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

var closingDateRE = regexp.MustCompile(`~\s*(\d{4}[.\-/]\d{1,2}[.\-/]\d{1,2})`)

// deadlineFromDescription pulls a "~ YYYY-MM-DD" style closing date out
// of the item body when the portal embeds one.
func deadlineFromDescription(desc string) string {
	m := closingDateRE.FindStringSubmatch(desc)
	if m == nil {
		return ""
	}
	return m[1]
}
