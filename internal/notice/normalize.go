// Package notice normalizes raw notice records into the canonical item
// shape and ranks them. Both operations are pure and never fail: a bad
// record is dropped, a bad deadline becomes absent.
package notice

import (
	"strings"
	"time"

	"github.com/finscout/finscout/internal/research"
	"github.com/finscout/finscout/internal/sources/notices"
)

var deadlineLayouts = []string{
	"2006-01-02",
	"20060102",
	"2006.01.02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

// Normalize maps each source's record shape into NoticeItem, keeping
// the first occurrence per URL.
func Normalize(raw []research.RawNotice) []research.NoticeItem {
	out := make([]research.NoticeItem, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		item, ok := normalizeOne(r)
		if !ok {
			continue
		}
		if _, dup := seen[item.URL]; dup {
			continue
		}
		seen[item.URL] = struct{}{}
		out = append(out, item)
	}
	return out
}

func normalizeOne(r research.RawNotice) (research.NoticeItem, bool) {
	if r.Fields == nil {
		return research.NoticeItem{}, false
	}
	item := research.NoticeItem{Source: r.Source}

	switch r.Source {
	case notices.SourcePortal:
		item.Title = r.Fields["pblancNm"]
		item.URL = r.Fields["pblancUrl"]
		item.Agency = r.Fields["jrsdInsttNm"]
		item.Deadline = parseDeadline(r.Fields["reqstEndDe"])
	case notices.SourceFeed:
		item.Title = r.Fields["title"]
		item.URL = r.Fields["link"]
		item.Agency = r.Fields["publisher"]
		item.Deadline = parseDeadline(r.Fields["due"])
	default:
		item.Title = r.Fields["title"]
		item.URL = r.Fields["url"]
		item.Agency = r.Fields["source"]
		item.Deadline = parseDeadline(r.Fields["deadline"])
	}

	item.Title = strings.TrimSpace(item.Title)
	item.URL = strings.TrimSpace(item.URL)
	if item.Title == "" || item.URL == "" {
		return research.NoticeItem{}, false
	}
	return item, true
}

// parseDeadline tries the known portal date layouts. Anything
// unparseable is treated as absent, not as an error.
func parseDeadline(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
