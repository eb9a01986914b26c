package notice

import (
	"sort"
	"strings"
	"time"

	"github.com/finscout/finscout/internal/research"
	"github.com/finscout/finscout/internal/sources/notices"
)

// Weight tiers keeping the ordering lexicographic: any relevance step
// outweighs every deadline difference, any deadline step outweighs
// every trust difference.
const (
	relevanceWeight = 10000
	deadlineWeight  = 100
	deadlineHorizon = 365
)

// DefaultTrust returns the static per-source trust weights.
func DefaultTrust() map[string]float64 {
	return map[string]float64{
		notices.SourceFeed:   3,
		notices.SourcePortal: 2,
		notices.SourceWeb:    1,
	}
}

// Rank orders items by query relevance, then deadline proximity
// (nearer non-past deadlines first, absent or past last), then source
// trust. It populates each item's Score with the composite and returns
// a new slice; inputs are never mutated.
func Rank(items []research.NoticeItem, query string, trust map[string]float64, now time.Time) []research.NoticeItem {
	if trust == nil {
		trust = DefaultTrust()
	}
	terms := strings.Fields(strings.ToLower(query))

	out := make([]research.NoticeItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].Score = relevanceWeight*relevance(out[i], terms) +
			deadlineWeight*deadlineScore(out[i].Deadline, now) +
			trust[out[i].Source]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// relevance counts query-term hits against title plus agency.
func relevance(item research.NoticeItem, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	haystack := strings.ToLower(item.Title + " " + item.Agency)
	hits := 0.0
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			hits++
		}
	}
	return hits
}

// deadlineScore maps a deadline to (0, 99]: nearer future deadlines
// score higher, past or absent deadlines score zero.
func deadlineScore(deadline *time.Time, now time.Time) float64 {
	if deadline == nil || deadline.Before(now) {
		return 0
	}
	days := int(deadline.Sub(now).Hours() / 24)
	if days >= deadlineHorizon {
		return 1
	}
	score := 99 - float64(days)*98/float64(deadlineHorizon)
	return score
}
