// Package extract turns raw HTML into the single best passage of body
// text, scoring candidate blocks against a domain vocabulary.
package extract

import (
	"bytes"
	"context"
	"mime"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/finscout/finscout/internal/research"
)

// Selectors enumerated as block candidates, tried in order.
var candidateSelectors = []string{"main", "article", "section", "div[role=main]", "div"}

var stripAlways = []string{"script", "style", "noscript", "template", "svg"}

var whitespaceRE = regexp.MustCompile(`\s+`)

// Extractor fetches a page and selects its best content block.
type Extractor struct {
	fetcher research.PageFetcher
	heur    Heuristics
	logger  *zap.Logger
}

// New builds an Extractor. A nil logger falls back to a no-op one.
func New(fetcher research.PageFetcher, heur Heuristics, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if heur.noiseRE == nil {
		heur.noiseRE = compileNoiseRE(heur.NoiseWords)
	}
	return &Extractor{fetcher: fetcher, heur: heur, logger: logger}
}

// scoredBlock is a transient extraction candidate.
type scoredBlock struct {
	text   string
	score  int
	length int
}

// BestPassage fetches url and returns the highest-scoring cleaned text
// block. Every failure mode (fetch error, non-2xx, undecodable body,
// parse error) folds into an empty string.
func (e *Extractor) BestPassage(ctx context.Context, url string) string {
	resp, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.logger.Debug("page fetch failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Debug("page fetch non-2xx", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return ""
	}

	body := decodeBody(resp.Body, resp.ContentType)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		e.logger.Debug("html parse failed", zap.String("url", url), zap.Error(err))
		return ""
	}

	for _, sel := range stripAlways {
		doc.Find(sel).Remove()
	}
	for _, sel := range e.heur.StripSelectors {
		doc.Find(sel).Remove()
	}

	candidates := e.collectCandidates(doc)
	if len(candidates) == 0 {
		return truncateRunes(e.cleanText(doc.Text()), e.heur.MaxRunes)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score || (c.score == best.score && c.length > best.length) {
			best = c
		}
	}
	return truncateRunes(e.refineSentences(best.text), e.heur.MaxRunes)
}

func (e *Extractor) collectCandidates(doc *goquery.Document) []scoredBlock {
	var out []scoredBlock
	for _, sel := range candidateSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := e.cleanText(s.Text())
			length := len([]rune(text))
			if length < e.heur.MinBlockRunes {
				return
			}
			out = append(out, scoredBlock{text: text, score: e.scoreBlock(text), length: length})
		})
	}
	return out
}

// scoreBlock rates one cleaned block: +2 per positive-vocabulary hit,
// -1 per negative hit, a bonus past the long-block threshold, and a
// penalty when digits dominate (tables, price grids).
func (e *Extractor) scoreBlock(text string) int {
	score := 0
	for _, w := range e.heur.PositiveWords {
		if strings.Contains(text, w) {
			score += 2
		}
	}
	for _, w := range e.heur.NegativeWords {
		if strings.Contains(text, w) {
			score--
		}
	}
	runes := []rune(text)
	if len(runes) > e.heur.LongBlockRunes {
		score += e.heur.LongBlockBonus
	}
	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if len(runes) > 0 && float64(digits) > float64(len(runes))*e.heur.DigitRatio {
		score--
	}
	return score
}

func (e *Extractor) cleanText(raw string) string {
	t := e.heur.NoiseRE().ReplaceAllString(raw, " ")
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(t, " "))
}

// refineSentences splits the winning block into sentences, drops short
// and noisy ones, and deduplicates by a short prefix key keeping first
// occurrence.
func (e *Extractor) refineSentences(block string) string {
	noise := e.heur.NoiseRE()
	seen := make(map[string]struct{})
	var kept []string
	for _, s := range SplitSentences(block) {
		s = strings.TrimSpace(s)
		if len([]rune(s)) < e.heur.MinSentenceRunes {
			continue
		}
		if noise.MatchString(s) {
			continue
		}
		key := prefixKey(s, e.heur.DedupePrefix)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, s)
	}
	return strings.Join(kept, " ")
}

// SplitSentences breaks text after a terminator followed by whitespace.
// Korean sentence-final endings (다. / 요. / 니다.) terminate with a
// period, so a single terminator class covers both scripts.
func SplitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				out = append(out, string(runes[start:i+1]))
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
			out = append(out, rest)
		}
	}
	return out
}

func prefixKey(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// decodeBody transcodes the raw body to UTF-8. The declared charset is
// trusted unless absent or the degenerate latin-1 default, in which
// case the body is sniffed.
func decodeBody(body []byte, contentType string) []byte {
	name := declaredCharset(contentType)
	if name == "" || strings.EqualFold(name, "iso-8859-1") {
		detector := chardet.NewHtmlDetector()
		if result, err := detector.DetectBest(body); err == nil && result != nil {
			name = result.Charset
		}
	}
	if name == "" || strings.EqualFold(name, "utf-8") {
		return body
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return body
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return body
	}
	return decoded
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
