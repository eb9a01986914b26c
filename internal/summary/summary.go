// Package summary wraps an injected summarizer with a quality gate and
// a deterministic rule-based substitute.
package summary

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/finscout/finscout/internal/extract"
	"github.com/finscout/finscout/internal/research"
)

// Gate holds the quality-gate thresholds and vocabularies. These are
// heuristic and language-specific; keep them as data.
type Gate struct {
	MinSummaryRunes int
	MaxProfileRunes int
	PromptBudget    int
	FallbackRunes   int
	FallbackTake    int
	FallbackLabel   string
	BannedRE        *regexp.Regexp
	PositiveRE      *regexp.Regexp
	NegativeRE      *regexp.Regexp
	NoiseRE         *regexp.Regexp
}

// DefaultGate returns the stock Korean-market tuning.
func DefaultGate() Gate {
	return Gate{
		MinSummaryRunes: 50,
		MaxProfileRunes: 800,
		PromptBudget:    6000,
		FallbackRunes:   700,
		FallbackTake:    7,
		FallbackLabel:   "기업 개요: ",
		BannedRE: regexp.MustCompile(
			`(?i)(캠퍼스|장바구니|검색버튼|쿠폰|멤버십|이벤트|기획전|추천 제품|슬라이드)`),
		PositiveRE: regexp.MustCompile(
			`(회사|기업|사업|제품|서비스|시장|고객|반도체|메모리|파운드리|디스플레이|모바일|브랜드|경쟁력|글로벌|생태계|R&D|지속가능|ESG)`),
		NegativeRE: regexp.MustCompile(
			`(연혁|출시|공개|선정|수상|양산|투자|발표|나노|신규)`),
		NoiseRE: regexp.MustCompile(
			`(?i)(갤럭시 캠퍼스|장바구니|검색버튼|쿠폰|멤버십|이벤트|기획전|추천 제품|슬라이드|뒤로가기|홈으로|검색 결과|카테고리|삼성스토어|사업자몰|구독클럽|주문/배송조회|나의 제품)`),
	}
}

var whitespaceRE = regexp.MustCompile(`\s+`)

const profilePrompt = "다음 자료를 근거로 '기업 개요'를 한국어 5~7문장으로 요약하세요.\n" +
	"- 핵심 사업/제품, 수익원, 주요 시장/고객, 차별점, 최근 이슈(있으면)\n" +
	"- 과도한 재무 디테일은 피하고, 문장당 20~30자 이내로 간결하게.\n\n"

const emptyFallback = "기업 개요(폴백): 소비자 전자·반도체 등 핵심 사업 중심의 글로벌 기업. " +
	"세부 사항은 아래 출처 참조.\n"

// Chain runs summarizer → quality gate → rule-based fallback.
type Chain struct {
	summarizer research.Summarizer
	gate       Gate
	logger     *zap.Logger
}

// NewChain builds a Chain. summarizer may be nil (capability absent).
func NewChain(summarizer research.Summarizer, gate Gate, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{summarizer: summarizer, gate: gate, logger: logger}
}

// Summarize condenses text through the injected capability. Absent
// capability, empty input, or any summarizer error yields "".
func (c *Chain) Summarize(ctx context.Context, text string) string {
	if text == "" || c.summarizer == nil {
		return ""
	}
	prompt := "다음 내용을 3~5문장으로 간결하게 요약해 주세요:\n\n" + headRunes(text, c.gate.PromptBudget)
	out, err := c.summarizer.Summarize(ctx, prompt)
	if err != nil {
		c.logger.Debug("summarizer failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(out)
}

// BuildProfile assembles the company profile from per-URL extracted
// texts. Zero usable texts short-circuits to a fixed template naming
// the attempted URLs; a gated-out summary falls back to the rule-based
// substitute. Never returns an error.
func (c *Chain) BuildProfile(ctx context.Context, urls []string, texts []string) research.ProfileRecord {
	usable := make([]string, 0, len(texts))
	for i, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		src := ""
		if i < len(urls) {
			src = urls[i]
		}
		usable = append(usable, "["+src+"]\n"+headRunes(t, c.gate.PromptBudget))
	}

	if len(usable) == 0 {
		var b strings.Builder
		b.WriteString(emptyFallback)
		for i, u := range urls {
			if i >= 3 {
				break
			}
			b.WriteString("- " + u + "\n")
		}
		return research.ProfileRecord{Text: strings.TrimRight(b.String(), "\n"), Sources: urls}
	}

	corpus := strings.Join(usable, "\n\n---\n\n")

	text := c.Summarize(ctx, profilePrompt+corpus)

	if text == "" || c.gate.Reject(text) {
		c.logger.Debug("summary rejected, using rule-based fallback")
		text = c.gate.RuleBasedSummary(corpus)
	}

	return research.ProfileRecord{Text: headRunes(text, c.gate.MaxProfileRunes), Sources: urls}
}

// Reject reports whether a summary fails the quality gate: too short,
// a token repeated three or more times consecutively, or residual UI
// vocabulary.
func (g Gate) Reject(s string) bool {
	if len([]rune(s)) < g.MinSummaryRunes {
		return true
	}
	if hasRepeatedToken(s, 3) {
		return true
	}
	return g.BannedRE.MatchString(s)
}

// RuleBasedSummary scores each candidate sentence and keeps the best.
func (g Gate) RuleBasedSummary(corpus string) string {
	var sents []string
	for _, s := range extract.SplitSentences(corpus) {
		s = strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
		if len([]rune(s)) < 8 {
			continue
		}
		if g.NoiseRE.MatchString(s) {
			continue
		}
		sents = append(sents, s)
	}

	type scored struct {
		score int
		sent  string
	}
	ranked := make([]scored, 0, len(sents))
	anyPositive := false
	for _, s := range sents {
		sc := 0
		if g.PositiveRE.MatchString(s) {
			sc += 2
		}
		if g.NegativeRE.MatchString(s) {
			sc--
		}
		n := len([]rune(s))
		if n > 120 {
			sc--
		}
		if n < 10 {
			sc -= 2
		}
		if sc > 0 {
			anyPositive = true
		}
		ranked = append(ranked, scored{score: sc, sent: s})
	}

	var picked []string
	if anyPositive {
		// Stable selection: order by score, original order on ties.
		for rank := 0; rank < g.FallbackTake && rank < len(ranked); rank++ {
			bestIdx := -1
			for i, r := range ranked {
				if r.sent == "" {
					continue
				}
				if bestIdx == -1 || r.score > ranked[bestIdx].score {
					bestIdx = i
				}
			}
			if bestIdx == -1 {
				break
			}
			picked = append(picked, ranked[bestIdx].sent)
			ranked[bestIdx].sent = ""
		}
	} else {
		if len(sents) > 5 {
			sents = sents[:5]
		}
		picked = sents
	}

	return g.FallbackLabel + shorten(strings.Join(picked, " "), g.FallbackRunes)
}

// hasRepeatedToken reports whether any token of length >= 2 repeats
// at least n times consecutively ("제품 제품 제품").
func hasRepeatedToken(s string, n int) bool {
	tokens := strings.Fields(s)
	run := 1
	for i := 1; i < len(tokens); i++ {
		if len([]rune(tokens[i])) >= 2 && tokens[i] == tokens[i-1] {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// shorten truncates to at most n runes at a word boundary, appending
// an ellipsis marker.
func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n-1])
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "…"
}

func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
