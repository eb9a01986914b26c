package extract

import (
	"regexp"
	"strings"
)

// Heuristics holds the vocabulary and thresholds driving block scoring.
// The defaults are tuned for Korean corporate pages; treat them as data
// to re-tune per deployment, not as fixed rules.
type Heuristics struct {
	PositiveWords    []string
	NegativeWords    []string
	NoiseWords       []string
	StripSelectors   []string
	MinBlockRunes    int
	LongBlockRunes   int
	LongBlockBonus   int
	DigitRatio       float64
	MinSentenceRunes int
	DedupePrefix     int
	MaxRunes         int

	noiseRE *regexp.Regexp
}

// DefaultHeuristics returns the stock Korean business-page tuning.
func DefaultHeuristics() Heuristics {
	h := Heuristics{
		PositiveWords: []string{
			"회사", "기업", "사업", "제품", "서비스", "브랜드", "시장", "고객", "경쟁력",
			"글로벌", "해외", "네트워크", "반도체", "메모리", "파운드리", "디스플레이",
			"모바일", "스마트폰", "TV", "가전", "R&D", "연구", "개발", "생태계",
			"지속가능", "ESG", "전략", "수익", "포트폴리오",
		},
		NegativeWords: []string{
			"연혁", "출시", "공개", "선정", "수상", "양산", "투자", "발표", "나노",
			"신규", "슬라이드", "추천 제품", "쿠폰", "멤버십", "장바구니", "검색",
			"이벤트", "기획전",
		},
		NoiseWords: []string{
			"장바구니", "검색버튼", "검색창", "전체삭제", "뒤로가기", "홈으로", "쿠폰",
			"멤버십", "이벤트", "기획전", "추천 제품", "카테고리", "슬라이드",
			"삼성스토어", "사업자몰", "주문/배송조회", "구독클럽", "고객지원",
			"나의 제품", "회원", "로그인", "바로가기", "더보기",
		},
		StripSelectors: []string{
			"header", "footer", "nav", "aside", "form", "button", "input", "select",
			"[role=navigation]", "#header", "#footer", ".header", ".footer", ".nav",
			".gnb", ".breadcrumb", ".global-navigation", ".local-navigation", ".util",
			".search", ".menu", ".submenu", ".tab", ".quick", ".floating", ".banner",
			".slider", ".carousel",
		},
		MinBlockRunes:    150,
		LongBlockRunes:   400,
		LongBlockBonus:   2,
		DigitRatio:       0.15,
		MinSentenceRunes: 8,
		DedupePrefix:     60,
		MaxRunes:         8000,
	}
	h.noiseRE = compileNoiseRE(h.NoiseWords)
	return h
}

// NoiseRE returns the UI-noise matcher. The matcher is compiled up
// front (in DefaultHeuristics or extract.New) because one Heuristics
// value is shared by every concurrent extraction.
func (h Heuristics) NoiseRE() *regexp.Regexp {
	if h.noiseRE == nil {
		return compileNoiseRE(h.NoiseWords)
	}
	return h.noiseRE
}

func compileNoiseRE(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
}
