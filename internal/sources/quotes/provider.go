// Package quotes looks up market quotes per symbol, embedding failures
// in the returned records instead of erroring.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/finscout/finscout/internal/research"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

var krxNumericRE = regexp.MustCompile(`^\d{6}$`)

// NormalizeSymbol appends the KRX market suffix to bare 6-digit codes;
// everything else passes through unchanged.
func NormalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	if krxNumericRE.MatchString(s) {
		return s + ".KS"
	}
	return s
}

// Provider implements research.QuoteProvider over the Yahoo quote API.
type Provider struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option mutates a Provider during construction.
type Option func(*Provider)

// WithBaseURL overrides the API endpoint (tests).
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = u }
}

// New builds a Provider with a per-call HTTP timeout.
func New(timeout time.Duration, logger *zap.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string   `json:"symbol"`
			RegularMarketPrice *float64 `json:"regularMarketPrice"`
			PostMarketPrice    *float64 `json:"postMarketPrice"`
			Currency           string   `json:"currency"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// Quotes looks up each symbol independently. A failing symbol yields a
// record with Err set; the call itself never fails.
func (p *Provider) Quotes(ctx context.Context, symbols []string) []research.QuoteRecord {
	out := make([]research.QuoteRecord, 0, len(symbols))
	for _, raw := range symbols {
		sym := NormalizeSymbol(raw)
		rec, err := p.lookup(ctx, sym)
		if err != nil {
			p.logger.Debug("quote lookup failed", zap.String("symbol", sym), zap.Error(err))
			out = append(out, research.QuoteRecord{Symbol: sym, Err: err.Error()})
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (p *Provider) lookup(ctx context.Context, symbol string) (research.QuoteRecord, error) {
	endpoint := p.baseURL + "/v7/finance/quote?symbols=" + url.QueryEscape(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return research.QuoteRecord{}, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.http.Do(req)
	if err != nil {
		return research.QuoteRecord{}, fmt.Errorf("quote fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return research.QuoteRecord{}, fmt.Errorf("quote fetch: unexpected status %d", resp.StatusCode)
	}

	var parsed quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return research.QuoteRecord{}, fmt.Errorf("decode quote response: %w", err)
	}
	if len(parsed.QuoteResponse.Result) == 0 {
		return research.QuoteRecord{}, fmt.Errorf("no quote data for %s", symbol)
	}

	hit := parsed.QuoteResponse.Result[0]
	price := hit.RegularMarketPrice
	if price == nil {
		price = hit.PostMarketPrice
	}
	if price == nil {
		return research.QuoteRecord{}, fmt.Errorf("no price for %s", symbol)
	}
	if strings.TrimSpace(hit.Currency) == "" {
		return research.QuoteRecord{}, fmt.Errorf("no currency for %s", symbol)
	}

	return research.QuoteRecord{Symbol: symbol, Price: *price, Currency: hit.Currency}, nil
}
