// Package fetch implements research.PageFetcher using gocolly.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/finscout/finscout/internal/research"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// CollyFetcher fetches single pages with a Colly collector.
type CollyFetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a CollyFetcher.
func New(cfg Config) *CollyFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())
	return &CollyFetcher{cfg: cfg, baseCollector: c}
}

// Fetch executes a single HTTP GET.
func (f *CollyFetcher) Fetch(ctx context.Context, url string) (research.PageResponse, error) {
	var (
		result   research.PageResponse
		fetchErr error
	)
	start := time.Now()

	collector := f.baseCollector.Clone()
	collector.UserAgent = f.cfg.UserAgent
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnResponse(func(r *colly.Response) {
		result = research.PageResponse{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        append([]byte(nil), r.Body...),
			Duration:    time.Since(start),
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return research.PageResponse{}, fmt.Errorf("page fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return research.PageResponse{}, fmt.Errorf("page visit failed: %w", err)
		}
		if fetchErr != nil {
			return research.PageResponse{}, fmt.Errorf("page response failed: %w", fetchErr)
		}
		return result, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
