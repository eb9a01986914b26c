// Package app initializes and holds long-lived application services,
// acting as a dependency injection container.
package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/finscout/finscout/internal/clock/system"
	"github.com/finscout/finscout/internal/config"
	"github.com/finscout/finscout/internal/extract"
	"github.com/finscout/finscout/internal/fetch"
	"github.com/finscout/finscout/internal/logging"
	"github.com/finscout/finscout/internal/metrics"
	"github.com/finscout/finscout/internal/notice"
	"github.com/finscout/finscout/internal/orchestrator"
	"github.com/finscout/finscout/internal/research"
	"github.com/finscout/finscout/internal/sources/notices"
	"github.com/finscout/finscout/internal/sources/quotes"
	"github.com/finscout/finscout/internal/sources/tavily"
	"github.com/finscout/finscout/internal/summary"
)

// App holds the shared, long-lived services for the application.
type App struct {
	logger *zap.Logger
	cfg    config.Config
	orch   *orchestrator.Orchestrator
}

// Logger returns the shared zap logger instance.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Orchestrator returns the wired aggregation pipeline.
func (a *App) Orchestrator() *orchestrator.Orchestrator {
	return a.orch
}

// New builds the service graph from configuration. The summarizer is
// an optional capability: without an API key it stays nil and
// summarization is skipped, not erred.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}
	metrics.Init()

	timeout := cfg.RequestTimeout()

	searchClient := tavily.New(cfg.Search.TavilyAPIKey, timeout, logger.Named("tavily"))
	quoteProvider := quotes.New(timeout, logger.Named("quotes"))

	fetcher := fetch.New(fetch.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   timeout,
	})
	extractor := extract.New(fetcher, extract.DefaultHeuristics(), logger.Named("extract"))

	var summarizer research.Summarizer
	if cfg.Summarizer.APIKey != "" {
		s, err := summary.NewGenAISummarizer(ctx, cfg.Summarizer.APIKey, cfg.Summarizer.Model)
		if err != nil {
			return nil, err
		}
		summarizer = s
	} else {
		logger.Warn("summarizer api key not set, summarization disabled")
	}
	chain := summary.NewChain(summarizer, summary.DefaultGate(), logger.Named("summary"))

	var noticeSources []research.NoticeSource
	if cfg.Notices.FeedURL != "" {
		noticeSources = append(noticeSources, notices.NewFeedSource(cfg.Notices.FeedURL, logger.Named("notice_a")))
	}
	if cfg.Notices.PortalURL != "" {
		noticeSources = append(noticeSources,
			notices.NewPortalSource(cfg.Notices.PortalURL, cfg.Notices.PortalAPIKey, timeout, logger.Named("notice_b")))
	}
	noticeSources = append(noticeSources, notices.NewWebSource(searchClient, logger.Named("notice_web")))

	trust := cfg.Notices.Trust
	if len(trust) == 0 {
		trust = notice.DefaultTrust()
	}

	orch := orchestrator.New(
		searchClient,
		searchClient,
		quoteProvider,
		extractor,
		chain,
		noticeSources,
		trust,
		system.New(),
		orchestrator.Config{
			Workers: cfg.Pipeline.Workers,
			WebTopK: cfg.Pipeline.WebTopK,
		},
		logger.Named("orchestrator"),
	)

	return &App{logger: logger, cfg: cfg, orch: orch}, nil
}

// Close flushes buffered log entries.
func (a *App) Close() {
	_ = a.logger.Sync()
}
