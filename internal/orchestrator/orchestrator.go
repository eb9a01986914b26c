// Package orchestrator fans independent source lookups out over a
// bounded worker pool and joins all outcomes before merging. One
// failing task never cancels its siblings; failures are captured as
// tagged outcomes, never as errors crossing the pool boundary.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/finscout/finscout/internal/extract"
	"github.com/finscout/finscout/internal/merge"
	"github.com/finscout/finscout/internal/metrics"
	"github.com/finscout/finscout/internal/notice"
	"github.com/finscout/finscout/internal/research"
	"github.com/finscout/finscout/internal/summary"
)

// DefaultWorkers is the pool width used when none is configured.
const DefaultWorkers = 4

// profileURLLimit caps how many discovered pages feed the profile.
const profileURLLimit = 2

// Config controls orchestration behavior.
type Config struct {
	Workers int
	WebTopK int
}

// Orchestrator schedules source tasks and merges their outcomes.
type Orchestrator struct {
	web      research.WebSearcher
	profiles research.ProfileSearcher
	quotes   research.QuoteProvider
	extract  *extract.Extractor
	chain    *summary.Chain
	sources  []research.NoticeSource
	trust    map[string]float64
	clock    research.Clock
	cfg      Config
	logger   *zap.Logger
}

// New constructs an Orchestrator. Collaborators may be nil when the
// corresponding source is never enabled by any plan.
func New(
	web research.WebSearcher,
	profiles research.ProfileSearcher,
	quotes research.QuoteProvider,
	extractor *extract.Extractor,
	chain *summary.Chain,
	sources []research.NoticeSource,
	trust map[string]float64,
	clk research.Clock,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.WebTopK <= 0 {
		cfg.WebTopK = 6
	}
	return &Orchestrator{
		web:      web,
		profiles: profiles,
		quotes:   quotes,
		extract:  extractor,
		chain:    chain,
		sources:  sources,
		trust:    trust,
		clock:    clk,
		cfg:      cfg,
		logger:   logger,
	}
}

// task is one unit of work owned by the pool.
type task struct {
	kind research.TaskKind
	run  func(ctx context.Context) (any, error)
}

// Research executes the market pipeline: web search, quote lookups and
// the profile sub-pipeline, per the plan's eligibility rules.
func (o *Orchestrator) Research(ctx context.Context, query string, plan research.Plan) research.ResultEnvelope {
	metrics.RequestServed("research")
	plan = plan.Clamp()

	var tasks []task
	if plan.Web {
		tasks = append(tasks, task{kind: research.TaskWeb, run: func(ctx context.Context) (any, error) {
			return o.web.Search(ctx, query, plan.WebTopK)
		}})
	}
	if plan.Quotes && len(plan.Symbols) > 0 {
		tasks = append(tasks, task{kind: research.TaskQuote, run: func(ctx context.Context) (any, error) {
			return o.quotes.Quotes(ctx, plan.Symbols), nil
		}})
	}
	if research.LooksLikeTicker(query) || len(plan.Symbols) > 0 {
		tasks = append(tasks, task{kind: research.TaskProfile, run: func(ctx context.Context) (any, error) {
			return o.profileTask(ctx, query)
		}})
	}

	bag := o.runAll(ctx, tasks)
	return merge.Research(query, plan, bag)
}

// Notices executes the government-notice pipeline: fetch each enabled
// source, then normalize and rank the union.
func (o *Orchestrator) Notices(ctx context.Context, query string, plan research.Plan) research.ResultEnvelope {
	metrics.RequestServed("notices")
	plan = plan.Clamp()

	var tasks []task
	for _, src := range o.sources {
		src := src
		kind := research.TaskKind(src.Name())
		topK, enabled := noticeBudget(plan, kind)
		if !enabled {
			continue
		}
		tasks = append(tasks, task{kind: kind, run: func(ctx context.Context) (any, error) {
			return src.FetchNotices(ctx, query, topK)
		}})
	}

	bag := o.runAll(ctx, tasks)

	var raw []research.RawNotice
	for _, kind := range []research.TaskKind{research.TaskNoticeA, research.TaskNoticeB, research.TaskNoticeWeb} {
		outcome, ok := bag[kind]
		if !ok || outcome.Err != nil {
			continue
		}
		if records, ok := outcome.Payload.([]research.RawNotice); ok {
			raw = append(raw, records...)
		}
	}

	now := time.Now().UTC()
	if o.clock != nil {
		now = o.clock.Now()
	}
	ranked := notice.Rank(notice.Normalize(raw), query, o.trust, now)
	return merge.Notices(query, ranked, bag)
}

// noticeBudget resolves the per-source top-k and whether the source is
// eligible under the plan. The web fallback is opt-in; the portal
// sources always run in the notice pipeline.
func noticeBudget(plan research.Plan, kind research.TaskKind) (int, bool) {
	switch kind {
	case research.TaskNoticeA:
		return plan.NoticeATopK, true
	case research.TaskNoticeB:
		return plan.NoticeBTopK, true
	case research.TaskNoticeWeb:
		return plan.NoticeWebTopK, plan.UseWebFallback && plan.NoticeWebTopK > 0
	default:
		return 0, false
	}
}

// profileTask is the two-step sub-pipeline: discover candidate pages,
// then extract and summarize each. Page-level extraction failures fold
// into empty text inside the extractor and are not surfaced here.
func (o *Orchestrator) profileTask(ctx context.Context, query string) (any, error) {
	hits, err := o.profiles.SearchProfile(ctx, query, profileURLLimit)
	if err != nil {
		return nil, fmt.Errorf("profile search: %w", err)
	}

	urls := make([]string, 0, profileURLLimit)
	for _, hit := range hits {
		if hit.URL == "" {
			continue
		}
		urls = append(urls, hit.URL)
		if len(urls) >= profileURLLimit {
			break
		}
	}

	texts := make([]string, len(urls))
	for i, u := range urls {
		texts[i] = o.extract.BestPassage(ctx, u)
	}

	return o.chain.BuildProfile(ctx, urls, texts), nil
}

// runAll submits every task before awaiting any result, then blocks
// until all have settled. There is no cross-task cancellation: a
// sibling failure is recorded and the rest keep running.
func (o *Orchestrator) runAll(ctx context.Context, tasks []task) map[research.TaskKind]research.Outcome {
	bag := make(map[research.TaskKind]research.Outcome, len(tasks))
	if len(tasks) == 0 {
		return bag
	}

	jobs := make(chan task, len(tasks))
	results := make(chan research.Outcome, len(tasks))

	width := o.cfg.Workers
	if width > len(tasks) {
		width = len(tasks)
	}

	var wg sync.WaitGroup
	for i := 0; i < width; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				results <- o.execute(ctx, t)
			}
		}()
	}

	for _, t := range tasks {
		jobs <- t
	}
	close(jobs)

	wg.Wait()
	close(results)

	for outcome := range results {
		bag[outcome.Kind] = outcome
	}
	return bag
}

// execute runs one task, converting panics and errors into failure
// outcomes so nothing escapes the pool.
func (o *Orchestrator) execute(ctx context.Context, t task) (outcome research.Outcome) {
	metrics.TaskStarted()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = research.Fail(t.kind, fmt.Errorf("panic: %v", r))
		}
		metrics.TaskFinished(string(t.kind), outcome.Err == nil, time.Since(start))
		if outcome.Err != nil {
			o.logger.Warn("source task failed",
				zap.String("kind", string(t.kind)),
				zap.Error(outcome.Err),
			)
		} else {
			o.logger.Debug("source task done",
				zap.String("kind", string(t.kind)),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}()

	payload, err := t.run(ctx)
	if err != nil {
		return research.Fail(t.kind, err)
	}
	return research.Ok(t.kind, payload)
}
