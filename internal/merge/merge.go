// Package merge assembles the canonical result envelope from the raw
// task-outcome bag. Assembly is pure and never fails: anything
// malformed becomes an appended error on a best-effort envelope.
package merge

import (
	"fmt"
	"sort"

	"github.com/finscout/finscout/internal/research"
)

// Research builds the web_results envelope for the market pipeline.
func Research(query string, plan research.Plan, bag map[research.TaskKind]research.Outcome) research.ResultEnvelope {
	env := research.ResultEnvelope{
		Type:   research.EnvelopeWebResults,
		Query:  query,
		Plan:   &plan,
		Items:  []research.SearchResult{},
		Errors: []string{},
	}

	for kind, outcome := range bag {
		if outcome.Err != nil {
			env.Errors = append(env.Errors, fmt.Sprintf("%s: %s", kind, outcome.Err))
			continue
		}
		switch kind {
		case research.TaskWeb:
			if items, ok := outcome.Payload.([]research.SearchResult); ok {
				env.Items = items
			} else {
				env.Errors = append(env.Errors, fmt.Sprintf("merge: unexpected payload for %s", kind))
			}
		case research.TaskQuote:
			if quotes, ok := outcome.Payload.([]research.QuoteRecord); ok {
				env.Quotes = quotes
			} else {
				env.Errors = append(env.Errors, fmt.Sprintf("merge: unexpected payload for %s", kind))
			}
		case research.TaskProfile:
			if profile, ok := outcome.Payload.(research.ProfileRecord); ok {
				env.Profile = profile.Text
				env.ProfileSources = profile.Sources
			} else {
				env.Errors = append(env.Errors, fmt.Sprintf("merge: unexpected payload for %s", kind))
			}
		default:
			env.Errors = append(env.Errors, fmt.Sprintf("merge: unknown task kind %s", kind))
		}
	}

	sortErrors(env.Errors)
	return env
}

// Notices builds the gov_notices envelope for the notice pipeline. The
// plan echo is deliberately omitted.
func Notices(query string, items []research.NoticeItem, bag map[research.TaskKind]research.Outcome) research.ResultEnvelope {
	env := research.ResultEnvelope{
		Type:    research.EnvelopeGovNotices,
		Query:   query,
		Items:   []research.SearchResult{},
		Notices: items,
		Errors:  []string{},
	}
	if env.Notices == nil {
		env.Notices = []research.NoticeItem{}
	}
	for kind, outcome := range bag {
		if outcome.Err != nil {
			env.Errors = append(env.Errors, fmt.Sprintf("%s: %s", kind, outcome.Err))
		}
	}
	sortErrors(env.Errors)
	return env
}

// sortErrors keeps the error list deterministic; bag iteration order
// is not.
func sortErrors(errs []string) {
	sort.Strings(errs)
}
