// Package pipeline sequences resolver, fetcher, extractor, and link
// discoverer into a single search run, merging partial results and
// pacing outbound fetches.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/internal/discover"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/search"
	"github.com/sells-group/leadscout/internal/store"
)

// Options configures the orchestrator.
type Options struct {
	// MaxContactPages bounds secondary page probing per candidate
	// (default 2).
	MaxContactPages int
	// CandidateDelay is the minimum spacing between candidates
	// (default 2s; zero in tests disables pacing).
	CandidateDelay time.Duration
	// MaxConcurrent bounds the worker pool (default 1: candidates are
	// processed one at a time).
	MaxConcurrent int
}

// Orchestrator walks each candidate URL through the fetch/extract state
// machine. Terminal states per candidate: resolved (email found),
// partial (some fields), failed (nothing usable).
type Orchestrator struct {
	fetcher    fetch.Fetcher
	extractor  *extract.Extractor
	discoverer *discover.Discoverer
	resolvers  map[model.SearchMode]search.Resolver
	store      *store.Store
	limiter    *rate.Limiter
	opts       Options
}

// New creates an Orchestrator. store may be nil to disable caching.
func New(
	fetcher fetch.Fetcher,
	extractor *extract.Extractor,
	discoverer *discover.Discoverer,
	resolvers []search.Resolver,
	st *store.Store,
	opts Options,
) *Orchestrator {
	if opts.MaxContactPages == 0 {
		opts.MaxContactPages = 2
	}
	if opts.MaxConcurrent == 0 {
		opts.MaxConcurrent = 1
	}

	limit := rate.Inf
	if opts.CandidateDelay > 0 {
		limit = rate.Every(opts.CandidateDelay)
	}

	byMode := make(map[model.SearchMode]search.Resolver, len(resolvers))
	for _, r := range resolvers {
		byMode[r.Mode()] = r
	}

	return &Orchestrator{
		fetcher:    fetcher,
		extractor:  extractor,
		discoverer: discoverer,
		resolvers:  byMode,
		store:      st,
		limiter:    rate.NewLimiter(limit, 1),
		opts:       opts,
	}
}

// Collect resolves candidates for the query and mines each one. The
// returned records are raw: unvalidated and undeduplicated, in
// candidate order regardless of completion order. Fetch failures
// degrade individual candidates, never the run.
func (o *Orchestrator) Collect(ctx context.Context, query string, mode model.SearchMode) []model.ContactRecord {
	resolver, ok := o.resolvers[mode]
	if !ok {
		zap.L().Error("pipeline: no resolver for mode", zap.String("mode", string(mode)))
		return nil
	}

	candidates := resolver.Resolve(ctx, query)
	if len(candidates) == 0 {
		zap.L().Info("pipeline: no candidates", zap.String("query", query))
		return nil
	}

	records := make([]model.ContactRecord, len(candidates))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxConcurrent)

	for i, cand := range candidates {
		g.Go(func() error {
			// Global spacing between outbound candidates, even when the
			// pool runs them concurrently.
			if err := o.limiter.Wait(gCtx); err != nil {
				return nil
			}
			rec, state := o.processCandidate(gCtx, cand)
			records[i] = rec

			zap.L().Debug("pipeline: candidate done",
				zap.String("url", cand.URL),
				zap.String("state", string(state)),
			)
			return nil
		})
	}
	_ = g.Wait()

	// Accumulate whatever was mined; empty records are filtered by the
	// normalizer downstream.
	out := make([]model.ContactRecord, 0, len(records))
	for _, rec := range records {
		if rec.SourceURL != "" {
			out = append(out, rec)
		}
	}
	return out
}

// processCandidate runs the per-candidate state machine:
//
//	0. directory candidates only: render the detail page for name,
//	   phone, and the business's own website; later steps then target
//	   that website when found
//	1. fast fetch; an email short-circuits to resolved
//	2. rendered retry of the same URL
//	3. probe up to MaxContactPages discovered contact pages, stopping
//	   at the first email
func (o *Orchestrator) processCandidate(ctx context.Context, cand model.CandidateURL) (model.ContactRecord, model.ResolveState) {
	rec := model.ContactRecord{SourceURL: cand.URL}
	target := cand.URL
	directoryPhone := ""

	if cand.Provenance == model.ProvenanceDirectory {
		res := o.fetcher.Fetch(ctx, cand.URL, model.StrategyRendered)
		if res.Succeeded {
			out := o.extractor.Extract(res.HTML, res.FinalURL)
			rec.BusinessName = out.BusinessName
			directoryPhone = out.Phone
			if out.Website != "" {
				rec.Website = out.Website
				target = out.Website
			}
		}
	}

	var pageHTML, pageURL string

	// Step 1: cheap fetch first.
	if res := o.fetchFast(ctx, target); res.Succeeded {
		pageHTML, pageURL = res.HTML, res.FinalURL
		o.merge(&rec, o.extractor.Extract(res.HTML, res.FinalURL))
	}

	// Step 2: rendered retry when the raw document had no email.
	if rec.Email == "" {
		if res := o.fetcher.Fetch(ctx, target, model.StrategyRendered); res.Succeeded {
			pageHTML, pageURL = res.HTML, res.FinalURL
			o.merge(&rec, o.extractor.Extract(res.HTML, res.FinalURL))
		}
	}

	// Step 3: probe discovered contact pages.
	if rec.Email == "" && pageHTML != "" {
		links := o.discoverer.Discover(pageHTML, pageURL)
		if len(links) > o.opts.MaxContactPages {
			links = links[:o.opts.MaxContactPages]
		}
		for _, link := range links {
			res := o.fetcher.Fetch(ctx, link, model.StrategyRendered)
			if !res.Succeeded {
				continue
			}
			o.merge(&rec, o.extractor.Extract(res.HTML, res.FinalURL))
			if rec.Email != "" {
				break
			}
		}
	}

	// The website-sourced phone wins; the directory value is the
	// fallback.
	if rec.Phone == "" {
		rec.Phone = directoryPhone
	}

	switch {
	case rec.Email != "":
		return rec, model.StateResolved
	case rec.HasContact() || rec.BusinessName != "":
		return rec, model.StatePartial
	default:
		return rec, model.StateFailed
	}
}

// fetchFast consults the cache before issuing a fast fetch, and caches
// successful responses.
func (o *Orchestrator) fetchFast(ctx context.Context, url string) *model.FetchResult {
	if o.store != nil {
		if cached, err := o.store.CachedPage(ctx, url); err == nil && cached != nil {
			zap.L().Debug("pipeline: cache hit", zap.String("url", url))
			return cached
		}
	}
	res := o.fetcher.Fetch(ctx, url, model.StrategyFast)
	if res.Succeeded && o.store != nil {
		if err := o.store.CachePage(ctx, url, res); err != nil {
			zap.L().Warn("pipeline: cache write failed", zap.String("url", url), zap.Error(err))
		}
	}
	return res
}

// merge fills empty record fields from an extraction outcome. A found
// email always wins so that a website-sourced address overrides
// directory-sourced fields.
func (o *Orchestrator) merge(rec *model.ContactRecord, out model.ExtractionOutcome) {
	if rec.BusinessName == "" {
		rec.BusinessName = out.BusinessName
	}
	if out.Email != "" {
		rec.Email = out.Email
	}
	if rec.Phone == "" {
		rec.Phone = out.Phone
	}
	if rec.Website == "" {
		rec.Website = out.Website
	}
}
