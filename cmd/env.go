package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/discover"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/pipeline"
	"github.com/sells-group/leadscout/internal/process"
	"github.com/sells-group/leadscout/internal/search"
	"github.com/sells-group/leadscout/internal/store"
)

// env holds the wired pipeline and its owned resources.
type env struct {
	Service *pipeline.Service
	Store   *store.Store
}

// Close releases resources owned by the environment.
func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// initPipeline wires the full search pipeline from configuration.
func initPipeline(ctx context.Context, cfg *config.Config) (*env, error) {
	browser := fetch.NewBrowser(fetch.BrowserOptions{
		UserAgent:   cfg.Fetch.UserAgent,
		PageTimeout: time.Duration(cfg.Fetch.RenderTimeoutSecs) * time.Second,
		Settle:      time.Duration(cfg.Fetch.SettleMillis) * time.Millisecond,
	})
	fast := fetch.NewFastFetcher(fetch.FastOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})
	client := fetch.NewClient(fast, browser)

	extractor := extract.New(extract.Options{
		DenyDomains:      cfg.Extract.DenyDomains,
		BusinessPrefixes: cfg.Extract.BusinessPrefixes,
		SocialDomains:    cfg.Extract.SocialDomains,
	})
	discoverer := discover.New(cfg.Extract.ContactKeywords)

	searchOpts := search.Options{
		MaxResults:    cfg.Search.MaxResults,
		SocialDomains: cfg.Extract.SocialDomains,
	}
	resolvers := []search.Resolver{
		search.NewDirectoryResolver(
			browser,
			cfg.Search.DirectoryScrolls,
			time.Duration(cfg.Search.ScrollSettleMillis)*time.Millisecond,
			searchOpts,
		),
		search.NewWebResolver(browser, searchOpts),
	}

	var st *store.Store
	if cfg.Store.Path != "" {
		var err error
		st, err = store.Open(cfg.Store.Path, time.Duration(cfg.Store.CacheTTLHours)*time.Hour)
		if err != nil {
			return nil, eris.Wrap(err, "open store")
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		if n, err := st.PruneCache(ctx); err != nil {
			zap.L().Warn("prune cache", zap.Error(err))
		} else if n > 0 {
			zap.L().Debug("pruned expired cache entries", zap.Int64("count", n))
		}
	}

	orch := pipeline.New(client, extractor, discoverer, resolvers, st, pipeline.Options{
		MaxContactPages: cfg.Pipeline.MaxContactPages,
		CandidateDelay:  time.Duration(cfg.Pipeline.CandidateDelayMillis) * time.Millisecond,
		MaxConcurrent:   cfg.Pipeline.MaxConcurrent,
	})
	norm := process.NewNormalizer(cfg.Normalize.DefaultCountryCode, cfg.Extract.DenyDomains)

	return &env{
		Service: pipeline.NewService(orch, norm, st),
		Store:   st,
	}, nil
}
