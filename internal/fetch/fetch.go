// Package fetch retrieves page HTML through two strategies: a cheap
// plain HTTP fetch and a fallback browser render that executes scripts
// and scrolls to trigger lazy-loaded content.
package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

// RenderOptions controls a browser render.
type RenderOptions struct {
	// Scrolls is the number of scroll-to-bottom passes after the settle
	// wait.
	Scrolls int
	// ScrollSelector scrolls a specific element (e.g. a results feed)
	// instead of the window when non-empty.
	ScrollSelector string
	// ScrollSettle is the pause between scrolls.
	ScrollSettle time.Duration
}

// RenderedPage is the document captured by a browser render.
type RenderedPage struct {
	HTML     string
	FinalURL string
}

// Renderer loads a URL in a scripted browser session and captures the
// resulting document. Implementations must release every browser
// resource before returning, on all paths.
type Renderer interface {
	Render(ctx context.Context, url string, opts RenderOptions) (*RenderedPage, error)
}

// Fetcher retrieves a document with the requested strategy. Failures
// are reported through FetchResult.Succeeded, never as errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string, strategy model.FetchStrategy) *model.FetchResult
}

// Client combines the fast HTTP path with a browser renderer.
type Client struct {
	fast    *FastFetcher
	browser Renderer
}

// NewClient creates a Client from a fast fetcher and a renderer.
func NewClient(fast *FastFetcher, browser Renderer) *Client {
	return &Client{fast: fast, browser: browser}
}

// Fetch retrieves the URL with the given strategy. The fast path is the
// cheap first attempt; rendered is the fallback when the caller found
// nothing of interest in the raw document.
func (c *Client) Fetch(ctx context.Context, url string, strategy model.FetchStrategy) *model.FetchResult {
	if strategy == model.StrategyRendered {
		return c.fetchRendered(ctx, url)
	}
	return c.fast.Fetch(ctx, url)
}

func (c *Client) fetchRendered(ctx context.Context, url string) *model.FetchResult {
	failed := &model.FetchResult{FinalURL: url, Strategy: model.StrategyRendered}
	if c.browser == nil {
		zap.L().Warn("fetch: no renderer configured, rendered fetch unavailable", zap.String("url", url))
		return failed
	}

	// One scroll pass loads below-the-fold lazy content.
	page, err := c.browser.Render(ctx, url, RenderOptions{Scrolls: 1})
	if err != nil {
		zap.L().Debug("fetch: render failed", zap.String("url", url), zap.Error(err))
		return failed
	}

	return &model.FetchResult{
		HTML:      page.HTML,
		FinalURL:  page.FinalURL,
		Strategy:  model.StrategyRendered,
		Succeeded: true,
	}
}
