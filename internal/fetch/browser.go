package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// BrowserOptions configures the chromedp renderer.
type BrowserOptions struct {
	UserAgent string
	// PageTimeout bounds the whole render, navigation included.
	PageTimeout time.Duration
	// Settle is the fixed wait after navigation before scrolling.
	Settle time.Duration
}

// Browser renders pages in an isolated headless Chrome context per
// call. Nothing outlives the Render invocation: allocator, tab, and
// timeout contexts are all cancelled on every exit path.
type Browser struct {
	opts BrowserOptions
}

// NewBrowser creates a Browser renderer.
func NewBrowser(opts BrowserOptions) *Browser {
	if opts.PageTimeout == 0 {
		opts.PageTimeout = 30 * time.Second
	}
	if opts.Settle == 0 {
		opts.Settle = 2 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	return &Browser{opts: opts}
}

// Render navigates to the URL, waits the settle interval, performs the
// requested scroll passes, and captures the resulting document.
func (b *Browser) Render(ctx context.Context, targetURL string, opts RenderOptions) (*RenderedPage, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.PageTimeout)
	defer cancel()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(b.opts.UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	settle := opts.ScrollSettle
	if settle == 0 {
		settle = time.Second
	}

	tasks := chromedp.Tasks{
		chromedp.Navigate(targetURL),
		chromedp.Sleep(b.opts.Settle),
	}
	for i := 0; i < opts.Scrolls; i++ {
		tasks = append(tasks,
			chromedp.Evaluate(scrollScript(opts.ScrollSelector), nil),
			chromedp.Sleep(settle),
		)
	}

	var html, finalURL string
	tasks = append(tasks,
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return nil, eris.Wrapf(err, "fetch: render %s", targetURL)
	}
	return &RenderedPage{HTML: html, FinalURL: finalURL}, nil
}

// scrollScript scrolls either the window or a specific element (such as
// a results feed) to its bottom.
func scrollScript(selector string) string {
	if selector == "" {
		return "window.scrollTo(0, document.body.scrollHeight)"
	}
	escaped := strings.ReplaceAll(selector, `'`, `\'`)
	return fmt.Sprintf(
		"(() => { const el = document.querySelector('%s'); if (el) { el.scrollTop = el.scrollHeight; } })()",
		escaped,
	)
}
