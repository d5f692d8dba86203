package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/internal/model"
)

// FastOptions configures the fast HTTP fetch path.
type FastOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	// PerHostRate is the sustained request rate allowed per remote host.
	PerHostRate rate.Limit
}

// FastFetcher issues single bounded-timeout GET requests with a
// realistic browser user-agent, spacing requests per host.
type FastFetcher struct {
	client *http.Client
	opts   FastOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFastFetcher creates a FastFetcher with the given options.
func NewFastFetcher(opts FastOptions) *FastFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = 2 * 1024 * 1024
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if opts.PerHostRate == 0 {
		opts.PerHostRate = 1
	}
	return &FastFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: opts.Timeout,
				}).DialContext,
				TLSHandshakeTimeout: opts.Timeout,
			},
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the rate limiter for the URL's host, creating one
// on first use.
func (f *FastFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(f.opts.PerHostRate, 2)
		f.limiters[host] = l
	}
	return l
}

// Fetch issues one GET. Transport errors and non-2xx statuses yield a
// failed result with no HTML; they are never surfaced as errors.
func (f *FastFetcher) Fetch(ctx context.Context, targetURL string) *model.FetchResult {
	failed := &model.FetchResult{FinalURL: targetURL, Strategy: model.StrategyFast}

	if err := f.limiterFor(targetURL).Wait(ctx); err != nil {
		return failed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		zap.L().Debug("fetch: bad url", zap.String("url", targetURL), zap.Error(err))
		return failed
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Debug("fetch: transport error", zap.String("url", targetURL), zap.Error(err))
		return failed
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Debug("fetch: non-2xx status",
			zap.String("url", targetURL),
			zap.Int("status", resp.StatusCode),
		)
		return failed
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		zap.L().Debug("fetch: read body", zap.String("url", targetURL), zap.Error(err))
		return failed
	}

	return &model.FetchResult{
		HTML:      string(body),
		FinalURL:  resp.Request.URL.String(),
		Strategy:  model.StrategyFast,
		Succeeded: true,
	}
}
