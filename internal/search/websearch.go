package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/model"
)

const webSearchBase = "https://www.google.com/search?q="

// WebResolver finds candidate websites via general web search results.
type WebResolver struct {
	renderer fetch.Renderer
	opts     Options
}

// NewWebResolver creates a WebResolver.
func NewWebResolver(renderer fetch.Renderer, opts Options) *WebResolver {
	opts.applyDefaults()
	return &WebResolver{renderer: renderer, opts: opts}
}

func (r *WebResolver) Mode() model.SearchMode { return model.ModeWebSearch }

// Resolve renders a search results page and extracts outbound result
// links, unwrapping redirect-wrapper links and filtering social/search
// hosts.
func (r *WebResolver) Resolve(ctx context.Context, query string) []model.CandidateURL {
	searchURL := webSearchBase + url.QueryEscape(strings.TrimSpace(query))

	page, err := r.renderer.Render(ctx, searchURL, fetch.RenderOptions{})
	if err != nil {
		zap.L().Warn("search: web results render failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}

	links := r.extractResultLinks(page.HTML)
	links = dedupe(links, r.opts.MaxResults)

	zap.L().Info("search: web results",
		zap.String("query", query),
		zap.Int("candidates", len(links)),
	)

	candidates := make([]model.CandidateURL, 0, len(links))
	for _, u := range links {
		candidates = append(candidates, model.CandidateURL{URL: u, Provenance: model.ProvenanceSearch})
	}
	return candidates
}

// extractResultLinks harvests absolute outbound links, decoding any
// /url?q= redirect wrappers the results page puts around targets.
func (r *WebResolver) extractResultLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)

		if unwrapped := unwrapRedirect(href); unwrapped != "" {
			href = unwrapped
		}

		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		if r.isSocialHost(u.Host) {
			return
		}
		links = append(links, u.String())
	})
	return links
}

// unwrapRedirect decodes the wrapped target of a "/url?q=..." link.
// Returns empty when the href is not a redirect wrapper.
func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") && !strings.Contains(href, "/url?") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil || u.Path != "/url" {
		return ""
	}
	target := u.Query().Get("q")
	if target == "" {
		target = u.Query().Get("url")
	}
	return target
}

func (r *WebResolver) isSocialHost(host string) bool {
	host = strings.ToLower(host)
	for _, d := range r.opts.SocialDomains {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}
