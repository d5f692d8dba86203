package search

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/model"
)

const (
	directorySearchBase = "https://www.google.com/maps/search/"
	directoryOrigin     = "https://www.google.com"
	// directoryFeedSelector is the scrollable results feed on a maps
	// search page.
	directoryFeedSelector = `div[role="feed"]`
)

// DirectoryResolver finds business detail pages on a map-style
// directory. The results page is rendered and scrolled several times to
// trigger additional result loading.
type DirectoryResolver struct {
	renderer     fetch.Renderer
	opts         Options
	scrolls      int
	scrollSettle time.Duration
}

// NewDirectoryResolver creates a DirectoryResolver.
func NewDirectoryResolver(renderer fetch.Renderer, scrolls int, scrollSettle time.Duration, opts Options) *DirectoryResolver {
	opts.applyDefaults()
	if scrolls == 0 {
		scrolls = 3
	}
	if scrollSettle == 0 {
		scrollSettle = time.Second
	}
	return &DirectoryResolver{
		renderer:     renderer,
		opts:         opts,
		scrolls:      scrolls,
		scrollSettle: scrollSettle,
	}
}

func (r *DirectoryResolver) Mode() model.SearchMode { return model.ModeDirectory }

// Resolve renders the directory search page for the query and extracts
// up to MaxResults unique result-detail links.
func (r *DirectoryResolver) Resolve(ctx context.Context, query string) []model.CandidateURL {
	searchURL := directorySearchBase + strings.ReplaceAll(strings.TrimSpace(query), " ", "+")

	page, err := r.renderer.Render(ctx, searchURL, fetch.RenderOptions{
		Scrolls:        r.scrolls,
		ScrollSelector: directoryFeedSelector,
		ScrollSettle:   r.scrollSettle,
	})
	if err != nil {
		zap.L().Warn("search: directory page render failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}

	links := extractDirectoryLinks(page.HTML)
	links = dedupe(links, r.opts.MaxResults)

	zap.L().Info("search: directory results",
		zap.String("query", query),
		zap.Int("candidates", len(links)),
	)

	candidates := make([]model.CandidateURL, 0, len(links))
	for _, u := range links {
		candidates = append(candidates, model.CandidateURL{URL: u, Provenance: model.ProvenanceDirectory})
	}
	return candidates
}

// extractDirectoryLinks pulls result-detail hrefs out of the rendered
// feed, resolving root-relative targets against the directory origin.
func extractDirectoryLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find(`a[href*="/maps/place/"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = directoryOrigin + href
		}
		if !strings.HasPrefix(href, "http") {
			return
		}
		links = append(links, href)
	})
	return links
}
