// Package discover proposes same-domain "likely contact" pages to probe
// when a primary page yields no email.
package discover

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// maxLinks bounds the number of secondary pages proposed per document.
const maxLinks = 3

// DefaultKeywords mark an anchor as a likely contact page when found in
// its visible text or target.
var DefaultKeywords = []string{
	"contact", "about", "reach", "get-in-touch", "connect", "support",
}

// Discoverer scans documents for contact-page links.
type Discoverer struct {
	keywords []string
}

// New creates a Discoverer. Empty keywords fall back to the defaults.
func New(keywords []string) *Discoverer {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	return &Discoverer{keywords: keywords}
}

// Discover returns up to 3 deduplicated same-host contact-page URLs,
// in first-seen order. Relative targets are resolved against baseURL.
// Failed scans yield an empty list, never an error.
func (d *Discoverer) Discover(html, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		zap.L().Debug("discover: unusable base url", zap.String("base", baseURL))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "javascript:") {
			return true
		}

		if !d.matches(s.Text(), href) {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		resolved := base.ResolveReference(ref)

		// Same-host targets only.
		if resolved.Host != base.Host {
			return true
		}
		resolved.Fragment = ""

		normalized := resolved.String()
		if seen[normalized] {
			return true
		}
		seen[normalized] = true
		links = append(links, normalized)

		return len(links) < maxLinks
	})

	return links
}

// matches checks the anchor's visible text and target against the
// keyword set, case-insensitively.
func (d *Discoverer) matches(text, href string) bool {
	text = strings.ToLower(text)
	href = strings.ToLower(href)
	for _, kw := range d.keywords {
		if strings.Contains(text, kw) || strings.Contains(href, kw) {
			return true
		}
	}
	return false
}
