// Package extract mines contact details out of HTML documents using an
// ordered cascade of heuristics. Each tier is attempted only when the
// prior tier found nothing; the first match within a tier wins.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

// scopedRegionSelector identifies HTML subtrees likely to carry contact
// information (footer and contact/info labeled blocks).
const scopedRegionSelector = "footer, [class*='contact'], [id*='contact'], [class*='footer'], [class*='info'], [id*='info']"

// Options configures an Extractor. Zero-value fields fall back to the
// tuned defaults.
type Options struct {
	DenyDomains      []string
	BusinessPrefixes []string
	SocialDomains    []string
}

// DefaultDenyDomains are placeholder/template/analytics domains that
// produce false-positive email matches.
var DefaultDenyDomains = []string{
	"example.com", "test.com", "domain.com", "email.com",
	"yourdomain.com", "company.com", "wixpress.com", "sentry.io",
	"godaddy.com", "2x.png", "3x.png", "w3.org", "schema.org",
}

// DefaultBusinessPrefixes are local parts that usually belong to a
// business inbox rather than an individual.
var DefaultBusinessPrefixes = []string{
	"info", "contact", "hello", "support", "mail", "inquiry", "sales", "admin",
}

// DefaultSocialDomains are hosts that never count as a business's own
// website.
var DefaultSocialDomains = []string{
	"google.", "facebook.", "instagram.", "twitter.", "youtube.",
	"linkedin.", "wikipedia.", "maps.",
}

// Extractor runs the contact extraction cascades.
type Extractor struct {
	denyDomains      []string
	businessPrefixes []string
	socialDomains    []string
}

// New creates an Extractor with the given options.
func New(opts Options) *Extractor {
	e := &Extractor{
		denyDomains:      opts.DenyDomains,
		businessPrefixes: opts.BusinessPrefixes,
		socialDomains:    opts.SocialDomains,
	}
	if len(e.denyDomains) == 0 {
		e.denyDomains = DefaultDenyDomains
	}
	if len(e.businessPrefixes) == 0 {
		e.businessPrefixes = DefaultBusinessPrefixes
	}
	if len(e.socialDomains) == 0 {
		e.socialDomains = DefaultSocialDomains
	}
	return e
}

// Extract produces a best-effort contact outcome for one document.
// A document that matches no heuristic yields an outcome with empty
// fields; parse failures are swallowed the same way.
func (e *Extractor) Extract(html, baseURL string) model.ExtractionOutcome {
	var out model.ExtractionOutcome

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		zap.L().Debug("extract: unparseable document", zap.String("url", baseURL), zap.Error(err))
		return out
	}

	out.BusinessName = e.extractName(doc)
	out.Email, out.EmailMethod = e.extractEmail(doc, html)
	out.Phone, out.PhoneMethod = e.extractPhone(doc)
	out.Website = e.extractWebsite(doc)

	return out
}

// extractName takes the first match in priority order: primary heading,
// heading/title-like classed element, explicit itemprop=name.
func (e *Extractor) extractName(doc *goquery.Document) string {
	selectors := []string{
		"h1",
		"[class*='title'], [class*='name'], [class*='heading']",
		"[itemprop='name']",
	}
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// extractWebsite returns the first absolute HTTP(S) anchor whose host is
// not a social/search domain.
func (e *Extractor) extractWebsite(doc *goquery.Document) string {
	var website string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return true
		}
		if e.isSocialHost(u.Host) {
			return true
		}
		website = u.String()
		return false
	})
	return website
}

func (e *Extractor) isSocialHost(host string) bool {
	host = strings.ToLower(host)
	for _, d := range e.socialDomains {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}

// denied reports whether an email's domain sits on the denylist.
func (e *Extractor) denied(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return true
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range e.denyDomains {
		if strings.Contains(domain, d) {
			return true
		}
	}
	return false
}
