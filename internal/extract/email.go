package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/leadscout/internal/model"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

	// obfuscatedRe matches lightly disguised addresses where bracket or
	// parenthesis noise (or a spelled-out "at"/"dot") stands in for the
	// "@" and "." separators, e.g. "info [at] bakery (dot) com" or
	// "info(@)bakery(.)com". Plain addresses deliberately do not match;
	// they belong to the document-scan tier.
	obfuscatedRe = regexp.MustCompile(`(?i)\b([A-Za-z0-9._%+\-]+)(?:\s*[\[\({]\s*(?:@|at)\s*[\]\)}]\s*|\s+at\s+)([A-Za-z0-9\-]+)(?:\s*[\[\({]\s*(?:\.|dot)\s*[\]\)}]\s*|\s+dot\s+)([A-Za-z]{2,})\b`)
)

// extractEmail runs the email cascade. Tiers, in order:
//
//	1. mailto links
//	2. data attributes carrying an address directly
//	3. regex over contact/footer/info scoped regions
//	4. obfuscated address pattern over the whole document
//	5. unscoped regex over the whole document, preferring business-
//	   prefixed local parts
//
// The first tier that yields anything wins; a page matching no tier
// leaves the email empty.
func (e *Extractor) extractEmail(doc *goquery.Document, html string) (string, model.ExtractMethod) {
	if email := e.emailFromMailto(doc); email != "" {
		return email, model.MethodMailtoLink
	}
	if email := e.emailFromDataAttrs(doc); email != "" {
		return email, model.MethodDataAttribute
	}
	if email := e.emailFromScopedRegions(doc); email != "" {
		return email, model.MethodScopedRegion
	}
	if email := e.emailFromObfuscated(html); email != "" {
		return email, model.MethodObfuscated
	}
	if email := e.emailFromDocument(html); email != "" {
		return email, model.MethodDocumentScan
	}
	return "", model.MethodNone
}

// emailFromMailto decodes the first usable address out of a mailto link.
func (e *Extractor) emailFromMailto(doc *goquery.Document) string {
	var email string
	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.Index(addr, "?"); i != -1 {
			addr = addr[:i]
		}
		if decoded, err := url.QueryUnescape(addr); err == nil {
			addr = decoded
		}
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" || !emailRe.MatchString(addr) || e.denied(addr) {
			return true
		}
		email = addr
		return false
	})
	return email
}

// emailFromDataAttrs checks attributes that carry an address directly.
func (e *Extractor) emailFromDataAttrs(doc *goquery.Document) string {
	var email string
	doc.Find("[data-email], [data-mail], [data-contact-email]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"data-email", "data-mail", "data-contact-email"} {
			val, ok := s.Attr(attr)
			if !ok {
				continue
			}
			val = strings.ToLower(strings.TrimSpace(val))
			if emailRe.MatchString(val) && !e.denied(val) {
				email = emailRe.FindString(val)
				return false
			}
		}
		return true
	})
	return email
}

// emailFromScopedRegions regex-matches text inside contact/footer/info
// labeled subtrees.
func (e *Extractor) emailFromScopedRegions(doc *goquery.Document) string {
	var email string
	doc.Find(scopedRegionSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, m := range emailRe.FindAllString(s.Text(), -1) {
			m = strings.ToLower(m)
			if !e.denied(m) {
				email = m
				return false
			}
		}
		return true
	})
	return email
}

// emailFromObfuscated reassembles addresses written with [at]/(dot)
// style noise.
func (e *Extractor) emailFromObfuscated(html string) string {
	for _, m := range obfuscatedRe.FindAllStringSubmatch(html, -1) {
		candidate := strings.ToLower(m[1] + "@" + m[2] + "." + m[3])
		if emailRe.MatchString(candidate) && !e.denied(candidate) {
			return candidate
		}
	}
	return ""
}

// emailFromDocument scans the raw document. Any match whose local part
// starts with a known business prefix is preferred over the first
// unfiltered match.
func (e *Extractor) emailFromDocument(html string) string {
	var first string
	for _, m := range emailRe.FindAllString(html, -1) {
		m = strings.ToLower(m)
		if e.denied(m) {
			continue
		}
		if first == "" {
			first = m
		}
		local := m[:strings.Index(m, "@")]
		for _, prefix := range e.businessPrefixes {
			if strings.HasPrefix(local, prefix) {
				return m
			}
		}
	}
	return first
}
