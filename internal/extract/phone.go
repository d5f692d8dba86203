package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/leadscout/internal/model"
)

// phonePatterns are tried in order against scoped-region text. Each is
// region-specific; the first non-empty match after stripping to digits
// wins.
var phonePatterns = []*regexp.Regexp{
	// 10-digit mobile with optional country-code prefix.
	regexp.MustCompile(`(?:\+?91[\s\-]?)?[6-9]\d{9}`),
	// Explicit country code followed by 10 digits.
	regexp.MustCompile(`\+\d{2}[\s\-]?\d{10}`),
	// Separator-delimited 10-digit number.
	regexp.MustCompile(`\d{3}[\-.\s]\d{3}[\-.\s]\d{4}`),
}

var nonDigitRe = regexp.MustCompile(`\D`)

// extractPhone runs the phone cascade: tel links first, then scoped
// regex patterns. No match leaves the phone empty.
func (e *Extractor) extractPhone(doc *goquery.Document) (string, model.ExtractMethod) {
	if phone := phoneFromTelLinks(doc); phone != "" {
		return phone, model.MethodTelLink
	}
	if phone := phoneFromScopedRegions(doc); phone != "" {
		return phone, model.MethodScopedRegion
	}
	return "", model.MethodNone
}

// phoneFromTelLinks strips tel link targets to digits and requires at
// least 10 of them.
func phoneFromTelLinks(doc *goquery.Document) string {
	var phone string
	doc.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		digits := nonDigitRe.ReplaceAllString(strings.TrimPrefix(href, "tel:"), "")
		if len(digits) < 10 {
			return true
		}
		phone = digits
		return false
	})
	return phone
}

// phoneFromScopedRegions tries the ordered pattern set against text in
// contact/footer/info labeled subtrees.
func phoneFromScopedRegions(doc *goquery.Document) string {
	var phone string
	doc.Find(scopedRegionSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		for _, re := range phonePatterns {
			m := re.FindString(text)
			if m == "" {
				continue
			}
			digits := nonDigitRe.ReplaceAllString(m, "")
			if digits == "" {
				continue
			}
			phone = digits
			return false
		}
		return true
	})
	return phone
}
