// Package process validates, canonicalizes, and deduplicates contact
// records before they are handed to the response layer.
package process

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

var (
	validEmailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	nonDigitRe   = regexp.MustCompile(`\D`)
)

// Normalizer cleans raw pipeline output.
type Normalizer struct {
	defaultCountryCode string
	denyDomains        []string
}

// NewNormalizer creates a Normalizer. countryCode is the calling code
// prefixed to bare 10-digit numbers (default "91").
func NewNormalizer(countryCode string, denyDomains []string) *Normalizer {
	if countryCode == "" {
		countryCode = "91"
	}
	return &Normalizer{
		defaultCountryCode: countryCode,
		denyDomains:        denyDomains,
	}
}

// Process cleans each record, deduplicates on the (name, email, phone)
// key, and drops records without any contact field. First occurrence of
// a key wins.
func (n *Normalizer) Process(records []model.ContactRecord) []model.ContactRecord {
	seen := make(map[[3]string]bool, len(records))
	var out []model.ContactRecord

	for _, rec := range records {
		clean := n.Clean(rec)

		key := [3]string{strings.ToLower(clean.BusinessName), clean.Email, clean.Phone}
		if key == [3]string{} {
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		if !clean.HasContact() {
			continue
		}
		out = append(out, clean)
	}

	zap.L().Debug("process: normalized records",
		zap.Int("raw", len(records)),
		zap.Int("kept", len(out)),
	)
	return out
}

// Clean normalizes a single record. An invalid or denylisted email is
// nulled rather than failing the record; the other fields survive.
func (n *Normalizer) Clean(rec model.ContactRecord) model.ContactRecord {
	rec.BusinessName = strings.TrimSpace(rec.BusinessName)
	rec.Website = strings.TrimSpace(rec.Website)

	email := strings.ToLower(strings.TrimSpace(rec.Email))
	if !n.ValidEmail(email) {
		email = ""
	}
	rec.Email = email

	rec.Phone = n.NormalizePhone(rec.Phone)
	return rec
}

// ValidEmail checks the standard local-part/domain/TLD shape and the
// domain denylist.
func (n *Normalizer) ValidEmail(email string) bool {
	if email == "" || !validEmailRe.MatchString(email) {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	for _, d := range n.denyDomains {
		if strings.Contains(domain, d) {
			return false
		}
	}
	return true
}

// NormalizePhone strips to digits and reformats as +cc-number. Numbers
// shorter than 10 digits pass through unchanged as a degraded value.
// The operation is idempotent.
func (n *Normalizer) NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}
	digits := nonDigitRe.ReplaceAllString(phone, "")

	switch {
	case len(digits) == 10:
		return "+" + n.defaultCountryCode + "-" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, n.defaultCountryCode):
		return "+" + digits[:2] + "-" + digits[2:]
	case len(digits) > 10:
		return "+" + digits[:2] + "-" + digits[2:]
	default:
		return phone
	}
}

// Envelope wraps finalized records in the response structure handed to
// external callers.
func Envelope(query string, records []model.ContactRecord) model.SearchResponse {
	resp := model.SearchResponse{
		Status:       "success",
		SearchTerm:   query,
		ResultsCount: len(records),
		Data:         records,
		Timestamp:    time.Now().UTC(),
		RunID:        uuid.New().String(),
	}
	if len(records) == 0 {
		resp.Data = []model.ContactRecord{}
		resp.Message = "No results found for the given search term"
	}
	return resp
}
