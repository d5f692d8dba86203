package model

import "time"

// SearchMode selects the upstream search surface used to find candidates.
type SearchMode string

const (
	// ModeDirectory resolves candidates from a map-style business directory.
	ModeDirectory SearchMode = "directory"
	// ModeWebSearch resolves candidates from general web search results.
	ModeWebSearch SearchMode = "web_search"
)

// Provenance tags where a candidate URL came from.
type Provenance string

const (
	ProvenanceDirectory   Provenance = "directory_result"
	ProvenanceSearch      Provenance = "search_result"
	ProvenanceContactPage Provenance = "contact_page"
)

// CandidateURL is a URL proposed for fetching, with its origin recorded.
type CandidateURL struct {
	URL        string     `json:"url"`
	Provenance Provenance `json:"provenance"`
}

// ContactRecord is the contact information mined for a single business.
// Fields are empty strings when the corresponding cascade found nothing.
type ContactRecord struct {
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Website      string `json:"website"`
	SourceURL    string `json:"source_url"`
}

// HasContact reports whether the record carries at least one of
// email, phone, or website. Records without any are dropped.
func (r ContactRecord) HasContact() bool {
	return r.Email != "" || r.Phone != "" || r.Website != ""
}

// ResolveState is the terminal state of a single candidate's pass
// through the pipeline.
type ResolveState string

const (
	// StateResolved means an email was found.
	StateResolved ResolveState = "resolved"
	// StatePartial means some fields were found but no email.
	StatePartial ResolveState = "partial"
	// StateFailed means no usable field was recovered.
	StateFailed ResolveState = "failed"
)

// SearchResponse is the envelope handed to callers of a search run.
type SearchResponse struct {
	Status       string          `json:"status"`
	SearchTerm   string          `json:"search_term"`
	ResultsCount int             `json:"results_count"`
	Data         []ContactRecord `json:"data"`
	Timestamp    time.Time       `json:"timestamp"`
	RunID        string          `json:"run_id,omitempty"`
	Message      string          `json:"message,omitempty"`
}
