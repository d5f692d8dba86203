// Package search resolves a free-text business query into a bounded,
// deduplicated list of candidate URLs using one of two upstream search
// surfaces: a map-style directory or general web search.
package search

import (
	"context"

	"github.com/sells-group/leadscout/internal/model"
)

// Resolver produces candidate URLs for a query. Zero qualifying links
// and failed page loads both yield an empty list; callers treat empty
// as "no results", never as a terminal failure.
type Resolver interface {
	Resolve(ctx context.Context, query string) []model.CandidateURL
	Mode() model.SearchMode
}

// Options configures a resolver.
type Options struct {
	// MaxResults caps the candidate list (default 10).
	MaxResults int
	// SocialDomains are host fragments excluded from web-search results.
	SocialDomains []string
}

func (o *Options) applyDefaults() {
	if o.MaxResults == 0 {
		o.MaxResults = 10
	}
	if len(o.SocialDomains) == 0 {
		o.SocialDomains = []string{
			"google.", "facebook.", "instagram.", "twitter.", "youtube.",
			"linkedin.", "wikipedia.", "maps.",
		}
	}
}

// dedupe keeps the first occurrence of each URL, preserving order, and
// truncates to max entries.
func dedupe(urls []string, max int) []string {
	seen := make(map[string]bool, len(urls))
	var out []string
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
		if len(out) == max {
			break
		}
	}
	return out
}
