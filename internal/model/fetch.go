package model

// FetchStrategy identifies how a page was (or should be) retrieved.
type FetchStrategy string

const (
	// StrategyFast is a plain HTTP GET with a browser user-agent.
	StrategyFast FetchStrategy = "fast"
	// StrategyRendered executes page scripts in a browser and scrolls
	// once to trigger lazy-loaded content before capturing the DOM.
	StrategyRendered FetchStrategy = "rendered"
)

// FetchResult holds the outcome of a single fetch. It is owned by the
// fetch call that produced it and never shared across fetches.
type FetchResult struct {
	HTML      string
	FinalURL  string
	Strategy  FetchStrategy
	Succeeded bool
}
