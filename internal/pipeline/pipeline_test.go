package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/discover"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/process"
	"github.com/sells-group/leadscout/internal/search"
)

// fakeFetcher serves canned HTML per URL and strategy. Missing entries
// yield failed results, like a dead site.
type fakeFetcher struct {
	mu       sync.Mutex
	fast     map[string]string
	rendered map[string]string
	fetched  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, strategy model.FetchStrategy) *model.FetchResult {
	f.mu.Lock()
	f.fetched = append(f.fetched, string(strategy)+" "+url)
	f.mu.Unlock()

	pages := f.fast
	if strategy == model.StrategyRendered {
		pages = f.rendered
	}
	html, ok := pages[url]
	if !ok {
		return &model.FetchResult{FinalURL: url, Strategy: strategy}
	}
	return &model.FetchResult{HTML: html, FinalURL: url, Strategy: strategy, Succeeded: true}
}

type fakeResolver struct {
	mode       model.SearchMode
	candidates []model.CandidateURL
}

func (r *fakeResolver) Resolve(context.Context, string) []model.CandidateURL { return r.candidates }
func (r *fakeResolver) Mode() model.SearchMode                               { return r.mode }

func newService(f *fakeFetcher, resolvers ...search.Resolver) *Service {
	orch := New(
		f,
		extract.New(extract.Options{}),
		discover.New(nil),
		resolvers,
		nil,
		Options{},
	)
	return NewService(orch, process.NewNormalizer("91", extract.DefaultDenyDomains), nil)
}

func directoryCandidates(urls ...string) []model.CandidateURL {
	var out []model.CandidateURL
	for _, u := range urls {
		out = append(out, model.CandidateURL{URL: u, Provenance: model.ProvenanceDirectory})
	}
	return out
}

func searchCandidates(urls ...string) []model.CandidateURL {
	var out []model.CandidateURL
	for _, u := range urls {
		out = append(out, model.CandidateURL{URL: u, Provenance: model.ProvenanceSearch})
	}
	return out
}

func TestRun_DirectoryModeTwoResults(t *testing.T) {
	f := &fakeFetcher{
		rendered: map[string]string{
			"https://maps.example.com/place/a": `<h1>Bakery A</h1><footer>+91 9876543210</footer><a href="https://bakery-a.com/">site</a>`,
			"https://maps.example.com/place/b": `<h1>Bakery B</h1><a href="https://bakery-b.com/">site</a>`,
		},
		fast: map[string]string{
			"https://bakery-a.com/": `<a href="mailto:orders@bakery-a.com">mail</a>`,
			"https://bakery-b.com/": `<a href="mailto:hello@bakery-b.com">mail</a>`,
		},
	}
	svc := newService(f, &fakeResolver{
		mode:       model.ModeDirectory,
		candidates: directoryCandidates("https://maps.example.com/place/a", "https://maps.example.com/place/b"),
	})

	resp, err := svc.Run(context.Background(), "bakery in springfield", model.ModeDirectory)
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "orders@bakery-a.com", resp.Data[0].Email)
	assert.Equal(t, "Bakery A", resp.Data[0].BusinessName)
	assert.Equal(t, "+91-9876543210", resp.Data[0].Phone)
	assert.Equal(t, "https://bakery-a.com/", resp.Data[0].Website)
	assert.Equal(t, "hello@bakery-b.com", resp.Data[1].Email)
}

func TestRun_FooterEmailViaScopedTier(t *testing.T) {
	f := &fakeFetcher{
		fast: map[string]string{
			"https://bakery.com/": `<h1>Bakery</h1><footer>contact us at info@bakery.com</footer>`,
		},
	}
	svc := newService(f, &fakeResolver{
		mode:       model.ModeWebSearch,
		candidates: searchCandidates("https://bakery.com/"),
	})

	resp, err := svc.Run(context.Background(), "bakery", model.ModeWebSearch)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "info@bakery.com", resp.Data[0].Email)
}

func TestRun_RetinaSuffixNeverBecomesEmail(t *testing.T) {
	f := &fakeFetcher{
		fast: map[string]string{
			"https://bakery.com/": `<h1>Bakery</h1><footer>9876543210</footer><p>image@2x.png</p>`,
		},
	}
	svc := newService(f, &fakeResolver{
		mode:       model.ModeWebSearch,
		candidates: searchCandidates("https://bakery.com/"),
	})

	resp, err := svc.Run(context.Background(), "bakery", model.ModeWebSearch)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Empty(t, resp.Data[0].Email)
	assert.Equal(t, "+91-9876543210", resp.Data[0].Phone)
}

func TestRun_ZeroCandidatesIsSuccess(t *testing.T) {
	svc := newService(&fakeFetcher{}, &fakeResolver{mode: model.ModeWebSearch})

	resp, err := svc.Run(context.Background(), "no such business", model.ModeWebSearch)
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Zero(t, resp.ResultsCount)
	assert.NotNil(t, resp.Data)
}

func TestRun_EmptyQueryRejected(t *testing.T) {
	svc := newService(&fakeFetcher{}, &fakeResolver{mode: model.ModeWebSearch})
	_, err := svc.Run(context.Background(), "   ", model.ModeWebSearch)
	assert.Error(t, err)
}

func TestRun_UnknownModeRejected(t *testing.T) {
	svc := newService(&fakeFetcher{}, &fakeResolver{mode: model.ModeWebSearch})
	_, err := svc.Run(context.Background(), "bakery", model.SearchMode("carrier_pigeon"))
	assert.Error(t, err)
}

func TestProcessCandidate_RenderedRetryFindsLazyEmail(t *testing.T) {
	f := &fakeFetcher{
		fast: map[string]string{
			"https://bakery.com/": `<h1>Bakery</h1><p>nothing here yet</p>`,
		},
		rendered: map[string]string{
			"https://bakery.com/": `<h1>Bakery</h1><a href="mailto:info@bakery.com">mail</a>`,
		},
	}
	orch := New(f, extract.New(extract.Options{}), discover.New(nil), nil, nil, Options{})

	rec, state := orch.processCandidate(context.Background(), model.CandidateURL{
		URL: "https://bakery.com/", Provenance: model.ProvenanceSearch,
	})
	assert.Equal(t, model.StateResolved, state)
	assert.Equal(t, "info@bakery.com", rec.Email)
}

func TestProcessCandidate_SecondaryPageProbing(t *testing.T) {
	home := `<h1>Bakery</h1>
<a href="/contact">Contact</a>
<a href="/about">About</a>
<a href="/support">Support</a>`
	f := &fakeFetcher{
		fast: map[string]string{"https://bakery.com/": home},
		rendered: map[string]string{
			"https://bakery.com/":        home,
			"https://bakery.com/contact": `<footer>9876543210</footer>`,
			"https://bakery.com/about":   `<a href="mailto:info@bakery.com">mail</a>`,
			"https://bakery.com/support": `<a href="mailto:late@bakery.com">mail</a>`,
		},
	}
	orch := New(f, extract.New(extract.Options{}), discover.New(nil), nil, nil, Options{})

	rec, state := orch.processCandidate(context.Background(), model.CandidateURL{
		URL: "https://bakery.com/", Provenance: model.ProvenanceSearch,
	})
	assert.Equal(t, model.StateResolved, state)
	assert.Equal(t, "info@bakery.com", rec.Email)
	// Phone backfilled from the first probed page.
	assert.Equal(t, "9876543210", rec.Phone)
	// Probing stopped at the first email: the third page was never hit.
	assert.NotContains(t, f.fetched, "rendered https://bakery.com/support")
}

func TestProcessCandidate_ProbingCappedAtTwoPages(t *testing.T) {
	home := `<a href="/contact">Contact</a><a href="/about">About</a><a href="/connect">Connect</a>`
	f := &fakeFetcher{
		fast:     map[string]string{"https://bakery.com/": home},
		rendered: map[string]string{"https://bakery.com/": home},
	}
	orch := New(f, extract.New(extract.Options{}), discover.New(nil), nil, nil, Options{})

	_, _ = orch.processCandidate(context.Background(), model.CandidateURL{
		URL: "https://bakery.com/", Provenance: model.ProvenanceSearch,
	})
	assert.Contains(t, f.fetched, "rendered https://bakery.com/contact")
	assert.Contains(t, f.fetched, "rendered https://bakery.com/about")
	assert.NotContains(t, f.fetched, "rendered https://bakery.com/connect")
}

func TestProcessCandidate_DirectoryWebsitePhoneWins(t *testing.T) {
	f := &fakeFetcher{
		rendered: map[string]string{
			"https://maps.example.com/place/a": `<h1>Bakery</h1><footer>1112223333</footer><a href="https://bakery.com/">site</a>`,
		},
		fast: map[string]string{
			"https://bakery.com/": `<a href="mailto:info@bakery.com">mail</a><footer>9876543210</footer>`,
		},
	}
	orch := New(f, extract.New(extract.Options{}), discover.New(nil), nil, nil, Options{})

	rec, _ := orch.processCandidate(context.Background(), model.CandidateURL{
		URL: "https://maps.example.com/place/a", Provenance: model.ProvenanceDirectory,
	})
	assert.Equal(t, "9876543210", rec.Phone)
	assert.Equal(t, "https://bakery.com/", rec.Website)
}

func TestProcessCandidate_DirectoryPhoneFallback(t *testing.T) {
	f := &fakeFetcher{
		rendered: map[string]string{
			"https://maps.example.com/place/a": `<h1>Bakery</h1><footer>1112223333</footer><a href="https://bakery.com/">site</a>`,
		},
		fast: map[string]string{
			"https://bakery.com/": `<a href="mailto:info@bakery.com">mail</a>`,
		},
	}
	orch := New(f, extract.New(extract.Options{}), discover.New(nil), nil, nil, Options{})

	rec, _ := orch.processCandidate(context.Background(), model.CandidateURL{
		URL: "https://maps.example.com/place/a", Provenance: model.ProvenanceDirectory,
	})
	assert.Equal(t, "1112223333", rec.Phone)
}

func TestProcessCandidate_AllFetchesFail(t *testing.T) {
	orch := New(&fakeFetcher{}, extract.New(extract.Options{}), discover.New(nil), nil, nil, Options{})

	rec, state := orch.processCandidate(context.Background(), model.CandidateURL{
		URL: "https://dead.example.com/", Provenance: model.ProvenanceSearch,
	})
	assert.Equal(t, model.StateFailed, state)
	assert.Equal(t, "https://dead.example.com/", rec.SourceURL)
	assert.False(t, rec.HasContact())
}

func TestCollect_OrderIndependentOfCompletion(t *testing.T) {
	fast := make(map[string]string)
	var cands []model.CandidateURL
	urls := []string{
		"https://a.example.com/", "https://b.example.com/",
		"https://c.example.com/", "https://d.example.com/",
	}
	for i, u := range urls {
		fast[u] = `<h1>Biz ` + string(rune('A'+i)) + `</h1><a href="mailto:info@` + u[8:len(u)-1] + `">m</a>`
		cands = append(cands, model.CandidateURL{URL: u, Provenance: model.ProvenanceSearch})
	}
	f := &fakeFetcher{fast: fast}
	orch := New(
		f,
		extract.New(extract.Options{}),
		discover.New(nil),
		[]search.Resolver{&fakeResolver{mode: model.ModeWebSearch, candidates: cands}},
		nil,
		Options{MaxConcurrent: 4},
	)

	records := orch.Collect(context.Background(), "anything", model.ModeWebSearch)
	require.Len(t, records, 4)
	for i, u := range urls {
		assert.Equal(t, u, records[i].SourceURL)
	}
}

func TestCollect_PacingSpacesCandidates(t *testing.T) {
	fast := map[string]string{
		"https://a.example.com/": `<a href="mailto:a@a.example.com">m</a>`,
		"https://b.example.com/": `<a href="mailto:b@b.example.com">m</a>`,
		"https://c.example.com/": `<a href="mailto:c@c.example.com">m</a>`,
	}
	orch := New(
		&fakeFetcher{fast: fast},
		extract.New(extract.Options{}),
		discover.New(nil),
		[]search.Resolver{&fakeResolver{mode: model.ModeWebSearch, candidates: searchCandidates(
			"https://a.example.com/", "https://b.example.com/", "https://c.example.com/",
		)}},
		nil,
		Options{CandidateDelay: 50 * time.Millisecond},
	)

	start := time.Now()
	records := orch.Collect(context.Background(), "anything", model.ModeWebSearch)
	require.Len(t, records, 3)
	// First candidate is immediate; the next two wait out the spacing.
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}
