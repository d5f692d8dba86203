package search

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/model"
)

type stubRenderer struct {
	html string
	err  error

	gotURL  string
	gotOpts fetch.RenderOptions
}

func (s *stubRenderer) Render(_ context.Context, url string, opts fetch.RenderOptions) (*fetch.RenderedPage, error) {
	s.gotURL = url
	s.gotOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return &fetch.RenderedPage{HTML: s.html, FinalURL: url}, nil
}

func TestDirectoryResolver_ExtractsPlaceLinks(t *testing.T) {
	stub := &stubRenderer{html: `<div role="feed">
<a href="/maps/place/Acme+Bakery/data=1">Acme Bakery</a>
<a href="https://www.google.com/maps/place/Other+Bakery">Other Bakery</a>
<a href="/maps/place/Acme+Bakery/data=1">Acme Bakery again</a>
<a href="/search?q=unrelated">unrelated</a>
</div>`}

	r := NewDirectoryResolver(stub, 3, time.Second, Options{})
	got := r.Resolve(context.Background(), "bakery in springfield")

	require.Len(t, got, 2)
	assert.Equal(t, "https://www.google.com/maps/place/Acme+Bakery/data=1", got[0].URL)
	assert.Equal(t, "https://www.google.com/maps/place/Other+Bakery", got[1].URL)
	for _, c := range got {
		assert.Equal(t, model.ProvenanceDirectory, c.Provenance)
	}
}

func TestDirectoryResolver_RenderParameters(t *testing.T) {
	stub := &stubRenderer{html: `<html></html>`}
	r := NewDirectoryResolver(stub, 3, time.Second, Options{})
	r.Resolve(context.Background(), "bakery in springfield")

	assert.Equal(t, "https://www.google.com/maps/search/bakery+in+springfield", stub.gotURL)
	assert.Equal(t, 3, stub.gotOpts.Scrolls)
	assert.Equal(t, `div[role="feed"]`, stub.gotOpts.ScrollSelector)
	assert.Equal(t, time.Second, stub.gotOpts.ScrollSettle)
}

func TestDirectoryResolver_CapsAtMaxResults(t *testing.T) {
	html := `<div role="feed">`
	for i := 0; i < 15; i++ {
		html += `<a href="/maps/place/biz` + string(rune('a'+i)) + `">biz</a>`
	}
	html += `</div>`

	r := NewDirectoryResolver(&stubRenderer{html: html}, 3, time.Second, Options{})
	got := r.Resolve(context.Background(), "many results")
	assert.Len(t, got, 10)
}

func TestDirectoryResolver_RenderFailureYieldsEmpty(t *testing.T) {
	r := NewDirectoryResolver(&stubRenderer{err: eris.New("timeout")}, 3, time.Second, Options{})
	assert.Empty(t, r.Resolve(context.Background(), "bakery"))
}

func TestWebResolver_UnwrapsRedirectLinks(t *testing.T) {
	stub := &stubRenderer{html: `<body>
<a href="/url?q=https%3A%2F%2Facmebakery.com%2F&sa=U">Acme Bakery</a>
<a href="https://springfieldcafe.com/">Springfield Cafe</a>
<a href="/url?q=https%3A%2F%2Fwww.facebook.com%2Facme">Acme on FB</a>
<a href="/search?q=related">related searches</a>
</body>`}

	r := NewWebResolver(stub, Options{})
	got := r.Resolve(context.Background(), "bakery in springfield")

	require.Len(t, got, 2)
	assert.Equal(t, "https://acmebakery.com/", got[0].URL)
	assert.Equal(t, "https://springfieldcafe.com/", got[1].URL)
	for _, c := range got {
		assert.Equal(t, model.ProvenanceSearch, c.Provenance)
	}
}

func TestWebResolver_QueryIsEscaped(t *testing.T) {
	stub := &stubRenderer{html: `<html></html>`}
	NewWebResolver(stub, Options{}).Resolve(context.Background(), "bakery & cafe")
	assert.Equal(t, "https://www.google.com/search?q=bakery+%26+cafe", stub.gotURL)
	assert.Zero(t, stub.gotOpts.Scrolls)
}

func TestWebResolver_FiltersSocialHosts(t *testing.T) {
	stub := &stubRenderer{html: `<body>
<a href="https://www.linkedin.com/company/acme">li</a>
<a href="https://en.wikipedia.org/wiki/Bakery">wiki</a>
<a href="https://acmebakery.com/">site</a>
</body>`}

	got := NewWebResolver(stub, Options{}).Resolve(context.Background(), "bakery")
	require.Len(t, got, 1)
	assert.Equal(t, "https://acmebakery.com/", got[0].URL)
}

func TestWebResolver_EmptyResultsIsNotAnError(t *testing.T) {
	got := NewWebResolver(&stubRenderer{html: `<html><body></body></html>`}, Options{}).
		Resolve(context.Background(), "no such business anywhere")
	assert.Empty(t, got)
}

func TestUnwrapRedirect(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"wrapped", "/url?q=https%3A%2F%2Facme.com%2F&sa=U", "https://acme.com/"},
		{"url param", "/url?url=https%3A%2F%2Facme.com%2F", "https://acme.com/"},
		{"plain absolute", "https://acme.com/", ""},
		{"other path", "/search?q=acme", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unwrapRedirect(tt.href))
		})
	}
}
