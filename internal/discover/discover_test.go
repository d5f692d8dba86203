package discover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscover_FindsContactLinks(t *testing.T) {
	html := `<body>
<a href="/contact">Contact</a>
<a href="/about-us">About</a>
<a href="/products">Products</a>
<a href="https://acme.com/support">Help</a>
</body>`

	links := New(nil).Discover(html, "https://acme.com/")
	assert.Equal(t, []string{
		"https://acme.com/contact",
		"https://acme.com/about-us",
		"https://acme.com/support",
	}, links)
}

func TestDiscover_MatchesVisibleText(t *testing.T) {
	html := `<a href="/pages/42">Get in touch and connect with us</a>`
	links := New(nil).Discover(html, "https://acme.com/")
	assert.Equal(t, []string{"https://acme.com/pages/42"}, links)
}

func TestDiscover_CapsAtThree(t *testing.T) {
	html := `<body>
<a href="/contact">Contact</a>
<a href="/about">About</a>
<a href="/support">Support</a>
<a href="/connect">Connect</a>
</body>`

	links := New(nil).Discover(html, "https://acme.com/")
	assert.Len(t, links, 3)
}

func TestDiscover_DedupesPreservingOrder(t *testing.T) {
	html := `<body>
<a href="/contact">Contact</a>
<a href="/contact">Contact (footer)</a>
<a href="/about">About</a>
</body>`

	links := New(nil).Discover(html, "https://acme.com/")
	assert.Equal(t, []string{
		"https://acme.com/contact",
		"https://acme.com/about",
	}, links)
}

func TestDiscover_SkipsCrossDomain(t *testing.T) {
	html := `<a href="https://other.com/contact">Contact</a>`
	links := New(nil).Discover(html, "https://acme.com/")
	assert.Empty(t, links)
}

func TestDiscover_SkipsNonNavigableTargets(t *testing.T) {
	html := `<body>
<a href="mailto:contact@acme.com">Contact</a>
<a href="tel:+919876543210">Contact phone</a>
<a href="#contact">Contact anchor</a>
<a href="javascript:openContact()">Contact popup</a>
</body>`

	links := New(nil).Discover(html, "https://acme.com/")
	assert.Empty(t, links)
}

func TestDiscover_NoQualifyingAnchors(t *testing.T) {
	links := New(nil).Discover(`<a href="/pricing">Pricing</a>`, "https://acme.com/")
	assert.Empty(t, links)
}

func TestDiscover_BadBaseURL(t *testing.T) {
	links := New(nil).Discover(`<a href="/contact">Contact</a>`, "::not a url::")
	assert.Empty(t, links)
}
