// internal/core/usecases/html_test.go
package usecases

import (
	"net/url"
	"strings"
	"testing"

	"emailscope/internal/platform/urlfilter"
	"emailscope/internal/testutil"
)

func TestParseHTML(t *testing.T) {
	base, _ := url.Parse("https://example.com/company/about")
	body := `<html><head><title>  About
		Example </title><style>.x{color:red}</style></head>
		<body>
			<script>var email = "bot@example.com";</script>
			<h1>Our team</h1>
			<div><span>John</span><span>Smith</span></div>
			<p>CEO</p>
			<a href="team">Team</a>
			<a href="/contact#form">Contact</a>
			<a href="/contact">Contact again</a>
			<a href="mailto:Jane.Doe@Example.com?subject=hi">Mail Jane</a>
			<a href="mailto:a@example.com,b@example.com">Both</a>
			<a href="javascript:void(0)">JS</a>
			<a href="tel:+34600000000">Call</a>
		</body></html>`

	parsed, err := parseHTML(base, []byte(body), urlfilter.NewURLNormalizer())
	testutil.AssertNoError(t, err, "parse")

	testutil.AssertEqual(t, parsed.title, "About Example", "title collapsed")

	var links []string
	for _, l := range parsed.links {
		links = append(links, l.URL)
	}
	testutil.AssertStrings(t, links, []string{
		"https://example.com/company/team",
		"https://example.com/contact",
	}, "links resolved, normalized and deduplicated")
	testutil.AssertEqual(t, parsed.links[0].Text, "Team", "anchor text")

	testutil.AssertStrings(t, parsed.mailto, []string{
		"Jane.Doe@Example.com",
		"a@example.com",
		"b@example.com",
	}, "mailto addresses")

	lines := strings.Split(parsed.text, "\n")
	testutil.AssertContains(t, lines, "John Smith", "inline elements separated by a space")
	testutil.AssertContains(t, lines, "CEO", "block elements on their own line")
	testutil.AssertFalse(t, strings.Contains(parsed.text, "bot@example.com"), "script content is not visible text")
	testutil.AssertFalse(t, strings.Contains(parsed.text, "color:red"), "style content is not visible text")
}

func TestParseHTML_BaseHref(t *testing.T) {
	base, _ := url.Parse("https://example.com/a/b")
	body := `<html><head><base href="https://example.com/root/"></head>
		<body><a href="contact">Contact</a></body></html>`

	parsed, err := parseHTML(base, []byte(body), urlfilter.NewURLNormalizer())
	testutil.AssertNoError(t, err, "parse")
	testutil.AssertEqual(t, len(parsed.links), 1, "links")
	testutil.AssertEqual(t, parsed.links[0].URL, "https://example.com/root/contact", "base href applies")
}

func TestNormalizeLines(t *testing.T) {
	got := normalizeLines("  a   b \n\n\t\n c\td  \n")
	testutil.AssertEqual(t, got, "a b\nc d", "collapsed lines")
}
