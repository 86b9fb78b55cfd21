package urlfilter

import (
	"net/url"
	"testing"

	"emailscope/internal/testutil"
)

func TestURLNormalizer_Normalize(t *testing.T) {
	normalizer := NewURLNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercase scheme and host", input: "HTTPS://EXAMPLE.COM/Path", expected: "https://example.com/Path"},
		{name: "remove default port 80", input: "http://example.com:80/path", expected: "http://example.com/path"},
		{name: "remove default port 443", input: "https://example.com:443/path", expected: "https://example.com/path"},
		{name: "keep non-default port", input: "http://127.0.0.1:8080/path", expected: "http://127.0.0.1:8080/path"},
		{name: "remove fragment", input: "https://example.com/contact#form", expected: "https://example.com/contact"},
		{name: "drop query", input: "https://example.com/team?utm_source=x&page=2", expected: "https://example.com/team"},
		{name: "trailing slash removed", input: "https://example.com/about/", expected: "https://example.com/about"},
		{name: "root keeps slash", input: "https://example.com", expected: "https://example.com/"},
		{name: "dot segments cleaned", input: "https://example.com/a/../b/./c", expected: "https://example.com/b/c"},
		{name: "double slashes collapsed", input: "https://example.com//team//", expected: "https://example.com/team"},
		{name: "userinfo removed", input: "https://user:pw@example.com/x", expected: "https://example.com/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizer.Normalize(tt.input)
			testutil.AssertNoError(t, err, "normalize")
			testutil.AssertEqual(t, got, tt.expected, "canonical")
		})
	}
}

func TestURLNormalizer_Normalize_Errors(t *testing.T) {
	normalizer := NewURLNormalizer()

	for _, input := range []string{"mailto:jane@example.com", "ftp://example.com/file", "/relative/path", "://broken"} {
		t.Run(input, func(t *testing.T) {
			_, err := normalizer.Normalize(input)
			testutil.AssertError(t, err, "should reject")
		})
	}
}

func TestURLNormalizer_KeepQuery(t *testing.T) {
	normalizer := &URLNormalizer{KeepQuery: true}

	got, err := normalizer.Normalize("https://example.com/p?z=3&a=1")
	testutil.AssertNoError(t, err, "normalize")
	testutil.AssertEqual(t, got, "https://example.com/p?a=1&z=3", "sorted query kept")
}

func TestURLNormalizer_Resolve(t *testing.T) {
	normalizer := NewURLNormalizer()
	base, _ := url.Parse("https://example.com/company/about")

	tests := []struct {
		name   string
		href   string
		want   string
		wantOK bool
	}{
		{name: "absolute path", href: "/contact#form", want: "https://example.com/contact", wantOK: true},
		{name: "relative path", href: "team/", want: "https://example.com/company/team", wantOK: true},
		{name: "parent path", href: "../careers", want: "https://example.com/careers", wantOK: true},
		{name: "absolute url", href: "https://Other.org/contact", want: "https://other.org/contact", wantOK: true},
		{name: "protocol relative", href: "//example.com/staff", want: "https://example.com/staff", wantOK: true},
		{name: "mailto", href: "mailto:jane@example.com", wantOK: false},
		{name: "tel", href: "tel:+123", wantOK: false},
		{name: "javascript", href: "javascript:void(0)", wantOK: false},
		{name: "fragment only", href: "#top", wantOK: false},
		{name: "empty", href: "  ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizer.Resolve(base, tt.href)
			testutil.AssertEqual(t, ok, tt.wantOK, "ok")
			if tt.wantOK {
				testutil.AssertEqual(t, got, tt.want, "resolved")
			}
		})
	}
}
