// internal/platform/validator/validator_test.go
package validator

import (
	"strings"
	"testing"

	"emailscope/internal/testutil"
)

func TestIsDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid domain", "example.com", true},
		{"valid subdomain", "test.example.com", true},
		{"empty string", "", false},
		{"too long", strings.Repeat("a", 300), false},
		{"ip address", "192.168.1.1", false},
		{"invalid chars", "exam ple.com", false},
		{"starts with hyphen", "-example.com", false},
		{"ends with hyphen", "example-.com", false},
		{"single label", "localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, IsDomain(tt.input), tt.expected, "domain validation")
		})
	}
}

func TestCanonicalDomain(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "example.com", want: "example.com"},
		{name: "uppercase and spaces", input: "  Example.COM ", want: "example.com"},
		{name: "www stripped", input: "www.example.com", want: "example.com"},
		{name: "trailing dot", input: "example.com.", want: "example.com"},
		{name: "url input", input: "https://www.example.com/contact?x=1", want: "example.com"},
		{name: "path without scheme", input: "example.com/about", want: "example.com"},
		{name: "port stripped", input: "example.com:8080", want: "example.com"},
		{name: "idn to punycode", input: "bücher.de", want: "xn--bcher-kva.de"},
		{name: "multi-label suffix", input: "shop.example.co.uk", want: "shop.example.co.uk"},
		{name: "empty", input: "", wantErr: true},
		{name: "single label", input: "localhost", wantErr: true},
		{name: "ip address", input: "10.0.0.1", wantErr: true},
		{name: "public suffix only", input: "co.uk", wantErr: true},
		{name: "garbage", input: "exa mple.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalDomain(tt.input)
			if tt.wantErr {
				testutil.AssertError(t, err, "should reject "+tt.input)
				return
			}
			testutil.AssertNoError(t, err, "should accept "+tt.input)
			testutil.AssertEqual(t, got, tt.want, "canonical form")
		})
	}
}

func TestCanonicalDomain_Fixtures(t *testing.T) {
	for _, d := range testutil.FixtureDomains {
		if _, err := CanonicalDomain(d); err != nil {
			t.Errorf("fixture domain %q rejected: %v", d, err)
		}
	}
	for _, d := range testutil.FixtureInvalidDomains {
		if _, err := CanonicalDomain(d); err == nil {
			t.Errorf("fixture invalid domain %q accepted", d)
		}
	}
}

func TestInDomain(t *testing.T) {
	tests := []struct {
		name       string
		host       string
		subdomains bool
		expected   bool
	}{
		{"same host", "example.com", false, true},
		{"www host", "WWW.example.com", false, true},
		{"host with port", "example.com:443", false, true},
		{"subdomain allowed", "careers.example.com", true, true},
		{"subdomain not allowed", "careers.example.com", false, false},
		{"other domain", "example.org", true, false},
		{"suffix trick", "notexample.com", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, InDomain(tt.host, "example.com", tt.subdomains), tt.expected, "in domain")
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	testutil.AssertEqual(t, RegistrableDomain("mail.example.co.uk"), "example.co.uk", "etld+1")
	testutil.AssertEqual(t, RegistrableDomain("WWW.Example.com."), "example.com", "normalized")
}

func TestIsEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"simple", "jane.doe@example.com", true},
		{"plus tag", "jane+news@example.com", true},
		{"subdomain", "ops@mail.example.com", true},
		{"no at", "jane.example.com", false},
		{"no tld", "jane@example", false},
		{"two at", "a@b@example.com", false},
		{"empty local", "@example.com", false},
		{"space", "jane doe@example.com", false},
		{"local too long", strings.Repeat("a", 65) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, IsEmail(tt.input), tt.expected, "email validation")
		})
	}
}

func TestSplitEmail(t *testing.T) {
	local, domain, ok := SplitEmail("jane.doe@example.com")
	testutil.AssertTrue(t, ok, "split ok")
	testutil.AssertEqual(t, local, "jane.doe", "local")
	testutil.AssertEqual(t, domain, "example.com", "domain")

	_, _, ok = SplitEmail("broken")
	testutil.AssertFalse(t, ok, "no at sign")
}

func TestIsURL(t *testing.T) {
	testutil.AssertTrue(t, IsURL("https://example.com/contact"), "https url")
	testutil.AssertTrue(t, IsURL("http://example.com"), "http url")
	testutil.AssertFalse(t, IsURL("mailto:jane@example.com"), "mailto is not crawlable")
	testutil.AssertFalse(t, IsURL("/relative"), "relative")
	testutil.AssertFalse(t, IsURL(""), "empty")
}

func TestIsPort(t *testing.T) {
	testutil.AssertTrue(t, IsPort("25"), "smtp")
	testutil.AssertFalse(t, IsPort("0"), "zero")
	testutil.AssertFalse(t, IsPort("70000"), "too large")
	testutil.AssertFalse(t, IsPort("abc"), "not a number")
}

func TestStruct(t *testing.T) {
	type request struct {
		Domain   string `validate:"required,domainname"`
		MaxPages int    `validate:"gte=1,lte=500"`
	}

	t.Run("valid", func(t *testing.T) {
		testutil.AssertNoError(t, Struct(request{Domain: "example.com", MaxPages: 10}), "valid request")
	})

	t.Run("missing domain", func(t *testing.T) {
		err := Struct(request{MaxPages: 10})
		testutil.AssertError(t, err, "missing domain")
		testutil.AssertContains(t, err.Error(), "domain is required", "message")
	})

	t.Run("bad domain and range", func(t *testing.T) {
		err := Struct(request{Domain: "localhost", MaxPages: 900})
		testutil.AssertError(t, err, "invalid request")
		testutil.AssertContains(t, err.Error(), "domain must be a registrable domain", "domain message")
		testutil.AssertContains(t, err.Error(), "maxpages must be at most 500", "range message")
	})
}
