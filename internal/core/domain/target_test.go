// internal/core/domain/target_test.go
package domain

import (
	"errors"
	"testing"

	"emailscope/internal/testutil"
)

func TestNewTarget(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "plain domain", raw: "example.com", want: "example.com"},
		{name: "uppercase and www", raw: "WWW.Example.COM", want: "example.com"},
		{name: "url input", raw: "https://www.example.com/contact", want: "example.com"},
		{name: "trailing dot", raw: "example.com.", want: "example.com"},
		{name: "subdomain kept", raw: "test.example.com", want: "test.example.com"},
		{name: "multi-label suffix", raw: "acme.co.uk", want: "acme.co.uk"},
		{name: "idn to punycode", raw: "bücher.example", want: "xn--bcher-kva.example"},
		{name: "empty", raw: "  ", wantErr: ErrEmptyTarget},
		{name: "ip address", raw: "192.168.1.1", wantErr: ErrInvalidDomain},
		{name: "ipv6 address", raw: "2001:db8::1", wantErr: ErrInvalidDomain},
		{name: "single label", raw: "localhost", wantErr: ErrInvalidDomain},
		{name: "invalid characters", raw: "invalid_domain.com", wantErr: ErrInvalidDomain},
		{name: "leading hyphen", raw: "-invalid.com", wantErr: ErrInvalidDomain},
		{name: "public suffix only", raw: "co.uk", wantErr: ErrInvalidDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := NewTarget(tt.raw, true)
			if tt.wantErr != nil {
				testutil.AssertTrue(t, errors.Is(err, tt.wantErr), "error kind")
				return
			}
			testutil.AssertNoError(t, err, "new target")
			testutil.AssertEqual(t, target.Root, tt.want, "root")
			testutil.AssertNoError(t, target.Validate(), "normalized target validates")
		})
	}
}

func TestTarget_Validate(t *testing.T) {
	testutil.AssertTrue(t, errors.Is(Target{}.Validate(), ErrEmptyTarget), "empty root")
	testutil.AssertTrue(t, errors.Is(Target{Root: "Example.com"}.Validate(), ErrInvalidDomain), "non-canonical root")
	testutil.AssertNoError(t, Target{Root: "example.com"}.Validate(), "canonical root")
}

func TestTarget_InScope(t *testing.T) {
	tests := []struct {
		name       string
		subdomains bool
		host       string
		want       bool
	}{
		{"root", false, "example.com", true},
		{"www", false, "www.example.com", true},
		{"root with port", false, "example.com:8443", true},
		{"subdomain disabled", false, "blog.example.com", false},
		{"subdomain enabled", true, "blog.example.com", true},
		{"deep subdomain", true, "a.b.example.com", true},
		{"suffix lookalike", true, "notexample.com", false},
		{"other domain", true, "example.org", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := Target{Root: "example.com", Subdomains: tt.subdomains}
			testutil.AssertEqual(t, target.InScope(tt.host), tt.want, "in scope")
		})
	}
}

func TestTarget_OwnsEmailDomain(t *testing.T) {
	target := Target{Root: "example.com"}

	testutil.AssertTrue(t, target.OwnsEmailDomain("example.com"), "root")
	testutil.AssertTrue(t, target.OwnsEmailDomain("sales.example.com"), "subdomain even when crawl excludes them")
	testutil.AssertTrue(t, target.OwnsEmailDomain("EXAMPLE.com"), "case-insensitive")
	testutil.AssertFalse(t, target.OwnsEmailDomain("gmail.com"), "foreign domain")
	testutil.AssertFalse(t, target.OwnsEmailDomain("badexample.com"), "lookalike")
}

func TestTarget_SeedURL(t *testing.T) {
	target := Target{Root: "example.com"}
	testutil.AssertEqual(t, target.SeedURL(), "https://example.com/", "seed url")
	testutil.AssertEqual(t, target.String(), "example.com", "string")
}
