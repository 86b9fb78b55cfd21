package urlfilter

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// URLNormalizer reduces URLs to the crawl identity scheme://host/path so each
// page is fetched once.
type URLNormalizer struct {
	// KeepQuery keeps the (sorted) query string in the identity.
	KeepQuery bool
}

// NewURLNormalizer creates a new URL normalizer.
func NewURLNormalizer() *URLNormalizer {
	return &URLNormalizer{}
}

// Normalize returns the canonical form of an absolute http(s) URL:
// lowercase scheme and host, default port removed, fragment stripped,
// query dropped, dot segments cleaned, no trailing slash except the root.
func (n *URLNormalizer) Normalize(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if err := n.canonicalize(parsed); err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// Resolve resolves href against base and normalizes the result. Links with
// non-http(s) schemes (mailto:, tel:, javascript:) return ok=false.
func (n *URLNormalizer) Resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	abs := base.ResolveReference(ref)
	if err := n.canonicalize(abs); err != nil {
		return "", false
	}
	return abs.String(), true
}

func (n *URLNormalizer) canonicalize(u *url.URL) error {
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}

	// Lowercase host, remove default ports
	u.Host = strings.ToLower(u.Host)
	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}
	u.Host = strings.TrimSuffix(u.Host, ".")

	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""
	if n.KeepQuery {
		u.RawQuery = u.Query().Encode()
	} else {
		u.RawQuery = ""
	}
	u.ForceQuery = false

	// IMPORTANT: path.Clean, not filepath.Clean (OS-specific separators)
	p := u.Path
	if p == "" {
		p = "/"
	}
	p = path.Clean(p)
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	u.Path = p
	u.RawPath = ""

	return nil
}
