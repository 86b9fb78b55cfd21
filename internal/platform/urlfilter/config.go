// Package urlfilter normalizes, filters and prioritizes URLs discovered while
// crawling a company site for contact information.
package urlfilter

import (
	"fmt"
	"strings"
)

// FilterConfig configures URL filtering and frontier prioritization.
type FilterConfig struct {
	// SkipPatterns are path substrings that never lead to contact data
	// (admin areas, assets, feeds, pagination...). Matched case-insensitively.
	SkipPatterns []string

	// SkipExtensions are file extensions that are never fetched.
	SkipExtensions []string

	// PrimaryKeywords rank a link first when found in its URL or anchor text.
	PrimaryKeywords []string

	// SecondaryKeywords rank a link after primary matches but before generic links.
	SecondaryKeywords []string
}

// DefaultConfig returns the default filter configuration.
func DefaultConfig() FilterConfig {
	return FilterConfig{
		SkipPatterns: []string{
			"/wp-admin/", "/admin/", "/login/", "/register/", "/signup/", "/logout/",
			"/api/", "/ajax/", "/static/", "/assets/", "/css/", "/js/",
			"/images/", "/img/", "/photos/", "/videos/", "/media/",
			"/download/", "/files/", "/documents/", "/pdf/", "/doc/",
			"/search/", "/filter/", "/sort/", "/page/", "/tag/", "/category/",
			"/archive/", "/feed/", "/rss/", "/sitemap", "/robots.txt",
			"/favicon.ico", "/apple-touch-icon", "/manifest.json",
			"/cart/", "/checkout/",
		},
		SkipExtensions: []string{
			".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
			".zip", ".rar", ".tar", ".gz",
			".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".webp",
			".css", ".js", ".xml", ".json", ".txt",
			".mp3", ".mp4", ".webm", ".woff", ".woff2", ".ttf",
		},
		PrimaryKeywords:   []string{"contact", "about", "team", "staff"},
		SecondaryKeywords: []string{"people", "leadership", "management", "company", "careers"},
	}
}

// Validate checks the configuration for obvious mistakes.
func (c FilterConfig) Validate() error {
	for _, ext := range c.SkipExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("skip extension %q must start with a dot", ext)
		}
	}
	for _, kw := range append(append([]string{}, c.PrimaryKeywords...), c.SecondaryKeywords...) {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("empty priority keyword")
		}
	}
	return nil
}
