package urlfilter

import (
	"net/url"
	"strings"
)

// Priority orders links within one depth of the crawl frontier.
type Priority int

const (
	PriorityGeneric   Priority = 0
	PrioritySecondary Priority = 1
	PriorityPrimary   Priority = 2
)

// String returns string representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityPrimary:
		return "primary"
	case PrioritySecondary:
		return "secondary"
	default:
		return "generic"
	}
}

// PriorityScorer ranks links that likely lead to contact or team pages.
type PriorityScorer struct {
	primary   []string
	secondary []string
}

// ScoredURL represents a URL with its priority and the keyword that matched.
type ScoredURL struct {
	URL      string
	Priority Priority
	Keyword  string
}

// NewPriorityScorer creates a new priority scorer.
func NewPriorityScorer(config FilterConfig) *PriorityScorer {
	return &PriorityScorer{
		primary:   lowerAll(config.PrimaryKeywords),
		secondary: lowerAll(config.SecondaryKeywords),
	}
}

// Score checks the URL path and the anchor text against the keyword lists.
func (p *PriorityScorer) Score(rawURL, anchorText string) ScoredURL {
	scored := ScoredURL{URL: rawURL, Priority: PriorityGeneric}

	haystack := strings.ToLower(anchorText)
	if parsed, err := url.Parse(rawURL); err == nil {
		haystack = strings.ToLower(parsed.Path) + " " + haystack
	}

	if kw, ok := firstMatch(haystack, p.primary); ok {
		scored.Priority = PriorityPrimary
		scored.Keyword = kw
		return scored
	}
	if kw, ok := firstMatch(haystack, p.secondary); ok {
		scored.Priority = PrioritySecondary
		scored.Keyword = kw
	}
	return scored
}

// IsContactLike reports whether a page URL or title suggests contact/team data.
func (p *PriorityScorer) IsContactLike(rawURL, title string) bool {
	return p.Score(rawURL, title).Priority > PriorityGeneric
}

func firstMatch(haystack string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return kw, true
		}
	}
	return "", false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
