package urlfilter

import (
	"testing"

	"emailscope/internal/testutil"
)

func TestPriorityScorer_Score(t *testing.T) {
	scorer := NewPriorityScorer(DefaultConfig())

	tests := []struct {
		name     string
		url      string
		anchor   string
		expected Priority
		keyword  string
	}{
		{name: "contact path", url: "https://example.com/contact", expected: PriorityPrimary, keyword: "contact"},
		{name: "about path", url: "https://example.com/about-us", expected: PriorityPrimary, keyword: "about"},
		{name: "team anchor text", url: "https://example.com/p/42", anchor: "Meet the Team", expected: PriorityPrimary, keyword: "team"},
		{name: "staff path", url: "https://example.com/our-staff", expected: PriorityPrimary, keyword: "staff"},
		{name: "leadership is secondary", url: "https://example.com/leadership", expected: PrioritySecondary, keyword: "leadership"},
		{name: "careers anchor", url: "https://example.com/jobs", anchor: "Careers", expected: PrioritySecondary, keyword: "careers"},
		{name: "primary beats secondary", url: "https://example.com/company/contact", expected: PriorityPrimary, keyword: "contact"},
		{name: "generic", url: "https://example.com/blog/post", anchor: "Read more", expected: PriorityGeneric},
		{name: "host does not count", url: "https://contact.example.com/blog", expected: PriorityGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scored := scorer.Score(tt.url, tt.anchor)
			testutil.AssertEqual(t, scored.Priority, tt.expected, "priority")
			testutil.AssertEqual(t, scored.Keyword, tt.keyword, "keyword")
		})
	}
}

func TestPriorityScorer_IsContactLike(t *testing.T) {
	scorer := NewPriorityScorer(DefaultConfig())

	testutil.AssertTrue(t, scorer.IsContactLike("https://example.com/x", "About us"), "title match")
	testutil.AssertFalse(t, scorer.IsContactLike("https://example.com/blog", "News"), "no match")
}

func TestPriority_String(t *testing.T) {
	testutil.AssertEqual(t, PriorityPrimary.String(), "primary", "primary")
	testutil.AssertEqual(t, PrioritySecondary.String(), "secondary", "secondary")
	testutil.AssertEqual(t, PriorityGeneric.String(), "generic", "generic")
}
