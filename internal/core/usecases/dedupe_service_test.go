// internal/core/usecases/dedupe_service_test.go
package usecases

import (
	"testing"

	"emailscope/internal/core/domain"
	"emailscope/internal/testutil"
)

func TestNewDedupeService(t *testing.T) {
	svc := NewDedupeService()
	testutil.AssertNotNil(t, svc, "service should not be nil")
}

func TestDedupeService_Deduplicate(t *testing.T) {
	svc := NewDedupeService()

	lit := func(email, page string) domain.Candidate {
		return domain.Candidate{Email: email, Source: domain.SourceLiteral, PageURL: page, Pages: []string{page}, Sightings: 1}
	}
	perm := func(email, name string) domain.Candidate {
		return domain.Candidate{Email: email, Source: domain.SourcePermutation, PersonName: name}
	}

	tests := []struct {
		name       string
		input      []domain.Candidate
		wantEmails []string
		check      func(t *testing.T, got []domain.Candidate)
	}{
		{
			name:  "empty list",
			input: []domain.Candidate{},
		},
		{
			name: "no duplicates",
			input: []domain.Candidate{
				lit("a@example.com", "https://example.com/"),
				perm("john@example.com", "John Smith"),
			},
			wantEmails: []string{"a@example.com", "john@example.com"},
		},
		{
			name: "case and whitespace",
			input: []domain.Candidate{
				lit(" Sales@Example.com ", "https://example.com/"),
				lit("sales@example.com", "https://example.com/contact"),
			},
			wantEmails: []string{"sales@example.com"},
			check: func(t *testing.T, got []domain.Candidate) {
				testutil.AssertEqual(t, got[0].Sightings, 2, "pages merged")
				testutil.AssertEqual(t, got[0].PageURL, "https://example.com/", "first page kept")
			},
		},
		{
			name: "literal replaces earlier permutation in place",
			input: []domain.Candidate{
				perm("john.smith@example.com", "John Smith"),
				perm("jsmith@example.com", "John Smith"),
				lit("john.smith@example.com", "https://example.com/team"),
			},
			wantEmails: []string{"john.smith@example.com", "jsmith@example.com"},
			check: func(t *testing.T, got []domain.Candidate) {
				testutil.AssertEqual(t, got[0].Source, domain.SourceLiteral, "literal wins")
				testutil.AssertEqual(t, got[0].PersonName, "John Smith", "name inherited")
				testutil.AssertEqual(t, got[0].PageURL, "https://example.com/team", "page from the literal")
			},
		},
		{
			name: "first permutation wins",
			input: []domain.Candidate{
				perm("j.smith@example.com", "John Smith"),
				perm("j.smith@example.com", "Jane Smith"),
			},
			wantEmails: []string{"j.smith@example.com"},
			check: func(t *testing.T, got []domain.Candidate) {
				testutil.AssertEqual(t, got[0].PersonName, "John Smith", "first name kept")
			},
		},
		{
			name:       "blank email dropped",
			input:      []domain.Candidate{{Email: "  ", Source: domain.SourceLiteral}},
			wantEmails: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Deduplicate(tt.input)
			testutil.AssertStrings(t, candidateEmails(got), tt.wantEmails, "emails")
			if tt.check != nil && len(got) > 0 {
				tt.check(t, got)
			}
		})
	}
}

func TestDedupeService_FilterByConfidence(t *testing.T) {
	svc := NewDedupeService()
	results := []domain.VerificationResult{
		{Candidate: literal("a@example.com"), Confidence: 85, Status: domain.StatusValid},
		{Candidate: literal("b@example.com"), Confidence: 40, Status: domain.StatusRisky},
		{Candidate: literal("c@example.com"), Confidence: 10, Status: domain.StatusInvalid},
	}

	tests := []struct {
		min  int
		want int
	}{
		{0, 3},
		{40, 2},
		{80, 1},
		{90, 0},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, len(svc.FilterByConfidence(results, tt.min)), tt.want, "filtered results")
	}
}
