// internal/core/domain/enums_test.go
package domain

import (
	"testing"

	"emailscope/internal/testutil"
)

func TestPageStatus_IsValid(t *testing.T) {
	for _, s := range []PageStatus{PageStatusFetched, PageStatusSkipped, PageStatusDisallowed} {
		t.Run(s.String(), func(t *testing.T) {
			testutil.AssertTrue(t, s.IsValid(), "known status")
		})
	}
	testutil.AssertFalse(t, PageStatus("lost").IsValid(), "unknown status")
}

func TestSourceKind_Rank(t *testing.T) {
	testutil.AssertTrue(t, SourceLiteral.Rank() > SourcePermutation.Rank(), "literal outranks permutation")
	testutil.AssertTrue(t, SourcePermutation.Rank() > SourceKind("").Rank(), "permutation outranks unknown")
	testutil.AssertTrue(t, SourceLiteral.IsValid(), "literal valid")
	testutil.AssertFalse(t, SourceKind("guess").IsValid(), "unknown kind")
}

func TestHandshakeOutcome_IsValid(t *testing.T) {
	tests := []struct {
		outcome HandshakeOutcome
		valid   bool
	}{
		{HandshakeAccepted, true},
		{HandshakeRejected, true},
		{HandshakeUnknown, true},
		{HandshakeCatchAll, true},
		{HandshakeSkipped, true},
		{HandshakeOutcome("maybe"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			testutil.AssertEqual(t, tt.outcome.IsValid(), tt.valid, "valid outcome")
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	testutil.AssertEqual(t, len(AllStatuses), 4, "four statuses")
	for _, s := range AllStatuses {
		testutil.AssertTrue(t, s.IsValid(), s.String())
	}
	testutil.AssertFalse(t, Status("pending").IsValid(), "unknown status")
}

func TestGetConfidenceLabel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "high"},
		{80, "high"},
		{79, "medium"},
		{40, "medium"},
		{39, "low"},
		{1, "low"},
		{0, "none"},
	}

	for _, tt := range tests {
		testutil.AssertEqual(t, GetConfidenceLabel(tt.score), tt.want, "label")
	}
}

func TestClampConfidence(t *testing.T) {
	testutil.AssertEqual(t, ClampConfidence(-5), 0, "lower bound")
	testutil.AssertEqual(t, ClampConfidence(55), 55, "inside")
	testutil.AssertEqual(t, ClampConfidence(140), 100, "upper bound")
}
