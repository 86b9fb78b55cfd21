// internal/adapters/output/helpers_test.go
package output

import (
	"time"

	"emailscope/internal/core/domain"
)

// sampleSnapshot es una ejecución sellada sobre example.com con tres resultados.
func sampleSnapshot(cancelled bool) domain.ReportSnapshot {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	report := domain.NewPipelineReport("run-1", "example.com", start)
	report.RecordPage(domain.PageStatusFetched)
	report.RecordPage(domain.PageStatusFetched)
	report.RecordPage(domain.PageStatusSkipped)
	report.SetCandidateCount(3)

	report.Append(domain.VerificationResult{
		Candidate: domain.Candidate{
			Email:     "jane.doe@example.com",
			Source:    domain.SourceLiteral,
			PageURL:   "https://example.com/contact",
			Sightings: 1,
		},
		MXResolved: true,
		MXHost:     "mx1.example.com",
		Handshake:  domain.HandshakeAccepted,
		SMTPCode:   250,
		Confidence: 85,
		Status:     domain.StatusValid,
		CheckedAt:  start.Add(time.Second),
	})
	report.Append(domain.VerificationResult{
		Candidate: domain.Candidate{
			Email:      "john.smith@example.com",
			Source:     domain.SourcePermutation,
			PageURL:    "https://example.com/about",
			PersonName: "John Smith",
		},
		MXResolved: true,
		MXHost:     "mx1.example.com",
		Handshake:  domain.HandshakeAccepted,
		SMTPCode:   250,
		Confidence: 70,
		Status:     domain.StatusRisky,
		CheckedAt:  start.Add(2 * time.Second),
	})
	report.Append(domain.VerificationResult{
		Candidate: domain.Candidate{
			Email:      "jsmith@example.com",
			Source:     domain.SourcePermutation,
			PageURL:    "https://example.com/about",
			PersonName: "John Smith",
		},
		MXResolved: true,
		MXHost:     "mx1.example.com",
		Handshake:  domain.HandshakeRejected,
		SMTPCode:   550,
		Confidence: 10,
		Status:     domain.StatusInvalid,
		Reason:     "recipient rejected",
		CheckedAt:  start.Add(3 * time.Second),
	})

	report.Seal(cancelled, start.Add(5*time.Second))
	return report.Snapshot()
}
