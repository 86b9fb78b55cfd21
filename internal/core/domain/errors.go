// internal/core/domain/errors.go
package domain

import "errors"

// Errores de dominio comunes.
var (
	// Target errors
	ErrEmptyTarget   = errors.New("target cannot be empty")
	ErrInvalidDomain = errors.New("invalid domain format")

	// Run errors
	ErrRunNotFound    = errors.New("run not found")
	ErrRunFinished    = errors.New("run already finished")
	ErrTooManyRuns    = errors.New("too many concurrent runs")
	ErrInvalidOptions = errors.New("invalid run options")
	ErrReportSealed   = errors.New("report is sealed")

	// Crawl errors (contenidos a nivel de página, nunca abortan la ejecución)
	ErrPolicyFetch = errors.New("crawl policy fetch failed")
	ErrPageFetch   = errors.New("page fetch failed")

	// Verification errors (contenidos a nivel de candidato)
	ErrMXNotFound       = errors.New("no mail exchanger found")
	ErrHandshakeTimeout = errors.New("smtp handshake timeout")
	ErrHandshakeRefused = errors.New("smtp connection refused")
	ErrCatchAll         = errors.New("catch-all domain")

	// Export errors
	ErrExportFailed      = errors.New("export failed")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidOutputPath = errors.New("invalid output path")
)
