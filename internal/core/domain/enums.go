// internal/core/domain/enums.go
package domain

// PageStatus indica qué pasó con una URL del frontier.
type PageStatus string

const (
	// PageStatusFetched la página se descargó y parseó
	PageStatusFetched PageStatus = "fetched"

	// PageStatusSkipped el fetch falló (timeout, non-2xx, no HTML) o la URL fue filtrada
	PageStatusSkipped PageStatus = "skipped"

	// PageStatusDisallowed robots.txt prohíbe la ruta; no hubo llamada de red
	PageStatusDisallowed PageStatus = "disallowed"
)

// IsValid verifica si el estado de página es válido.
func (s PageStatus) IsValid() bool {
	switch s {
	case PageStatusFetched, PageStatusSkipped, PageStatusDisallowed:
		return true
	default:
		return false
	}
}

// String retorna la representación string del estado.
func (s PageStatus) String() string {
	return string(s)
}

// SourceKind indica de dónde sale un candidato.
type SourceKind string

const (
	// SourceLiteral la dirección apareció tal cual en una página
	SourceLiteral SourceKind = "literal"

	// SourcePermutation la dirección se sintetizó a partir de un nombre
	SourcePermutation SourceKind = "permutation"
)

// IsValid verifica si el tipo de fuente es válido.
func (k SourceKind) IsValid() bool {
	return k == SourceLiteral || k == SourcePermutation
}

// String retorna la representación string del tipo.
func (k SourceKind) String() string {
	return string(k)
}

// Rank ordena los tipos de fuente por fuerza de evidencia (mayor = más fuerte).
func (k SourceKind) Rank() int {
	switch k {
	case SourceLiteral:
		return 2
	case SourcePermutation:
		return 1
	default:
		return 0
	}
}

// HandshakeOutcome es el resultado observado del diálogo SMTP.
type HandshakeOutcome string

const (
	HandshakeAccepted HandshakeOutcome = "accepted"
	HandshakeRejected HandshakeOutcome = "rejected"
	HandshakeUnknown  HandshakeOutcome = "unknown" // timeout, refused, 4xx, 252...
	HandshakeCatchAll HandshakeOutcome = "catch_all"
	HandshakeSkipped  HandshakeOutcome = "skipped" // sin MX, no hubo diálogo
)

// IsValid verifica si el resultado es uno de los conocidos.
func (o HandshakeOutcome) IsValid() bool {
	switch o {
	case HandshakeAccepted, HandshakeRejected, HandshakeUnknown, HandshakeCatchAll, HandshakeSkipped:
		return true
	default:
		return false
	}
}

// String retorna la representación string del resultado.
func (o HandshakeOutcome) String() string {
	return string(o)
}

// Status es el veredicto final de un candidato.
type Status string

const (
	StatusValid        Status = "valid"
	StatusRisky        Status = "risky"
	StatusInvalid      Status = "invalid"
	StatusUnverifiable Status = "unverifiable"
)

// AllStatuses lista los estados en orden de presentación.
var AllStatuses = []Status{StatusValid, StatusRisky, StatusUnverifiable, StatusInvalid}

// IsValid verifica si el estado es válido.
func (s Status) IsValid() bool {
	switch s {
	case StatusValid, StatusRisky, StatusInvalid, StatusUnverifiable:
		return true
	default:
		return false
	}
}

// String retorna la representación string del estado.
func (s Status) String() string {
	return string(s)
}
