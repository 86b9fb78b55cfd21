// internal/core/usecases/scoring.go
package usecases

import (
	"fmt"

	"emailscope/internal/core/domain"
	"emailscope/internal/platform/config"
)

// ScoringTable es la tabla declarativa de pesos: cada señal suma su peso,
// después se aplican los topes y los umbrales.
type ScoringTable struct {
	Accepted    int
	Unknown     int
	Rejected    int
	MXResolved  int
	Literal     int
	Permutation int

	// SightingBonus por cada página adicional donde apareció un literal,
	// hasta SightingCap en total.
	SightingBonus int
	SightingCap   int

	CatchAllCap int
	RejectedCap int

	ValidThreshold int
	RiskyThreshold int
}

// Signals son las observaciones sobre un candidato que entran en el score.
type Signals struct {
	// NoMX: el DNS confirmó que el dominio no tiene exchanger
	NoMX       bool
	MXResolved bool
	Handshake  domain.HandshakeOutcome
	Source     domain.SourceKind
	Sightings  int
	CatchAll   bool
	Disposable bool
}

// DefaultScoringTable retorna la tabla con los pesos por defecto.
func DefaultScoringTable() ScoringTable {
	return NewScoringTable(config.DefaultScoring())
}

// NewScoringTable construye la tabla desde la sección scoring de la config.
func NewScoringTable(c config.ScoringConfig) ScoringTable {
	return ScoringTable{
		Accepted:       c.Accepted,
		Unknown:        c.Unknown,
		Rejected:       c.Rejected,
		MXResolved:     c.MXResolved,
		Literal:        c.Literal,
		Permutation:    c.Permutation,
		SightingBonus:  c.SightingBonus,
		SightingCap:    c.SightingCap,
		CatchAllCap:    c.CatchAllCap,
		RejectedCap:    c.RejectedCap,
		ValidThreshold: c.ValidThreshold,
		RiskyThreshold: c.RiskyThreshold,
	}
}

// Validate comprueba que los umbrales son coherentes.
func (t ScoringTable) Validate() error {
	switch {
	case t.RiskyThreshold < 2:
		return fmt.Errorf("%w: risky threshold must be at least 2", domain.ErrInvalidOptions)
	case t.ValidThreshold <= t.RiskyThreshold || t.ValidThreshold > domain.ConfidenceMax:
		return fmt.Errorf("%w: valid threshold must be in (risky, 100]", domain.ErrInvalidOptions)
	case t.CatchAllCap >= t.ValidThreshold:
		return fmt.Errorf("%w: catch-all cap must stay below the valid threshold", domain.ErrInvalidOptions)
	case t.SightingBonus < 0 || t.SightingCap < 0:
		return fmt.Errorf("%w: sighting weights must be non-negative", domain.ErrInvalidOptions)
	}
	return nil
}

// Score combina las señales en (confianza, estado).
//
// Sin MX el resultado es 0/invalid. Un rechazo es invalid con confianza
// acotada por RejectedCap. Un handshake sin respuesta es unverifiable, en
// [1, RiskyThreshold-1]. Una aceptación en catch-all nunca llega a valid.
// El score no decrece al aumentar Sightings.
func (t ScoringTable) Score(s Signals) (int, domain.Status) {
	if s.NoMX {
		return 0, domain.StatusInvalid
	}

	score := 0
	if s.MXResolved {
		score += t.MXResolved
	}
	switch s.Source {
	case domain.SourceLiteral:
		score += t.Literal + t.sightingBonus(s.Sightings)
	case domain.SourcePermutation:
		score += t.Permutation
	}

	if s.Disposable {
		return domain.ClampConfidence(min(score, t.RejectedCap)), domain.StatusInvalid
	}

	switch s.Handshake {
	case domain.HandshakeAccepted, domain.HandshakeCatchAll:
		score = domain.ClampConfidence(score + t.Accepted)
	case domain.HandshakeRejected:
		return domain.ClampConfidence(min(score+t.Rejected, t.RejectedCap)), domain.StatusInvalid
	default:
		score = domain.ClampConfidence(score + t.Unknown)
		return clamp(score, 1, t.RiskyThreshold-1), domain.StatusUnverifiable
	}

	status := t.status(score)
	if s.CatchAll || s.Handshake == domain.HandshakeCatchAll {
		score = min(score, t.CatchAllCap)
		status = t.status(score)
		if status == domain.StatusValid {
			status = domain.StatusRisky
		}
	}
	return score, status
}

func (t ScoringTable) status(score int) domain.Status {
	switch {
	case score >= t.ValidThreshold:
		return domain.StatusValid
	case score >= t.RiskyThreshold:
		return domain.StatusRisky
	case score > 0:
		return domain.StatusUnverifiable
	default:
		return domain.StatusInvalid
	}
}

func (t ScoringTable) sightingBonus(sightings int) int {
	if sightings <= 1 {
		return 0
	}
	return min((sightings-1)*t.SightingBonus, t.SightingCap)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
