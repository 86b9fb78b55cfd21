// internal/core/usecases/dedupe_service.go
package usecases

import (
	"emailscope/internal/core/domain"
	"emailscope/internal/platform/validator"
)

// DedupeService maneja la deduplicación y normalización de candidatos.
type DedupeService struct{}

// NewDedupeService crea una nueva instancia del servicio.
func NewDedupeService() *DedupeService {
	return &DedupeService{}
}

// Deduplicate normaliza los emails y colapsa duplicados conservando el orden
// de la primera aparición. Un literal gana a una permutación con el mismo
// email (hereda su nombre si no tenía); entre literales se suman las páginas;
// entre permutaciones gana la primera.
func (d *DedupeService) Deduplicate(candidates []domain.Candidate) []domain.Candidate {
	if len(candidates) == 0 {
		return candidates
	}

	index := make(map[string]int, len(candidates))
	result := make([]domain.Candidate, 0, len(candidates))

	for _, c := range candidates {
		c.Email = validator.NormalizeEmail(c.Email)
		if c.Email == "" {
			continue
		}

		key := c.Key()
		i, found := index[key]
		if !found {
			index[key] = len(result)
			result = append(result, c)
			continue
		}

		result[i] = d.merge(result[i], c)
	}

	return result
}

// merge combina dos candidatos con la misma clave.
func (d *DedupeService) merge(existing, incoming domain.Candidate) domain.Candidate {
	if incoming.Source.Rank() > existing.Source.Rank() {
		existing, incoming = incoming, existing
	}

	if existing.PersonName == "" {
		existing.PersonName = incoming.PersonName
	}

	if existing.Source == domain.SourceLiteral && incoming.Source == domain.SourceLiteral {
		pages := append([]string(nil), existing.Pages...)
		for _, p := range incoming.Pages {
			if !containsString(pages, p) {
				pages = append(pages, p)
			}
		}
		existing.Pages = pages
		existing.Sightings = max(len(pages), existing.Sightings)
		if existing.PageURL == "" {
			existing.PageURL = incoming.PageURL
		}
	}
	return existing
}

// FilterByConfidence filtra resultados por confianza mínima.
func (d *DedupeService) FilterByConfidence(results []domain.VerificationResult, minConfidence int) []domain.VerificationResult {
	filtered := make([]domain.VerificationResult, 0)
	for _, r := range results {
		if r.Confidence >= minConfidence {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
