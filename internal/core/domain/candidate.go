// internal/core/domain/candidate.go
package domain

import "strings"

// Candidate es una dirección candidata producida por el extractor.
// La clave de unicidad dentro de una ejecución es Email (normalizado).
type Candidate struct {
	Email      string     `json:"email"`
	Source     SourceKind `json:"source"`
	PageURL    string     `json:"page_url,omitempty"`
	PersonName string     `json:"person_name,omitempty"`

	// Sightings es el número de páginas distintas donde apareció (literales)
	Sightings int      `json:"sightings,omitempty"`
	Pages     []string `json:"pages,omitempty"`
}

// Key retorna la clave de deduplicación.
func (c Candidate) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Email))
}

// Domain retorna la parte de dominio de la dirección.
func (c Candidate) Domain() string {
	if i := strings.LastIndexByte(c.Email, '@'); i >= 0 {
		return strings.ToLower(c.Email[i+1:])
	}
	return ""
}

// Local retorna la parte local de la dirección.
func (c Candidate) Local() string {
	if i := strings.LastIndexByte(c.Email, '@'); i >= 0 {
		return c.Email[:i]
	}
	return c.Email
}
