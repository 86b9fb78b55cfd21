// internal/core/domain/target.go
package domain

import (
	"fmt"
	"strings"

	"emailscope/internal/platform/validator"
)

// Target representa el dominio de empresa sobre el que corre el pipeline.
type Target struct {
	// Root es el dominio raíz en forma ASCII, sin www.
	Root string `json:"root"`

	// Subdomains permite seguir enlaces a subdominios de Root durante el crawl
	Subdomains bool `json:"subdomains"`
}

// NewTarget valida y normaliza el dominio. Es el único error fatal de una
// ejecución y se produce antes de cualquier actividad de red.
func NewTarget(raw string, subdomains bool) (Target, error) {
	if strings.TrimSpace(raw) == "" {
		return Target{}, ErrEmptyTarget
	}

	root, err := validator.CanonicalDomain(raw)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidDomain, err)
	}

	return Target{Root: root, Subdomains: subdomains}, nil
}

// Validate verifica que el target sea válido.
func (t Target) Validate() error {
	if t.Root == "" {
		return ErrEmptyTarget
	}
	root, err := validator.CanonicalDomain(t.Root)
	if err != nil || root != t.Root {
		return fmt.Errorf("%w: %s", ErrInvalidDomain, t.Root)
	}
	return nil
}

// SeedURL es la URL de arranque del crawl.
func (t Target) SeedURL() string {
	return "https://" + t.Root + "/"
}

// InScope verifica si un host pertenece al alcance del crawl.
func (t Target) InScope(host string) bool {
	return validator.InDomain(host, t.Root, t.Subdomains)
}

// OwnsEmailDomain verifica si la parte de dominio de una dirección pertenece
// al target. Los subdominios se aceptan siempre (info@sales.example.com).
func (t Target) OwnsEmailDomain(domain string) bool {
	return validator.InDomain(domain, t.Root, true)
}

// String retorna la representación string del target.
func (t Target) String() string {
	return t.Root
}
