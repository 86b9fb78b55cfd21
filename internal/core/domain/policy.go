// internal/core/domain/policy.go
package domain

import (
	"time"

	"github.com/temoto/robotstxt"
)

// CrawlPolicy son las reglas de cortesía de un host: robots.txt y crawl-delay.
type CrawlPolicy struct {
	Domain string `json:"domain"`

	// Agent es el user-agent con el que se evalúan las reglas
	Agent string `json:"agent"`

	// Robots es el cuerpo de robots.txt; vacío = sin restricciones
	Robots string `json:"robots,omitempty"`

	// CrawlDelay efectivo: max(Crawl-delay de robots, suelo configurado)
	CrawlDelay time.Duration `json:"crawl_delay"`

	FetchedAt time.Time     `json:"fetched_at"`
	TTL       time.Duration `json:"ttl"`

	// Degraded indica que robots.txt no se pudo obtener o parsear
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

// Allows verifica si la ruta puede descargarse según la política.
func (p CrawlPolicy) Allows(path string) bool {
	if p.Robots == "" {
		return true
	}
	data, err := robotstxt.FromString(p.Robots)
	if err != nil {
		return true
	}
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, p.Agent)
}
