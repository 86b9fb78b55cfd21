// internal/core/ports/cache.go
package ports

import (
	"emailscope/internal/core/domain"
	"emailscope/internal/platform/cache"
)

// PolicyCache guarda las políticas de crawl por host.
type PolicyCache = cache.Store[domain.CrawlPolicy]

// ProfileCache guarda los perfiles de correo por dominio.
type ProfileCache = cache.Store[domain.MailProfile]
