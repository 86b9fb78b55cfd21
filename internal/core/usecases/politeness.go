// internal/core/usecases/politeness.go
package usecases

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/cache"
	"emailscope/internal/platform/logx"
	"emailscope/internal/platform/rate"
	"emailscope/internal/platform/validator"
)

const (
	// maxRobotsBytes es el límite que aplican los buscadores grandes (500 KiB).
	maxRobotsBytes = 500 << 10

	// policyLoadTimeout acota la descarga compartida de robots.txt, turno incluido.
	policyLoadTimeout = 2 * time.Minute

	// denyAll se aplica cuando no hay política: nada se descarga a ciegas.
	denyAll = "User-agent: *\nDisallow: /\n"
)

// PolitenessConfig configura el gate de cortesía.
type PolitenessConfig struct {
	UserAgent  string
	DelayFloor time.Duration
	PolicyTTL  time.Duration
}

// PolitenessGate resuelve y cachea la política de crawl de cada host y
// reparte los turnos de petición por dominio. Es el único estado mutable
// compartido entre ejecuciones.
type PolitenessGate struct {
	fetcher ports.Fetcher
	loader  *cache.Loader[domain.CrawlPolicy]
	spacer  *rate.Spacer
	config  PolitenessConfig
	logger  logx.Logger
	now     func() time.Time

	// grupos de robots.txt ya compilados, por host+fetchedAt
	compiled sync.Map
}

// NewPolitenessGate crea el gate sobre un fetcher y un store de políticas.
func NewPolitenessGate(fetcher ports.Fetcher, store ports.PolicyCache, config PolitenessConfig, logger logx.Logger) *PolitenessGate {
	if config.UserAgent == "" {
		config.UserAgent = "EmailScopeBot/1.0"
	}
	if config.PolicyTTL <= 0 {
		config.PolicyTTL = time.Hour
	}
	if store == nil {
		store = cache.NewMemory[domain.CrawlPolicy](512)
	}

	return &PolitenessGate{
		fetcher: fetcher,
		loader:  cache.NewLoader[domain.CrawlPolicy](store, config.PolicyTTL, policyLoadTimeout),
		spacer:  rate.NewSpacer(),
		config:  config,
		logger:  logger.With("component", "politeness"),
		now:     time.Now,
	}
}

// GetPolicy devuelve la política del host, descargando robots.txt como mucho
// una vez por ventana de TTL. Llamadas concurrentes comparten la descarga.
// Nunca falla: un robots.txt inaccesible degrada a la política conservadora.
// Si el caller se cancela o la carga no termina, la política devuelta no
// permite ninguna ruta y no se cachea.
func (g *PolitenessGate) GetPolicy(ctx context.Context, host string) domain.CrawlPolicy {
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	policy, err := g.loader.Get(ctx, host, func(ctx context.Context) (domain.CrawlPolicy, time.Duration, error) {
		p, err := g.fetchPolicy(ctx, host)
		return p, g.config.PolicyTTL, err
	})
	if err != nil {
		p := g.degraded(host, err.Error())
		p.Robots = denyAll
		return p
	}
	return policy
}

// AwaitSlot bloquea hasta que haya pasado el crawl-delay desde el último
// turno concedido al dominio. Los turnos se conceden en orden de llegada.
func (g *PolitenessGate) AwaitSlot(ctx context.Context, host string) error {
	policy := g.GetPolicy(ctx, host)
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.spacer.Wait(ctx, slotKey(host), policy.CrawlDelay)
}

// Allowed indica si la URL puede descargarse según la política.
func (g *PolitenessGate) Allowed(policy domain.CrawlPolicy, rawURL string) bool {
	if policy.Robots == "" {
		return true
	}

	path := "/"
	if u, err := url.Parse(rawURL); err == nil {
		path = u.EscapedPath()
		if path == "" {
			path = "/"
		}
		if u.RawQuery != "" {
			path += "?" + u.RawQuery
		}
	}

	group := g.group(policy)
	if group == nil {
		return policy.Allows(path)
	}
	return group.Test(path)
}

// group devuelve el grupo de robots.txt aplicable, compilado una vez por política.
func (g *PolitenessGate) group(policy domain.CrawlPolicy) *robotstxt.Group {
	key := fmt.Sprintf("%s|%d", policy.Domain, policy.FetchedAt.UnixNano())
	if v, ok := g.compiled.Load(key); ok {
		return v.(*robotstxt.Group)
	}

	data, err := robotstxt.FromString(policy.Robots)
	if err != nil {
		return nil
	}
	group := data.FindGroup(policy.Agent)
	g.compiled.Store(key, group)
	return group
}

func (g *PolitenessGate) fetchPolicy(ctx context.Context, host string) (domain.CrawlPolicy, error) {
	var lastErr error

	for _, scheme := range []string{"https", "http"} {
		// La descarga de robots.txt también ocupa un turno del dominio.
		if err := g.spacer.Wait(ctx, slotKey(host), g.config.DelayFloor); err != nil {
			return domain.CrawlPolicy{}, err
		}

		robotsURL := scheme + "://" + host + "/robots.txt"
		status, body, err := g.fetcher.FetchRaw(ctx, robotsURL, maxRobotsBytes)
		if err != nil {
			if ctx.Err() != nil {
				return domain.CrawlPolicy{}, ctx.Err()
			}
			lastErr = err
			g.logger.Debug("robots.txt fetch failed", "url", robotsURL, "error", err.Error())
			continue
		}

		return g.policyFromResponse(host, status, body), nil
	}

	g.logger.Warn("robots.txt unreachable, using conservative policy", "host", host, "error", errString(lastErr))
	return g.degraded(host, fmt.Sprintf("%v: %s", domain.ErrPolicyFetch, errString(lastErr))), nil
}

func (g *PolitenessGate) policyFromResponse(host string, status int, body []byte) domain.CrawlPolicy {
	switch {
	case status >= 200 && status < 300:
		data, err := robotstxt.FromBytes(body)
		if err != nil {
			g.logger.Warn("malformed robots.txt, using conservative policy", "host", host, "error", err.Error())
			return g.degraded(host, "malformed robots.txt")
		}

		policy := g.base(host)
		policy.Robots = string(body)
		if group := data.FindGroup(g.config.UserAgent); group.CrawlDelay > policy.CrawlDelay {
			policy.CrawlDelay = group.CrawlDelay
		}
		g.logger.Debug("robots.txt loaded", "host", host, "crawl_delay", policy.CrawlDelay.String())
		return policy

	case status >= 400 && status < 500:
		// Sin robots.txt: sin restricciones, con el delay mínimo.
		return g.base(host)

	default:
		return g.degraded(host, fmt.Sprintf("robots.txt status %d", status))
	}
}

func (g *PolitenessGate) base(host string) domain.CrawlPolicy {
	return domain.CrawlPolicy{
		Domain:     host,
		Agent:      g.config.UserAgent,
		CrawlDelay: g.config.DelayFloor,
		FetchedAt:  g.now(),
		TTL:        g.config.PolicyTTL,
	}
}

func (g *PolitenessGate) degraded(host, reason string) domain.CrawlPolicy {
	p := g.base(host)
	p.Degraded = true
	p.Reason = reason
	return p
}

// slotKey agrupa los turnos por dominio registrable: www.example.com y
// blog.example.com comparten el mismo espaciado.
func slotKey(host string) string {
	return validator.RegistrableDomain(host)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
