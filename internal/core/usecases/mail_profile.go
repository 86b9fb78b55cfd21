// internal/core/usecases/mail_profile.go
package usecases

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/cache"
	"emailscope/internal/platform/errors"
	"emailscope/internal/platform/logx"
	"emailscope/internal/platform/resilience"
)

// catchAllPrefix es la parte fija del local-part del sondeo catch-all.
const catchAllPrefix = "emailscope-probe-"

// profileLoadTimeout acota la resolución compartida: MX más sondeo catch-all.
const profileLoadTimeout = 2 * time.Minute

// MailProfileConfig controla la resolución de perfiles de correo.
type MailProfileConfig struct {
	TTL time.Duration

	// FailureTTL es cuánto se recuerda un fallo de DNS transitorio.
	FailureTTL time.Duration

	// CatchAllProbe activa el sondeo con un destinatario inexistente.
	CatchAllProbe bool

	LookupTimeout time.Duration
}

// DefaultMailProfileConfig retorna la configuración por defecto.
func DefaultMailProfileConfig() MailProfileConfig {
	return MailProfileConfig{
		TTL:           time.Hour,
		FailureTTL:    time.Minute,
		CatchAllProbe: true,
		LookupTimeout: 10 * time.Second,
	}
}

// MailProfileResolver resuelve MX y catch-all una vez por dominio. Los
// callers concurrentes del mismo dominio comparten la resolución en vuelo.
type MailProfileResolver struct {
	resolver ports.MXResolver
	probe    *mailProbe
	loader   *cache.Loader[domain.MailProfile]
	config   MailProfileConfig
	logger   logx.Logger
	now      func() time.Time
	newLocal func() string
}

// NewMailProfileResolver crea el resolver. store nil = memoria de proceso.
func NewMailProfileResolver(
	resolver ports.MXResolver,
	prober ports.Prober,
	breakers *resilience.BreakerSet,
	store ports.ProfileCache,
	config MailProfileConfig,
	logger logx.Logger,
) *MailProfileResolver {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if store == nil {
		store = cache.NewMemory[domain.MailProfile](512)
	}
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	if config.FailureTTL <= 0 {
		config.FailureTTL = time.Minute
	}
	logger = logger.With("component", "mailprofile")

	return &MailProfileResolver{
		resolver: resolver,
		probe:    newMailProbe(prober, breakers, logger),
		loader:   cache.NewLoader(store, config.TTL, profileLoadTimeout),
		config:   config,
		logger:   logger,
		now:      time.Now,
		newLocal: func() string { return catchAllPrefix + uuid.NewString() },
	}
}

// Resolve devuelve el perfil del dominio. Nunca nil: si la resolución se
// interrumpe, el perfil queda sin resolver y con Err relleno.
func (r *MailProfileResolver) Resolve(ctx context.Context, mailDomain string) *domain.MailProfile {
	mailDomain = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(mailDomain), "."))

	profile, err := r.loader.Get(ctx, mailDomain, func(ctx context.Context) (domain.MailProfile, time.Duration, error) {
		return r.load(ctx, mailDomain)
	})
	if err != nil {
		return &domain.MailProfile{Domain: mailDomain, Err: err.Error(), ResolvedAt: r.now()}
	}
	return &profile
}

func (r *MailProfileResolver) load(ctx context.Context, mailDomain string) (domain.MailProfile, time.Duration, error) {
	p := domain.MailProfile{Domain: mailDomain, ResolvedAt: r.now()}

	lookupCtx := ctx
	if r.config.LookupTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, r.config.LookupTimeout)
		defer cancel()
	}

	records, err := r.resolver.LookupMX(lookupCtx, mailDomain)
	switch {
	case ctx.Err() != nil:
		return p, 0, ctx.Err()
	case isNoSuchHost(err):
		p.Resolved, p.NoMX = true, true
		p.Err = domain.ErrMXNotFound.Error()
		r.logger.Info("no mail exchanger", "domain", mailDomain)
		return p, 0, nil
	case err != nil:
		p.Err = err.Error()
		r.logger.Warn("mx lookup failed", "domain", mailDomain, "error", err.Error())
		return p, r.config.FailureTTL, nil
	}

	p.Resolved = true
	p.MXHosts = mxHosts(records)
	if len(p.MXHosts) == 0 {
		p.NoMX = true
		p.Err = domain.ErrMXNotFound.Error()
		return p, 0, nil
	}

	if r.config.CatchAllProbe {
		r.detectCatchAll(ctx, &p)
	}

	r.logger.Debug("mail profile resolved",
		"domain", mailDomain,
		"mx", p.PrimaryMX(),
		"catch_all", p.CatchAll,
		"probed", p.CatchAllProbed)
	return p, 0, nil
}

// detectCatchAll pregunta por un destinatario que casi seguro no existe. Si
// se acepta, el dominio acepta cualquier cosa.
func (r *MailProfileResolver) detectCatchAll(ctx context.Context, p *domain.MailProfile) {
	rcpt := r.newLocal() + "@" + p.Domain
	pr := r.probe.probe(ctx, p.MXHosts, rcpt)

	switch pr.outcome {
	case domain.HandshakeAccepted:
		p.CatchAll, p.CatchAllProbed = true, true
		r.logger.Info("catch-all domain detected", "domain", p.Domain, "mx", pr.host)
	case domain.HandshakeRejected:
		p.CatchAllProbed = true
	}
}

// mxHosts ordena por preferencia y descarta el null MX de RFC 7505 (".").
func mxHosts(records []*net.MX) []string {
	sorted := make([]*net.MX, 0, len(records))
	for _, mx := range records {
		if mx == nil {
			continue
		}
		sorted = append(sorted, mx)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pref < sorted[j].Pref })

	hosts := make([]string, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	for _, mx := range sorted {
		h := strings.ToLower(strings.TrimSuffix(mx.Host, "."))
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		hosts = append(hosts, h)
	}
	return hosts
}

func isNoSuchHost(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}
