// internal/core/usecases/verifier.go
package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/errors"
	"emailscope/internal/platform/logx"
	"emailscope/internal/platform/resilience"
)

// maxMXAttempts limita cuántos exchangers se prueban cuando el primero falla
// a nivel de transporte.
const maxMXAttempts = 2

// probeResult es el resultado clasificado de una sesión SMTP.
type probeResult struct {
	host    string
	outcome domain.HandshakeOutcome
	reply   ports.ProbeReply
	err     error
}

// mailProbe envuelve el Prober con un circuit breaker por exchanger.
// Lo comparten el Verifier y el MailProfileResolver.
type mailProbe struct {
	prober   ports.Prober
	breakers *resilience.BreakerSet
	logger   logx.Logger
}

func newMailProbe(prober ports.Prober, breakers *resilience.BreakerSet, logger logx.Logger) *mailProbe {
	if breakers == nil {
		breakers = resilience.NewBreakerSet(3, 2*time.Minute)
	}
	return &mailProbe{prober: prober, breakers: breakers, logger: logger}
}

// probe pregunta por rcpt a los exchangers en orden. Solo pasa al siguiente
// si el anterior falló a nivel de transporte; una respuesta SMTP es definitiva.
func (m *mailProbe) probe(ctx context.Context, hosts []string, rcpt string) probeResult {
	last := probeResult{outcome: domain.HandshakeUnknown, err: domain.ErrMXNotFound}

	for i, host := range hosts {
		if i >= maxMXAttempts || ctx.Err() != nil {
			break
		}

		var reply ports.ProbeReply
		err := m.breakers.Get(host).Execute(func() error {
			var err error
			reply, err = m.prober.Probe(ctx, host, rcpt)
			return err
		}, isTransportFailure)

		if err == nil {
			return probeResult{host: host, outcome: classifyReply(reply), reply: reply}
		}

		m.logger.Debug("smtp probe failed", "mx", host, "rcpt", rcpt, "error", err.Error())
		last = probeResult{host: host, outcome: domain.HandshakeUnknown, reply: reply, err: err}
	}
	return last
}

// isTransportFailure decide qué errores cuentan para el breaker. Una
// cancelación del llamador no dice nada del exchanger.
func isTransportFailure(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}

// classifyReply traduce la respuesta a RCPT TO: 250/251 acepta; 550, 551,
// 553 o un 5.1.x rechaza. El resto (4xx, 252, otros 5xx) no es concluyente.
func classifyReply(r ports.ProbeReply) domain.HandshakeOutcome {
	switch {
	case r.Code == 250 || r.Code == 251:
		return domain.HandshakeAccepted
	case r.Code == 550 || r.Code == 551 || r.Code == 553:
		return domain.HandshakeRejected
	case r.Code >= 500 && strings.HasPrefix(r.Enhanced, "5.1."):
		return domain.HandshakeRejected
	default:
		return domain.HandshakeUnknown
	}
}

// Verifier puntúa candidatos contra el perfil de correo de su dominio.
type Verifier struct {
	probe  *mailProbe
	table  ScoringTable
	logger logx.Logger
	now    func() time.Time
}

// NewVerifier crea un verifier. breakers se comparte con el resolver de perfiles
// para que el sondeo catch-all y los candidatos cuenten contra el mismo exchanger.
func NewVerifier(prober ports.Prober, breakers *resilience.BreakerSet, table ScoringTable, logger logx.Logger) *Verifier {
	logger = logger.With("component", "verifier")
	return &Verifier{
		probe:  newMailProbe(prober, breakers, logger),
		table:  table,
		logger: logger,
		now:    time.Now,
	}
}

// Verify nunca falla: cualquier error de red queda reflejado en el resultado
// como handshake unknown y estado unverifiable.
func (v *Verifier) Verify(ctx context.Context, c domain.Candidate, profile *domain.MailProfile) domain.VerificationResult {
	res := domain.VerificationResult{
		Candidate: c,
		Handshake: domain.HandshakeSkipped,
	}
	signals := Signals{
		Source:    c.Source,
		Sightings: c.Sightings,
	}

	// Sin MX no hay buzón posible: gana sobre el descarte por dominio desechable.
	switch {
	case profile == nil || profile.NoMX:
		signals.NoMX = true
		res.Reason = domain.ErrMXNotFound.Error()

	case isDisposableDomain(c.Domain()):
		signals.Disposable = true
		res.Reason = "disposable or no-reply domain"

	case !profile.HasMX():
		res.Reason = fmt.Sprintf("mx lookup failed: %s", profile.Err)

	default:
		res.MXResolved = true
		res.MXHost = profile.PrimaryMX()
		res.CatchAll = profile.CatchAll
		signals.MXResolved = true
		signals.CatchAll = profile.CatchAll

		pr := v.probe.probe(ctx, profile.MXHosts, c.Email)
		if pr.host != "" {
			res.MXHost = pr.host
		}
		res.SMTPCode = pr.reply.Code
		res.Handshake = pr.outcome
		if pr.outcome == domain.HandshakeAccepted && profile.CatchAll {
			res.Handshake = domain.HandshakeCatchAll
		}
		res.Reason = probeReason(pr, profile.CatchAll)
	}

	signals.Handshake = res.Handshake
	res.Confidence, res.Status = v.table.Score(signals)
	res.CheckedAt = v.now()

	v.logger.Debug("candidate verified",
		"email", c.Email,
		"handshake", res.Handshake.String(),
		"confidence", res.Confidence,
		"status", res.Status.String())
	return res
}

func probeReason(pr probeResult, catchAll bool) string {
	switch {
	case pr.err != nil:
		switch {
		case errors.Is(pr.err, resilience.ErrCircuitOpen):
			return "mail exchanger unavailable (circuit open)"
		case errors.Is(pr.err, domain.ErrHandshakeTimeout):
			return domain.ErrHandshakeTimeout.Error()
		case errors.Is(pr.err, domain.ErrHandshakeRefused):
			return domain.ErrHandshakeRefused.Error()
		}
		return pr.err.Error()
	case pr.outcome == domain.HandshakeAccepted && catchAll:
		return fmt.Sprintf("%d accepted on %s", pr.reply.Code, domain.ErrCatchAll)
	default:
		msg := fmt.Sprintf("%d", pr.reply.Code)
		if pr.reply.Message != "" {
			msg += " " + pr.reply.Message
		}
		return msg
	}
}
