// internal/adapters/smtpprobe/smtpprobe.go
package smtpprobe

import (
	"context"
	"fmt"
	"net"
	"net/textproto"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/errors"
	"emailscope/internal/platform/logx"
)

// Config parámetros de la sesión SMTP.
type Config struct {
	Port           int
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	HeloName       string
	MailFrom       string

	// SocksProxy es una URL socks5://[user:pass@]host:port. Vacío = conexión directa.
	SocksProxy string
}

// DefaultConfig retorna la configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Port:           25,
		ConnectTimeout: 10 * time.Second,
		CommandTimeout: 10 * time.Second,
		HeloName:       "emailscope.local",
		MailFrom:       "verify@emailscope.local",
	}
}

// Prober implementa ports.Prober sobre net/textproto. La sesión llega hasta
// RCPT TO y se cierra con QUIT; nunca se envía DATA.
type Prober struct {
	config Config
	dialer proxy.ContextDialer
	logger logx.Logger
}

var _ ports.Prober = (*Prober)(nil)

// New crea el prober. Falla solo si la URL del proxy SOCKS no es válida.
func New(config Config, logger logx.Logger) (*Prober, error) {
	def := DefaultConfig()
	if config.Port <= 0 {
		config.Port = def.Port
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = def.ConnectTimeout
	}
	if config.CommandTimeout <= 0 {
		config.CommandTimeout = def.CommandTimeout
	}
	if config.HeloName == "" {
		config.HeloName = def.HeloName
	}
	if config.MailFrom == "" {
		config.MailFrom = def.MailFrom
	}
	if logger == nil {
		logger = logx.New()
	}

	base := &net.Dialer{Timeout: config.ConnectTimeout}
	var dialer proxy.ContextDialer = base

	if config.SocksProxy != "" {
		u, err := url.Parse(config.SocksProxy)
		if err != nil || u.Host == "" || !strings.HasPrefix(u.Scheme, "socks5") {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "socks proxy %q", config.SocksProxy)
		}
		d, err := proxy.FromURL(u, base)
		if err != nil {
			return nil, errors.Wrapf(err, "socks proxy %q", config.SocksProxy)
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "socks proxy %q has no context dialer", config.SocksProxy)
		}
		dialer = cd
	}

	return &Prober{
		config: config,
		dialer: dialer,
		logger: logger.With("component", "smtpprobe"),
	}, nil
}

// Probe abre una sesión con mxHost y pregunta por rcpt. Una respuesta SMTP a
// RCPT TO, sea cual sea el código, se devuelve como ProbeReply; los fallos de
// transporte como error (ErrHandshakeTimeout o ErrHandshakeRefused).
func (p *Prober) Probe(ctx context.Context, mxHost, rcpt string) (ports.ProbeReply, error) {
	addr := net.JoinHostPort(strings.TrimSuffix(mxHost, "."), strconv.Itoa(p.config.Port))

	dialCtx, cancel := context.WithTimeout(ctx, p.config.ConnectTimeout)
	conn, err := p.dialer.DialContext(dialCtx, "tcp", addr)
	cancel()
	if err != nil {
		return ports.ProbeReply{}, p.transportError(ctx, addr, "dial", err)
	}
	defer conn.Close()

	// Cancelar ctx corta cualquier lectura o escritura pendiente.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	s := &session{tp: textproto.NewConn(conn), conn: conn, ctx: ctx, timeout: p.config.CommandTimeout}

	if _, _, err := s.read(220); err != nil {
		return ports.ProbeReply{}, p.transportError(ctx, addr, "greeting", err)
	}

	if _, _, err := s.cmd(250, "EHLO %s", p.config.HeloName); err != nil {
		if !isReply(err) {
			return ports.ProbeReply{}, p.transportError(ctx, addr, "ehlo", err)
		}
		if _, _, err := s.cmd(250, "HELO %s", p.config.HeloName); err != nil {
			return ports.ProbeReply{}, p.transportError(ctx, addr, "helo", err)
		}
	}

	if _, _, err := s.cmd(250, "MAIL FROM:<%s>", p.config.MailFrom); err != nil {
		return ports.ProbeReply{}, p.transportError(ctx, addr, "mail from", err)
	}

	code, msg, err := s.cmd(0, "RCPT TO:<%s>", rcpt)
	if err != nil {
		return ports.ProbeReply{}, p.transportError(ctx, addr, "rcpt to", err)
	}

	// QUIT es cortesía: su respuesta no cambia el resultado.
	_, _, _ = s.cmd(0, "QUIT")

	reply := ports.ProbeReply{Code: code, Message: firstLine(msg)}
	reply.Enhanced = enhancedCode(reply.Message)

	p.logger.Debug("smtp probe",
		"mx", addr,
		"rcpt", rcpt,
		"code", code,
		"enhanced", reply.Enhanced,
	)
	return reply, nil
}

// transportError clasifica un fallo de la sesión. Los plazos vencidos son
// timeout; el resto (conexión rechazada, greeting 554, EOF) es refused.
func (p *Prober) transportError(ctx context.Context, addr, stage string, err error) error {
	p.logger.Debug("smtp session failed", "mx", addr, "stage", stage, "error", err.Error())

	if ctx.Err() != nil || isTimeout(err) {
		return errors.Wrapf(domain.ErrHandshakeTimeout, "%s %s", addr, stage)
	}
	var te *textproto.Error
	if errors.As(err, &te) {
		return errors.Wrapf(domain.ErrHandshakeRefused, "%s %s: %d %s", addr, stage, te.Code, firstLine(te.Msg))
	}
	return errors.Wrapf(domain.ErrHandshakeRefused, "%s %s: %v", addr, stage, err)
}

// session es una conversación SMTP con plazo por comando.
type session struct {
	tp      *textproto.Conn
	conn    net.Conn
	ctx     context.Context
	timeout time.Duration
}

func (s *session) deadline() {
	d := time.Now().Add(s.timeout)
	if cd, ok := s.ctx.Deadline(); ok && cd.Before(d) {
		d = cd
	}
	if s.ctx.Err() != nil {
		d = time.Unix(1, 0)
	}
	_ = s.conn.SetDeadline(d)
}

func (s *session) read(expect int) (int, string, error) {
	s.deadline()
	return s.tp.ReadResponse(expect)
}

func (s *session) cmd(expect int, format string, args ...any) (int, string, error) {
	s.deadline()
	if err := s.tp.PrintfLine(format, args...); err != nil {
		return 0, "", err
	}
	return s.tp.ReadResponse(expect)
}

func isReply(err error) bool {
	var te *textproto.Error
	return errors.As(err, &te)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

var enhancedRe = regexp.MustCompile(`^([245]\.\d{1,3}\.\d{1,3})\b`)

// enhancedCode extrae el código RFC 3463 del inicio del mensaje ("5.1.1 user unknown").
func enhancedCode(msg string) string {
	if m := enhancedRe.FindStringSubmatch(strings.TrimSpace(msg)); m != nil {
		return m[1]
	}
	return ""
}

func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}

// String describe el destino del prober para logs.
func (p *Prober) String() string {
	if p.config.SocksProxy != "" {
		return fmt.Sprintf("smtp:%d via socks", p.config.Port)
	}
	return fmt.Sprintf("smtp:%d", p.config.Port)
}
