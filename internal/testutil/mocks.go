// internal/testutil/mocks.go
package testutil

import (
	"io"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
)

// Nota: los mocks de ports viven en sus paquetes; aquí solo hay fakes de red
// sin dependencias internas.

// SMTPBehavior describe cómo responde el servidor SMTP falso.
type SMTPBehavior struct {
	// Accept devuelve el código de respuesta para RCPT TO. nil = 250 para todo.
	Accept func(rcpt string) int

	// Stall acepta la conexión pero nunca envía el saludo.
	Stall bool

	// RejectEHLO responde 502 a EHLO para forzar el fallback a HELO.
	RejectEHLO bool
}

// FakeSMTP es un servidor SMTP mínimo en loopback que registra los comandos recibidos.
type FakeSMTP struct {
	Addr string

	ln       net.Listener
	behavior SMTPBehavior

	mu       sync.Mutex
	commands []string
	sessions int
	conns    []net.Conn
}

// StartFakeSMTP arranca el servidor y lo cierra al terminar el test.
func StartFakeSMTP(t *testing.T, behavior SMTPBehavior) *FakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("fake smtp listen: %v", err)
	}

	s := &FakeSMTP{Addr: ln.Addr().String(), ln: ln, behavior: behavior}
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

// Host devuelve la parte host de Addr.
func (s *FakeSMTP) Host() string {
	h, _, _ := net.SplitHostPort(s.Addr)
	return h
}

// Port devuelve la parte puerto de Addr.
func (s *FakeSMTP) Port() string {
	_, p, _ := net.SplitHostPort(s.Addr)
	return p
}

// Commands devuelve una copia de los comandos recibidos en orden.
func (s *FakeSMTP) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// Sessions devuelve el número de conexiones aceptadas.
func (s *FakeSMTP) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

// Close detiene el listener y corta las sesiones abiertas.
func (s *FakeSMTP) Close() {
	_ = s.ln.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.Close()
	}
}

func (s *FakeSMTP) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.sessions++
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		go s.handle(conn)
	}
}

func (s *FakeSMTP) handle(conn net.Conn) {
	defer conn.Close()

	if s.behavior.Stall {
		_, _ = io.Copy(io.Discard, conn)
		return
	}

	tp := textproto.NewConn(conn)
	_ = tp.PrintfLine("220 fake.local ESMTP ready")

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.commands = append(s.commands, line)
		s.mu.Unlock()

		verb := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(verb, "EHLO"):
			if s.behavior.RejectEHLO {
				_ = tp.PrintfLine("502 command not implemented")
				continue
			}
			_ = tp.PrintfLine("250-fake.local")
			_ = tp.PrintfLine("250 8BITMIME")
		case strings.HasPrefix(verb, "HELO"):
			_ = tp.PrintfLine("250 fake.local")
		case strings.HasPrefix(verb, "MAIL FROM:"):
			_ = tp.PrintfLine("250 sender ok")
		case strings.HasPrefix(verb, "RCPT TO:"):
			rcpt := strings.Trim(strings.TrimSpace(line[len("RCPT TO:"):]), "<>")
			code := 250
			if s.behavior.Accept != nil {
				code = s.behavior.Accept(rcpt)
			}
			_ = tp.PrintfLine("%d %s", code, replyText(code))
		case strings.HasPrefix(verb, "RSET"), strings.HasPrefix(verb, "NOOP"):
			_ = tp.PrintfLine("250 ok")
		case strings.HasPrefix(verb, "QUIT"):
			_ = tp.PrintfLine("221 bye")
			return
		default:
			_ = tp.PrintfLine("502 command not implemented")
		}
	}
}

func replyText(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "recipient ok"
	case code == 550:
		return "5.1.1 user unknown"
	case code >= 400 && code < 500:
		return "try again later"
	default:
		return "rejected"
	}
}
