// internal/core/ports/network.go
package ports

import (
	"context"
	"net"

	"emailscope/internal/platform/httpclient"
)

// Fetcher descarga recursos web. Lo implementa *httpclient.Client.
type Fetcher interface {
	// FetchPage descarga una página HTML decodificada a UTF-8.
	FetchPage(ctx context.Context, url string) (*httpclient.Document, error)

	// FetchRaw descarga un recurso sin interpretar el status (robots.txt).
	FetchRaw(ctx context.Context, url string, limit int64) (int, []byte, error)
}

// MXResolver resuelve registros MX. *net.Resolver lo implementa.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// ProbeReply es la respuesta de un servidor SMTP a RCPT TO.
type ProbeReply struct {
	// Code es el código de respuesta de tres dígitos
	Code int

	// Enhanced es el código extendido (RFC 3463), p.ej. "5.1.1"
	Enhanced string

	Message string
}

// Prober abre una sesión SMTP con un exchanger y pregunta si acepta un
// destinatario, sin transmitir nunca un mensaje. Los fallos de transporte
// (timeout, conexión rechazada, greeting inválido) se devuelven como error.
type Prober interface {
	Probe(ctx context.Context, mxHost, rcpt string) (ProbeReply, error)
}
