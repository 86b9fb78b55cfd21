// internal/core/domain/verification.go
package domain

import "time"

// VerificationResult es el veredicto de un candidato. Inmutable una vez producido.
type VerificationResult struct {
	Candidate  Candidate        `json:"candidate"`
	MXResolved bool             `json:"mx_resolved"`
	MXHost     string           `json:"mx_host,omitempty"`
	Handshake  HandshakeOutcome `json:"handshake"`
	SMTPCode   int              `json:"smtp_code,omitempty"`
	CatchAll   bool             `json:"catch_all"`
	Confidence int              `json:"confidence"`
	Status     Status           `json:"status"`
	Reason     string           `json:"reason,omitempty"`
	CheckedAt  time.Time        `json:"checked_at"`
}

// Record es el contrato de exportación: una fila plana por resultado.
type Record struct {
	Email      string `json:"email"`
	Source     string `json:"source"`
	Status     string `json:"status"`
	Confidence int    `json:"confidence"`
	PageURL    string `json:"page_url"`
	PersonName string `json:"person_name"`
}

// Record aplana el resultado.
func (r VerificationResult) Record() Record {
	return Record{
		Email:      r.Candidate.Email,
		Source:     r.Candidate.Source.String(),
		Status:     r.Status.String(),
		Confidence: r.Confidence,
		PageURL:    r.Candidate.PageURL,
		PersonName: r.Candidate.PersonName,
	}
}

// MailProfile es lo que se sabe de la infraestructura de correo de un dominio.
// Se resuelve una vez por dominio y se comparte entre candidatos.
type MailProfile struct {
	Domain string `json:"domain"`

	// MXHosts en orden de prioridad (preferencia MX ascendente)
	MXHosts []string `json:"mx_hosts,omitempty"`

	// Resolved indica que la consulta DNS terminó (con o sin registros)
	Resolved bool `json:"resolved"`
	NoMX     bool `json:"no_mx"`

	CatchAll       bool `json:"catch_all"`
	CatchAllProbed bool `json:"catch_all_probed"`

	Err        string    `json:"error,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// PrimaryMX retorna el exchanger de mayor prioridad, o "" si no hay.
func (p *MailProfile) PrimaryMX() string {
	if p == nil || len(p.MXHosts) == 0 {
		return ""
	}
	return p.MXHosts[0]
}

// HasMX indica si hay al menos un exchanger al que hablar.
func (p *MailProfile) HasMX() bool {
	return p != nil && p.Resolved && !p.NoMX && len(p.MXHosts) > 0
}
