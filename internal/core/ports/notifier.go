// internal/core/ports/notifier.go
package ports

import (
	"context"
	"time"

	"emailscope/internal/core/domain"
)

// Notifier es el port para eventos de progreso de una ejecución.
// Desacopla el orquestador de los consumidores (dashboard, CLI, JSONL).
type Notifier interface {
	// Notify entrega un evento. No debe bloquear al pipeline por mucho tiempo.
	Notify(ctx context.Context, event Event) error

	// Close cierra el notifier y libera recursos
	Close() error
}

// NotifierFunc adapta una función a Notifier.
type NotifierFunc func(ctx context.Context, event Event) error

// Notify implementa Notifier.
func (f NotifierFunc) Notify(ctx context.Context, event Event) error { return f(ctx, event) }

// Close implementa Notifier.
func (f NotifierFunc) Close() error { return nil }

// Event representa un evento de progreso de una ejecución.
type Event struct {
	Type      EventType     `json:"type"`
	RunID     string        `json:"run_id"`
	Domain    string        `json:"domain"`
	Timestamp time.Time     `json:"timestamp"`
	Severity  EventSeverity `json:"severity"`

	// Page solo en crawl.page
	Page *PageSummary `json:"page,omitempty"`

	// Result solo en verify.result
	Result *domain.VerificationResult `json:"result,omitempty"`

	Progress Progress `json:"progress"`
	Message  string   `json:"message,omitempty"`
}

// PageSummary es la vista ligera de una página para eventos.
type PageSummary struct {
	URL        string            `json:"url"`
	Depth      int               `json:"depth"`
	Status     domain.PageStatus `json:"status"`
	SkipReason string            `json:"skip_reason,omitempty"`
}

// Progress son los contadores acumulados en el momento del evento.
type Progress struct {
	PagesFetched    int `json:"pages_fetched"`
	PagesSkipped    int `json:"pages_skipped"`
	PagesDisallowed int `json:"pages_disallowed"`
	Candidates      int `json:"candidates"`
	Verified        int `json:"verified"`
}

// EventType define los tipos de eventos del pipeline.
type EventType string

const (
	EventRunStarted   EventType = "run.started"
	EventCrawlPage    EventType = "crawl.page"
	EventExtractDone  EventType = "extract.done"
	EventVerifyResult EventType = "verify.result"
	EventRunCompleted EventType = "run.completed"
	EventRunCancelled EventType = "run.cancelled"
	EventRunFailed    EventType = "run.failed"
)

// Terminal indica si el evento cierra la ejecución.
func (t EventType) Terminal() bool {
	return t == EventRunCompleted || t == EventRunCancelled || t == EventRunFailed
}

// EventSeverity define la severidad de un evento.
type EventSeverity string

const (
	EventSeverityInfo    EventSeverity = "info"
	EventSeverityWarning EventSeverity = "warning"
	EventSeverityError   EventSeverity = "error"
)

// NewEvent crea un nuevo evento.
func NewEvent(eventType EventType, runID, domainName string) Event {
	return Event{
		Type:      eventType,
		RunID:     runID,
		Domain:    domainName,
		Timestamp: time.Now(),
		Severity:  EventSeverityInfo,
	}
}

// ProgressFrom deriva los contadores de un snapshot del reporte.
func ProgressFrom(s domain.ReportSnapshot) Progress {
	return Progress{
		PagesFetched:    s.PagesFetched,
		PagesSkipped:    s.PagesSkipped,
		PagesDisallowed: s.PagesDisallowed,
		Candidates:      s.CandidateCount,
		Verified:        len(s.Results),
	}
}
