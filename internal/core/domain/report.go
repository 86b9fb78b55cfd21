// internal/core/domain/report.go
package domain

import (
	"sync"
	"time"
)

// PipelineReport acumula los resultados de una ejecución. Lo crea el
// orquestador al arrancar, recibe resultados a medida que llegan y se sella
// al terminar. Seguro para Append y Snapshot concurrentes.
type PipelineReport struct {
	mu sync.RWMutex

	id        string
	domain    string
	startedAt time.Time
	endedAt   time.Time

	results []VerificationResult
	index   map[string]int

	pages          map[PageStatus]int
	candidateCount int

	cancelled bool
	sealed    bool
}

// ReportSnapshot es una copia profunda e inmutable del estado de un reporte.
type ReportSnapshot struct {
	ID              string               `json:"id"`
	Domain          string               `json:"domain"`
	StartedAt       time.Time            `json:"started_at"`
	EndedAt         time.Time            `json:"ended_at,omitempty"`
	Results         []VerificationResult `json:"results"`
	Counts          map[Status]int       `json:"counts"`
	PagesFetched    int                  `json:"pages_fetched"`
	PagesSkipped    int                  `json:"pages_skipped"`
	PagesDisallowed int                  `json:"pages_disallowed"`
	CandidateCount  int                  `json:"candidate_count"`
	Cancelled       bool                 `json:"cancelled"`
	Sealed          bool                 `json:"sealed"`
}

// NewPipelineReport crea un reporte vacío.
func NewPipelineReport(id, domain string, startedAt time.Time) *PipelineReport {
	return &PipelineReport{
		id:        id,
		domain:    domain,
		startedAt: startedAt,
		index:     make(map[string]int),
		pages:     make(map[PageStatus]int),
	}
}

// ID retorna el identificador de la ejecución.
func (r *PipelineReport) ID() string { return r.id }

// Domain retorna el dominio objetivo.
func (r *PipelineReport) Domain() string { return r.domain }

// Append añade un resultado. Devuelve false si el reporte está sellado o si
// ya existe un resultado para el mismo email.
func (r *PipelineReport) Append(result VerificationResult) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return false
	}

	key := result.Candidate.Key()
	if _, dup := r.index[key]; dup {
		return false
	}

	r.index[key] = len(r.results)
	r.results = append(r.results, result)
	return true
}

// RecordPage cuenta una página visitada por estado.
func (r *PipelineReport) RecordPage(status PageStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.sealed {
		r.pages[status]++
	}
}

// SetCandidateCount fija el número de candidatos deduplicados extraídos.
func (r *PipelineReport) SetCandidateCount(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.sealed {
		r.candidateCount = n
	}
}

// Seal congela el reporte. Llamadas posteriores no tienen efecto.
func (r *PipelineReport) Seal(cancelled bool, endedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return
	}
	r.sealed = true
	r.cancelled = cancelled
	r.endedAt = endedAt
}

// Sealed indica si el reporte ya está cerrado.
func (r *PipelineReport) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Cancelled indica si la ejecución se canceló antes de completarse.
func (r *PipelineReport) Cancelled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cancelled
}

// Len retorna el número de resultados.
func (r *PipelineReport) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.results)
}

// Has indica si ya hay resultado para un email.
func (r *PipelineReport) Has(email string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[(Candidate{Email: email}).Key()]
	return ok
}

// Counts retorna el número de resultados por estado.
func (r *PipelineReport) Counts() map[Status]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countsLocked()
}

func (r *PipelineReport) countsLocked() map[Status]int {
	counts := make(map[Status]int, len(AllStatuses))
	for _, s := range AllStatuses {
		counts[s] = 0
	}
	for _, res := range r.results {
		counts[res.Status]++
	}
	return counts
}

// Snapshot retorna una copia profunda del estado actual (posiblemente parcial).
func (r *PipelineReport) Snapshot() ReportSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]VerificationResult, len(r.results))
	for i, res := range r.results {
		res.Candidate.Pages = append([]string(nil), res.Candidate.Pages...)
		results[i] = res
	}

	return ReportSnapshot{
		ID:              r.id,
		Domain:          r.domain,
		StartedAt:       r.startedAt,
		EndedAt:         r.endedAt,
		Results:         results,
		Counts:          r.countsLocked(),
		PagesFetched:    r.pages[PageStatusFetched],
		PagesSkipped:    r.pages[PageStatusSkipped],
		PagesDisallowed: r.pages[PageStatusDisallowed],
		CandidateCount:  r.candidateCount,
		Cancelled:       r.cancelled,
		Sealed:          r.sealed,
	}
}

// Records retorna los resultados como filas planas en orden de descubrimiento.
func (r *PipelineReport) Records() []Record {
	return r.Snapshot().Records()
}

// Records retorna las filas planas del snapshot.
func (s ReportSnapshot) Records() []Record {
	records := make([]Record, 0, len(s.Results))
	for _, res := range s.Results {
		records = append(records, res.Record())
	}
	return records
}

// Duration retorna la duración de la ejecución (hasta ahora si no terminó).
func (s ReportSnapshot) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}
