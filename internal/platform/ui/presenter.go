// internal/platform/ui/presenter.go
package ui

import (
	"time"
)

// Phase es una etapa visible de una ejecución.
type Phase string

const (
	PhaseCrawl   Phase = "crawl"
	PhaseExtract Phase = "extract"
	PhaseVerify  Phase = "verify"
)

// Title retorna el nombre legible de la fase.
func (p Phase) Title() string {
	switch p {
	case PhaseCrawl:
		return "Crawling"
	case PhaseExtract:
		return "Extracting candidates"
	case PhaseVerify:
		return "Verifying"
	default:
		return string(p)
	}
}

// Presenter define la interfaz para presentar el progreso de una ejecución
// crawl → extract → verify de manera visual.
type Presenter interface {
	// Start inicia la presentación con la configuración de la ejecución
	Start(info RunInfo)

	// StartPhase notifica el inicio de una fase
	StartPhase(phase Phase)

	// UpdatePhase actualiza el progreso de la fase en curso.
	// total <= 0 significa que no se conoce el total.
	UpdatePhase(phase Phase, done, total int, detail string)

	// FinishPhase notifica la finalización de una fase
	FinishPhase(phase Phase, status Status, duration time.Duration, count int)

	// Info muestra un mensaje informativo
	Info(msg string)

	// Warning muestra una advertencia
	Warning(msg string)

	// Error muestra un error
	Error(msg string)

	// Finish finaliza la presentación con estadísticas finales
	Finish(stats RunStats)

	// Close limpia recursos del presenter
	Close() error
}

// RunInfo contiene la configuración inicial de la ejecución
type RunInfo struct {
	RunID             string
	Target            string
	MaxDepth          int
	MaxPages          int
	VerifyConcurrency int
	CrawlDelay        time.Duration
	Subdomains        bool
}

// RunStats contiene estadísticas finales de la ejecución
type RunStats struct {
	Duration        time.Duration
	PagesFetched    int
	PagesSkipped    int
	PagesDisallowed int
	Candidates      int
	Results         int
	ByStatus        map[string]int
	Cancelled       bool
}
