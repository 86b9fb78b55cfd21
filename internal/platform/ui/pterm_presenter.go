// internal/platform/ui/pterm_presenter.go
package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// PTermPresenter implementa Presenter usando la biblioteca pterm
// para renderizar spinners, colores y símbolos en la terminal.
type PTermPresenter struct {
	mu sync.Mutex

	runStartTime time.Time
	info         RunInfo

	// Un spinner por fase activa
	spinners map[Phase]*pterm.SpinnerPrinter
	started  map[Phase]time.Time

	writer io.Writer
}

// NewPTermPresenter crea una nueva instancia del presenter con pterm
func NewPTermPresenter() *PTermPresenter {
	return &PTermPresenter{
		spinners: make(map[Phase]*pterm.SpinnerPrinter),
		started:  make(map[Phase]time.Time),
	}
}

// WithWriter redirige la salida (tests, logs).
func (p *PTermPresenter) WithWriter(w io.Writer) *PTermPresenter {
	p.writer = w
	pterm.SetDefaultOutput(w)
	return p
}

// Start inicia la presentación mostrando la configuración de la ejecución
func (p *PTermPresenter) Start(info RunInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.info = info
	p.runStartTime = time.Now()

	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("EmailScope - Email Discovery")

	pterm.Println()

	infoPanel := pterm.DefaultBox.
		WithTitle("Run Configuration").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan))

	text := fmt.Sprintf("%s Target: %s\n", IconTarget, pterm.Cyan(info.Target))
	if info.RunID != "" {
		text += fmt.Sprintf("   Run: %s\n", pterm.Gray(info.RunID))
	}
	text += fmt.Sprintf("%s Depth: %d  Pages: %d\n", IconPages, info.MaxDepth, info.MaxPages)
	text += fmt.Sprintf("%s Crawl delay floor: %s\n", IconTime, formatDuration(info.CrawlDelay))
	text += fmt.Sprintf("%s Verify concurrency: %d\n", IconWorkers, info.VerifyConcurrency)
	text += fmt.Sprintf("   Subdomains: %s", boolToString(info.Subdomains))

	infoPanel.Println(text)

	pterm.Println()
	pterm.Println(pterm.LightBlue(separator))
	pterm.Println()
}

// StartPhase muestra el título de la fase y arranca su spinner
func (p *PTermPresenter) StartPhase(phase Phase) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started[phase] = time.Now()
	pterm.DefaultSection.WithLevel(2).Println(fmt.Sprintf("%s %s", IconPhase, pterm.Cyan(phase.Title())))

	spinner, _ := pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷").
		WithWriter(p.output()).
		Start(fmt.Sprintf("  %s %s...", StatusRunning.Symbol(), phase.Title()))

	p.spinners[phase] = spinner
}

// UpdatePhase actualiza el texto del spinner de la fase
func (p *PTermPresenter) UpdatePhase(phase Phase, done, total int, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	spinner, ok := p.spinners[phase]
	if !ok {
		return
	}

	text := fmt.Sprintf("  %s %s %s", StatusRunning.Symbol(), phase.Title(), pterm.Cyan(progressText(done, total)))
	if detail != "" {
		text += " " + pterm.Gray(detail)
	}
	spinner.UpdateText(text)
}

// FinishPhase detiene el spinner y deja una línea con el resultado
func (p *PTermPresenter) FinishPhase(phase Phase, status Status, duration time.Duration, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if spinner, ok := p.spinners[phase]; ok {
		_ = spinner.Stop()
		delete(p.spinners, phase)
	}

	line := fmt.Sprintf("  %s %s", status.Symbol(), status.Style().Sprint(phase.Title()))
	if duration > 0 {
		line += fmt.Sprintf(" (%s)", formatDuration(duration))
	}
	if count > 0 {
		line += fmt.Sprintf(" %s", pterm.Cyan(fmt.Sprintf("%d", count)))
	}
	status.Style().Println(line)
	pterm.Println()
}

// Info muestra un mensaje informativo
func (p *PTermPresenter) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Info.Println(msg)
}

// Warning muestra una advertencia
func (p *PTermPresenter) Warning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Warning.Println(msg)
}

// Error muestra un error
func (p *PTermPresenter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Error.Println(msg)
}

// Finish finaliza la presentación con estadísticas finales
func (p *PTermPresenter) Finish(stats RunStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinners()

	pterm.Println()
	pterm.Println(pterm.LightBlue(separator))
	pterm.Println()

	title, bg, box := "Run Completed", pterm.BgGreen, pterm.FgGreen
	if stats.Cancelled {
		title, bg, box = "Run Cancelled", pterm.BgYellow, pterm.FgYellow
	}
	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(bg)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println(title)

	pterm.Println()

	statsPanel := pterm.DefaultBox.
		WithTitle("Run Statistics").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(pterm.NewStyle(box))

	content := fmt.Sprintf("%s Total Duration: %s\n", IconTime, pterm.Green(formatDuration(stats.Duration)))
	content += fmt.Sprintf("%s Pages: %s fetched, %d skipped, %d disallowed\n",
		IconPages,
		pterm.Cyan(fmt.Sprintf("%d", stats.PagesFetched)),
		stats.PagesSkipped,
		stats.PagesDisallowed,
	)
	content += fmt.Sprintf("%s Candidates: %s\n", IconMail, pterm.Cyan(fmt.Sprintf("%d", stats.Candidates)))
	content += fmt.Sprintf("%s Verified: %s", IconSuccess, pterm.Green(fmt.Sprintf("%d", stats.Results)))

	statsPanel.Println(content)

	if stats.Results > 0 {
		pterm.Println()
		pterm.DefaultSection.WithLevel(2).Println("Results by Status")

		tableData := pterm.TableData{{"Status", "Count"}}
		for _, st := range statusOrder {
			tableData = append(tableData, []string{resultLabel(st), fmt.Sprintf("%d", stats.ByStatus[st])})
		}

		_ = pterm.DefaultTable.
			WithHasHeader().
			WithBoxed().
			WithData(tableData).
			Render()
	}

	pterm.Println()
}

// Close limpia recursos del presenter
func (p *PTermPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinners()
	return nil
}

func (p *PTermPresenter) stopSpinners() {
	for phase, spinner := range p.spinners {
		_ = spinner.Stop()
		delete(p.spinners, phase)
	}
}

func (p *PTermPresenter) output() io.Writer {
	if p.writer != nil {
		return p.writer
	}
	return pterm.DefaultSpinner.Writer
}
