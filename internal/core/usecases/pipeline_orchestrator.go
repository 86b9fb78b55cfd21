// internal/core/usecases/pipeline_orchestrator.go
package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/logx"
	"emailscope/internal/platform/ui"
	"emailscope/internal/platform/validator"
)

// RunOptions son los parámetros de una ejecución.
type RunOptions struct {
	MaxDepth          int  `json:"maxDepth" validate:"gte=0,lte=10"`
	MaxPages          int  `json:"maxPages" validate:"gte=1,lte=5000"`
	VerifyConcurrency int  `json:"verifyConcurrency" validate:"gte=1,lte=32"`
	Subdomains        bool `json:"subdomains"`
}

// DefaultRunOptions retorna las opciones por defecto.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		MaxDepth:          2,
		MaxPages:          50,
		VerifyConcurrency: 3,
		Subdomains:        true,
	}
}

// Validate comprueba los rangos de las opciones.
func (o RunOptions) Validate() error {
	if err := validator.Struct(o); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidOptions, err)
	}
	return nil
}

// PipelineOrchestrator encadena crawl → extract → verify para un dominio.
type PipelineOrchestrator struct {
	crawler   *Crawler
	extractor *Extractor
	profiles  *MailProfileResolver
	verifier  *Verifier
	dedupe    *DedupeService
	logger    logx.Logger

	// verifyTimeout acota cada verificación, que corre desacoplada de la
	// cancelación de la ejecución.
	verifyTimeout time.Duration
	notifyTimeout time.Duration
	delayFloor    time.Duration

	observers []ports.Notifier
	presenter ui.Presenter
}

// PipelineOrchestratorOptions configura el pipeline orchestrator.
type PipelineOrchestratorOptions struct {
	Crawler   *Crawler
	Extractor *Extractor
	Profiles  *MailProfileResolver
	Verifier  *Verifier
	Logger    logx.Logger
	Observers []ports.Notifier
	Presenter ui.Presenter

	VerifyTimeout time.Duration
	NotifyTimeout time.Duration

	// DelayFloor solo se muestra en el presenter
	DelayFloor time.Duration
}

// NewPipelineOrchestrator crea una nueva instancia del pipeline orchestrator.
func NewPipelineOrchestrator(opts PipelineOrchestratorOptions) *PipelineOrchestrator {
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Presenter == nil {
		opts.Presenter = ui.NewNoopPresenter()
	}
	if opts.VerifyTimeout <= 0 {
		opts.VerifyTimeout = 60 * time.Second
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 5 * time.Second
	}

	return &PipelineOrchestrator{
		crawler:       opts.Crawler,
		extractor:     opts.Extractor,
		profiles:      opts.Profiles,
		verifier:      opts.Verifier,
		dedupe:        NewDedupeService(),
		logger:        opts.Logger.With("component", "pipeline_orchestrator"),
		verifyTimeout: opts.VerifyTimeout,
		notifyTimeout: opts.NotifyTimeout,
		delayFloor:    opts.DelayFloor,
		observers:     opts.Observers,
		presenter:     opts.Presenter,
	}
}

// Run valida el dominio y ejecuta el pipeline completo. El único error
// posible es un dominio u opciones inválidos, antes de cualquier acceso a red.
func (p *PipelineOrchestrator) Run(ctx context.Context, domainName string, opts RunOptions) (*domain.PipelineReport, error) {
	report, target, err := p.Prepare(uuid.NewString(), domainName, opts)
	if err != nil {
		return nil, err
	}
	p.Execute(ctx, report, target, opts, nil)
	return report, nil
}

// Prepare valida la entrada y crea el reporte vacío de la ejecución.
func (p *PipelineOrchestrator) Prepare(runID, domainName string, opts RunOptions) (*domain.PipelineReport, domain.Target, error) {
	if err := opts.Validate(); err != nil {
		return nil, domain.Target{}, err
	}
	target, err := domain.NewTarget(domainName, opts.Subdomains)
	if err != nil {
		return nil, domain.Target{}, err
	}
	return domain.NewPipelineReport(runID, target.Root, time.Now()), target, nil
}

// Execute ejecuta el pipeline sobre un reporte ya creado y lo sella. Nunca
// falla: los errores de página y de candidato quedan en el reporte. extra
// recibe los eventos de esta ejecución además de los observers globales.
func (p *PipelineOrchestrator) Execute(ctx context.Context, report *domain.PipelineReport, target domain.Target, opts RunOptions, extra ports.Notifier) {
	startTime := time.Now()
	run := &runState{
		orchestrator: p,
		report:       report,
		extra:        extra,
		logger:       p.logger.With("run_id", report.ID(), "domain", target.Root),
	}

	run.logger.Info("starting pipeline execution",
		"max_depth", opts.MaxDepth,
		"max_pages", opts.MaxPages,
		"verify_concurrency", opts.VerifyConcurrency,
	)

	p.presenter.Start(ui.RunInfo{
		RunID:             report.ID(),
		Target:            target.Root,
		MaxDepth:          opts.MaxDepth,
		MaxPages:          opts.MaxPages,
		VerifyConcurrency: opts.VerifyConcurrency,
		CrawlDelay:        p.delayFloor,
		Subdomains:        target.Subdomains,
	})
	defer p.presenter.Close()

	run.emit(ctx, ports.EventRunStarted, nil)

	pages, crawlErr := run.crawl(ctx, target, opts)
	candidates := run.extract(ctx, target, pages)
	verified := run.verify(ctx, candidates, opts.VerifyConcurrency)

	cancelled := crawlErr != nil || verified < len(candidates)
	report.Seal(cancelled, time.Now())

	snapshot := report.Snapshot()
	eventType := ports.EventRunCompleted
	if cancelled {
		eventType = ports.EventRunCancelled
		p.presenter.Warning(fmt.Sprintf("run cancelled: %d of %d candidates verified", verified, len(candidates)))
	}
	run.emit(ctx, eventType, nil)

	byStatus := make(map[string]int, len(snapshot.Counts))
	for st, n := range snapshot.Counts {
		byStatus[st.String()] = n
	}
	p.presenter.Finish(ui.RunStats{
		Duration:        time.Since(startTime),
		PagesFetched:    snapshot.PagesFetched,
		PagesSkipped:    snapshot.PagesSkipped,
		PagesDisallowed: snapshot.PagesDisallowed,
		Candidates:      snapshot.CandidateCount,
		Results:         len(snapshot.Results),
		ByStatus:        byStatus,
		Cancelled:       cancelled,
	})

	run.logger.Info("pipeline execution completed",
		"duration_ms", time.Since(startTime).Milliseconds(),
		"pages", snapshot.PagesFetched,
		"candidates", snapshot.CandidateCount,
		"results", len(snapshot.Results),
		"cancelled", cancelled,
	)
}

// runState es el estado de una sola ejecución.
type runState struct {
	orchestrator *PipelineOrchestrator
	report       *domain.PipelineReport
	extra        ports.Notifier
	logger       logx.Logger
}

func (r *runState) crawl(ctx context.Context, target domain.Target, opts RunOptions) ([]domain.Page, error) {
	p := r.orchestrator
	start := time.Now()
	p.presenter.StartPhase(ui.PhaseCrawl)

	stream := p.crawler.Crawl(ctx, target, CrawlOptions{MaxDepth: opts.MaxDepth, MaxPages: opts.MaxPages})

	var pages []domain.Page
	for {
		page, ok := stream.Next(ctx)
		if !ok {
			break
		}
		r.report.RecordPage(page.Status)
		if page.Fetched() {
			pages = append(pages, page)
		}

		r.emit(ctx, ports.EventCrawlPage, func(e *ports.Event) {
			e.Page = &ports.PageSummary{
				URL:        page.URL,
				Depth:      page.Depth,
				Status:     page.Status,
				SkipReason: page.SkipReason,
			}
			if page.Status == domain.PageStatusSkipped {
				e.Severity = ports.EventSeverityWarning
			}
		})
		p.presenter.UpdatePhase(ui.PhaseCrawl, stream.Fetched(), opts.MaxPages, page.URL)
	}

	status := ui.StatusSuccess
	if stream.Err() != nil {
		status = ui.StatusWarning
		r.logger.Warn("crawl interrupted", "error", stream.Err().Error(), "pages", len(pages))
	}
	p.presenter.FinishPhase(ui.PhaseCrawl, status, time.Since(start), len(pages))
	return pages, stream.Err()
}

func (r *runState) extract(ctx context.Context, target domain.Target, pages []domain.Page) []domain.Candidate {
	p := r.orchestrator
	start := time.Now()
	p.presenter.StartPhase(ui.PhaseExtract)

	candidates := p.dedupe.Deduplicate(p.extractor.Extract(target, pages))
	r.report.SetCandidateCount(len(candidates))

	r.emit(ctx, ports.EventExtractDone, func(e *ports.Event) {
		e.Message = fmt.Sprintf("%d candidates from %d pages", len(candidates), len(pages))
	})
	p.presenter.FinishPhase(ui.PhaseExtract, ui.StatusSuccess, time.Since(start), len(candidates))
	return candidates
}

// verify verifica los candidatos con concurrencia acotada. Tras cancelar ctx
// no se programan más verificaciones; las que están en vuelo terminan con su
// propio timeout. Los resultados entran al reporte en orden de descubrimiento.
// Devuelve cuántos candidatos se verificaron.
func (r *runState) verify(ctx context.Context, candidates []domain.Candidate, concurrency int) int {
	p := r.orchestrator
	if len(candidates) == 0 {
		return 0
	}

	start := time.Now()
	p.presenter.StartPhase(ui.PhaseVerify)

	flusher := &orderedFlusher{
		slots: make([]*domain.VerificationResult, len(candidates)),
		flush: func(res domain.VerificationResult) {
			if !r.report.Append(res) {
				return
			}
			r.emit(ctx, ports.EventVerifyResult, func(e *ports.Event) {
				e.Result = &res
			})
			p.presenter.UpdatePhase(ui.PhaseVerify, r.report.Len(), len(candidates), res.Candidate.Email)
		},
	}

	detached := context.WithoutCancel(ctx)

	// El turno se toma antes de programar, así un cancel que llega mientras
	// se espera turno no deja pasar otra verificación.
	sem := make(chan struct{}, max(1, concurrency))
	g := new(errgroup.Group)

	scheduled := 0
schedule:
	for i, c := range candidates {
		select {
		case <-ctx.Done():
			break schedule
		case sem <- struct{}{}:
		}
		if ctx.Err() != nil {
			<-sem
			break
		}
		scheduled++
		i, c := i, c
		g.Go(func() error {
			defer func() { <-sem }()
			vctx, cancel := context.WithTimeout(detached, p.verifyTimeout)
			defer cancel()

			profile := p.profiles.Resolve(vctx, c.Domain())
			res := p.verifier.Verify(vctx, c, profile)
			flusher.put(i, res)
			return nil
		})
	}
	_ = g.Wait()

	status := ui.StatusSuccess
	if scheduled < len(candidates) {
		status = ui.StatusWarning
		r.logger.Warn("verification stopped early", "verified", scheduled, "candidates", len(candidates))
	}
	p.presenter.FinishPhase(ui.PhaseVerify, status, time.Since(start), scheduled)
	return scheduled
}

// emit construye un evento con el progreso actual y lo entrega a los
// observers y al notifier propio de la ejecución.
func (r *runState) emit(ctx context.Context, eventType ports.EventType, fill func(*ports.Event)) {
	event := ports.NewEvent(eventType, r.report.ID(), r.report.Domain())
	event.Progress = ports.ProgressFrom(r.report.Snapshot())
	if fill != nil {
		fill(&event)
	}

	notifiers := r.orchestrator.observers
	if r.extra != nil {
		notifiers = append(append([]ports.Notifier(nil), notifiers...), r.extra)
	}
	r.orchestrator.notify(ctx, notifiers, event)
}

// notify entrega el evento a cada notifier en orden. Se usa un contexto sin
// cancelación para que los eventos finales lleguen tras un cancel.
func (p *PipelineOrchestrator) notify(ctx context.Context, notifiers []ports.Notifier, event ports.Event) {
	for _, n := range notifiers {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.notifyTimeout)
		if err := n.Notify(notifyCtx, event); err != nil {
			p.logger.Warn("notification failed", "event", string(event.Type), "error", err.Error())
		}
		cancel()
	}
}

// orderedFlusher recibe resultados en cualquier orden y los entrega en el
// orden de los índices, sin huecos.
type orderedFlusher struct {
	mu    sync.Mutex
	slots []*domain.VerificationResult
	next  int
	flush func(domain.VerificationResult)
}

func (f *orderedFlusher) put(i int, res domain.VerificationResult) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.slots[i] = &res
	for f.next < len(f.slots) && f.slots[f.next] != nil {
		f.flush(*f.slots[f.next])
		f.slots[f.next] = nil
		f.next++
	}
}
