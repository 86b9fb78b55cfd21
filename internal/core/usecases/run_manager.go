// internal/core/usecases/run_manager.go
package usecases

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/logx"
)

// subscriberBuffer es la capacidad del canal de cada suscriptor. Si se llena,
// los eventos intermedios se descartan; el evento final siempre se entrega.
const subscriberBuffer = 64

// runRetention es cuánto se conserva una ejecución terminada antes de olvidarla.
const runRetention = time.Hour

// RunManager es la interfaz de disparo para CLI y dashboard: lanza
// ejecuciones en segundo plano y expone su progreso.
type RunManager struct {
	orchestrator *PipelineOrchestrator
	logger       logx.Logger
	maxRuns      int
	retention    time.Duration
	now          func() time.Time

	base   context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	runs   map[string]*managedRun
	active int
}

// NewRunManager crea el gestor. maxRuns <= 0 = sin límite de ejecuciones activas.
func NewRunManager(orchestrator *PipelineOrchestrator, maxRuns int, logger logx.Logger) *RunManager {
	base, stop := context.WithCancel(context.Background())
	return &RunManager{
		orchestrator: orchestrator,
		logger:       logger.With("component", "run_manager"),
		maxRuns:      maxRuns,
		retention:    runRetention,
		now:          time.Now,
		base:         base,
		stop:         stop,
		runs:         make(map[string]*managedRun),
	}
}

// StartRun valida la entrada y lanza la ejecución. Devuelve el ID (UUID).
func (m *RunManager) StartRun(domainName string, opts RunOptions) (string, error) {
	report, target, err := m.orchestrator.Prepare(uuid.NewString(), domainName, opts)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.pruneLocked()
	if m.maxRuns > 0 && m.active >= m.maxRuns {
		m.mu.Unlock()
		return "", domain.ErrTooManyRuns
	}
	ctx, cancel := context.WithCancel(m.base)
	run := &managedRun{
		id:     report.ID(),
		report: report,
		cancel: cancel,
		done:   make(chan struct{}),
		subs:   make(map[int]chan ports.Event),
	}
	m.runs[run.id] = run
	m.active++
	m.mu.Unlock()

	m.logger.Info("run started", "run_id", run.id, "domain", target.Root)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()

		m.orchestrator.Execute(ctx, report, target, opts, run)

		m.mu.Lock()
		m.active--
		run.endedAt = m.now()
		m.mu.Unlock()
		run.finish()
	}()

	return run.id, nil
}

// GetProgress devuelve una instantánea del reporte, parcial o sellado.
func (m *RunManager) GetProgress(runID string) (domain.ReportSnapshot, error) {
	run, err := m.get(runID)
	if err != nil {
		return domain.ReportSnapshot{}, err
	}
	return run.report.Snapshot(), nil
}

// Report devuelve el reporte vivo de una ejecución.
func (m *RunManager) Report(runID string) (*domain.PipelineReport, error) {
	run, err := m.get(runID)
	if err != nil {
		return nil, err
	}
	return run.report, nil
}

// CancelRun pide la cancelación cooperativa. ErrRunFinished si ya terminó.
func (m *RunManager) CancelRun(runID string) error {
	run, err := m.get(runID)
	if err != nil {
		return err
	}
	if run.report.Sealed() {
		return domain.ErrRunFinished
	}
	run.cancel()
	m.logger.Info("run cancel requested", "run_id", runID)
	return nil
}

// Subscribe devuelve un canal con los eventos de la ejecución a partir de
// ahora. El canal se cierra tras el evento final; si la ejecución ya terminó
// se devuelve cerrado. unsubscribe es idempotente.
func (m *RunManager) Subscribe(runID string) (<-chan ports.Event, func(), error) {
	run, err := m.get(runID)
	if err != nil {
		return nil, nil, err
	}
	ch, unsubscribe := run.subscribe()
	return ch, unsubscribe, nil
}

// Wait bloquea hasta que la ejecución termina o ctx se cancela.
func (m *RunManager) Wait(ctx context.Context, runID string) (domain.ReportSnapshot, error) {
	run, err := m.get(runID)
	if err != nil {
		return domain.ReportSnapshot{}, err
	}
	select {
	case <-run.done:
		return run.report.Snapshot(), nil
	case <-ctx.Done():
		return run.report.Snapshot(), ctx.Err()
	}
}

// Runs lista los IDs conocidos, ordenados. Las ejecuciones terminadas hace
// más de la retención ya no aparecen.
func (m *RunManager) Runs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()

	ids := make([]string, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown cancela todas las ejecuciones y espera a que se sellen.
func (m *RunManager) Shutdown(ctx context.Context) error {
	m.stop()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pruneLocked olvida las ejecuciones terminadas fuera de la retención.
// Requiere m.mu.
func (m *RunManager) pruneLocked() {
	now := m.now()
	for id, run := range m.runs {
		if !run.endedAt.IsZero() && now.Sub(run.endedAt) >= m.retention {
			delete(m.runs, id)
		}
	}
}

func (m *RunManager) get(runID string) (*managedRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

// managedRun es una ejecución en segundo plano. Implementa ports.Notifier
// para repartir sus eventos entre los suscriptores.
type managedRun struct {
	id     string
	report *domain.PipelineReport
	cancel context.CancelFunc
	done   chan struct{}

	endedAt time.Time // protegido por RunManager.mu

	mu       sync.Mutex
	subs     map[int]chan ports.Event
	nextSub  int
	finished bool
}

// Notify implementa ports.Notifier. Nunca bloquea.
func (r *managedRun) Notify(_ context.Context, event ports.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ch := range r.subs {
		if event.Type.Terminal() {
			deliverFinal(ch, event)
			continue
		}
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Close implementa ports.Notifier.
func (r *managedRun) Close() error {
	r.finish()
	return nil
}

func (r *managedRun) subscribe() (<-chan ports.Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan ports.Event, subscriberBuffer)
	if r.finished {
		close(ch)
		return ch, func() {}
	}

	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
		})
	}
}

// finish cierra los canales de los suscriptores y marca la ejecución como terminada.
func (r *managedRun) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return
	}
	r.finished = true
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	close(r.done)
}

// deliverFinal hace sitio en un canal lleno descartando el evento más antiguo.
func deliverFinal(ch chan ports.Event, event ports.Event) {
	for {
		select {
		case ch <- event:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
