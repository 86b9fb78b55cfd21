// internal/adapters/httpapi/server.go
package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/core/usecases"
	"emailscope/internal/platform/errors"
	"emailscope/internal/platform/logx"
	"emailscope/internal/platform/validator"
)

// RunService es lo que la API necesita del RunManager.
type RunService interface {
	StartRun(domainName string, opts usecases.RunOptions) (string, error)
	GetProgress(runID string) (domain.ReportSnapshot, error)
	CancelRun(runID string) error
	Subscribe(runID string) (<-chan ports.Event, func(), error)
	Runs() []string
}

// Options configura el servidor.
type Options struct {
	// Defaults se aplican a los campos que la petición no trae
	Defaults usecases.RunOptions
	Version  string
	Logger   logx.Logger
}

// Server expone el RunManager por HTTP y websocket.
type Server struct {
	app      *fiber.App
	runs     RunService
	defaults usecases.RunOptions
	version  string
	started  time.Time
	logger   logx.Logger
}

// CreateRunRequest es el cuerpo de POST /api/runs.
type CreateRunRequest struct {
	Domain            string `json:"domain" validate:"required,max=253"`
	MaxDepth          *int   `json:"maxDepth" validate:"omitempty,gte=0,lte=10"`
	MaxPages          *int   `json:"maxPages" validate:"omitempty,gte=1,lte=5000"`
	VerifyConcurrency *int   `json:"verifyConcurrency" validate:"omitempty,gte=1,lte=32"`
	Subdomains        *bool  `json:"subdomains"`
}

// Options combina la petición con los valores por defecto.
func (r CreateRunRequest) Options(defaults usecases.RunOptions) usecases.RunOptions {
	opts := defaults
	if r.MaxDepth != nil {
		opts.MaxDepth = *r.MaxDepth
	}
	if r.MaxPages != nil {
		opts.MaxPages = *r.MaxPages
	}
	if r.VerifyConcurrency != nil {
		opts.VerifyConcurrency = *r.VerifyConcurrency
	}
	if r.Subdomains != nil {
		opts.Subdomains = *r.Subdomains
	}
	return opts
}

// errorResponse es el cuerpo de cualquier respuesta de error.
type errorResponse struct {
	Error string `json:"error"`
}

// snapshotMessage es el primer mensaje de /ws/runs/:id.
type snapshotMessage struct {
	Type   string                `json:"type"`
	Report domain.ReportSnapshot `json:"report"`
}

// New crea el servidor y registra las rutas.
func New(runs RunService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Defaults == (usecases.RunOptions{}) {
		opts.Defaults = usecases.DefaultRunOptions()
	}

	s := &Server{
		runs:     runs,
		defaults: opts.Defaults,
		version:  opts.Version,
		started:  time.Now(),
		logger:   opts.Logger.With("component", "httpapi"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "emailscope",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", s.health)

	api := s.app.Group("/api")
	api.Post("/runs", s.createRun)
	api.Get("/runs", s.listRuns)
	api.Get("/runs/:id", s.getRun)
	api.Get("/runs/:id/records", s.getRecords)
	api.Delete("/runs/:id", s.cancelRun)

	ws := s.app.Group("/ws")
	ws.Use("/runs/:id", s.upgradeGuard)
	ws.Get("/runs/:id", websocket.New(s.streamRun))
}

// App expone la aplicación fiber (tests y montaje en otro servidor).
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen bloquea sirviendo en addr hasta Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http api listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown cierra el listener y espera a las peticiones en curso.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"runs":    len(s.runs.Runs()),
	})
}

func (s *Server) createRun(c *fiber.Ctx) error {
	var req CreateRunRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	id, err := s.runs.StartRun(req.Domain, req.Options(s.defaults))
	if err != nil {
		return err
	}

	s.logger.Info("run accepted", "run_id", id, "domain", req.Domain, "remote", c.IP())
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"runId": id})
}

func (s *Server) listRuns(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"runs": s.runs.Runs()})
}

func (s *Server) getRun(c *fiber.Ctx) error {
	snap, err := s.runs.GetProgress(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

func (s *Server) getRecords(c *fiber.Ctx) error {
	snap, err := s.runs.GetProgress(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"runId":     snap.ID,
		"domain":    snap.Domain,
		"sealed":    snap.Sealed,
		"cancelled": snap.Cancelled,
		"records":   snap.Records(),
	})
}

func (s *Server) cancelRun(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.runs.CancelRun(id); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"runId": id, "cancelling": true})
}

// upgradeGuard rechaza peticiones que no son websocket y runs inexistentes
// antes del upgrade, para poder responder con un status HTTP.
func (s *Server) upgradeGuard(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := s.runs.GetProgress(c.Params("id")); err != nil {
		return err
	}
	return c.Next()
}

// streamRun envía el estado actual y después cada evento hasta el final
// de la ejecución o hasta que el cliente cierre.
func (s *Server) streamRun(conn *websocket.Conn) {
	id := conn.Params("id")

	events, unsubscribe, err := s.runs.Subscribe(id)
	if err != nil {
		_ = conn.WriteJSON(errorResponse{Error: err.Error()})
		return
	}
	defer unsubscribe()

	if snap, err := s.runs.GetProgress(id); err == nil {
		if err := conn.WriteJSON(snapshotMessage{Type: "snapshot", Report: snap}); err != nil {
			return
		}
	}

	// El cliente no envía nada; leer solo sirve para detectar el cierre. El
	// lector termina antes de que conn vuelva al pool de fiber.
	raw := conn.Conn
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := raw.ReadMessage(); err != nil {
				unsubscribe()
				return
			}
		}
	}()
	defer func() {
		_ = raw.Close()
		<-readerDone
	}()

	for event := range events {
		if err := conn.WriteJSON(event); err != nil {
			s.logger.Debug("websocket write failed", "run_id", id, "error", err.Error())
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
}

// handleError traduce errores de dominio a status HTTP.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, domain.ErrRunNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, domain.ErrRunFinished):
		code = fiber.StatusConflict
	case errors.Is(err, domain.ErrTooManyRuns):
		code = fiber.StatusTooManyRequests
	case errors.Is(err, domain.ErrEmptyTarget),
		errors.Is(err, domain.ErrInvalidDomain),
		errors.Is(err, domain.ErrInvalidOptions):
		code = fiber.StatusBadRequest
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Err(err, "path", c.Path(), "method", c.Method())
	}
	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}
