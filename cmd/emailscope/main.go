// cmd/emailscope/main.go
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"emailscope/internal/adapters/httpapi"
	"emailscope/internal/adapters/output"
	"emailscope/internal/adapters/rediscache"
	"emailscope/internal/adapters/smtpprobe"
	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/core/usecases"
	"emailscope/internal/platform/cache"
	"emailscope/internal/platform/config"
	"emailscope/internal/platform/httpclient"
	"emailscope/internal/platform/logx"
	"emailscope/internal/platform/resilience"
	"emailscope/internal/platform/ui"
	"emailscope/internal/platform/urlfilter"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Config centralizada (gestiona --help/--version)
	cfg, err := config.Load(version, commit, date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration load failed: %v\n", err)
		return 2
	}

	serveMode := cfg.Server.Addr != ""
	if !serveMode && cfg.Core.Target == "" {
		fmt.Fprintln(os.Stderr, "Error: target domain is required")
		fmt.Fprintln(os.Stderr, "Usage: emailscope -d <domain>")
		fmt.Fprintln(os.Stderr, "Try: emailscope -h for help")
		return 2
	}

	// 2. Logger y Sentry
	useUI := !serveMode && !cfg.Core.Quiet
	level := logx.ParseLevel(cfg.Core.LogLevel)
	logger := logx.NewWithLevel(level)
	if useUI && level != logx.LevelDebug {
		logger = logx.NewSilent()
	}

	flush, err := logx.InitSentry(cfg.Core.SentryDSN, cfg.Core.Environment, version)
	if err != nil {
		logger.Warn("sentry disabled", "error", err.Error())
	}
	defer flush()

	logger.Info("EmailScope starting",
		"version", version,
		"commit", commit,
		"target", cfg.Core.Target,
		"serve", cfg.Server.Addr,
		"max_depth", cfg.Crawl.MaxDepth,
		"max_pages", cfg.Crawl.MaxPages,
		"verify_concurrency", cfg.Verify.Concurrency,
	)

	// 3. Componentes compartidos
	var presenter ui.Presenter = ui.NewNoopPresenter()
	if useUI {
		presenter = ui.NewPTermPresenter()
	}

	orch, closeDeps, err := buildOrchestrator(cfg, logger, presenter)
	if err != nil {
		logger.Err(err, "phase", "setup")
		return 2
	}
	defer closeDeps()

	opts := usecases.RunOptions{
		MaxDepth:          cfg.Crawl.MaxDepth,
		MaxPages:          cfg.Crawl.MaxPages,
		VerifyConcurrency: cfg.Verify.Concurrency,
		Subdomains:        cfg.Crawl.IncludeSubdomains,
	}

	if serveMode {
		return serve(cfg, orch, opts, logger)
	}
	return runOnce(cfg, orch, opts, logger)
}

// buildOrchestrator monta el pipeline completo desde la configuración. La
// función de cierre libera la conexión a Redis si se abrió.
func buildOrchestrator(cfg config.Config, logger logx.Logger, presenter ui.Presenter) (*usecases.PipelineOrchestrator, func(), error) {
	closeDeps := func() {}

	web, err := httpclient.New(httpclient.Config{
		Timeout:         cfg.Crawl.FetchTimeout,
		MaxRetries:      cfg.Network.Retries,
		RetryBackoff:    cfg.Network.BackoffBase,
		RateLimit:       cfg.Network.MaxRPS,
		UserAgent:       cfg.Crawl.UserAgent,
		MaxBodyBytes:    cfg.Crawl.MaxBodyBytes,
		ProxyURL:        cfg.Network.ProxyURL,
		ManualRedirects: true,
	}, logger)
	if err != nil {
		return nil, closeDeps, fmt.Errorf("http client: %w", err)
	}

	policies, profiles, closeCache := buildCaches(cfg, logger)
	closeDeps = closeCache

	socks := cfg.Network.SocksProxy
	if socks != "" && !strings.Contains(socks, "://") {
		socks = "socks5://" + socks
	}
	prober, err := smtpprobe.New(smtpprobe.Config{
		Port:           cfg.Verify.Port,
		ConnectTimeout: cfg.Verify.ConnectTimeout,
		CommandTimeout: cfg.Verify.CommandTimeout,
		HeloName:       cfg.Verify.HeloName,
		MailFrom:       cfg.Verify.MailFrom,
		SocksProxy:     socks,
	}, logger)
	if err != nil {
		return nil, closeDeps, fmt.Errorf("smtp prober: %w", err)
	}

	filterConfig := urlfilter.DefaultConfig()
	breakers := resilience.NewBreakerSet(cfg.Verify.BreakerThreshold, cfg.Verify.BreakerCooldown)

	gate := usecases.NewPolitenessGate(web, policies, usecases.PolitenessConfig{
		UserAgent:  cfg.Crawl.UserAgent,
		DelayFloor: cfg.Crawl.DelayFloor,
		PolicyTTL:  cfg.Crawl.PolicyTTL,
	}, logger)

	crawler := usecases.NewCrawler(gate, web, urlfilter.NewFilterEngine(filterConfig, logger), logger)
	extractor := usecases.NewExtractor(urlfilter.NewPriorityScorer(filterConfig), usecases.ExtractorConfig{
		NameWindow:    cfg.Extract.NameWindow,
		RoleAddresses: cfg.Extract.RoleAddresses,
	}, logger)

	profileConfig := usecases.DefaultMailProfileConfig()
	profileConfig.TTL = cfg.Verify.ProfileTTL
	profileConfig.CatchAllProbe = cfg.Verify.CatchAllProbe
	resolver := usecases.NewMailProfileResolver(&net.Resolver{PreferGo: true}, prober, breakers, profiles, profileConfig, logger)

	verifier := usecases.NewVerifier(prober, breakers, usecases.NewScoringTable(cfg.Scoring), logger)

	orch := usecases.NewPipelineOrchestrator(usecases.PipelineOrchestratorOptions{
		Crawler:    crawler,
		Extractor:  extractor,
		Profiles:   resolver,
		Verifier:   verifier,
		Logger:     logger,
		Presenter:  presenter,
		DelayFloor: cfg.Crawl.DelayFloor,
	})
	return orch, closeDeps, nil
}

// buildCaches usa Redis si está configurado y responde; si no, memoria de proceso.
func buildCaches(cfg config.Config, logger logx.Logger) (ports.PolicyCache, ports.ProfileCache, func()) {
	memory := func() (ports.PolicyCache, ports.ProfileCache, func()) {
		return cache.NewMemory[domain.CrawlPolicy](cfg.Cache.Capacity),
			cache.NewMemory[domain.MailProfile](cfg.Cache.Capacity),
			func() {}
	}

	if cfg.Cache.RedisAddr == "" {
		return memory()
	}

	client := rediscache.NewClient(rediscache.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
		Prefix:   cfg.Cache.Prefix,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, using in-process caches", "addr", cfg.Cache.RedisAddr, "error", err.Error())
		_ = client.Close()
		return memory()
	}

	logger.Info("shared caches on redis", "addr", cfg.Cache.RedisAddr)
	return rediscache.NewStore[domain.CrawlPolicy](client, "policy"),
		rediscache.NewStore[domain.MailProfile](client, "profile"),
		func() { _ = client.Close() }
}

// runOnce ejecuta una sola vez sobre cfg.Core.Target y escribe las salidas.
func runOnce(cfg config.Config, orch *usecases.PipelineOrchestrator, opts usecases.RunOptions, logger logx.Logger) int {
	ctx, cancel := rootContextWithSignals(cfg.Timeout())
	defer cancel()

	report, target, err := orch.Prepare(uuid.NewString(), cfg.Core.Target, opts)
	if err != nil {
		logger.Err(err, "phase", "validation")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	var extra ports.Notifier
	if cfg.Output.Stream {
		stream, err := output.NewStreamingWriter(cfg.Output.Dir, target.Root, logger)
		if err != nil {
			logger.Err(err, "phase", "stream-setup")
			return 1
		}
		defer stream.Close()
		extra = stream
		logger.Info("streaming events", "file", stream.Path())
	}

	orch.Execute(ctx, report, target, opts, extra)

	snapshot := applyMinConfidence(report.Snapshot(), cfg.Output.MinConfidence)
	if err := writeOutputs(cfg, snapshot, logger); err != nil {
		logger.Err(err, "phase", "output")
		return 1
	}

	logger.Info("EmailScope finished",
		"elapsed_ms", snapshot.Duration().Milliseconds(),
		"results", len(snapshot.Results),
		"cancelled", snapshot.Cancelled,
	)
	return 0
}

// serve arranca la API de disparo y espera a SIGINT/SIGTERM.
func serve(cfg config.Config, orch *usecases.PipelineOrchestrator, opts usecases.RunOptions, logger logx.Logger) int {
	manager := usecases.NewRunManager(orch, cfg.Server.MaxRuns, logger)
	server := httpapi.New(manager, httpapi.Options{
		Defaults: opts,
		Version:  version,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Listen(cfg.Server.Addr) }()

	exit := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Err(err, "phase", "listen", "addr", cfg.Server.Addr)
			exit = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Primero las ejecuciones: sus suscriptores websocket reciben el evento
	// final antes de que se cierre el servidor.
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Warn("runs did not finish before shutdown", "error", err.Error())
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err.Error())
	}
	return exit
}

// applyMinConfidence deja fuera los resultados por debajo de minConfidence y
// recalcula los contadores.
func applyMinConfidence(snapshot domain.ReportSnapshot, minConfidence int) domain.ReportSnapshot {
	if minConfidence <= 0 {
		return snapshot
	}
	snapshot.Results = usecases.NewDedupeService().FilterByConfidence(snapshot.Results, minConfidence)
	counts := make(map[domain.Status]int, len(domain.AllStatuses))
	for _, r := range snapshot.Results {
		counts[r.Status]++
	}
	snapshot.Counts = counts
	return snapshot
}

// writeOutputs decide y ejecuta las salidas según la config.
func writeOutputs(cfg config.Config, snapshot domain.ReportSnapshot, logger logx.Logger) error {
	// El JSON consolidado se escribe siempre
	jsonOut := output.NewJSONExporter(cfg.Output.Dir)
	if err := jsonOut.Export(snapshot); err != nil {
		return fmt.Errorf("json output: %w", err)
	}
	logger.Info("report written", "format", jsonOut.Name(), "file", jsonOut.LastPath)

	if cfg.Output.XLSX {
		xlsxOut := output.NewXLSXExporter(cfg.Output.Dir)
		if err := xlsxOut.Export(snapshot); err != nil {
			return fmt.Errorf("xlsx output: %w", err)
		}
		logger.Info("report written", "format", xlsxOut.Name(), "file", xlsxOut.LastPath)
	}

	switch {
	case cfg.Core.Quiet:
		return output.OutputJSONStdout(snapshot, false)
	case !cfg.Output.TableDisabled:
		if err := output.NewTableExporter(os.Stdout).Export(snapshot); err != nil {
			return fmt.Errorf("table output: %w", err)
		}
	}
	return nil
}

// rootContextWithSignals crea el contexto raíz con timeout opcional y
// cancelación por SIGINT/SIGTERM.
func rootContextWithSignals(timeout time.Duration) (context.Context, context.CancelFunc) {
	base, baseCancel := context.WithCancel(context.Background())
	if timeout > 0 {
		var timeoutCancel context.CancelFunc
		base, timeoutCancel = context.WithTimeout(base, timeout)
		prev := baseCancel
		baseCancel = func() {
			timeoutCancel()
			prev()
		}
	}

	ctx, stop := signal.NotifyContext(base, syscall.SIGINT, syscall.SIGTERM)
	return ctx, func() {
		stop()
		baseCancel()
	}
}
