// internal/core/usecases/mocks_test.go
package usecases

import (
	"context"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/errors"
	"emailscope/internal/platform/httpclient"
	"emailscope/internal/platform/logx"
	"emailscope/internal/platform/resilience"
	"emailscope/internal/platform/urlfilter"
)

// fakePage es la respuesta de fakeWeb para una URL.
type fakePage struct {
	status      int
	contentType string
	body        string
	location    string
	err         error
}

// fetchCall registra una petición hecha a fakeWeb.
type fetchCall struct {
	url string
	at  time.Time
}

// fakeWeb es un mock de ports.Fetcher servido desde memoria.
type fakeWeb struct {
	mu     sync.Mutex
	pages  map[string]fakePage
	robots map[string]fakePage // por host
	calls  []fetchCall

	// hold, si no es nil, retiene cada FetchRaw hasta que se cierre.
	hold chan struct{}
}

func newFakeWeb() *fakeWeb {
	return &fakeWeb{
		pages:  make(map[string]fakePage),
		robots: make(map[string]fakePage),
	}
}

// html registra una página HTML con status 200.
func (w *fakeWeb) html(rawURL, body string) *fakeWeb {
	w.pages[rawURL] = fakePage{status: 200, contentType: "text/html; charset=utf-8", body: body}
	return w
}

func (w *fakeWeb) page(rawURL string, p fakePage) *fakeWeb {
	w.pages[rawURL] = p
	return w
}

func (w *fakeWeb) robotsTxt(host string, status int, body string) *fakeWeb {
	w.robots[host] = fakePage{status: status, body: body}
	return w
}

func (w *fakeWeb) record(rawURL string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, fetchCall{url: rawURL, at: time.Now()})
}

// Calls devuelve una copia de las peticiones en orden.
func (w *fakeWeb) Calls() []fetchCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]fetchCall(nil), w.calls...)
}

// URLs devuelve solo las URLs pedidas, en orden.
func (w *fakeWeb) URLs() []string {
	calls := w.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.url)
	}
	return out
}

// PageCalls devuelve las peticiones que no son robots.txt.
func (w *fakeWeb) PageCalls() []fetchCall {
	var out []fetchCall
	for _, c := range w.Calls() {
		if !strings.HasSuffix(c.url, "/robots.txt") {
			out = append(out, c)
		}
	}
	return out
}

func (w *fakeWeb) FetchPage(ctx context.Context, rawURL string) (*httpclient.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.record(rawURL)

	w.mu.Lock()
	p, ok := w.pages[rawURL]
	w.mu.Unlock()

	if !ok {
		return &httpclient.Document{URL: rawURL, StatusCode: 404}, errors.Wrapf(errors.ErrNotFound, "fetch %s", rawURL)
	}
	if p.err != nil {
		return nil, p.err
	}

	doc := &httpclient.Document{URL: rawURL, StatusCode: p.status, ContentType: p.contentType}
	switch {
	case p.location != "":
		doc.Location = p.location
		return doc, errors.Wrapf(errors.ErrRedirect, "fetch %s", rawURL)
	case p.status >= 400:
		return doc, errors.Wrapf(errors.ErrServiceUnavailable, "fetch %s: status %d", rawURL, p.status)
	case !httpclient.IsHTML(p.contentType):
		return doc, errors.Wrapf(errors.ErrUnsupportedContent, "fetch %s", rawURL)
	}
	doc.Body = []byte(p.body)
	return doc, nil
}

func (w *fakeWeb) FetchRaw(ctx context.Context, rawURL string, limit int64) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	w.record(rawURL)

	if w.hold != nil {
		select {
		case <-w.hold:
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, nil, err
	}

	w.mu.Lock()
	p, ok := w.robots[u.Host]
	w.mu.Unlock()

	if !ok {
		return 404, nil, nil
	}
	if p.err != nil {
		return 0, nil, p.err
	}
	return p.status, []byte(p.body), nil
}

// fakeResolver es un mock de ports.MXResolver.
type fakeResolver struct {
	mu      sync.Mutex
	records map[string][]*net.MX
	errs    map[string]error
	delay   time.Duration
	calls   map[string]int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		records: make(map[string][]*net.MX),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (r *fakeResolver) mx(domainName string, hosts ...string) *fakeResolver {
	for i, h := range hosts {
		r.records[domainName] = append(r.records[domainName], &net.MX{Host: h + ".", Pref: uint16(10 * (i + 1))})
	}
	return r
}

func (r *fakeResolver) nxdomain(domainName string) *fakeResolver {
	r.errs[domainName] = &net.DNSError{Err: "no such host", Name: domainName, IsNotFound: true}
	return r
}

func (r *fakeResolver) Calls(domainName string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[domainName]
}

func (r *fakeResolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	r.mu.Lock()
	r.calls[name]++
	recs, err := r.records[name], r.errs[name]
	r.mu.Unlock()

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
	}
	return recs, nil
}

// fakeProber es un mock de ports.Prober.
type fakeProber struct {
	mu      sync.Mutex
	respond func(ctx context.Context, mxHost, rcpt string) (ports.ProbeReply, error)
	rcpts   []string
}

// acceptAll acepta cualquier destinatario.
func acceptAll() *fakeProber {
	return &fakeProber{respond: func(context.Context, string, string) (ports.ProbeReply, error) {
		return ports.ProbeReply{Code: 250, Enhanced: "2.1.5", Message: "ok"}, nil
	}}
}

// acceptOnly acepta los destinatarios listados y rechaza el resto con 550 5.1.1.
func acceptOnly(emails ...string) *fakeProber {
	ok := make(map[string]bool, len(emails))
	for _, e := range emails {
		ok[e] = true
	}
	return &fakeProber{respond: func(_ context.Context, _, rcpt string) (ports.ProbeReply, error) {
		if ok[rcpt] {
			return ports.ProbeReply{Code: 250, Message: "ok"}, nil
		}
		return ports.ProbeReply{Code: 550, Enhanced: "5.1.1", Message: "user unknown"}, nil
	}}
}

// stalling no responde hasta que vence el contexto.
func stalling() *fakeProber {
	return &fakeProber{respond: func(ctx context.Context, _, _ string) (ports.ProbeReply, error) {
		<-ctx.Done()
		return ports.ProbeReply{}, errors.Wrapf(domain.ErrHandshakeTimeout, "greeting")
	}}
}

func (p *fakeProber) Probe(ctx context.Context, mxHost, rcpt string) (ports.ProbeReply, error) {
	p.mu.Lock()
	p.rcpts = append(p.rcpts, rcpt)
	p.mu.Unlock()
	return p.respond(ctx, mxHost, rcpt)
}

func (p *fakeProber) Rcpts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.rcpts...)
}

// recordingNotifier guarda los eventos recibidos.
type recordingNotifier struct {
	mu     sync.Mutex
	events []ports.Event
	onNext func(ports.Event)
}

func (n *recordingNotifier) Notify(_ context.Context, e ports.Event) error {
	n.mu.Lock()
	n.events = append(n.events, e)
	hook := n.onNext
	n.mu.Unlock()
	if hook != nil {
		hook(e)
	}
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) Types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, string(e.Type))
	}
	return out
}

// testGate crea un gate con un delay mínimo corto.
func testGate(web ports.Fetcher, floor time.Duration) *PolitenessGate {
	return NewPolitenessGate(web, nil, PolitenessConfig{
		UserAgent:  "EmailScopeBot/1.0",
		DelayFloor: floor,
		PolicyTTL:  time.Hour,
	}, logx.NewSilent())
}

func testCrawler(web ports.Fetcher, floor time.Duration) *Crawler {
	logger := logx.NewSilent()
	return NewCrawler(testGate(web, floor), web, urlfilter.NewFilterEngine(urlfilter.DefaultConfig(), logger), logger)
}

// pipelineDeps agrupa las piezas de un orquestador de test.
type pipelineDeps struct {
	web      *fakeWeb
	resolver *fakeResolver
	prober   *fakeProber
	floor    time.Duration
	timeout  time.Duration
	notifier *recordingNotifier
}

func (d pipelineDeps) build() *PipelineOrchestrator {
	logger := logx.NewSilent()
	breakers := resilience.NewBreakerSet(3, time.Minute)
	if d.timeout <= 0 {
		d.timeout = 2 * time.Second
	}

	var observers []ports.Notifier
	if d.notifier != nil {
		observers = append(observers, d.notifier)
	}

	filter := urlfilter.NewFilterEngine(urlfilter.DefaultConfig(), logger)
	return NewPipelineOrchestrator(PipelineOrchestratorOptions{
		Crawler:   NewCrawler(testGate(d.web, d.floor), d.web, filter, logger),
		Extractor: NewExtractor(filter.Scorer(), ExtractorConfig{NameWindow: 2}, logger),
		Profiles: NewMailProfileResolver(d.resolver, d.prober, breakers, nil,
			DefaultMailProfileConfig(), logger),
		Verifier:      NewVerifier(d.prober, breakers, DefaultScoringTable(), logger),
		Logger:        logger,
		Observers:     observers,
		VerifyTimeout: d.timeout,
	})
}

// exampleSite monta el escenario de example.com: home, contacto y about.
func exampleSite() *fakeWeb {
	return newFakeWeb().
		html("https://example.com/", `<html><head><title>Example</title></head><body>
			<a href="/contact">Contact us</a>
			<a href="/about">About</a>
		</body></html>`).
		html("https://example.com/contact", `<html><head><title>Contact</title></head><body>
			<p>Write to jane.doe@example.com for press.</p>
			<a href="/about">About</a>
		</body></html>`).
		html("https://example.com/about", `<html><head><title>About us</title></head><body>
			<h1>About Example</h1>
			<div class="team"><p>John Smith, CEO</p></div>
			<a href="/">Home</a>
		</body></html>`)
}
