// internal/core/usecases/crawler.go
package usecases

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/errors"
	"emailscope/internal/platform/logx"
	"emailscope/internal/platform/urlfilter"
)

// CrawlOptions limita el recorrido. Se para en el primero que se alcance.
type CrawlOptions struct {
	MaxDepth int `validate:"gte=0,lte=10"`

	// MaxPages cuenta solo páginas descargadas; las saltadas o prohibidas
	// por robots.txt no consumen cupo.
	MaxPages int `validate:"gte=1,lte=5000"`
}

// Crawler recorre en anchura las páginas públicas de un dominio.
type Crawler struct {
	gate    *PolitenessGate
	fetcher ports.Fetcher
	filter  *urlfilter.FilterEngine
	logger  logx.Logger
}

// NewCrawler crea un crawler. Todas las descargas pasan por gate.
func NewCrawler(gate *PolitenessGate, fetcher ports.Fetcher, filter *urlfilter.FilterEngine, logger logx.Logger) *Crawler {
	if filter == nil {
		filter = urlfilter.NewFilterEngine(urlfilter.DefaultConfig(), logger)
	}
	return &Crawler{
		gate:    gate,
		fetcher: fetcher,
		filter:  filter,
		logger:  logger.With("component", "crawler"),
	}
}

// frontierItem es una URL pendiente con su prioridad dentro de su nivel.
type frontierItem struct {
	url      string
	depth    int
	priority urlfilter.Priority
}

// PageStream es la secuencia perezosa de páginas de un crawl. Finita y no
// reiniciable; no es segura para uso concurrente.
type PageStream struct {
	crawler *Crawler
	target  domain.Target
	opts    CrawlOptions

	queue   []frontierItem // nivel actual, ya ordenado
	next    []frontierItem // siguiente nivel, en orden de descubrimiento
	depth   int
	seen    map[string]bool
	fetched int

	done bool
	err  error
}

// Crawl prepara el recorrido desde la home del target. No hace red hasta Next.
func (c *Crawler) Crawl(ctx context.Context, target domain.Target, opts CrawlOptions) *PageStream {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}

	s := &PageStream{
		crawler: c,
		target:  target,
		opts:    opts,
		seen:    make(map[string]bool),
	}

	seed, err := c.filter.Normalizer().Normalize(target.SeedURL())
	if err != nil {
		s.done, s.err = true, err
		return s
	}
	s.seen[seed] = true
	s.queue = []frontierItem{{url: seed, priority: urlfilter.PriorityPrimary}}
	return s
}

// Next devuelve la siguiente página. false cuando el recorrido terminó o ctx
// se canceló; en ese caso no se emite ninguna página a medias.
func (s *PageStream) Next(ctx context.Context) (domain.Page, bool) {
	for !s.done {
		if err := ctx.Err(); err != nil {
			s.finish(err)
			break
		}
		if s.fetched >= s.opts.MaxPages {
			s.finish(nil)
			break
		}

		if len(s.queue) == 0 {
			if len(s.next) == 0 || s.depth >= s.opts.MaxDepth {
				s.finish(nil)
				break
			}
			s.advanceLevel()
		}

		item := s.queue[0]
		s.queue = s.queue[1:]

		page, ok := s.crawler.visit(ctx, s.target, item, s.seen)
		if !ok {
			s.finish(ctx.Err())
			break
		}
		s.seen[page.URL] = true

		if page.Fetched() {
			s.fetched++
			if item.depth < s.opts.MaxDepth {
				s.enqueue(page, item.depth+1)
			}
		}
		return page, true
	}
	return domain.Page{}, false
}

// Err retorna la causa de fin anticipado (cancelación), o nil.
func (s *PageStream) Err() error {
	return s.err
}

// Fetched retorna cuántas páginas se han descargado hasta ahora.
func (s *PageStream) Fetched() int {
	return s.fetched
}

func (s *PageStream) finish(err error) {
	s.done = true
	s.err = err
	s.queue, s.next = nil, nil
}

// advanceLevel promociona el siguiente nivel: contact/about/team/staff
// primero, orden de descubrimiento en caso de empate.
func (s *PageStream) advanceLevel() {
	sort.SliceStable(s.next, func(i, j int) bool {
		return s.next[i].priority > s.next[j].priority
	})
	s.queue, s.next = s.next, nil
	s.depth++
}

func (s *PageStream) enqueue(page domain.Page, depth int) {
	for _, link := range page.Links {
		if s.seen[link.URL] {
			continue
		}
		s.seen[link.URL] = true

		if skip, reason := s.crawler.filter.Skip(link.URL); skip {
			s.crawler.logger.Debug("link filtered", "url", link.URL, "reason", reason)
			continue
		}

		scored := s.crawler.filter.Scorer().Score(link.URL, link.Text)
		s.next = append(s.next, frontierItem{url: link.URL, depth: depth, priority: scored.Priority})
	}
}

// maxRedirectHops limita las redirecciones seguidas a mano por página.
const maxRedirectHops = 5

// visit obtiene una URL respetando la política del host. Las redirecciones
// se siguen aquí, una a una, para que cada salto pase por robots.txt y por
// el espaciado. Un salto hacia una URL ya vista se descarta como duplicado
// y queda marcado en seen. ok=false solo cuando ctx se canceló antes de
// tener una página completa.
func (c *Crawler) visit(ctx context.Context, target domain.Target, item frontierItem, seen map[string]bool) (domain.Page, bool) {
	page := domain.Page{URL: item.url, Depth: item.depth}

	current := item.url
	for hop := 0; ; hop++ {
		u, err := url.Parse(current)
		if err != nil {
			return skipped(page, "unparseable url"), true
		}

		policy := c.gate.GetPolicy(ctx, u.Host)
		if ctx.Err() != nil {
			return page, false
		}
		if !c.gate.Allowed(policy, current) {
			page.Status = domain.PageStatusDisallowed
			page.SkipReason = "robots.txt"
			c.logger.Debug("disallowed by robots.txt", "url", current)
			return page, true
		}

		if err := c.gate.AwaitSlot(ctx, u.Host); err != nil {
			return page, false
		}

		doc, err := c.fetcher.FetchPage(ctx, current)
		if ctx.Err() != nil {
			return page, false
		}
		if doc != nil {
			page.StatusCode = doc.StatusCode
			page.ContentType = doc.ContentType
		}

		if doc != nil && doc.Location != "" && errors.Is(err, errors.ErrRedirect) {
			next, ok := c.filter.Normalizer().Resolve(u, doc.Location)
			switch {
			case !ok:
				return skipped(page, "bad redirect"), true
			case hop+1 >= maxRedirectHops:
				return skipped(page, "too many redirects"), true
			}
			nu, _ := url.Parse(next)
			if !target.InScope(nu.Host) {
				return skipped(page, "redirected off-domain"), true
			}
			if seen[next] {
				c.logger.Debug("redirect to a visited page", "url", current, "target", next)
				return skipped(page, "duplicate"), true
			}
			seen[next] = true
			current = next
			page.URL = next
			continue
		}

		if err != nil {
			page = skipped(page, skipReason(err))
			c.logger.Debug("page skipped", "url", current, "reason", page.SkipReason)
			return page, true
		}

		final, err := url.Parse(doc.URL)
		if err != nil || final.Host == "" {
			final = u
		}
		if !target.InScope(final.Host) {
			return skipped(page, "redirected off-domain"), true
		}

		parsed, err := parseHTML(final, doc.Body, c.filter.Normalizer())
		if err != nil {
			return skipped(page, "html parse error"), true
		}

		page.Status = domain.PageStatusFetched
		page.Title = parsed.title
		page.Body = string(doc.Body)
		page.Text = parsed.text
		page.Mailto = parsed.mailto
		for _, l := range parsed.links {
			lu, err := url.Parse(l.URL)
			if err != nil || !target.InScope(lu.Host) {
				continue
			}
			page.Links = append(page.Links, l)
		}

		c.logger.Debug("page fetched", "url", current, "depth", item.depth, "links", len(page.Links))
		return page, true
	}
}

func skipped(page domain.Page, reason string) domain.Page {
	page.Status = domain.PageStatusSkipped
	page.SkipReason = reason
	return page
}

// skipReason traduce el error de descarga a un motivo corto.
func skipReason(err error) string {
	switch {
	case errors.IsTimeout(err):
		return "timeout"
	case errors.IsNotFound(err):
		return "not found"
	case errors.Is(err, errors.ErrUnsupportedContent):
		return "not html"
	case errors.IsConnectionRefused(err), errors.IsConnectionFailed(err):
		return "connection failed"
	case errors.IsRateLimit(err):
		return "rate limited"
	case errors.IsServiceUnavailable(err):
		return "service unavailable"
	case errors.Is(err, errors.ErrUnauthorized):
		return "unauthorized"
	default:
		return fmt.Sprintf("%v: %v", domain.ErrPageFetch, err)
	}
}
