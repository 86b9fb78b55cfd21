// internal/core/usecases/extractor.go
package usecases

import (
	"regexp"
	"strings"

	"emailscope/internal/core/domain"
	"emailscope/internal/platform/logx"
	"emailscope/internal/platform/urlfilter"
	"emailscope/internal/platform/validator"
)

var (
	// literalEmail es la gramática estricta local@dominio.tld.
	literalEmail = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9](?:[a-z0-9\-]*[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9\-]*[a-z0-9])?)*\.[a-z]{2,24}`)

	// Formas ofuscadas: "jane [at] example [dot] com", "jane(at)example(dot)com",
	// "jane at example dot com" y "jane @ example.com".
	bracketAt    = regexp.MustCompile(`(?i)\s*[\[({<]\s*at\s*[\])}>]\s*`)
	bracketDot   = regexp.MustCompile(`(?i)\s*[\[({<]\s*dot\s*[\])}>]\s*`)
	spelledAtDot = regexp.MustCompile(`(?i)([a-z0-9._%+\-]+)\s+at\s+([a-z0-9\-]+(?:\s+dot\s+[a-z0-9\-]+)+)`)
	spelledDot   = regexp.MustCompile(`(?i)\s+dot\s+`)
	spacedAt     = regexp.MustCompile(`([a-zA-Z0-9._%+\-])\s+@\s*([a-zA-Z0-9])|([a-zA-Z0-9._%+\-])@\s+([a-zA-Z0-9])`)
)

// ExtractorConfig ajusta la segunda pasada (nombres) y los buzones genéricos.
type ExtractorConfig struct {
	// NameWindow es el número de líneas alrededor de un literal donde se
	// buscan nombres en páginas que no son de contacto.
	NameWindow int

	// RoleAddresses añade info@, contact@... como permutaciones.
	RoleAddresses bool
}

// Extractor convierte páginas en candidatos. No guarda estado entre llamadas.
type Extractor struct {
	scorer *urlfilter.PriorityScorer
	dedupe *DedupeService
	config ExtractorConfig
	logger logx.Logger
}

// NewExtractor crea un extractor. scorer decide qué páginas son de contacto.
func NewExtractor(scorer *urlfilter.PriorityScorer, config ExtractorConfig, logger logx.Logger) *Extractor {
	if scorer == nil {
		scorer = urlfilter.NewPriorityScorer(urlfilter.DefaultConfig())
	}
	if config.NameWindow < 0 {
		config.NameWindow = 0
	}
	return &Extractor{
		scorer: scorer,
		dedupe: NewDedupeService(),
		config: config,
		logger: logger.With("component", "extractor"),
	}
}

// candidateSet acumula candidatos en orden de descubrimiento.
type candidateSet struct {
	items []domain.Candidate
	index map[string]int
}

func newCandidateSet() *candidateSet {
	return &candidateSet{index: make(map[string]int)}
}

func (s *candidateSet) get(key string) (*domain.Candidate, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return &s.items[i], true
}

func (s *candidateSet) add(c domain.Candidate) {
	s.index[c.Key()] = len(s.items)
	s.items = append(s.items, c)
}

// Extract recorre las páginas descargadas y devuelve los candidatos: primero
// los literales en orden de aparición, después las permutaciones por persona
// y regla. Un literal anula la permutación con la misma dirección. Sin
// resultados no es un error.
func (e *Extractor) Extract(target domain.Target, pages []domain.Page) []domain.Candidate {
	literals := newCandidateSet()
	var people []Person
	seenPeople := make(map[string]bool)

	for _, page := range pages {
		if !page.Fetched() {
			continue
		}

		lines := strings.Split(page.Text, "\n")
		hits := make([]bool, len(lines))

		for i, line := range lines {
			for _, email := range scanLiterals(line) {
				if e.addLiteral(literals, target, email, page.URL) {
					hits[i] = true
				}
			}
		}
		for _, raw := range page.Mailto {
			e.addLiteral(literals, target, raw, page.URL)
		}

		for _, p := range e.scanPeople(page, lines, hits) {
			key := foldName(p.First) + " " + foldName(p.Last)
			if seenPeople[key] {
				continue
			}
			seenPeople[key] = true
			people = append(people, p)
		}
	}

	var perms []domain.Candidate
	for _, p := range people {
		for _, email := range p.Permutations(target.Root) {
			if !validator.IsEmail(email) {
				continue
			}
			perms = append(perms, domain.Candidate{
				Email:      email,
				Source:     domain.SourcePermutation,
				PersonName: p.FullName(),
			})
		}
	}
	if e.config.RoleAddresses {
		for _, local := range RoleLocalParts {
			perms = append(perms, domain.Candidate{Email: local + "@" + target.Root, Source: domain.SourcePermutation})
		}
	}

	out := e.dedupe.Deduplicate(append(literals.items, perms...))

	e.logger.Debug("extraction done",
		"domain", target.Root,
		"pages", len(pages),
		"literals", len(literals.items),
		"people", len(people),
		"candidates", len(out))

	return out
}

// addLiteral registra un avistamiento. false si la dirección no es válida o
// no pertenece al dominio objetivo.
func (e *Extractor) addLiteral(set *candidateSet, target domain.Target, raw, pageURL string) bool {
	email := validator.NormalizeEmail(strings.Trim(raw, ".-"))
	if !validator.IsEmail(email) {
		return false
	}
	_, host, ok := validator.SplitEmail(email)
	if !ok || !target.OwnsEmailDomain(host) {
		return false
	}

	if c, ok := set.get(email); ok {
		for _, p := range c.Pages {
			if p == pageURL {
				return true
			}
		}
		c.Pages = append(c.Pages, pageURL)
		c.Sightings = len(c.Pages)
		return true
	}

	set.add(domain.Candidate{
		Email:     email,
		Source:    domain.SourceLiteral,
		PageURL:   pageURL,
		Sightings: 1,
		Pages:     []string{pageURL},
	})
	return true
}

// scanPeople busca nombres en toda la página si parece de contacto/equipo, o
// solo cerca de las líneas con literales. Un nombre cuenta si hay un cargo en
// su línea o en una contigua.
func (e *Extractor) scanPeople(page domain.Page, lines []string, hits []bool) []Person {
	inWindow := make([]bool, len(lines))
	if e.scorer.IsContactLike(page.URL, page.Title) {
		for i := range inWindow {
			inWindow[i] = true
		}
	} else {
		for i, hit := range hits {
			if !hit {
				continue
			}
			lo, hi := max(0, i-e.config.NameWindow), min(len(lines)-1, i+e.config.NameWindow)
			for j := lo; j <= hi; j++ {
				inWindow[j] = true
			}
		}
	}

	var out []Person
	for i, line := range lines {
		if !inWindow[i] {
			continue
		}
		names := findNames(line)
		if len(names) == 0 || !roleNearby(lines, i) {
			continue
		}
		for _, n := range names {
			out = append(out, Person{First: n[0], Last: n[1], PageURL: page.URL})
		}
	}
	return out
}

func roleNearby(lines []string, i int) bool {
	for j := max(0, i-1); j <= min(len(lines)-1, i+1); j++ {
		if hasRoleKeyword(lines[j]) {
			return true
		}
	}
	return false
}

// scanLiterals devuelve las direcciones de una línea tras deshacer las
// ofuscaciones habituales.
func scanLiterals(line string) []string {
	if line == "" {
		return nil
	}
	return literalEmail.FindAllString(deobfuscate(line), -1)
}

func deobfuscate(s string) string {
	s = bracketAt.ReplaceAllString(s, "@")
	s = bracketDot.ReplaceAllString(s, ".")
	s = spelledAtDot.ReplaceAllStringFunc(s, func(m string) string {
		sub := spelledAtDot.FindStringSubmatch(m)
		return sub[1] + "@" + spelledDot.ReplaceAllString(sub[2], ".")
	})
	return spacedAt.ReplaceAllString(s, "$1$3@$2$4")
}
