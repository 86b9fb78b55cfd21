// internal/core/usecases/html.go
package usecases

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"emailscope/internal/core/domain"
	"emailscope/internal/platform/urlfilter"
)

// parsedPage es lo que el crawler saca de un documento HTML.
type parsedPage struct {
	title  string
	text   string
	links  []domain.Link
	mailto []string
}

// blockAtoms son los elementos que separan líneas en el texto visible.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Td: true, atom.Th: true, atom.Table: true, atom.Section: true,
	atom.Article: true, atom.Header: true, atom.Footer: true, atom.Address: true,
	atom.Figcaption: true, atom.Blockquote: true, atom.Dt: true, atom.Dd: true, atom.Hr: true,
}

// parseHTML extrae título, texto visible, enlaces y direcciones mailto:.
func parseHTML(base *url.URL, body []byte, normalizer *urlfilter.URLNormalizer) (parsedPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return parsedPage{}, err
	}

	// <base href> cambia la resolución de enlaces relativos
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = b
		}
	}

	var out parsedPage
	out.title = collapseSpaces(doc.Find("title").First().Text())

	seen := make(map[string]bool)
	doc.Find("a[href], area[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)

		if len(href) > 7 && strings.EqualFold(href[:7], "mailto:") {
			out.mailto = append(out.mailto, parseMailto(href[7:])...)
			return
		}

		abs, ok := normalizer.Resolve(base, href)
		if !ok || seen[abs] {
			return
		}
		seen[abs] = true
		out.links = append(out.links, domain.Link{URL: abs, Text: collapseSpaces(s.Text())})
	})

	doc.Find("script, style, noscript, template, svg").Remove()
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	for _, n := range root.Nodes {
		visibleText(&b, n)
	}
	out.text = normalizeLines(b.String())

	return out, nil
}

// visibleText recorre el árbol y escribe el texto con saltos de línea en
// los límites de bloque, para que "John Smith" y "CEO" queden en líneas
// vecinas y no pegados.
func visibleText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if blockAtoms[n.DataAtom] {
			b.WriteByte('\n')
			defer b.WriteByte('\n')
		} else {
			// separador mínimo entre inline (<span>John</span><span>Smith</span>)
			defer b.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visibleText(b, c)
	}
}

// parseMailto devuelve las direcciones de un href mailto: (puede traer varias y query).
func parseMailto(v string) []string {
	if i := strings.IndexByte(v, '?'); i >= 0 {
		v = v[:i]
	}
	if u, err := url.PathUnescape(v); err == nil {
		v = u
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeLines colapsa espacios dentro de cada línea y elimina las vacías.
func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = collapseSpaces(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
