// internal/core/domain/page.go
package domain

// Link es un enlace saliente del mismo dominio, ya normalizado.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
}

// Page es el resultado de visitar una URL del frontier. Se entrega por valor
// y no se modifica después de emitirse.
type Page struct {
	URL         string     `json:"url"`
	Depth       int        `json:"depth"`
	Status      PageStatus `json:"status"`
	StatusCode  int        `json:"status_code,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	Title       string     `json:"title,omitempty"`

	// Body es el HTML crudo (UTF-8); Text el texto visible sin script/style
	Body string `json:"-"`
	Text string `json:"-"`

	// Mailto contiene las direcciones de los enlaces mailto: de la página
	Mailto []string `json:"mailto,omitempty"`

	Links      []Link `json:"links,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// Fetched indica si la página tiene contenido utilizable.
func (p Page) Fetched() bool {
	return p.Status == PageStatusFetched
}
