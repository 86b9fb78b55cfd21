// internal/platform/httpclient/page.go
package httpclient

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"

	"emailscope/internal/platform/errors"
)

// Document es una página descargada, ya en UTF-8.
type Document struct {
	URL         string // URL final tras redirecciones
	StatusCode  int
	ContentType string
	Body        []byte
	Truncated   bool   // el body superaba MaxBodyBytes
	Location    string // destino del 3xx con ManualRedirects
}

var pageHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5",
	"Accept-Language": "en;q=0.9,*;q=0.5",
}

// FetchPage descarga una página HTML. Los estados no 2xx y los tipos no HTML
// se devuelven como error junto al Document parcial, para que el caller
// pueda ver StatusCode o Location.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (*Document, error) {
	resp, err := c.get(ctx, pageURL, pageHeaders)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc := &Document{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if isRedirect(resp.StatusCode) {
		if loc, err := resp.Location(); err == nil {
			doc.Location = loc.String()
			return doc, errors.Wrapf(errors.ErrRedirect, "fetch %s: redirect to %s", pageURL, doc.Location)
		}
	}
	if err := CheckStatus(resp); err != nil {
		return doc, errors.Wrapf(err, "fetch %s", pageURL)
	}
	if !IsHTML(doc.ContentType) {
		return doc, errors.Wrapf(errors.ErrUnsupportedContent, "fetch %s: content-type %q", pageURL, doc.ContentType)
	}

	raw, truncated, err := readCapped(resp.Body, c.config.MaxBodyBytes)
	if err != nil {
		return doc, errors.Wrapf(errors.Classify(err), "read %s", pageURL)
	}
	doc.Truncated = truncated

	r, err := charset.NewReader(bytes.NewReader(raw), doc.ContentType)
	if err == nil {
		doc.Body, err = io.ReadAll(r)
	}
	if err != nil {
		return doc, errors.Wrapf(errors.ErrInvalidResponse, "decode %s: %v", pageURL, err)
	}
	return doc, nil
}

// FetchRaw devuelve estado y body (con tope) sin interpretar el estado.
// robots.txt lo necesita: 4xx y 5xx significan cosas distintas.
func (c *Client) FetchRaw(ctx context.Context, rawURL string, limit int64) (int, []byte, error) {
	resp, err := c.get(ctx, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if limit <= 0 {
		limit = c.config.MaxBodyBytes
	}
	body, _, err := readCapped(resp.Body, limit)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrapf(errors.Classify(err), "read %s", rawURL)
	}
	return resp.StatusCode, body, nil
}

// CheckStatus traduce un estado no 2xx al sentinel correspondiente.
func CheckStatus(resp *http.Response) error {
	if resp == nil {
		return errors.New("nil response")
	}
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return errors.ErrRateLimit
	case code == http.StatusNotFound, code == http.StatusGone:
		return errors.ErrNotFound
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return errors.ErrUnauthorized
	case code >= 500:
		return errors.Wrapf(errors.ErrServiceUnavailable, "HTTP %d", code)
	default:
		return errors.Errorf("HTTP %d", code)
	}
}

// IsHTML indica si un Content-Type es HTML. Sin cabecera cuenta como HTML:
// muchos sitios pequeños no la envían.
func IsHTML(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func isRedirect(code int) bool { return code >= 300 && code < 400 }

func readCapped(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}
