package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"emailscope/internal/platform/errors"
	"emailscope/internal/testutil"
)

func serveHTML(contentType, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body))
	}))
}

func TestClient_FetchPage(t *testing.T) {
	t.Run("returns decoded html", func(t *testing.T) {
		server := serveHTML("text/html; charset=utf-8", testutil.FixtureContactPage)
		defer server.Close()

		doc, err := newTestClient(t, Config{}).FetchPage(context.Background(), server.URL+"/contact")
		testutil.AssertNoError(t, err, "fetch should succeed")
		testutil.AssertEqual(t, doc.StatusCode, http.StatusOK, "status")
		testutil.AssertContains(t, string(doc.Body), "jane.doe@example.com", "body")
		testutil.AssertTrue(t, strings.HasSuffix(doc.URL, "/contact"), "final url")
		testutil.AssertFalse(t, doc.Truncated, "not truncated")
	})

	t.Run("decodes latin-1 to utf-8", func(t *testing.T) {
		// "José García" en latin-1
		server := serveHTML("text/html; charset=iso-8859-1", "<html><body>Jos\xe9 Garc\xeda, CTO</body></html>")
		defer server.Close()

		doc, err := newTestClient(t, Config{}).FetchPage(context.Background(), server.URL)
		testutil.AssertNoError(t, err, "fetch should succeed")
		testutil.AssertContains(t, string(doc.Body), "José García", "decoded body")
	})

	t.Run("rejects non-html content", func(t *testing.T) {
		server := serveHTML("application/pdf", "%PDF-1.4")
		defer server.Close()

		_, err := newTestClient(t, Config{}).FetchPage(context.Background(), server.URL)
		testutil.AssertTrue(t, errors.Is(err, errors.ErrUnsupportedContent), "unsupported content")
	})

	t.Run("keeps status on error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		doc, err := newTestClient(t, Config{}).FetchPage(context.Background(), server.URL)
		testutil.AssertTrue(t, errors.IsNotFound(err), "not found")
		testutil.AssertEqual(t, doc.StatusCode, http.StatusNotFound, "status kept on document")
	})

	t.Run("caps body size", func(t *testing.T) {
		server := serveHTML("text/html", strings.Repeat("a", 4096))
		defer server.Close()

		doc, err := newTestClient(t, Config{MaxBodyBytes: 1024}).FetchPage(context.Background(), server.URL)
		testutil.AssertNoError(t, err, "fetch should succeed")
		testutil.AssertEqual(t, len(doc.Body), 1024, "body capped")
		testutil.AssertTrue(t, doc.Truncated, "truncation flagged")
	})
}

func TestClient_FetchPage_Redirects(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	t.Run("manual mode reports location", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		client := newTestClient(t, Config{ManualRedirects: true})
		doc, err := client.FetchPage(context.Background(), server.URL+"/old")
		testutil.AssertTrue(t, errors.Is(err, errors.ErrRedirect), "redirect error")
		testutil.AssertEqual(t, doc.StatusCode, http.StatusMovedPermanently, "status")
		testutil.AssertEqual(t, doc.Location, server.URL+"/new", "absolute location")
		testutil.AssertEqual(t, atomic.LoadInt32(&hits), int32(1), "target not fetched")
	})

	t.Run("default mode follows", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		doc, err := newTestClient(t, Config{}).FetchPage(context.Background(), server.URL+"/old")
		testutil.AssertNoError(t, err, "followed")
		testutil.AssertTrue(t, strings.HasSuffix(doc.URL, "/new"), "final url")
		testutil.AssertEqual(t, atomic.LoadInt32(&hits), int32(2), "two requests")
	})
}

func TestClient_FetchRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("User-agent: *\nDisallow: /"))
	}))
	defer server.Close()

	client := newTestClient(t, Config{})

	t.Run("status is not interpreted", func(t *testing.T) {
		status, body, err := client.FetchRaw(context.Background(), server.URL+"/robots.txt", 0)
		testutil.AssertNoError(t, err, "raw fetch")
		testutil.AssertEqual(t, status, http.StatusForbidden, "status")
		testutil.AssertContains(t, string(body), "Disallow", "body")
	})

	t.Run("explicit limit", func(t *testing.T) {
		_, body, err := client.FetchRaw(context.Background(), server.URL+"/robots.txt", 10)
		testutil.AssertNoError(t, err, "raw fetch")
		testutil.AssertEqual(t, len(body), 10, "capped at limit")
	})
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantErr error
	}{
		{"200 OK", http.StatusOK, nil},
		{"204 No Content", http.StatusNoContent, nil},
		{"404 Not Found", http.StatusNotFound, errors.ErrNotFound},
		{"410 Gone", http.StatusGone, errors.ErrNotFound},
		{"429 Too Many Requests", http.StatusTooManyRequests, errors.ErrRateLimit},
		{"403 Forbidden", http.StatusForbidden, errors.ErrUnauthorized},
		{"500 Internal Server Error", http.StatusInternalServerError, errors.ErrServiceUnavailable},
		{"503 Service Unavailable", http.StatusServiceUnavailable, errors.ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStatus(&http.Response{StatusCode: tt.code})
			if tt.wantErr == nil {
				testutil.AssertNoError(t, err, "2xx is not an error")
				return
			}
			testutil.AssertTrue(t, errors.Is(err, tt.wantErr), "sentinel")
		})
	}

	t.Run("other 4xx", func(t *testing.T) {
		err := CheckStatus(&http.Response{StatusCode: http.StatusTeapot})
		testutil.AssertContains(t, err.Error(), "HTTP 418", "code in message")
	})

	t.Run("nil response", func(t *testing.T) {
		testutil.AssertError(t, CheckStatus(nil), "nil response")
	})
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		contentType string
		expected    bool
	}{
		{"text/html", true},
		{"text/html; charset=UTF-8", true},
		{"application/xhtml+xml", true},
		{"", true},
		{"application/json", false},
		{"image/png", false},
		{"text/plain", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			testutil.AssertEqual(t, IsHTML(tt.contentType), tt.expected, "IsHTML")
		})
	}
}
