package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"emailscope/internal/platform/errors"
	"emailscope/internal/platform/logx"
	"emailscope/internal/testutil"
)

func newTestClient(t *testing.T, config Config) *Client {
	t.Helper()
	client, err := New(config, logx.NewSilent())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNew(t *testing.T) {
	t.Run("applies defaults for zero values", func(t *testing.T) {
		client := newTestClient(t, Config{})

		testutil.AssertEqual(t, client.config.Timeout, 15*time.Second, "default timeout")
		testutil.AssertEqual(t, client.config.RetryBackoff, 500*time.Millisecond, "default backoff")
		testutil.AssertEqual(t, client.config.UserAgent, "EmailScopeBot/1.0", "default user agent")
		testutil.AssertEqual(t, client.config.MaxBodyBytes, int64(2<<20), "default body cap")
		testutil.AssertTrue(t, client.limiter == nil, "no global ceiling by default")
	})

	t.Run("global ceiling when configured", func(t *testing.T) {
		client := newTestClient(t, Config{RateLimit: 10, RateLimitBurst: 5})
		testutil.AssertTrue(t, client.limiter != nil, "limiter created")
		testutil.AssertEqual(t, client.limiter.Burst(), 5, "burst")
	})

	t.Run("rejects invalid proxy", func(t *testing.T) {
		_, err := New(Config{ProxyURL: "http://[::1"}, logx.NewSilent())
		testutil.AssertTrue(t, errors.IsInvalidInput(err), "invalid proxy is invalid input")
	})
}

func TestClient_Get(t *testing.T) {
	t.Run("sends user agent and headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			testutil.AssertEqual(t, r.Header.Get("User-Agent"), "TestBot/2.0", "user agent")
			testutil.AssertEqual(t, r.Header.Get("Accept-Language"), "es", "extra header")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(t, Config{UserAgent: "TestBot/2.0"})
		resp, err := client.get(context.Background(), server.URL, map[string]string{"Accept-Language": "es"})
		testutil.AssertNoError(t, err, "request should succeed")
		resp.Body.Close()
	})

	t.Run("deadline is a timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(t, Config{MaxRetries: 3})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := client.get(ctx, server.URL, nil)
		testutil.AssertError(t, err, "should fail")
		testutil.AssertTrue(t, errors.IsTimeout(err), "classified as timeout")
	})
}

func TestClient_Retry(t *testing.T) {
	tests := []struct {
		name         string
		failFirst    int32
		failStatus   int
		maxRetries   int
		wantStatus   int
		wantAttempts int32
	}{
		{"recovers after 503", 2, http.StatusServiceUnavailable, 3, http.StatusOK, 3},
		{"recovers after 429", 1, http.StatusTooManyRequests, 1, http.StatusOK, 2},
		{"404 is final", 100, http.StatusNotFound, 3, http.StatusNotFound, 1},
		{"exhausted retries return last response", 100, http.StatusBadGateway, 2, http.StatusBadGateway, 3},
		{"no retries configured", 100, http.StatusServiceUnavailable, 0, http.StatusServiceUnavailable, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&attempts, 1) <= tt.failFirst {
					w.WriteHeader(tt.failStatus)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := newTestClient(t, Config{MaxRetries: tt.maxRetries, RetryBackoff: 5 * time.Millisecond})
			resp, err := client.get(context.Background(), server.URL, nil)
			testutil.AssertNoError(t, err, "caller decides on final status")
			testutil.AssertEqual(t, resp.StatusCode, tt.wantStatus, "final status")
			testutil.AssertEqual(t, atomic.LoadInt32(&attempts), tt.wantAttempts, "attempts")
			resp.Body.Close()
		})
	}

	t.Run("network errors are retried then reported", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := server.URL
		server.Close()

		client := newTestClient(t, Config{MaxRetries: 1, RetryBackoff: 5 * time.Millisecond})
		_, err := client.get(context.Background(), addr, nil)
		testutil.AssertError(t, err, "closed server")
		testutil.AssertContains(t, err.Error(), "after 2 attempts", "both attempts made")
	})
}

func TestClient_GlobalCeiling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, Config{RateLimit: 10, RateLimitBurst: 2})

	start := time.Now()
	for i := 0; i < 5; i++ {
		resp, err := client.get(context.Background(), server.URL, nil)
		testutil.AssertNoError(t, err, "request should succeed")
		resp.Body.Close()
	}

	// burst de 2 y 3 peticiones más a 10/s
	testutil.AssertDurationAtLeast(t, time.Since(start), 250*time.Millisecond, "ceiling enforced")
}

func TestClient_Backoff(t *testing.T) {
	t.Run("caps at max backoff", func(t *testing.T) {
		client := newTestClient(t, Config{RetryBackoff: 10 * time.Millisecond, MaxRetryBackoff: 30 * time.Millisecond})

		start := time.Now()
		testutil.AssertNoError(t, client.backoff(context.Background(), 40), "backoff")
		elapsed := time.Since(start)
		testutil.AssertDurationAtLeast(t, elapsed, 30*time.Millisecond, "waits the cap")
		testutil.AssertTrue(t, elapsed < time.Second, "never beyond the cap")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		client := newTestClient(t, Config{RetryBackoff: time.Second})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		testutil.AssertError(t, client.backoff(ctx, 0), "cancelled backoff")
	})
}

func TestRedirectPolicy(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	client := newTestClient(t, Config{MaxRedirects: 3})
	_, err := client.get(context.Background(), server.URL+"/a", nil)
	testutil.AssertError(t, err, "redirect loop stops")
	testutil.AssertContains(t, err.Error(), "stopped after 3 redirects", "limit reported")
	testutil.AssertEqual(t, atomic.LoadInt32(&hits), int32(3), "three requests before the limit")
}
