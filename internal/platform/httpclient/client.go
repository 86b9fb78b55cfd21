// Package httpclient fetches web pages for the crawler: retries on transient
// failures, an optional global request ceiling, a body cap and charset
// decoding to UTF-8.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	xrate "golang.org/x/time/rate"

	"emailscope/internal/platform/errors"
	"emailscope/internal/platform/logx"
	"emailscope/internal/platform/rate"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultBackoff      = 500 * time.Millisecond
	defaultMaxBackoff   = 10 * time.Second
	defaultUserAgent    = "EmailScopeBot/1.0"
	defaultMaxBodyBytes = 2 << 20
	defaultMaxRedirects = 5
)

// Config del cliente. Los campos a cero toman el valor por defecto.
type Config struct {
	Timeout         time.Duration // por petición, 15s
	MaxRetries      int           // reintentos ante error de red o 429/502/503/504
	RetryBackoff    time.Duration // primer backoff, se duplica en cada intento (500ms)
	MaxRetryBackoff time.Duration // 10s
	UserAgent       string

	// RateLimit es un techo global en peticiones/s compartido por todos los
	// dominios. La cortesía por dominio la aplica el PolitenessGate.
	RateLimit      float64
	RateLimitBurst int

	MaxBodyBytes int64 // 2 MiB
	MaxRedirects int   // 5, ignorado con ManualRedirects
	ProxyURL     string

	// ManualRedirects devuelve los 3xx sin seguirlos para que el caller
	// pueda espaciar cada salto. FetchPage informa el destino en Document.Location.
	ManualRedirects bool
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultBackoff
	}
	if c.MaxRetryBackoff <= 0 {
		c.MaxRetryBackoff = defaultMaxBackoff
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = defaultMaxRedirects
	}
}

// Client hace GETs con reintentos. Es seguro para uso concurrente.
type Client struct {
	http    *http.Client
	limiter *xrate.Limiter // nil = sin techo global
	logger  logx.Logger
	config  Config
}

// New crea un cliente. Un ProxyURL mal formado es ErrInvalidInput.
func New(config Config, logger logx.Logger) (*Client, error) {
	config.applyDefaults()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.ProxyURL != "" {
		proxy, err := url.Parse(config.ProxyURL)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid proxy url %q", config.ProxyURL)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	c := &Client{
		http: &http.Client{
			Timeout:       config.Timeout,
			Transport:     transport,
			CheckRedirect: redirectPolicy(config),
		},
		logger: logger.With("component", "httpclient"),
		config: config,
	}
	if config.RateLimit > 0 {
		c.limiter = rate.NewLimiter(config.RateLimit, config.RateLimitBurst)
	}
	return c, nil
}

func redirectPolicy(config Config) func(*http.Request, []*http.Request) error {
	if config.ManualRedirects {
		return func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}
	limit := config.MaxRedirects
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= limit {
			return fmt.Errorf("stopped after %d redirects", limit)
		}
		return nil
	}
}

// retryable son los estados que merecen otro intento.
var retryable = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// get hace el GET con reintentos. Agotados los reintentos sobre un estado
// reintentable se devuelve la última respuesta y el caller decide.
func (c *Client) get(ctx context.Context, target string, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, errors.Wrap(errors.Classify(err), "global rate limit wait")
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "build request for %s: %v", target, err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		elapsed := time.Since(start).Milliseconds()
		last := attempt >= c.config.MaxRetries

		switch {
		case err != nil:
			lastErr = errors.Classify(err)
			c.logger.Debug("GET failed", "url", target, "attempt", attempt+1, "error", err.Error(), "duration_ms", elapsed)
			if ctx.Err() != nil {
				return nil, errors.Wrapf(lastErr, "GET %s aborted", target)
			}
			if last {
				return nil, errors.Wrapf(lastErr, "GET %s failed after %d attempts", target, attempt+1)
			}
		case retryable[resp.StatusCode] && !last:
			resp.Body.Close()
			c.logger.Debug("GET retryable status", "url", target, "status", resp.StatusCode, "attempt", attempt+1)
		default:
			c.logger.Debug("GET", "url", target, "status", resp.StatusCode, "duration_ms", elapsed)
			return resp, nil
		}

		if err := c.backoff(ctx, attempt); err != nil {
			return nil, errors.Wrap(errors.Classify(err), "backoff interrupted")
		}
	}
}

// backoff espera RetryBackoff * 2^attempt, con tope en MaxRetryBackoff.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	wait := c.config.MaxRetryBackoff
	if attempt < 16 {
		wait = min(c.config.RetryBackoff<<attempt, c.config.MaxRetryBackoff)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
