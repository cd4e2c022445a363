package optidash

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/optidash/throttle"
)

// Option is a functional option for configuring a [Client] via [New].
type Option func(*options) error

type options struct {
	client      *http.Client
	rt          http.RoundTripper
	timeout     *time.Duration
	userAgent   string
	proxy       *url.URL
	insecureTLS bool
	throttle    *throttle.Config
	baseURL     string
	logger      *slog.Logger
	tracer      trace.Tracer
}

// WithHTTPClient replaces the default [http.Client] used by the [Client].
func WithHTTPClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithProxy routes all requests through the given proxy address.
// A per-request [Request.Proxy] takes precedence over this option.
func WithProxy(addr string) Option {
	return func(c *options) error {
		proxyURL, err := url.Parse(addr)
		if err != nil {
			return fmt.Errorf("parsing proxy address: %w", err)
		}
		c.proxy = proxyURL
		return nil
	}
}

// WithInsecureSkipVerify disables TLS certificate validation. Off by
// default; only enable against endpoints trusted by configuration.
func WithInsecureSkipVerify() Option {
	return func(c *options) error {
		c.insecureTLS = true
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given
// requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithEndpoint overrides the service base URL. Intended for testing
// against a local stand-in of the remote service.
func WithEndpoint(baseURL string) Option {
	return func(c *options) error {
		if baseURL == "" {
			return errors.New("endpoint must not be empty")
		}
		c.baseURL = baseURL
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithTracer injects a [trace.Tracer]; dispatches run inside a span
// and propagate trace context to the service. A no-op tracer is used
// unless set.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		c.tracer = tracer
		return nil
	}
}

// tlsAndProxy applies the proxy and TLS settings onto a clone of the
// base transport. Non-*http.Transport bases fall back to a clone of
// the default transport, as there is no generic way to rewire them.
func tlsAndProxy(base http.RoundTripper, opts options) http.RoundTripper {
	var t *http.Transport
	if ht, ok := base.(*http.Transport); ok {
		t = ht.Clone()
	} else {
		t = http.DefaultTransport.(*http.Transport).Clone()
	}

	if opts.proxy != nil {
		t.Proxy = http.ProxyURL(opts.proxy)
	}
	if opts.insecureTLS {
		if t.TLSClientConfig == nil {
			t.TLSClientConfig = &tls.Config{}
		}
		t.TLSClientConfig.InsecureSkipVerify = true
	}

	return t
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}
