// Package optidash is a client for a remote image-processing API.
package optidash

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/adamwoolhether/optidash/dispatch"
	"github.com/adamwoolhether/optidash/throttle"
)

// ErrMissingAPIKey is returned by [New] when no API key is supplied.
var ErrMissingAPIKey = errors.New("missing API key")

// Client is the entry point of the SDK. It wraps the std-lib
// *http.Client and holds the API credentials; request chains started
// from one Client share its transport, logger, and tracer but dispatch
// independently.
type Client struct {
	key        string
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// New instantiates a Client for the given API key. The key is the only
// required configuration; everything else has defaults and is
// customized via options.
func New(apiKey string, optFns ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := &Client{
		key:    apiKey,
		logger: slog.Default(),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	// A fresh client rather than http.DefaultClient: the transport is
	// rewired below and must not leak into the process-wide default.
	hc := &http.Client{}
	if opts.client != nil {
		hc = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.timeout != nil {
		hc.Timeout = *opts.timeout
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.proxy != nil || opts.insecureTLS {
		transport = tlsAndProxy(transport, opts)
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, client.logger, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	hc.Transport = transport

	baseURL := dispatch.DefaultBaseURL
	if opts.baseURL != "" {
		baseURL = opts.baseURL
	}

	client.dispatcher = &dispatch.Dispatcher{
		Client:  hc,
		BaseURL: baseURL,
		APIKey:  apiKey,
		Logger:  client.logger,
		Tracer:  opts.tracer,
	}

	return client, nil
}

// Upload starts a request chain with a filesystem path as the image source.
func (c *Client) Upload(path string) *Request {
	return c.NewRequest().Upload(path)
}

// UploadReader starts a request chain with an open reader as the image source.
func (c *Client) UploadReader(src io.Reader, filename string) *Request {
	return c.NewRequest().UploadReader(src, filename)
}

// UploadBuffer starts a request chain with an in-memory byte buffer as
// the image source.
func (c *Client) UploadBuffer(b []byte) *Request {
	return c.NewRequest().UploadBuffer(b)
}

// Fetch starts a request chain with an already-hosted image URL as the source.
func (c *Client) Fetch(imageURL string) *Request {
	return c.NewRequest().Fetch(imageURL)
}
