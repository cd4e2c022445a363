// Package dispatch implements the request dispatcher: it assembles the
// outbound HTTP request for one image-processing call, sends it, and
// resolves a one-shot [Result] exactly once no matter which of the
// asynchronous failure paths fires first.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Dispatcher executes dispatches against the remote service. A single
// Dispatcher is shared by all request chains of one client; each
// dispatch closes over its own Payload snapshot and Result.
type Dispatcher struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
	Logger  *slog.Logger
	Tracer  trace.Tracer
}

// Do runs one dispatch to completion and returns the resolved Result.
func (d *Dispatcher) Do(ctx context.Context, p Payload, sink Sink) *Result {
	res := newResult()
	d.run(ctx, p, sink, res)
	return res
}

// Go runs one dispatch in its own goroutine. The returned Result
// resolves when the dispatch finishes.
func (d *Dispatcher) Go(ctx context.Context, p Payload, sink Sink) *Result {
	res := newResult()
	go d.run(ctx, p, sink, res)
	return res
}

func (d *Dispatcher) run(ctx context.Context, p Payload, sink Sink, res *Result) {
	ctx, span := d.tracer().Start(ctx, "optidash.dispatch", trace.WithAttributes(
		attribute.String("transport", p.Transport.String()),
		attribute.String("sink", sink.Mode.String()),
	))
	defer span.End()

	if err := preflight(p, sink); err != nil {
		d.logger().Debug("dispatch rejected", "error", err)
		res.fail(err, nil)
		return
	}

	req, err := d.newRequest(ctx, p, sink)
	if err != nil {
		res.fail(err, nil)
		return
	}

	d.logger().Debug("dispatching", "transport", p.Transport.String(), "sink", sink.Mode.String(), "url", req.URL.String())

	resp, err := d.httpClient(p).Do(req)
	if err != nil {
		res.fail(fmt.Errorf("sending request: %w", err), nil)
		return
	}

	if sink.Mode.binary() {
		d.finishBinary(ctx, resp, sink, res)
		return
	}
	d.finishJSON(resp, res)
}

// preflight validates the accumulated configuration before any network
// contact. All violations surface through the Result, never a panic.
func preflight(p Payload, sink Sink) error {
	if p.Deferred != nil {
		return p.Deferred
	}

	if p.Transport == TransportNone {
		return ErrMissingInput
	}

	if sink.Mode.binary() {
		for _, op := range []string{"webhook", "store"} {
			if _, ok := p.Operations[op]; ok {
				return fmt.Errorf("%w: %s is set", ErrBinaryConflict, op)
			}
		}
	}

	return nil
}

// newRequest assembles the outbound request: a multipart POST for
// uploads, a plain JSON POST for fetches. Binary sinks additionally
// announce themselves via a dedicated request header.
func (d *Dispatcher) newRequest(ctx context.Context, p Payload, sink Sink) (*http.Request, error) {
	var (
		endpoint    string
		body        io.Reader
		contentType string
	)

	switch p.Transport {
	case TransportUpload:
		endpoint = d.BaseURL + uploadPath
		var err error
		body, contentType, err = uploadBody(p)
		if err != nil {
			return nil, err
		}
	case TransportFetch:
		endpoint = d.BaseURL + fetchPath
		var err error
		body, err = fetchBody(p)
		if err != nil {
			return nil, err
		}
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	req.SetBasicAuth(d.APIKey, "")
	req.Header.Set("Content-Type", contentType)
	if sink.Mode.binary() {
		req.Header.Set(binaryHeader, "1")
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

// fetchBody builds the JSON body for a fetch dispatch: the target URL
// plus all accumulated operations.
func fetchBody(p Payload) (io.Reader, error) {
	payload := make(map[string]any, len(p.Operations)+1)
	for k, v := range p.Operations {
		payload[k] = v
	}
	payload["url"] = p.FetchURL

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encoding request payload: %w", err)
	}

	return &buf, nil
}

// httpClient returns the client to dispatch with, overriding the proxy
// when one was set on the request chain.
func (d *Dispatcher) httpClient(p Payload) *http.Client {
	if p.Proxy == nil {
		return d.Client
	}

	cpy := *d.Client
	var transport *http.Transport
	if t, ok := cpy.Transport.(*http.Transport); ok {
		transport = t.Clone()
	} else {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	transport.Proxy = http.ProxyURL(p.Proxy)
	cpy.Transport = transport

	return &cpy
}

// finishJSON reads the full response body and parses it as the result
// metadata. A success=false indicator becomes a [RemoteError] whose
// message is taken from the body, with the body still attached as Meta.
func (d *Dispatcher) finishJSON(resp *http.Response, res *Result) {
	defer d.closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.fail(fmt.Errorf("reading response body: %w", err), nil)
		return
	}

	var meta Meta
	if err := json.Unmarshal(body, &meta); err != nil {
		if resp.StatusCode != http.StatusOK {
			res.fail(&UnexpectedStatusError{
				StatusCode: resp.StatusCode,
				Body:       truncate(body),
				Err:        ErrUnexpectedStatusCode,
			}, nil)
			return
		}
		res.fail(fmt.Errorf("decoding response body: %w", err), nil)
		return
	}

	if !meta.OK() {
		res.fail(&RemoteError{Message: meta.Message(), Meta: meta}, meta)
		return
	}

	res.complete(meta, nil)
}

// closeBody drains and closes a response body so the underlying
// connection can be reused.
func (d *Dispatcher) closeBody(resp *http.Response) {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		d.logger().Error("failed to discard unused body", "error", err)
	}
	if err := resp.Body.Close(); err != nil {
		d.logger().Error("failed to close response body", "error", err)
	}
}

func truncate(body []byte) string {
	if len(body) > maxErrBodySize {
		body = body[:maxErrBodySize]
	}
	return string(body)
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d *Dispatcher) tracer() trace.Tracer {
	if d.Tracer == nil {
		return noop.NewTracerProvider().Tracer("no-op tracer")
	}
	return d.Tracer
}
