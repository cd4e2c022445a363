package optidash

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"

	"github.com/adamwoolhether/optidash/dispatch"
)

// Request accumulates the configuration of one image-processing call.
// Setters return the same Request so calls chain; configuration errors
// are recorded on first violation and surfaced at the terminal call,
// never mid-chain. A Request is owned by a single goroutine and is not
// safe for concurrent use, but each terminal call dispatches an
// independent snapshot, so reusing a fully-built Request across
// goroutines for dispatching is fine.
type Request struct {
	client *Client

	transport dispatch.Transport
	source    *dispatch.Source
	fetchURL  string
	ops       map[string]any
	proxy     *url.URL

	// deferred holds the first configuration violation, checked during
	// dispatch pre-flight.
	deferred error

	// terminal flips when a sink claims the request; a second terminal
	// call is a configuration error.
	terminal bool
}

// NewRequest starts an empty request chain. Most callers use the
// [Client.Upload] and [Client.Fetch] shortcuts instead.
func (c *Client) NewRequest() *Request {
	return &Request{
		client: c,
		ops:    make(map[string]any),
	}
}

// Upload selects a filesystem path as the image source.
func (r *Request) Upload(path string) *Request {
	if path == "" {
		return r.recordErr(fmt.Errorf("%w: empty upload path", ErrMissingInput))
	}
	return r.setSource(&dispatch.Source{Path: path})
}

// UploadReader selects an already-open reader as the image source.
// filename may be empty, in which case a random hex name is assigned
// at dispatch time.
func (r *Request) UploadReader(src io.Reader, filename string) *Request {
	if src == nil {
		return r.recordErr(fmt.Errorf("%w: nil upload reader", ErrMissingInput))
	}
	return r.setSource(&dispatch.Source{Reader: src, Filename: filename})
}

// UploadBuffer selects an in-memory byte buffer as the image source.
// The multipart file part gets a random hex filename, unique per
// dispatch.
func (r *Request) UploadBuffer(b []byte) *Request {
	if b == nil {
		return r.recordErr(fmt.Errorf("%w: nil upload buffer", ErrMissingInput))
	}
	return r.setSource(&dispatch.Source{Buffer: b})
}

// Fetch selects an already-hosted image by URL as the source.
func (r *Request) Fetch(imageURL string) *Request {
	if r.transport != dispatch.TransportNone {
		return r.recordErr(ErrInputConflict)
	}
	if _, err := url.ParseRequestURI(imageURL); err != nil {
		return r.recordErr(fmt.Errorf("parsing fetch url: %w", err))
	}

	r.transport = dispatch.TransportFetch
	r.fetchURL = imageURL

	return r
}

// Proxy routes this request's dispatch through the given proxy,
// overriding any client-level proxy.
func (r *Request) Proxy(addr string) *Request {
	proxyURL, err := url.Parse(addr)
	if err != nil {
		return r.recordErr(fmt.Errorf("parsing proxy address: %w", err))
	}

	r.proxy = proxyURL

	return r
}

func (r *Request) setSource(src *dispatch.Source) *Request {
	if r.transport != dispatch.TransportNone {
		return r.recordErr(ErrInputConflict)
	}

	r.transport = dispatch.TransportUpload
	r.source = src

	return r
}

// operation stores params under the given name. Keys are unique; a
// repeated setter overwrites the previous value.
func (r *Request) operation(name string, params any) *Request {
	r.ops[name] = params
	return r
}

// recordErr keeps the first configuration violation for pre-flight.
func (r *Request) recordErr(err error) *Request {
	if r.deferred == nil {
		r.deferred = err
	}
	return r
}

// payload snapshots the accumulated configuration for one dispatch.
// Operation parameters are validated here, once, rather than in each
// setter; the first violation rides along as the deferred error.
func (r *Request) payload() dispatch.Payload {
	ops := make(map[string]any, len(r.ops))
	for k, v := range r.ops {
		ops[k] = v
	}

	deferred := r.deferred
	if deferred == nil {
		var fields FieldErrors
		for _, name := range slices.Sorted(maps.Keys(ops)) {
			err := validateOperation(name, ops[name])
			if err == nil {
				continue
			}

			var fe FieldErrors
			if errors.As(err, &fe) {
				fields = append(fields, fe...)
				continue
			}

			deferred = err
			break
		}
		if deferred == nil && len(fields) > 0 {
			deferred = fields
		}
	}

	return dispatch.Payload{
		Transport:  r.transport,
		Source:     r.source,
		FetchURL:   r.fetchURL,
		Operations: ops,
		Deferred:   deferred,
		Proxy:      r.proxy,
	}
}
