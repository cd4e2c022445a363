package dispatch

import "sync"

// Result is the one-shot completion token for a single dispatch. Every
// code path that can finish a dispatch (pre-flight failure, transport
// error, remote-reported failure, stream completion) reports through
// the same Result; only the first report wins. The accessors block
// until the dispatch resolves.
type Result struct {
	once sync.Once
	done chan struct{}

	err  error
	meta Meta
	body []byte
}

func newResult() *Result {
	return &Result{done: make(chan struct{})}
}

// Failed returns an already-resolved Result carrying err. Used for
// violations detected before a dispatch can even start, such as a
// second terminal call on one request chain.
func Failed(err error) *Result {
	r := newResult()
	r.fail(err, nil)
	return r
}

// resolve records the outcome exactly once. Later calls are no-ops.
func (r *Result) resolve(err error, meta Meta, body []byte) {
	r.once.Do(func() {
		r.err = err
		r.meta = meta
		r.body = body
		close(r.done)
	})
}

// fail resolves the dispatch with an error. meta may be non-nil: a
// remote-reported failure still carries the full response metadata.
func (r *Result) fail(err error, meta Meta) {
	r.resolve(err, meta, nil)
}

// complete resolves the dispatch successfully. body is nil for
// everything but the buffer sink.
func (r *Result) complete(meta Meta, body []byte) {
	r.resolve(nil, meta, body)
}

// Done returns a channel that is closed when the dispatch resolves.
func (r *Result) Done() <-chan struct{} { return r.done }

// Err blocks until the dispatch resolves and returns its error, if any.
func (r *Result) Err() error {
	<-r.done
	return r.err
}

// Meta blocks until the dispatch resolves and returns the response
// metadata. Meta may be non-nil even when Err is non-nil.
func (r *Result) Meta() Meta {
	<-r.done
	return r.meta
}

// Body blocks until the dispatch resolves and returns the response
// bytes. Body is only set for buffer-sink dispatches.
func (r *Result) Body() []byte {
	<-r.done
	return r.body
}
