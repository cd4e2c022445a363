package optidash

import (
	"context"
	"errors"
	"io"

	"github.com/adamwoolhether/optidash/dispatch"
)

// Synchronous argument errors for the file sinks. Everything else
// surfaces through the dispatch result.
var (
	ErrEmptyDestination = errors.New("destination path must not be empty")
	ErrNilWriter        = errors.New("destination writer must not be nil")
)

// ToJSON dispatches the request and returns the parsed response
// metadata. On a remote-reported failure the error carries the
// service message and the metadata is still returned.
func (r *Request) ToJSON(ctx context.Context) (Meta, error) {
	res := r.start(ctx, dispatch.Sink{Mode: dispatch.ModeJSON}, false)
	return res.Meta(), res.Err()
}

// ToFile dispatches the request and streams the binary response to
// destPath. The write lands atomically: the method returns only after
// the file is flushed and renamed into place.
func (r *Request) ToFile(ctx context.Context, destPath string) (Meta, error) {
	if destPath == "" {
		return nil, ErrEmptyDestination
	}

	res := r.start(ctx, dispatch.Sink{Mode: dispatch.ModeFile, DestPath: destPath}, false)
	return res.Meta(), res.Err()
}

// ToWriter dispatches the request and streams the binary response to w.
func (r *Request) ToWriter(ctx context.Context, w io.Writer) (Meta, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	res := r.start(ctx, dispatch.Sink{Mode: dispatch.ModeFile, Writer: w}, false)
	return res.Meta(), res.Err()
}

// ToBuffer dispatches the request and returns the binary response as
// one contiguous byte slice.
func (r *Request) ToBuffer(ctx context.Context) (Meta, []byte, error) {
	res := r.start(ctx, dispatch.Sink{Mode: dispatch.ModeBuffer}, false)
	return res.Meta(), res.Body(), res.Err()
}

// ToJSONAsync dispatches in a new goroutine. The returned [Result]
// resolves exactly once when the dispatch finishes.
func (r *Request) ToJSONAsync(ctx context.Context) *Result {
	return r.start(ctx, dispatch.Sink{Mode: dispatch.ModeJSON}, true)
}

// ToFileAsync dispatches in a new goroutine, streaming the binary
// response to destPath.
func (r *Request) ToFileAsync(ctx context.Context, destPath string) (*Result, error) {
	if destPath == "" {
		return nil, ErrEmptyDestination
	}

	return r.start(ctx, dispatch.Sink{Mode: dispatch.ModeFile, DestPath: destPath}, true), nil
}

// ToWriterAsync dispatches in a new goroutine, streaming the binary
// response to w.
func (r *Request) ToWriterAsync(ctx context.Context, w io.Writer) (*Result, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	return r.start(ctx, dispatch.Sink{Mode: dispatch.ModeFile, Writer: w}, true), nil
}

// ToBufferAsync dispatches in a new goroutine, accumulating the binary
// response in memory.
func (r *Request) ToBufferAsync(ctx context.Context) *Result {
	return r.start(ctx, dispatch.Sink{Mode: dispatch.ModeBuffer}, true)
}

// start claims the terminal sink and hands a snapshot of the chain to
// the dispatcher. A second terminal call on the same chain fails with
// [ErrSinkConflict] instead of dispatching twice.
func (r *Request) start(ctx context.Context, sink dispatch.Sink, async bool) *dispatch.Result {
	if r.terminal {
		return dispatch.Failed(ErrSinkConflict)
	}
	r.terminal = true

	p := r.payload()
	if async {
		return r.client.dispatcher.Go(ctx, p, sink)
	}
	return r.client.dispatcher.Do(ctx, p, sink)
}
