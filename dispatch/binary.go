package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// finishBinary handles file and buffer sinks. The metadata header is
// parsed and checked for failure strictly before any body bytes are
// delivered to the sink.
func (d *Dispatcher) finishBinary(ctx context.Context, resp *http.Response, sink Sink, res *Result) {
	defer d.closeBody(resp)

	meta, err := parseMetaHeader(resp.Header)
	if err != nil {
		res.fail(err, nil)
		return
	}

	if meta.Failed() {
		res.fail(&RemoteError{Message: meta.Message(), Meta: meta}, meta)
		return
	}

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			body = []byte("unable to read body")
		}
		res.fail(&UnexpectedStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        ErrUnexpectedStatusCode,
		}, meta)
		return
	}

	body := &contextReader{ctx: ctx, r: resp.Body}

	switch {
	case sink.Mode == ModeBuffer:
		data, err := io.ReadAll(body)
		if err != nil {
			res.fail(fmt.Errorf("buffering response body: %w", err), meta)
			return
		}
		res.complete(meta, data)
	case sink.Writer != nil:
		if _, err := io.Copy(sink.Writer, body); err != nil {
			res.fail(fmt.Errorf("writing to destination: %w", err), meta)
			return
		}
		res.complete(meta, nil)
	default:
		if err := d.streamToFile(body, sink.DestPath); err != nil {
			res.fail(err, meta)
			return
		}
		res.complete(meta, nil)
	}
}

// parseMetaHeader extracts the metadata object from the dedicated
// response header. A missing header yields empty metadata; a present
// but malformed one fails before any body streaming begins.
func parseMetaHeader(h http.Header) (Meta, error) {
	raw := h.Get(metaHeader)
	if raw == "" {
		return Meta{}, nil
	}

	var meta Meta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetaUnparsable, err)
	}

	return meta, nil
}

// streamToFile pipes the response body to a temp file in the same
// directory as destPath, then renames it into place. Completion is
// reported only after the file is synced, so the callback never fires
// before the write is flushed. On any error the temp file is removed.
func (d *Dispatcher) streamToFile(body io.Reader, destPath string) error {
	file, err := os.CreateTemp(filepath.Dir(destPath), ".optidash-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			d.logger().Error("defer closing temp file", "error", err)
		}
		if !successful {
			if err := os.Remove(file.Name()); err != nil {
				d.logger().Error("failed to remove temp file", "error", err)
			}
		}
	}()

	if _, err := io.Copy(file, body); err != nil {
		return fmt.Errorf("copying response body: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true

	return nil
}

// contextReader aborts an in-flight body copy when the dispatch
// context ends.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
