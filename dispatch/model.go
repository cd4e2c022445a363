package dispatch

import (
	"errors"
	"fmt"
	"io"
	"net/url"
)

// Default remote service endpoints. Upload and fetch requests target
// distinct paths on the same host.
const (
	DefaultBaseURL = "https://api.optidash.ai"

	uploadPath = "/1.0/upload"
	fetchPath  = "/1.0/fetch"
)

// Wire headers used by the remote service for binary responses.
const (
	// binaryHeader tells the service to respond with raw image bytes
	// instead of a JSON description.
	binaryHeader = "X-Optidash-Binary"

	// metaHeader carries the JSON-encoded operation metadata when the
	// response body is binary.
	metaHeader = "X-Optidash-Meta"
)

// maxErrBodySize caps the amount of response body read when building
// an error for an unexpected status code.
const maxErrBodySize = 4 << 10 // 4KB

var (
	// ErrInputConflict indicates both Upload and Fetch were set on one request chain.
	ErrInputConflict = errors.New("upload and fetch are mutually exclusive")
	// ErrSinkConflict indicates a second terminal sink was invoked on a request chain.
	ErrSinkConflict = errors.New("response mode already chosen")
	// ErrMissingInput indicates a terminal sink was invoked with no input image selected.
	ErrMissingInput = errors.New("no input image: select upload or fetch first")
	// ErrBinaryConflict indicates a binary sink was combined with webhook delivery
	// or external storage, which the service cannot satisfy in one request.
	ErrBinaryConflict = errors.New("binary response cannot be combined with webhook or external storage")
	// ErrRemoteFailure is the sentinel wrapped by [RemoteError].
	ErrRemoteFailure = errors.New("remote processing failed")
	// ErrMetaUnparsable indicates the metadata response header held malformed JSON.
	ErrMetaUnparsable = errors.New("unparsable response metadata header")
	// ErrUnexpectedStatusCode is the sentinel wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
)

// Meta is the JSON-structured description of an operation outcome
// returned by the service, either as the response body (JSON sink)
// or in the metadata response header (binary sinks).
type Meta map[string]any

// OK reports whether the service marked the operation successful.
func (m Meta) OK() bool {
	v, ok := m["success"].(bool)
	return ok && v
}

// Failed reports whether the service explicitly marked the operation
// failed. A missing success indicator is neither OK nor Failed.
func (m Meta) Failed() bool {
	v, ok := m["success"].(bool)
	return ok && !v
}

// Message returns the service-provided failure message, if any.
func (m Meta) Message() string {
	s, _ := m["message"].(string)
	return s
}

// RemoteError is returned when the service reports success=false.
// The full response metadata stays attached so callers can inspect
// it even on failure.
type RemoteError struct {
	Message string
	Meta    Meta
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return ErrRemoteFailure.Error()
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return ErrRemoteFailure
}

// UnexpectedStatusError is returned when the service responds with an
// unexpected HTTP status and no parsable JSON body.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// Transport selects how the source image reaches the service.
type Transport int

const (
	TransportNone Transport = iota
	TransportUpload
	TransportFetch
)

func (t Transport) String() string {
	switch t {
	case TransportUpload:
		return "upload"
	case TransportFetch:
		return "fetch"
	default:
		return "none"
	}
}

// Mode selects how the response is delivered to the caller.
type Mode int

const (
	ModeNone Mode = iota
	ModeJSON
	ModeFile
	ModeBuffer
)

func (m Mode) String() string {
	switch m {
	case ModeJSON:
		return "json"
	case ModeFile:
		return "file"
	case ModeBuffer:
		return "buffer"
	default:
		return "none"
	}
}

// binary reports whether the mode expects raw image bytes from the service.
func (m Mode) binary() bool {
	return m == ModeFile || m == ModeBuffer
}

// Source describes the image input for an upload dispatch. Exactly one
// of Path, Reader, or Buffer is set. Filename is optional for Reader
// sources; Buffer sources are always assigned a random hex filename.
type Source struct {
	Path     string
	Reader   io.Reader
	Buffer   []byte
	Filename string
}

// Sink describes the chosen response delivery. For ModeFile exactly
// one of DestPath or Writer is set.
type Sink struct {
	Mode     Mode
	DestPath string
	Writer   io.Writer
}

// Payload is the snapshot of one request chain handed to the
// dispatcher. It is immutable once built; concurrent dispatches never
// share a Payload.
type Payload struct {
	Transport  Transport
	Source     *Source
	FetchURL   string
	Operations map[string]any

	// Deferred carries the first configuration violation recorded while
	// the chain was being built. Checked during pre-flight; a non-nil
	// Deferred fails the dispatch before any network contact.
	Deferred error

	// Proxy optionally overrides the client proxy for this dispatch.
	Proxy *url.URL
}
