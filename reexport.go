package optidash

import (
	"github.com/adamwoolhether/optidash/dispatch"
)

// ————————————————————————————————————————————————————————————————————
// Type aliases – re-export user-facing types from [dispatch].
// ————————————————————————————————————————————————————————————————————

type (
	// Meta is the JSON-structured description of an operation outcome.
	Meta = dispatch.Meta

	// Result represents an in-flight or completed async dispatch.
	Result = dispatch.Result

	// RemoteError is returned when the service reports a failure; it
	// carries the service message and the full response metadata.
	RemoteError = dispatch.RemoteError

	// UnexpectedStatusError is returned for unexpected HTTP statuses
	// without a parsable JSON body.
	UnexpectedStatusError = dispatch.UnexpectedStatusError
)

// ————————————————————————————————————————————————————————————————————
// Sentinel errors
// ————————————————————————————————————————————————————————————————————

var (
	// ErrInputConflict indicates both upload and fetch were selected.
	ErrInputConflict = dispatch.ErrInputConflict

	// ErrSinkConflict indicates a second terminal sink call on one chain.
	ErrSinkConflict = dispatch.ErrSinkConflict

	// ErrMissingInput indicates a terminal call with no input selected.
	ErrMissingInput = dispatch.ErrMissingInput

	// ErrBinaryConflict indicates a binary sink combined with webhook or
	// external storage.
	ErrBinaryConflict = dispatch.ErrBinaryConflict

	// ErrRemoteFailure is the sentinel wrapped by [RemoteError].
	ErrRemoteFailure = dispatch.ErrRemoteFailure

	// ErrMetaUnparsable indicates malformed JSON in the metadata header.
	ErrMetaUnparsable = dispatch.ErrMetaUnparsable

	// ErrUnexpectedStatusCode is the sentinel wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = dispatch.ErrUnexpectedStatusCode
)
