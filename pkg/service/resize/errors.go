package resize

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/resizeto/resizeto/pkg/options"
	"github.com/resizeto/resizeto/pkg/store"
)

// Stage is the pipeline step a failure originated in.
type Stage string

const (
	StageDecode    Stage = "decode"
	StageParse     Stage = "parse"
	StageSource    Stage = "source"
	StageTransform Stage = "transform"
	StageUpload    Stage = "upload"
)

// Kind classifies a failure by who is responsible for it.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	default:
		return "internal"
	}
}

// Error is the terminal failure of an invocation.
type Error struct {
	Stage    Stage
	Kind     Kind
	Fragment string
	Err      error
}

// Error returns the message of the underlying cause unchanged, it is the
// response body sent to the caller.
func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the failure kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func newError(stage Stage, fragment string, err error) *Error {
	return &Error{Stage: stage, Kind: classify(err), Fragment: fragment, Err: err}
}

func classify(err error) Kind {
	switch {
	case errors.As(err, &options.SignatureMissingError{}),
		errors.As(err, &options.SignatureMismatchError{}):
		return KindUnauthorized
	case errors.As(err, &options.OptionKeyUnknownError{}),
		errors.As(err, &options.OptionValueInvalidError{}),
		errors.As(err, &options.MalformedFragmentError{}),
		errors.As(err, &options.MissingOutputFormatError{}),
		errors.As(err, &options.InvalidOutputFormatError{}),
		errors.As(err, &MissingInputError{}),
		errors.As(err, &DecodeError{}):
		return KindInvalidInput
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}

// MissingInputError is returned when the request has no fragment parameter.
type MissingInputError struct {
	Param string
}

func (e MissingInputError) Error() string {
	return fmt.Sprintf("missing required query parameter '%s'", e.Param)
}

// DecodeError is returned when the fragment is not valid percent-encoding.
type DecodeError struct {
	Raw string
	Err error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("malformed fragment encoding '%s': %s", e.Raw, e.Err)
}

func (e DecodeError) Unwrap() error {
	return e.Err
}

// uploadAbortedError marks a transform failure that was caused by the
// upload side going away.
type uploadAbortedError struct {
	err error
}

func (e uploadAbortedError) Error() string {
	return fmt.Sprintf("upload aborted: %s", e.err)
}

func (e uploadAbortedError) Unwrap() error {
	return e.err
}
