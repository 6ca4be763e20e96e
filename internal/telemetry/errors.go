package telemetry

import (
	"errors"
	"io"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	logging "github.com/ipfs/go-log/v2"

	"github.com/resizeto/resizeto/pkg/build"
)

var log = logging.Logger("telemetry")

// HTTPError is an error that also has an associated HTTP status code
type HTTPError struct {
	err        error
	statusCode int
}

// Error implements the error interface
func (he HTTPError) Error() string {
	return he.err.Error()
}

func (he HTTPError) Unwrap() error {
	return he.err
}

// StatusCode returns the HTTP status code associated with the error
func (he HTTPError) StatusCode() int {
	return he.statusCode
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(err error, statusCode int) HTTPError {
	return HTTPError{err: err, statusCode: statusCode}
}

// ErrorReturningHTTPHandler is a HTTP handler function that returns an error
type ErrorReturningHTTPHandler func(http.ResponseWriter, *http.Request) error

// SetupErrorReporting configures the Sentry SDK for error reporting. Nothing
// is reported when dsn is empty.
func SetupErrorReporting(dsn, environment string) {
	if dsn == "" {
		log.Debug("no sentry DSN, error reporting disabled")
		return
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     build.Version,
		Transport:   sentry.NewHTTPSyncTransport(),
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
}

// NewErrorReportingHandler wraps an ErrorReturningHTTPHandler with error
// reporting. The error is written as a plain text response with its
// message as the body, the status taken from an HTTPError or 500. Only
// server errors are reported.
func NewErrorReportingHandler(errorReturningHandler ErrorReturningHTTPHandler) http.Handler {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := errorReturningHandler(w, r)
		if err == nil {
			return
		}

		var he HTTPError
		if !errors.As(err, &he) {
			he = NewHTTPError(err, http.StatusInternalServerError)
		}
		if he.StatusCode() >= http.StatusInternalServerError {
			if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
				hub.CaptureException(err)
			} else {
				ReportError(err)
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(he.StatusCode())
		_, _ = io.WriteString(w, he.Error())
	})

	sentryHandler := sentryhttp.New(sentryhttp.Options{})
	return sentryHandler.Handle(handler)
}

// ReportError reports an error to Sentry
func ReportError(err error) {
	sentry.CaptureException(err)
}
