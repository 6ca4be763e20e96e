package resize

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// Response is the outcome of one invocation as presented to the caller.
type Response struct {
	StatusCode int
	// Location is set on success only.
	Location string
	// Body is empty on success and the failure message otherwise.
	Body string
}

// APIGateway converts the response to an API Gateway proxy response.
func (r Response) APIGateway() events.APIGatewayProxyResponse {
	res := events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Body:       r.Body,
	}
	if r.Location != "" {
		res.Headers = map[string]string{"location": r.Location}
	}
	return res
}

// Write writes the response to w.
func (r Response) Write(w http.ResponseWriter) {
	if r.Location != "" {
		w.Header().Set("Location", r.Location)
	}
	if r.Body != "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
	}
	w.WriteHeader(r.StatusCode)
	if r.Body != "" {
		_, _ = io.WriteString(w, r.Body)
	}
}

// Respond decodes the query parameters, runs the pipeline and builds the
// response. The returned error is the failure, if any, the response was
// built from.
func (s *Service) Respond(ctx context.Context, params map[string]string) (Response, error) {
	req, err := DecodeRequest(params)
	if err != nil {
		e := s.fail(s.log, newError(StageDecode, "", err))
		return s.errorResponse(e), e
	}

	sess, err := s.Process(ctx, req)
	if err != nil {
		return s.errorResponse(err), err
	}

	location := sess.Location()
	return Response{
		StatusCode: http.StatusMovedPermanently,
		Location:   location.String(),
	}, nil
}

func (s *Service) errorResponse(err error) Response {
	return Response{StatusCode: s.statusCode(err), Body: err.Error()}
}

func (s *Service) statusCode(err error) int {
	var e *Error
	if s.cfg.UniformErrors || !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	return e.StatusCode()
}
