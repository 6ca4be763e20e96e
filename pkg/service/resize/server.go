package resize

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/resizeto/resizeto/internal/telemetry"
)

type Server struct {
	service *Service
}

func NewServer(service *Service) *Server {
	return &Server{service}
}

func (srv *Server) Serve(mux *http.ServeMux) {
	mux.Handle("GET /resize", NewResizeHandler(srv.service))
}

// NewResizeHandler serves the pipeline over HTTP. The fragment is read from
// the "key" query parameter.
func NewResizeHandler(service *Service) http.Handler {
	return telemetry.NewErrorReportingHandler(func(w http.ResponseWriter, r *http.Request) error {
		res, err := service.Respond(r.Context(), QueryParams(r))
		if err != nil {
			return telemetry.NewHTTPError(err, res.StatusCode)
		}
		res.Write(w)
		return nil
	})
}

// HandleEvent serves the pipeline for an API Gateway proxy event. Failures
// are part of the response, the returned error is always nil so the gateway
// passes the status through.
func (s *Service) HandleEvent(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	s.log.Debugw("received event", "path", event.Path, "query", event.QueryStringParameters)

	res, err := s.Respond(ctx, event.QueryStringParameters)
	if err != nil && res.StatusCode >= http.StatusInternalServerError {
		telemetry.ReportError(err)
	}
	return res.APIGateway(), nil
}
