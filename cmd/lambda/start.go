package lambda

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/resizeto/resizeto/internal/telemetry"
	"github.com/resizeto/resizeto/pkg/aws"
)

// SQSEventHandler is a function that handles SQS events, suitable to use as a lambda handler.
type SQSEventHandler func(context.Context, events.SQSEvent) error

// SQSEventHandlerBuilder is a function that creates a SQSEventHandler from a config.
type SQSEventHandlerBuilder func(aws.Config) (SQSEventHandler, error)

// StartSQSEventHandler starts a lambda handler that processes SQS events.
func StartSQSEventHandler(makeHandler SQSEventHandlerBuilder) {
	ctx := context.Background()
	cfg := aws.FromEnv(ctx)
	telemetry.SetupErrorReporting(cfg.SentryDSN, cfg.SentryEnvironment)

	handler, err := makeHandler(cfg)
	if err != nil {
		telemetry.ReportError(err)
		panic(err)
	}

	lambda.StartWithOptions(instrumentSQSEventHandler(handler), lambda.WithContext(ctx))
}

// instrumentSQSEventHandler wraps a SQSEventHandler with error reporting.
func instrumentSQSEventHandler(handler SQSEventHandler) SQSEventHandler {
	return func(ctx context.Context, sqsEvent events.SQSEvent) error {
		err := handler(ctx, sqsEvent)
		if err != nil {
			telemetry.ReportError(err)
		}

		return err
	}
}

// APIGatewayEventHandler handles REST API Gateway proxy events.
type APIGatewayEventHandler func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// APIGatewayEventHandlerBuilder is a function that creates an APIGatewayEventHandler from a config.
type APIGatewayEventHandlerBuilder func(aws.Config) (APIGatewayEventHandler, error)

// StartAPIGatewayEventHandler starts a lambda handler that processes REST
// API Gateway proxy events.
func StartAPIGatewayEventHandler(makeHandler APIGatewayEventHandlerBuilder) {
	ctx := context.Background()
	cfg := aws.FromEnv(ctx)
	telemetry.SetupErrorReporting(cfg.SentryDSN, cfg.SentryEnvironment)

	handler, err := makeHandler(cfg)
	if err != nil {
		telemetry.ReportError(err)
		panic(err)
	}

	lambda.StartWithOptions(handler, lambda.WithContext(ctx))
}

// HTTPHandlerBuilder is a function that creates a http.Handler from a config.
type HTTPHandlerBuilder func(aws.Config) (http.Handler, error)

// StartHTTPHandler starts a lambda handler that processes HTTP requests
// (function URLs and HTTP APIs, payload format 2.0).
func StartHTTPHandler(makeHandler HTTPHandlerBuilder) {
	ctx := context.Background()
	cfg := aws.FromEnv(ctx)
	telemetry.SetupErrorReporting(cfg.SentryDSN, cfg.SentryEnvironment)

	handler, err := makeHandler(cfg)
	if err != nil {
		telemetry.ReportError(err)
		panic(err)
	}

	lambda.StartWithOptions(httpadapter.NewV2(handler).ProxyWithContext, lambda.WithContext(ctx))
}
