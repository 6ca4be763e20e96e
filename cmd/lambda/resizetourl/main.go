package main

import (
	"net/http"

	"github.com/resizeto/resizeto/cmd/lambda"
	"github.com/resizeto/resizeto/pkg/aws"
	"github.com/resizeto/resizeto/pkg/service/resize"
)

func makeHandler(cfg aws.Config) (http.Handler, error) {
	service, err := aws.Construct(cfg)
	if err != nil {
		return nil, err
	}
	return resize.NewResizeHandler(service), nil
}

func main() {
	lambda.StartHTTPHandler(makeHandler)
}
