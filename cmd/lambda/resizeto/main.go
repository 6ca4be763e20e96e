package main

import (
	"github.com/resizeto/resizeto/cmd/lambda"
	"github.com/resizeto/resizeto/pkg/aws"
)

func makeHandler(cfg aws.Config) (lambda.APIGatewayEventHandler, error) {
	service, err := aws.Construct(cfg)
	if err != nil {
		return nil, err
	}
	return service.HandleEvent, nil
}

func main() {
	lambda.StartAPIGatewayEventHandler(makeHandler)
}
