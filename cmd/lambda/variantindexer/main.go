package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	logging "github.com/ipfs/go-log/v2"

	"github.com/resizeto/resizeto/cmd/lambda"
	"github.com/resizeto/resizeto/pkg/aws"
	"github.com/resizeto/resizeto/pkg/store/variantstore"
)

var log = logging.Logger("lambda/variantindexer")

var errMissingTable = errors.New("variants_table is not configured")

func makeHandler(index variantstore.VariantIndex) lambda.SQSEventHandler {
	return func(ctx context.Context, sqsEvent events.SQSEvent) error {
		for _, msg := range sqsEvent.Records {
			variant, err := aws.DecodeVariantMessage(msg.Body)
			if err != nil {
				return fmt.Errorf("decoding message %s: %w", msg.MessageId, err)
			}
			if err := index.Put(ctx, variant); err != nil {
				return fmt.Errorf("indexing variant %s: %w", variant.Key, err)
			}
			log.Debugw("indexed variant", "key", variant.Key, "source", variant.Source)
		}
		return nil
	}
}

func main() {
	lambda.StartSQSEventHandler(func(cfg aws.Config) (lambda.SQSEventHandler, error) {
		if cfg.Handler.VariantsTable == "" {
			return nil, errMissingTable
		}
		return makeHandler(aws.NewDynamoVariantIndex(cfg.Config, cfg.Handler.VariantsTable, cfg.DynamoOptions...)), nil
	})
}
