package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/resizeto/resizeto/internal/digestutil"
	"github.com/resizeto/resizeto/pkg/service/resize"
	"github.com/resizeto/resizeto/pkg/store/variantstore"
)

var VariantQueueMessageGroupID = "variant-queue"

// VariantMessage is the struct that is serialized onto an SQS message queue in JSON
type VariantMessage struct {
	Key         string    `json:"key"`
	Source      string    `json:"source"`
	Bucket      string    `json:"bucket"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Digest      string    `json:"digest"`
	ETag        string    `json:"etag,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SQSVariantQueue announces processed variants on an SQS queue
type SQSVariantQueue struct {
	queueURL  string
	sqsClient *sqs.Client
}

// NewSQSVariantQueue returns a new SQSVariantQueue for the given aws config
func NewSQSVariantQueue(cfg aws.Config, queueURL string, opts ...func(*sqs.Options)) *SQSVariantQueue {
	return &SQSVariantQueue{
		queueURL:  queueURL,
		sqsClient: sqs.NewFromConfig(cfg, opts...),
	}
}

// Queue sends a message describing the variant. FIFO queues are deduplicated
// on the variant digest.
func (s *SQSVariantQueue) Queue(ctx context.Context, variant variantstore.Variant) error {
	msg := VariantMessage{
		Key:         variant.Key,
		Source:      variant.Source,
		Bucket:      variant.Bucket,
		ContentType: variant.ContentType,
		Size:        variant.Size,
		Digest:      digestutil.Format(variant.Digest),
		ETag:        variant.ETag,
		CreatedAt:   variant.CreatedAt,
	}
	messageJSON, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("serializing message json: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(messageJSON)),
	}
	if strings.HasSuffix(s.queueURL, ".fifo") {
		input.MessageGroupId = &VariantQueueMessageGroupID
		input.MessageDeduplicationId = aws.String(msg.Digest)
	}
	_, err = s.sqsClient.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("enqueueing message: %w", err)
	}
	return nil
}

var _ resize.QueueVariantFn = (&SQSVariantQueue{}).Queue

// DecodeVariantMessage extracts a variant from an SQS queue message body
func DecodeVariantMessage(messageBody string) (variantstore.Variant, error) {
	var msg VariantMessage
	err := json.Unmarshal([]byte(messageBody), &msg)
	if err != nil {
		return variantstore.Variant{}, fmt.Errorf("deserializing message: %w", err)
	}
	digest, err := digestutil.Parse(msg.Digest)
	if err != nil {
		return variantstore.Variant{}, fmt.Errorf("decoding digest: %w", err)
	}
	return variantstore.Variant{
		Key:         msg.Key,
		Source:      msg.Source,
		Bucket:      msg.Bucket,
		ContentType: msg.ContentType,
		Size:        msg.Size,
		Digest:      digest,
		ETag:        msg.ETag,
		CreatedAt:   msg.CreatedAt,
	}, nil
}
