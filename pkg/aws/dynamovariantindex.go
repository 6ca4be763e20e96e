package aws

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/resizeto/resizeto/internal/digestutil"
	"github.com/resizeto/resizeto/pkg/store"
	"github.com/resizeto/resizeto/pkg/store/variantstore"
)

// DynamoVariantIndex implements the variantstore.VariantIndex interface on
// dynamodb. The table is keyed by the "key" attribute.
type DynamoVariantIndex struct {
	tableName      string
	dynamoDbClient *dynamodb.Client
}

var _ variantstore.VariantIndex = (*DynamoVariantIndex)(nil)

// NewDynamoVariantIndex returns a VariantIndex connected to a AWS DynamoDB table
func NewDynamoVariantIndex(cfg aws.Config, tableName string, opts ...func(*dynamodb.Options)) *DynamoVariantIndex {
	return &DynamoVariantIndex{
		tableName:      tableName,
		dynamoDbClient: dynamodb.NewFromConfig(cfg, opts...),
	}
}

// Get implements variantstore.VariantIndex.
func (d *DynamoVariantIndex) Get(ctx context.Context, key string) (variantstore.Variant, error) {
	item := variantItem{Key: key}
	response, err := d.dynamoDbClient.GetItem(ctx, &dynamodb.GetItemInput{
		Key:       item.GetKey(),
		TableName: aws.String(d.tableName),
	})
	if err != nil {
		return variantstore.Variant{}, fmt.Errorf("retrieving item: %w", err)
	}
	if response.Item == nil {
		return variantstore.Variant{}, store.ErrNotFound
	}
	err = attributevalue.UnmarshalMap(response.Item, &item)
	if err != nil {
		return variantstore.Variant{}, fmt.Errorf("deserializing item: %w", err)
	}
	return item.toVariant()
}

// Put implements variantstore.VariantIndex.
func (d *DynamoVariantIndex) Put(ctx context.Context, variant variantstore.Variant) error {
	item, err := attributevalue.MarshalMap(newVariantItem(variant))
	if err != nil {
		return fmt.Errorf("serializing item: %w", err)
	}
	_, err = d.dynamoDbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName), Item: item,
	})
	if err != nil {
		return fmt.Errorf("storing item: %w", err)
	}
	return nil
}

// List implements variantstore.VariantIndex. It scans the table, so it is
// meant for maintenance tasks rather than the request path.
func (d *DynamoVariantIndex) List(ctx context.Context, source string) ([]variantstore.Variant, error) {
	filter := expression.Name("source").Equal(expression.Value(source))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("building scan: %w", err)
	}

	var variants []variantstore.Variant
	scanPaginator := dynamodb.NewScanPaginator(d.dynamoDbClient, &dynamodb.ScanInput{
		TableName:                 aws.String(d.tableName),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		FilterExpression:          expr.Filter(),
	})
	for scanPaginator.HasMorePages() {
		response, err := scanPaginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning variants: %w", err)
		}
		var page []variantItem
		err = attributevalue.UnmarshalListOfMaps(response.Items, &page)
		if err != nil {
			return nil, fmt.Errorf("parsing scan responses: %w", err)
		}
		for _, item := range page {
			v, err := item.toVariant()
			if err != nil {
				return nil, err
			}
			variants = append(variants, v)
		}
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].Key < variants[j].Key })
	return variants, nil
}

type variantItem struct {
	Key         string `dynamodbav:"key"`
	Source      string `dynamodbav:"source"`
	Bucket      string `dynamodbav:"bucket"`
	ContentType string `dynamodbav:"contentType"`
	Size        int64  `dynamodbav:"size"`
	Digest      string `dynamodbav:"digest"`
	ETag        string `dynamodbav:"etag,omitempty"`
	CreatedAt   string `dynamodbav:"createdAt"`
}

func newVariantItem(v variantstore.Variant) variantItem {
	return variantItem{
		Key:         v.Key,
		Source:      v.Source,
		Bucket:      v.Bucket,
		ContentType: v.ContentType,
		Size:        v.Size,
		Digest:      digestutil.Format(v.Digest),
		ETag:        v.ETag,
		CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (i variantItem) toVariant() (variantstore.Variant, error) {
	digest, err := digestutil.Parse(i.Digest)
	if err != nil {
		return variantstore.Variant{}, fmt.Errorf("decoding digest: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, i.CreatedAt)
	if err != nil {
		return variantstore.Variant{}, fmt.Errorf("parsing creation time: %w", err)
	}
	return variantstore.Variant{
		Key:         i.Key,
		Source:      i.Source,
		Bucket:      i.Bucket,
		ContentType: i.ContentType,
		Size:        i.Size,
		Digest:      digest,
		ETag:        i.ETag,
		CreatedAt:   createdAt,
	}, nil
}

// GetKey returns the primary key of the variant in a format that can be
// sent to DynamoDB.
func (i variantItem) GetKey() map[string]types.AttributeValue {
	key, err := attributevalue.Marshal(i.Key)
	if err != nil {
		panic(err)
	}
	return map[string]types.AttributeValue{"key": key}
}
