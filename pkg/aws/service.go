package aws

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/resizeto/resizeto/pkg/config"
	"github.com/resizeto/resizeto/pkg/service/resize"
)

// ErrMissingSecret means that the value returned from Secrets was empty
var ErrMissingSecret = errors.New("missing value for secret")

type Config struct {
	Config            aws.Config
	S3Options         []func(*s3.Options)
	DynamoOptions     []func(*dynamodb.Options)
	SQSOptions        []func(*sqs.Options)
	SentryDSN         string
	SentryEnvironment string
	// Handler is the validated handler configuration.
	Handler config.Config
}

func mustGetSSMParams(ctx context.Context, client *ssm.Client, names ...string) map[string]string {
	response, err := client.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          names,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		panic(fmt.Errorf("retrieving SSM parameters: %w", err))
	}
	params := map[string]string{}
	for _, name := range names {
		value := ""
		for _, p := range response.Parameters {
			if aws.ToString(p.Name) == name {
				value = aws.ToString(p.Value)
				break
			}
		}
		if value == "" {
			panic(ErrMissingSecret)
		}
		params[name] = value
	}
	return params
}

// FromEnv constructs the AWS Configuration from the environment. The handler
// configuration is read from the file named by RESIZETO_CONFIG, if set, and
// RESIZETO_* variables. When RESIZETO_TOKEN_PARAMETER names an SSM
// parameter the signing token is read from it.
func FromEnv(ctx context.Context) Config {
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		panic(fmt.Errorf("loading aws default config: %w", err))
	}

	overrides := []func(*config.Config){
		func(cfg *config.Config) {
			if cfg.Region == "" {
				cfg.Region = awsConfig.Region
			}
		},
	}
	if name := os.Getenv("RESIZETO_TOKEN_PARAMETER"); name != "" {
		secrets := mustGetSSMParams(ctx, ssm.NewFromConfig(awsConfig), name)
		overrides = append(overrides, func(cfg *config.Config) {
			cfg.Token = secrets[name]
		})
	}

	handlerConfig, err := config.Load(os.Getenv("RESIZETO_CONFIG"), overrides...)
	if err != nil {
		panic(fmt.Errorf("loading handler config: %w", err))
	}

	return Config{
		Config:            awsConfig,
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: os.Getenv("SENTRY_ENVIRONMENT"),
		Handler:           *handlerConfig,
	}
}

// Construct creates the resize service backed by S3 and, when configured,
// the DynamoDB variant index and SQS variant queue.
func Construct(cfg Config) (*resize.Service, error) {
	objects := NewS3ObjectStore(cfg.Config, cfg.S3Options...)

	var opts []resize.Option
	if cfg.Handler.VariantsTable != "" {
		index := NewDynamoVariantIndex(cfg.Config, cfg.Handler.VariantsTable, cfg.DynamoOptions...)
		opts = append(opts, resize.WithVariantIndex(index))
	}
	if cfg.Handler.NotifyQueueURL != "" {
		queue := NewSQSVariantQueue(cfg.Config, cfg.Handler.NotifyQueueURL, cfg.SQSOptions...)
		opts = append(opts, resize.WithVariantQueue(queue.Queue))
	}

	return resize.NewService(cfg.Handler, objects, opts...)
}
