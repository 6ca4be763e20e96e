package cmd

import (
	"context"
	"fmt"
	"net"
	"strconv"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/resizeto/resizeto/internal/telemetry"
	"github.com/resizeto/resizeto/pkg/aws"
	"github.com/resizeto/resizeto/pkg/config"
	"github.com/resizeto/resizeto/pkg/server"
	"github.com/resizeto/resizeto/pkg/service/resize"
	"github.com/resizeto/resizeto/pkg/store/variantstore"
)

var ServeCmd = &cli.Command{
	Name:  "serve",
	Usage: "Serve resize requests and processed images from a local data directory.",
	Flags: withHandlerFlags(
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind the server to.",
			EnvVars: []string{"RESIZETO_HOST"},
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   3000,
			Usage:   "Port to bind the server to.",
			EnvVars: []string{"RESIZETO_PORT"},
			Action: func(c *cli.Context, v int) error {
				if v <= 0 || v > 65535 {
					return fmt.Errorf("invalid port: must be between 1 and 65535")
				}
				return nil
			},
		},
		DataDirFlag,
		SentryDSNFlag,
	),
	Action: func(cCtx *cli.Context) error {
		_ = logging.SetLogLevel("*", "info")

		addr := net.JoinHostPort(cCtx.String("host"), strconv.Itoa(cCtx.Int("port")))
		cfg, err := config.LoadConfig(cCtx)
		if err != nil {
			return err
		}
		if cfg.URI == "" {
			cfg.URI = "http://" + addr
		}
		telemetry.SetupErrorReporting(cCtx.String(SentryDSNFlag.Name), "local")

		objects, err := openObjectStore(cCtx)
		if err != nil {
			return err
		}

		index, opts, err := recorders(cCtx.Context, *cfg)
		if err != nil {
			return err
		}
		svc, err := resize.NewService(*cfg, objects, opts...)
		if err != nil {
			return err
		}

		PrintHero(cCtx.App.Writer, cfg.URI)
		return server.ListenAndServe(addr,
			server.WithService(svc),
			server.WithObjectStore(objects, cfg.Destination),
			server.WithVariantIndex(index),
		)
	},
}

// recorders returns the variant index the server lists from and the service
// options recording into it. The index is kept in memory unless a DynamoDB
// table is configured.
func recorders(ctx context.Context, cfg config.Config) (variantstore.VariantIndex, []resize.Option, error) {
	if cfg.VariantsTable == "" && cfg.NotifyQueueURL == "" {
		index := variantstore.NewMapVariantIndex()
		return index, []resize.Option{resize.WithVariantIndex(index)}, nil
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, nil, fmt.Errorf("loading aws default config: %w", err)
	}

	var index variantstore.VariantIndex = variantstore.NewMapVariantIndex()
	if cfg.VariantsTable != "" {
		index = aws.NewDynamoVariantIndex(awsConfig, cfg.VariantsTable)
	}
	opts := []resize.Option{resize.WithVariantIndex(index)}
	if cfg.NotifyQueueURL != "" {
		opts = append(opts, resize.WithVariantQueue(aws.NewSQSVariantQueue(awsConfig, cfg.NotifyQueueURL).Queue))
	}
	return index, opts, nil
}
