package cmd

import "github.com/urfave/cli/v2"

var ConfigFlag = &cli.PathFlag{
	Name:      "config",
	Aliases:   []string{"c"},
	Usage:     "Path to a configuration file (json, toml or yaml).",
	EnvVars:   []string{"RESIZETO_CONFIG"},
	TakesFile: true,
}

var DataDirFlag = &cli.StringFlag{
	Name:    "data-dir",
	Aliases: []string{"d"},
	Usage:   "Root directory buckets are stored in.",
	EnvVars: []string{"RESIZETO_DATA_DIR"},
}

var SentryDSNFlag = &cli.StringFlag{
	Name:    "sentry-dsn",
	Usage:   "Sentry DSN server errors are reported to.",
	EnvVars: []string{"SENTRY_DSN"},
}

// HandlerFlags override the handler configuration. Environment variables are
// resolved by the configuration loader.
var HandlerFlags = []cli.Flag{
	ConfigFlag,
	&cli.StringFlag{
		Name:  "originals",
		Usage: "Bucket the original images are read from.",
	},
	&cli.StringFlag{
		Name:  "destination",
		Usage: "Bucket processed images are written to.",
	},
	&cli.StringFlag{
		Name:  "region",
		Usage: "Region of the buckets.",
	},
	&cli.StringFlag{
		Name:  "uri",
		Usage: "Base URI processed images are served from, may contain a {key} placeholder.",
	},
	&cli.StringFlag{
		Name:  "token",
		Usage: "Secret used to verify request signatures.",
	},
	&cli.BoolFlag{
		Name:  "signed",
		Usage: "Require signed requests.",
	},
	&cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log debug details for every request.",
	},
	&cli.BoolFlag{
		Name:  "uniform-errors",
		Usage: "Respond 500 to every failure.",
	},
	&cli.StringFlag{
		Name:  "variants-table",
		Usage: "DynamoDB table variants are recorded in.",
	},
	&cli.StringFlag{
		Name:  "notify-queue-url",
		Usage: "SQS queue processed variants are announced on.",
	},
}

func withHandlerFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, HandlerFlags...)
}
