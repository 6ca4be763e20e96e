package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/resizeto/resizeto/pkg/options"
)

var SignCmd = &cli.Command{
	Name:      "sign",
	Usage:     "Sign a fragment so it is accepted when signed requests are required.",
	ArgsUsage: "<options>/<path>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "token",
			Usage:    "Secret the signature is computed with.",
			EnvVars:  []string{"RESIZETO_TOKEN"},
			Required: true,
		},
	},
	Action: func(cCtx *cli.Context) error {
		if cCtx.NArg() != 1 {
			return errors.New("expected exactly one fragment argument")
		}

		parsed, err := options.Parse(cCtx.Args().First(), "", false)
		if err != nil {
			return fmt.Errorf("invalid fragment: %w", err)
		}
		if parsed.Signature != "" {
			return errors.New("fragment is already signed")
		}

		fmt.Fprintln(cCtx.App.Writer, options.Sign(cCtx.String("token"), parsed.OptionsString, parsed.Path))
		return nil
	},
}
