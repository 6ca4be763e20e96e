package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/resizeto/resizeto/pkg/config"
	"github.com/resizeto/resizeto/pkg/service/resize"
)

var ProcessCmd = &cli.Command{
	Name:      "process",
	Usage:     "Process one key against the local data directory and print the location of the result.",
	ArgsUsage: "<key>",
	Flags:     withHandlerFlags(DataDirFlag),
	Action: func(cCtx *cli.Context) error {
		if cCtx.NArg() != 1 {
			return errors.New("expected exactly one key argument")
		}

		cfg, err := config.LoadConfig(cCtx)
		if err != nil {
			return err
		}
		objects, err := openObjectStore(cCtx)
		if err != nil {
			return err
		}
		svc, err := resize.NewService(*cfg, objects)
		if err != nil {
			return err
		}

		res, err := svc.Respond(cCtx.Context, map[string]string{resize.KeyParam: cCtx.Args().First()})
		if err != nil {
			return fmt.Errorf("%d %s", res.StatusCode, res.Body)
		}
		fmt.Fprintln(cCtx.App.Writer, res.Location)
		return nil
	},
}
